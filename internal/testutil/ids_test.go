package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/ashpad/internal/session"
)

var _ session.IDGenerator = (*FixedIDGenerator)(nil)

func TestFixedIDGenerator(t *testing.T) {
	gen := NewFixedIDGenerator("scenario-a")
	assert.Equal(t, "scenario-a", gen.Generate())
	assert.Equal(t, "scenario-a", gen.Generate())
}

func TestFixedIDGenerator_Default(t *testing.T) {
	assert.Equal(t, DefaultSessionID, NewFixedIDGenerator("").Generate())
}

func TestFixedIDGenerator_OpensSession(t *testing.T) {
	s, err := session.New(session.Options{IDs: NewFixedIDGenerator("pinned")})
	if assert.NoError(t, err) {
		assert.Equal(t, "pinned", s.ID())
	}
}
