package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/field"
)

func TestMatrix(t *testing.T) {
	entries := Matrix()
	require.Len(t, entries, 6)

	compatible := 0
	for _, e := range entries {
		if e.Compatible {
			compatible++
			assert.Empty(t, e.Reason)
			continue
		}
		assert.Equal(t, ash.TargetTasm, e.Target)
		assert.NotEqual(t, field.KindOxfoi, e.Field)
		assert.Equal(t, "tasm target must be compiled to the oxfoi field", e.Reason)
	}
	assert.Equal(t, 4, compatible)

	assert.Equal(t, []string{"ar1cs", "ash"}, entries[0].Extensions)
	assert.Equal(t, []string{"tasm", "ash"}, entries[5].Extensions)
}

func TestMatrixCommandText(t *testing.T) {
	out, _, err := execute(t, "matrix")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 7)
	assert.Contains(t, lines[0], "TARGET")
	assert.Regexp(t, `^r1cs\s+oxfoi\s+\.ar1cs \.ash\s+✓$`, lines[1])
	assert.Regexp(t, `^tasm\s+curve25519\s+\.tasm \.ash\s+✗ tasm target must be compiled to the oxfoi field$`, lines[5])
}

func TestMatrixCommandJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "matrix")
	require.NoError(t, err)

	var response struct {
		Status string        `json:"status"`
		Data   []MatrixEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, Matrix(), response.Data)
}
