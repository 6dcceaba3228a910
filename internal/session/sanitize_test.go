package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "error: bad", "error: bad"},
		{"sgr", "\x1b[1;31merror\x1b[0m\x1b[1m: bad\x1b[0m", "error: bad"},
		{"keeps layout", "a\n\tb", "a\n\tb"},
		{"drops controls", "a\x07b\x00c\r", "abc"},
		{"trims", "msg  \n\n", "msg"},
		{"osc", "\x1b]8;;http://x\x07link\x1b]8;;\x07", "link"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(StageCompilation, tt.in))
		})
	}
}

func TestSanitizeNeverEmpty(t *testing.T) {
	assert.Equal(t, "witness_build failed", Sanitize(StageWitnessBuild, ""))
	assert.Equal(t, "compilation failed", Sanitize(StageCompilation, "\x1b[0m \n"))
}
