package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValidWorkspace(t *testing.T) {
	dir := squaresWorkspace(t, map[string]string{"ashpad.cue": "field: \"curve25519\"\n"})

	out, _, err := execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Equal(t, "✓ Workspace valid (4 files)\n", out)
}

func TestValidateDir(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		codes []string
	}{
		{
			name:  "incompatible_manifest",
			files: map[string]string{"entry.ash": "", "ashpad.cue": "target: \"tasm\"\nfield: \"curve25519\"\n"},
			codes: []string{ErrCodeIncompatible},
		},
		{
			name:  "unknown_manifest_field",
			files: map[string]string{"entry.ash": "", "ashpad.cue": "field: \"goldilocks\"\n"},
			codes: []string{ErrCodeConfigInvalid},
		},
		{
			name:  "bad_file_name",
			files: map[string]string{"entry.ash": "", "my-helper.ash": "(x)\nreturn x\n"},
			codes: []string{ErrCodeBadFileName},
		},
		{
			name:  "no_entry",
			files: map[string]string{"helper.ash": "(x)\nreturn x\n"},
			codes: []string{ErrCodeNoEntry},
		},
		{
			name:  "several",
			files: map[string]string{"2fast.tasm": "", "ashpad.cue": "target: \"tasm\"\nfield: \"alt_bn128\"\n"},
			codes: []string{ErrCodeIncompatible, ErrCodeBadFileName, ErrCodeNoEntry},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateDir(writeWorkspace(t, tt.files))
			require.NoError(t, err)
			assert.False(t, result.Valid)

			var codes []string
			for _, e := range result.Errors {
				codes = append(codes, e.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestValidateCommandFailure(t *testing.T) {
	dir := writeWorkspace(t, map[string]string{"entry.ash": "", "my-helper.ash": ""})

	out, _, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "my-helper.ash\n  E008: \"my-helper\" is not a valid function name")

	out, _, err = execute(t, "--format", "json", "validate", dir)
	require.Error(t, err)
	var response struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "error", response.Status)
	assert.Equal(t, 2, response.Data.Files)
	require.NotNil(t, response.Error)
	assert.Equal(t, ErrCodeBadFileName, response.Error.Code)
}

func TestValidateMissingDir(t *testing.T) {
	out, _, err := execute(t, "validate", "/nonexistent/workspace")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}
