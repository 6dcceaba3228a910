package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/field"
	"github.com/roach88/ashpad/internal/session"
)

// compileEnvelope is CLIResponse with the compile payload typed.
type compileEnvelope struct {
	Status  string        `json:"status"`
	Data    CompileOutput `json:"data"`
	TraceID string        `json:"trace_id"`
	Error   *struct {
		Code    string        `json:"code"`
		Message string        `json:"message"`
		Details CompileOutput `json:"details"`
	} `json:"error"`
}

func decodeCompile(t *testing.T, out string) compileEnvelope {
	t.Helper()
	var env compileEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &env), out)
	return env
}

const squares = `let v = [1, 2, 3]
let s = square(v)
assert_eq(s[0] + s[1] + s[2], 14)
`

func squaresWorkspace(t *testing.T, extra map[string]string) string {
	t.Helper()
	files := map[string]string{
		"entry.ash":       squares,
		"square.ash":      "(x)\n\nreturn x * x\n",
		"assert_eq.ar1cs": "(a, b) -> ()\n0 = (1*a) * (1*one) - (1*b)\n",
		"assert_eq.tasm":  "(_, _) -> _\neq\nassert\npush 0\n",
	}
	for k, v := range extra {
		files[k] = v
	}
	return writeWorkspace(t, files)
}

func TestCompileDemoText(t *testing.T) {
	out, _, err := execute(t, "compile")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ entry.ash (r1cs, oxfoi)\n")
	assert.Contains(t, out, "Compiling for field oxfoi...\nR1CS: built and validated witness")
	assert.Contains(t, out, "0 = (")
}

func TestCompileDemoJSON(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "compile", "--target", "tasm")
	require.NoError(t, err)

	env := decodeCompile(t, out)
	assert.Equal(t, "ok", env.Status)
	assert.NotEmpty(t, env.TraceID)
	assert.Equal(t, env.TraceID, env.Data.Session)
	assert.Equal(t, session.Selection{ActiveFile: "entry.ash", Target: ash.TargetTasm, Field: field.KindOxfoi}, env.Data.Selection)
	assert.Equal(t, session.StatusSuccess, env.Data.Result.Status)
	assert.Equal(t, "Compiling for field oxfoi...\nCompiled program to tasm source", env.Data.Result.Summary)
	assert.Contains(t, env.Data.Result.Artifact, "halt")
	assert.Nil(t, env.Error)
}

func TestCompileIncompatiblePair(t *testing.T) {
	out, _, err := execute(t, "compile", "--target", "tasm", "--field", "curve25519")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	assert.Contains(t, out, "✗ entry.ash (tasm, curve25519): compatibility failed\n")
	assert.Contains(t, out, "  tasm target must be compiled to the oxfoi field\n")
	assert.NotContains(t, out, "Compiling for field")
}

func TestCompileExprSingleFile(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "compile", "-e", "assert_eq(1, 2)\n")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	env := decodeCompile(t, out)
	assert.Equal(t, "error", env.Status)
	require.NotNil(t, env.Error)
	assert.Equal(t, ErrCodeCompileFailed, env.Error.Code)
	assert.NotEmpty(t, env.Error.Message)
	assert.True(t, env.Error.Details.SingleFile)
	assert.Equal(t, session.StageWitnessVerify, env.Error.Details.Result.Stage)
	assert.Empty(t, env.Error.Details.Result.Artifact)
}

func TestCompileWorkspaceManifest(t *testing.T) {
	dir := squaresWorkspace(t, map[string]string{
		"ashpad.cue": "target: \"tasm\"\n",
	})

	out, _, err := execute(t, "compile", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ entry.ash (tasm, oxfoi)")
	assert.Contains(t, out, "Compiled program to tasm source")

	// Flags win over the manifest.
	out, _, err = execute(t, "compile", dir, "--target", "r1cs", "--field", "alt_bn128")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ entry.ash (r1cs, alt_bn128)")
	assert.Contains(t, out, "R1CS: built and validated witness")
}

func TestCompileActiveFile(t *testing.T) {
	dir := squaresWorkspace(t, nil)

	// The active file only changes what the editor shows; entry.ash is still compiled.
	out, _, err := execute(t, "compile", dir, "--active", "square.ash")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ square.ash (r1cs, oxfoi)")
}

func TestCompileCommandErrors(t *testing.T) {
	dir := squaresWorkspace(t, nil)
	badManifest := squaresWorkspace(t, map[string]string{"ashpad.cue": "colour: \"red\"\n"})

	tests := []struct {
		name string
		args []string
		code string
	}{
		{"missing_dir", []string{"compile", "/nonexistent/workspace"}, ErrCodeNotFound},
		{"unknown_field", []string{"compile", "--field", "goldilocks"}, ErrCodeInvalidFlag},
		{"unknown_target", []string{"compile", "--target", "wasm"}, ErrCodeInvalidFlag},
		{"active_not_in_workspace", []string{"compile", dir, "--active", "nope.ash"}, ErrCodeNotFound},
		{"bad_manifest", []string{"compile", badManifest}, ErrCodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error ["+tt.code+"]")
		})
	}
}
