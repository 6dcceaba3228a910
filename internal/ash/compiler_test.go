package ash

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ashpad/internal/field"
)

func TestCompileDemoR1CS(t *testing.T) {
	t.Run("oxfoi", func(t *testing.T) { checkDemoR1CS[field.Foi](t, field.KindOxfoi) })
	t.Run("curve25519", func(t *testing.T) { checkDemoR1CS[field.Curve25519](t, field.KindCurve25519) })
	t.Run("alt_bn128", func(t *testing.T) { checkDemoR1CS[field.Bn128](t, field.KindAltBn128) })
}

func checkDemoR1CS[T field.Element[T]](t *testing.T, k field.Kind) {
	t.Helper()
	prog, err := compileFiles[T](t, r1csConfig(k), demoFiles())
	require.NoError(t, err)

	assert.Equal(t, TargetR1CS, prog.Target)
	assert.Equal(t, k, prog.Field)
	assert.Len(t, prog.Constraints, 7, "one constraint per assert_eq call")

	listing := prog.String()
	assert.Contains(t, listing, "0 = (10*one) * (1*one) - (10*one) # assert_eq.ar1cs:4")
	assert.Contains(t, listing, "29316250624*one")

	w, err := BuildWitness(prog, nil)
	require.NoError(t, err)
	require.NoError(t, VerifyWitness(prog, w))
}

func TestCompileDemoTasm(t *testing.T) {
	prog, err := compileFiles[field.Foi](t, tasmConfig(), demoFiles())
	require.NoError(t, err)

	lines := prog.Asm
	require.NotEmpty(t, lines)
	assert.Equal(t, "halt", lines[len(lines)-1])
	assert.Contains(t, lines, "eq")
	assert.Contains(t, lines, "assert")
	assert.Contains(t, lines, "push 5904900000")
	assert.NotContains(t, lines, "return")
	assert.Equal(t, 7, prog.Memory, "one RAM cell per assert_eq result")
	assert.True(t, strings.HasSuffix(prog.String(), "halt\n"))
}

func TestTasmWitnessIsRejected(t *testing.T) {
	prog, err := compileFiles[field.Foi](t, tasmConfig(), demoFiles())
	require.NoError(t, err)

	_, err = BuildWitness(prog, nil)
	var we *WitnessError
	require.ErrorAs(t, err, &we)
	assert.Contains(t, we.Message, "only for r1cs")
}

func TestExtensionPriorities(t *testing.T) {
	files := demoFiles()
	files["assert_eq.ash"] = "(a, b)\nlet d = a - b\n"

	// ar1cs listed first wins over the ash implementation.
	prog, err := compileFiles[field.Foi](t, r1csConfig(field.KindOxfoi), files)
	require.NoError(t, err)
	assert.Len(t, prog.Constraints, 7)

	// ash listed first wins and produces no constraints at all.
	cfg := r1csConfig(field.KindOxfoi)
	cfg.ExtensionPriorities = []string{ExtAsh, ExtAR1CS}
	prog, err = compileFiles[field.Foi](t, cfg, files)
	require.NoError(t, err)
	assert.Empty(t, prog.Constraints)
}

func TestMissingFunction(t *testing.T) {
	files := demoFiles()
	delete(files, "assert_eq.ar1cs")

	_, err := compileFiles[field.Foi](t, r1csConfig(field.KindOxfoi), files)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Message, "function assert_eq not found")
	assert.Contains(t, ce.Message, "assert_eq.ar1cs, assert_eq.ash")
	assert.Equal(t, "entry.ash", ce.Pos.File)
	assert.Equal(t, 7, ce.Pos.Line)
}

func TestMissingEntry(t *testing.T) {
	files := demoFiles()
	delete(files, "entry.ash")

	_, err := compileFiles[field.Foi](t, r1csConfig(field.KindOxfoi), files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry function entry not found")
}

func TestSyntaxErrorIsColored(t *testing.T) {
	_, err := compileFiles[field.Foi](t, r1csConfig(field.KindOxfoi), withEntry("let x = [1, 2\nlet y = )\n"))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 2, ce.Pos.Line)
	assert.Contains(t, err.Error(), "\x1b[")
	assert.Contains(t, err.Error(), "entry.ash:2:")
}

func TestCompileErrorRendering(t *testing.T) {
	err := &CompileError{
		Pos:     Pos{File: "entry.ash", Line: 2, Col: 9},
		Message: "unexpected )",
		Line:    "let y = )",
	}

	text := err.Error()
	assert.True(t, strings.HasPrefix(text, "\x1b[1;31merror\x1b[m"), "%q", text)
	assert.Equal(t,
		"error: unexpected )\n"+
			" --> entry.ash:2:9\n"+
			"  |\n"+
			"2 | let y = )\n"+
			"  |         ^",
		ansi.Strip(text))

	bare := &CompileError{Message: "no position"}
	assert.Equal(t, "error: no position", ansi.Strip(bare.Error()))
}

func TestLoweringErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"undefined variable", "let x = y\n", "undefined variable y"},
		{"redefinition", "let x = 1\nlet x = 2\n", "x is already defined"},
		{"assign undefined", "x = 1\n", "assignment to undefined variable x"},
		{"shape mismatch", "let x = [1, 2] * [1, 2, 3]\n", "shape mismatch"},
		{"reassign shape", "let x = 1\nx = [1, 2]\n", "cannot assign vector of 2"},
		{"index scalar", "let x = 1\nlet y = x[0]\n", "cannot index a scalar"},
		{"index range", "let x = [1]\nlet y = x[3]\n", "index 3 out of range"},
		{"unused expression", "1 + 2\n", "expression result is unused"},
		{"return in entry", "return 1\n", "return outside of a function"},
		{"divide by zero", "let x = 4 / 0\n", "division by zero"},
		{"arity", "let x = pow5(1, 2)\n", "pow5 expects 1 argument(s), got 2"},
		{"void value", "let x = assert_eq(1, 1)\n", "assert_eq returns nothing"},
		{"bad character", "let x = 1 $ 2\n", "unexpected character"},
		{"entry params", "(a)\nassert_eq(a, a)\n", "entry function takes no parameters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileFiles[field.Foi](t, r1csConfig(field.KindOxfoi), withEntry(tt.src))
			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Contains(t, ce.Message, tt.want)
		})
	}
}

func TestRecursionIsRejected(t *testing.T) {
	files := withEntry("let x = loop(1)\n")
	files["loop.ash"] = "(n)\nreturn loop(n)\n"

	_, err := compileFiles[field.Foi](t, r1csConfig(field.KindOxfoi), files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recursive call to loop")
}

func TestFunctionFileNeedsHeader(t *testing.T) {
	files := withEntry("let x = twice(2)\n")
	files["twice.ash"] = "return 2 * 2\n"

	_, err := compileFiles[field.Foi](t, r1csConfig(field.KindOxfoi), files)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must begin with a parameter list")
}

func TestArithmeticFolding(t *testing.T) {
	files := withEntry("let v = [1, 2] * 3 - -1\nlet q = 10 / 4\nassert_eq(v[1], 7)\nassert_eq(q * 4, 10)\n")

	prog, err := compileFiles[field.Curve25519](t, r1csConfig(field.KindCurve25519), files)
	require.NoError(t, err)
	w, err := BuildWitness(prog, nil)
	require.NoError(t, err)
	require.NoError(t, VerifyWitness(prog, w))
}

func TestNonLinearSignals(t *testing.T) {
	files := withEntry("let y = sq(3) * sq(4)\nassert_eq(y, 144)\n")
	files["sq.ar1cs"] = "(a) -> (r)\nr = (1*a) * (1*a)\n"

	prog, err := compileFiles[field.Bn128](t, r1csConfig(field.KindAltBn128), files)
	require.NoError(t, err)
	assert.Equal(t, 4, prog.Signals, "one + two squares + their product")
	assert.Len(t, prog.Hints, 3)
	assert.Contains(t, prog.String(), "0 = (1*x1) * (1*x2) - (1*x3)")

	w, err := BuildWitness(prog, nil)
	require.NoError(t, err)
	require.NoError(t, VerifyWitness(prog, w))
	assert.Equal(t, "144", w[3].String())
}

func TestContradictoryAssertionFailsVerification(t *testing.T) {
	prog, err := compileFiles[field.Foi](t, r1csConfig(field.KindOxfoi), withEntry("assert_eq(1, 2)\n"))
	require.NoError(t, err)

	w, err := BuildWitness(prog, nil)
	require.NoError(t, err)

	err = VerifyWitness(prog, w)
	var we *WitnessError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, 0, we.Constraint)
	assert.Contains(t, we.Message, "assert_eq.ar1cs:4")
}

func TestDivisionByZeroFailsWitnessBuild(t *testing.T) {
	files := withEntry("let r = inv(0)\n")
	files["inv.ar1cs"] = "(a) -> (r)\nr = (1*one) / (1*a)\n"

	prog, err := compileFiles[field.Foi](t, r1csConfig(field.KindOxfoi), files)
	require.NoError(t, err)

	_, err = BuildWitness(prog, nil)
	var we *WitnessError
	require.ErrorAs(t, err, &we)
	assert.Contains(t, we.Message, "division by zero")
}

func TestWitnessIsDeterministic(t *testing.T) {
	files := withEntry("let y = sq(7) / sq(2)\nassert_eq(y * 4, 49)\n")
	files["sq.ar1cs"] = "(a) -> (r)\nr = (1*a) * (1*a)\n"

	prog, err := compileFiles[field.Foi](t, r1csConfig(field.KindOxfoi), files)
	require.NoError(t, err)

	w1, err := BuildWitness(prog, nil)
	require.NoError(t, err)
	w2, err := BuildWitness(prog, nil)
	require.NoError(t, err)
	assert.Equal(t, w1, w2)
	require.NoError(t, VerifyWitness(prog, w2))
}

func TestVerifyRejectsTamperedWitness(t *testing.T) {
	files := withEntry("let y = sq(3)\n")
	files["sq.ar1cs"] = "(a) -> (r)\nr = (1*a) * (1*a)\n"

	prog, err := compileFiles[field.Foi](t, r1csConfig(field.KindOxfoi), files)
	require.NoError(t, err)
	w, err := BuildWitness(prog, nil)
	require.NoError(t, err)

	w[1] = field.FromInt64[field.Foi](10)
	assert.Error(t, VerifyWitness(prog, w))
	assert.Error(t, VerifyWitness(prog, w[:1]))

	_, err = BuildWitness(prog, []field.Foi{1})
	assert.Error(t, err)
}

func TestCompileSource(t *testing.T) {
	c, err := Configure[field.Foi](r1csConfig(field.KindOxfoi))
	require.NoError(t, err)
	require.NoError(t, c.IncludeVFS(map[string]string{"assert_eq.ar1cs": assertEqAR1CS}))

	prog, err := c.CompileSource("assert_eq(2 * 2, 4)\n")
	require.NoError(t, err)
	assert.Len(t, prog.Constraints, 1)
	assert.Equal(t, "entry.ash", prog.Entry)
}

func TestIncludeVFSRejectsBadNames(t *testing.T) {
	c, err := Configure[field.Foi](r1csConfig(field.KindOxfoi))
	require.NoError(t, err)

	for _, name := range []string{"notes.txt", "dir/entry.ash", "1bad.ash", ""} {
		err := c.IncludeVFS(map[string]string{name: ""})
		var le *LoadError
		assert.True(t, errors.As(err, &le), "expected LoadError for %q", name)
	}
}

func TestTasmCallWithComputedOperands(t *testing.T) {
	files := withEntry("let a = neg(5)\nassert_eq(a, -5)\n")
	files["neg.tasm"] = "(_) -> _\npush -1\nmul\nreturn\n"

	prog, err := compileFiles[field.Foi](t, tasmConfig(), files)
	require.NoError(t, err)
	listing := prog.String()
	assert.Contains(t, listing, "push 5\npush -1\nmul\npush 0\nwrite_mem 1\npop 1\n")
	assert.Contains(t, listing, "push 0\nread_mem 1\npop 1\n")
}
