package ash

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ashpad/internal/field"
)

const entrySrc = `# define some vectors to play with
let x = [1, 2, 3]
let y = [10, 20, 30]

# multiply them together
let m = x * y
assert_eq(m[0], 10)
assert_eq(m[1], 40)
assert_eq(m[2], 90)

# pass the product to a function
let p5 = pow5(m)

assert_eq(p5[0], 100000)
assert_eq(p5[1], 102400000)
assert_eq(p5[2], 5904900000)

# the same function can accept scalars
let a5 = pow5(124)
assert_eq(a5, 29316250624)
`

const pow5Src = `(v)

let v2 = v * v
let v4 = v2 * v2

return v4 * v
`

const assertEqAR1CS = `(a, b) -> ()

# one is a global signal that is equal to 1
0 = (1*a + 0*one) * (1*one) - (1*b) # assert equality
`

const assertEqTasm = `(_, _) -> _

eq
assert
push 0

return
`

// demoFiles returns a fresh copy of the demo workspace.
func demoFiles() map[string]string {
	return map[string]string{
		"entry.ash":       entrySrc,
		"pow5.ash":        pow5Src,
		"assert_eq.ar1cs": assertEqAR1CS,
		"assert_eq.tasm":  assertEqTasm,
	}
}

func r1csConfig(k field.Kind) Config {
	return Config{
		Target:              TargetR1CS,
		Field:               k,
		EntryFn:             "entry",
		ExtensionPriorities: []string{ExtAR1CS, ExtAsh},
	}
}

func tasmConfig() Config {
	return Config{
		Target:              TargetTasm,
		Field:               field.KindOxfoi,
		EntryFn:             "entry",
		ExtensionPriorities: []string{ExtTasm, ExtAsh},
	}
}

// compileFiles configures a compiler for cfg, loads files and compiles entry.
func compileFiles[T field.Element[T]](t *testing.T, cfg Config, files map[string]string) (*Program[T], error) {
	t.Helper()
	c, err := Configure[T](cfg)
	require.NoError(t, err)
	require.NoError(t, c.IncludeVFS(files))
	return c.Compile("entry")
}

// withEntry returns the demo workspace with entry.ash replaced by src.
func withEntry(src string) map[string]string {
	files := demoFiles()
	files["entry.ash"] = src
	return files
}
