package workspace

// The demo workspace: a vector program calling an ash helper and an assertion
// implemented once per target.
const (
	demoEntry = `# define some vectors to play with
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

	demoPow5 = `(v)

let v2 = v * v
let v4 = v2 * v2

return v4 * v
`

	demoAssertEqAR1CS = `(a, b) -> ()

# one is a global signal that is equal to 1
0 = (1*a + 0*one) * (1*one) - (1*b) # assert equality
`

	demoAssertEqTasm = `(_, _) -> _

eq
assert
push 0

return
`
)

// DemoFiles returns a fresh copy of the demo workspace files.
func DemoFiles() map[string]string {
	return map[string]string{
		EntryFile:         demoEntry,
		"pow5.ash":        demoPow5,
		"assert_eq.ar1cs": demoAssertEqAR1CS,
		"assert_eq.tasm":  demoAssertEqTasm,
	}
}
