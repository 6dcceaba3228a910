// Package ash compiles ash workspaces to R1CS constraint systems or to tasm
// assembly, and builds and verifies R1CS witnesses.
//
// A workspace is a set of named files. The entry file (entry.ash by default)
// is a sequence of statements; every other .ash file is a function whose first
// line lists its parameters. Functions may also be written by hand, either as
// constraints (.ar1cs, r1cs target only) or as assembly (.tasm, tasm target
// only). When several files share a function name the configured extension
// priorities decide which one is used.
//
// Everything is generic over the field algebra:
//
//	c, err := ash.Configure[field.Foi](ash.Config{
//	    Target:              ash.TargetR1CS,
//	    Field:               field.KindOxfoi,
//	    EntryFn:             "entry",
//	    ExtensionPriorities: []string{"ar1cs", "ash"},
//	})
//	if err := c.IncludeVFS(files); err != nil { ... }
//	program, err := c.Compile("entry")
//	witness, err := ash.BuildWitness(program, nil)
//	err = ash.VerifyWitness(program, witness)
//
// Compile diagnostics are *CompileError values whose Error text is colored for
// terminals; callers rendering elsewhere must strip the escape sequences.
package ash
