// Package harness runs scripted editing sessions against the compile
// pipeline and checks what the user would see after every step.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: scenario_name
//	description: "What this scenario checks"
//	session_id: scenario-name      # optional, fixes the session id
//	workspace: ./files             # optional, relative to the scenario file
//	files:                         # optional, added on top of the workspace
//	  helper.ash: |
//	    (a)
//	    return a * a
//	target: r1cs                   # optional initial selection
//	field: oxfoi
//	active: entry.ash
//	single_file: false
//	steps:
//	  - compile: true
//	    expect:
//	      status: success
//	      summary_contains: ["oxfoi"]
//	  - field: alt_bn128
//	  - edit: |
//	      assert_eq(1, 2)
//	    expect:
//	      status: failure
//	      stage: witness_verify
//	assertions:
//	  - type: run_count
//	    count: 3
//
// When workspace is omitted the demo workspace is used.
//
// # Steps
//
// Each step names exactly one action: compile, edit, select, add, remove,
// target or field. Every action except a failed one is followed by a
// recompile, the same way the terminal editor recompiles on every change.
// An expect clause checks the published result, or with error: the error
// returned by the action itself.
//
// # Assertion Types
//
//   - run_count: the number of pipeline runs
//   - states: the pipeline states entered during one run
//   - selection: the final target, field or active file
//   - file: a workspace file's final text (contains) or its absence
//
// # Determinism
//
// Session ids come from testutil.FixedIDGenerator and trace events are
// numbered with testutil.DeterministicClock, so replaying a scenario yields
// a byte-identical canonical snapshot for golden comparison.
package harness
