// Package session implements the compile orchestration core.
//
// A Session owns one Workspace, one Selection (active file, target, field),
// the editor buffer for the active file and a Presenter holding the latest
// Result. Every call to TriggerRecompile:
//
//  1. commits the editor buffer into the workspace,
//  2. checks the (target, field) pair against the compatibility rules,
//  3. dispatches to the pipeline instantiated for the selected field, and
//  4. publishes exactly one Result.
//
// The pipeline walks Idle → Configuring → Compiling → BuildingWitness →
// Verifying → Done, skipping the witness states for the tasm target, and ends
// in Failed at the first stage that reports an error. Failure messages are
// stripped of terminal escape sequences before they are published.
//
// Runs are synchronous. The package starts no goroutines and a Session must
// be driven from one goroutine at a time.
package session
