// Package digest computes content-addressed identities for workspaces and
// compile results.
//
// Identities are SHA-256 over canonical JSON with a versioned domain prefix.
// Two runs over the same files and selection produce the same digests, which
// is how recompiles are shown to be idempotent and how run history links
// results to the workspace they came from.
package digest
