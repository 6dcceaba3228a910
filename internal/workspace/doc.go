// Package workspace holds the in-memory set of named source files that a
// session compiles as one program.
//
// Names are NFC-normalized on every access so that visually identical names
// typed on different platforms address the same file. Content is never
// validated: a workspace may hold text that does not compile.
//
// The entry file, EntryFile, always exists and cannot be removed.
package workspace
