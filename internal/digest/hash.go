package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes. The version suffix leaves room for algorithm changes.
const (
	DomainWorkspace = "ashpad/workspace/v1"
	DomainResult    = "ashpad/result/v1"
)

// hashWithDomain returns hex(SHA256(domain || 0x00 || data)).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Workspace returns the identity of a set of files. File names are
// normalized, so names differing only in Unicode composition collide.
func Workspace(files map[string]string) (string, error) {
	canonical, err := Marshal(files)
	if err != nil {
		return "", fmt.Errorf("workspace digest: %w", err)
	}
	return hashWithDomain(DomainWorkspace, canonical), nil
}

// ResultFields is the hashed view of one compile result.
type ResultFields struct {
	Target   string
	Field    string
	Status   string
	Stage    string
	Summary  string
	Message  string
	Artifact string
}

// Result returns the identity of a compile result. Identical selections over
// identical workspaces must produce identical result digests.
func Result(r ResultFields) (string, error) {
	canonical, err := Marshal(map[string]any{
		"target":   r.Target,
		"field":    r.Field,
		"status":   r.Status,
		"stage":    r.Stage,
		"summary":  r.Summary,
		"message":  r.Message,
		"artifact": r.Artifact,
	})
	if err != nil {
		return "", fmt.Errorf("result digest: %w", err)
	}
	return hashWithDomain(DomainResult, canonical), nil
}

// MustWorkspace is like Workspace but panics on error.
// File maps always marshal, so this is safe outside tests.
func MustWorkspace(files map[string]string) string {
	d, err := Workspace(files)
	if err != nil {
		panic(err)
	}
	return d
}
