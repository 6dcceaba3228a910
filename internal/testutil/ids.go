package testutil

// DefaultSessionID is used by FixedIDGenerator when no id is given.
const DefaultSessionID = "test-session-default"

// FixedIDGenerator hands out the same session id every time so that run
// records and golden snapshots do not depend on UUIDv7 timestamps.
//
// It satisfies session.IDGenerator and is stateless.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator returns a generator for id, or DefaultSessionID when id
// is empty. Scenarios set it with:
//
//	session_id: "scenario-a"
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = DefaultSessionID
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
