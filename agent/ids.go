package agent

import "github.com/google/uuid"

// Well-known id prefixes for domain objects.
const (
	PrefixMainTask = "maintask"
	PrefixSubTask  = "subtask"
	PrefixGoal     = "goal"
	PrefixRule     = "rule"
)

// IDGenerator produces identifiers for domain objects. Kept behind an
// interface so tests can supply deterministic ids.
type IDGenerator interface {
	// NewID returns a fresh identifier with the given prefix, e.g.
	// "subtask_<uuid>". An empty prefix yields a bare id.
	NewID(prefix string) string
}

// UUIDGenerator is the default IDGenerator backed by random UUIDs.
type UUIDGenerator struct{}

// NewID returns "<prefix>_<uuid>" or a bare uuid when prefix is empty.
func (UUIDGenerator) NewID(prefix string) string {
	id := uuid.New().String()
	if prefix == "" {
		return id
	}
	return prefix + "_" + id
}
