package models

// SnapshotVersion is the only snapshot format version this build understands.
// Any other value must be rejected before a single field is read.
const SnapshotVersion = 1

// Snapshot is the portable serialization of all user progress state.
// The field names are the external interchange format and must not change.
type Snapshot struct {
	Version     int               `json:"version"`
	ExportedAt  string            `json:"exportedAt"` // RFC 3339
	History     History           `json:"history"`
	Starred     []string          `json:"starred"`
	Reports     map[string]Report `json:"reports"`
	CustomDecks []Deck            `json:"customDecks"`
	Settings    *Settings         `json:"settings,omitempty"`
}
