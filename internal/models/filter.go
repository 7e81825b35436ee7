package models

// Scope modes for assembling a quiz session
const (
	ScopeAll     = "all"
	ScopeChapter = "chapter"
	ScopeTag     = "tag"
	ScopeType    = "type"
)

// HistoryFilterAll disables filtering by learning state
const HistoryFilterAll = "all"

// FilterState describes which questions a quiz session draws from.
// The stages compose in a fixed order: scope mode first, then the
// starred-only intersection, then the learning-state filter.
type FilterState struct {
	Mode        string   `json:"mode"`    // "all", "chapter", "tag" or "type"
	Chapter     int      `json:"chapter"` // 0 means no chapter selected
	Tags        []string `json:"tags"`
	StarredOnly bool     `json:"starredOnly"`
	ChapterType string   `json:"chapterType"`   // "domain" or "exam", used by ScopeType
	History     string   `json:"historyFilter"` // "all" or a Status value
}

// SessionStats counts answers within one quiz session
type SessionStats struct {
	Total   int `json:"total"`
	Correct int `json:"correct"`
}
