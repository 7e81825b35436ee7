package models

// MaxHistoryPerQuestion caps the answer history kept for one question.
// Every write path must re-apply the cap together with the append, so no
// reader ever observes a longer list. Truncation drops the oldest entries.
const MaxHistoryPerQuestion = 20

// TruncateHistory re-applies the per-question history cap, dropping the
// oldest entries first. Every path that appends records must call this
// together with the append.
func TruncateHistory(records []HistoryRecord) []HistoryRecord {
	if len(records) <= MaxHistoryPerQuestion {
		return records
	}
	return records[len(records)-MaxHistoryPerQuestion:]
}

// HistoryRecord is one completed-answer event for a question
type HistoryRecord struct {
	Timestamp int64  `json:"ts"` // unix milliseconds
	Correct   bool   `json:"correct"`
	Selected  string `json:"selected"` // for matching questions this equals the answer
}

// History maps composite question keys to chronologically ordered records
type History map[string][]HistoryRecord

// Status classifies a question's learning state from its answer history
type Status string

// Learning states derived from the last two history records
const (
	StatusUnanswered Status = "unanswered"
	StatusWrong      Status = "wrong"
	StatusLearning   Status = "learning"
	StatusMastered   Status = "mastered"
)

// StatusCounts aggregates per-status question counts over a deck
type StatusCounts struct {
	Unanswered int `json:"unanswered"`
	Wrong      int `json:"wrong"`
	Learning   int `json:"learning"`
	Mastered   int `json:"mastered"`
}

// Report is a user-filed error report for a question. A question carries at
// most one report; filing again overwrites memo and timestamp.
type Report struct {
	Memo      string `json:"memo"`
	Timestamp int64  `json:"ts"` // unix milliseconds
}

// Settings holds the small persisted user preferences
type Settings struct {
	ShowEN       bool   `json:"showEn"`
	ActiveDeckID string `json:"activeDeckId"`
}

// OverallStats summarizes all recorded answers across every question
type OverallStats struct {
	TotalAnswers   int `json:"totalAnswers"`
	CorrectAnswers int `json:"correctAnswers"`
}
