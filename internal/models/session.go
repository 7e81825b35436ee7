package models

// SessionQuestion is the view of the question currently presented
type SessionQuestion struct {
	Key      string   `json:"key"`
	Position int      `json:"position"` // 1-based position in the queue
	Total    int      `json:"total"`
	Matching bool     `json:"matching"`
	Starred  bool     `json:"starred"`
	Reported bool     `json:"reported"`
	Question Question `json:"question"`
}

// AnswerResult is the outcome of one answer submission
type AnswerResult struct {
	Correct  bool         `json:"correct"`
	Selected string       `json:"selected"`
	Answer   string       `json:"answer"`
	Session  SessionStats `json:"session"`
}

// SessionSummary describes a finished or in-flight session
type SessionSummary struct {
	Completed bool         `json:"completed"`
	Stats     SessionStats `json:"stats"`
}
