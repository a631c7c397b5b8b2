package model

import "time"

// AttemptExport is the top-level JSON structure for attempt export.
type AttemptExport struct {
	ExportedAt time.Time       `json:"exported_at"`
	Attempts   []AttemptResult `json:"attempts"`
}

// AttemptResult holds one archived attempt for export.
type AttemptResult struct {
	ID          string           `json:"id"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt time.Time        `json:"completed_at"`
	Score       int              `json:"score"`
	Passed      bool             `json:"passed"`
	Questions   []QuestionResult `json:"questions"`
}

// QuestionResult holds per-question data for export.
type QuestionResult struct {
	ID         string `json:"id"`
	Prompt     string `json:"prompt"`
	Domain     string `json:"domain,omitempty"`
	Competency string `json:"competency,omitempty"`
	Correct    Option `json:"correct_option"`
	Answer     Option `json:"answer,omitempty"`
	IsCorrect  bool   `json:"is_correct"`
}
