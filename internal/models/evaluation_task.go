package models

import "time"

// EvaluationTask is one run of the evaluation pipeline over an experiment
type EvaluationTask struct {
	ID    int64  `json:"id" db:"id"`
	RunID string `json:"run_id" db:"run_id"` // uuid

	// Task identification
	SpecID      string `json:"spec_id" db:"spec_id"`
	AuthorEmail string `json:"author_email" db:"author_email"`
	Analyzers   string `json:"analyzers" db:"analyzers"` // comma separated analyzer names

	// Status
	Status          string `json:"status" db:"status"` // pending, running, completed, failed
	ProgressPercent int    `json:"progress_percent" db:"progress_percent"`

	// Execution info
	StartTime int64 `json:"start_time,omitempty" db:"start_time"` // Unix timestamp
	EndTime   int64 `json:"end_time,omitempty" db:"end_time"`     // Unix timestamp

	// Results
	ResultSummary string `json:"result_summary,omitempty" db:"result_summary"` // JSON object with counts
	ResultJSON    string `json:"-" db:"result_json"`                           // serialized PhoneView
	ErrorMessage  string `json:"error_message,omitempty" db:"error_message"`

	// Metadata
	CreatedBy string    `json:"created_by,omitempty" db:"created_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TaskStatus constants
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// ResultSummary is the compact outcome stored alongside a finished task
type ResultSummary struct {
	Devices          int      `json:"devices"`
	EvaluationRanges int      `json:"evaluation_ranges"`
	TripRanges       int      `json:"trip_ranges"`
	SectionRanges    int      `json:"section_ranges"`
	References       int      `json:"references"`
	Warnings         []string `json:"warnings,omitempty"`
}
