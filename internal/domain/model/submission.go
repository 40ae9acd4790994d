package model

import "time"

// Verdict is the closed outcome taxonomy for a submission. Each test case also
// carries a display status drawn from the same set.
type Verdict string

const (
	VerdictAccepted          Verdict = "Accepted"
	VerdictWrongAnswer       Verdict = "WrongAnswer"
	VerdictTimeLimitExceeded Verdict = "TimeLimitExceeded"
	VerdictCompilationError  Verdict = "CompilationError"
	VerdictRuntimeError      Verdict = "RuntimeError"
	VerdictSystemError       Verdict = "SystemError"
)

// Submission is append-only: a re-submission creates a new entity, never
// mutates a prior one.
type Submission struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ProblemID       string    `json:"problem_id"`
	DailyQuestionID *string   `json:"daily_question_id,omitempty"`
	Code            string    `json:"code"`
	Language        string    `json:"language"`
	Verdict         Verdict   `json:"verdict"`
	TimeSeconds     float64   `json:"time_seconds"`
	MemoryKB        int       `json:"memory_kb"`
	TestCasesPassed int       `json:"test_cases_passed"`
	TotalTestCases  int       `json:"total_test_cases"`
	SubmittedAt     time.Time `json:"submitted_at"`
	ProblemTitle    *string   `json:"problem_title,omitempty"` // For display
}
