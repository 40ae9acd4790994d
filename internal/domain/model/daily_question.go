package model

import "time"

// DailyUserSubmission is one user's attempt record embedded in a DailyQuestion.
type DailyUserSubmission struct {
	UserID       string    `json:"user_id"`
	SubmissionID string    `json:"submission_id"`
	Verdict      Verdict   `json:"verdict"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// DailyQuestion is a date-scoped snapshot of exactly one Problem, taken at
// selection time. At most one exists per calendar date; a problem title used
// by any prior daily question is not re-selected.
type DailyQuestion struct {
	ID               string                `json:"id"`
	ProblemID        string                `json:"problem_id"`
	QuestionDate     time.Time             `json:"question_date"`
	Title            string                `json:"title"`
	Difficulty       ProblemDifficulty     `json:"difficulty"`
	Category         string                `json:"category"`
	Tags             []string              `json:"tags,omitempty"`
	Description      string                `json:"description"`
	Constraints      []string              `json:"constraints,omitempty"`
	Hints            []string              `json:"hints,omitempty"`
	Points           int                   `json:"points"`
	TestCases        []TestCase            `json:"-"` // Merged sample+hidden, hidden never exposed
	TotalSubmissions int                   `json:"total_submissions"`
	TotalAccepted    int                   `json:"total_accepted"`
	UserSubmissions  []DailyUserSubmission `json:"-"`
	CreatedAt        time.Time             `json:"created_at"`
}

// SampleCases returns only the visible cases of the snapshot, in order.
func (d *DailyQuestion) SampleCases() []TestCase {
	var cases []TestCase
	for _, tc := range d.TestCases {
		if !tc.IsHidden {
			cases = append(cases, tc)
		}
	}
	return cases
}
