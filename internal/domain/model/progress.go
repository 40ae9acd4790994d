package model

import "time"

// MaxRecentActivity bounds the per-user activity log; the oldest entry is
// evicted first on overflow.
const MaxRecentActivity = 50

type Streak struct {
	Current          int        `json:"current"`
	Longest          int        `json:"longest"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}

type Activity struct {
	ProblemID    string    `json:"problem_id"`
	ProblemTitle string    `json:"problem_title"`
	Verdict      Verdict   `json:"verdict"`
	Points       int       `json:"points"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// UserProgress is keyed uniquely by user and written only through the
// submission recorder.
type UserProgress struct {
	UserID         string     `json:"user_id"`
	ProblemsSolved []string   `json:"problems_solved"`
	TotalPoints    int        `json:"total_points"`
	Streak         Streak     `json:"streak"`
	RecentActivity []Activity `json:"recent_activity"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// HasSolved reports whether problemID is already in the solved list.
func (p *UserProgress) HasSolved(problemID string) bool {
	for _, id := range p.ProblemsSolved {
		if id == problemID {
			return true
		}
	}
	return false
}

type LeaderboardEntry struct {
	UserID         string `json:"user_id"`
	Username       string `json:"username"`
	TotalPoints    int    `json:"total_points"`
	ProblemsSolved int    `json:"problems_solved"`
}
