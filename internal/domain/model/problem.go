package model

import (
	"time"
)

type ProblemDifficulty string
type ProblemStatus string

const (
	DifficultySchool ProblemDifficulty = "School"
	DifficultyBasic  ProblemDifficulty = "Basic"
	DifficultyEasy   ProblemDifficulty = "Easy"
	DifficultyMedium ProblemDifficulty = "Medium"
	DifficultyHard   ProblemDifficulty = "Hard"

	StatusDraft     ProblemStatus = "Draft"
	StatusPublished ProblemStatus = "Published"
	StatusArchived  ProblemStatus = "Archived"
)

// difficultyRank orders the difficulty ladder: School < Basic < Easy < Medium < Hard.
var difficultyRank = map[ProblemDifficulty]int{
	DifficultySchool: 0,
	DifficultyBasic:  1,
	DifficultyEasy:   2,
	DifficultyMedium: 3,
	DifficultyHard:   4,
}

func (d ProblemDifficulty) Rank() int {
	return difficultyRank[d]
}

func (d ProblemDifficulty) Valid() bool {
	_, ok := difficultyRank[d]
	return ok
}

// TestCase is a value type, not an entity: problems and daily questions embed
// ordered arrays of these, and array order defines execution order.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	IsHidden       bool   `json:"is_hidden"`
	Explanation    string `json:"explanation,omitempty"` // Sample cases only
}

type Problem struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Slug              string            `json:"slug"`
	Description       string            `json:"description"`
	Difficulty        ProblemDifficulty `json:"difficulty"`
	Category          string            `json:"category"`
	Tags              []string          `json:"tags,omitempty"`
	Constraints       []string          `json:"constraints,omitempty"`
	Hints             []string          `json:"hints,omitempty"`
	SampleCases       []TestCase        `json:"sample_cases,omitempty"`
	HiddenCases       []TestCase        `json:"-"` // Never exposed to clients
	Points            int               `json:"points"`
	Status            ProblemStatus     `json:"status"`
	TotalSubmissions  int               `json:"total_submissions"`
	TotalAccepted     int               `json:"total_accepted"`
	CreatedByID       *string           `json:"created_by_id,omitempty"`
	CreatedByUsername *string           `json:"created_by_username,omitempty"` // For display
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// JudgeCases returns the merged case list used for a full submission: samples
// first, hidden after, each tagged with its visibility.
func (p *Problem) JudgeCases() []TestCase {
	cases := make([]TestCase, 0, len(p.SampleCases)+len(p.HiddenCases))
	for _, tc := range p.SampleCases {
		tc.IsHidden = false
		cases = append(cases, tc)
	}
	for _, tc := range p.HiddenCases {
		tc.IsHidden = true
		cases = append(cases, tc)
	}
	return cases
}
