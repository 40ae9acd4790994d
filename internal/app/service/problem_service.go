package service

import (
	"context"
	"log"

	"codecampus/internal/common"
	"codecampus/internal/domain/model"
	"codecampus/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
}

func NewProblemService(problemRepo repository.ProblemRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo}
}

type CreateProblemRequest struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Difficulty  model.ProblemDifficulty `json:"difficulty"`
	Category    string                  `json:"category"`
	Tags        []string                `json:"tags"`
	Constraints []string                `json:"constraints"`
	Hints       []string                `json:"hints"`
	SampleCases []model.TestCase        `json:"sample_cases"`
	HiddenCases []model.TestCase        `json:"hidden_cases"`
	Points      int                     `json:"points"`
	Publish     bool                    `json:"publish"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, userID string, req CreateProblemRequest) (*model.Problem, error) {
	if req.Title == "" || req.Description == "" {
		return nil, common.Errorf("title and description are required: %w", common.ErrBadRequest)
	}
	if !req.Difficulty.Valid() {
		return nil, common.Errorf("unknown difficulty %q: %w", req.Difficulty, common.ErrBadRequest)
	}
	if len(req.SampleCases)+len(req.HiddenCases) == 0 {
		return nil, common.Errorf("at least one test case is required: %w", common.ErrBadRequest)
	}

	status := model.StatusDraft
	if req.Publish {
		status = model.StatusPublished
	}

	problem := &model.Problem{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Slug:        slug.Make(req.Title),
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Category:    req.Category,
		Tags:        req.Tags,
		Constraints: req.Constraints,
		Hints:       req.Hints,
		SampleCases: markCases(req.SampleCases, false),
		HiddenCases: markCases(req.HiddenCases, true),
		Points:      req.Points,
		Status:      status,
		CreatedByID: &userID,
	}

	if err := s.problemRepo.CreateProblem(ctx, nil, problem); err != nil {
		return nil, common.Errorf("failed to create problem: %w", err)
	}
	log.Printf("Problem %s (%s) created by %s.", problem.ID, problem.Slug, userID)
	return problem, nil
}

func markCases(cases []model.TestCase, hidden bool) []model.TestCase {
	for i := range cases {
		cases[i].IsHidden = hidden
	}
	return cases
}

func (s *ProblemService) GetBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	problem, err := s.problemRepo.FindProblemBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if problem.Status != model.StatusPublished {
		return nil, common.ErrNotFound
	}
	return problem, nil
}

func (s *ProblemService) ListPublished(ctx context.Context, limit, offset int, difficulty model.ProblemDifficulty, category, search string) ([]model.Problem, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.problemRepo.ListPublished(ctx, limit, offset, difficulty, category, search)
}
