package service

import (
	"context"
	"errors"
	"log"
	"time"

	"codecampus/internal/app/judge"
	"codecampus/internal/common"
	"codecampus/internal/domain/model"
	"codecampus/internal/domain/repository"

	"github.com/google/uuid"
)

// KeyLocker serializes critical sections per key. Backed by Redis in
// production, faked in tests.
type KeyLocker interface {
	LockWithRetry(ctx context.Context, key string, ttl time.Duration, attempts int, backoff time.Duration) (func(), error)
}

type JudgeService struct {
	problemRepo    repository.ProblemRepository
	dailyRepo      repository.DailyQuestionRepository
	submissionRepo repository.SubmissionRepository
	progressRepo   repository.ProgressRepository
	runner         *judge.Runner
	locker         KeyLocker
	lockTTL        time.Duration
	now            func() time.Time
}

func NewJudgeService(
	problemRepo repository.ProblemRepository,
	dailyRepo repository.DailyQuestionRepository,
	submissionRepo repository.SubmissionRepository,
	progressRepo repository.ProgressRepository,
	runner *judge.Runner,
	locker KeyLocker,
	lockTTL time.Duration,
) *JudgeService {
	return &JudgeService{
		problemRepo:    problemRepo,
		dailyRepo:      dailyRepo,
		submissionRepo: submissionRepo,
		progressRepo:   progressRepo,
		runner:         runner,
		locker:         locker,
		lockTTL:        lockTTL,
		now:            time.Now,
	}
}

type RunRequest struct {
	ProblemID string `json:"problem_id"`
	Code      string `json:"code"`
	Language  string `json:"language"`
}

type RunResponse struct {
	Results   []judge.CaseResult `json:"results"`
	AllPassed bool               `json:"all_passed"`
}

type SubmitResponse struct {
	SubmissionID    string             `json:"submission_id"`
	Verdict         model.Verdict      `json:"verdict"`
	Results         []judge.CaseResult `json:"results"`
	TimeSeconds     float64            `json:"time_seconds"`
	MemoryKB        int                `json:"memory_kb"`
	TestCasesPassed int                `json:"test_cases_passed"`
	TotalTestCases  int                `json:"total_test_cases"`
}

func validateJudgeRequest(code, language string) error {
	if code == "" || language == "" {
		return common.Errorf("code and language are required: %w", common.ErrBadRequest)
	}
	if !judge.IsSupportedLanguage(language) {
		return common.Errorf("language %q: %w", language, common.ErrUnsupportedLanguage)
	}
	return nil
}

// Run evaluates code against the problem's visible sample cases only. Nothing
// is persisted.
func (s *JudgeService) Run(ctx context.Context, userID string, req RunRequest) (*RunResponse, error) {
	if err := validateJudgeRequest(req.Code, req.Language); err != nil {
		return nil, err
	}

	problem, err := s.problemRepo.FindProblemByID(ctx, req.ProblemID)
	if err != nil {
		return nil, common.Errorf("problem not found: %w", err)
	}
	if problem.Status != model.StatusPublished {
		return nil, common.Errorf("problem is not published: %w", common.ErrForbidden)
	}
	if len(problem.SampleCases) == 0 {
		return nil, common.Errorf("problem has no sample cases: %w", common.ErrBadRequest)
	}

	report := s.runner.RunTestCases(ctx, req.Code, req.Language, problem.SampleCases)
	return &RunResponse{Results: report.Results, AllPassed: report.AllPassed}, nil
}

// Submit evaluates code against the union of sample and hidden cases, records
// an immutable submission, and updates problem stats and user progress.
func (s *JudgeService) Submit(ctx context.Context, userID string, req RunRequest) (*SubmitResponse, error) {
	if err := validateJudgeRequest(req.Code, req.Language); err != nil {
		return nil, err
	}

	problem, err := s.problemRepo.FindProblemByID(ctx, req.ProblemID)
	if err != nil {
		return nil, common.Errorf("problem not found: %w", err)
	}
	if problem.Status != model.StatusPublished {
		return nil, common.Errorf("problem is not published: %w", common.ErrForbidden)
	}

	cases := problem.JudgeCases()
	if len(cases) == 0 {
		return nil, common.Errorf("problem has no test cases: %w", common.ErrBadRequest)
	}

	report := s.runner.RunTestCases(ctx, req.Code, req.Language, cases)
	return s.record(ctx, userID, problem, nil, req, report)
}

// record persists the evaluation outcome: submission row, aggregate counters,
// and (on Accepted) the user's progress.
func (s *JudgeService) record(ctx context.Context, userID string, problem *model.Problem, dailyQuestion *model.DailyQuestion, req RunRequest, report *judge.Report) (*SubmitResponse, error) {
	accepted := report.Verdict == model.VerdictAccepted

	submission := &model.Submission{
		ID:              uuid.NewString(),
		UserID:          userID,
		ProblemID:       problem.ID,
		Code:            req.Code,
		Language:        req.Language,
		Verdict:         report.Verdict,
		TimeSeconds:     report.TotalTimeSeconds,
		MemoryKB:        report.MaxMemoryKB,
		TestCasesPassed: report.TestCasesPassed,
		TotalTestCases:  report.TotalTestCases,
		SubmittedAt:     s.now(),
	}
	if dailyQuestion != nil {
		submission.DailyQuestionID = &dailyQuestion.ID
	}

	if err := s.submissionRepo.CreateSubmission(ctx, nil, submission); err != nil {
		return nil, common.Errorf("failed to create submission: %w", err)
	}

	if err := s.problemRepo.IncrementStats(ctx, problem.ID, accepted); err != nil {
		log.Printf("ERROR: Failed to increment stats for problem %s: %v", problem.ID, err)
	}
	if dailyQuestion != nil {
		if err := s.dailyRepo.IncrementStats(ctx, dailyQuestion.ID, accepted); err != nil {
			log.Printf("ERROR: Failed to increment stats for daily question %s: %v", dailyQuestion.ID, err)
		}
		rec := model.DailyUserSubmission{
			UserID:       userID,
			SubmissionID: submission.ID,
			Verdict:      report.Verdict,
			SubmittedAt:  submission.SubmittedAt,
		}
		if err := s.dailyRepo.AppendUserSubmission(ctx, dailyQuestion.ID, rec); err != nil {
			log.Printf("ERROR: Failed to append daily submission record for %s: %v", dailyQuestion.ID, err)
		}
	}

	if accepted {
		if err := s.updateProgress(ctx, userID, problem, submission.SubmittedAt); err != nil {
			log.Printf("ERROR: Failed to update progress for user %s: %v", userID, err)
		}
	}

	report.Sanitize()
	return &SubmitResponse{
		SubmissionID:    submission.ID,
		Verdict:         report.Verdict,
		Results:         report.Results,
		TimeSeconds:     report.TotalTimeSeconds,
		MemoryKB:        report.MaxMemoryKB,
		TestCasesPassed: report.TestCasesPassed,
		TotalTestCases:  report.TotalTestCases,
	}, nil
}

// updateProgress is a read-modify-write on UserProgress, serialized per user
// via a distributed lock so two quick submissions cannot lose an update.
func (s *JudgeService) updateProgress(ctx context.Context, userID string, problem *model.Problem, at time.Time) error {
	release, err := s.locker.LockWithRetry(ctx, "progress_lock:"+userID, s.lockTTL, 100, 50*time.Millisecond)
	if err != nil {
		return common.Errorf("progress lock for user %s: %w", userID, err)
	}
	defer release()

	progress, err := s.progressRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		progress = &model.UserProgress{UserID: userID}
	}

	// First accept only: a duplicate accepted submission for an already-solved
	// problem awards no points and does not re-append.
	if !progress.HasSolved(problem.ID) {
		progress.ProblemsSolved = append(progress.ProblemsSolved, problem.ID)
		progress.TotalPoints += problem.Points
	}

	updateStreak(&progress.Streak, at)

	progress.RecentActivity = append(progress.RecentActivity, model.Activity{
		ProblemID:    problem.ID,
		ProblemTitle: problem.Title,
		Verdict:      model.VerdictAccepted,
		Points:       problem.Points,
		OccurredAt:   at,
	})
	if overflow := len(progress.RecentActivity) - model.MaxRecentActivity; overflow > 0 {
		progress.RecentActivity = progress.RecentActivity[overflow:]
	}

	return s.progressRepo.Upsert(ctx, progress)
}

// updateStreak advances the streak record at day granularity: consecutive-day
// activity extends the run, a same-day repeat changes nothing, a gap resets.
func updateStreak(streak *model.Streak, at time.Time) {
	day := truncateToDay(at)
	switch {
	case streak.LastActivityDate == nil:
		streak.Current = 1
	case truncateToDay(*streak.LastActivityDate).Equal(day):
		// Already counted today.
	case truncateToDay(*streak.LastActivityDate).AddDate(0, 0, 1).Equal(day):
		streak.Current++
	default:
		streak.Current = 1
	}
	if streak.Current > streak.Longest {
		streak.Longest = streak.Current
	}
	streak.LastActivityDate = &day
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DailyRun evaluates code against today's daily question sample cases.
func (s *JudgeService) DailyRun(ctx context.Context, userID, code, language string) (*RunResponse, error) {
	if err := validateJudgeRequest(code, language); err != nil {
		return nil, err
	}
	dq, err := s.dailyRepo.FindByDate(ctx, truncateToDay(s.now()))
	if err != nil {
		return nil, common.Errorf("no daily question for today: %w", err)
	}
	samples := dq.SampleCases()
	if len(samples) == 0 {
		return nil, common.Errorf("daily question has no sample cases: %w", common.ErrBadRequest)
	}

	report := s.runner.RunTestCases(ctx, code, language, samples)
	return &RunResponse{Results: report.Results, AllPassed: report.AllPassed}, nil
}

// DailySubmit evaluates code against the full snapshot case set of today's
// daily question and records the attempt on both the snapshot and the source
// problem's stats.
func (s *JudgeService) DailySubmit(ctx context.Context, userID, code, language string) (*SubmitResponse, error) {
	if err := validateJudgeRequest(code, language); err != nil {
		return nil, err
	}
	dq, err := s.dailyRepo.FindByDate(ctx, truncateToDay(s.now()))
	if err != nil {
		return nil, common.Errorf("no daily question for today: %w", err)
	}
	if len(dq.TestCases) == 0 {
		return nil, common.Errorf("daily question has no test cases: %w", common.ErrBadRequest)
	}

	problem, err := s.problemRepo.FindProblemByID(ctx, dq.ProblemID)
	if err != nil {
		return nil, common.Errorf("source problem for daily question not found: %w", err)
	}

	report := s.runner.RunTestCases(ctx, code, language, dq.TestCases)
	return s.record(ctx, userID, problem, dq, RunRequest{ProblemID: problem.ID, Code: code, Language: language}, report)
}

// Progress returns the user's progress document, zero-valued if none exists yet.
func (s *JudgeService) Progress(ctx context.Context, userID string) (*model.UserProgress, error) {
	progress, err := s.progressRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return &model.UserProgress{UserID: userID}, nil
		}
		return nil, err
	}
	return progress, nil
}

func (s *JudgeService) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	return s.progressRepo.GetLeaderboard(ctx, limit)
}

// SubmissionHistory lists the user's prior submissions for one problem.
func (s *JudgeService) SubmissionHistory(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error) {
	return s.submissionRepo.ListForUserProblem(ctx, userID, problemID, limit, offset)
}
