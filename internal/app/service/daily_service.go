package service

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"time"

	"codecampus/internal/common"
	"codecampus/internal/domain/model"
	"codecampus/internal/domain/repository"

	"github.com/google/uuid"
)

// ErrPoolExhausted means no published, unused problem was available even after
// relaxing the difficulty constraint. The day stays unfilled; the next
// scheduled run retries, which only helps once new problems are published.
var ErrPoolExhausted = errors.New("daily question pool exhausted")

// dailyRotation is the fixed difficulty pattern indexed by day-of-year mod 6.
// Medium gets double weight.
var dailyRotation = [6]model.ProblemDifficulty{
	model.DifficultyEasy,
	model.DifficultyMedium,
	model.DifficultyEasy,
	model.DifficultyMedium,
	model.DifficultyHard,
	model.DifficultyMedium,
}

type DailyService struct {
	dailyRepo   repository.DailyQuestionRepository
	problemRepo repository.ProblemRepository
	locker      KeyLocker
	lockKey     string
	lockTTL     time.Duration
	rotationHr  int
	now         func() time.Time
	rng         *rand.Rand
}

func NewDailyService(
	dailyRepo repository.DailyQuestionRepository,
	problemRepo repository.ProblemRepository,
	locker KeyLocker,
	lockKey string,
	lockTTL time.Duration,
	rotationHourUTC int,
) *DailyService {
	return &DailyService{
		dailyRepo:   dailyRepo,
		problemRepo: problemRepo,
		locker:      locker,
		lockKey:     lockKey,
		lockTTL:     lockTTL,
		rotationHr:  rotationHourUTC,
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Current returns the daily question for the current calendar date.
func (s *DailyService) Current(ctx context.Context) (*model.DailyQuestion, error) {
	return s.dailyRepo.FindByDate(ctx, truncateToDay(s.now()))
}

// TargetDifficulty returns the rotation tier for the given date.
func TargetDifficulty(date time.Time) model.ProblemDifficulty {
	return dailyRotation[date.YearDay()%6]
}

// SelectFor picks and materializes the daily question for the date of t.
// Invoking it twice for the same date is a no-op returning the existing
// entity; that check is the sole duplicate guard besides the unique date
// constraint at the storage layer.
func (s *DailyService) SelectFor(ctx context.Context, t time.Time) (*model.DailyQuestion, error) {
	day := truncateToDay(t)

	existing, err := s.dailyRepo.FindByDate(ctx, day)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, common.Errorf("daily existence check: %w", err)
	}

	if s.locker != nil {
		release, lockErr := s.locker.LockWithRetry(ctx, s.lockKey, s.lockTTL, 3, 200*time.Millisecond)
		if lockErr != nil {
			// Another trigger is mid-selection; whoever wins writes the row.
			log.Printf("INFO: Daily selection lock busy, deferring: %v", lockErr)
			return s.dailyRepo.FindByDate(ctx, day)
		}
		defer release()
	}

	target := TargetDifficulty(day)
	used, err := s.dailyRepo.UsedTitles(ctx)
	if err != nil {
		return nil, common.Errorf("collect used titles: %w", err)
	}

	problem, err := s.sample(ctx, target, used)
	if errors.Is(err, ErrPoolExhausted) {
		// Relax the difficulty constraint and resample from everything unused.
		problem, err = s.sample(ctx, "", used)
	}
	if err != nil {
		return nil, err
	}

	dq := snapshotDailyQuestion(problem, day)
	if err := s.dailyRepo.Create(ctx, dq); err != nil {
		if errors.Is(err, common.ErrConflict) {
			// Lost a race with a concurrent trigger; theirs is the day's entity.
			return s.dailyRepo.FindByDate(ctx, day)
		}
		return nil, common.Errorf("materialize daily question: %w", err)
	}

	log.Printf("INFO: Daily question for %s selected: %q (%s)", day.Format("2006-01-02"), dq.Title, dq.Difficulty)
	return dq, nil
}

func (s *DailyService) sample(ctx context.Context, difficulty model.ProblemDifficulty, used map[string]bool) (*model.Problem, error) {
	candidates, err := s.problemRepo.ListCandidates(ctx, difficulty)
	if err != nil {
		return nil, common.Errorf("list candidates: %w", err)
	}

	var eligible []model.Problem
	for _, p := range candidates {
		if !used[p.Title] {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrPoolExhausted
	}
	picked := eligible[s.rng.Intn(len(eligible))]
	return &picked, nil
}

// snapshotDailyQuestion clones the source problem into a date-pinned entity,
// merging sample and hidden cases into one flagged array and zeroing counters.
func snapshotDailyQuestion(p *model.Problem, day time.Time) *model.DailyQuestion {
	return &model.DailyQuestion{
		ID:              uuid.NewString(),
		ProblemID:       p.ID,
		QuestionDate:    day,
		Title:           p.Title,
		Difficulty:      p.Difficulty,
		Category:        p.Category,
		Tags:            p.Tags,
		Description:     p.Description,
		Constraints:     p.Constraints,
		Hints:           p.Hints,
		Points:          p.Points,
		TestCases:       p.JudgeCases(),
		UserSubmissions: []model.DailyUserSubmission{},
	}
}

// Start runs the selection loop: one catch-up invocation at startup, then one
// per day at the configured wall-clock hour, until ctx is cancelled.
func (s *DailyService) Start(ctx context.Context) {
	log.Printf("Daily question scheduler started (rotation hour %02d:00 UTC)", s.rotationHr)
	s.runOnce(ctx)

	for {
		next := s.nextFireTime(s.now())
		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Println("Daily question scheduler stopping...")
			return
		case <-timer.C:
			s.runOnce(ctx)
		}
	}
}

func (s *DailyService) runOnce(ctx context.Context) {
	if _, err := s.SelectFor(ctx, s.now()); err != nil {
		if errors.Is(err, ErrPoolExhausted) {
			log.Printf("WARN: Daily question selection skipped: %v", err)
			return
		}
		log.Printf("ERROR: Daily question selection failed: %v", err)
	}
}

func (s *DailyService) nextFireTime(now time.Time) time.Time {
	now = now.UTC()
	fire := time.Date(now.Year(), now.Month(), now.Day(), s.rotationHr, 0, 0, 0, time.UTC)
	if !fire.After(now) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire
}
