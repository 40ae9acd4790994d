package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"codecampus/internal/common"
	"codecampus/internal/domain/model"
)

func candidateProblem(id, title string, difficulty model.ProblemDifficulty) *model.Problem {
	return &model.Problem{
		ID:         id,
		Title:      title,
		Slug:       id,
		Difficulty: difficulty,
		Status:     model.StatusPublished,
		Points:     10,
		SampleCases: []model.TestCase{
			{Input: "1", ExpectedOutput: "1"},
		},
		HiddenCases: []model.TestCase{
			{Input: "2", ExpectedOutput: "2"},
		},
	}
}

func newDailyFixture(problems ...*model.Problem) (*DailyService, *fakeDailyRepo, *fakeProblemRepo) {
	dailyRepo := newFakeDailyRepo()
	problemRepo := newFakeProblemRepo(problems...)
	svc := NewDailyService(dailyRepo, problemRepo, &fakeLocker{}, "daily_lock", time.Minute, 0)
	svc.rng = rand.New(rand.NewSource(1))
	return svc, dailyRepo, problemRepo
}

// dateWithSlot returns a date whose day-of-year lands on the given rotation
// slot.
func dateWithSlot(slot int) time.Time {
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC) // YearDay 1
	for d := 0; d < 6; d++ {
		t := base.AddDate(0, 0, d)
		if t.YearDay()%6 == slot {
			return t
		}
	}
	panic("unreachable")
}

func TestTargetDifficultyRotation(t *testing.T) {
	want := map[int]model.ProblemDifficulty{
		0: model.DifficultyEasy,
		1: model.DifficultyMedium,
		2: model.DifficultyEasy,
		3: model.DifficultyMedium,
		4: model.DifficultyHard,
		5: model.DifficultyMedium,
	}
	for slot, difficulty := range want {
		date := dateWithSlot(slot)
		if got := TargetDifficulty(date); got != difficulty {
			t.Fatalf("slot %d (%s): difficulty = %s, want %s", slot, date.Format("2006-01-02"), got, difficulty)
		}
	}
	// The mapping is a pure function of the date.
	date := dateWithSlot(4)
	if TargetDifficulty(date) != TargetDifficulty(date) {
		t.Fatal("TargetDifficulty must be deterministic")
	}
}

func TestSelectForCreatesSnapshot(t *testing.T) {
	svc, dailyRepo, _ := newDailyFixture(
		candidateProblem("p1", "Two Sum", model.DifficultyEasy),
	)

	date := dateWithSlot(0) // Easy slot
	dq, err := svc.SelectFor(context.Background(), date)
	if err != nil {
		t.Fatalf("SelectFor failed: %v", err)
	}

	if dq.Title != "Two Sum" || dq.ProblemID != "p1" {
		t.Fatalf("snapshot = %+v", dq)
	}
	if !dq.QuestionDate.Equal(truncateToDay(date)) {
		t.Fatalf("question date = %v, want %v", dq.QuestionDate, truncateToDay(date))
	}
	if len(dq.TestCases) != 2 {
		t.Fatalf("snapshot cases = %d, want 2 (sample + hidden merged)", len(dq.TestCases))
	}
	if !dq.TestCases[1].IsHidden {
		t.Fatal("hidden case must keep its flag in the snapshot")
	}
	if dq.TotalSubmissions != 0 || dq.TotalAccepted != 0 {
		t.Fatal("snapshot counters must start at zero")
	}
	if _, ok := dailyRepo.byDate[truncateToDay(date)]; !ok {
		t.Fatal("snapshot not persisted")
	}
}

func TestSelectForIdempotentSameDate(t *testing.T) {
	svc, dailyRepo, _ := newDailyFixture(
		candidateProblem("p1", "Two Sum", model.DifficultyEasy),
		candidateProblem("p2", "Three Sum", model.DifficultyEasy),
	)

	date := dateWithSlot(0)
	first, err := svc.SelectFor(context.Background(), date)
	if err != nil {
		t.Fatalf("first SelectFor failed: %v", err)
	}
	second, err := svc.SelectFor(context.Background(), date.Add(7*time.Hour))
	if err != nil {
		t.Fatalf("second SelectFor failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("second invocation picked a different question: %s vs %s", first.ID, second.ID)
	}
	if len(dailyRepo.byDate) != 1 {
		t.Fatalf("stored questions = %d, want 1", len(dailyRepo.byDate))
	}
}

func TestSelectForExcludesUsedTitles(t *testing.T) {
	svc, dailyRepo, _ := newDailyFixture(
		candidateProblem("p1", "Two Sum", model.DifficultyEasy),
		candidateProblem("p2", "Three Sum", model.DifficultyEasy),
	)

	// "Two Sum" already ran on an earlier date.
	past := truncateToDay(dateWithSlot(0).AddDate(0, 0, -30))
	dailyRepo.byDate[past] = &model.DailyQuestion{ID: "old", Title: "Two Sum", QuestionDate: past}

	dq, err := svc.SelectFor(context.Background(), dateWithSlot(0))
	if err != nil {
		t.Fatalf("SelectFor failed: %v", err)
	}
	if dq.Title != "Three Sum" {
		t.Fatalf("picked %q, want the only unused title Three Sum", dq.Title)
	}
}

func TestSelectForRelaxesDifficulty(t *testing.T) {
	// Hard slot, but only a Medium problem is available.
	svc, _, _ := newDailyFixture(
		candidateProblem("p1", "Only Medium", model.DifficultyMedium),
	)

	dq, err := svc.SelectFor(context.Background(), dateWithSlot(4))
	if err != nil {
		t.Fatalf("SelectFor failed: %v", err)
	}
	if dq.Title != "Only Medium" {
		t.Fatalf("picked %q, want fallback to any difficulty", dq.Title)
	}
}

func TestSelectForPoolExhausted(t *testing.T) {
	svc, dailyRepo, _ := newDailyFixture(
		candidateProblem("p1", "Two Sum", model.DifficultyEasy),
	)
	past := truncateToDay(dateWithSlot(0).AddDate(0, 0, -10))
	dailyRepo.byDate[past] = &model.DailyQuestion{ID: "old", Title: "Two Sum", QuestionDate: past}

	_, err := svc.SelectFor(context.Background(), dateWithSlot(0))
	if !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("err = %v, want ErrPoolExhausted", err)
	}
	// The day stays unfilled; no partial row.
	if len(dailyRepo.byDate) != 1 {
		t.Fatalf("stored questions = %d, want only the historical one", len(dailyRepo.byDate))
	}
}

func TestSelectForLosesCreateRace(t *testing.T) {
	svc, dailyRepo, _ := newDailyFixture(
		candidateProblem("p1", "Two Sum", model.DifficultyEasy),
	)

	date := dateWithSlot(0)
	day := truncateToDay(date)
	winner := &model.DailyQuestion{ID: "winner", Title: "Two Sum", QuestionDate: day}

	// Simulate a concurrent trigger winning the insert between our existence
	// check and our Create: the first FindByDate misses, the Create hits the
	// unique constraint, the re-fetch finds the winner's row.
	dailyRepo.findMisses = 1
	dailyRepo.createErr = common.ErrConflict
	dailyRepo.byDate[day] = winner

	dq, err := svc.SelectFor(context.Background(), date)
	if err != nil {
		t.Fatalf("SelectFor failed: %v", err)
	}
	if dq.ID != "winner" {
		t.Fatalf("got %s, want the winner's row", dq.ID)
	}
}

func TestNextFireTime(t *testing.T) {
	svc, _, _ := newDailyFixture()
	svc.rotationHr = 6

	before := time.Date(2026, time.May, 1, 3, 0, 0, 0, time.UTC)
	if got := svc.nextFireTime(before); !got.Equal(time.Date(2026, time.May, 1, 6, 0, 0, 0, time.UTC)) {
		t.Fatalf("before rotation hour: next = %v", got)
	}

	after := time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)
	if got := svc.nextFireTime(after); !got.Equal(time.Date(2026, time.May, 2, 6, 0, 0, 0, time.UTC)) {
		t.Fatalf("after rotation hour: next = %v", got)
	}

	exactly := time.Date(2026, time.May, 1, 6, 0, 0, 0, time.UTC)
	if got := svc.nextFireTime(exactly); !got.Equal(time.Date(2026, time.May, 2, 6, 0, 0, 0, time.UTC)) {
		t.Fatalf("exactly at rotation hour: next = %v", got)
	}
}
