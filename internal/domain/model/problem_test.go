package model

import "testing"

func TestJudgeCasesMergeOrder(t *testing.T) {
	p := &Problem{
		SampleCases: []TestCase{
			{Input: "s1", ExpectedOutput: "o1", IsHidden: true}, // flag corrected on merge
			{Input: "s2", ExpectedOutput: "o2"},
		},
		HiddenCases: []TestCase{
			{Input: "h1", ExpectedOutput: "o3"},
		},
	}

	cases := p.JudgeCases()
	if len(cases) != 3 {
		t.Fatalf("merged cases = %d, want 3", len(cases))
	}
	if cases[0].Input != "s1" || cases[1].Input != "s2" || cases[2].Input != "h1" {
		t.Fatal("samples must come first, in order")
	}
	if cases[0].IsHidden || cases[1].IsHidden {
		t.Fatal("sample cases must be tagged visible")
	}
	if !cases[2].IsHidden {
		t.Fatal("hidden cases must be tagged hidden")
	}
	// The merge works on copies; the source arrays keep their flags.
	if !p.SampleCases[0].IsHidden {
		t.Fatal("source sample case mutated")
	}
}

func TestDifficultyRank(t *testing.T) {
	ladder := []ProblemDifficulty{DifficultySchool, DifficultyBasic, DifficultyEasy, DifficultyMedium, DifficultyHard}
	for i := 1; i < len(ladder); i++ {
		if ladder[i-1].Rank() >= ladder[i].Rank() {
			t.Fatalf("%s must rank below %s", ladder[i-1], ladder[i])
		}
	}
	if ProblemDifficulty("Nightmare").Valid() {
		t.Fatal("unknown difficulty must be invalid")
	}
}

func TestDailyQuestionSampleCases(t *testing.T) {
	dq := &DailyQuestion{TestCases: []TestCase{
		{Input: "a"},
		{Input: "b", IsHidden: true},
		{Input: "c"},
	}}
	samples := dq.SampleCases()
	if len(samples) != 2 || samples[0].Input != "a" || samples[1].Input != "c" {
		t.Fatalf("samples = %+v", samples)
	}
}

func TestHasSolved(t *testing.T) {
	p := &UserProgress{ProblemsSolved: []string{"p1", "p2"}}
	if !p.HasSolved("p1") || p.HasSolved("p3") {
		t.Fatal("HasSolved membership check wrong")
	}
}
