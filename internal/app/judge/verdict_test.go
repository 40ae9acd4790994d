package judge

import (
	"testing"

	"codecampus/internal/domain/model"
)

func TestResolveVerdictStatusTable(t *testing.T) {
	cases := []struct {
		statusID int
		want     model.Verdict
	}{
		{5, model.VerdictTimeLimitExceeded},
		{6, model.VerdictCompilationError},
		{7, model.VerdictRuntimeError},
		{8, model.VerdictRuntimeError},
		{11, model.VerdictRuntimeError},
		{12, model.VerdictRuntimeError},
		{13, model.VerdictSystemError},
		{99, model.VerdictSystemError},
		{0, model.VerdictSystemError},
	}
	for _, tc := range cases {
		if got := ResolveVerdict(tc.statusID, "", nil); got != tc.want {
			t.Fatalf("ResolveVerdict(%d) = %s, want %s", tc.statusID, got, tc.want)
		}
	}
}

func TestResolveVerdictWithoutExpectedOutput(t *testing.T) {
	if got := ResolveVerdict(3, "anything", nil); got != model.VerdictAccepted {
		t.Fatalf("status 3 without expected output = %s, want Accepted", got)
	}
	if got := ResolveVerdict(4, "anything", nil); got != model.VerdictWrongAnswer {
		t.Fatalf("status 4 without expected output = %s, want WrongAnswer", got)
	}
}

func TestResolveVerdictComparatorOverride(t *testing.T) {
	expected := "1.000000"

	// The sandbox's byte-exact compare rejected "1.0", but the tolerant
	// comparator accepts it.
	if got := ResolveVerdict(4, "1.0", &expected); got != model.VerdictAccepted {
		t.Fatalf("tolerant override on status 4 = %s, want Accepted", got)
	}

	// Conversely a sandbox "match" that fails the comparator is WrongAnswer.
	other := "2.0"
	if got := ResolveVerdict(3, "1.0", &other); got != model.VerdictWrongAnswer {
		t.Fatalf("comparator override on status 3 = %s, want WrongAnswer", got)
	}

	exact := "hello"
	if got := ResolveVerdict(3, "hello\n", &exact); got != model.VerdictAccepted {
		t.Fatalf("trailing newline with expected output = %s, want Accepted", got)
	}
}

func TestResolveVerdictOverrideDoesNotApplyToOtherStatuses(t *testing.T) {
	expected := "42"
	// A TLE stays a TLE even if partial output happens to match.
	if got := ResolveVerdict(5, "42", &expected); got != model.VerdictTimeLimitExceeded {
		t.Fatalf("status 5 with matching output = %s, want TimeLimitExceeded", got)
	}
}
