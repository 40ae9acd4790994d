package judge

import (
	"context"
	"errors"
	"testing"

	"codecampus/internal/domain/model"
)

// scriptedExecutor returns canned results in call order and records how many
// calls it received.
type scriptedExecutor struct {
	results []*ExecutionResult
	errs    []error
	calls   int
}

func (s *scriptedExecutor) Execute(_ context.Context, _ ExecRequest) (*ExecutionResult, error) {
	i := s.calls
	s.calls++
	if i >= len(s.results) {
		return nil, errors.New("unexpected extra sandbox call")
	}
	return s.results[i], s.errs[i]
}

func passResult(stdout string) *ExecutionResult {
	return &ExecutionResult{StatusID: 3, Stdout: stdout, TimeSeconds: 0.1, MemoryKB: 1024}
}

func threeCases() []model.TestCase {
	return []model.TestCase{
		{Input: "1", ExpectedOutput: "1"},
		{Input: "2", ExpectedOutput: "2"},
		{Input: "3", ExpectedOutput: "3", IsHidden: true},
	}
}

func TestRunTestCasesAllPass(t *testing.T) {
	exec := &scriptedExecutor{
		results: []*ExecutionResult{passResult("1"), passResult("2"), passResult("3")},
		errs:    []error{nil, nil, nil},
	}
	report := NewRunner(exec).RunTestCases(context.Background(), "code", "python", threeCases())

	if !report.AllPassed {
		t.Fatalf("expected AllPassed, got verdict %s", report.Verdict)
	}
	if report.Verdict != model.VerdictAccepted {
		t.Fatalf("verdict = %s, want Accepted", report.Verdict)
	}
	if report.TestCasesPassed != 3 || report.TotalTestCases != 3 {
		t.Fatalf("passed/total = %d/%d, want 3/3", report.TestCasesPassed, report.TotalTestCases)
	}
	if len(report.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(report.Results))
	}
}

func TestRunTestCasesEarlyExit(t *testing.T) {
	exec := &scriptedExecutor{
		results: []*ExecutionResult{passResult("1"), {StatusID: 4, Stdout: "wrong"}},
		errs:    []error{nil, nil},
	}
	report := NewRunner(exec).RunTestCases(context.Background(), "code", "python", threeCases())

	if exec.calls != 2 {
		t.Fatalf("sandbox called %d times, want 2 (third case must be skipped)", exec.calls)
	}
	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}
	if report.Verdict != model.VerdictWrongAnswer {
		t.Fatalf("verdict = %s, want WrongAnswer", report.Verdict)
	}
	if report.AllPassed {
		t.Fatal("AllPassed must be false on a failing case")
	}
	if report.TestCasesPassed != 1 || report.TotalTestCases != 3 {
		t.Fatalf("passed/total = %d/%d, want 1/3", report.TestCasesPassed, report.TotalTestCases)
	}
}

func TestRunTestCasesTransportErrorAborts(t *testing.T) {
	exec := &scriptedExecutor{
		results: []*ExecutionResult{passResult("1"), nil},
		errs:    []error{nil, errors.New("connection refused")},
	}
	report := NewRunner(exec).RunTestCases(context.Background(), "code", "python", threeCases())

	if exec.calls != 2 {
		t.Fatalf("sandbox called %d times, want 2", exec.calls)
	}
	if report.Verdict != model.VerdictSystemError {
		t.Fatalf("verdict = %s, want SystemError", report.Verdict)
	}
	last := report.Results[len(report.Results)-1]
	if last.Verdict != model.VerdictSystemError || last.Passed {
		t.Fatalf("failing case verdict = %s passed=%v, want SystemError/false", last.Verdict, last.Passed)
	}
}

func TestRunTestCasesAggregatesCoverExecutedPrefix(t *testing.T) {
	exec := &scriptedExecutor{
		results: []*ExecutionResult{
			{StatusID: 3, Stdout: "1", TimeSeconds: 0.2, MemoryKB: 2048},
			{StatusID: 3, Stdout: "2", TimeSeconds: 0.3, MemoryKB: 4096},
			{StatusID: 4, Stdout: "x", TimeSeconds: 0.1, MemoryKB: 1024},
		},
		errs: []error{nil, nil, nil},
	}
	report := NewRunner(exec).RunTestCases(context.Background(), "code", "python", threeCases())

	if got := report.TotalTimeSeconds; got < 0.59 || got > 0.61 {
		t.Fatalf("TotalTimeSeconds = %v, want ~0.6", got)
	}
	if report.MaxMemoryKB != 4096 {
		t.Fatalf("MaxMemoryKB = %d, want 4096", report.MaxMemoryKB)
	}
}

func TestRunTestCasesEmptySuite(t *testing.T) {
	exec := &scriptedExecutor{}
	report := NewRunner(exec).RunTestCases(context.Background(), "code", "python", nil)

	if !report.AllPassed || report.Verdict != model.VerdictAccepted {
		t.Fatalf("empty suite: AllPassed=%v verdict=%s, want true/Accepted", report.AllPassed, report.Verdict)
	}
	if exec.calls != 0 {
		t.Fatalf("sandbox called %d times on empty suite", exec.calls)
	}
}

func TestReportSanitize(t *testing.T) {
	report := &Report{Results: []CaseResult{
		{Index: 0, IsHidden: false, Input: "1", Expected: "1", Actual: "1", Stderr: "warn"},
		{Index: 1, IsHidden: true, Input: "secret", Expected: "secret", Actual: "leak", Stderr: "trace"},
	}}
	report.Sanitize()

	visible := report.Results[0]
	if visible.Input != "1" || visible.Actual != "1" {
		t.Fatal("sanitize must not touch visible cases")
	}
	hidden := report.Results[1]
	if hidden.Input != "" || hidden.Expected != "" || hidden.Actual != "" || hidden.Stderr != "" {
		t.Fatalf("hidden case payload not blanked: %+v", hidden)
	}
	if !hidden.IsHidden || hidden.Index != 1 {
		t.Fatal("sanitize must keep index and hidden flag")
	}
}
