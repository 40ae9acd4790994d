package judge

import (
	"context"
	"log"

	"codecampus/internal/domain/model"
)

// CaseResult is the outcome of one executed test case.
type CaseResult struct {
	Index         int           `json:"index"`
	Verdict       model.Verdict `json:"verdict"`
	Passed        bool          `json:"passed"`
	IsHidden      bool          `json:"is_hidden"`
	Input         string        `json:"input,omitempty"`
	Expected      string        `json:"expected_output,omitempty"`
	Actual        string        `json:"actual_output,omitempty"`
	Stderr        string        `json:"stderr,omitempty"`
	CompileOutput string        `json:"compile_output,omitempty"`
	TimeSeconds   float64       `json:"time_seconds"`
	MemoryKB      int           `json:"memory_kb"`
}

// Report aggregates a submission run. Execution stops at the first failing
// case, so TotalTimeSeconds and MaxMemoryKB cover only the executed prefix,
// not the full suite.
type Report struct {
	Results          []CaseResult  `json:"results"`
	AllPassed        bool          `json:"all_passed"`
	Verdict          model.Verdict `json:"verdict"`
	TestCasesPassed  int           `json:"test_cases_passed"`
	TotalTestCases   int           `json:"total_test_cases"`
	TotalTimeSeconds float64       `json:"total_time_seconds"`
	MaxMemoryKB      int           `json:"max_memory_kb"`
}

// Runner sequences sandbox calls across an ordered list of test cases.
type Runner struct {
	exec Executor
}

func NewRunner(exec Executor) *Runner {
	return &Runner{exec: exec}
}

// RunTestCases executes cases strictly in array order, one synchronous sandbox
// round trip each, and stops immediately after the first failing case. A
// transport failure is recorded as a failing SystemError case and also aborts
// iteration; the report is always structured, never an error.
func (r *Runner) RunTestCases(ctx context.Context, code, language string, cases []model.TestCase) *Report {
	report := &Report{
		Verdict:        model.VerdictAccepted,
		TotalTestCases: len(cases),
	}

	for i, tc := range cases {
		expected := tc.ExpectedOutput
		execResult, err := r.exec.Execute(ctx, ExecRequest{
			SourceCode:     code,
			Language:       language,
			Stdin:          tc.Input,
			ExpectedOutput: &expected,
		})
		if err != nil {
			log.Printf("ERROR: Sandbox call failed on case %d: %v", i, err)
			report.Results = append(report.Results, CaseResult{
				Index:    i,
				Verdict:  model.VerdictSystemError,
				IsHidden: tc.IsHidden,
				Input:    tc.Input,
				Expected: tc.ExpectedOutput,
			})
			report.Verdict = model.VerdictSystemError
			report.AllPassed = false
			return report
		}

		verdict := ResolveVerdict(execResult.StatusID, execResult.Stdout, &expected)
		result := CaseResult{
			Index:         i,
			Verdict:       verdict,
			Passed:        verdict == model.VerdictAccepted,
			IsHidden:      tc.IsHidden,
			Input:         tc.Input,
			Expected:      tc.ExpectedOutput,
			Actual:        execResult.Stdout,
			Stderr:        execResult.Stderr,
			CompileOutput: execResult.CompileOutput,
			TimeSeconds:   execResult.TimeSeconds,
			MemoryKB:      execResult.MemoryKB,
		}
		report.Results = append(report.Results, result)
		report.TotalTimeSeconds += execResult.TimeSeconds
		if execResult.MemoryKB > report.MaxMemoryKB {
			report.MaxMemoryKB = execResult.MemoryKB
		}

		if !result.Passed {
			report.Verdict = verdict
			return report
		}
		report.TestCasesPassed++
	}

	report.AllPassed = true
	return report
}

// Sanitize blanks out payload fields of hidden cases before a report leaves
// the evaluation core.
func (r *Report) Sanitize() {
	for i := range r.Results {
		if r.Results[i].IsHidden {
			r.Results[i].Input = ""
			r.Results[i].Expected = ""
			r.Results[i].Actual = ""
			r.Results[i].Stderr = ""
		}
	}
}
