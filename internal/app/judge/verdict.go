package judge

import "codecampus/internal/domain/model"

// Sandbox terminal status codes. 1 and 2 (in queue / processing) never reach
// the resolver because the client waits synchronously for a terminal status.
const (
	statusAccepted          = 3
	statusWrongAnswer       = 4
	statusTimeLimitExceeded = 5
	statusCompilationError  = 6
	statusRuntimeErrorLow   = 7
	statusRuntimeErrorHigh  = 12
)

// ResolveVerdict maps a sandbox status code to a Verdict. When an expected
// output is supplied, the sandbox's own matched/mismatched judgment (status 3
// and 4) is overridden by re-running the tolerant comparator: the sandbox does
// a byte-exact compare and would reject "1.0" vs "1.000000".
func ResolveVerdict(statusID int, actualOutput string, expectedOutput *string) model.Verdict {
	switch {
	case statusID == statusAccepted, statusID == statusWrongAnswer:
		if expectedOutput != nil {
			if OutputsMatch(actualOutput, *expectedOutput) {
				return model.VerdictAccepted
			}
			return model.VerdictWrongAnswer
		}
		if statusID == statusAccepted {
			return model.VerdictAccepted
		}
		return model.VerdictWrongAnswer
	case statusID == statusTimeLimitExceeded:
		return model.VerdictTimeLimitExceeded
	case statusID == statusCompilationError:
		return model.VerdictCompilationError
	case statusID >= statusRuntimeErrorLow && statusID <= statusRuntimeErrorHigh:
		return model.VerdictRuntimeError
	default:
		return model.VerdictSystemError
	}
}
