package judge

import (
	"math"
	"strconv"
	"strings"
)

// floatTolerance is the absolute epsilon used when both outputs parse as
// numbers. Many problems expect a single numeric line where formatting
// ("1.0" vs "1.000000") legitimately varies.
const floatTolerance = 1e-6

// NormalizeOutput converts CRLF to LF, strips trailing whitespace from every
// line independently, then strips leading/trailing whitespace from the whole
// string. Normalization is idempotent.
func NormalizeOutput(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// OutputsMatch compares actual program output against the expected output.
// Normalized equality wins; otherwise, if both sides parse as floats, they
// match when within floatTolerance. Any other mismatch is a non-match.
func OutputsMatch(actual, expected string) bool {
	a := NormalizeOutput(actual)
	b := NormalizeOutput(expected)
	if a == b {
		return true
	}

	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		return math.Abs(fa-fb) < floatTolerance
	}
	return false
}
