// Package funding turns the votes attached to projects into scores and
// payouts.
//
// Both funding designs share one scoring core: a project that collects fewer
// than Quorum non-abstained amounts scores 0, otherwise its amounts are
// aggregated by the configured ScoringMethod and scores below MinAmount are
// zeroed. Pool additionally normalizes scores into a fixed funding pool.
package funding

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDesign is returned for funding parameters no design can run with.
var ErrInvalidDesign = errors.New("invalid funding design")

// ScoringMethod selects how a project's amounts are aggregated.
type ScoringMethod int

const (
	// MethodSum is the plain total. It is the default.
	MethodSum ScoringMethod = iota
	// MethodMean is the arithmetic mean.
	MethodMean
	// MethodMedian is the median, averaging the middle pair for even counts.
	MethodMedian
	// MethodQuadratic sums the square roots of the amounts, damping large
	// single allocations.
	MethodQuadratic
	// MethodOutliers is the mean of the amounts inside the inclusive
	// 25th-75th percentile band.
	MethodOutliers
)

var methodNames = map[ScoringMethod]string{
	MethodSum:       "sum",
	MethodMean:      "mean",
	MethodMedian:    "median",
	MethodQuadratic: "quadratic",
	MethodOutliers:  "outliers",
}

// ScoringMethods lists every method in declaration order.
func ScoringMethods() []ScoringMethod {
	return []ScoringMethod{MethodSum, MethodMean, MethodMedian, MethodQuadratic, MethodOutliers}
}

func (m ScoringMethod) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("ScoringMethod(%d)", int(m))
}

// Valid reports whether m is one of the declared methods.
func (m ScoringMethod) Valid() bool {
	_, ok := methodNames[m]
	return ok
}

// ParseScoringMethod maps a method name to its variant. The empty string
// selects MethodSum.
func ParseScoringMethod(s string) (ScoringMethod, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return MethodSum, nil
	}
	for m, n := range methodNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown scoring method %q", ErrInvalidDesign, s)
}

// MarshalText implements encoding.TextMarshaler.
func (m ScoringMethod) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: unknown scoring method %d", ErrInvalidDesign, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ScoringMethod) UnmarshalText(text []byte) error {
	parsed, err := ParseScoringMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
