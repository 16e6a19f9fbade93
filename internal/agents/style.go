package agents

import (
	"fmt"
	"strings"
)

// VotingStyle selects the judgement model of a PairwiseBadgeholder.
type VotingStyle int

const (
	// StyleSkewedTowardsImpact judges pairs through the expertise model,
	// subject to laziness and conflicts of interest.
	StyleSkewedTowardsImpact VotingStyle = iota

	// StyleRandom prefers either project with equal probability.
	StyleRandom

	// StylePerfect always prefers the project with the higher true impact.
	StylePerfect
)

var styleNames = map[VotingStyle]string{
	StyleSkewedTowardsImpact: "skewed_towards_impact",
	StyleRandom:              "random",
	StylePerfect:             "perfect",
}

// String returns the configuration name of the style.
func (s VotingStyle) String() string {
	if name, ok := styleNames[s]; ok {
		return name
	}
	return fmt.Sprintf("VotingStyle(%d)", int(s))
}

// ParseVotingStyle maps a configuration name (case-insensitive) to a style.
func ParseVotingStyle(name string) (VotingStyle, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for style, n := range styleNames {
		if n == key {
			return style, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (valid: random, skewed_towards_impact, perfect)", ErrUnsupportedStyle, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s VotingStyle) MarshalText() ([]byte, error) {
	if _, ok := styleNames[s]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedStyle, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *VotingStyle) UnmarshalText(text []byte) error {
	style, err := ParseVotingStyle(string(text))
	if err != nil {
		return err
	}
	*s = style
	return nil
}
