// Package models defines the request, response and result types shared across kotae.
package models

import "fmt"

// Tier is the confidence classification of a resolution.
type Tier int

const (
	// NotFound means the query is outside the corpus domain.
	NotFound Tier = iota
	// Low confidence.
	Low
	// Medium confidence.
	Medium
	// High confidence.
	High
)

var tierNames = map[Tier]string{
	High:     "high",
	Medium:   "medium",
	Low:      "low",
	NotFound: "not_found",
}

// String returns the lowercase tier name.
func (t Tier) String() string {
	if s, ok := tierNames[t]; ok {
		return s
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// MarshalText encodes the tier as its name.
func (t Tier) MarshalText() ([]byte, error) {
	s, ok := tierNames[t]
	if !ok {
		return nil, fmt.Errorf("unknown tier %d", int(t))
	}
	return []byte(s), nil
}

// UnmarshalText parses a tier name.
func (t *Tier) UnmarshalText(b []byte) error {
	for tier, name := range tierNames {
		if name == string(b) {
			*t = tier
			return nil
		}
	}
	return fmt.Errorf("unknown tier %q", string(b))
}

// Found reports whether the tier carries a corpus answer.
func (t Tier) Found() bool { return t != NotFound }
