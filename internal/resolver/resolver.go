// Package resolver turns nearest-line hits into an answer and a confidence tier.
package resolver

import (
	"errors"
	"fmt"

	"github.com/hyperjump/kotae/internal/corpus"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vector"
)

// ErrNoAnswerFound is returned when every hit is within the threshold but none
// resolves to an answer line.
var ErrNoAnswerFound = errors.New("no hit resolved to an answer")

// Defaults used by DefaultConfig and ApplyDefaults.
const (
	DefaultThreshold = 1.5
	DefaultHighBelow = 1.0
	DefaultFallback  = "I don't have information about that topic in my database. Please ask about: housing, transportation, groceries, work permits, or UHIP."
)

// Config holds the distance boundaries used to resolve and classify hits.
type Config struct {
	// Threshold is the out-of-domain cutoff: a hit at or beyond it ends resolution as NotFound.
	Threshold float64 `yaml:"threshold"` // default: 1.5
	// HighBelow is the exclusive upper bound of the High tier.
	HighBelow float64 `yaml:"high_below"` // default: 1.0
	// MediumBelow is the exclusive upper bound of the Medium tier; resolved hits at or beyond it are Low.
	MediumBelow float64 `yaml:"medium_below"` // default: Threshold
	// FallbackAnswer is returned verbatim for NotFound.
	FallbackAnswer string `yaml:"fallback_answer"`
}

// DefaultConfig returns the default boundaries. Low is unreachable with these
// values since MediumBelow equals Threshold.
func DefaultConfig() Config {
	return Config{
		Threshold:      DefaultThreshold,
		HighBelow:      DefaultHighBelow,
		MediumBelow:    DefaultThreshold,
		FallbackAnswer: DefaultFallback,
	}
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Threshold == 0 {
		c.Threshold = DefaultThreshold
	}
	if c.HighBelow == 0 {
		c.HighBelow = DefaultHighBelow
	}
	if c.MediumBelow == 0 {
		c.MediumBelow = c.Threshold
	}
	if c.FallbackAnswer == "" {
		c.FallbackAnswer = DefaultFallback
	}
}

// Validate requires 0 < HighBelow <= MediumBelow <= Threshold.
func (c Config) Validate() error {
	if c.HighBelow <= 0 {
		return fmt.Errorf("high_below must be positive, got %v", c.HighBelow)
	}
	if c.MediumBelow < c.HighBelow {
		return fmt.Errorf("medium_below (%v) must not be below high_below (%v)", c.MediumBelow, c.HighBelow)
	}
	if c.Threshold < c.MediumBelow {
		return fmt.Errorf("threshold (%v) must not be below medium_below (%v)", c.Threshold, c.MediumBelow)
	}
	return nil
}

// Resolver applies the first-match resolution rules to a hit list.
type Resolver struct {
	cfg Config
}

// New returns a Resolver; zero fields of cfg take their defaults.
func New(cfg Config) *Resolver {
	cfg.ApplyDefaults()
	return &Resolver{cfg: cfg}
}

// Config returns the effective configuration.
func (r *Resolver) Config() Config { return r.cfg }

// Resolve scans hits in order. The first hit at or beyond the threshold ends
// the scan as NotFound. Otherwise the first Answer hit, or the first Question
// hit with a linked answer, wins. Plain and orphan question hits are skipped.
func (r *Resolver) Resolve(hits []vector.Hit, store *corpus.Store) (*models.Resolution, error) {
	for _, hit := range hits {
		if hit.Distance >= r.cfg.Threshold {
			return &models.Resolution{
				Answer:    r.cfg.FallbackAnswer,
				Distance:  hit.Distance,
				Tier:      models.NotFound,
				LineIndex: -1,
			}, nil
		}

		line, err := store.Get(hit.Index)
		if err != nil {
			return nil, fmt.Errorf("resolve hit: %w", err)
		}
		switch line.Kind {
		case corpus.Answer:
		case corpus.Question:
			a, ok := store.AnswerFor(line.Index)
			if !ok {
				continue
			}
			line = a
		default:
			continue
		}
		return &models.Resolution{
			Answer:    store.AnswerText(line),
			Distance:  hit.Distance,
			Tier:      r.Classify(hit.Distance),
			LineIndex: line.Index,
		}, nil
	}
	return nil, ErrNoAnswerFound
}

// Classify maps the distance of a resolved hit to High, Medium or Low.
func (r *Resolver) Classify(d float64) models.Tier {
	switch {
	case d < r.cfg.HighBelow:
		return models.High
	case d < r.cfg.MediumBelow:
		return models.Medium
	default:
		return models.Low
	}
}
