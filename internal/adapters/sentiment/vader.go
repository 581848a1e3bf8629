// Package sentiment provides a local, deterministic polarity scorer backed
// by the VADER lexicon and rules.
package sentiment

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

// base is parsed once; the embedded lexicon holds several thousand entries.
var base = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// Option applies a configuration option to the Vader scorer.
type Option func(*Vader)

// WithWords adds or replaces lexicon valences. Values use the VADER scale,
// roughly -4 to 4.
func WithWords(words map[string]float64) Option {
	return func(v *Vader) {
		v.extra = words
	}
}

// Vader scores English text with the compound VADER score, which accounts
// for negation, boosters, capitalisation and punctuation.
type Vader struct {
	analyzer *govader.SentimentIntensityAnalyzer
	extra    map[string]float64
}

// NewVader creates a scorer with the built-in VADER lexicon.
func NewVader(opts ...Option) *Vader {
	v := &Vader{}
	for _, opt := range opts {
		opt(v)
	}

	shared := base()
	if len(v.extra) == 0 {
		v.analyzer = shared
		return v
	}

	// Custom words get a private copy of the lexicon; the shared analyzer is
	// only ever read.
	lexicon := maps.Clone(shared.Lexicon)
	for w, p := range v.extra {
		lexicon[strings.ToLower(w)] = p
	}
	v.analyzer = &govader.SentimentIntensityAnalyzer{
		Lexicon:   lexicon,
		EmojiDict: shared.EmojiDict,
		Constants: shared.Constants,
	}
	return v
}

// Polarity returns the compound score in [-1, 1]. Text without sentiment
// words scores 0.
func (v *Vader) Polarity(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("vader: %w", err)
	}
	return v.analyzer.PolarityScores(text).Compound, nil
}
