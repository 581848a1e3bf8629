// Package advisory turns a track and four subject scores into guidance text.
package advisory

import (
	"errors"
	"fmt"
	"math"
	"regexp"

	"github.com/okian/orientbot/internal/domain/track"
)

// Score bounds and the pass threshold for the average.
const (
	MinScore      = 0
	MaxScore      = 20
	PassThreshold = 10
	scoreCount    = 4
)

// Verdict names the branch taken by Evaluate.
type Verdict string

// Possible verdicts.
const (
	VerdictInvalidTrack Verdict = "invalid_track"
	VerdictOutOfRange   Verdict = "out_of_range"
	VerdictGoodChoice   Verdict = "good_choice"
	VerdictReconsider   Verdict = "reconsider"
)

// Messages holds the texts returned for each verdict. GoodChoice and
// Reconsider are format strings taking the average (float) then the track.
type Messages struct {
	InvalidTrack string `koanf:"invalid_track"`
	OutOfRange   string `koanf:"out_of_range"`
	GoodChoice   string `koanf:"good_choice"`
	Reconsider   string `koanf:"reconsider"`
}

// DefaultMessages returns the built-in French texts.
func DefaultMessages() Messages {
	return Messages{
		InvalidTrack: "Branche invalide",
		OutOfRange:   "Les notes doivent être comprises entre 0 et 20.",
		GoodChoice:   "Félicitations ! Votre moyenne de %.2f montre que vous avez fait un bon choix en %s.",
		Reconsider:   "Votre moyenne de %.2f est en dessous de 10. Peut-être devriez-vous réfléchir à votre choix de %s.",
	}
}

// ErrInvalidMessage reports a verdict text that cannot be rendered.
var ErrInvalidMessage = errors.New("invalid advisory message")

var directive = regexp.MustCompile(`^%[-+# 0]*[0-9]*(?:\.[0-9]*)?[a-zA-Z]`)

// ValidateMessages checks that GoodChoice and Reconsider, when set, take a
// float verb for the average followed by a string verb for the track.
// Empty fields are valid and fall back to the defaults.
func ValidateMessages(m Messages) error {
	for name, format := range map[string]string{"good_choice": m.GoodChoice, "reconsider": m.Reconsider} {
		if format == "" {
			continue
		}
		if err := checkFormat(format); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidMessage, name, err)
		}
	}
	return nil
}

func checkFormat(format string) error {
	var verbs []byte
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			continue
		}
		if i+1 < len(format) && format[i+1] == '%' {
			i++
			continue
		}
		d := directive.FindString(format[i:])
		if d == "" {
			return fmt.Errorf("unsupported directive at offset %d", i)
		}
		verbs = append(verbs, d[len(d)-1])
		i += len(d) - 1
	}
	if len(verbs) != 2 {
		return fmt.Errorf("want 2 directives, got %d", len(verbs))
	}
	switch verbs[0] {
	case 'e', 'E', 'f', 'F', 'g', 'G':
	default:
		return fmt.Errorf("average needs a float verb, got %%%c", verbs[0])
	}
	if verbs[1] != 's' && verbs[1] != 'v' {
		return fmt.Errorf("track needs %%s, got %%%c", verbs[1])
	}
	return nil
}

// merge fills empty fields of m from d.
func (m Messages) merge(d Messages) Messages {
	if m.InvalidTrack == "" {
		m.InvalidTrack = d.InvalidTrack
	}
	if m.OutOfRange == "" {
		m.OutOfRange = d.OutOfRange
	}
	if m.GoodChoice == "" {
		m.GoodChoice = d.GoodChoice
	}
	if m.Reconsider == "" {
		m.Reconsider = d.Reconsider
	}
	return m
}

// Result is the outcome of one evaluation.
type Result struct {
	Verdict Verdict
	Message string
	Track   track.Track
	// Average is only set for VerdictGoodChoice and VerdictReconsider.
	Average float64
}

// Evaluated reports whether an average was computed.
func (r Result) Evaluated() bool {
	return r.Verdict == VerdictGoodChoice || r.Verdict == VerdictReconsider
}

// Option applies a configuration option to the Evaluator.
type Option func(*Evaluator)

// WithMessages overrides verdict texts. Empty fields keep their default.
func WithMessages(m Messages) Option {
	return func(e *Evaluator) {
		e.messages = m.merge(e.messages)
	}
}

// Evaluator validates scores and classifies their average. It holds no
// per-request state and is safe for concurrent use.
type Evaluator struct {
	messages Messages
}

// New creates an Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{messages: DefaultMessages()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate checks the track, then the scores, then classifies the average.
// Validation failures are reported through the returned Result.
func (e *Evaluator) Evaluate(label string, scores ...float64) Result {
	t, ok := track.Parse(label)
	if !ok {
		return Result{Verdict: VerdictInvalidTrack, Message: e.messages.InvalidTrack}
	}
	if !validScores(scores) {
		return Result{Verdict: VerdictOutOfRange, Message: e.messages.OutOfRange, Track: t}
	}

	avg := Average(scores[0], scores[1], scores[2], scores[3])
	if avg >= PassThreshold {
		return Result{
			Verdict: VerdictGoodChoice,
			Message: fmt.Sprintf(e.messages.GoodChoice, avg, t),
			Track:   t,
			Average: avg,
		}
	}
	return Result{
		Verdict: VerdictReconsider,
		Message: fmt.Sprintf(e.messages.Reconsider, avg, t),
		Track:   t,
		Average: avg,
	}
}

// Average returns the arithmetic mean of four scores.
func Average(s1, s2, s3, s4 float64) float64 {
	return (s1 + s2 + s3 + s4) / scoreCount
}

// validScores requires exactly four finite values inside [MinScore, MaxScore].
func validScores(scores []float64) bool {
	if len(scores) != scoreCount {
		return false
	}
	for _, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) || s < MinScore || s > MaxScore {
			return false
		}
	}
	return true
}
