// Package feedback classifies free-text feedback as positive, negative or
// neutral, translating it to English first when needed.
package feedback

import (
	"context"
	"strings"
	"time"

	"github.com/okian/orientbot/pkg/logger"
	"github.com/okian/orientbot/pkg/metrics"
)

// Default classifier configuration constants.
const (
	defaultTimeout   = 8 * time.Second
	defaultAttempts  = 2
	defaultRetryWait = 150 * time.Millisecond
	targetLanguage   = "en"
)

// Collaborator names used in logs and metrics.
const (
	collaboratorTranslator = "translator"
	collaboratorScorer     = "scorer"
)

// Translator detects the language of a text and translates it.
type Translator interface {
	// Detect returns a language code such as "en" or "fr".
	Detect(ctx context.Context, text string) (string, error)
	// Translate returns text translated into the target language.
	Translate(ctx context.Context, text, target string) (string, error)
}

// Scorer returns a sentiment polarity in roughly [-1, 1].
type Scorer interface {
	Polarity(ctx context.Context, text string) (float64, error)
}

// Messages holds the texts returned for each outcome.
type Messages struct {
	Prompt      string `koanf:"prompt"`
	Positive    string `koanf:"positive"`
	Negative    string `koanf:"negative"`
	Neutral     string `koanf:"neutral"`
	Unavailable string `koanf:"unavailable"`
}

// DefaultMessages returns the built-in French texts.
func DefaultMessages() Messages {
	return Messages{
		Prompt:      "Veuillez écrire votre avis.",
		Positive:    "Avis = Positif: Merci beaucoup pour votre avis positif ! Nous sommes ravis d’avoir pu vous aider dans votre orientation scolaire.",
		Negative:    "Avis = Négatif: Nous sommes désolés d’apprendre que votre expérience n’a pas répondu à vos attentes, nous continuerons à travailler dur pour vous offrir la meilleure expérience possible.",
		Neutral:     "Avis = Neutre: Nous comprenons votre neutralité, nous continuerons à travailler dur pour vous offrir la meilleure expérience possible.",
		Unavailable: "**Polarité : Neutre** (Analyse impossible ou erreur de connexion)",
	}
}

func (m Messages) merge(d Messages) Messages {
	if m.Prompt == "" {
		m.Prompt = d.Prompt
	}
	if m.Positive == "" {
		m.Positive = d.Positive
	}
	if m.Negative == "" {
		m.Negative = d.Negative
	}
	if m.Neutral == "" {
		m.Neutral = d.Neutral
	}
	if m.Unavailable == "" {
		m.Unavailable = d.Unavailable
	}
	return m
}

func (m Messages) forClass(c Class) string {
	switch c {
	case ClassPositive:
		return m.Positive
	case ClassNegative:
		return m.Negative
	default:
		return m.Neutral
	}
}

// Result is the outcome of one classification.
type Result struct {
	Class   Class
	Message string
	// Empty is set when the input was blank and no collaborator was called.
	Empty bool
	// Degraded is set when a collaborator failed and the fallback was returned.
	Degraded bool
	ErrKind  ErrorKind
	// Language is the detected language code.
	Language string
	// Translated is set when the text was translated before scoring.
	Translated bool
	// Analysed is the text that was scored.
	Analysed string
	Polarity float64
}

// Option applies a configuration option to the Classifier.
type Option func(*Classifier)

// WithTimeout bounds the collaborator calls of one Classify.
func WithTimeout(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAttempts sets how many times each collaborator call is tried.
func WithAttempts(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithRetryWait sets the pause between attempts.
func WithRetryWait(d time.Duration) Option {
	return func(c *Classifier) {
		if d >= 0 {
			c.retryWait = d
		}
	}
}

// WithRules replaces the keyword overrides. Callers validate with ValidateRules.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		if rules != nil {
			c.rules = compileRules(rules)
		}
	}
}

// WithMessages overrides outcome texts. Empty fields keep their default.
func WithMessages(m Messages) Option {
	return func(c *Classifier) {
		c.messages = m.merge(c.messages)
	}
}

// WithLogger sets the logger used to report collaborator failures.
func WithLogger(l logger.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// Classifier runs feedback through translation, polarity scoring and keyword
// overrides. It keeps no per-request state.
type Classifier struct {
	translator Translator
	scorer     Scorer

	timeout   time.Duration
	attempts  int
	retryWait time.Duration
	rules     ruleSet
	messages  Messages
	logger    logger.Logger
}

// New creates a Classifier over the given collaborators.
func New(translator Translator, scorer Scorer, opts ...Option) *Classifier {
	c := &Classifier{
		translator: translator,
		scorer:     scorer,
		timeout:    defaultTimeout,
		attempts:   defaultAttempts,
		retryWait:  defaultRetryWait,
		rules:      compileRules(DefaultRules()),
		messages:   DefaultMessages(),
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the canned reply for text. Collaborator failures are
// logged and answered with the fallback message; Classify never fails.
func (c *Classifier) Classify(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Class: ClassNeutral, Message: c.messages.Prompt, Empty: true}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, op, collaborator, err := c.analyse(ctx, text)
	if err != nil {
		kind := KindOf(err)
		c.logger.Error(ctx, "feedback analysis failed",
			logger.String("collaborator", collaborator),
			logger.String("op", op),
			logger.String("kind", string(kind)),
			logger.Error(err),
		)
		metrics.RecordFeedbackFallback(string(kind))
		return Result{
			Class:    ClassNeutral,
			Message:  c.messages.Unavailable,
			Degraded: true,
			ErrKind:  kind,
			Language: res.Language,
		}
	}

	res.Class = c.rules.classify(res.Polarity, res.Analysed)
	res.Message = c.messages.forClass(res.Class)
	return res
}

// analyse runs detection, optional translation and scoring. On failure it
// names the failing operation and collaborator.
func (c *Classifier) analyse(ctx context.Context, text string) (Result, string, string, error) {
	var res Result

	lang, err := call(ctx, c, collaboratorTranslator, "detect", func(ctx context.Context) (string, error) {
		return c.translator.Detect(ctx, text)
	})
	if err != nil {
		return res, "detect", collaboratorTranslator, err
	}
	res.Language = lang

	analysed := text
	if !IsEnglish(lang) {
		analysed, err = call(ctx, c, collaboratorTranslator, "translate", func(ctx context.Context) (string, error) {
			return c.translator.Translate(ctx, text, targetLanguage)
		})
		if err != nil {
			return res, "translate", collaboratorTranslator, err
		}
		res.Translated = true
	}
	res.Analysed = analysed

	polarity, err := call(ctx, c, collaboratorScorer, "polarity", func(ctx context.Context) (float64, error) {
		return c.scorer.Polarity(ctx, analysed)
	})
	if err != nil {
		return res, "polarity", collaboratorScorer, err
	}
	res.Polarity = polarity
	return res, "", "", nil
}

// call runs fn up to c.attempts times, stopping on success, on a
// non-retryable error or when ctx is done.
func call[T any](ctx context.Context, c *Classifier, collaborator, op string, fn func(context.Context) (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt < c.attempts; attempt++ {
		start := time.Now()
		v, err := fn(ctx)
		latencyMs := float64(time.Since(start).Microseconds()) / 1000
		if err == nil {
			metrics.RecordCollaboratorCall(collaborator, op, "ok", latencyMs)
			return v, nil
		}
		// A deadline hit inside the collaborator surfaces as a timeout.
		if ctx.Err() != nil {
			err = wrapContext(err, ctx.Err())
		}
		lastErr = err
		kind := KindOf(err)
		metrics.RecordCollaboratorCall(collaborator, op, string(kind), latencyMs)

		if !retryable(err) || attempt == c.attempts-1 {
			break
		}
		c.logger.Warn(ctx, "retrying collaborator call",
			logger.String("collaborator", collaborator),
			logger.String("op", op),
			logger.Int("attempt", attempt+1),
			logger.Error(err),
		)
		select {
		case <-ctx.Done():
			return zero, wrapContext(lastErr, ctx.Err())
		case <-time.After(c.retryWait):
		}
	}
	return zero, lastErr
}

// IsEnglish reports whether a language code designates English, ignoring
// case and any region subtag.
func IsEnglish(code string) bool {
	code = strings.ToLower(strings.TrimSpace(code))
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		code = code[:i]
	}
	return code == targetLanguage
}
