// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the command line.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/orientbot/internal/adapters/sentiment"
	"github.com/okian/orientbot/internal/adapters/translate"
	"github.com/okian/orientbot/internal/domain/advisory"
	"github.com/okian/orientbot/internal/domain/feedback"
	"github.com/okian/orientbot/internal/domain/track"
	"github.com/okian/orientbot/pkg/logger"
	"github.com/okian/orientbot/pkg/metrics"
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

// TrackInfo is a track with its display subjects.
type TrackInfo struct {
	Track    track.Track
	Subjects track.Subjects
}

// Service implements the advisory and feedback operations.
type Service struct {
	mu sync.RWMutex

	// Core components
	evaluator  *advisory.Evaluator
	classifier *feedback.Classifier
	translator feedback.Translator
	scorer     feedback.Scorer

	// Configuration
	rules                []feedback.Rule
	collaboratorTimeout  time.Duration
	collaboratorAttempts int
	advisoryMessages     advisory.Messages
	feedbackMessages     feedback.Messages

	// State
	started  bool
	counters *counters

	// Logging
	logger logger.Logger
}

type counters struct {
	evaluations atomic.Int64
	feedback    atomic.Int64
	degraded    atomic.Int64
	empty       atomic.Int64
	verdicts    map[advisory.Verdict]*atomic.Int64
	classes     map[feedback.Class]*atomic.Int64
}

func newCounters() *counters {
	c := &counters{
		verdicts: make(map[advisory.Verdict]*atomic.Int64),
		classes:  make(map[feedback.Class]*atomic.Int64),
	}
	for _, v := range []advisory.Verdict{
		advisory.VerdictInvalidTrack, advisory.VerdictOutOfRange,
		advisory.VerdictGoodChoice, advisory.VerdictReconsider,
	} {
		c.verdicts[v] = new(atomic.Int64)
	}
	for _, cl := range []feedback.Class{feedback.ClassPositive, feedback.ClassNegative, feedback.ClassNeutral} {
		c.classes[cl] = new(atomic.Int64)
	}
	return c
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTranslator sets the translation collaborator.
func WithTranslator(t feedback.Translator) Option {
	return func(s *Service) {
		if t != nil {
			s.translator = t
		}
	}
}

// WithScorer sets the sentiment collaborator.
func WithScorer(sc feedback.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// WithKeywordRules replaces the keyword overrides.
func WithKeywordRules(rules []feedback.Rule) Option {
	return func(s *Service) {
		s.rules = rules
	}
}

// WithCollaboratorTimeout bounds the collaborator calls of one feedback request.
func WithCollaboratorTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.collaboratorTimeout = d
		}
	}
}

// WithCollaboratorAttempts sets how many times each collaborator call is tried.
func WithCollaboratorAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.collaboratorAttempts = n
		}
	}
}

// WithAdvisoryMessages overrides the evaluator texts.
func WithAdvisoryMessages(m advisory.Messages) Option {
	return func(s *Service) {
		s.advisoryMessages = m
	}
}

// WithFeedbackMessages overrides the classifier texts.
func WithFeedbackMessages(m feedback.Messages) Option {
	return func(s *Service) {
		s.feedbackMessages = m
	}
}

// New constructs a new Service. Without collaborators it runs offline with
// the identity translator and the VADER scorer.
func New(opts ...Option) *Service {
	s := &Service{
		translator:           translate.Identity{},
		scorer:               sentiment.NewVader(),
		collaboratorTimeout:  8 * time.Second,
		collaboratorAttempts: 2,
		counters:             newCounters(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start validates keyword rules and messages, then builds the evaluator and classifier.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	if s.rules != nil {
		if err := feedback.ValidateRules(s.rules); err != nil {
			return fmt.Errorf("start service: %w", err)
		}
	}

	if err := advisory.ValidateMessages(s.advisoryMessages); err != nil {
		return fmt.Errorf("start service: %w", err)
	}

	s.evaluator = advisory.New(advisory.WithMessages(s.advisoryMessages))
	s.classifier = feedback.New(s.translator, s.scorer,
		feedback.WithTimeout(s.collaboratorTimeout),
		feedback.WithAttempts(s.collaboratorAttempts),
		feedback.WithRules(s.rules),
		feedback.WithMessages(s.feedbackMessages),
		feedback.WithLogger(s.logger.Named("feedback")),
	)

	s.started = true
	s.logger.Info(ctx, "advisor service started",
		logger.Duration("collaboratorTimeout", s.collaboratorTimeout),
		logger.Int("collaboratorAttempts", s.collaboratorAttempts),
		logger.Bool("customRules", s.rules != nil),
	)
	return nil
}

// Stop marks the service as stopped. It is safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.started = false
	s.logger.Info(context.Background(), "advisor service stopped")
}

func (s *Service) components() (*advisory.Evaluator, *feedback.Classifier, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evaluator, s.classifier, s.started
}

// Evaluate checks a track choice against four scores.
func (s *Service) Evaluate(ctx context.Context, trackLabel string, scores ...float64) (advisory.Result, error) {
	evaluator, _, ok := s.components()
	if !ok {
		return advisory.Result{}, ErrNotStarted
	}

	res := evaluator.Evaluate(trackLabel, scores...)

	s.counters.evaluations.Add(1)
	s.counters.verdicts[res.Verdict].Add(1)
	label := string(res.Track)
	if label == "" {
		label = "unknown"
	}
	metrics.RecordEvaluation(label, string(res.Verdict), res.Average, res.Evaluated())

	s.logger.Debug(ctx, "evaluated track choice",
		logger.String("track", trackLabel),
		logger.String("verdict", string(res.Verdict)),
		logger.Float64("average", res.Average),
	)
	return res, nil
}

// Classify classifies free-text feedback. Collaborator failures produce the
// fallback result, never an error.
func (s *Service) Classify(ctx context.Context, text string) (feedback.Result, error) {
	_, classifier, ok := s.components()
	if !ok {
		return feedback.Result{}, ErrNotStarted
	}

	res := classifier.Classify(ctx, text)

	switch {
	case res.Empty:
		s.counters.empty.Add(1)
		return res, nil
	case res.Degraded:
		s.counters.degraded.Add(1)
	default:
		s.counters.classes[res.Class].Add(1)
		metrics.RecordFeedback(string(res.Class), res.Translated)
	}
	s.counters.feedback.Add(1)

	s.logger.Debug(ctx, "classified feedback",
		logger.String("class", string(res.Class)),
		logger.String("language", res.Language),
		logger.Bool("translated", res.Translated),
		logger.Bool("degraded", res.Degraded),
	)
	return res, nil
}

// Tracks returns every track with its subjects in display order.
func (s *Service) Tracks() []TrackInfo {
	all := track.All()
	out := make([]TrackInfo, len(all))
	for i, t := range all {
		out[i] = TrackInfo{Track: t, Subjects: t.Subjects()}
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()

	verdicts := make(map[string]int64, len(s.counters.verdicts))
	for v, c := range s.counters.verdicts {
		verdicts[string(v)] = c.Load()
	}
	classes := make(map[string]int64, len(s.counters.classes))
	for cl, c := range s.counters.classes {
		classes[string(cl)] = c.Load()
	}

	return map[string]interface{}{
		"started":          started,
		"evaluations":      s.counters.evaluations.Load(),
		"verdicts":         verdicts,
		"feedback":         s.counters.feedback.Load(),
		"classes":          classes,
		"degradedFeedback": s.counters.degraded.Load(),
		"emptyFeedback":    s.counters.empty.Load(),
	}
}
