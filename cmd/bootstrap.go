package main

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/orientbot/internal/adapters/llm"
	"github.com/okian/orientbot/internal/adapters/sentiment"
	"github.com/okian/orientbot/internal/adapters/translate"
	app "github.com/okian/orientbot/internal/app"
	"github.com/okian/orientbot/internal/config"
	"github.com/okian/orientbot/internal/domain/feedback"
	"github.com/okian/orientbot/pkg/logger"
	"github.com/okian/orientbot/pkg/metrics"
	"github.com/spf13/cobra"
)

// loadConfig loads configuration (defaults -> optional file -> env) and
// applies the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(cmd.Context())
	}
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, nil
}

// initLogging initializes the global logger on w with the configured format
// and level. An invalid level falls back to info.
func initLogging(ctx context.Context, cfg *config.Config, w io.Writer) error {
	if err := logger.InitWith(w, cfg.LogFormat); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

// configureMetrics rebuilds the global metrics manager with the configured
// names, labels and buckets.
func configureMetrics(cfg *config.Config) {
	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithConstLabels(cfg.MetricsConstLabels),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBucketsMS),
	)
}

// buildCollaborators creates the translation and sentiment clients selected
// by configuration. Clients are built once and shared by all requests.
func buildCollaborators(cfg *config.Config) (feedback.Translator, feedback.Scorer, error) {
	var llmClient *llm.Client
	openAI := func() (*llm.Client, error) {
		if llmClient != nil {
			return llmClient, nil
		}
		c, err := llm.NewClient(llm.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		})
		if err != nil {
			return nil, fmt.Errorf("openai client: %w", err)
		}
		llmClient = c
		return c, nil
	}

	var translator feedback.Translator
	switch cfg.Translator {
	case config.TranslatorLibreTranslate:
		translator = translate.NewLibreTranslate(cfg.LibreTranslateURL,
			translate.WithAPIKey(cfg.LibreTranslateAPIKey),
			translate.WithRateLimit(cfg.TranslatorRPS, cfg.TranslatorBurst),
		)
	case config.TranslatorOpenAI:
		c, err := openAI()
		if err != nil {
			return nil, nil, err
		}
		translator = llm.NewTranslator(c)
	case config.TranslatorIdentity:
		translator = translate.Identity{}
	default:
		return nil, nil, fmt.Errorf("%w: unknown translator %q", config.ErrInvalidConfig, cfg.Translator)
	}

	var scorer feedback.Scorer
	switch cfg.Scorer {
	case config.ScorerVader:
		scorer = sentiment.NewVader()
	case config.ScorerOpenAI:
		c, err := openAI()
		if err != nil {
			return nil, nil, err
		}
		scorer = llm.NewScorer(c)
	default:
		return nil, nil, fmt.Errorf("%w: unknown scorer %q", config.ErrInvalidConfig, cfg.Scorer)
	}

	return translator, scorer, nil
}

// newService creates and starts the service with configuration options.
func newService(ctx context.Context, cfg *config.Config) (*app.Service, error) {
	translator, scorer, err := buildCollaborators(cfg)
	if err != nil {
		return nil, err
	}

	svc := app.New(
		app.WithLogger(logger.Get()),
		app.WithTranslator(translator),
		app.WithScorer(scorer),
		app.WithKeywordRules(cfg.Rules()),
		app.WithCollaboratorTimeout(cfg.CollaboratorTimeout()),
		app.WithCollaboratorAttempts(cfg.CollaboratorAttempts),
		app.WithAdvisoryMessages(cfg.AdvisoryMessages),
		app.WithFeedbackMessages(cfg.FeedbackMessages),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start service: %w", err)
	}

	logger.Get().Info(ctx, "collaborators ready",
		logger.String("translator", cfg.Translator),
		logger.String("scorer", cfg.Scorer),
	)
	return svc, nil
}

// setup is the common preamble of commands that use the service. Logs go
// to logOut so that command output on stdout stays clean.
func setup(cmd *cobra.Command, logOut io.Writer) (*config.Config, *app.Service, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := initLogging(cmd.Context(), cfg, logOut); err != nil {
		return nil, nil, err
	}
	configureMetrics(cfg)
	svc, err := newService(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}
