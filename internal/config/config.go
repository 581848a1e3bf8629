// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers defaults, an optional YAML file and environment variables.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/okian/orientbot/internal/domain/advisory"
	"github.com/okian/orientbot/internal/domain/feedback"
)

// Translator providers.
const (
	TranslatorLibreTranslate = "libretranslate"
	TranslatorOpenAI         = "openai"
	TranslatorIdentity       = "identity"
)

// Scorer providers.
const (
	ScorerVader  = "vader"
	ScorerOpenAI = "openai"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Translator selects the translation collaborator.
	Translator string `koanf:"translator"`
	// Scorer selects the sentiment collaborator.
	Scorer string `koanf:"scorer"`

	// LibreTranslate endpoint and optional API key.
	LibreTranslateURL    string `koanf:"libretranslate_url"`
	LibreTranslateAPIKey string `koanf:"libretranslate_api_key"`
	// TranslatorRPS and TranslatorBurst bound outgoing translation calls.
	TranslatorRPS   float64 `koanf:"translator_rps"`
	TranslatorBurst int     `koanf:"translator_burst"`

	// OpenAI compatible endpoint used by the openai providers.
	OpenAIAPIKey  string `koanf:"openai_api_key"`
	OpenAIBaseURL string `koanf:"openai_base_url"`
	OpenAIModel   string `koanf:"openai_model"`

	// CollaboratorTimeoutMS bounds all collaborator calls of one feedback request.
	CollaboratorTimeoutMS int `koanf:"collaborator_timeout_ms"`
	// CollaboratorAttempts is the number of tries per collaborator call.
	CollaboratorAttempts int `koanf:"collaborator_attempts"`

	// APIRPS and APIBurst rate limit inbound requests per client address.
	APIRPS   float64 `koanf:"api_rps"`
	APIBurst int     `koanf:"api_burst"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// Metric naming; the defaults yield orientbot_advisor_* series.
	MetricsNamespace   string            `koanf:"metrics_namespace"`
	MetricsSubsystem   string            `koanf:"metrics_subsystem"`
	MetricsConstLabels map[string]string `koanf:"metrics_const_labels"`
	// MetricsLatencyBucketsMS replaces the latency histogram buckets.
	MetricsLatencyBucketsMS []float64 `koanf:"metrics_latency_buckets_ms"`

	// KeywordRules override the polarity scorer. Defaults apply when unset.
	KeywordRules []feedback.Rule `koanf:"keyword_rules"`

	// Message overrides; empty fields keep the built-in texts.
	AdvisoryMessages advisory.Messages `koanf:"advisory_messages"`
	FeedbackMessages feedback.Messages `koanf:"feedback_messages"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		Translator:            TranslatorLibreTranslate,
		Scorer:                ScorerVader,
		LibreTranslateURL:     "http://localhost:5000",
		TranslatorRPS:         5,
		TranslatorBurst:       5,
		OpenAIModel:           "gpt-4o-mini",
		CollaboratorTimeoutMS: 8000,
		CollaboratorAttempts:  2,
		APIRPS:                20,
		APIBurst:              40,
		MaxBodyBytes:          64 << 10,
		MetricsNamespace:      "orientbot",
		MetricsSubsystem:      "advisor",
	}
}

// CollaboratorTimeout returns CollaboratorTimeoutMS as a duration.
func (c *Config) CollaboratorTimeout() time.Duration {
	return time.Duration(c.CollaboratorTimeoutMS) * time.Millisecond
}

// Rules returns the configured keyword rules or the defaults.
func (c *Config) Rules() []feedback.Rule {
	if c.KeywordRules == nil {
		return feedback.DefaultRules()
	}
	return c.KeywordRules
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.CollaboratorTimeoutMS <= 0:
		return fmt.Errorf("%w: collaborator_timeout_ms must be positive", ErrInvalidConfig)
	case c.CollaboratorAttempts < 1:
		return fmt.Errorf("%w: collaborator_attempts must be at least 1", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	}

	switch c.Translator {
	case TranslatorLibreTranslate:
		if strings.TrimSpace(c.LibreTranslateURL) == "" {
			return fmt.Errorf("%w: libretranslate_url must not be empty", ErrInvalidConfig)
		}
	case TranslatorOpenAI, TranslatorIdentity:
	default:
		return fmt.Errorf("%w: unknown translator %q", ErrInvalidConfig, c.Translator)
	}

	switch c.Scorer {
	case ScorerVader, ScorerOpenAI:
	default:
		return fmt.Errorf("%w: unknown scorer %q", ErrInvalidConfig, c.Scorer)
	}

	if (c.Translator == TranslatorOpenAI || c.Scorer == ScorerOpenAI) && c.OpenAIAPIKey == "" {
		return fmt.Errorf("%w: openai_api_key is required by the openai providers", ErrInvalidConfig)
	}

	if err := feedback.ValidateRules(c.Rules()); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := advisory.ValidateMessages(c.AdvisoryMessages); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return c.validateMetrics()
}

var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// variableLabels are already used by the collectors and cannot be constant.
var variableLabels = []string{
	"track", "verdict", "class", "translated", "kind", "collaborator", "op",
	"result", "endpoint", "method", "status_code", "error_type",
}

// validateMetrics rejects names the Prometheus client would panic on.
func (c *Config) validateMetrics() error {
	for key, v := range map[string]string{"metrics_namespace": c.MetricsNamespace, "metrics_subsystem": c.MetricsSubsystem} {
		if v != "" && !metricName.MatchString(v) {
			return fmt.Errorf("%w: %s %q is not a valid metric name part", ErrInvalidConfig, key, v)
		}
	}
	for name := range c.MetricsConstLabels {
		if !metricName.MatchString(name) || strings.HasPrefix(name, "__") || slices.Contains(variableLabels, name) {
			return fmt.Errorf("%w: metrics_const_labels: invalid label name %q", ErrInvalidConfig, name)
		}
	}
	for i := 1; i < len(c.MetricsLatencyBucketsMS); i++ {
		if c.MetricsLatencyBucketsMS[i] <= c.MetricsLatencyBucketsMS[i-1] {
			return fmt.Errorf("%w: metrics_latency_buckets_ms must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
