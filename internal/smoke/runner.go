package smoke

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/orientbot/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// ErrFailed is returned when at least one scenario failed.
var ErrFailed = errors.New("smoke checks failed")

// Outcome is the result of one scenario.
type Outcome struct {
	Name     string
	Passed   bool
	Err      error
	Duration time.Duration
}

// Report summarises a run. Outcomes keep the scenario order.
type Report struct {
	Outcomes []Outcome
	Passed   int
	Failed   int
	Duration time.Duration
}

// Run executes scenarios concurrently against cfg.BaseURL. Scenario
// failures are collected into the report; the returned error is ErrFailed
// when any failed, or the context error when the run was interrupted.
func Run(ctx context.Context, cfg Config, scenarios []Scenario) (*Report, error) {
	cfg = cfg.withDefaults()
	log := logger.Get().Named("smoke")
	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("scenarios", len(scenarios)),
		logger.Int("concurrency", cfg.Concurrency),
	)

	start := time.Now()
	// Each goroutine writes only its own slot.
	outcomes := make([]Outcome, len(scenarios))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, sc := range scenarios {
		g.Go(func() error {
			out := runScenario(gctx, client, sc)
			outcomes[i] = out

			if out.Passed {
				if cfg.Verbose {
					log.Info(gctx, "scenario passed", logger.String("scenario", sc.Name), logger.Duration("duration", out.Duration))
				}
			} else {
				log.Error(gctx, "scenario failed", logger.String("scenario", sc.Name), logger.Error(out.Err))
			}
			// Only an interrupted run aborts the group.
			return ctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Outcomes: outcomes, Duration: time.Since(start)}
	for _, o := range outcomes {
		if o.Passed {
			report.Passed++
		} else {
			report.Failed++
		}
	}

	log.Info(ctx, "smoke run finished",
		logger.Int("passed", report.Passed),
		logger.Int("failed", report.Failed),
		logger.Duration("duration", report.Duration),
	)
	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d", ErrFailed, report.Failed, len(scenarios))
	}
	return report, nil
}

func runScenario(ctx context.Context, client *httpClient, sc Scenario) Outcome {
	start := time.Now()
	out := Outcome{Name: sc.Name}

	status, body, err := client.do(ctx, sc.Method, sc.Path, sc.Body)
	out.Duration = time.Since(start)
	switch {
	case err != nil:
		out.Err = err
	case status != sc.Status:
		out.Err = fmt.Errorf("status %d, want %d: %s", status, sc.Status, truncate(body))
	case sc.Check != nil:
		if cerr := sc.Check(body); cerr != nil {
			out.Err = cerr
		}
	}
	out.Passed = out.Err == nil
	return out
}

func truncate(b []byte) string {
	const n = 200
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
