// Package smoketest drives concurrent end-to-end checks against a running
// crop yield service.
package smoketest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/cropyield/internal/domain/model"
	"github.com/okian/cropyield/pkg/logger"
)

// ErrChecksFailed is returned when any submitted request failed or any
// answer did not verify.
var ErrChecksFailed = errors.New("smoke checks failed")

// Run executes the complete smoke run and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("smoke")

	log.Info(ctx, "starting crop yield smoke run",
		logger.String("runID", config.RunID),
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.Any("seed", config.Seed))

	client := newHTTPClient(config.BaseURL, config.RunID, config.Timeout)

	// Step 1: Check service health
	if err := client.Health(ctx); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}
	log.Info(ctx, "service is healthy")

	// Step 2: Fetch the catalog
	snap, err := client.Catalog(ctx)
	if err != nil {
		return stats, fmt.Errorf("catalog fetch failed: %w", err)
	}

	// Step 3: Generate requests
	reqs, err := generateRequests(snap, config.Requests, config.Seed)
	if err != nil {
		return stats, fmt.Errorf("request generation failed: %w", err)
	}
	stats.Generated = len(reqs)

	// Step 4: Submit concurrently
	outcomes, err := submit(ctx, client, config, reqs, "req")
	if err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}
	verify(ctx, log, config, outcomes, stats)

	// Step 5: Resubmit a sample and compare
	if err := checkDeterminism(ctx, client, config, outcomes, stats); err != nil {
		return stats, fmt.Errorf("determinism check failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.Failed > 0 || stats.Mismatches > 0 || stats.NonDeterministic > 0 {
		return stats, ErrChecksFailed
	}
	log.Info(ctx, "smoke run completed successfully")
	return stats, nil
}

// submit posts reqs with at most config.Workers in flight. Per-request errors
// are recorded in the outcome; only cancellation aborts the run.
func submit(ctx context.Context, client *HTTPClient, config *Config, reqs []model.Request, tag string) ([]outcome, error) {
	outcomes := make([]outcome, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)
	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := client.Predict(gctx, tag+"-"+strconv.Itoa(i), req)
			outcomes[i] = outcome{req: req, result: res, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func verify(ctx context.Context, log logger.Logger, config *Config, outcomes []outcome, stats *Stats) {
	for i, o := range outcomes {
		stats.Submitted++
		if o.err != nil {
			stats.Failed++
			log.Warn(ctx, "prediction failed", logger.Int("index", i), logger.Error(o.err))
			continue
		}
		stats.Successful++
		if o.result.IsFallback {
			stats.Fallback++
		}
		if !productionMatches(o.req, o.result) {
			stats.Mismatches++
			log.Warn(ctx, "production does not equal yield times area",
				logger.Int("index", i),
				logger.Float64("yield", o.result.PredictedYield),
				logger.Float64("area", o.req.Area),
				logger.Float64("production", o.result.PredictedProduction))
		}
		if config.Verbose {
			log.Info(ctx, "prediction",
				logger.Int("index", i),
				logger.String("state", o.req.State),
				logger.String("crop", o.req.Crop),
				logger.Float64("yield", o.result.PredictedYield),
				logger.Bool("fallback", o.result.IsFallback))
		}
	}
}

func checkDeterminism(ctx context.Context, client *HTTPClient, config *Config, outcomes []outcome, stats *Stats) error {
	var sample []outcome
	for _, o := range outcomes {
		if o.err == nil {
			sample = append(sample, o)
		}
		if len(sample) == determinismSample {
			break
		}
	}
	if len(sample) == 0 {
		return nil
	}

	reqs := make([]model.Request, len(sample))
	for i, o := range sample {
		reqs[i] = o.req
	}
	again, err := submit(ctx, client, config, reqs, "again")
	if err != nil {
		return err
	}
	for i, o := range again {
		stats.Resubmitted++
		if o.err != nil {
			stats.Failed++
			continue
		}
		if !sameResult(sample[i].result, o.result) {
			stats.NonDeterministic++
		}
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var successRate, requestsPerSecond float64

	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		requestsPerSecond = float64(stats.Submitted+stats.Resubmitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("fallback", stats.Fallback),
		logger.Int("failed", stats.Failed),
		logger.Int("mismatches", stats.Mismatches),
		logger.Int("resubmitted", stats.Resubmitted),
		logger.Int("nonDeterministic", stats.NonDeterministic),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("requestsPerSecond", requestsPerSecond))
}
