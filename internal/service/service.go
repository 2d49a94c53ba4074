// Package service runs scrapes: fetch the exports, push them through the
// pipeline and persist the results.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/flockwatch/internal/exporter"
	"github.com/JonMunkholm/flockwatch/internal/logging"
	"github.com/JonMunkholm/flockwatch/internal/outbreak"
	"github.com/JonMunkholm/flockwatch/internal/pipeline"
)

// Repository is the persistence the service needs. *store.Store satisfies it.
//
// SaveRun must be all or nothing: on error none of the run is stored.
type Repository interface {
	SaveRun(ctx context.Context, states []outbreak.StateCases, summaries []outbreak.PeriodSummary, at time.Time) error
	LastScrapedDate(ctx context.Context) (time.Time, bool, error)
}

// Options configures a Service.
type Options struct {
	// Persist writes results through the Repository. When false, runs only
	// fetch and transform.
	Persist bool

	MaxConcurrent int
	MaxWait       time.Duration

	// Timeout bounds a single run. Zero means no limit beyond the caller's ctx.
	Timeout time.Duration
}

// Result is the outcome of one successful run.
type Result struct {
	RunID           string                   `json:"run_id"`
	StateCases      []outbreak.StateCases    `json:"flock_cases_by_state"`
	PeriodSummaries []outbreak.PeriodSummary `json:"period_summaries"`
	Persisted       bool                     `json:"persisted"`
	Duration        time.Duration            `json:"-"`
}

// Service coordinates scrape runs.
type Service struct {
	exporter exporter.Exporter
	repo     Repository
	limiter  *RunLimiter
	opts     Options
	now      func() time.Time
}

// New creates a Service. repo may be nil when opts.Persist is false.
func New(exp exporter.Exporter, repo Repository, opts Options) (*Service, error) {
	if exp == nil {
		return nil, errors.New("service: exporter is required")
	}
	if opts.Persist && repo == nil {
		return nil, errors.New("service: repository is required when persisting")
	}
	return &Service{
		exporter: exp,
		repo:     repo,
		limiter:  NewRunLimiter(opts.MaxConcurrent, opts.MaxWait),
		opts:     opts,
		now:      time.Now,
	}, nil
}

// Run performs one scrape. It fails with ErrTooManyRuns when no run slot
// frees up in time. On any failure nothing is persisted and the last scraped
// date is left untouched.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()
	return s.execute(ctx)
}

// tryRun is Run without waiting: ok is false when every slot is taken.
func (s *Service) tryRun(ctx context.Context) (res *Result, ok bool, err error) {
	if !s.limiter.TryAcquire() {
		return nil, false, nil
	}
	defer s.limiter.Release()
	res, err = s.execute(ctx)
	return res, true, err
}

// execute runs one scrape in a slot the caller already holds.
func (s *Service) execute(ctx context.Context) (*Result, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)
	start := s.now()
	logger.Info("run started", "persist", s.opts.Persist)

	res, err := s.run(ctx)
	if err != nil {
		logger.Error("run failed",
			"error", err,
			"code", MapError(err).Code,
			"duration_ms", s.now().Sub(start).Milliseconds(),
		)
		return nil, err
	}

	res.RunID = runID
	res.Duration = s.now().Sub(start)
	logger.Info("run completed",
		"state_cases", len(res.StateCases),
		"period_summaries", len(res.PeriodSummaries),
		"persisted", res.Persisted,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (s *Service) run(ctx context.Context) (*Result, error) {
	rawStates, err := s.exporter.StateCases(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch state cases export: %w", err)
	}
	states, err := pipeline.ProcessStateCases(ctx, rawStates)
	if err != nil {
		return nil, err
	}

	periodExports, err := s.exporter.PeriodExports(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch period exports: %w", err)
	}
	summaries, err := pipeline.ProcessPeriodSummaries(ctx, periodExports)
	if err != nil {
		return nil, err
	}

	res := &Result{StateCases: states, PeriodSummaries: summaries}
	if !s.opts.Persist {
		return res, nil
	}

	if err := s.repo.SaveRun(ctx, states, summaries, s.now()); err != nil {
		return nil, err
	}

	res.Persisted = true
	return res, nil
}

// Status returns the run limiter state.
func (s *Service) Status() LimiterStatus {
	return s.limiter.Status()
}

// WaitForRuns blocks until in-flight runs finish or ctx ends.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
