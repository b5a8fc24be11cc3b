package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mql-predict/internal/domain"
	"mql-predict/internal/scoring"
	"mql-predict/internal/storage"
)

// Default deponator fallback window.
const (
	DefaultHoursAfterReg = 24 * 7
	DefaultDaysBeforeNow = 3
)

// Runner executes one end-to-end update pass over all audiences.
type Runner struct {
	queue         storage.QueueStore
	scorer        *scoring.Scorer
	chunkSize     int
	depositWindow storage.DepositWindow
	logger        *zap.Logger
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Queue  storage.QueueStore
	Scorer *scoring.Scorer

	// ChunkSize bounds one warehouse extract batch; zero means the default.
	ChunkSize int

	// DepositWindow configures the deponator fallback; zero fields get
	// defaults.
	DepositWindow storage.DepositWindow

	Logger *zap.Logger
}

// NewRunner creates an update pipeline runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Queue == nil {
		return nil, fmt.Errorf("queue store is required")
	}
	if opts.Scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = scoring.DefaultChunkSize
	}
	if opts.DepositWindow.HoursAfterReg <= 0 {
		opts.DepositWindow.HoursAfterReg = DefaultHoursAfterReg
	}
	if opts.DepositWindow.DaysBeforeNow <= 0 {
		opts.DepositWindow.DaysBeforeNow = DefaultDaysBeforeNow
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Runner{
		queue:         opts.Queue,
		scorer:        opts.Scorer,
		chunkSize:     opts.ChunkSize,
		depositWindow: opts.DepositWindow,
		logger:        opts.Logger,
	}, nil
}

// AudienceResult summarizes one audience's pass.
type AudienceResult struct {
	Candidates       int
	Leads            int
	QueuedLeads      int64
	QueuedDeponators int64
}

// Result summarizes a full update pass.
type Result struct {
	Audiences map[domain.Audience]*AudienceResult
}

// Run executes the update pass.
// Steps, per audience:
//  1. Select unhandled candidates from the queue database
//  2. Score them in chunks against the warehouse extracts
//  3. Queue the predicted leads
//
// Then a deponator fallback pass per audience queues recent depositors the
// prediction missed. Any error aborts the pass.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	result := &Result{Audiences: make(map[domain.Audience]*AudienceResult)}

	for _, audience := range domain.Audiences() {
		ar, err := r.runAudience(ctx, audience)
		if err != nil {
			return nil, fmt.Errorf("%s pass: %w", audience, err)
		}
		result.Audiences[audience] = ar
	}

	for _, audience := range domain.Audiences() {
		queued, err := r.queue.InsertMissedDeponators(ctx, audience, r.depositWindow)
		if err != nil {
			return nil, fmt.Errorf("%s deponator pass: %w", audience, err)
		}
		r.logger.Info("deponators queued",
			zap.String("audience", string(audience)),
			zap.Int64("rows", queued))
		result.Audiences[audience].QueuedDeponators = queued
	}

	return result, nil
}

func (r *Runner) runAudience(ctx context.Context, audience domain.Audience) (*AudienceResult, error) {
	logger := r.logger.With(zap.String("audience", string(audience)))
	logger.Info("handle audience")

	// 1. Select unhandled candidates
	candidates, err := r.queue.UnhandledUsers(ctx, audience)
	if err != nil {
		return nil, fmt.Errorf("select candidates: %w", err)
	}
	logger.Info("candidates selected", zap.Int("count", len(candidates)))

	// 2. Score in chunks
	scored, err := r.scorer.Score(ctx, candidates, r.chunkSize)
	if err != nil {
		return nil, fmt.Errorf("score candidates: %w", err)
	}

	// 3. Queue the predicted leads
	leads := scoring.Leads(scored)
	if len(leads) == 0 {
		logger.Warn("no leads predicted")
		return &AudienceResult{Candidates: len(candidates)}, nil
	}

	queued, err := r.queue.InsertLeads(ctx, audience, leads)
	if err != nil {
		return nil, fmt.Errorf("queue leads: %w", err)
	}
	logger.Info("leads queued",
		zap.Int("leads", len(leads)),
		zap.Int64("rows", queued))

	return &AudienceResult{
		Candidates:  len(candidates),
		Leads:       len(leads),
		QueuedLeads: queued,
	}, nil
}
