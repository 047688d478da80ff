package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	modmetrics "relato/internal/moderation/metrics"
	"relato/internal/moderation/models"
	"relato/internal/moderation/scorer"
	dErrors "relato/pkg/domain-errors"
)

// Scorer produces a confidence score for one candidate image. A returned
// error wrapping scorer.ErrLaunch aborts the batch; any other error is
// confined to the candidate.
type Scorer interface {
	Score(ctx context.Context, photoPath string) (float64, error)
}

// Orchestrator decides admissibility for a batch of candidate images and
// disposes of the files of candidates that were not admitted.
type Orchestrator struct {
	scorer      Scorer
	threshold   float64
	maxImages   int
	concurrency int
	remove      func(string) error
	logger      *slog.Logger
	metrics     *modmetrics.Metrics
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithMetrics attaches moderation metrics.
func WithMetrics(m *modmetrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithThreshold overrides the admission threshold.
func WithThreshold(threshold float64) Option {
	return func(o *Orchestrator) {
		o.threshold = threshold
	}
}

// WithMaxImages overrides the batch size bound.
func WithMaxImages(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxImages = n
		}
	}
}

// WithConcurrency bounds parallel scorer invocations per batch.
// The default of 1 keeps the source system's sequential behavior.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// WithRemover overrides file removal, for tests.
func WithRemover(remove func(string) error) Option {
	return func(o *Orchestrator) {
		o.remove = remove
	}
}

// New constructs an Orchestrator around a scorer.
func New(s Scorer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		scorer:      s,
		threshold:   0.5,
		maxImages:   5,
		concurrency: 1,
		remove:      os.Remove,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ModerateBatch scores every candidate and returns the admitted subsequence
// in input order plus the full verdict list. A single candidate's scoring
// failure never aborts the batch; only a launch failure does, since it would
// repeat for every remaining candidate. Files of non-admitted candidates are
// removed best-effort before returning.
func (o *Orchestrator) ModerateBatch(ctx context.Context, candidates []models.Candidate) (models.BatchResult, error) {
	if len(candidates) == 0 {
		return models.BatchResult{}, dErrors.New(dErrors.CodeValidation, "no images submitted")
	}
	if len(candidates) > o.maxImages {
		return models.BatchResult{}, dErrors.Newf(dErrors.CodeValidation, "at most %d images per report", o.maxImages)
	}
	for _, c := range candidates {
		if c.Path == "" {
			return models.BatchResult{}, dErrors.New(dErrors.CodeValidation, "candidate image has no file")
		}
	}

	verdicts := make([]models.Verdict, len(candidates))

	g := new(errgroup.Group)
	g.SetLimit(o.concurrency)
	for i, candidate := range candidates {
		g.Go(func() error {
			verdict, err := o.scoreOne(ctx, candidate)
			if err != nil {
				return err
			}
			verdicts[i] = verdict
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Launch failures mean nothing was admitted; the batch still owns
		// the files, so dispose of all of them before escalating.
		for _, c := range candidates {
			o.removeFile(ctx, c.Path)
		}
		return models.BatchResult{}, dErrors.Wrap(err, dErrors.CodeExternal, "image scorer unavailable")
	}

	result := models.BatchResult{Verdicts: verdicts}
	for _, v := range verdicts {
		if v.Decision == models.DecisionAccepted {
			result.Accepted = append(result.Accepted, v.Candidate)
			continue
		}
		o.removeFile(ctx, v.Candidate.Path)
	}
	return result, nil
}

func (o *Orchestrator) scoreOne(ctx context.Context, candidate models.Candidate) (models.Verdict, error) {
	start := time.Now()
	score, err := o.scorer.Score(ctx, candidate.Path)
	if o.metrics != nil {
		o.metrics.ObserveScore(start)
	}

	if err != nil {
		if errors.Is(err, scorer.ErrLaunch) {
			return models.Verdict{}, err
		}
		o.logger.WarnContext(ctx, "candidate failed scoring",
			"image", candidate.OriginalName,
			"error", err,
		)
		return o.verdict(models.Verdict{
			Candidate: candidate,
			Decision:  models.DecisionFailed,
			Message:   err.Error(),
		}), nil
	}

	if score < o.threshold {
		o.logger.InfoContext(ctx, "candidate rejected",
			"image", candidate.OriginalName,
			"score", score,
		)
		return o.verdict(models.Verdict{
			Candidate: candidate,
			Score:     &score,
			Decision:  models.DecisionRejected,
		}), nil
	}

	return o.verdict(models.Verdict{
		Candidate: candidate,
		Score:     &score,
		Decision:  models.DecisionAccepted,
	}), nil
}

func (o *Orchestrator) verdict(v models.Verdict) models.Verdict {
	if o.metrics != nil {
		o.metrics.ObserveDecision(string(v.Decision))
	}
	return v
}

// removeFile deletes a candidate's backing file. Deletion failure is logged,
// never escalated.
func (o *Orchestrator) removeFile(ctx context.Context, path string) {
	if err := o.remove(path); err != nil {
		o.logger.WarnContext(ctx, "failed to remove candidate file",
			"path", path,
			"error", err,
		)
		return
	}
	if o.metrics != nil {
		o.metrics.IncrementFilesRemoved()
	}
}
