package scoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mql-predict/internal/domain"
	"mql-predict/internal/features"
)

// Classifier scores one engineered feature vector with the positive-class
// probability.
type Classifier interface {
	PredictProba(x []float64) float64
}

// Assembler provides scoring-ready samples for a batch of candidate ids.
type Assembler interface {
	Assemble(ctx context.Context, userIDs []int64) ([]*domain.UserSample, error)
}

// Scorer runs candidates through feature engineering and the classifier in
// bounded chunks.
type Scorer struct {
	assembler Assembler
	schema    *features.Schema
	clf       Classifier
	threshold float64
	logger    *zap.Logger
}

// Options configures a Scorer.
type Options struct {
	Assembler  Assembler
	Schema     *features.Schema
	Classifier Classifier

	// Threshold is the decision boundary: probability strictly above it
	// marks a lead.
	Threshold float64

	Logger *zap.Logger
}

// NewScorer creates a new Scorer.
func NewScorer(opts Options) (*Scorer, error) {
	if opts.Assembler == nil {
		return nil, fmt.Errorf("assembler is required")
	}
	if opts.Schema == nil {
		return nil, fmt.Errorf("schema is required")
	}
	if opts.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Scorer{
		assembler: opts.Assembler,
		schema:    opts.Schema,
		clf:       opts.Classifier,
		threshold: opts.Threshold,
		logger:    opts.Logger,
	}, nil
}

// Score classifies the given candidate ids chunk by chunk. Candidates with
// no profile row are silently dropped; a chunk that yields no samples at all
// is logged and skipped. Any storage error aborts the whole pass.
func (s *Scorer) Score(ctx context.Context, userIDs []int64, chunkSize int) ([]domain.ScoredUser, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var result []domain.ScoredUser
	for chunkNum, chunk := range Chunks(userIDs, chunkSize) {
		s.logger.Info("score chunk",
			zap.Int("chunk", chunkNum),
			zap.Int("candidates", len(chunk)))

		samples, err := s.assembler.Assemble(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("assemble chunk %d: %w", chunkNum, err)
		}
		if len(samples) == 0 {
			s.logger.Warn("no samples in chunk", zap.Int("chunk", chunkNum))
			continue
		}

		for _, sample := range samples {
			proba := s.clf.PredictProba(s.schema.Vector(sample))
			result = append(result, domain.ScoredUser{
				UserID:      sample.UserID,
				IsLead:      proba > s.threshold,
				Probability: proba,
			})
		}
	}
	return result, nil
}

// Leads filters scored users down to the ids above the threshold.
func Leads(scored []domain.ScoredUser) []int64 {
	var ids []int64
	for _, s := range scored {
		if s.IsLead {
			ids = append(ids, s.UserID)
		}
	}
	return ids
}
