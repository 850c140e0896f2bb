package ports

import "context"

// Classifier runs batch inference over normalized heartbeat segments.
// Given rows shaped (batch, segment length) it returns (batch, classes)
// per-class probabilities, each row approximately summing to 1. The model's
// internal architecture is out of scope for the core; callers are expected to
// chunk large inputs before invoking it.
type Classifier interface {
	PredictBatch(ctx context.Context, rows [][]float64) ([][]float64, error)

	// Classes reports how many output classes the model produces.
	Classes() int
}
