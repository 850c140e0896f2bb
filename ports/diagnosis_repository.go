package ports

import (
	"context"

	"ecgdx/domain/diagnosis"
)

// DiagnosisRepository persists aggregate diagnoses for later review. The
// serving pipeline never depends on it; history is an optional side channel.
type DiagnosisRepository interface {
	Save(ctx context.Context, filename string, agg *diagnosis.Aggregate) error
	ListRecent(ctx context.Context, limit int) ([]diagnosis.Record, error)
}
