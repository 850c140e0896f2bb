package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"ecgdx/domain/diagnosis"
	"ecgdx/ports"

	"github.com/jmoiron/sqlx"
)

// DiagnosisRepositoryImpl implements DiagnosisRepository for PostgreSQL.
// History is an optional side channel; the serving pipeline never blocks on it.
type DiagnosisRepositoryImpl struct {
	db *sqlx.DB
}

// NewDiagnosisRepository creates a new PostgreSQL diagnosis repository
func NewDiagnosisRepository(db *sqlx.DB) ports.DiagnosisRepository {
	return &DiagnosisRepositoryImpl{db: db}
}

// Migrate creates the diagnosis history schema if it does not exist
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS ecg_diagnoses (
			id UUID PRIMARY KEY,
			filename TEXT NOT NULL,
			diagnosis TEXT NOT NULL,
			confidence DOUBLE PRECISION NOT NULL,
			total_segments INTEGER NOT NULL,
			distribution JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create ecg_diagnoses table: %w", err)
	}
	return nil
}

// Save persists one aggregate diagnosis
func (r *DiagnosisRepositoryImpl) Save(ctx context.Context, filename string, agg *diagnosis.Aggregate) error {
	dist, err := json.Marshal(agg.Distribution)
	if err != nil {
		return fmt.Errorf("marshal distribution: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO ecg_diagnoses (id, filename, diagnosis, confidence, total_segments, distribution, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, agg.ID, filename, agg.Diagnosis, agg.OverallConfidence, agg.TotalSegments, dist, agg.CreatedAt)
	return err
}

// ListRecent returns the newest diagnoses, most recent first
func (r *DiagnosisRepositoryImpl) ListRecent(ctx context.Context, limit int) ([]diagnosis.Record, error) {
	if limit <= 0 {
		limit = 50
	}

	type row struct {
		diagnosis.Record
		Distribution []byte `db:"distribution"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, filename, diagnosis, confidence, total_segments, distribution, created_at
		FROM ecg_diagnoses
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}

	records := make([]diagnosis.Record, 0, len(rows))
	for _, rw := range rows {
		rec := rw.Record
		if err := json.Unmarshal(rw.Distribution, &rec.Distribution); err != nil {
			return nil, fmt.Errorf("unmarshal distribution for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
