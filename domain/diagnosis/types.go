package diagnosis

import (
	"time"

	"github.com/google/uuid"
)

// ScalingTransform is the per-position mean/std pair fixed at training time.
// Loaded once before serving and shared read-only across requests; the core
// never recomputes it.
type ScalingTransform struct {
	Mean []float64
	Std  []float64
}

// Len returns the segment length the transform was fitted for.
func (t ScalingTransform) Len() int { return len(t.Mean) }

// ClassLabelMap is a read-only bijection from class index to diagnosis label.
// Indices are dense: 0..len-1.
type ClassLabelMap []string

// Label returns the diagnosis name for a class index.
func (m ClassLabelMap) Label(idx int) (string, bool) {
	if idx < 0 || idx >= len(m) {
		return "", false
	}
	return m[idx], true
}

// Prediction is the classifier verdict for one heartbeat segment: the argmax
// class and its probability.
type Prediction struct {
	Class      int
	Confidence float64
}

// ClassShare describes one voted class inside an aggregate result.
type ClassShare struct {
	SegmentCount  int     `json:"segment_count"`
	Percentage    float64 `json:"percentage"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// Record is one persisted diagnosis, as returned by the history repository.
type Record struct {
	ID            uuid.UUID             `json:"id" db:"id"`
	Filename      string                `json:"filename" db:"filename"`
	Diagnosis     string                `json:"predicted_diagnosis" db:"diagnosis"`
	Confidence    float64               `json:"overall_confidence" db:"confidence"`
	TotalSegments int                   `json:"total_heartbeats" db:"total_segments"`
	Distribution  map[string]ClassShare `json:"segment_distribution" db:"-"`
	CreatedAt     time.Time             `json:"created_at" db:"created_at"`
}

// Aggregate is the final immutable result for one recording.
type Aggregate struct {
	ID                uuid.UUID             `json:"id"`
	PredictedClass    int                   `json:"-"`
	Diagnosis         string                `json:"predicted_diagnosis"`
	OverallConfidence float64               `json:"overall_confidence"`
	TotalSegments     int                   `json:"total_heartbeats"`
	MajorityVotes     int                   `json:"majority_vote_count"`
	Distribution      map[string]ClassShare `json:"segment_distribution"`
	CreatedAt         time.Time             `json:"created_at"`
}
