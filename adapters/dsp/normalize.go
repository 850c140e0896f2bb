package dsp

import (
	"ecgdx/domain/core"
	"ecgdx/domain/diagnosis"
	"ecgdx/domain/signal"
)

// Normalizer applies the pretrained per-position scaling transform. The
// transform is the one the classifier was fitted with; it is never
// recomputed at serve time.
type Normalizer struct {
	transform diagnosis.ScalingTransform
}

// NewNormalizer creates a normalizer over a loaded scaling transform.
func NewNormalizer(transform diagnosis.ScalingTransform) *Normalizer {
	return &Normalizer{transform: transform}
}

// Normalize standardizes each segment position-wise:
// out[i][j] = (in[i][j] - mean[j]) / std[j].
func (n *Normalizer) Normalize(segments []signal.Segment) ([][]float64, error) {
	width := n.transform.Len()
	rows := make([][]float64, len(segments))
	for i, seg := range segments {
		if len(seg.Samples) != width {
			return nil, core.NewSchemaError("scaling transform length", width, len(seg.Samples))
		}
		row := make([]float64, width)
		for j, v := range seg.Samples {
			row[j] = (v - n.transform.Mean[j]) / n.transform.Std[j]
		}
		rows[i] = row
	}
	return rows, nil
}
