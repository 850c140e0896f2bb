package app

import (
	"fmt"
	"math"
	"time"

	"ecgdx/domain/core"
	"ecgdx/domain/diagnosis"

	"github.com/google/uuid"
)

// Aggregator reduces the per-segment predictions of one recording to a
// single diagnosis by majority vote, with per-class statistics.
type Aggregator struct {
	labels diagnosis.ClassLabelMap
}

// NewAggregator creates an aggregator over the loaded label map.
func NewAggregator(labels diagnosis.ClassLabelMap) *Aggregator {
	return &Aggregator{labels: labels}
}

// Aggregate computes vote counts, the majority class and the per-class
// distribution. Ties break deterministically toward the lowest class index.
// A voted class missing from the label map means the serving artifacts are
// inconsistent with each other; that is fatal and never retried.
func (a *Aggregator) Aggregate(predictions []diagnosis.Prediction) (*diagnosis.Aggregate, error) {
	if len(predictions) == 0 {
		return nil, core.ErrNoValidSegments
	}

	votes := make(map[int]int)
	confSums := make(map[int]float64)
	for _, p := range predictions {
		votes[p.Class]++
		confSums[p.Class] += p.Confidence
	}

	majority := -1
	for class, count := range votes {
		if majority < 0 || count > votes[majority] || (count == votes[majority] && class < majority) {
			majority = class
		}
	}

	total := len(predictions)
	distribution := make(map[string]diagnosis.ClassShare, len(votes))
	for class, count := range votes {
		label, ok := a.labels.Label(class)
		if !ok {
			return nil, core.NewConfigError(fmt.Sprintf("class index %d missing from label map", class))
		}
		distribution[label] = diagnosis.ClassShare{
			SegmentCount:  count,
			Percentage:    round(100*float64(count)/float64(total), 2),
			AvgConfidence: round(confSums[class]/float64(count), 4),
		}
	}

	majorityLabel, _ := a.labels.Label(majority)
	return &diagnosis.Aggregate{
		ID:                uuid.New(),
		PredictedClass:    majority,
		Diagnosis:         majorityLabel,
		OverallConfidence: round(confSums[majority]/float64(votes[majority]), 4),
		TotalSegments:     total,
		MajorityVotes:     votes[majority],
		Distribution:      distribution,
		CreatedAt:         time.Now().UTC(),
	}, nil
}

func round(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
