package dsp

import (
	"errors"
	"math"
	"testing"

	"ecgdx/domain/core"
	"ecgdx/domain/diagnosis"
	"ecgdx/domain/signal"
	"ecgdx/internal/testkit"
)

// TestNormalizer_IdentityLaw: with mean 0 and std 1 at every position the
// output equals the input exactly.
func TestNormalizer_IdentityLaw(t *testing.T) {
	normalizer := NewNormalizer(testkit.IdentityTransform(testSegmentLength))
	seg := makeSegment(func(i int) float64 { return math.Sin(float64(i) / 9) })

	rows, err := normalizer.Normalize([]signal.Segment{seg})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	for j, v := range rows[0] {
		if v != seg.Samples[j] {
			t.Fatalf("identity law violated at position %d: %v != %v", j, v, seg.Samples[j])
		}
	}
}

func TestNormalizer_AppliesTransform(t *testing.T) {
	mean := make([]float64, testSegmentLength)
	std := make([]float64, testSegmentLength)
	for i := range mean {
		mean[i] = 1
		std[i] = 2
	}
	normalizer := NewNormalizer(diagnosis.ScalingTransform{Mean: mean, Std: std})

	seg := makeSegment(func(i int) float64 { return 5 })
	rows, err := normalizer.Normalize([]signal.Segment{seg})
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	for j, v := range rows[0] {
		if v != 2 { // (5 - 1) / 2
			t.Fatalf("expected 2 at position %d, got %v", j, v)
		}
	}
}

func TestNormalizer_SchemaMismatch(t *testing.T) {
	normalizer := NewNormalizer(testkit.IdentityTransform(100))
	seg := makeSegment(func(i int) float64 { return 1 }) // length 250

	_, err := normalizer.Normalize([]signal.Segment{seg})
	if !errors.Is(err, core.ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch, got %v", err)
	}
}
