package dsp

import (
	"math"

	"ecgdx/domain/core"
	"ecgdx/domain/signal"

	"github.com/montanaflynn/stats"
)

const (
	// flatStdThreshold rejects dead or disconnected-lead windows.
	flatStdThreshold = 1e-6
	// maxAbsAmplitude rejects corrupted or unscaled spikes.
	maxAbsAmplitude = 100.0
)

// SegmentExtractor cuts fixed-length windows centered on each accepted peak.
type SegmentExtractor struct {
	length int
	logger logger
}

// NewSegmentExtractor creates an extractor for the given even window length.
func NewSegmentExtractor(length int, log logger) *SegmentExtractor {
	return &SegmentExtractor{length: length, logger: log}
}

// Extract windows the conditioned signal around every peak. A window is kept
// only if it lies fully within bounds and has exactly the target length; the
// bounds re-check is deliberately independent of the detector's boundary
// filter.
func (e *SegmentExtractor) Extract(sig signal.Conditioned, peaks signal.PeakSet) ([]signal.Segment, error) {
	half := e.length / 2
	segments := make([]signal.Segment, 0, len(peaks))

	for _, p := range peaks {
		start := p - half
		end := p + half
		if start < 0 || end > len(sig.Samples) {
			continue
		}
		window := sig.Samples[start:end]
		if len(window) != e.length {
			continue
		}
		samples := make([]float64, e.length)
		copy(samples, window)
		segments = append(segments, signal.Segment{Peak: p, Samples: samples})
	}

	if len(segments) == 0 {
		return nil, core.ErrNoSegments
	}
	e.logger.Info("extracted %d segments from %d R-peaks", len(segments), len(peaks))
	return segments, nil
}

// SegmentValidator rejects malformed or degenerate windows before they reach
// the model. Validation preserves order and is idempotent.
type SegmentValidator struct {
	length int
	logger logger
}

// NewSegmentValidator creates a validator for the given expected length.
func NewSegmentValidator(length int, log logger) *SegmentValidator {
	return &SegmentValidator{length: length, logger: log}
}

// Validate filters the segment sequence down to usable windows. Discarding
// more than half the input is surfaced as a warning, not a failure; an empty
// result is an error.
func (v *SegmentValidator) Validate(segments []signal.Segment) ([]signal.Segment, error) {
	valid := make([]signal.Segment, 0, len(segments))
	for _, seg := range segments {
		if v.accepts(seg) {
			valid = append(valid, seg)
		}
	}

	if len(valid) == 0 {
		return nil, core.ErrNoValidSegments
	}
	if len(valid)*2 < len(segments) {
		v.logger.Warn("many segments filtered out: %d/%d remain", len(valid), len(segments))
	}
	v.logger.Info("validated %d of %d segments", len(valid), len(segments))
	return valid, nil
}

func (v *SegmentValidator) accepts(seg signal.Segment) bool {
	if len(seg.Samples) != v.length {
		return false
	}
	maxAbs := 0.0
	for _, s := range seg.Samples {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return false
		}
		if a := math.Abs(s); a > maxAbs {
			maxAbs = a
		}
	}
	if maxAbs > maxAbsAmplitude {
		return false
	}
	std, err := stats.StandardDeviation(seg.Samples)
	if err != nil || std < flatStdThreshold {
		return false
	}
	return true
}
