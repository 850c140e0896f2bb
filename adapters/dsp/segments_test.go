package dsp

import (
	"errors"
	"math"
	"testing"

	"ecgdx/domain/core"
	"ecgdx/domain/signal"
	"ecgdx/internal/testkit"
)

const testSegmentLength = 250

func TestSegmentExtractor_WindowsAroundPeaks(t *testing.T) {
	sig := signal.Conditioned{Samples: make([]float64, 2000), Rate: 360}
	for i := range sig.Samples {
		sig.Samples[i] = float64(i)
	}
	peaks := signal.PeakSet{300, 700, 1100}

	extractor := NewSegmentExtractor(testSegmentLength, testkit.NopLogger{})
	segments, err := extractor.Extract(sig, peaks)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	for i, seg := range segments {
		if len(seg.Samples) != testSegmentLength {
			t.Errorf("segment %d has length %d", i, len(seg.Samples))
		}
		if seg.Peak != peaks[i] {
			t.Errorf("segment %d addressed by peak %d, want %d", i, seg.Peak, peaks[i])
		}
		// Window is [p - L/2, p + L/2); with ramp data the first sample
		// equals the start index.
		if seg.Samples[0] != float64(peaks[i]-testSegmentLength/2) {
			t.Errorf("segment %d starts at %v", i, seg.Samples[0])
		}
	}
}

func TestSegmentExtractor_DropsOutOfBoundsWindows(t *testing.T) {
	sig := signal.Conditioned{Samples: make([]float64, 500), Rate: 360}
	extractor := NewSegmentExtractor(testSegmentLength, testkit.NopLogger{})

	// 50 is too close to the start, 480 to the end; 250 fits.
	segments, err := extractor.Extract(sig, signal.PeakSet{50, 250, 480})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if len(segments) != 1 || segments[0].Peak != 250 {
		t.Errorf("expected only the in-bounds peak, got %d segments", len(segments))
	}

	_, err = extractor.Extract(sig, signal.PeakSet{50, 480})
	if !errors.Is(err, core.ErrNoSegments) {
		t.Errorf("expected ErrNoSegments, got %v", err)
	}
}

func TestSegmentExtractor_Deterministic(t *testing.T) {
	cond, err := NewConditioner(testkit.NopLogger{}).Condition(testkit.SyntheticECG(testkit.DefaultECGConfig()))
	if err != nil {
		t.Fatalf("conditioning failed: %v", err)
	}
	peaks := signal.PeakSet{400, 800, 1200, 1600}
	extractor := NewSegmentExtractor(testSegmentLength, testkit.NopLogger{})

	first, err := extractor.Extract(cond, peaks)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	second, err := extractor.Extract(cond, peaks)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	for i := range first {
		for j := range first[i].Samples {
			if first[i].Samples[j] != second[i].Samples[j] {
				t.Fatalf("extraction not bit-identical at segment %d sample %d", i, j)
			}
		}
	}
}

func makeSegment(fill func(i int) float64) signal.Segment {
	samples := make([]float64, testSegmentLength)
	for i := range samples {
		samples[i] = fill(i)
	}
	return signal.Segment{Peak: 500, Samples: samples}
}

func TestSegmentValidator_RejectsDegenerateWindows(t *testing.T) {
	validator := NewSegmentValidator(testSegmentLength, testkit.NopLogger{})

	good := makeSegment(func(i int) float64 { return math.Sin(float64(i) / 10) })
	flat := makeSegment(func(i int) float64 { return 0.5 })
	spiky := makeSegment(func(i int) float64 { return float64(i) }) // exceeds amplitude cap
	withNaN := makeSegment(func(i int) float64 { return math.Sin(float64(i) / 10) })
	withNaN.Samples[100] = math.NaN()
	short := signal.Segment{Peak: 500, Samples: make([]float64, 10)}

	valid, err := validator.Validate([]signal.Segment{good, flat, spiky, withNaN, short})
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(valid) != 1 {
		t.Fatalf("expected 1 valid segment, got %d", len(valid))
	}
	if valid[0].Peak != good.Peak {
		t.Errorf("wrong segment survived validation")
	}
}

func TestSegmentValidator_Idempotent(t *testing.T) {
	validator := NewSegmentValidator(testSegmentLength, testkit.NopLogger{})
	segments := []signal.Segment{
		makeSegment(func(i int) float64 { return math.Sin(float64(i) / 7) }),
		makeSegment(func(i int) float64 { return math.Cos(float64(i) / 5) }),
	}

	once, err := validator.Validate(segments)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	twice, err := validator.Validate(once)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if len(twice) != len(once) {
		t.Fatalf("idempotence violated: %d then %d segments", len(once), len(twice))
	}
	for i := range once {
		for j := range once[i].Samples {
			if once[i].Samples[j] != twice[i].Samples[j] {
				t.Fatalf("validation changed segment %d", i)
			}
		}
	}
}

// TestSegmentValidator_AllConstant covers the zero-variance scenario: every
// window is flat, so quality gating leaves nothing.
func TestSegmentValidator_AllConstant(t *testing.T) {
	validator := NewSegmentValidator(testSegmentLength, testkit.NopLogger{})
	segments := []signal.Segment{
		makeSegment(func(i int) float64 { return 1 }),
		makeSegment(func(i int) float64 { return 2 }),
	}
	_, err := validator.Validate(segments)
	if !errors.Is(err, core.ErrNoValidSegments) {
		t.Errorf("expected ErrNoValidSegments, got %v", err)
	}
}
