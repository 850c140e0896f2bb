package signal

import "ecgdx/domain/core"

// RawSignal is one continuous ECG recording as handed over by the ingestion
// layer: finite samples only, together with its sampling rate in Hz.
type RawSignal struct {
	Samples []float64
	Rate    float64
}

// Validate checks the ingestion-layer guarantees before the core accepts the
// recording. The ingestion adapter strips non-finite samples, so finiteness is
// not re-checked here.
func (s RawSignal) Validate() error {
	if len(s.Samples) == 0 {
		return core.NewInputError("recording is empty")
	}
	if s.Rate <= 0 {
		return core.NewInputError("sampling rate must be positive")
	}
	return nil
}

// Conditioned is a zero-mean, band-limited signal derived once per request
// from a RawSignal. Same length as its source.
type Conditioned struct {
	Samples []float64
	Rate    float64
}

// PeakSet is a strictly increasing sequence of sample indices into a
// conditioned signal. Consecutive entries are separated by at least the
// active minimum-distance threshold, and every entry keeps the boundary
// margin from both signal ends.
type PeakSet []int

// Segment is a fixed-length window of the conditioned signal centered on one
// R-peak, addressed by its source peak index.
type Segment struct {
	Peak    int
	Samples []float64
}

// BoundaryMargin returns the sample count peaks must keep from either signal
// end (0.2 x rate, rounded). Guarantees the extractor can always cut a full
// window at the default segment length.
func BoundaryMargin(rate float64) int {
	return int(0.2*rate + 0.5)
}
