package dsp

import (
	"context"
	"math"
	"sort"

	"ecgdx/domain/core"
	"ecgdx/domain/signal"
	"ecgdx/ports"

	"github.com/montanaflynn/stats"
)

// minUsablePeaks is the threshold below which a heuristic pass is considered
// unusable and the next, looser strategy is tried.
const minUsablePeaks = 3

// detectionStrategy is one pass of the ordered fallback chain. Signal quality
// and morphology vary widely, so acceptance criteria loosen progressively
// rather than failing outright on a single rigid threshold.
type detectionStrategy struct {
	name             string
	distanceFactor   float64 // x sampling rate
	heightPercentile float64 // percentile of the standardized signal; <0 disables
	prominence       float64
}

var heuristicStrategies = []detectionStrategy{
	{name: "standard", distanceFactor: 0.6, heightPercentile: 75, prominence: 0.3},
	{name: "lenient", distanceFactor: 0.4, heightPercentile: 60, prominence: 0.1},
	{name: "no_height", distanceFactor: 0.4, heightPercentile: -1, prominence: 0.1},
}

// PeakDetector locates heartbeat-anchor peaks. It prefers an optional
// higher-fidelity external detector and falls back to the built-in heuristic
// strategy chain when the capability is absent or its result unusable.
type PeakDetector struct {
	external ports.RPeakDetector // may be nil
	logger   logger
}

// NewPeakDetector creates a detector with the built-in heuristics only.
func NewPeakDetector(log logger) *PeakDetector {
	return &PeakDetector{logger: log}
}

// NewPeakDetectorWithExternal creates a detector that tries the external
// capability first.
func NewPeakDetectorWithExternal(external ports.RPeakDetector, log logger) *PeakDetector {
	return &PeakDetector{external: external, logger: log}
}

// Detect returns the accepted R-peak indices for a conditioned signal,
// strictly increasing and clear of the boundary margin on both ends.
func (d *PeakDetector) Detect(ctx context.Context, sig signal.Conditioned) (signal.PeakSet, error) {
	candidates := d.candidates(ctx, sig)

	margin := signal.BoundaryMargin(sig.Rate)
	peaks := make(signal.PeakSet, 0, len(candidates))
	for _, p := range candidates {
		if p >= margin && p < len(sig.Samples)-margin {
			peaks = append(peaks, p)
		}
	}
	sort.Ints(peaks)

	if len(peaks) == 0 {
		return nil, core.ErrNoPeaks
	}
	d.logger.Info("accepted %d R-peaks (%d candidates before boundary filter)", len(peaks), len(candidates))
	return peaks, nil
}

func (d *PeakDetector) candidates(ctx context.Context, sig signal.Conditioned) []int {
	if d.external != nil && d.external.Available() {
		peaks, err := d.external.Detect(ctx, sig)
		if err == nil && len(peaks) > 0 {
			d.logger.Info("external detector %s found %d peaks", d.external.Name(), len(peaks))
			return peaks
		}
		d.logger.Warn("external detector %s unusable, falling back to heuristics: %v", d.external.Name(), err)
	}

	standardized := standardize(sig.Samples)

	var peaks []int
	for i, s := range heuristicStrategies {
		if i > 0 {
			d.logger.Warn("few R-peaks detected, relaxing to %s strategy", s.name)
		}
		peaks = findPeaks(standardized, d.criteria(standardized, s, sig.Rate))
		if len(peaks) >= minUsablePeaks {
			break
		}
	}
	return peaks
}

func (d *PeakDetector) criteria(standardized []float64, s detectionStrategy, rate float64) peakCriteria {
	height := math.Inf(-1)
	if s.heightPercentile >= 0 {
		if h, err := stats.Percentile(standardized, s.heightPercentile); err == nil {
			height = h
		}
	}
	return peakCriteria{
		minDistance:   int(s.distanceFactor * rate),
		minHeight:     height,
		minProminence: s.prominence,
		minWidth:      1,
	}
}

// standardize maps the signal to zero mean and unit variance. The epsilon
// keeps flat signals from dividing by zero.
func standardize(x []float64) []float64 {
	mean, _ := stats.Mean(x)
	std, _ := stats.StandardDeviation(x)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = (v - mean) / (std + 1e-8)
	}
	return out
}
