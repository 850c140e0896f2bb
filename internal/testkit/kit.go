package testkit

import (
	"math"
	"math/rand"

	"ecgdx/domain/diagnosis"
	"ecgdx/domain/signal"
)

// ECGConfig configures the synthetic ECG generator
type ECGConfig struct {
	DurationSec float64
	Rate        float64
	HeartRate   float64 // beats per minute
	Noise       float64 // uniform noise amplitude
	Seed        int64
}

// DefaultECGConfig returns a clean 10-second MIT-BIH style recording at
// 60 bpm: one R-peak per second.
func DefaultECGConfig() ECGConfig {
	return ECGConfig{
		DurationSec: 10,
		Rate:        360,
		HeartRate:   60,
		Noise:       0.01,
		Seed:        42,
	}
}

// SyntheticECG generates a deterministic ECG-like waveform: baseline wander
// plus gaussian P, QRS and T deflections per cycle. Not clinical, but with
// sharp R maxima at known positions for detector tests.
func SyntheticECG(cfg ECGConfig) signal.RawSignal {
	rng := rand.New(rand.NewSource(cfg.Seed))
	n := int(cfg.DurationSec * cfg.Rate)
	cycleHz := cfg.HeartRate / 60.0

	samples := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / cfg.Rate
		phase := math.Mod(t*cycleHz, 1.0)

		baseline := 0.05 * math.Sin(2*math.Pi*0.33*t)
		p := 0.08 * gauss(phase, 0.18, 0.03)
		q := -0.12 * gauss(phase, 0.30, 0.01)
		r := 1.00 * gauss(phase, 0.32, 0.008)
		sv := -0.25 * gauss(phase, 0.35, 0.012)
		tw := 0.25 * gauss(phase, 0.60, 0.06)
		noise := cfg.Noise * (2*rng.Float64() - 1)

		samples[i] = baseline + p + q + r + sv + tw + noise
	}
	return signal.RawSignal{Samples: samples, Rate: cfg.Rate}
}

func gauss(x, mu, sigma float64) float64 {
	z := (x - mu) / sigma
	return math.Exp(-0.5 * z * z)
}

// IdentityTransform returns a scaling transform with mean 0 and std 1 at
// every position, so normalization is the identity.
func IdentityTransform(length int) diagnosis.ScalingTransform {
	mean := make([]float64, length)
	std := make([]float64, length)
	for i := range std {
		std[i] = 1
	}
	return diagnosis.ScalingTransform{Mean: mean, Std: std}
}

// Labels returns a small diagnosis label map for tests.
func Labels() diagnosis.ClassLabelMap {
	return diagnosis.ClassLabelMap{"Normal", "Atrial Fibrillation", "Ventricular Tachycardia"}
}

// NopLogger satisfies the leveled logger slices without output.
type NopLogger struct{}

func (NopLogger) Error(format string, args ...interface{}) {}
func (NopLogger) Warn(format string, args ...interface{})  {}
func (NopLogger) Info(format string, args ...interface{})  {}
func (NopLogger) Debug(format string, args ...interface{}) {}
