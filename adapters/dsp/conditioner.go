package dsp

import (
	"ecgdx/domain/core"
	"ecgdx/domain/signal"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	filterOrder = 4
	lowCutHz    = 0.5
	highCutHz   = 40.0
)

// Conditioner removes DC bias and confines signal energy to the QRS band
// with a 4th-order zero-phase Butterworth band-pass filter.
type Conditioner struct {
	logger logger
}

// NewConditioner creates a signal conditioner
func NewConditioner(log logger) *Conditioner {
	return &Conditioner{logger: log}
}

// Condition subtracts the mean and band-pass filters the recording.
// The output has the same length as the input.
func (c *Conditioner) Condition(raw signal.RawSignal) (signal.Conditioned, error) {
	if len(raw.Samples) == 0 {
		return signal.Conditioned{}, core.NewInputError("recording is empty")
	}
	if raw.Rate <= 0 {
		return signal.Conditioned{}, core.NewFilterError("sampling rate must be positive")
	}

	centered := make([]float64, len(raw.Samples))
	copy(centered, raw.Samples)
	floats.AddConst(-stat.Mean(centered, nil), centered)

	nyquist := raw.Rate / 2
	low := clamp(lowCutHz/nyquist, 0.001, 0.999)
	high := clamp(highCutHz/nyquist, 0.001, 0.999)

	filter, err := newButterBandpass(filterOrder, low, high)
	if err != nil {
		return signal.Conditioned{}, err
	}
	filtered, err := filter.filtfilt(centered)
	if err != nil {
		return signal.Conditioned{}, err
	}

	c.logger.Debug("conditioned %d samples, passband [%.3f, %.3f] of Nyquist", len(filtered), low, high)
	return signal.Conditioned{Samples: filtered, Rate: raw.Rate}, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// logger is the slice of ecgdx/internal.Logger the dsp adapters use.
type logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
}
