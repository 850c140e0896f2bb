package ports

import (
	"context"

	"ecgdx/domain/signal"
)

// RPeakDetector is an optional higher-fidelity peak detection capability.
// Availability is an explicit check, not an error path: when the capability
// is absent or its result is unusable, the pipeline degrades gracefully to
// its built-in heuristic strategies.
type RPeakDetector interface {
	Name() string

	// Available reports whether the capability can be used at all.
	Available() bool

	// Detect returns candidate R-peak indices into the conditioned signal.
	Detect(ctx context.Context, sig signal.Conditioned) ([]int, error)
}
