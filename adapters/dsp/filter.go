package dsp

import (
	"math"
	"math/cmplx"

	"ecgdx/domain/core"

	"gonum.org/v1/gonum/mat"
)

// bandpassFilter holds the transfer-function coefficients of a digital
// Butterworth band-pass filter, normalized so a[0] == 1.
type bandpassFilter struct {
	b []float64
	a []float64
}

// padLen is the reflection padding used for zero-phase filtering. The input
// must be strictly longer than this.
func (f *bandpassFilter) padLen() int {
	n := len(f.a)
	if len(f.b) > n {
		n = len(f.b)
	}
	return 3 * n
}

// newButterBandpass designs an order-N Butterworth band-pass filter from
// normalized cutoffs (fractions of Nyquist, already clamped by the caller).
// The derivation is the standard one: analog low-pass prototype, low-pass to
// band-pass transform, bilinear transform, then polynomial coefficients.
func newButterBandpass(order int, low, high float64) (*bandpassFilter, error) {
	if low <= 0 || high >= 1 || low >= high {
		return nil, core.NewFilterError("band edges out of range")
	}

	// Prewarp the band edges (internal sampling rate 2).
	const fs = 2.0
	w1 := 2 * fs * math.Tan(math.Pi*low/fs)
	w2 := 2 * fs * math.Tan(math.Pi*high/fs)
	bw := w2 - w1
	wo := math.Sqrt(w1 * w2)

	// Analog low-pass prototype: poles evenly spaced on the left unit
	// semicircle, no zeros, unit gain.
	poles := make([]complex128, order)
	for i := 0; i < order; i++ {
		theta := math.Pi * float64(2*i+1-order) / float64(2*order)
		poles[i] = -cmplx.Exp(complex(0, theta))
	}
	gain := 1.0

	// Low-pass to band-pass: each prototype pole splits into a conjugate
	// pair around wo; the band-pass gains N zeros at the origin.
	bpPoles := make([]complex128, 0, 2*order)
	for _, p := range poles {
		pl := p * complex(bw/2, 0)
		d := cmplx.Sqrt(pl*pl - complex(wo*wo, 0))
		bpPoles = append(bpPoles, pl+d)
	}
	for _, p := range poles {
		pl := p * complex(bw/2, 0)
		d := cmplx.Sqrt(pl*pl - complex(wo*wo, 0))
		bpPoles = append(bpPoles, pl-d)
	}
	bpZeros := make([]complex128, order) // zeros at s = 0
	gain *= math.Pow(bw, float64(order))

	// Bilinear transform to the digital plane.
	fs2 := complex(2*fs, 0)
	zNum := complex(1, 0)
	zDen := complex(1, 0)
	digZeros := make([]complex128, 0, 2*order)
	for _, z := range bpZeros {
		digZeros = append(digZeros, (fs2+z)/(fs2-z))
		zNum *= fs2 - z
	}
	digPoles := make([]complex128, 0, 2*order)
	for _, p := range bpPoles {
		digPoles = append(digPoles, (fs2+p)/(fs2-p))
		zDen *= fs2 - p
	}
	// Zeros at infinity map to z = -1.
	for len(digZeros) < len(digPoles) {
		digZeros = append(digZeros, complex(-1, 0))
	}
	gain *= real(zNum / zDen)

	b := polyFromRoots(digZeros)
	a := polyFromRoots(digPoles)
	for i := range b {
		b[i] *= gain
	}
	for _, c := range a {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, core.NewFilterError("filter design produced non-finite coefficients")
		}
	}
	return &bandpassFilter{b: b, a: a}, nil
}

// polyFromRoots expands a monic polynomial from its (conjugate-paired) roots
// and returns the real coefficient sequence, highest order first.
func polyFromRoots(roots []complex128) []float64 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = real(c)
	}
	return out
}

// lfilter applies the filter in direct form II transposed with initial
// state zi (may be nil for zero state).
func (f *bandpassFilter) lfilter(x, zi []float64) []float64 {
	n := len(f.a)
	z := make([]float64, n-1)
	copy(z, zi)
	y := make([]float64, len(x))
	for i, xn := range x {
		yn := f.b[0]*xn + z[0]
		for j := 0; j < n-2; j++ {
			z[j] = f.b[j+1]*xn + z[j+1] - f.a[j+1]*yn
		}
		z[n-2] = f.b[n-1]*xn - f.a[n-1]*yn
		y[i] = yn
	}
	return y
}

// steadyState computes the filter state matching a unit step input, so
// forward-backward filtering starts without an edge transient. Solves
// (I - C^T) zi = B for the companion matrix C of the denominator.
func (f *bandpassFilter) steadyState() ([]float64, error) {
	n := len(f.a)
	m := n - 1
	sys := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			// C[i][j]: first row -a[1:], subdiagonal ones; transposed here.
			var c float64
			if j == 0 {
				c = -f.a[i+1]
			} else if i == j-1 {
				c = 1
			}
			v := -c
			if i == j {
				v += 1
			}
			sys.Set(i, j, v)
		}
	}
	rhs := mat.NewVecDense(m, nil)
	for i := 0; i < m; i++ {
		rhs.SetVec(i, f.b[i+1]-f.a[i+1]*f.b[0])
	}
	var zi mat.VecDense
	if err := zi.SolveVec(sys, rhs); err != nil {
		return nil, core.NewFilterError("singular steady-state system")
	}
	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = zi.AtVec(i)
	}
	return out, nil
}

// filtfilt applies the filter forward and backward with odd-reflection
// padding, yielding a zero-phase response. The input must be longer than
// padLen samples.
func (f *bandpassFilter) filtfilt(x []float64) ([]float64, error) {
	pad := f.padLen()
	n := len(x)
	if n <= pad {
		return nil, core.NewFilterError("signal too short for zero-phase filtering")
	}

	ext := make([]float64, 0, n+2*pad)
	for i := pad; i >= 1; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := 1; i <= pad; i++ {
		ext = append(ext, 2*x[n-1]-x[n-1-i])
	}

	zi, err := f.steadyState()
	if err != nil {
		return nil, err
	}

	scaled := make([]float64, len(zi))
	for i := range zi {
		scaled[i] = zi[i] * ext[0]
	}
	y := f.lfilter(ext, scaled)

	reverse(y)
	for i := range zi {
		scaled[i] = zi[i] * y[0]
	}
	y = f.lfilter(y, scaled)
	reverse(y)

	return y[pad : len(y)-pad], nil
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
