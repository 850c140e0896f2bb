package dsp

import "math"

// peakCriteria are the acceptance thresholds for one detection pass.
type peakCriteria struct {
	minDistance   int     // minimum samples between accepted peaks
	minHeight     float64 // on the standardized signal; math.Inf(-1) disables
	minProminence float64
	minWidth      float64 // samples, at half prominence
}

// findPeaks locates local maxima satisfying the criteria, in ascending index
// order. Plateaus count as one peak at their midpoint.
func findPeaks(x []float64, c peakCriteria) []int {
	peaks := localMaxima(x)

	if !math.IsInf(c.minHeight, -1) {
		kept := peaks[:0]
		for _, p := range peaks {
			if x[p] >= c.minHeight {
				kept = append(kept, p)
			}
		}
		peaks = kept
	}

	if c.minDistance > 1 {
		peaks = selectByDistance(x, peaks, c.minDistance)
	}

	if c.minProminence > 0 || c.minWidth > 0 {
		proms, leftBases, rightBases := peakProminences(x, peaks)
		kept := make([]int, 0, len(peaks))
		for i, p := range peaks {
			if proms[i] < c.minProminence {
				continue
			}
			if c.minWidth > 0 {
				w := peakWidth(x, p, proms[i], leftBases[i], rightBases[i])
				if w < c.minWidth {
					continue
				}
			}
			kept = append(kept, p)
		}
		peaks = kept
	}

	return peaks
}

// localMaxima returns the indices of all strict local maxima. A flat top is
// reported once, at the middle of the plateau.
func localMaxima(x []float64) []int {
	var peaks []int
	i := 1
	for i < len(x)-1 {
		if x[i] <= x[i-1] {
			i++
			continue
		}
		ahead := i + 1
		for ahead < len(x)-1 && x[ahead] == x[i] {
			ahead++
		}
		if x[ahead] < x[i] {
			peaks = append(peaks, (i+ahead-1)/2)
		}
		i = ahead
	}
	return peaks
}

// selectByDistance keeps the highest peaks first and discards any remaining
// peak closer than minDistance to an already kept one.
func selectByDistance(x []float64, peaks []int, minDistance int) []int {
	order := make([]int, len(peaks))
	for i := range order {
		order[i] = i
	}
	// Sort candidate positions by height, tallest first.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && x[peaks[order[j]]] > x[peaks[order[j-1]]]; j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}

	keep := make([]bool, len(peaks))
	for i := range keep {
		keep[i] = true
	}
	for _, idx := range order {
		if !keep[idx] {
			continue
		}
		for j := idx - 1; j >= 0 && peaks[idx]-peaks[j] < minDistance; j-- {
			keep[j] = false
		}
		for j := idx + 1; j < len(peaks) && peaks[j]-peaks[idx] < minDistance; j++ {
			keep[j] = false
		}
	}

	var out []int
	for i, p := range peaks {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// peakProminences measures how much each peak stands out from the
// surrounding baseline, along with the base indices used for widths.
func peakProminences(x []float64, peaks []int) (proms []float64, leftBases, rightBases []int) {
	proms = make([]float64, len(peaks))
	leftBases = make([]int, len(peaks))
	rightBases = make([]int, len(peaks))

	for i, p := range peaks {
		height := x[p]

		leftMin := height
		leftBases[i] = p
		for j := p - 1; j >= 0; j-- {
			if x[j] > height {
				break
			}
			if x[j] < leftMin {
				leftMin = x[j]
				leftBases[i] = j
			}
		}

		rightMin := height
		rightBases[i] = p
		for j := p + 1; j < len(x); j++ {
			if x[j] > height {
				break
			}
			if x[j] < rightMin {
				rightMin = x[j]
				rightBases[i] = j
			}
		}

		base := leftMin
		if rightMin > base {
			base = rightMin
		}
		proms[i] = height - base
	}
	return proms, leftBases, rightBases
}

// peakWidth evaluates the peak's width at half its prominence, with linear
// interpolation at the crossings.
func peakWidth(x []float64, peak int, prominence float64, leftBase, rightBase int) float64 {
	evalHeight := x[peak] - 0.5*prominence

	left := float64(leftBase)
	for i := peak; i > leftBase; i-- {
		if x[i-1] < evalHeight {
			left = float64(i)
			if x[i] != x[i-1] {
				left -= (x[i] - evalHeight) / (x[i] - x[i-1])
			}
			break
		}
	}

	right := float64(rightBase)
	for i := peak; i < rightBase; i++ {
		if x[i+1] < evalHeight {
			right = float64(i)
			if x[i] != x[i+1] {
				right += (x[i] - evalHeight) / (x[i] - x[i+1])
			}
			break
		}
	}

	return right - left
}
