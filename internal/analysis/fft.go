package analysis

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// nextPow2 is the smallest power of two >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// PowerSpectrum returns the magnitudes of the non-negative frequency bins
// of data, zero padded to a power of two. Bin k of a padded length L
// corresponds to k*rate/L.
func PowerSpectrum(data []float64) []float64 {
	padded := make([]float64, nextPow2(len(data)))
	copy(padded, data)

	coeffs := fourier.NewFFT(len(padded)).Coefficients(nil, padded)
	ps := make([]float64, len(padded)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz with the most power in
// samples taken at rate samples per second. The mean is removed first so
// a constant offset does not win.
func DominantFrequency(samples []float64, rate float64) (float64, error) {
	if len(samples) < 4 {
		return 0, fmt.Errorf("need at least 4 samples, got %d", len(samples))
	}
	if !(rate > 0) {
		return 0, fmt.Errorf("sample rate must be positive, got %g", rate)
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(len(samples))
	centered := make([]float64, len(samples))
	for i, v := range samples {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	return float64(best) * rate / float64(2*len(ps)), nil
}
