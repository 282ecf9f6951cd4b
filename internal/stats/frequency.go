package stats

import (
	"math"
	"math/cmplx"
)

// fft is the teacher's radix-2 decimation-in-time transform, kept
// verbatim in shape from internal/analysis/fft.go. The caller is
// responsible for padding its input to a power of two.
func fft(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}
	if n%2 != 0 {
		panic("stats: fft requires power-of-2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}
	return result
}

// powerSpectrum returns the one-sided magnitude spectrum of data, zero
// padded up to the next power of two.
func powerSpectrum(data []float64) []float64 {
	padded := padToPowerOfTwo(data)
	spectrum := fft(padded)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

func padToPowerOfTwo(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	if n == len(data) {
		return data
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}

// TorqueChatter flags high-frequency content in a solved control
// trajectory u(t): a well-conditioned OCP solution should not chatter
// between Newton iterations' fraction-to-boundary steps, so a spectrum
// dominated by frequencies above a Nyquist fraction is a symptom worth
// surfacing to the CLI rather than a hard solve failure.
type TorqueChatter struct {
	DominantFreqHz float64
	HighFreqRatio  float64
}

// AnalyzeTorqueChatter computes the power spectrum of one control
// channel sampled at dt and reports where its energy concentrates.
// highFreqCutoff is the fraction of the Nyquist frequency above which
// energy counts as chatter (e.g. 0.5).
func AnalyzeTorqueChatter(u []float64, dt float64, highFreqCutoff float64) TorqueChatter {
	if len(u) < 2 || dt <= 0 {
		return TorqueChatter{}
	}
	ps := powerSpectrum(u)
	if len(ps) == 0 {
		return TorqueChatter{}
	}

	n := 2 * len(ps)
	fs := 1.0 / dt
	binHz := fs / float64(n)

	totalEnergy, highEnergy := 0.0, 0.0
	dominantBin, dominantMag := 0, -1.0
	cutoffBin := int(highFreqCutoff * float64(len(ps)))

	for i, mag := range ps {
		energy := mag * mag
		totalEnergy += energy
		if i >= cutoffBin {
			highEnergy += energy
		}
		if mag > dominantMag {
			dominantMag = mag
			dominantBin = i
		}
	}

	ratio := 0.0
	if totalEnergy > 0 {
		ratio = highEnergy / totalEnergy
	}
	return TorqueChatter{
		DominantFreqHz: float64(dominantBin) * binHz,
		HighFreqRatio:  ratio,
	}
}
