package pitch

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
)

// Spectral detects pitch by picking the strongest spectral peak inside the
// configured band. It is cheaper than Yin for large blocks but less precise
// at low frequencies, where one FFT bin spans many cents.
type Spectral struct {
	sampleRate int
	cfg        config
}

// NewSpectral builds a Spectral detector for the given sample rate, with
// the same defaults as NewYin.
func NewSpectral(sampleRate int, opts ...Option) (*Spectral, error) {
	cfg := newConfig(opts...)
	if err := cfg.validate(sampleRate); err != nil {
		return nil, err
	}
	return &Spectral{sampleRate: sampleRate, cfg: cfg}, nil
}

// Detect estimates the fundamental frequency of one block of samples.
// A spectrum with no local peak inside the band yields an invalid result.
func (s *Spectral) Detect(samples []float64) Result {
	if len(samples) < 2 {
		return Result{}
	}

	windowed := make([]float64, len(samples))
	copy(windowed, samples)
	window.Apply(windowed, window.Hann)

	spectrum := fft.FFTReal(windowed)
	half := len(spectrum) / 2
	binWidth := float64(s.sampleRate) / float64(len(windowed))

	minBin := int(s.cfg.minFrequency / binWidth)
	if minBin < 1 {
		minBin = 1 // skip DC
	}
	maxBin := int(s.cfg.maxFrequency / binWidth)
	if maxBin > half-1 {
		maxBin = half - 1
	}
	if minBin >= maxBin {
		return Result{}
	}

	magnitudes := make([]float64, maxBin+1)
	var total float64
	for i := minBin; i <= maxBin; i++ {
		magnitudes[i] = cmplx.Abs(spectrum[i])
		total += magnitudes[i]
	}
	if total == 0 {
		return Result{}
	}

	// Strongest bin that is higher than both neighbors.
	bestBin := -1
	for i := minBin + 1; i < maxBin; i++ {
		if magnitudes[i] > magnitudes[i-1] && magnitudes[i] > magnitudes[i+1] {
			if bestBin < 0 || magnitudes[i] > magnitudes[bestBin] {
				bestBin = i
			}
		}
	}
	if bestBin < 0 {
		return Result{}
	}

	// How much of the in-band energy the peak bin holds; noise spreads it
	// thin, a clean tone concentrates it.
	confidence := clamp01(magnitudes[bestBin] / total)
	if confidence < s.cfg.confidenceThreshold {
		return Result{Confidence: confidence}
	}

	// Quadratic interpolation over the peak and its neighbors:
	// delta = 0.5 * (m[k-1] - m[k+1]) / (m[k-1] - 2*m[k] + m[k+1])
	prev, cur, next := magnitudes[bestBin-1], magnitudes[bestBin], magnitudes[bestBin+1]
	bin := float64(bestBin)
	if denom := prev - 2*cur + next; denom != 0 {
		bin += 0.5 * (prev - next) / denom
	}

	return Result{
		Frequency:  bin * binWidth,
		Confidence: confidence,
		Valid:      true,
	}
}
