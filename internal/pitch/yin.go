package pitch

import (
	"fmt"
	"math"

	"github.com/mjibson/go-dsp/window"
)

// absoluteThreshold is the fixed cutoff on the normalized difference below
// which a lag is accepted as periodic.
const absoluteThreshold = 0.1

// Yin detects pitch with the YIN method: a squared-difference function over
// candidate lags, cumulative-mean normalization to remove the short-lag
// bias, an absolute-threshold lag search, and parabolic interpolation to
// refine the winning lag below one sample of resolution.
type Yin struct {
	sampleRate int
	cfg        config
	tauMin     int
	tauMax     int
}

// NewYin builds a Yin detector for the given sample rate. The search band
// defaults to 40-1000 Hz and the confidence threshold to 0.1.
func NewYin(sampleRate int, opts ...Option) (*Yin, error) {
	cfg := newConfig(opts...)
	if err := cfg.validate(sampleRate); err != nil {
		return nil, err
	}

	// Lag bounds: high frequencies mean short lags, low frequencies long ones.
	tauMin := int(math.Round(float64(sampleRate) / cfg.maxFrequency))
	if tauMin < 1 {
		tauMin = 1
	}
	tauMax := int(math.Round(float64(sampleRate) / cfg.minFrequency))
	if tauMax <= tauMin {
		return nil, fmt.Errorf("pitch: band %v-%v Hz leaves no usable lags at %d Hz",
			cfg.minFrequency, cfg.maxFrequency, sampleRate)
	}

	return &Yin{
		sampleRate: sampleRate,
		cfg:        cfg,
		tauMin:     tauMin,
		tauMax:     tauMax,
	}, nil
}

// Detect estimates the fundamental frequency of one block of samples.
// The block is never mutated; blocks too short to form any in-band lag
// produce an invalid result instead of an error.
func (y *Yin) Detect(samples []float64) Result {
	if len(samples) < 2 {
		return Result{}
	}

	windowed := make([]float64, len(samples))
	copy(windowed, samples)
	window.Apply(windowed, window.Hann)

	// Clip the search to the lags the block can actually form.
	tauMax := y.tauMax
	if limit := len(windowed) - 1; tauMax > limit {
		tauMax = limit
	}
	if y.tauMin >= tauMax {
		return Result{}
	}

	diff := difference(windowed, tauMax)
	normalizeCumulativeMean(diff)

	tau, best := y.acceptLag(diff)
	if tau < 0 {
		return Result{Confidence: clamp01(1 - best)}
	}

	// Confidence is read at the integer lag; the refined lag only sharpens
	// the frequency estimate.
	confidence := clamp01(1 - diff[tau])
	if confidence < y.cfg.confidenceThreshold {
		return Result{Confidence: confidence}
	}

	lag := refineLag(diff, tau)
	if lag <= 0 {
		return Result{Confidence: confidence}
	}

	return Result{
		Frequency:  float64(y.sampleRate) / lag,
		Confidence: confidence,
		Valid:      true,
	}
}

// difference computes the squared-difference function d(tau) for every lag
// in [1, tauMax). Index 0 is left at zero; it is never a candidate.
func difference(x []float64, tauMax int) []float64 {
	d := make([]float64, tauMax)
	for tau := 1; tau < tauMax; tau++ {
		var sum float64
		for i := 0; i < len(x)-tau; i++ {
			delta := x[i] - x[i+tau]
			sum += delta * delta
		}
		d[tau] = sum
	}
	return d
}

// normalizeCumulativeMean rewrites d in place as the cumulative-mean
// normalized difference: d'(tau) = tau * d(tau) / sum(d(1)..d(tau)).
// Entry 0, and any entry whose cumulative sum is zero, becomes the
// neutral value 1.
func normalizeCumulativeMean(d []float64) {
	if len(d) == 0 {
		return
	}
	d[0] = 1
	var cumulative float64
	for tau := 1; tau < len(d); tau++ {
		cumulative += d[tau]
		if cumulative > 0 {
			d[tau] *= float64(tau) / cumulative
		} else {
			d[tau] = 1
		}
	}
}

// acceptLag picks the candidate lag in [tauMin, len(d)). The global minimum
// wins when it crosses the absolute threshold, favoring the strongest
// periodicity over an earlier, weaker dip; otherwise the first lag to cross
// the threshold is taken. Returns -1 and the best value seen when no lag
// qualifies.
func (y *Yin) acceptLag(d []float64) (int, float64) {
	best := y.tauMin
	for tau := y.tauMin + 1; tau < len(d); tau++ {
		if d[tau] < d[best] {
			best = tau
		}
	}
	if d[best] < absoluteThreshold {
		return best, d[best]
	}

	for tau := y.tauMin; tau < len(d); tau++ {
		if d[tau] < absoluteThreshold {
			return tau, d[tau]
		}
	}

	return -1, d[best]
}

// refineLag interpolates a parabola through the normalized difference at
// tau-1, tau, tau+1 and returns the sub-sample lag at its vertex. Lags at
// either end of the buffer are returned unchanged.
func refineLag(d []float64, tau int) float64 {
	if tau <= 0 || tau >= len(d)-1 {
		return float64(tau)
	}

	a, b, c := d[tau-1], d[tau], d[tau+1]
	denom := 2 * (2*b - a - c)
	if denom == 0 {
		return float64(tau)
	}
	return float64(tau) + (c-a)/denom
}
