// Package pitch estimates the dominant pitch of a mono audio block.
//
// Two detectors share the same contract: Yin, the autocorrelation-difference
// method with sub-sample refinement, and Spectral, an FFT peak picker. Both
// are pure per call: they allocate their working buffers fresh, never mutate
// the input block, and never retain a reference to it, so a single detector
// is safe for concurrent use on independent blocks.
package pitch

import "fmt"

// Defaults shared by both detectors.
const (
	// DefaultConfidenceThreshold is the minimum confidence for a valid result.
	DefaultConfidenceThreshold = 0.1

	// DefaultMinFrequency and DefaultMaxFrequency bound the search band in Hz.
	DefaultMinFrequency = 40.0
	DefaultMaxFrequency = 1000.0
)

// Result is one detection outcome. When Valid is false the frequency is
// reported as 0 and must not be used; an invalid result is the expected,
// cheap outcome for silence, noise, or an out-of-band pitch.
type Result struct {
	Frequency  float64 // Hz
	Confidence float64 // 0 to 1
	Valid      bool
}

// Detector analyzes one block of mono samples, nominal amplitude [-1, 1].
type Detector interface {
	Detect(samples []float64) Result
}

type config struct {
	confidenceThreshold float64
	minFrequency        float64
	maxFrequency        float64
}

// Option adjusts detector configuration at construction time.
type Option func(*config)

// WithConfidenceThreshold sets the minimum confidence, in (0, 1], below
// which a detection is reported as invalid.
func WithConfidenceThreshold(threshold float64) Option {
	return func(cfg *config) {
		cfg.confidenceThreshold = threshold
	}
}

// WithFrequencyRange restricts the search band in Hz.
func WithFrequencyRange(minFreq, maxFreq float64) Option {
	return func(cfg *config) {
		cfg.minFrequency = minFreq
		cfg.maxFrequency = maxFreq
	}
}

func newConfig(opts ...Option) config {
	cfg := config{
		confidenceThreshold: DefaultConfidenceThreshold,
		minFrequency:        DefaultMinFrequency,
		maxFrequency:        DefaultMaxFrequency,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg config) validate(sampleRate int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("pitch: sample rate must be > 0: %d", sampleRate)
	}
	if cfg.confidenceThreshold <= 0 || cfg.confidenceThreshold > 1 {
		return fmt.Errorf("pitch: confidence threshold must be in (0, 1]: %v", cfg.confidenceThreshold)
	}
	if cfg.minFrequency <= 0 || cfg.maxFrequency <= cfg.minFrequency {
		return fmt.Errorf("pitch: invalid frequency range %v-%v Hz", cfg.minFrequency, cfg.maxFrequency)
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
