package audio

import "math"

// Level computes the RMS amplitude of a block and its decibel equivalent
// (20*log10(rms)). Empty or near-silent blocks report -100 dB so the log
// never sees zero.
func Level(samples []float64) (rms, db float64) {
	if len(samples) == 0 {
		return 0, -100
	}

	sumSquares := 0.0
	for _, sample := range samples {
		sumSquares += sample * sample
	}
	rms = math.Sqrt(sumSquares / float64(len(samples)))

	if rms > 0.0000001 {
		db = 20 * math.Log10(rms)
	} else {
		db = -100
	}

	return rms, db
}
