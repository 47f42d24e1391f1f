package pitch

import (
	"math"
	"testing"

	"github.com/strumlab/tunetui/internal/testutil"
)

func TestSpectralDetectsSine(t *testing.T) {
	tests := []struct {
		name      string
		frequency float64
	}{
		{"E2", 82.41},
		{"A4", 440.0},
		{"A5", 880.0},
	}

	detector, err := NewSpectral(testSampleRate)
	if err != nil {
		t.Fatalf("NewSpectral: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := testutil.Sine(tt.frequency, testSampleRate, 0.8, testBlockSize)

			result := detector.Detect(block)
			if !result.Valid {
				t.Fatalf("detect %v Hz: invalid result %+v", tt.frequency, result)
			}
			if math.Abs(result.Frequency-tt.frequency) > 3 {
				t.Fatalf("detect %v Hz: got %v Hz, want within 3 Hz", tt.frequency, result.Frequency)
			}
			if result.Confidence <= 0 || result.Confidence > 1 {
				t.Errorf("confidence = %v, want in (0, 1]", result.Confidence)
			}
		})
	}
}

func TestSpectralSilence(t *testing.T) {
	detector, err := NewSpectral(testSampleRate)
	if err != nil {
		t.Fatalf("NewSpectral: %v", err)
	}

	result := detector.Detect(testutil.Silence(testBlockSize))
	if result.Valid || result.Frequency != 0 {
		t.Fatalf("silence reported %+v, want invalid zero result", result)
	}
}

func TestSpectralNoiseIsLowConfidence(t *testing.T) {
	detector, err := NewSpectral(testSampleRate)
	if err != nil {
		t.Fatalf("NewSpectral: %v", err)
	}

	// White noise spreads energy across the whole band, so no single bin
	// can clear the confidence threshold.
	result := detector.Detect(testutil.Noise(42, 0.8, testBlockSize))
	if result.Valid {
		t.Fatalf("noise reported valid: %+v", result)
	}
	if result.Frequency != 0 {
		t.Errorf("noise frequency = %v, want 0", result.Frequency)
	}
}

func TestSpectralDegenerateBlocks(t *testing.T) {
	detector, err := NewSpectral(testSampleRate)
	if err != nil {
		t.Fatalf("NewSpectral: %v", err)
	}

	// Length 16 leaves no analysis bins between DC and Nyquist for the
	// default band; length 0 and 1 cannot be transformed at all.
	for _, length := range []int{0, 1, 16} {
		result := detector.Detect(testutil.Sine(440, testSampleRate, 0.8, length))
		if result.Valid || result.Frequency != 0 {
			t.Errorf("length %d: got %+v, want invalid zero result", length, result)
		}
	}
}

func TestSpectralDoesNotMutateInput(t *testing.T) {
	detector, err := NewSpectral(testSampleRate)
	if err != nil {
		t.Fatalf("NewSpectral: %v", err)
	}

	block := testutil.Sine(330, testSampleRate, 0.8, testBlockSize)
	original := make([]float64, len(block))
	copy(original, block)

	detector.Detect(block)

	for i := range block {
		if block[i] != original[i] {
			t.Fatalf("input mutated at sample %d", i)
		}
	}
}

func TestNewSpectralValidation(t *testing.T) {
	if _, err := NewSpectral(0); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := NewSpectral(44100, WithFrequencyRange(500, 100)); err == nil {
		t.Error("expected error for inverted band")
	}
	if _, err := NewSpectral(44100, WithConfidenceThreshold(2)); err == nil {
		t.Error("expected error for out-of-range threshold")
	}
}
