package audio

// Buffer holds one block of mono samples and the rate they were captured at.
type Buffer struct {
	Samples    []float64
	SampleRate int
}

// Clone returns a deep copy so callers can hold a block across hand-offs
// without racing the capture callback.
func (b *Buffer) Clone() *Buffer {
	if b == nil {
		return nil
	}
	samples := make([]float64, len(b.Samples))
	copy(samples, b.Samples)
	return &Buffer{Samples: samples, SampleRate: b.SampleRate}
}

// Capturer defines the interface for audio capture sources.
type Capturer interface {
	// Start begins audio capture.
	Start() error

	// Stop ends audio capture.
	Stop() error

	// Buffer returns a copy of the most recent block.
	Buffer() (*Buffer, error)

	// Capturing reports whether capture is running.
	Capturing() bool
}
