package audio

import (
	"errors"
	"sync"
)

// MemoryCapturer feeds preloaded blocks in order, cycling back to the first
// once exhausted. It backs offline analysis and engine tests with a
// deterministic source behind the same Capturer seam as the microphone.
type MemoryCapturer struct {
	mu         sync.Mutex
	capturing  bool
	blocks     [][]float64
	sampleRate int
	next       int
}

// NewMemoryCapturer creates a capturer over the given blocks.
func NewMemoryCapturer(sampleRate int, blocks ...[]float64) *MemoryCapturer {
	return &MemoryCapturer{
		blocks:     blocks,
		sampleRate: sampleRate,
	}
}

// Start begins playback from the first block.
func (c *MemoryCapturer) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capturing {
		return errors.New("audio capture already started")
	}
	c.capturing = true
	c.next = 0
	return nil
}

// Stop ends playback.
func (c *MemoryCapturer) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.capturing {
		return errors.New("audio capture not started")
	}
	c.capturing = false
	return nil
}

// Buffer returns a copy of the current block and advances to the next.
func (c *MemoryCapturer) Buffer() (*Buffer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.capturing {
		return nil, errors.New("audio capture not started")
	}
	if len(c.blocks) == 0 {
		return nil, errors.New("memory capturer has no blocks")
	}

	block := c.blocks[c.next]
	c.next = (c.next + 1) % len(c.blocks)

	buf := &Buffer{Samples: block, SampleRate: c.sampleRate}
	return buf.Clone(), nil
}

// Capturing reports whether playback is running.
func (c *MemoryCapturer) Capturing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.capturing
}
