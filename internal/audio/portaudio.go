package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

// DefaultGain is the input amplification applied to captured samples.
// Instrument pickups and laptop microphones are quiet; without it most
// blocks fall under the silence gate.
const DefaultGain = 8.0

// PortAudioCapturer captures mono blocks from the default input device.
type PortAudioCapturer struct {
	capturing bool
	stream    *portaudio.Stream
	buffer    *Buffer
	blockSize int
	channels  int
	mu        sync.Mutex
	gain      float64
	logger    *log.Logger
}

// NewPortAudioCapturer creates a capturer reading blockSize frames per
// callback. Multi-channel input is averaged down to mono. A nil logger
// discards output.
func NewPortAudioCapturer(blockSize, sampleRate, channels int, logger *log.Logger) (*PortAudioCapturer, error) {
	if blockSize <= 0 {
		return nil, fmt.Errorf("audio: block size %d, want > 0", blockSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("audio: sample rate %d, want > 0", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("audio: channel count %d, want > 0", channels)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &PortAudioCapturer{
		buffer: &Buffer{
			Samples:    make([]float64, 0, blockSize),
			SampleRate: sampleRate,
		},
		blockSize: blockSize,
		channels:  channels,
		gain:      DefaultGain,
		logger:    logger,
	}, nil
}

// Start initializes PortAudio and opens the default input stream.
func (c *PortAudioCapturer) Start() error {
	if c.capturing {
		return errors.New("audio capture already started")
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(
		c.channels,
		0, // capture only, no output channels
		float64(c.buffer.SampleRate),
		c.blockSize,
		c.processAudio,
	)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("open input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("start input stream: %w", err)
	}

	c.stream = stream
	c.capturing = true
	c.logger.Debug("audio capture started",
		"rate", c.buffer.SampleRate, "block", c.blockSize, "channels", c.channels)
	return nil
}

// Stop closes the stream and terminates PortAudio.
func (c *PortAudioCapturer) Stop() error {
	if !c.capturing {
		return errors.New("audio capture not started")
	}

	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("stop input stream: %w", err)
	}
	if err := c.stream.Close(); err != nil {
		return fmt.Errorf("close input stream: %w", err)
	}
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("terminate portaudio: %w", err)
	}

	c.capturing = false
	c.logger.Debug("audio capture stopped")
	return nil
}

// processAudio is the stream callback. It averages interleaved channels to
// mono, applies the gain and keeps the latest block under the mutex.
func (c *PortAudioCapturer) processAudio(in, _ []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	frames := len(in) / c.channels
	if cap(c.buffer.Samples) < frames {
		c.buffer.Samples = make([]float64, frames)
	}
	c.buffer.Samples = c.buffer.Samples[:frames]

	for i := 0; i < frames; i++ {
		sum := 0.0
		for ch := 0; ch < c.channels; ch++ {
			sum += float64(in[i*c.channels+ch])
		}
		sample := (sum / float64(c.channels)) * c.gain

		// Gain can push quiet-room noise past full scale; clamp so the
		// detectors always see [-1, 1].
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		c.buffer.Samples[i] = sample
	}
}

// Buffer returns a copy of the most recent block.
func (c *PortAudioCapturer) Buffer() (*Buffer, error) {
	if !c.capturing {
		return nil, errors.New("audio capture not started")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer.Clone(), nil
}

// Capturing reports whether capture is running.
func (c *PortAudioCapturer) Capturing() bool {
	return c.capturing
}

// SetGain sets the input amplification factor, floored at 0.1.
func (c *PortAudioCapturer) SetGain(factor float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if factor < 0.1 {
		factor = 0.1
	}
	c.gain = factor
}
