// Package tuner runs the capture-detect loop behind the tuner display:
// poll the capturer on a fixed cadence, gate silent blocks on their level,
// and forward detector output without ever stalling capture.
package tuner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/strumlab/tunetui/internal/audio"
	"github.com/strumlab/tunetui/internal/pitch"
)

const (
	// DefaultInterval is the polling cadence.
	DefaultInterval = 50 * time.Millisecond

	// DefaultSilenceDB gates blocks quieter than this; the detector only
	// runs on blocks above it.
	DefaultSilenceDB = -30.0
)

// Update is one engine tick: the detection outcome plus the block's level.
// Gated (silent) ticks carry an invalid Result with the measured level.
type Update struct {
	Result pitch.Result
	RMS    float64
	DB     float64
}

// Engine polls a Capturer and forwards detections on a channel.
type Engine struct {
	capturer  audio.Capturer
	detector  pitch.Detector
	interval  time.Duration
	silenceDB float64
	logger    *log.Logger
	updates   chan Update
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterval sets the polling cadence.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) { e.interval = d }
}

// WithSilenceThreshold sets the dB level below which blocks are gated.
func WithSilenceThreshold(db float64) Option {
	return func(e *Engine) { e.silenceDB = db }
}

// WithLogger sets the engine's logger. A nil logger discards output.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine over the given capturer and detector.
func NewEngine(c audio.Capturer, d pitch.Detector, opts ...Option) (*Engine, error) {
	if c == nil {
		return nil, errors.New("tuner: capturer is required")
	}
	if d == nil {
		return nil, errors.New("tuner: detector is required")
	}

	e := &Engine{
		capturer:  c,
		detector:  d,
		interval:  DefaultInterval,
		silenceDB: DefaultSilenceDB,
		updates:   make(chan Update, 8),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.interval <= 0 {
		return nil, fmt.Errorf("tuner: interval %v, want > 0", e.interval)
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e, nil
}

// Updates returns the channel of engine ticks. It is closed when Run
// returns.
func (e *Engine) Updates() <-chan Update {
	return e.updates
}

// Run starts the capturer and polls it until ctx is canceled, then stops
// the capturer and closes the updates channel. Run may be called once.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.capturer.Start(); err != nil {
		close(e.updates)
		return fmt.Errorf("start capture: %w", err)
	}
	e.logger.Info("tuner engine started",
		"interval", e.interval, "silence_db", e.silenceDB)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := e.capturer.Stop(); err != nil {
				e.logger.Error("stop capture", "err", err)
			}
			close(e.updates)
			e.logger.Info("tuner engine stopped")
			return nil
		case <-ticker.C:
			e.poll()
		}
	}
}

// poll reads one block, gates it on level and forwards the outcome. A slow
// consumer drops ticks rather than stalling the loop.
func (e *Engine) poll() {
	buf, err := e.capturer.Buffer()
	if err != nil {
		// Transient read failures are retried on the next tick.
		e.logger.Error("read capture buffer", "err", err)
		return
	}

	rms, db := audio.Level(buf.Samples)
	update := Update{RMS: rms, DB: db}
	if db >= e.silenceDB {
		update.Result = e.detector.Detect(buf.Samples)
	}

	select {
	case e.updates <- update:
	default:
	}
}
