package tuner

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/strumlab/tunetui/internal/audio"
	"github.com/strumlab/tunetui/internal/pitch"
	"github.com/strumlab/tunetui/internal/testutil"
)

// countingDetector records how many blocks reached it.
type countingDetector struct {
	calls int32
}

func (d *countingDetector) Detect(samples []float64) pitch.Result {
	atomic.AddInt32(&d.calls, 1)
	return pitch.Result{}
}

func newTestYin(t *testing.T) *pitch.Yin {
	t.Helper()
	detector, err := pitch.NewYin(44100)
	if err != nil {
		t.Fatalf("NewYin: %v", err)
	}
	return detector
}

func TestEngineEmitsDetections(t *testing.T) {
	capturer := audio.NewMemoryCapturer(44100, testutil.Sine(440, 44100, 0.8, 4096))
	engine, err := NewEngine(capturer, newTestYin(t), WithInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	var got Update
	for !got.Result.Valid {
		select {
		case got = <-engine.Updates():
		case <-deadline:
			t.Fatal("no valid update within deadline")
		}
	}
	cancel()

	if math.Abs(got.Result.Frequency-440) > 1 {
		t.Errorf("frequency = %v, want near 440", got.Result.Frequency)
	}
	if got.RMS <= 0 {
		t.Errorf("rms = %v, want > 0", got.RMS)
	}
	if got.DB <= DefaultSilenceDB {
		t.Errorf("db = %v, want above the silence gate", got.DB)
	}

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestEngineGatesSilence(t *testing.T) {
	capturer := audio.NewMemoryCapturer(44100, testutil.Silence(4096))
	detector := &countingDetector{}
	engine, err := NewEngine(capturer, detector, WithInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for i := 0; i < 3; i++ {
		select {
		case update := <-engine.Updates():
			if update.Result.Valid {
				t.Errorf("gated update %d reported valid result %+v", i, update.Result)
			}
			if update.DB != -100 {
				t.Errorf("gated update %d db = %v, want -100", i, update.DB)
			}
		case <-deadline:
			t.Fatal("no updates within deadline")
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}

	if calls := atomic.LoadInt32(&detector.calls); calls != 0 {
		t.Errorf("detector ran %d times on silent blocks", calls)
	}
}

func TestEngineCancellationClosesUpdates(t *testing.T) {
	capturer := audio.NewMemoryCapturer(44100, testutil.Sine(440, 44100, 0.8, 4096))
	engine, err := NewEngine(capturer, newTestYin(t), WithInterval(time.Millisecond))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	// Consume nothing: the buffered channel fills and the engine must keep
	// ticking (drop-on-full) rather than stall.
	time.Sleep(50 * time.Millisecond)
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if capturer.Capturing() {
		t.Error("capturer still running after Run returned")
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-engine.Updates():
			if !ok {
				return // channel closed as promised
			}
		case <-deadline:
			t.Fatal("updates channel not closed after cancellation")
		}
	}
}

func TestEngineStartFailure(t *testing.T) {
	capturer := audio.NewMemoryCapturer(44100, testutil.Silence(64))
	if err := capturer.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// The capturer is already running, so the engine's own Start must fail
	// and the updates channel must still close.
	engine, err := NewEngine(capturer, &countingDetector{})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if err := engine.Run(context.Background()); err == nil {
		t.Fatal("Run succeeded with a busy capturer")
	}
	if _, ok := <-engine.Updates(); ok {
		t.Error("updates channel left open after failed start")
	}
}

func TestNewEngineValidation(t *testing.T) {
	capturer := audio.NewMemoryCapturer(44100, testutil.Silence(64))
	detector := &countingDetector{}

	if _, err := NewEngine(nil, detector); err == nil {
		t.Error("expected error for nil capturer")
	}
	if _, err := NewEngine(capturer, nil); err == nil {
		t.Error("expected error for nil detector")
	}
	if _, err := NewEngine(capturer, detector, WithInterval(0)); err == nil {
		t.Error("expected error for zero interval")
	}
}
