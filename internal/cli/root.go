// Package cli wires the commands behind the tunetui binary.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/strumlab/tunetui/internal/audio"
	"github.com/strumlab/tunetui/internal/instrument"
	"github.com/strumlab/tunetui/internal/pitch"
	"github.com/strumlab/tunetui/internal/tuner"
	"github.com/strumlab/tunetui/internal/ui"
)

const (
	defaultSampleRate = 44100
	defaultBlockSize  = 4096
	defaultInstrument = "Guitar (Standard)"
)

// Execute runs the command tree.
func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	instrument string
	detector   string
	sampleRate int
	blockSize  int
	gain       float64
	debugFile  string
}

func newRootCmd() *cobra.Command {
	opts := rootOptions{}

	cmd := &cobra.Command{
		Use:   "tunetui",
		Short: "Terminal instrument tuner",
		Long: "tunetui listens on the default input device, estimates the pitch of\n" +
			"what you play and shows how far it sits from the nearest note and from\n" +
			"the strings of the selected instrument.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTuner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.instrument, "instrument", "i", defaultInstrument, "tuning preset to display")
	cmd.Flags().StringVarP(&opts.detector, "detector", "d", "yin", "pitch detector: yin or spectral")
	cmd.Flags().IntVar(&opts.sampleRate, "sample-rate", defaultSampleRate, "capture sample rate in Hz")
	cmd.Flags().IntVar(&opts.blockSize, "block", defaultBlockSize, "samples per analysis block")
	cmd.Flags().Float64Var(&opts.gain, "gain", audio.DefaultGain, "input amplification factor")
	cmd.Flags().StringVar(&opts.debugFile, "debug", "", "write a debug log to this file")

	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newNotesCmd())
	cmd.AddCommand(newInstrumentsCmd())

	return cmd
}

// runTuner assembles capturer, detector, engine and TUI, and bridges engine
// updates into the bubbletea program.
func runTuner(opts rootOptions) error {
	logger, closeLog, err := newLogger(opts.debugFile)
	if err != nil {
		return err
	}
	defer closeLog()

	model, err := ui.NewModel(instrument.NewRegistry(), opts.instrument)
	if err != nil {
		return err
	}

	detector, err := newDetector(opts.detector, opts.sampleRate)
	if err != nil {
		return err
	}

	capturer, err := audio.NewPortAudioCapturer(opts.blockSize, opts.sampleRate, 1, logger)
	if err != nil {
		return err
	}
	capturer.SetGain(opts.gain)

	engine, err := tuner.NewEngine(capturer, detector, tuner.WithLogger(logger))
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(ctx)
	})
	g.Go(func() error {
		for u := range engine.Updates() {
			p.Send(ui.UpdateMsg(u))
		}
		p.Send(ui.ClearMsg{})
		return nil
	})

	_, runErr := p.Run()
	cancel()

	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// newLogger returns a debug-level file logger when path is set, otherwise a
// silent one. The returned func closes the log file.
func newLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard), func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
	})
	return logger, func() { f.Close() }, nil
}

// newDetector builds the selected pitch detector for the given rate.
func newDetector(kind string, sampleRate int) (pitch.Detector, error) {
	switch strings.ToLower(kind) {
	case "yin":
		return pitch.NewYin(sampleRate)
	case "spectral":
		return pitch.NewSpectral(sampleRate)
	default:
		return nil, fmt.Errorf("unknown detector %q, want yin or spectral", kind)
	}
}
