package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/strumlab/tunetui/internal/instrument"
	"github.com/strumlab/tunetui/internal/notes"
	"github.com/strumlab/tunetui/internal/pitch"
	"github.com/strumlab/tunetui/internal/tuner"
)

const (
	// A new label must arrive this many times in a row before the headline
	// note switches, so a single misread block cannot flip the display.
	noteStabilityUpdates = 2

	// How long the last note stays on screen once detections stop.
	noteHoldDuration = 500 * time.Millisecond

	// Staleness check cadence.
	tickInterval = 100 * time.Millisecond
)

// UpdateMsg carries one engine tick into the event loop.
type UpdateMsg tuner.Update

// ClearMsg drops the current note and levels immediately.
type ClearMsg struct{}

// tickMsg drives the staleness sweep.
type tickMsg time.Time

// Model holds the tuner display state.
type Model struct {
	registry *instrument.Registry
	current  instrument.Instrument
	preset   int

	result pitch.Result
	label  string
	cents  float64
	rms    float64
	db     float64

	candidateLabel string
	candidateRuns  int
	lastDetection  time.Time

	showHelp bool
	width    int
}

// NewModel creates the display for one selected preset.
func NewModel(registry *instrument.Registry, selected string) (Model, error) {
	if registry == nil {
		return Model{}, fmt.Errorf("ui: registry is required")
	}

	current, err := registry.Lookup(selected)
	if err != nil {
		return Model{}, fmt.Errorf("ui: %w", err)
	}

	preset := 0
	for i, name := range registry.Names() {
		if name == current.Name {
			preset = i
			break
		}
	}

	return Model{
		registry: registry,
		current:  current,
		preset:   preset,
		label:    notes.NoPitchLabel,
	}, nil
}

// Init schedules the first staleness tick.
func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update advances the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.cyclePreset(1)
		case "shift+tab":
			m.cyclePreset(-1)
		case "?":
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		// A note with no fresh detection behind it fades out.
		if m.label != notes.NoPitchLabel && time.Since(m.lastDetection) > noteHoldDuration {
			m.clearNote()
		}
		return m, tick()

	case UpdateMsg:
		m.applyUpdate(tuner.Update(msg))

	case ClearMsg:
		m.clearNote()
		m.rms = 0
		m.db = -100
	}

	return m, nil
}

// applyUpdate folds one engine tick into the display state.
func (m *Model) applyUpdate(u tuner.Update) {
	m.rms = u.RMS
	m.db = u.DB

	// Invalid detections keep the held note; the tick sweep clears it once
	// it goes stale.
	if !u.Result.Valid {
		return
	}

	label, cents := notes.FrequencyToNote(u.Result.Frequency)

	if label == m.label {
		// Same headline note: refresh the gauge continuously.
		m.result = u.Result
		m.cents = cents
		m.lastDetection = time.Now()
		m.candidateLabel = ""
		m.candidateRuns = 0
		return
	}

	if label == m.candidateLabel {
		m.candidateRuns++
	} else {
		m.candidateLabel = label
		m.candidateRuns = 1
	}

	if m.candidateRuns >= noteStabilityUpdates || m.label == notes.NoPitchLabel {
		m.label = label
		m.result = u.Result
		m.cents = cents
		m.lastDetection = time.Now()
		m.candidateLabel = ""
		m.candidateRuns = 0
	}
}

func (m *Model) clearNote() {
	m.label = notes.NoPitchLabel
	m.result = pitch.Result{}
	m.cents = 0
	m.candidateLabel = ""
	m.candidateRuns = 0
}

func (m *Model) cyclePreset(delta int) {
	names := m.registry.Names()
	if len(names) == 0 {
		return
	}

	m.preset = (m.preset + delta + len(names)) % len(names)
	current, err := m.registry.Lookup(names[m.preset])
	if err != nil {
		return
	}
	m.current = current
}
