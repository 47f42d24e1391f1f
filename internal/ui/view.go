package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/strumlab/tunetui/internal/notes"
)

const (
	gaugeWidth = 40
	levelWidth = 20

	// Cents tolerance for the headline gauge status.
	inTuneCents = 2.0

	// Cents tolerance per string row, measured against that string's target.
	stringInTuneCents = 3.0

	// A detection further than this from every string is ignored by the
	// strings panel.
	stringMatchWindow = 500.0
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	faintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	inTuneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FF00"))

	offPitchStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFA500"))

	// Note colors
	noteColors = map[string]string{
		"C": "#E8D6B0", // Beige
		"D": "#A020F0", // Purple
		"E": "#FFFF00", // Yellow
		"F": "#FFA500", // Orange
		"G": "#00FF00", // Green
		"A": "#FF0000", // Red
		"B": "#0000FF", // Blue
	}
)

// noteStyle returns the accent style for a note label. Sharps take the
// color of their base letter.
func noteStyle(label string) lipgloss.Style {
	color, ok := noteColors[label[:1]]
	if !ok {
		return infoStyle
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#1A1A1A")).
		Background(lipgloss.Color(color)).
		Padding(0, 1)
}

// View renders the tuner display.
func (m Model) View() string {
	s := titleStyle.Render("tunetui")
	s += "  " + infoStyle.Render(m.current.Name)
	s += "\n"
	if m.width > 0 {
		rule := m.width
		if rule > 64 {
			rule = 64
		}
		s += faintStyle.Render(strings.Repeat("─", rule)) + "\n"
	}
	s += "\n"

	s += m.renderGauge()
	s += "\n\n"

	s += m.renderNote()
	s += "\n\n"

	s += m.renderStrings()
	s += "\n\n"

	s += m.renderLevel()
	s += "\n\n"

	if m.showHelp {
		s += m.renderHelp()
	} else {
		s += faintStyle.Render("tab: instrument  ?: help  q: quit")
	}

	return s
}

// renderGauge draws the cents rail with the tuning marker and status.
func (m Model) renderGauge() string {
	rail := []rune(strings.Repeat("─", gaugeWidth))
	rail[gaugeWidth/2] = '┼'

	if !m.result.Valid {
		return "♭ " + faintStyle.Render(string(rail)) + " ♯\n" +
			faintStyle.Render("NO SIGNAL")
	}

	pos := int((m.cents + 50) / 100 * gaugeWidth)
	if pos < 0 {
		pos = 0
	} else if pos > gaugeWidth-1 {
		pos = gaugeWidth - 1
	}
	rail[pos] = '◆'

	var status string
	switch {
	case m.cents > inTuneCents:
		status = offPitchStyle.Render("♯ SHARP")
	case m.cents < -inTuneCents:
		status = offPitchStyle.Render("♭ FLAT")
	default:
		status = inTuneStyle.Render("✓ IN TUNE")
	}

	return "♭ " + string(rail) + " ♯\n" + status
}

// renderNote draws the headline note with frequency, cents and confidence.
func (m Model) renderNote() string {
	if m.label == notes.NoPitchLabel {
		return infoStyle.Render("Listening for a note...")
	}

	s := noteStyle(m.label).Render(m.label)
	s += "  " + infoStyle.Render(fmt.Sprintf("%.2f Hz  %+.2f cents  confidence %.2f",
		m.result.Frequency, m.cents, m.result.Confidence))
	return s
}

// renderStrings draws one row per string of the selected instrument. The
// string closest to a valid detection shows the live frequency and the
// direction to turn.
func (m Model) renderStrings() string {
	closest := -1
	if m.result.Valid {
		bestDiff := stringMatchWindow
		for i, str := range m.current.Strings {
			if diff := math.Abs(m.result.Frequency - str.Frequency); diff < bestDiff {
				bestDiff = diff
				closest = i
			}
		}
	}

	var b strings.Builder
	for i, str := range m.current.Strings {
		row := fmt.Sprintf("%2d  %-4s %8.2f Hz", i+1, str.String(), str.Frequency)
		if i != closest {
			b.WriteString(infoStyle.Render(row))
			b.WriteString("\n")
			continue
		}

		deviation := 1200 * math.Log2(m.result.Frequency/str.Frequency)
		var status string
		switch {
		case math.Abs(deviation) < stringInTuneCents:
			status = inTuneStyle.Render("✓ IN TUNE")
		case deviation < 0:
			status = offPitchStyle.Render("↑ tune up")
		default:
			status = offPitchStyle.Render("↓ tune down")
		}

		row += fmt.Sprintf("   %8.2f Hz  ", m.result.Frequency)
		b.WriteString(infoStyle.Render(row))
		b.WriteString(status)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderLevel draws the input level bar and dB readout.
func (m Model) renderLevel() string {
	filled := int(m.rms * levelWidth)
	if filled < 0 {
		filled = 0
	} else if filled > levelWidth {
		filled = levelWidth
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", levelWidth-filled)
	return faintStyle.Render(fmt.Sprintf("LEVEL %s %6.1f dB", bar, m.db))
}

func (m Model) renderHelp() string {
	lines := []string{
		"q, ctrl+c      quit",
		"tab            next instrument",
		"shift+tab      previous instrument",
		"?              toggle this help",
	}
	return faintStyle.Render(strings.Join(lines, "\n"))
}
