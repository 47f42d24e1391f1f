package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strumlab/tunetui/internal/audio"
	"github.com/strumlab/tunetui/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func writeToneWAV(t *testing.T, frequency float64, blocks int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	buf := &audio.Buffer{
		Samples:    testutil.Sine(frequency, 44100, 0.8, blocks*defaultBlockSize),
		SampleRate: 44100,
	}
	if err := audio.WriteWAV(path, buf); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	return path
}

func TestRootHelpListsCommands(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("--help: %v", err)
	}
	for _, want := range []string{"analyze", "notes", "instruments", "--instrument", "--detector"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeToneWAV(t, 440, 4)

	out, err := execute(t, "analyze", path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for _, want := range []string{"TIME", "A4", "Dominant note: A4 (4 of 4 blocks)"} {
		if !strings.Contains(out, want) {
			t.Errorf("analyze output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzeCommandSpectral(t *testing.T) {
	path := writeToneWAV(t, 440, 2)

	out, err := execute(t, "analyze", path, "--detector", "spectral")
	if err != nil {
		t.Fatalf("analyze --detector spectral: %v", err)
	}
	if !strings.Contains(out, "A4") {
		t.Errorf("spectral analyze output missing A4:\n%s", out)
	}
}

func TestAnalyzeCommandSilence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "silence.wav")
	buf := &audio.Buffer{
		Samples:    testutil.Silence(2 * defaultBlockSize),
		SampleRate: 44100,
	}
	if err := audio.WriteWAV(path, buf); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	out, err := execute(t, "analyze", path)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "No pitch detected.") {
		t.Errorf("silent analyze output missing summary:\n%s", out)
	}
}

func TestAnalyzeCommandRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(path, []byte("not audio"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := execute(t, "analyze", path)
	if !errors.Is(err, audio.ErrNotPCM) {
		t.Fatalf("analyze error = %v, want ErrNotPCM", err)
	}
}

func TestAnalyzeCommandMissingFile(t *testing.T) {
	if _, err := execute(t, "analyze", filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAnalyzeCommandUnknownDetector(t *testing.T) {
	path := writeToneWAV(t, 440, 1)

	_, err := execute(t, "analyze", path, "--detector", "parabolic")
	if err == nil || !strings.Contains(err.Error(), "unknown detector") {
		t.Fatalf("error = %v, want unknown detector", err)
	}
}

func TestAnalyzeCommandShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.wav")
	buf := &audio.Buffer{
		Samples:    testutil.Sine(440, 44100, 0.8, 512),
		SampleRate: 44100,
	}
	if err := audio.WriteWAV(path, buf); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	if _, err := execute(t, "analyze", path); err == nil {
		t.Fatal("expected error for file shorter than one block")
	}
}

func TestNotesCommand(t *testing.T) {
	out, err := execute(t, "notes", "--min", "80", "--max", "1000")
	if err != nil {
		t.Fatalf("notes: %v", err)
	}
	for _, want := range []string{"E2", "82.41 Hz", "B5", "987.77 Hz"} {
		if !strings.Contains(out, want) {
			t.Errorf("notes output missing %q", want)
		}
	}
	if strings.Contains(out, "E6") {
		t.Error("notes output contains out-of-band E6")
	}
}

func TestNotesCommandEmptyBand(t *testing.T) {
	if _, err := execute(t, "notes", "--min", "20000", "--max", "30000"); err == nil {
		t.Fatal("expected error for empty band")
	}
}

func TestInstrumentsCommand(t *testing.T) {
	out, err := execute(t, "instruments")
	if err != nil {
		t.Fatalf("instruments: %v", err)
	}
	for _, want := range []string{
		"Guitar (Standard)", "E2 A2 D3 G3 B3 E4",
		"Bass (5-String)", "B0 E1 A1 D2 G2",
		"Violin", "G3 D4 A4 E5",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("instruments output missing %q", want)
		}
	}
}

func TestSplitBlocks(t *testing.T) {
	tests := []struct {
		name      string
		samples   int
		blockSize int
		want      int
	}{
		{"two full blocks plus remainder", 10000, 4096, 2},
		{"exact fit", 4096, 4096, 1},
		{"too short", 4095, 4096, 0},
		{"empty", 0, 4096, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocks := splitBlocks(make([]float64, tt.samples), tt.blockSize)
			if len(blocks) != tt.want {
				t.Fatalf("got %d blocks, want %d", len(blocks), tt.want)
			}
			for i, b := range blocks {
				if len(b) != tt.blockSize {
					t.Errorf("block %d has %d samples, want %d", i, len(b), tt.blockSize)
				}
			}
		})
	}
}

func TestNewDetectorSelection(t *testing.T) {
	if _, err := newDetector("yin", 44100); err != nil {
		t.Errorf("yin: %v", err)
	}
	if _, err := newDetector("SPECTRAL", 44100); err != nil {
		t.Errorf("spectral (case-insensitive): %v", err)
	}
	if _, err := newDetector("autocorr", 44100); err == nil {
		t.Error("expected error for unknown detector")
	}
}
