// Package notes maps between frequencies and the notes of the
// twelve-tone equal-tempered scale, referenced to A4 = 440 Hz.
package notes

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	// A4Frequency is the reference pitch in Hz.
	A4Frequency = 440.0

	// NoPitchLabel is returned by FrequencyToNote for non-positive input.
	NoPitchLabel = "---"
)

// Errors
var (
	ErrUnknownPitchClass = errors.New("unknown pitch class")
	ErrBadNote           = errors.New("malformed note label")
)

// All pitch-class symbols in chromatic order, starting at C.
var pitchClasses = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var pitchClassIndex = func() map[string]int {
	m := make(map[string]int, len(pitchClasses))
	for i, name := range pitchClasses {
		m[name] = i
	}
	return m
}()

// Note is a pitch class in a specific octave. Frequency is always derived
// from the pitch class and octave, never set independently.
type Note struct {
	PitchClass string
	Octave     int
	Frequency  float64
}

// String returns the note label, e.g. "E2" or "F#3".
func (n Note) String() string {
	return fmt.Sprintf("%s%d", n.PitchClass, n.Octave)
}

// FrequencyToNote converts a frequency to the nearest note label and the
// deviation from it in cents. Cents fall in [-50, 50) for any positive
// frequency; non-positive frequencies return NoPitchLabel and 0 cents.
func FrequencyToNote(frequency float64) (label string, cents float64) {
	if frequency <= 0 {
		return NoPitchLabel, 0
	}

	// Semitone distance from A4, rounded half away from zero.
	semitones := 12 * math.Log2(frequency/A4Frequency)
	nearest := math.Round(semitones)

	cents = 100 * (semitones - nearest)

	// A4 sits 9 semitones above C4.
	index := int(math.Mod(nearest+9, 12))
	if index < 0 {
		index += 12
	}
	octave := 4 + int(math.Floor((nearest+9)/12))

	return fmt.Sprintf("%s%d", pitchClasses[index], octave), cents
}

// NoteToFrequency returns the equal-tempered frequency of a pitch class in
// the given octave. Unknown pitch classes fail with ErrUnknownPitchClass.
func NoteToFrequency(pitchClass string, octave int) (float64, error) {
	index, ok := pitchClassIndex[pitchClass]
	if !ok {
		return 0, fmt.Errorf("%q: %w", pitchClass, ErrUnknownPitchClass)
	}

	semitones := (octave-4)*12 + (index - 9)
	return A4Frequency * math.Pow(2, float64(semitones)/12), nil
}

// Parse converts a note label such as "E2" or "F#3" into a Note. The final
// character is the octave digit, everything before it the pitch class.
// Pitch classes are matched case-insensitively.
func Parse(label string) (Note, error) {
	label = strings.TrimSpace(label)
	if len(label) < 2 {
		return Note{}, fmt.Errorf("%q: %w", label, ErrBadNote)
	}

	last := label[len(label)-1]
	if last < '0' || last > '9' {
		return Note{}, fmt.Errorf("%q: %w", label, ErrBadNote)
	}
	octave := int(last - '0')

	pitchClass := strings.ToUpper(label[:len(label)-1])
	frequency, err := NoteToFrequency(pitchClass, octave)
	if err != nil {
		return Note{}, err
	}

	return Note{PitchClass: pitchClass, Octave: octave, Frequency: frequency}, nil
}

// NotesInRange returns every note of octaves 0 through 8 whose frequency
// lies in [minFreq, maxFreq], sorted ascending by frequency.
func NotesInRange(minFreq, maxFreq float64) []Note {
	var result []Note
	for octave := 0; octave <= 8; octave++ {
		for _, pitchClass := range pitchClasses {
			frequency, err := NoteToFrequency(pitchClass, octave)
			if err != nil {
				// Pitch classes come from the fixed table; cannot fail.
				continue
			}
			if frequency >= minFreq && frequency <= maxFreq {
				result = append(result, Note{
					PitchClass: pitchClass,
					Octave:     octave,
					Frequency:  frequency,
				})
			}
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Frequency < result[j].Frequency
	})
	return result
}
