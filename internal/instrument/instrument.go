// Package instrument holds named tuning presets. Each preset resolves its
// target notes through the notes package, so string frequencies are always
// derived from the equal-tempered table rather than entered by hand.
package instrument

import (
	"errors"
	"fmt"
	"strings"

	"github.com/strumlab/tunetui/internal/notes"
)

// Errors
var (
	ErrUnknown   = errors.New("unknown instrument")
	ErrDuplicate = errors.New("instrument already registered")
)

// Instrument is a named ordered list of target notes. Strings follow the
// physical string order of the instrument, not pitch order.
type Instrument struct {
	Name    string
	Strings []notes.Note
}

// Registry maps instrument names to presets. Lookup is case-insensitive;
// Names preserves registration order.
type Registry struct {
	byName map[string]Instrument
	names  []string
}

var builtinPresets = []struct {
	name   string
	tuning []string
}{
	{"Guitar (Standard)", []string{"E2", "A2", "D3", "G3", "B3", "E4"}},
	{"Guitar (Drop D)", []string{"D2", "A2", "D3", "G3", "B3", "E4"}},
	{"Guitar (Open G)", []string{"D2", "G2", "D3", "G3", "B3", "D4"}},
	{"Bass (Standard)", []string{"E1", "A1", "D2", "G2"}},
	{"Bass (5-String)", []string{"B0", "E1", "A1", "D2", "G2"}},
	{"Ukulele (Soprano)", []string{"G4", "C4", "E4", "A4"}},
	{"Banjo (5-String)", []string{"D2", "B2", "F#3", "D3", "D4"}},
	{"Mandolin", []string{"G3", "D4", "A4", "E5"}},
	{"Violin", []string{"G3", "D4", "A4", "E5"}},
}

// NewRegistry returns a registry populated with the builtin presets.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]Instrument)}
	for _, preset := range builtinPresets {
		if err := r.Register(preset.name, preset.tuning); err != nil {
			// The builtin table is static; failing to register it is a bug.
			panic(fmt.Sprintf("instrument: builtin preset %q: %v", preset.name, err))
		}
	}
	return r
}

// Register adds a preset under the given name. The tuning is a list of note
// labels in physical string order, e.g. ["E2", "A2", "D3", "G3", "B3", "E4"].
func (r *Registry) Register(name string, tuning []string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("instrument name must not be empty")
	}
	if len(tuning) == 0 {
		return fmt.Errorf("instrument %q: tuning must not be empty", name)
	}

	key := strings.ToLower(name)
	if _, exists := r.byName[key]; exists {
		return fmt.Errorf("%q: %w", name, ErrDuplicate)
	}

	strs := make([]notes.Note, 0, len(tuning))
	for _, label := range tuning {
		note, err := notes.Parse(label)
		if err != nil {
			return fmt.Errorf("instrument %q: %w", name, err)
		}
		strs = append(strs, note)
	}

	r.byName[key] = Instrument{Name: name, Strings: strs}
	r.names = append(r.names, name)
	return nil
}

// Lookup finds a preset by name, matching case-insensitively. The returned
// Instrument is a copy; mutating it does not affect the registry.
func (r *Registry) Lookup(name string) (Instrument, error) {
	inst, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return Instrument{}, fmt.Errorf("%q: %w", name, ErrUnknown)
	}

	strs := make([]notes.Note, len(inst.Strings))
	copy(strs, inst.Strings)
	return Instrument{Name: inst.Name, Strings: strs}, nil
}

// Names returns all registered instrument names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}
