package binding

import (
	"slices"
	"sync"

	"github.com/wippyai/xr-input-layer/input"
)

// Binding kinds recorded in entries.
const (
	KindSimple    = "simple"
	KindThreshold = "threshold"
	KindDPad      = "dpad"
)

// Entry is the printable form of one translated binding.
type Entry struct {
	ActionSet string  `cbor:"1,keyasint" yaml:"action_set"`
	Action    string  `cbor:"2,keyasint" yaml:"action"`
	Path      string  `cbor:"3,keyasint" yaml:"path"`
	Kind      string  `cbor:"4,keyasint" yaml:"kind"`
	Direction string  `cbor:"5,keyasint,omitempty" yaml:"direction,omitempty"`
	On        float32 `cbor:"6,keyasint,omitempty" yaml:"on,omitempty"`
	Off       float32 `cbor:"7,keyasint,omitempty" yaml:"off,omitempty"`
	Sticky    bool    `cbor:"8,keyasint,omitempty" yaml:"sticky,omitempty"`
}

// Profile is the suggestion recorded for one interaction profile.
type Profile struct {
	Name     string  `cbor:"1,keyasint" yaml:"profile"`
	Entries  []Entry `cbor:"2,keyasint" yaml:"entries"`
	bindings []input.Binding
	path     input.Path
}

// Store holds the latest suggestion per interaction profile.
// Thread-safe.
type Store struct {
	profiles map[string]*Profile
	mu       sync.RWMutex
}

func NewStore() *Store {
	return &Store{profiles: make(map[string]*Profile)}
}

// Suggest records the bindings of b for the named profile, replacing
// any earlier suggestion for it.
func (s *Store) Suggest(name string, profile input.Path, b *Builder) {
	p := &Profile{
		Name:     name,
		Entries:  slices.Clone(b.Entries()),
		bindings: slices.Clone(b.Bindings()),
		path:     profile,
	}
	s.mu.Lock()
	s.profiles[name] = p
	s.mu.Unlock()
}

// Len returns the number of profiles with a suggestion.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.profiles)
}

// Profiles returns the recorded profiles ordered by name.
func (s *Store) Profiles() []Profile {
	s.mu.RLock()
	out := make([]Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Profile) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}

// Bindings returns the recorded bindings for the input runtime, keeping
// only bindings whose action set satisfies keep. Profiles left without
// bindings are omitted.
func (s *Store) Bindings(keep func(input.ActionSet) bool) []input.ProfileBindings {
	var out []input.ProfileBindings
	for _, p := range s.Profiles() {
		var kept []input.Binding
		for _, b := range p.bindings {
			if keep == nil || keep(b.Target().ActionSet()) {
				kept = append(kept, b)
			}
		}
		if len(kept) == 0 {
			continue
		}
		out = append(out, input.ProfileBindings{Profile: p.path, Bindings: kept})
	}
	return out
}
