package local

import (
	"sync"
	"sync/atomic"

	"github.com/wippyai/xr-input-layer/input"
)

// Application implements input.ApplicationInstance.
type Application struct {
	instance *Instance
	sets     map[*ActionSet]bool
	bindings map[*Action][]input.Binding
	order    []*ActionSet
	started  atomic.Bool
}

// TryBeginSession starts the application's only session.
func (a *Application) TryBeginSession() (input.Session, error) {
	if !a.started.CompareAndSwap(false, true) {
		return nil, input.ErrSessionActive
	}
	return &Session{
		app:    a,
		states: make(map[*Action]input.State),
		eval:   make(map[input.Binding]*bindingState),
	}, nil
}

// Session implements input.Session.
type Session struct {
	app    *Application
	driver *Driver
	states map[*Action]input.State
	eval   map[input.Binding]*bindingState
	handle uint64
	mu     sync.Mutex
}

func (s *Session) bind(d *Driver, handle uint64) {
	s.mu.Lock()
	s.driver = d
	s.handle = handle
	s.mu.Unlock()
}

// Sync evaluates the bindings of every action in sets. Actions of sets
// that are not synced become inactive.
func (s *Session) Sync(sets []input.ActionSet) error {
	active := make(map[*ActionSet]bool, len(sets))
	for _, set := range sets {
		ls, ok := set.(*ActionSet)
		if !ok || !s.app.sets[ls] {
			return input.ErrUnknownActionSet
		}
		active[ls] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.app.instance.rt.clock()
	for _, set := range s.app.order {
		for _, act := range set.snapshot() {
			prev, seen := s.states[act]
			if !seen {
				prev = input.State{Value: zero(act.kind)}
			}

			if !active[set] {
				s.states[act] = input.State{Value: zero(act.kind), LastChanged: prev.LastChanged}
				continue
			}

			value, isActive := s.evaluate(act)
			next := input.State{
				Value:       value,
				Active:      isActive,
				LastChanged: prev.LastChanged,
			}
			if value != prev.Value {
				next.Changed = true
				next.LastChanged = now
			}
			s.states[act] = next
		}
	}
	return nil
}

// State returns the state computed by the latest Sync.
func (s *Session) State(action input.Action) (input.State, error) {
	act, ok := action.(*Action)
	if !ok || !s.app.sets[act.set] {
		return input.State{}, input.ErrUnknownAction
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.states[act]; ok {
		return st, nil
	}
	return input.State{Value: zero(act.kind)}, nil
}

func zero(kind input.ValueKind) input.Value {
	return input.Value{Kind: kind}
}
