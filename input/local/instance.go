package local

import (
	"fmt"
	"sync"

	"github.com/wippyai/xr-input-layer/input"
)

// Instance implements input.Instance.
type Instance struct {
	rt   *Runtime
	name string
	sets []*ActionSet
	mu   sync.Mutex
}

func (i *Instance) Name() string { return i.name }

func (i *Instance) CreateActionSet(name string, priority uint32) (input.ActionSet, error) {
	set := &ActionSet{instance: i, name: name, priority: priority}
	i.mu.Lock()
	i.sets = append(i.sets, set)
	i.mu.Unlock()
	return set, nil
}

func (i *Instance) CreateApplicationInstance(sets []input.ActionSet, bindings []input.ProfileBindings) (input.ApplicationInstance, error) {
	app := &Application{
		instance: i,
		sets:     make(map[*ActionSet]bool, len(sets)),
		bindings: make(map[*Action][]input.Binding),
	}

	for _, s := range sets {
		set, ok := s.(*ActionSet)
		if !ok || set.instance != i {
			return nil, input.ErrUnknownActionSet
		}
		app.sets[set] = true
		app.order = append(app.order, set)
	}

	for _, pb := range bindings {
		for _, b := range pb.Bindings {
			act, ok := b.Target().(*Action)
			if !ok || !app.sets[act.set] {
				return nil, input.ErrUnknownAction
			}
			switch b.(type) {
			case *input.AnalogThresholdBinding, *input.DPadBinding:
				if act.kind != input.KindBoolean {
					return nil, fmt.Errorf("%w: %s binding on %s action %q",
						input.ErrKindMismatch, bindingName(b), act.kind, act.name)
				}
			}
			app.bindings[act] = append(app.bindings[act], b)
		}
	}
	return app, nil
}

// ActionSet implements input.ActionSet.
type ActionSet struct {
	instance *Instance
	name     string
	actions  []*Action
	priority uint32
	mu       sync.Mutex
}

func (s *ActionSet) Name() string     { return s.name }
func (s *ActionSet) Priority() uint32 { return s.priority }

func (s *ActionSet) CreateAction(name string, kind input.ValueKind) (input.Action, error) {
	if kind < input.KindBoolean || kind > input.KindHaptic {
		return nil, fmt.Errorf("input: unknown value kind %d", kind)
	}
	a := &Action{set: s, name: name, kind: kind}
	s.mu.Lock()
	s.actions = append(s.actions, a)
	s.mu.Unlock()
	return a, nil
}

func (s *ActionSet) snapshot() []*Action {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Action(nil), s.actions...)
}

// Action implements input.Action.
type Action struct {
	set  *ActionSet
	name string
	kind input.ValueKind
}

func (a *Action) Name() string               { return a.name }
func (a *Action) Kind() input.ValueKind      { return a.kind }
func (a *Action) ActionSet() input.ActionSet { return a.set }

func bindingName(b input.Binding) string {
	switch b.(type) {
	case *input.SimpleBinding:
		return "simple"
	case *input.AnalogThresholdBinding:
		return "analog threshold"
	case *input.DPadBinding:
		return "dpad"
	default:
		return "unknown"
	}
}
