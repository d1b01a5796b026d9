package layer

import (
	"slices"
	"sync"
	"sync/atomic"
	"weak"

	"go.uber.org/zap"

	"github.com/wippyai/xr-input-layer/errors"
	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/resource"
	"github.com/wippyai/xr-input-layer/xr"
)

// ActionSet wraps an input action set behind a layer-issued handle.
type ActionSet struct {
	instance    weak.Pointer[Instance]
	core        *instanceCore
	layer       *Layer
	input       input.ActionSet
	actionNames map[string]xr.Action
	name        string
	localized   string
	priority    uint32
	attached    atomic.Bool
	mu          sync.Mutex
}

func (s *ActionSet) owner() *instanceCore { return s.core }

func (s *ActionSet) Name() string { return s.name }

// Attached reports whether a session attached the set.
func (s *ActionSet) Attached() bool { return s.attached.Load() }

func kindOf(t xr.ActionType) (input.ValueKind, bool) {
	switch t {
	case xr.ActionTypeBooleanInput:
		return input.KindBoolean, true
	case xr.ActionTypeFloatInput:
		return input.KindAxis1d, true
	case xr.ActionTypeVector2fInput:
		return input.KindAxis2d, true
	case xr.ActionTypePoseInput:
		return input.KindPose, true
	case xr.ActionTypeVibrationOutput:
		return input.KindHaptic, true
	default:
		return 0, false
	}
}

func (s *ActionSet) createAction(h xr.ActionSet, info *xr.ActionCreateInfo, out *xr.Action) (xr.Result, error) {
	if info == nil || out == nil {
		return 0, errors.Validation(errors.PhaseAction, "nil action create info", nil)
	}
	name, err := xr.CString(info.ActionName[:])
	if err != nil {
		return 0, errors.Validation(errors.PhaseAction, "action name", err)
	}
	if !validName(name) {
		return 0, errors.New(errors.PhaseAction, errors.KindPathFormatInvalid).
			Value(name).Detail("invalid action name %q", name).Build()
	}
	if _, err := xr.CString(info.LocalizedActionName[:]); err != nil {
		return 0, errors.Validation(errors.PhaseAction, "localized action name", err)
	}
	if s.attached.Load() {
		return 0, errors.AlreadyAttached(errors.PhaseAction, "action set "+s.name+" is attached")
	}
	kind, ok := kindOf(info.ActionType)
	if !ok {
		return 0, errors.New(errors.PhaseAction, errors.KindValidation).
			Value(info.ActionType).Detail("unknown action type %d", int32(info.ActionType)).Build()
	}

	paths := make([]string, len(info.SubactionPaths))
	for n, p := range info.SubactionPaths {
		if slices.Contains(info.SubactionPaths[:n], p) {
			return 0, errors.New(errors.PhaseAction, errors.KindPathUnsupported).
				Value(uint64(p)).Detail("duplicate subaction path").Build()
		}
		str, err := xr.PathString(s.core.table, s.core.handle, p)
		if err != nil {
			return 0, err
		}
		paths[n] = str
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached.Load() {
		return 0, errors.AlreadyAttached(errors.PhaseAction, "action set "+s.name+" is attached")
	}
	if _, dup := s.actionNames[name]; dup {
		return 0, errors.New(errors.PhaseAction, errors.KindNameDuplicated).
			Value(name).Detail("action %q already exists in set %q", name, s.name).Build()
	}

	var sub subActions
	if len(paths) == 0 {
		a, err := s.input.CreateAction(name, kind)
		if err != nil {
			return 0, inputError("create action "+name, err)
		}
		sub = singleAction{action: a}
	} else {
		many := make(perPathActions, 0, len(paths))
		for n, str := range paths {
			a, err := s.input.CreateAction(name, kind)
			if err != nil {
				return 0, inputError("create action "+name, err)
			}
			many = append(many, subAction{action: a, name: str, path: info.SubactionPaths[n]})
		}
		sub = many
	}

	act := &Action{
		instance: s.instance,
		core:     s.core,
		layer:    s.layer,
		sub:      sub,
		name:     name,
		typ:      info.ActionType,
		set:      h,
	}
	ah := xr.Action(s.layer.actions.Insert(act).Bits())
	s.actionNames[name] = ah
	*out = ah

	s.core.log.Debug("action created",
		zap.String("set", s.name),
		zap.String("name", name),
		zap.Stringer("type", info.ActionType),
		zap.Strings("subaction_paths", paths))
	return xr.Success, nil
}

func (s *ActionSet) releaseActionName(name string, h xr.Action) {
	s.mu.Lock()
	if s.actionNames[name] == h {
		delete(s.actionNames, name)
	}
	s.mu.Unlock()
}

func (s *ActionSet) destroy(h xr.ActionSet) (xr.Result, error) {
	s.mu.Lock()
	actions := make([]xr.Action, 0, len(s.actionNames))
	for _, a := range s.actionNames {
		actions = append(actions, a)
	}
	clear(s.actionNames)
	s.mu.Unlock()

	for _, a := range actions {
		if idx, ok := resource.IndexFromBits(uint64(a)); ok {
			s.layer.actions.Remove(idx)
		}
	}
	if idx, ok := resource.IndexFromBits(uint64(h)); ok {
		s.layer.actionSets.Remove(idx)
	}
	if inst := s.instance.Value(); inst != nil {
		inst.releaseSetName(s.name, h)
	}
	s.core.log.Debug("action set destroyed", zap.String("name", s.name), zap.Int("actions", len(actions)))
	return xr.Success, nil
}
