package layer

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"weak"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/xr-input-layer/binding"
	"github.com/wippyai/xr-input-layer/errors"
	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/resource"
	"github.com/wippyai/xr-input-layer/xr"
)

// SystemMeta is what the layer remembers about a system id.
type SystemMeta struct {
	FormFactor xr.FormFactor
}

// Instance wraps a foreign instance.
type Instance struct {
	core        *instanceCore
	layer       *Layer
	systems     *resource.Registry[xr.SystemID, SystemMeta]
	sessions    *resource.Registry[xr.Session, *Session]
	input       input.Runtime
	inputInst   input.Instance
	driver      input.Driver
	bindings    *binding.Store
	setNames    map[string]xr.ActionSet
	application string
	runtime     Runtime
	id          uuid.UUID
	attached    atomic.Bool
	mu          sync.Mutex
}

func (i *Instance) owner() *instanceCore { return i.core }

func (i *Instance) Handle() xr.Instance      { return i.core.handle }
func (i *Instance) ID() uuid.UUID            { return i.id }
func (i *Instance) Application() string      { return i.application }
func (i *Instance) Runtime() Runtime         { return i.runtime }
func (i *Instance) Driver() input.Driver     { return i.driver }
func (i *Instance) Bindings() *binding.Store { return i.bindings }
func (i *Instance) Poisoned() bool           { return i.core.Poisoned() }

// System returns the metadata recorded for a system id.
func (i *Instance) System(id xr.SystemID) (SystemMeta, bool) {
	return i.systems.Get(id)
}

func (i *Instance) getSystem(info *xr.SystemGetInfo, out *xr.SystemID) (xr.Result, error) {
	if info == nil || out == nil {
		return 0, errors.Validation(errors.PhaseInstance, "nil system info", nil)
	}
	res := i.core.table.GetSystem(i.core.handle, info, out)
	if res.Failed() {
		return res, errors.Forwarded(xr.NameGetSystem, res)
	}
	i.systems.Insert(*out, SystemMeta{FormFactor: info.FormFactor})
	i.core.log.Debug("system queried",
		zap.Stringer("form_factor", info.FormFactor),
		zap.Uint64("system", uint64(*out)))
	return res, nil
}

func (i *Instance) createSession(info *xr.SessionCreateInfo, out *xr.Session) (xr.Result, error) {
	if info == nil || out == nil {
		return 0, errors.Validation(errors.PhaseSession, "nil session create info", nil)
	}
	res := i.core.table.CreateSession(i.core.handle, info, out)
	if res.Failed() {
		return res, errors.Forwarded(xr.NameCreateSession, res)
	}

	s := &Session{
		handle:   *out,
		instance: weak.Make(i),
		core:     i.core,
		layer:    i.layer,
	}
	i.layer.sessions.Insert(*out, s)
	i.sessions.Insert(*out, s)
	i.core.log.Info("session created", zap.Uint64("session", uint64(*out)))
	return res, nil
}

func (i *Instance) createActionSet(info *xr.ActionSetCreateInfo, out *xr.ActionSet) (xr.Result, error) {
	if info == nil || out == nil {
		return 0, errors.Validation(errors.PhaseAction, "nil action set create info", nil)
	}
	name, err := xr.CString(info.ActionSetName[:])
	if err != nil {
		return 0, errors.Validation(errors.PhaseAction, "action set name", err)
	}
	if !validName(name) {
		return 0, errors.New(errors.PhaseAction, errors.KindPathFormatInvalid).
			Value(name).Detail("invalid action set name %q", name).Build()
	}
	localized, err := xr.CString(info.LocalizedActionSetName[:])
	if err != nil {
		return 0, errors.Validation(errors.PhaseAction, "localized action set name", err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if _, dup := i.setNames[name]; dup {
		return 0, errors.New(errors.PhaseAction, errors.KindNameDuplicated).
			Value(name).Detail("action set %q already exists", name).Build()
	}

	set, err := i.inputInst.CreateActionSet(name, info.Priority)
	if err != nil {
		return 0, inputError("create action set "+name, err)
	}
	as := &ActionSet{
		name:        name,
		localized:   localized,
		priority:    info.Priority,
		instance:    weak.Make(i),
		core:        i.core,
		layer:       i.layer,
		input:       set,
		actionNames: make(map[string]xr.Action),
	}
	h := xr.ActionSet(i.layer.actionSets.Insert(as).Bits())
	i.setNames[name] = h
	*out = h

	i.core.log.Debug("action set created",
		zap.String("name", name),
		zap.Uint32("priority", info.Priority),
		zap.Uint64("handle", uint64(h)))
	return xr.Success, nil
}

func (i *Instance) releaseSetName(name string, h xr.ActionSet) {
	i.mu.Lock()
	if i.setNames[name] == h {
		delete(i.setNames, name)
	}
	i.mu.Unlock()
}

func (i *Instance) pathString(p xr.Path) (string, error) {
	return xr.PathString(i.core.table, i.core.handle, p)
}

func (i *Instance) suggest(s *xr.InteractionProfileSuggestedBinding) (xr.Result, error) {
	if s == nil {
		return 0, errors.Validation(errors.PhaseBinding, "nil suggested bindings", nil)
	}
	if i.attached.Load() {
		return 0, errors.AlreadyAttached(errors.PhaseBinding, "bindings cannot change after a session attached action sets")
	}
	if len(s.SuggestedBindings) == 0 {
		return 0, errors.Validation(errors.PhaseBinding, "no suggested bindings", nil)
	}

	profileName, err := i.pathString(s.InteractionProfile)
	if err != nil {
		return 0, err
	}
	profile, err := i.input.Path(profileName)
	if err != nil {
		return 0, errors.PathUnsupported(errors.PhaseBinding, profileName, err)
	}

	b := binding.NewBuilder(i.input, i.layer.cfg.Bindings.DPad.Params())
	for _, t := range s.AnalogThresholds {
		if _, err := i.resolveAction(t.Action); err != nil {
			return 0, err
		}
		path, err := i.pathString(t.Binding)
		if err != nil {
			return 0, err
		}
		err = b.AddThreshold(binding.Threshold{
			Action:    uint64(t.Action),
			Path:      path,
			On:        t.OnThreshold,
			Off:       t.OffThreshold,
			OnHaptic:  hapticOf(t.OnHaptic),
			OffHaptic: hapticOf(t.OffHaptic),
		})
		if err != nil {
			return 0, err
		}
	}
	for _, d := range s.DPadBindings {
		set, ok := i.layer.actionSets.Lookup(uint64(d.ActionSet))
		if !ok || set.core != i.core {
			return 0, errors.HandleInvalid(errors.PhaseBinding, "action set", uint64(d.ActionSet))
		}
		identifier, err := i.pathString(d.Binding)
		if err != nil {
			return 0, err
		}
		err = b.AddDPad(binding.DPad{
			Identifier: identifier,
			ActionSet:  uint64(d.ActionSet),
			Params: input.DPadParams{
				OnHaptic:               hapticOf(d.OnHaptic),
				OffHaptic:              hapticOf(d.OffHaptic),
				ForceThreshold:         d.ForceThreshold,
				ForceThresholdReleased: d.ForceThresholdReleased,
				CenterRegion:           d.CenterRegion,
				WedgeAngle:             d.WedgeAngle,
				Sticky:                 d.IsSticky,
			},
		})
		if err != nil {
			return 0, err
		}
	}

	for _, sb := range s.SuggestedBindings {
		act, err := i.resolveAction(sb.Action)
		if err != nil {
			return 0, err
		}
		path, err := i.pathString(sb.Binding)
		if err != nil {
			return 0, err
		}
		targets := act.sub.targets(path)
		if len(targets) == 0 {
			i.core.log.Debug("binding matches no subaction path",
				zap.String("action", act.name),
				zap.String("path", path))
			continue
		}
		for _, target := range targets {
			err := b.Add(binding.Suggestion{
				Target:    target,
				Path:      path,
				Action:    uint64(sb.Action),
				ActionSet: uint64(act.set),
			})
			if err != nil {
				return 0, err
			}
		}
	}

	i.mu.Lock()
	if i.attached.Load() {
		i.mu.Unlock()
		return 0, errors.AlreadyAttached(errors.PhaseBinding, "bindings cannot change after a session attached action sets")
	}
	i.bindings.Suggest(profileName, profile, b)
	i.mu.Unlock()
	i.core.log.Info("interaction profile bindings suggested",
		zap.String("profile", profileName),
		zap.Int("bindings", len(b.Bindings())))
	return xr.Success, nil
}

func (i *Instance) resolveAction(h xr.Action) (*Action, error) {
	act, ok := i.layer.actions.Lookup(uint64(h))
	if !ok || act.core != i.core {
		return nil, errors.HandleInvalid(errors.PhaseBinding, "action", uint64(h))
	}
	return act, nil
}

func hapticOf(h *xr.HapticVibration) *input.Haptic {
	if h == nil {
		return nil
	}
	return &input.Haptic{
		Duration:  int64(h.Duration),
		Frequency: h.Frequency,
		Amplitude: h.Amplitude,
	}
}

func (i *Instance) destroy() (xr.Result, error) {
	res := i.core.table.DestroyInstance(i.core.handle)
	if res.Failed() {
		return res, errors.Forwarded(xr.NameDestroyInstance, res)
	}
	i.teardown()
	i.core.log.Info("instance destroyed")
	return res, nil
}

// teardown drops every object of the instance from the layer.
func (i *Instance) teardown() {
	l := i.layer
	i.sessions.Range(func(h xr.Session, s *Session) bool {
		l.sessions.Remove(h)
		i.sessions.Remove(h)
		if s.Attached() {
			i.driver.RemoveSession(uint64(h))
		}
		return true
	})

	var sets, actions []resource.Index
	l.actionSets.Each(func(idx resource.Index, set *ActionSet) bool {
		if set.core == i.core {
			sets = append(sets, idx)
		}
		return true
	})
	l.actions.Each(func(idx resource.Index, act *Action) bool {
		if act.core == i.core {
			actions = append(actions, idx)
		}
		return true
	})
	for _, idx := range actions {
		l.actions.Remove(idx)
	}
	for _, idx := range sets {
		l.actionSets.Remove(idx)
	}
	l.instances.Remove(i.core.handle)
}

// writeSnapshot records the suggested bindings when a snapshot path is configured.
func (i *Instance) writeSnapshot() {
	path := i.layer.cfg.Bindings.Snapshot
	if path == "" {
		return
	}
	snap := &binding.Snapshot{
		Created:     time.Now().UTC(),
		InstanceID:  i.id.String(),
		Application: i.application,
		Runtime:     i.runtime.Name,
		Profiles:    i.bindings.Profiles(),
	}
	if err := binding.WriteSnapshot(path, snap); err != nil {
		i.core.log.Warn("binding snapshot not written", zap.String("path", path), zap.Error(err))
		return
	}
	i.core.log.Debug("binding snapshot written", zap.String("path", path))
}

// validName reports whether name is a well-formed action or action set name.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return false
		}
	}
	return true
}

func (i *Instance) String() string {
	return fmt.Sprintf("instance %#x (%s, %s)", uint64(i.core.handle), i.application, i.runtime)
}
