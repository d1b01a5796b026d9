package layer

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"weak"

	"go.uber.org/zap"

	"github.com/wippyai/xr-input-layer/errors"
	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/xr"
)

// Session wraps a foreign session.
type Session struct {
	instance weak.Pointer[Instance]
	core     *instanceCore
	layer    *Layer
	state    atomic.Pointer[sessionState]
	handle   xr.Session
	attachMu sync.Mutex
}

// sessionState is published once by attach and never mutated afterwards.
type sessionState struct {
	session input.Session
	sets    map[xr.ActionSet]*ActionSet
}

func (s *Session) owner() *instanceCore { return s.core }

func (s *Session) Handle() xr.Session { return s.handle }

// Attached reports whether action sets were attached to the session.
func (s *Session) Attached() bool { return s.state.Load() != nil }

// AttachedSets returns the handles of the attached action sets.
func (s *Session) AttachedSets() []xr.ActionSet {
	st := s.state.Load()
	if st == nil {
		return nil
	}
	out := make([]xr.ActionSet, 0, len(st.sets))
	for h := range st.sets {
		out = append(out, h)
	}
	return out
}

func (s *Session) owningInstance() (*Instance, error) {
	inst := s.instance.Value()
	if inst == nil {
		return nil, errors.InstanceLost(errors.PhaseSession, "owning instance is gone")
	}
	return inst, nil
}

func (s *Session) attach(info *xr.SessionActionSetsAttachInfo) (xr.Result, error) {
	if s.state.Load() != nil {
		return 0, errors.AlreadyAttached(errors.PhaseSession, "action sets already attached")
	}
	if info == nil || len(info.ActionSets) == 0 {
		return 0, errors.Validation(errors.PhaseSession, "no action sets to attach", nil)
	}

	s.attachMu.Lock()
	defer s.attachMu.Unlock()
	if s.state.Load() != nil {
		return 0, errors.AlreadyAttached(errors.PhaseSession, "action sets already attached")
	}

	inst, err := s.owningInstance()
	if err != nil {
		return 0, err
	}

	sets := make(map[xr.ActionSet]*ActionSet, len(info.ActionSets))
	inputSets := make([]input.ActionSet, 0, len(info.ActionSets))
	for _, h := range info.ActionSets {
		set, ok := s.layer.actionSets.Lookup(uint64(h))
		if !ok || set.core != s.core {
			return 0, errors.HandleInvalid(errors.PhaseSession, "action set", uint64(h))
		}
		if _, dup := sets[h]; dup {
			continue
		}
		sets[h] = set
		inputSets = append(inputSets, set.input)
	}

	profiles, err := s.freeze(inst, sets, inputSets)
	if err != nil {
		return 0, err
	}

	s.core.log.Info("action sets attached",
		zap.Uint64("session", uint64(s.handle)),
		zap.Int("sets", len(sets)),
		zap.Int("profiles", profiles))
	inst.writeSnapshot()
	return xr.Success, nil
}

// freeze builds the input session from the sets and the suggested
// bindings and publishes it. Suggestions and action creation on the sets
// are held off until the sets are marked attached.
func (s *Session) freeze(inst *Instance, sets map[xr.ActionSet]*ActionSet, inputSets []input.ActionSet) (int, error) {
	inst.mu.Lock()
	defer inst.mu.Unlock()
	locked := make([]*ActionSet, 0, len(sets))
	for _, set := range sets {
		locked = append(locked, set)
	}
	slices.SortFunc(locked, func(a, b *ActionSet) int { return strings.Compare(a.name, b.name) })
	for _, set := range locked {
		set.mu.Lock()
		defer set.mu.Unlock()
	}

	attached := make(map[input.ActionSet]bool, len(inputSets))
	for _, set := range inputSets {
		attached[set] = true
	}
	bindings := inst.bindings.Bindings(func(set input.ActionSet) bool { return attached[set] })

	app, err := inst.inputInst.CreateApplicationInstance(inputSets, bindings)
	if err != nil {
		return 0, inputError("create application instance", err)
	}
	session, err := app.TryBeginSession()
	if err != nil {
		return 0, inputError("begin input session", err)
	}
	if err := inst.driver.AddSession(uint64(s.handle), session); err != nil {
		return 0, inputError("bind session to driver", err)
	}

	for _, set := range locked {
		set.attached.Store(true)
	}
	inst.attached.Store(true)
	s.state.Store(&sessionState{session: session, sets: sets})
	return len(bindings), nil
}

func (s *Session) sync(info *xr.ActionsSyncInfo) (xr.Result, error) {
	st := s.state.Load()
	if st == nil {
		return 0, errors.NotAttached(errors.PhaseSession, "sync before attach")
	}
	if info == nil {
		return 0, errors.Validation(errors.PhaseSession, "nil sync info", nil)
	}

	active := make([]input.ActionSet, 0, len(info.ActiveActionSets))
	for _, a := range info.ActiveActionSets {
		if a.SubactionPath != xr.NullPath {
			return 0, errors.New(errors.PhaseSession, errors.KindPathUnsupported).
				Value(uint64(a.SubactionPath)).Detail("subaction path in active action set").Build()
		}
		if _, ok := s.layer.actionSets.Lookup(uint64(a.ActionSet)); !ok {
			return 0, errors.HandleInvalid(errors.PhaseSession, "action set", uint64(a.ActionSet))
		}
		set, ok := st.sets[a.ActionSet]
		if !ok {
			return 0, errors.NotAttached(errors.PhaseSession, "action set not attached to session")
		}
		active = append(active, set.input)
	}

	if err := st.session.Sync(active); err != nil {
		return 0, inputError("sync", err)
	}
	return xr.Success, nil
}

// actionState resolves the input state queried by info with an accessor
// for actions of type want.
func (s *Session) actionState(info *xr.ActionStateGetInfo, want xr.ActionType) (input.State, error) {
	st := s.state.Load()
	if st == nil {
		return input.State{}, errors.NotAttached(errors.PhaseSession, "state query before attach")
	}
	if info == nil {
		return input.State{}, errors.Validation(errors.PhaseSession, "nil action state info", nil)
	}

	act, ok := s.layer.actions.Lookup(uint64(info.Action))
	if !ok || act.core != s.core {
		return input.State{}, errors.HandleInvalid(errors.PhaseSession, "action", uint64(info.Action))
	}
	if _, ok := st.sets[act.set]; !ok {
		return input.State{}, errors.NotAttached(errors.PhaseSession, "action set of "+act.name+" not attached")
	}
	if act.typ != want {
		return input.State{}, errors.TypeMismatch(errors.PhaseSession, act.name, act.typ, want)
	}

	target, ok := act.sub.lookup(info.SubactionPath)
	if !ok {
		return input.State{}, errors.PathInvalid(errors.PhaseSession, uint64(info.SubactionPath),
			"subaction path not declared by "+act.name)
	}
	state, err := st.session.State(target)
	if err != nil {
		return input.State{}, inputError("action state", err)
	}
	return state, nil
}

func (s *Session) stateBoolean(info *xr.ActionStateGetInfo, out *xr.ActionStateBoolean) (xr.Result, error) {
	if out == nil {
		return 0, errors.Validation(errors.PhaseSession, "nil state", nil)
	}
	st, err := s.actionState(info, xr.ActionTypeBooleanInput)
	if err != nil {
		return 0, err
	}
	*out = xr.ActionStateBoolean{
		CurrentState:         st.Value.Bool,
		ChangedSinceLastSync: st.Changed,
		LastChangeTime:       xr.Time(st.LastChanged),
		IsActive:             st.Active,
	}
	return xr.Success, nil
}

func (s *Session) stateFloat(info *xr.ActionStateGetInfo, out *xr.ActionStateFloat) (xr.Result, error) {
	if out == nil {
		return 0, errors.Validation(errors.PhaseSession, "nil state", nil)
	}
	st, err := s.actionState(info, xr.ActionTypeFloatInput)
	if err != nil {
		return 0, err
	}
	*out = xr.ActionStateFloat{
		CurrentState:         st.Value.Axis1d,
		ChangedSinceLastSync: st.Changed,
		LastChangeTime:       xr.Time(st.LastChanged),
		IsActive:             st.Active,
	}
	return xr.Success, nil
}

func (s *Session) stateVector2f(info *xr.ActionStateGetInfo, out *xr.ActionStateVector2f) (xr.Result, error) {
	if out == nil {
		return 0, errors.Validation(errors.PhaseSession, "nil state", nil)
	}
	st, err := s.actionState(info, xr.ActionTypeVector2fInput)
	if err != nil {
		return 0, err
	}
	*out = xr.ActionStateVector2f{
		CurrentState:         xr.Vector2f{X: st.Value.Axis2d.X, Y: st.Value.Axis2d.Y},
		ChangedSinceLastSync: st.Changed,
		LastChangeTime:       xr.Time(st.LastChanged),
		IsActive:             st.Active,
	}
	return xr.Success, nil
}

func (s *Session) statePose(info *xr.ActionStateGetInfo, out *xr.ActionStatePose) (xr.Result, error) {
	if out == nil {
		return 0, errors.Validation(errors.PhaseSession, "nil state", nil)
	}
	st, err := s.actionState(info, xr.ActionTypePoseInput)
	if err != nil {
		return 0, err
	}
	*out = xr.ActionStatePose{IsActive: st.Active}
	return xr.Success, nil
}

func (s *Session) destroy() (xr.Result, error) {
	res := s.core.table.DestroySession(s.handle)
	if res.Failed() {
		return res, errors.Forwarded(xr.NameDestroySession, res)
	}
	s.layer.sessions.Remove(s.handle)
	if inst := s.instance.Value(); inst != nil {
		inst.sessions.Remove(s.handle)
		if s.Attached() {
			inst.driver.RemoveSession(uint64(s.handle))
		}
	}
	s.core.log.Info("session destroyed", zap.Uint64("session", uint64(s.handle)))
	return res, nil
}
