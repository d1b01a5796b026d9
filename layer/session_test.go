package layer

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"weak"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/input/local"
	"github.com/wippyai/xr-input-layer/xr"
)

func TestAttach_Errors(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	session := h.session(inst)
	s, _ := h.layer.Session(session)

	expect(t, h.layer.AttachSessionActionSets(session, nil), xr.ErrorValidationFailure, "nil info")
	expect(t, h.attach(session), xr.ErrorValidationFailure, "empty list")
	expect(t, h.attach(session, set, 0xbad), xr.ErrorHandleInvalid, "unknown set")
	expect(t, h.attach(0xbad, set), xr.ErrorHandleInvalid, "unknown session")

	other := h.createInstance()
	foreign := h.actionSet(other, "gameplay")
	expect(t, h.attach(session, foreign), xr.ErrorHandleInvalid, "set of another instance")

	if s.Attached() || len(s.AttachedSets()) != 0 {
		t.Fatal("failed attach changed the session")
	}
	as, _ := h.layer.actionSets.Lookup(uint64(set))
	if as.Attached() {
		t.Fatal("failed attach marked the set")
	}
	mustSucceed(t, h.attach(session, set, set), "attach with repeated set")
	if got := s.AttachedSets(); len(got) != 1 || got[0] != set {
		t.Fatalf("attached sets = %v", got)
	}
}

func TestAttach_Concurrent(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	session := h.session(inst)

	var succeeded, attached atomic.Int32
	g, _ := errgroup.WithContext(context.Background())
	for range 16 {
		g.Go(func() error {
			switch h.attach(session, set) {
			case xr.Success:
				succeeded.Add(1)
			case xr.ErrorActionSetsAttached:
				attached.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if succeeded.Load() != 1 || attached.Load() != 15 {
		t.Fatalf("success = %d, already attached = %d", succeeded.Load(), attached.Load())
	}
	if n := len(h.driver.Sessions()); n != 1 {
		t.Fatalf("driver bound %d sessions", n)
	}
}

func TestAttach_RacesActionCreation(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	session := h.session(inst)

	const n = 16
	actions := make([]xr.Action, n)
	results := make([]xr.Result, n)
	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		if res := h.attach(session, set); res != xr.Success {
			return fmt.Errorf("attach = %s", res)
		}
		return nil
	})
	for i := range n {
		g.Go(func() error {
			info := actionInfo(fmt.Sprintf("action_%d", i), xr.ActionTypeBooleanInput)
			results[i] = h.layer.CreateAction(set, info, &actions[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	for i, res := range results {
		switch res {
		case xr.Success:
			if _, got := h.boolState(session, actions[i], xr.NullPath); got != xr.Success {
				t.Fatalf("action_%d created but state = %s", i, got)
			}
		case xr.ErrorActionSetsAttached:
		default:
			t.Fatalf("CreateAction action_%d = %s", i, res)
		}
	}
	expect(t, h.layer.CreateAction(set, actionInfo("late", xr.ActionTypeBooleanInput), new(xr.Action)),
		xr.ErrorActionSetsAttached, "create after attach")
}

func TestAttach_InstanceGone(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	session := h.session(inst)

	s, _ := h.layer.Session(session)
	s.instance = weak.Pointer[Instance]{}
	expect(t, h.attach(session, set), xr.ErrorInstanceLost, "attach without instance")
	if s.Attached() {
		t.Fatal("session attached")
	}
	runtime.KeepAlive(inst)
}

func TestSync_Errors(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	unattached := h.actionSet(inst, "menu")
	session := h.session(inst)

	expect(t, h.sync(session, set), xr.ErrorActionSetNotAttached, "sync before attach")
	mustSucceed(t, h.attach(session, set), "attach")

	expect(t, h.layer.SyncActions(session, nil), xr.ErrorValidationFailure, "nil info")
	expect(t, h.sync(session, unattached), xr.ErrorActionSetNotAttached, "unattached set")
	expect(t, h.layer.SyncActions(session, &xr.ActionsSyncInfo{
		ActiveActionSets: []xr.ActiveActionSet{{ActionSet: set, SubactionPath: h.path(inst, "/user/hand/left")}},
	}), xr.ErrorPathUnsupported, "subaction path")
	mustSucceed(t, h.sync(session), "empty sync")
	mustSucceed(t, h.sync(session, set), "sync")
}

func TestActionState_Errors(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	menu := h.actionSet(inst, "menu")
	fire := h.action(set, "fire", xr.ActionTypeBooleanInput)
	open := h.action(menu, "open", xr.ActionTypeBooleanInput)
	session := h.session(inst)

	_, res := h.boolState(session, fire, xr.NullPath)
	expect(t, res, xr.ErrorActionSetNotAttached, "state before attach")
	mustSucceed(t, h.attach(session, set), "attach")

	expect(t, h.layer.GetActionStateBoolean(session, nil, &xr.ActionStateBoolean{}), xr.ErrorValidationFailure, "nil info")
	expect(t, h.layer.GetActionStateBoolean(session, &xr.ActionStateGetInfo{Action: fire}, nil), xr.ErrorValidationFailure, "nil out")
	_, res = h.boolState(session, 0xbad, xr.NullPath)
	expect(t, res, xr.ErrorHandleInvalid, "unknown action")
	_, res = h.boolState(session, open, xr.NullPath)
	expect(t, res, xr.ErrorActionSetNotAttached, "action of unattached set")
	_, res = h.floatState(session, fire, xr.NullPath)
	expect(t, res, xr.ErrorActionTypeMismatch, "float of boolean action")

	other := h.createInstance()
	foreign := h.action(h.actionSet(other, "gameplay"), "fire", xr.ActionTypeBooleanInput)
	_, res = h.boolState(session, foreign, xr.NullPath)
	expect(t, res, xr.ErrorHandleInvalid, "action of another instance")
}

func TestActionState_SubactionPaths(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	left := h.path(inst, "/user/hand/left")
	right := h.path(inst, "/user/hand/right")
	gamepad := h.path(inst, "/user/gamepad")

	set := h.actionSet(inst, "gameplay")
	grab := h.action(set, "grab", xr.ActionTypeBooleanInput, left, right)
	mustSucceed(t, h.suggest(inst, simpleProfile,
		bind{grab, "/user/hand/left/input/select/click"},
		bind{grab, "/user/hand/right/input/select/click"}), "suggest")
	session := h.session(inst)
	mustSucceed(t, h.attach(session, set), "attach")

	h.push("/user/hand/left/input/select/click", input.BoolValue(true))
	mustSucceed(t, h.sync(session, set), "sync")

	st, res := h.boolState(session, grab, left)
	mustSucceed(t, res, "left state")
	if !st.CurrentState || !st.IsActive {
		t.Fatalf("left = %+v", st)
	}
	st, res = h.boolState(session, grab, right)
	mustSucceed(t, res, "right state")
	if st.CurrentState || st.IsActive {
		t.Fatalf("right = %+v", st)
	}

	_, res = h.boolState(session, grab, xr.NullPath)
	expect(t, res, xr.ErrorPathInvalid, "null path on per-path action")
	_, res = h.boolState(session, grab, gamepad)
	expect(t, res, xr.ErrorPathInvalid, "undeclared path")
}

func TestActionState_Types(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	squeeze := h.action(set, "squeeze", xr.ActionTypeFloatInput)
	move := h.action(set, "move", xr.ActionTypeVector2fInput)
	aim := h.action(set, "aim", xr.ActionTypePoseInput)
	h.action(set, "rumble", xr.ActionTypeVibrationOutput)

	const profile = "/interaction_profiles/valve/index_controller"
	mustSucceed(t, h.suggest(inst, profile,
		bind{squeeze, "/user/hand/left/input/squeeze/value"},
		bind{move, "/user/hand/left/input/thumbstick"},
		bind{aim, "/user/hand/left/input/aim/pose"}), "suggest")
	session := h.session(inst)
	mustSucceed(t, h.attach(session, set), "attach")

	h.push("/user/hand/left/input/squeeze/value", input.Axis1dValue(0.25))
	h.push("/user/hand/left/input/thumbstick", input.Axis2dValue(0.5, -0.5))
	h.push("/user/hand/left/input/aim/pose", input.PoseValue())
	mustSucceed(t, h.sync(session, set), "sync")

	f, res := h.floatState(session, squeeze, xr.NullPath)
	mustSucceed(t, res, "float state")
	if f.CurrentState != 0.25 || !f.ChangedSinceLastSync {
		t.Fatalf("float = %+v", f)
	}
	_, res = h.boolState(session, squeeze, xr.NullPath)
	expect(t, res, xr.ErrorActionTypeMismatch, "boolean of float action")

	var v xr.ActionStateVector2f
	mustSucceed(t, h.layer.GetActionStateVector2f(session, &xr.ActionStateGetInfo{Action: move}, &v), "vector state")
	if v.CurrentState != (xr.Vector2f{X: 0.5, Y: -0.5}) || !v.IsActive {
		t.Fatalf("vector = %+v", v)
	}

	var p xr.ActionStatePose
	mustSucceed(t, h.layer.GetActionStatePose(session, &xr.ActionStateGetInfo{Action: aim}, &p), "pose state")
	if !p.IsActive {
		t.Fatal("pose inactive")
	}
	expect(t, h.layer.GetActionStatePose(session, &xr.ActionStateGetInfo{Action: move}, &p), xr.ErrorActionTypeMismatch, "pose of vector action")
}

func TestThresholdBinding(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	fire := h.action(set, "fire", xr.ActionTypeBooleanInput)

	const trigger = "/user/hand/right/input/trigger/value"
	s := h.suggestion(inst, "/interaction_profiles/oculus/touch_controller", bind{fire, trigger})
	s.AnalogThresholds = []xr.AnalogThresholdBinding{{
		Action:       fire,
		Binding:      h.path(inst, trigger),
		OnThreshold:  0.8,
		OffThreshold: 0.2,
		OnHaptic:     &xr.HapticVibration{Duration: 10, Frequency: 160, Amplitude: 1},
	}}
	mustSucceed(t, h.layer.SuggestInteractionProfileBindings(inst, s), "suggest")
	session := h.session(inst)
	mustSucceed(t, h.attach(session, set), "attach")

	steps := []struct {
		value float32
		want  bool
	}{
		{0.5, false},
		{0.9, true},
		{0.5, true},
		{0.1, false},
	}
	for _, step := range steps {
		h.push(trigger, input.Axis1dValue(step.value))
		mustSucceed(t, h.sync(session, set), "sync")
		st, res := h.boolState(session, fire, xr.NullPath)
		mustSucceed(t, res, "state")
		if st.CurrentState != step.want {
			t.Fatalf("trigger %v: state = %v, want %v", step.value, st.CurrentState, step.want)
		}
	}

	events := h.driver.Haptics()
	if len(events) != 1 || events[0].Action != "fire" || events[0].Session != uint64(session) {
		t.Fatalf("haptics = %+v", events)
	}

	bad := h.suggestion(inst, "/interaction_profiles/oculus/touch_controller", bind{fire, trigger})
	bad.AnalogThresholds = []xr.AnalogThresholdBinding{{Action: fire, Binding: h.path(inst, trigger), OnThreshold: 0.2, OffThreshold: 0.8}}
	expect(t, h.layer.SuggestInteractionProfileBindings(inst, bad), xr.ErrorActionSetsAttached, "suggest after attach")
}

func TestThresholdBinding_Invalid(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	fire := h.action(set, "fire", xr.ActionTypeBooleanInput)

	const trigger = "/user/hand/right/input/trigger/value"
	s := h.suggestion(inst, "/interaction_profiles/oculus/touch_controller", bind{fire, trigger})
	s.AnalogThresholds = []xr.AnalogThresholdBinding{{Action: fire, Binding: h.path(inst, trigger), OnThreshold: 0.2, OffThreshold: 0.8}}
	expect(t, h.layer.SuggestInteractionProfileBindings(inst, s), xr.ErrorValidationFailure, "off above on")
}

func TestDPadBinding(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	up := h.action(set, "up", xr.ActionTypeBooleanInput)
	right := h.action(set, "right", xr.ActionTypeBooleanInput)

	const stick = "/user/hand/left/input/thumbstick"
	mustSucceed(t, h.suggest(inst, "/interaction_profiles/valve/index_controller",
		bind{up, stick + "/dpad_up"},
		bind{right, stick + "/dpad_right"}), "suggest")
	session := h.session(inst)
	mustSucceed(t, h.attach(session, set), "attach")

	steps := []struct {
		x, y      float32
		up, right bool
	}{
		{0, 0.9, true, false},
		{0.9, 0, false, true},
		{0.1, 0.1, false, false},
	}
	for _, step := range steps {
		h.push(stick, input.Axis2dValue(step.x, step.y))
		mustSucceed(t, h.sync(session, set), "sync")
		u, _ := h.boolState(session, up, xr.NullPath)
		r, _ := h.boolState(session, right, xr.NullPath)
		if u.CurrentState != step.up || r.CurrentState != step.right {
			t.Fatalf("stick (%v, %v): up = %v, right = %v", step.x, step.y, u.CurrentState, r.CurrentState)
		}
	}
}

func TestDPadBinding_ForeignSet(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	up := h.action(set, "up", xr.ActionTypeBooleanInput)
	other := h.actionSet(h.createInstance(), "gameplay")

	const stick = "/user/hand/left/input/thumbstick"
	s := h.suggestion(inst, "/interaction_profiles/valve/index_controller", bind{up, stick + "/dpad_up"})
	s.DPadBindings = []xr.DPadBinding{{
		Binding:                h.path(inst, stick),
		ActionSet:              other,
		ForceThreshold:         0.5,
		ForceThresholdReleased: 0.4,
		CenterRegion:           0.5,
		WedgeAngle:             1.5,
	}}
	expect(t, h.layer.SuggestInteractionProfileBindings(inst, s), xr.ErrorHandleInvalid, "dpad record for foreign set")
}

type panicDriver struct {
	*local.Driver
}

func (panicDriver) AddSession(uint64, input.Session) error {
	panic("device lost")
}

func TestPoisoning(t *testing.T) {
	h := newHarness(t)
	good := h.createInstance()

	h.layer.newDriver = func(xr.Instance, *xr.Table, input.Runtime) (input.Driver, error) {
		return panicDriver{local.NewDriver(h.input)}, nil
	}
	bad := h.createInstance()
	set := h.actionSet(bad, "gameplay")
	session := h.session(bad)

	var other xr.ActionSet
	expect(t, h.layer.CreateActionSet(bad, actionSetInfo("Bad Name", 0), &other), xr.ErrorPathFormatInvalid, "declined call")
	inst, _ := h.layer.Instance(bad)
	if inst.Poisoned() {
		t.Fatal("declined call poisoned the instance")
	}

	expect(t, h.attach(session, set), xr.ErrorInstanceLost, "attach with panicking driver")
	if !inst.Poisoned() {
		t.Fatal("instance not poisoned")
	}
	expect(t, h.sync(session, set), xr.ErrorInstanceLost, "sync after poison")
	expect(t, h.layer.CreateActionSet(bad, actionSetInfo("menu", 0), &other), xr.ErrorInstanceLost, "create after poison")
	expect(t, h.layer.CreateAction(set, actionInfo("fire", xr.ActionTypeBooleanInput), new(xr.Action)), xr.ErrorInstanceLost, "create action after poison")
	var fn xr.Func
	expect(t, h.layer.GetInstanceProcAddr(bad, xr.NameSyncActions, &fn), xr.ErrorInstanceLost, "resolve after poison")

	h.actionSet(good, "gameplay")
	if g, _ := h.layer.Instance(good); g.Poisoned() {
		t.Fatal("poison spread to another instance")
	}
}
