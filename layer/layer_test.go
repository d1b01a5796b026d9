package layer

import (
	"fmt"
	"path/filepath"
	"slices"
	"testing"

	"github.com/wippyai/xr-input-layer/binding"
	"github.com/wippyai/xr-input-layer/config"
	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/xr"
)

func TestEndToEnd(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()

	main := h.actionSet(inst, "main")
	jump := h.action(main, "jump", xr.ActionTypeBooleanInput)
	mustSucceed(t, h.suggest(inst, simpleProfile, bind{jump, "/user/hand/right/input/select/click"}), "suggest")

	session := h.session(inst)
	mustSucceed(t, h.attach(session, main), "first attach")

	s, _ := h.layer.Session(session)
	before := s.AttachedSets()
	expect(t, h.attach(session, main), xr.ErrorActionSetsAttached, "second attach")
	if after := s.AttachedSets(); !slices.Equal(before, after) {
		t.Fatalf("attached sets changed: %v -> %v", before, after)
	}

	mustSucceed(t, h.sync(session, main), "sync")
	st, res := h.boolState(session, jump, xr.NullPath)
	mustSucceed(t, res, "get state")
	if st.CurrentState || st.IsActive || st.ChangedSinceLastSync {
		t.Fatalf("state without input = %+v", st)
	}

	h.push("/user/hand/right/input/select/click", input.BoolValue(true))
	mustSucceed(t, h.sync(session, main), "sync")
	st, res = h.boolState(session, jump, xr.NullPath)
	mustSucceed(t, res, "get state")
	if !st.CurrentState || !st.IsActive || !st.ChangedSinceLastSync || st.LastChangeTime != xr.Time(h.now) {
		t.Fatalf("state after press = %+v (now %d)", st, h.now)
	}

	mustSucceed(t, h.sync(session, main), "sync")
	st, _ = h.boolState(session, jump, xr.NullPath)
	if !st.CurrentState || st.ChangedSinceLastSync {
		t.Fatalf("held state = %+v", st)
	}

	_, res = h.boolState(session, jump, h.path(inst, "/user/hand/left"))
	expect(t, res, xr.ErrorPathInvalid, "state with subaction path")
}

func TestCreateInstance(t *testing.T) {
	h := newHarness(t)
	handle := h.createInstance()

	inst, ok := h.layer.Instance(handle)
	if !ok {
		t.Fatal("instance not registered")
	}
	if inst.Application() != "hello_xr" {
		t.Errorf("application = %q", inst.Application())
	}
	if inst.Runtime().Kind != RuntimeSteamVR {
		t.Errorf("runtime = %v", inst.Runtime())
	}
	if inst.Driver() != h.driver {
		t.Error("driver not bound")
	}
	if h.fake.Calls(xr.NameCreateAPILayerInstance) != 1 {
		t.Error("next layer not called")
	}
}

func TestCreateInstance_Failures(t *testing.T) {
	tests := []struct {
		name      string
		layerName string
		app       string
		setup     func(h *harness)
		want      xr.Result
		created   int
	}{
		{
			name:      "wrong layer name",
			layerName: "XR_APILAYER_someone_else",
			app:       "hello_xr",
			want:      xr.ErrorValidationFailure,
		},
		{
			name:      "next layer fails",
			layerName: Name,
			app:       "hello_xr",
			setup:     func(h *harness) { h.fake.FailCreate = xr.ErrorInitializationFailed },
			want:      xr.ErrorInitializationFailed,
			created:   1,
		},
		{
			name:      "input runtime unavailable",
			layerName: Name,
			app:       "hello_xr",
			setup: func(h *harness) {
				h.layer.loadInput = func() (input.Runtime, error) { return nil, fmt.Errorf("no input runtime") }
			},
			want:    xr.ErrorInitializationFailed,
			created: 1,
		},
		{
			name:      "driver panics",
			layerName: Name,
			app:       "hello_xr",
			setup: func(h *harness) {
				h.layer.newDriver = func(xr.Instance, *xr.Table, input.Runtime) (input.Driver, error) { panic("driver") }
			},
			want:    xr.ErrorRuntimeFailure,
			created: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.setup != nil {
				tt.setup(h)
			}
			var inst xr.Instance
			res := h.layer.CreateAPILayerInstance(createInfo(tt.app), h.fake.NextInfo(tt.layerName), &inst)
			expect(t, res, tt.want, "CreateAPILayerInstance")
			if n := h.layer.Stats().Instances; n != 0 {
				t.Fatalf("%d instances registered after failure", n)
			}
			if got := h.fake.Calls(xr.NameCreateAPILayerInstance); got != tt.created {
				t.Fatalf("next layer called %d times, want %d", got, tt.created)
			}
		})
	}
}

func TestCreateInstance_RollbackDestroysForeignInstance(t *testing.T) {
	h := newHarness(t)
	h.layer.loadInput = func() (input.Runtime, error) { return nil, fmt.Errorf("no input runtime") }

	var inst xr.Instance
	h.layer.CreateAPILayerInstance(createInfo("hello_xr"), h.fake.NextInfo(Name), &inst)
	if h.fake.Instances() != 0 {
		t.Fatal("foreign instance leaked")
	}
	if inst != xr.NullHandle {
		t.Fatalf("handle = %#x, want null", uint64(inst))
	}
}

func TestClassifyRuntime(t *testing.T) {
	tests := []struct {
		name string
		kind RuntimeKind
	}{
		{"SteamVR/OpenXR", RuntimeSteamVR},
		{"Oculus", RuntimeOculus},
		{"Windows Mixed Reality Runtime", RuntimeWMR},
		{"Monado(XRT) by Collabora et al", RuntimeMonado},
		{"steamvr/openxr", RuntimeOther},
		{"Varjo", RuntimeOther},
		{"", RuntimeOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := ClassifyRuntime(tt.name)
			if rt.Kind != tt.kind || rt.Name != tt.name {
				t.Fatalf("ClassifyRuntime(%q) = %+v", tt.name, rt)
			}
		})
	}
	if s := ClassifyRuntime("Varjo").String(); s != "other(Varjo)" {
		t.Fatalf("String = %q", s)
	}
}

func TestGetSystem(t *testing.T) {
	h := newHarness(t)
	handle := h.createInstance()
	inst, _ := h.layer.Instance(handle)

	var id xr.SystemID
	mustSucceed(t, h.layer.GetSystem(handle, &xr.SystemGetInfo{FormFactor: xr.FormFactorHeadMountedDisplay}, &id), "GetSystem")
	meta, ok := inst.System(id)
	if !ok || meta.FormFactor != xr.FormFactorHeadMountedDisplay {
		t.Fatalf("system meta = %+v, %v", meta, ok)
	}
	mustSucceed(t, h.layer.GetSystem(handle, &xr.SystemGetInfo{FormFactor: xr.FormFactorHeadMountedDisplay}, &id), "GetSystem again")

	expect(t, h.layer.GetSystem(handle, &xr.SystemGetInfo{FormFactor: 99}, &id), xr.ErrorValidationFailure, "bad form factor")
	if _, ok := inst.System(0); ok {
		t.Fatal("failed query recorded")
	}
	expect(t, h.layer.GetSystem(handle, nil, &id), xr.ErrorValidationFailure, "nil info")
	expect(t, h.layer.GetSystem(0xdead, &xr.SystemGetInfo{FormFactor: xr.FormFactorHeadMountedDisplay}, &id), xr.ErrorHandleInvalid, "unknown instance")
}

func TestCreateSession(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	s := h.session(inst)

	if _, ok := h.layer.Session(s); !ok {
		t.Fatal("session not registered")
	}
	var out xr.Session
	expect(t, h.layer.CreateSession(inst, &xr.SessionCreateInfo{SystemID: 7}, &out), xr.ErrorSystemInvalid, "unknown system")
	if h.layer.Stats().Sessions != 1 {
		t.Fatalf("sessions = %d", h.layer.Stats().Sessions)
	}
}

func TestCreateActionSet(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	h.actionSet(inst, "gameplay")

	var set xr.ActionSet
	expect(t, h.layer.CreateActionSet(inst, actionSetInfo("gameplay", 1), &set), xr.ErrorNameDuplicated, "duplicate name")
	expect(t, h.layer.CreateActionSet(inst, actionSetInfo("Game Play", 0), &set), xr.ErrorPathFormatInvalid, "bad name")
	expect(t, h.layer.CreateActionSet(inst, actionSetInfo("", 0), &set), xr.ErrorPathFormatInvalid, "empty name")

	info := actionSetInfo("x", 0)
	for i := range info.ActionSetName {
		info.ActionSetName[i] = 'a'
	}
	expect(t, h.layer.CreateActionSet(inst, info, &set), xr.ErrorValidationFailure, "unterminated name")
	expect(t, h.layer.CreateActionSet(inst, nil, &set), xr.ErrorValidationFailure, "nil info")

	if h.fake.Calls(xr.NameCreateActionSet) != 0 {
		t.Fatal("action set creation reached the runtime")
	}
	if h.layer.Stats().ActionSets != 1 {
		t.Fatalf("action sets = %d", h.layer.Stats().ActionSets)
	}
}

func TestCreateAction(t *testing.T) {
	h := newHarness(t)
	inst := h.createInstance()
	set := h.actionSet(inst, "gameplay")
	left := h.path(inst, "/user/hand/left")

	h.action(set, "fire", xr.ActionTypeBooleanInput)

	var a xr.Action
	expect(t, h.layer.CreateAction(set, actionInfo("fire", xr.ActionTypeFloatInput), &a), xr.ErrorNameDuplicated, "duplicate name")
	expect(t, h.layer.CreateAction(set, actionInfo("grab", 7), &a), xr.ErrorValidationFailure, "unknown type")
	expect(t, h.layer.CreateAction(set, actionInfo("grab", xr.ActionTypeBooleanInput, left, left), &a), xr.ErrorPathUnsupported, "duplicate subaction path")
	expect(t, h.layer.CreateAction(set, actionInfo("grab", xr.ActionTypeBooleanInput, 0xbad), &a), xr.ErrorPathInvalid, "unknown subaction path")
	expect(t, h.layer.CreateAction(set, actionInfo("Grab", xr.ActionTypeBooleanInput), &a), xr.ErrorPathFormatInvalid, "bad name")
	expect(t, h.layer.CreateAction(0, actionInfo("grab", xr.ActionTypeBooleanInput), &a), xr.ErrorHandleInvalid, "null set")
	expect(t, h.layer.CreateAction(set+1<<32, actionInfo("grab", xr.ActionTypeBooleanInput), &a), xr.ErrorHandleInvalid, "wrong generation")

	session := h.session(inst)
	mustSucceed(t, h.attach(session, set), "attach")
	expect(t, h.layer.CreateAction(set, actionInfo("late", xr.ActionTypeBooleanInput), &a), xr.ErrorActionSetsAttached, "create after attach")
}

func TestSuggest(t *testing.T) {
	h := newHarness(t)
	handle := h.createInstance()
	inst, _ := h.layer.Instance(handle)
	set := h.actionSet(handle, "gameplay")
	fire := h.action(set, "fire", xr.ActionTypeBooleanInput)

	expect(t, h.suggest(handle, "/interaction_profiles/acme/wand", bind{fire, "/user/hand/right/input/select/click"}),
		xr.ErrorPathUnsupported, "unsupported profile")
	expect(t, h.suggest(handle, simpleProfile, bind{0xbad, "/user/hand/right/input/select/click"}),
		xr.ErrorHandleInvalid, "unknown action")
	expect(t, h.suggest(handle, simpleProfile), xr.ErrorValidationFailure, "no bindings")
	if inst.Bindings().Len() != 0 {
		t.Fatal("failed suggestions recorded")
	}

	mustSucceed(t, h.suggest(handle, simpleProfile, bind{fire, "/user/hand/right/input/select/click"}), "first suggest")
	mustSucceed(t, h.suggest(handle, simpleProfile, bind{fire, "/user/hand/left/input/select/click"}), "second suggest")
	profiles := inst.Bindings().Profiles()
	if len(profiles) != 1 || len(profiles[0].Entries) != 1 || profiles[0].Entries[0].Path != "/user/hand/left/input/select/click" {
		t.Fatalf("profiles = %+v", profiles)
	}

	session := h.session(handle)
	mustSucceed(t, h.attach(session, set), "attach")
	expect(t, h.suggest(handle, simpleProfile, bind{fire, "/user/hand/right/input/select/click"}),
		xr.ErrorActionSetsAttached, "suggest after attach")
}

func TestSnapshotOnAttach(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.cbor")
	h := newHarness(t, func(o *Options) {
		cfg := config.Default()
		cfg.Bindings.Snapshot = path
		o.Config = cfg
	})
	handle := h.createInstance()
	set := h.actionSet(handle, "gameplay")
	fire := h.action(set, "fire", xr.ActionTypeBooleanInput)
	mustSucceed(t, h.suggest(handle, simpleProfile, bind{fire, "/user/hand/right/input/select/click"}), "suggest")
	mustSucceed(t, h.attach(h.session(handle), set), "attach")

	snap, err := binding.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	inst, _ := h.layer.Instance(handle)
	if snap.InstanceID != inst.ID().String() || snap.Application != "hello_xr" || snap.Runtime != "SteamVR/OpenXR" {
		t.Fatalf("snapshot header = %+v", snap)
	}
	if len(snap.Profiles) != 1 || snap.Profiles[0].Entries[0].Action != "fire" {
		t.Fatalf("snapshot profiles = %+v", snap.Profiles)
	}
}
