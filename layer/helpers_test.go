package layer

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/input/local"
	"github.com/wippyai/xr-input-layer/internal/xrfake"
	"github.com/wippyai/xr-input-layer/xr"
)

const simpleProfile = "/interaction_profiles/khr/simple_controller"

type harness struct {
	t      *testing.T
	fake   *xrfake.Runtime
	layer  *Layer
	input  *local.Runtime
	driver *local.Driver
	now    int64
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	h := &harness{t: t, fake: xrfake.New("SteamVR/OpenXR")}
	h.input = local.New(local.Options{Clock: func() int64 {
		h.now += 1000
		return h.now
	}})
	opts := Options{
		Logger:      zaptest.NewLogger(t),
		InputLoader: h.input.Loader(),
		NewDriver: func(xr.Instance, *xr.Table, input.Runtime) (input.Driver, error) {
			h.driver = local.NewDriver(h.input)
			return h.driver, nil
		},
	}
	for _, m := range mutate {
		m(&opts)
	}
	h.layer = New(opts)
	return h
}

func mustSucceed(t *testing.T, res xr.Result, what string) {
	t.Helper()
	if res != xr.Success {
		t.Fatalf("%s = %s, want %s", what, res, xr.Success)
	}
}

func expect(t *testing.T, res, want xr.Result, what string) {
	t.Helper()
	if res != want {
		t.Fatalf("%s = %s, want %s", what, res, want)
	}
}

func createInfo(app string) *xr.InstanceCreateInfo {
	info := &xr.InstanceCreateInfo{}
	xr.PutString(info.ApplicationInfo.ApplicationName[:], app)
	info.ApplicationInfo.APIVersion = xr.CurrentAPIVersion
	return info
}

func (h *harness) createInstance() xr.Instance {
	h.t.Helper()
	var inst xr.Instance
	mustSucceed(h.t, h.layer.CreateAPILayerInstance(createInfo("hello_xr"), h.fake.NextInfo(Name), &inst), "CreateAPILayerInstance")
	return inst
}

func (h *harness) path(inst xr.Instance, s string) xr.Path {
	return h.fake.Path(inst, s)
}

func actionSetInfo(name string, priority uint32) *xr.ActionSetCreateInfo {
	info := &xr.ActionSetCreateInfo{Priority: priority}
	xr.PutString(info.ActionSetName[:], name)
	xr.PutString(info.LocalizedActionSetName[:], name)
	return info
}

func (h *harness) actionSet(inst xr.Instance, name string) xr.ActionSet {
	h.t.Helper()
	var set xr.ActionSet
	mustSucceed(h.t, h.layer.CreateActionSet(inst, actionSetInfo(name, 0), &set), "CreateActionSet "+name)
	return set
}

func actionInfo(name string, typ xr.ActionType, sub ...xr.Path) *xr.ActionCreateInfo {
	info := &xr.ActionCreateInfo{ActionType: typ, SubactionPaths: sub}
	xr.PutString(info.ActionName[:], name)
	xr.PutString(info.LocalizedActionName[:], name)
	return info
}

func (h *harness) action(set xr.ActionSet, name string, typ xr.ActionType, sub ...xr.Path) xr.Action {
	h.t.Helper()
	var a xr.Action
	mustSucceed(h.t, h.layer.CreateAction(set, actionInfo(name, typ, sub...), &a), "CreateAction "+name)
	return a
}

func (h *harness) session(inst xr.Instance) xr.Session {
	h.t.Helper()
	var sys xr.SystemID
	mustSucceed(h.t, h.layer.GetSystem(inst, &xr.SystemGetInfo{FormFactor: xr.FormFactorHeadMountedDisplay}, &sys), "GetSystem")
	var s xr.Session
	mustSucceed(h.t, h.layer.CreateSession(inst, &xr.SessionCreateInfo{SystemID: sys}, &s), "CreateSession")
	return s
}

type bind struct {
	action xr.Action
	path   string
}

func (h *harness) suggestion(inst xr.Instance, profile string, binds ...bind) *xr.InteractionProfileSuggestedBinding {
	s := &xr.InteractionProfileSuggestedBinding{InteractionProfile: h.path(inst, profile)}
	for _, b := range binds {
		s.SuggestedBindings = append(s.SuggestedBindings, xr.ActionSuggestedBinding{
			Action:  b.action,
			Binding: h.path(inst, b.path),
		})
	}
	return s
}

func (h *harness) suggest(inst xr.Instance, profile string, binds ...bind) xr.Result {
	return h.layer.SuggestInteractionProfileBindings(inst, h.suggestion(inst, profile, binds...))
}

func (h *harness) attach(s xr.Session, sets ...xr.ActionSet) xr.Result {
	return h.layer.AttachSessionActionSets(s, &xr.SessionActionSetsAttachInfo{ActionSets: sets})
}

func (h *harness) sync(s xr.Session, sets ...xr.ActionSet) xr.Result {
	info := &xr.ActionsSyncInfo{}
	for _, set := range sets {
		info.ActiveActionSets = append(info.ActiveActionSets, xr.ActiveActionSet{ActionSet: set})
	}
	return h.layer.SyncActions(s, info)
}

func (h *harness) boolState(s xr.Session, a xr.Action, sub xr.Path) (xr.ActionStateBoolean, xr.Result) {
	var st xr.ActionStateBoolean
	res := h.layer.GetActionStateBoolean(s, &xr.ActionStateGetInfo{Action: a, SubactionPath: sub}, &st)
	return st, res
}

func (h *harness) floatState(s xr.Session, a xr.Action, sub xr.Path) (xr.ActionStateFloat, xr.Result) {
	var st xr.ActionStateFloat
	res := h.layer.GetActionStateFloat(s, &xr.ActionStateGetInfo{Action: a, SubactionPath: sub}, &st)
	return st, res
}

func (h *harness) push(path string, v input.Value) {
	h.t.Helper()
	if err := h.driver.Push(path, v); err != nil {
		h.t.Fatalf("Push(%s): %v", path, err)
	}
}
