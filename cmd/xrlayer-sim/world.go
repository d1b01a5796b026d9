package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/xr-input-layer/config"
	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/input/local"
	"github.com/wippyai/xr-input-layer/internal/xrfake"
	"github.com/wippyai/xr-input-layer/layer"
	"github.com/wippyai/xr-input-layer/loader"
	"github.com/wippyai/xr-input-layer/xr"
)

const (
	simRuntime = "Monado(XRT) by Collabora et al"
	simProfile = "/interaction_profiles/valve/index_controller"

	triggerPath    = "/user/hand/right/input/trigger/value"
	squeezePath    = "/user/hand/right/input/squeeze/value"
	leftStickPath  = "/user/hand/left/input/thumbstick"
	rightStickPath = "/user/hand/right/input/thumbstick"
)

// simAction is one action the simulated application declares.
type simAction struct {
	name    string
	binding string
	typ     xr.ActionType
	handle  xr.Action
}

var simActions = []simAction{
	{name: "fire", typ: xr.ActionTypeBooleanInput, binding: triggerPath},
	{name: "squeeze", typ: xr.ActionTypeFloatInput, binding: squeezePath},
	{name: "move", typ: xr.ActionTypeVector2fInput, binding: leftStickPath},
	{name: "snap_left", typ: xr.ActionTypeBooleanInput, binding: rightStickPath + "/dpad_left"},
	{name: "snap_right", typ: xr.ActionTypeBooleanInput, binding: rightStickPath + "/dpad_right"},
	{name: "aim", typ: xr.ActionTypePoseInput, binding: "/user/hand/right/input/aim/pose"},
}

// step is the outcome of one call made by the simulated application.
type step struct {
	call string
	res  xr.Result
}

// functions are the entry points the application resolved through the layer.
type functions struct {
	getSystem     xr.GetSystemFunc
	createSession xr.CreateSessionFunc
	stringToPath  xr.StringToPathFunc
	createSet     xr.CreateActionSetFunc
	createAction  xr.CreateActionFunc
	suggest       xr.SuggestInteractionProfileBindingsFunc
	attach        xr.AttachSessionActionSetsFunc
	sync          xr.SyncActionsFunc
	boolean       xr.GetActionStateBooleanFunc
	float         xr.GetActionStateFloatFunc
	vector        xr.GetActionStateVector2fFunc
	pose          xr.GetActionStatePoseFunc
	beginSession  xr.BeginSessionFunc
	destroy       xr.DestroyInstanceFunc
}

// world is a simulated application talking to the layer, which in turn
// talks to an in-memory runtime.
type world struct {
	log     *zap.Logger
	fake    *xrfake.Runtime
	layer   *layer.Layer
	driver  *local.Driver
	fns     functions
	actions []simAction
	steps   []step
	inst    xr.Instance
	session xr.Session
	set     xr.ActionSet
}

func newWorld(cfg *config.Config, log *zap.Logger) (*world, error) {
	w := &world{
		log:     log,
		fake:    xrfake.New(simRuntime),
		actions: append([]simAction(nil), simActions...),
	}
	rt := local.New(local.Options{Profiles: cfg.Input.Profiles})

	n := loader.New(func() (*layer.Layer, error) {
		return layer.New(layer.Options{
			Logger:      log,
			Config:      cfg,
			InputLoader: rt.Loader(),
			NewDriver: func(xr.Instance, *xr.Table, input.Runtime) (input.Driver, error) {
				w.driver = local.NewDriver(rt)
				return w.driver, nil
			},
		}), nil
	}, log)

	var req loader.APILayerRequest
	res := n.Negotiate(loaderInfo(loader.InterfaceVersion, loader.InterfaceVersion), layer.Name, requestRecord(&req))
	if err := w.record("negotiate", res); err != nil {
		return nil, err
	}
	w.layer = n.Layer()

	info := &xr.InstanceCreateInfo{}
	info.ApplicationInfo.APIVersion = xr.CurrentAPIVersion
	if err := xr.PutString(info.ApplicationInfo.ApplicationName[:], "xrlayer-sim"); err != nil {
		return nil, err
	}
	res = req.CreateAPILayerInstance(info, w.fake.NextInfo(layer.Name), &w.inst)
	if err := w.record(xr.NameCreateAPILayerInstance, res); err != nil {
		return nil, err
	}
	if err := w.resolve(req.GetInstanceProcAddr); err != nil {
		return nil, err
	}
	return w, nil
}

func loaderInfo(minInterface, maxInterface uint32) *loader.LoaderInfo {
	return &loader.LoaderInfo{
		StructType:          loader.StructLoaderInfo,
		StructVersion:       loader.StructVersion,
		MinInterfaceVersion: minInterface,
		MaxInterfaceVersion: maxInterface,
		MinAPIVersion:       xr.MakeVersion(1, 0, 0),
		MaxAPIVersion:       xr.MakeVersion(1, 0xffff, 0xffffffff),
	}
}

func requestRecord(req *loader.APILayerRequest) *loader.APILayerRequest {
	req.StructType = loader.StructAPILayerRequest
	req.StructVersion = loader.StructVersion
	return req
}

func (w *world) record(call string, res xr.Result) error {
	w.steps = append(w.steps, step{call: call, res: res})
	if res.Failed() {
		return fmt.Errorf("%s: %s", call, res)
	}
	return nil
}

func lookup[F any](gipa xr.GetInstanceProcAddrFunc, inst xr.Instance, name string, out *F) error {
	var fn xr.Func
	if res := gipa(inst, name, &fn); res.Failed() {
		return fmt.Errorf("resolve %s: %s", name, res)
	}
	f, ok := fn.(F)
	if !ok {
		return fmt.Errorf("resolve %s: unexpected %T", name, fn)
	}
	*out = f
	return nil
}

func (w *world) resolve(gipa xr.GetInstanceProcAddrFunc) error {
	f := &w.fns
	for _, err := range []error{
		lookup(gipa, w.inst, xr.NameGetSystem, &f.getSystem),
		lookup(gipa, w.inst, xr.NameCreateSession, &f.createSession),
		lookup(gipa, w.inst, xr.NameStringToPath, &f.stringToPath),
		lookup(gipa, w.inst, xr.NameCreateActionSet, &f.createSet),
		lookup(gipa, w.inst, xr.NameCreateAction, &f.createAction),
		lookup(gipa, w.inst, xr.NameSuggestInteractionProfileBindings, &f.suggest),
		lookup(gipa, w.inst, xr.NameAttachSessionActionSets, &f.attach),
		lookup(gipa, w.inst, xr.NameSyncActions, &f.sync),
		lookup(gipa, w.inst, xr.NameGetActionStateBoolean, &f.boolean),
		lookup(gipa, w.inst, xr.NameGetActionStateFloat, &f.float),
		lookup(gipa, w.inst, xr.NameGetActionStateVector2f, &f.vector),
		lookup(gipa, w.inst, xr.NameGetActionStatePose, &f.pose),
		lookup(gipa, w.inst, xr.NameBeginSession, &f.beginSession),
		lookup(gipa, w.inst, xr.NameDestroyInstance, &f.destroy),
	} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *world) path(s string) (xr.Path, error) {
	var p xr.Path
	if res := w.fns.stringToPath(w.inst, s, &p); res.Failed() {
		return 0, fmt.Errorf("path %s: %s", s, res)
	}
	return p, nil
}

// setup runs the application's start-up: system, session, actions,
// suggested bindings and attachment.
func (w *world) setup() error {
	var sys xr.SystemID
	if err := w.record(xr.NameGetSystem, w.fns.getSystem(w.inst,
		&xr.SystemGetInfo{FormFactor: xr.FormFactorHeadMountedDisplay}, &sys)); err != nil {
		return err
	}
	if err := w.record(xr.NameCreateSession, w.fns.createSession(w.inst,
		&xr.SessionCreateInfo{SystemID: sys}, &w.session)); err != nil {
		return err
	}
	if err := w.record(xr.NameBeginSession, w.fns.beginSession(w.session)); err != nil {
		return err
	}

	setInfo := &xr.ActionSetCreateInfo{}
	xr.PutString(setInfo.ActionSetName[:], "gameplay")
	xr.PutString(setInfo.LocalizedActionSetName[:], "Gameplay")
	if err := w.record(xr.NameCreateActionSet, w.fns.createSet(w.inst, setInfo, &w.set)); err != nil {
		return err
	}
	for n := range w.actions {
		a := &w.actions[n]
		info := &xr.ActionCreateInfo{ActionType: a.typ}
		xr.PutString(info.ActionName[:], a.name)
		xr.PutString(info.LocalizedActionName[:], a.name)
		if err := w.record(xr.NameCreateAction+" "+a.name, w.fns.createAction(w.set, info, &a.handle)); err != nil {
			return err
		}
	}

	suggested, err := w.suggestion()
	if err != nil {
		return err
	}
	if err := w.record(xr.NameSuggestInteractionProfileBindings, w.fns.suggest(w.inst, suggested)); err != nil {
		return err
	}
	attach := &xr.SessionActionSetsAttachInfo{ActionSets: []xr.ActionSet{w.set}}
	return w.record(xr.NameAttachSessionActionSets, w.fns.attach(w.session, attach))
}

func (w *world) suggestion() (*xr.InteractionProfileSuggestedBinding, error) {
	profile, err := w.path(simProfile)
	if err != nil {
		return nil, err
	}
	s := &xr.InteractionProfileSuggestedBinding{InteractionProfile: profile}
	for _, a := range w.actions {
		p, err := w.path(a.binding)
		if err != nil {
			return nil, err
		}
		s.SuggestedBindings = append(s.SuggestedBindings, xr.ActionSuggestedBinding{Action: a.handle, Binding: p})
	}

	trigger, err := w.path(triggerPath)
	if err != nil {
		return nil, err
	}
	stick, err := w.path(rightStickPath)
	if err != nil {
		return nil, err
	}
	s.AnalogThresholds = []xr.AnalogThresholdBinding{{
		Action:       w.actions[0].handle,
		Binding:      trigger,
		OnThreshold:  0.8,
		OffThreshold: 0.3,
		OnHaptic:     &xr.HapticVibration{Duration: 20_000_000, Frequency: 160, Amplitude: 0.5},
	}}
	s.DPadBindings = []xr.DPadBinding{{
		Binding:                stick,
		ActionSet:              w.set,
		ForceThreshold:         0.6,
		ForceThresholdReleased: 0.4,
		CenterRegion:           0.3,
		WedgeAngle:             1.5,
		IsSticky:               true,
	}}
	return s, nil
}

func (w *world) sync() error {
	info := &xr.ActionsSyncInfo{ActiveActionSets: []xr.ActiveActionSet{{ActionSet: w.set}}}
	res := w.fns.sync(w.session, info)
	if res.Failed() {
		return fmt.Errorf("%s: %s", xr.NameSyncActions, res)
	}
	return nil
}

// actionState is the rendered state of one action.
type actionState struct {
	name    string
	value   string
	active  bool
	changed bool
}

func (w *world) states() ([]actionState, error) {
	out := make([]actionState, 0, len(w.actions))
	for _, a := range w.actions {
		info := &xr.ActionStateGetInfo{Action: a.handle}
		st := actionState{name: a.name}
		var res xr.Result
		switch a.typ {
		case xr.ActionTypeBooleanInput:
			var s xr.ActionStateBoolean
			res = w.fns.boolean(w.session, info, &s)
			st.value, st.active, st.changed = fmt.Sprint(s.CurrentState), s.IsActive, s.ChangedSinceLastSync
		case xr.ActionTypeFloatInput:
			var s xr.ActionStateFloat
			res = w.fns.float(w.session, info, &s)
			st.value, st.active, st.changed = fmt.Sprintf("%.2f", s.CurrentState), s.IsActive, s.ChangedSinceLastSync
		case xr.ActionTypeVector2fInput:
			var s xr.ActionStateVector2f
			res = w.fns.vector(w.session, info, &s)
			st.value = fmt.Sprintf("(%.2f, %.2f)", s.CurrentState.X, s.CurrentState.Y)
			st.active, st.changed = s.IsActive, s.ChangedSinceLastSync
		case xr.ActionTypePoseInput:
			var s xr.ActionStatePose
			res = w.fns.pose(w.session, info, &s)
			st.value, st.active = "pose", s.IsActive
		}
		if res.Failed() {
			return nil, fmt.Errorf("state of %s: %s", a.name, res)
		}
		out = append(out, st)
	}
	return out, nil
}

func (w *world) close() {
	if w.fns.destroy == nil {
		return
	}
	if res := w.fns.destroy(w.inst); res.Failed() {
		w.log.Warn("destroy instance failed", zap.Stringer("result", res))
	}
}
