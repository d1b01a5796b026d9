// Package xrfake is an in-memory runtime standing at the bottom of a
// layer chain. It implements the entry points the layer forwards to and
// counts every call made through it.
package xrfake

import (
	"strings"
	"sync"

	"github.com/wippyai/xr-input-layer/xr"
)

// System ids returned by GetSystem.
const (
	HMDSystem      xr.SystemID = 0x1001
	HandheldSystem xr.SystemID = 0x1002
)

type instance struct {
	application string
	sessions    map[xr.Session]xr.SystemID
	running     map[xr.Session]bool
}

// Runtime is a fake terminal runtime.
// Thread-safe.
type Runtime struct {
	name      string
	instances map[xr.Instance]*instance
	sessions  map[xr.Session]xr.Instance
	paths     map[string]xr.Path
	strs      []string
	calls     map[string]int
	next      uint64
	mu        sync.Mutex

	// FailCreate, when set, is returned by CreateAPILayerInstance.
	FailCreate xr.Result
}

// New creates a runtime reporting name from GetInstanceProperties.
func New(name string) *Runtime {
	return &Runtime{
		name:      name,
		instances: make(map[xr.Instance]*instance),
		sessions:  make(map[xr.Session]xr.Instance),
		paths:     make(map[string]xr.Path),
		strs:      []string{""},
		calls:     make(map[string]int),
		next:      0x100,
	}
}

// Calls returns how many times the named entry point was called.
func (r *Runtime) Calls(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[name]
}

// Instances returns the number of live instances.
func (r *Runtime) Instances() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// Running reports whether session was begun and not asked to exit.
func (r *Runtime) Running(session xr.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[r.sessions[session]]
	return ok && inst.running[session]
}

// NextInfo returns a single-link layer chain for a layer called layerName
// that ends at r.
func (r *Runtime) NextInfo(layerName string) *xr.APILayerCreateInfo {
	next := &xr.APILayerNextInfo{
		NextGetInstanceProcAddr:    r.GetInstanceProcAddr,
		NextCreateAPILayerInstance: r.CreateAPILayerInstance,
	}
	xr.PutString(next.LayerName[:], layerName)
	return &xr.APILayerCreateInfo{NextInfo: next}
}

func (r *Runtime) count(name string) {
	r.calls[name]++
}

func (r *Runtime) handle() uint64 {
	r.next++
	return r.next
}

// CreateAPILayerInstance terminates the layer chain.
func (r *Runtime) CreateAPILayerInstance(info *xr.InstanceCreateInfo, _ *xr.APILayerCreateInfo, out *xr.Instance) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count(xr.NameCreateAPILayerInstance)

	if r.FailCreate.Failed() {
		return r.FailCreate
	}
	if info == nil || out == nil {
		return xr.ErrorValidationFailure
	}
	app, err := xr.CString(info.ApplicationInfo.ApplicationName[:])
	if err != nil || app == "" {
		return xr.ErrorValidationFailure
	}

	h := xr.Instance(r.handle())
	r.instances[h] = &instance{
		application: app,
		sessions:    make(map[xr.Session]xr.SystemID),
		running:     make(map[xr.Session]bool),
	}
	*out = h
	return xr.Success
}

// GetInstanceProcAddr resolves the fake's entry points.
func (r *Runtime) GetInstanceProcAddr(inst xr.Instance, name string, fn *xr.Func) xr.Result {
	r.mu.Lock()
	r.count(xr.NameGetInstanceProcAddr)
	_, known := r.instances[inst]
	r.mu.Unlock()

	if fn == nil {
		return xr.ErrorValidationFailure
	}
	*fn = nil
	if inst == xr.NullHandle {
		if name != xr.NameGetInstanceProcAddr {
			return xr.ErrorHandleInvalid
		}
		*fn = xr.GetInstanceProcAddrFunc(r.GetInstanceProcAddr)
		return xr.Success
	}
	if !known {
		return xr.ErrorHandleInvalid
	}

	switch name {
	case xr.NameGetInstanceProcAddr:
		*fn = xr.GetInstanceProcAddrFunc(r.GetInstanceProcAddr)
	case xr.NameDestroyInstance:
		*fn = xr.DestroyInstanceFunc(r.DestroyInstance)
	case xr.NameGetInstanceProperties:
		*fn = xr.GetInstancePropertiesFunc(r.GetInstanceProperties)
	case xr.NameGetSystem:
		*fn = xr.GetSystemFunc(r.GetSystem)
	case xr.NameCreateSession:
		*fn = xr.CreateSessionFunc(r.CreateSession)
	case xr.NameDestroySession:
		*fn = xr.DestroySessionFunc(r.DestroySession)
	case xr.NameBeginSession:
		*fn = xr.BeginSessionFunc(r.BeginSession)
	case xr.NameRequestExitSession:
		*fn = xr.RequestExitSessionFunc(r.RequestExitSession)
	case xr.NameStringToPath:
		*fn = xr.StringToPathFunc(r.StringToPath)
	case xr.NamePathToString:
		*fn = xr.PathToStringFunc(r.PathToString)
	case xr.NameCreateActionSet:
		*fn = xr.CreateActionSetFunc(r.CreateActionSet)
	default:
		return xr.ErrorFunctionUnsupported
	}
	return xr.Success
}

func (r *Runtime) DestroyInstance(inst xr.Instance) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count(xr.NameDestroyInstance)

	in, ok := r.instances[inst]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	for s := range in.sessions {
		delete(r.sessions, s)
	}
	delete(r.instances, inst)
	return xr.Success
}

func (r *Runtime) GetInstanceProperties(inst xr.Instance, props *xr.InstanceProperties) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count(xr.NameGetInstanceProperties)

	if _, ok := r.instances[inst]; !ok {
		return xr.ErrorHandleInvalid
	}
	if props == nil {
		return xr.ErrorValidationFailure
	}
	props.RuntimeVersion = xr.MakeVersion(0, 1, 0)
	if err := xr.PutString(props.RuntimeName[:], r.name); err != nil {
		return xr.ErrorRuntimeFailure
	}
	return xr.Success
}

func (r *Runtime) GetSystem(inst xr.Instance, info *xr.SystemGetInfo, id *xr.SystemID) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count(xr.NameGetSystem)

	if _, ok := r.instances[inst]; !ok {
		return xr.ErrorHandleInvalid
	}
	if info == nil || id == nil {
		return xr.ErrorValidationFailure
	}
	switch info.FormFactor {
	case xr.FormFactorHeadMountedDisplay:
		*id = HMDSystem
	case xr.FormFactorHandheldDisplay:
		*id = HandheldSystem
	default:
		return xr.ErrorValidationFailure
	}
	return xr.Success
}

func (r *Runtime) CreateSession(inst xr.Instance, info *xr.SessionCreateInfo, out *xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count(xr.NameCreateSession)

	in, ok := r.instances[inst]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	if info == nil || out == nil {
		return xr.ErrorValidationFailure
	}
	if info.SystemID != HMDSystem && info.SystemID != HandheldSystem {
		return xr.ErrorSystemInvalid
	}
	s := xr.Session(r.handle())
	in.sessions[s] = info.SystemID
	r.sessions[s] = inst
	*out = s
	return xr.Success
}

func (r *Runtime) DestroySession(s xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count(xr.NameDestroySession)

	inst, ok := r.sessions[s]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	delete(r.instances[inst].sessions, s)
	delete(r.instances[inst].running, s)
	delete(r.sessions, s)
	return xr.Success
}

func (r *Runtime) BeginSession(s xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count(xr.NameBeginSession)

	inst, ok := r.sessions[s]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	r.instances[inst].running[s] = true
	return xr.Success
}

func (r *Runtime) RequestExitSession(s xr.Session) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count(xr.NameRequestExitSession)

	inst, ok := r.sessions[s]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	r.instances[inst].running[s] = false
	return xr.Success
}

func (r *Runtime) StringToPath(inst xr.Instance, s string, out *xr.Path) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count(xr.NameStringToPath)

	if _, ok := r.instances[inst]; !ok {
		return xr.ErrorHandleInvalid
	}
	if out == nil {
		return xr.ErrorValidationFailure
	}
	if !strings.HasPrefix(s, "/") || strings.HasSuffix(s, "/") || strings.Contains(s, "//") || len(s) >= xr.MaxPathLength {
		return xr.ErrorPathFormatInvalid
	}
	if p, ok := r.paths[s]; ok {
		*out = p
		return xr.Success
	}
	p := xr.Path(len(r.strs))
	r.strs = append(r.strs, s)
	r.paths[s] = p
	*out = p
	return xr.Success
}

func (r *Runtime) PathToString(inst xr.Instance, p xr.Path, capacity uint32, count *uint32, buf []byte) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count(xr.NamePathToString)

	if _, ok := r.instances[inst]; !ok {
		return xr.ErrorHandleInvalid
	}
	if count == nil {
		return xr.ErrorValidationFailure
	}
	if p == xr.NullPath || int(p) >= len(r.strs) {
		return xr.ErrorPathInvalid
	}
	s := r.strs[p]
	need := uint32(len(s) + 1)
	*count = need
	if capacity == 0 {
		return xr.Success
	}
	if capacity < need || uint32(len(buf)) < need {
		return xr.ErrorSizeInsufficient
	}
	copy(buf, s)
	buf[len(s)] = 0
	return xr.Success
}

// CreateActionSet mints a runtime-side action set handle.
func (r *Runtime) CreateActionSet(inst xr.Instance, _ *xr.ActionSetCreateInfo, out *xr.ActionSet) xr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.count(xr.NameCreateActionSet)

	if _, ok := r.instances[inst]; !ok {
		return xr.ErrorHandleInvalid
	}
	*out = xr.ActionSet(r.handle())
	return xr.Success
}

// Path interns s and returns its handle, for building test inputs.
func (r *Runtime) Path(inst xr.Instance, s string) xr.Path {
	var p xr.Path
	if res := r.StringToPath(inst, s, &p); res.Failed() {
		panic("xrfake: " + res.String() + ": " + s)
	}
	return p
}
