package layer

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/xr-input-layer/binding"
	"github.com/wippyai/xr-input-layer/errors"
	"github.com/wippyai/xr-input-layer/resource"
	"github.com/wippyai/xr-input-layer/xr"
)

// CreateAPILayerInstance creates an instance through the rest of the
// layer chain and registers the layer's wrapper for it. On failure nothing
// stays registered. A panic reports runtime failure, as no instance exists
// yet to poison.
func (l *Layer) CreateAPILayerInstance(info *xr.InstanceCreateInfo, layerInfo *xr.APILayerCreateInfo, out *xr.Instance) (res xr.Result) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("instance creation panicked",
				zap.Any("panic", r),
				zap.Stack("stack"))
			res = xr.ErrorRuntimeFailure
		}
	}()

	res, err := l.createInstance(info, layerInfo, out)
	if err != nil {
		l.log.Error("instance creation failed", zap.Error(err))
		return errors.ResultOf(err)
	}
	return res
}

func (l *Layer) createInstance(info *xr.InstanceCreateInfo, layerInfo *xr.APILayerCreateInfo, out *xr.Instance) (xr.Result, error) {
	if info == nil || layerInfo == nil || layerInfo.NextInfo == nil || out == nil {
		return 0, errors.Validation(errors.PhaseInstance, "missing instance create info", nil)
	}
	next := layerInfo.NextInfo

	layerName, err := xr.CString(next.LayerName[:])
	if err != nil {
		return 0, errors.Validation(errors.PhaseInstance, "layer name", err)
	}
	if layerName != Name {
		return 0, errors.New(errors.PhaseInstance, errors.KindValidation).
			Value(layerName).Detail("incorrect layer name %q", layerName).Build()
	}
	app, err := xr.CString(info.ApplicationInfo.ApplicationName[:])
	if err != nil {
		return 0, errors.Validation(errors.PhaseInstance, "application name", err)
	}
	if next.NextGetInstanceProcAddr == nil || next.NextCreateAPILayerInstance == nil {
		return 0, errors.Validation(errors.PhaseInstance, "incomplete layer chain", nil)
	}

	chained := *layerInfo
	chained.NextInfo = next.Next
	res := next.NextCreateAPILayerInstance(info, &chained, out)
	if res.Failed() {
		return res, errors.Forwarded(xr.NameCreateAPILayerInstance, res)
	}
	handle := *out

	inst, err := l.buildInstance(handle, app, next.NextGetInstanceProcAddr)
	if err == nil && !l.instances.InsertNew(handle, inst) {
		err = errors.New(errors.PhaseInstance, errors.KindRuntimeFailure).
			Value(uint64(handle)).Detail("instance %#x already registered", uint64(handle)).Build()
	}
	if err != nil {
		destroyForeign(next.NextGetInstanceProcAddr, handle)
		*out = xr.NullHandle
		return 0, err
	}

	inst.core.log.Info("instance created", zap.String("application", app))
	return res, nil
}

func (l *Layer) buildInstance(handle xr.Instance, app string, gipa xr.GetInstanceProcAddrFunc) (*Instance, error) {
	table, err := xr.LoadTable(gipa, handle)
	if err != nil {
		return nil, err
	}

	var props xr.InstanceProperties
	if res := table.GetInstanceProperties(handle, &props); res.Failed() {
		return nil, errors.Forwarded(xr.NameGetInstanceProperties, res)
	}
	runtimeName, err := xr.CString(props.RuntimeName[:])
	if err != nil {
		return nil, errors.Validation(errors.PhaseInstance, "runtime name", err)
	}
	runtime := ClassifyRuntime(runtimeName)

	rt, err := l.loadInput()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseInput, errors.KindInitializationFailed, err, "load input runtime")
	}
	inputInst, err := rt.CreateInstance(app)
	if err != nil {
		return nil, inputError("create input instance", err)
	}
	driver, err := l.newDriver(handle, table, rt)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseInput, errors.KindInitializationFailed, err, "create input driver")
	}

	id := uuid.New()
	core := &instanceCore{
		table:  table,
		handle: handle,
		log: l.log.With(
			zap.String("instance_id", id.String()),
			zap.Uint64("instance", uint64(handle)),
			zap.Stringer("runtime", runtime)),
	}
	return &Instance{
		core:        core,
		layer:       l,
		systems:     resource.NewRegistry[xr.SystemID, SystemMeta](),
		sessions:    resource.NewRegistry[xr.Session, *Session](),
		input:       rt,
		inputInst:   inputInst,
		driver:      driver,
		bindings:    binding.NewStore(),
		setNames:    make(map[string]xr.ActionSet),
		application: app,
		runtime:     runtime,
		id:          id,
	}, nil
}

// destroyForeign destroys an instance the next layer created but the
// layer could not wrap.
func destroyForeign(gipa xr.GetInstanceProcAddrFunc, handle xr.Instance) {
	var fn xr.Func
	if res := gipa(handle, xr.NameDestroyInstance, &fn); res.Failed() {
		return
	}
	if destroy, ok := fn.(xr.DestroyInstanceFunc); ok {
		destroy(handle)
	}
}
