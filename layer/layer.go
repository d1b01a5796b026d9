// Package layer implements the interception layer.
//
// A Layer sits between an application and the next layer of an XR call
// chain. It forwards most entry points unchanged and intercepts the
// system, session and action lifecycle to build its own object graph:
// instances and sessions are keyed by the handles the runtime below
// issued, action sets and actions get handles minted from generational
// arenas. Actions are translated into an input runtime that evaluates the
// suggested bindings.
//
// Every intercepted call runs inside a fault boundary. A panic poisons the
// owning instance, and from then on every call against it or its
// descendants reports instance lost.
package layer

import (
	stderrors "errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/xr-input-layer/config"
	"github.com/wippyai/xr-input-layer/errors"
	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/input/local"
	"github.com/wippyai/xr-input-layer/resource"
	"github.com/wippyai/xr-input-layer/xr"
)

// Name is the layer name registered with the loader.
const Name = "XR_APILAYER_SORENON_suinput_layer"

// DriverFactory creates the input driver of a new instance.
type DriverFactory func(instance xr.Instance, table *xr.Table, rt input.Runtime) (input.Driver, error)

// Options configures a Layer.
type Options struct {
	Logger *zap.Logger
	Config *config.Config
	// InputLoader loads the input runtime of each new instance. It
	// defaults to one in-process runtime shared by all instances.
	InputLoader input.Loader
	// NewDriver defaults to an in-process driver, which requires the
	// in-process input runtime.
	NewDriver DriverFactory
}

// Layer owns the registries and arenas of every object it created.
// Thread-safe.
type Layer struct {
	log        *zap.Logger
	cfg        *config.Config
	loadInput  input.Loader
	newDriver  DriverFactory
	instances  *resource.Registry[xr.Instance, *Instance]
	sessions   *resource.Registry[xr.Session, *Session]
	actionSets *resource.Arena[*ActionSet]
	actions    *resource.Arena[*Action]
}

// New creates a layer.
func New(opts Options) *Layer {
	if opts.Logger == nil {
		opts.Logger = Logger()
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.InputLoader == nil {
		opts.InputLoader = local.New(local.Options{Profiles: opts.Config.Input.Profiles}).Loader()
	}
	if opts.NewDriver == nil {
		opts.NewDriver = localDriver
	}
	return &Layer{
		log:        opts.Logger,
		cfg:        opts.Config,
		loadInput:  opts.InputLoader,
		newDriver:  opts.NewDriver,
		instances:  resource.NewRegistry[xr.Instance, *Instance](),
		sessions:   resource.NewRegistry[xr.Session, *Session](),
		actionSets: resource.NewArena[*ActionSet](),
		actions:    resource.NewArena[*Action](),
	}
}

func localDriver(_ xr.Instance, _ *xr.Table, rt input.Runtime) (input.Driver, error) {
	lrt, ok := rt.(*local.Runtime)
	if !ok {
		return nil, fmt.Errorf("no default driver for input runtime %T", rt)
	}
	return local.NewDriver(lrt), nil
}

// Instance returns the wrapper registered for a foreign instance handle.
func (l *Layer) Instance(h xr.Instance) (*Instance, bool) {
	return l.instances.Get(h)
}

// Session returns the wrapper registered for a foreign session handle.
func (l *Layer) Session(h xr.Session) (*Session, bool) {
	return l.sessions.Get(h)
}

// Stats reports the number of live objects per kind.
type Stats struct {
	Instances  int
	Sessions   int
	ActionSets int
	Actions    int
}

func (l *Layer) Stats() Stats {
	return Stats{
		Instances:  l.instances.Len(),
		Sessions:   l.sessions.Len(),
		ActionSets: l.actionSets.Len(),
		Actions:    l.actions.Len(),
	}
}

// inputError maps an input runtime failure into a layer error.
func inputError(detail string, err error) error {
	switch {
	case stderrors.Is(err, input.ErrPathUnsupported):
		return errors.Wrap(errors.PhaseInput, errors.KindPathUnsupported, err, detail)
	case stderrors.Is(err, input.ErrPathInvalid):
		return errors.Wrap(errors.PhaseInput, errors.KindPathInvalid, err, detail)
	case stderrors.Is(err, input.ErrUnknownActionSet):
		return errors.Wrap(errors.PhaseInput, errors.KindNotAttached, err, detail)
	case stderrors.Is(err, input.ErrUnknownAction):
		return errors.Wrap(errors.PhaseInput, errors.KindHandleInvalid, err, detail)
	case stderrors.Is(err, input.ErrKindMismatch):
		return errors.Wrap(errors.PhaseInput, errors.KindValidation, err, detail)
	default:
		return errors.Wrap(errors.PhaseInput, errors.KindRuntimeFailure, err, detail)
	}
}
