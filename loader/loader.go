// Package loader implements the negotiation through which a loader
// discovers the layer and chains it into an instance's call chain.
package loader

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/xr-input-layer/config"
	"github.com/wippyai/xr-input-layer/errors"
	"github.com/wippyai/xr-input-layer/layer"
	"github.com/wippyai/xr-input-layer/xr"
)

// StructureType tags the negotiation records.
type StructureType uint32

const (
	StructLoaderInfo      StructureType = 1
	StructAPILayerRequest StructureType = 2
)

const (
	// InterfaceVersion is the loader/layer interface version the layer speaks.
	InterfaceVersion = 1
	// StructVersion is the version of both negotiation records.
	StructVersion = 1
)

// LoaderInfo is the loader's half of the negotiation.
type LoaderInfo struct {
	StructType          StructureType
	StructVersion       uint32
	MinInterfaceVersion uint32
	MaxInterfaceVersion uint32
	MinAPIVersion       xr.Version
	MaxAPIVersion       xr.Version
}

// APILayerRequest is filled by the layer on successful negotiation.
type APILayerRequest struct {
	GetInstanceProcAddr    xr.GetInstanceProcAddrFunc
	CreateAPILayerInstance xr.CreateAPILayerInstanceFunc
	StructType             StructureType
	StructVersion          uint32
	LayerInterfaceVersion  uint32
	LayerAPIVersion        xr.Version
}

// Negotiator answers loader negotiation. The layer is built on the first
// successful negotiation and shared by every later one.
// Thread-safe.
type Negotiator struct {
	build func() (*layer.Layer, error)
	log   *zap.Logger
	layer *layer.Layer
	mu    sync.Mutex
}

// New creates a negotiator building its layer with build.
func New(build func() (*layer.Layer, error), log *zap.Logger) *Negotiator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Negotiator{build: build, log: log}
}

// FromEnv creates a negotiator configured from the file named by
// config.EnvVar.
func FromEnv() (*Negotiator, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	log, _, err := cfg.Logger()
	if err != nil {
		return nil, err
	}
	layer.SetLogger(log)
	return New(func() (*layer.Layer, error) {
		return layer.New(layer.Options{Logger: log, Config: cfg}), nil
	}, log), nil
}

// Layer returns the negotiated layer, or nil before the first success.
func (n *Negotiator) Layer() *layer.Layer {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.layer
}

// Negotiate checks the loader's records and fills req with the layer's
// entry points. Any mismatch reports initialization failed and a panic
// reports runtime failure.
func (n *Negotiator) Negotiate(info *LoaderInfo, layerName string, req *APILayerRequest) (res xr.Result) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("layer negotiation panicked", zap.Any("panic", r), zap.Stack("stack"))
			res = xr.ErrorRuntimeFailure
		}
	}()

	n.log.Info("initializing layer", zap.String("layer", layerName))
	if err := n.negotiate(info, layerName, req); err != nil {
		n.log.Error("layer negotiation failed", zap.Error(err))
		return errors.ResultOf(err)
	}
	n.log.Debug("negotiation complete",
		zap.Uint32("interface_version", req.LayerInterfaceVersion),
		zap.Stringer("api_version", req.LayerAPIVersion))
	return xr.Success
}

func (n *Negotiator) negotiate(info *LoaderInfo, layerName string, req *APILayerRequest) error {
	fail := func(format string, args ...any) error {
		return errors.New(errors.PhaseNegotiate, errors.KindInitializationFailed).Detail(format, args...).Build()
	}

	switch {
	case info == nil || req == nil:
		return fail("missing negotiation records")
	case info.StructType != StructLoaderInfo || info.StructVersion != StructVersion:
		return fail("unexpected loader info %d v%d", info.StructType, info.StructVersion)
	case req.StructType != StructAPILayerRequest || req.StructVersion != StructVersion:
		return fail("unexpected layer request %d v%d", req.StructType, req.StructVersion)
	case layerName != layer.Name:
		return fail("incorrect layer name %q", layerName)
	case info.MinInterfaceVersion > InterfaceVersion || info.MaxInterfaceVersion < InterfaceVersion:
		return fail("interface versions [%d,%d] exclude %d",
			info.MinInterfaceVersion, info.MaxInterfaceVersion, InterfaceVersion)
	case info.MinAPIVersion > xr.CurrentAPIVersion || info.MaxAPIVersion < xr.CurrentAPIVersion:
		return fail("api versions [%s,%s] exclude %s",
			info.MinAPIVersion, info.MaxAPIVersion, xr.CurrentAPIVersion)
	}

	l, err := n.ensureLayer()
	if err != nil {
		return errors.Wrap(errors.PhaseNegotiate, errors.KindInitializationFailed, err, "build layer")
	}

	req.LayerInterfaceVersion = InterfaceVersion
	req.LayerAPIVersion = xr.CurrentAPIVersion
	req.GetInstanceProcAddr = l.GetInstanceProcAddr
	req.CreateAPILayerInstance = l.CreateAPILayerInstance
	return nil
}

func (n *Negotiator) ensureLayer() (*layer.Layer, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.layer != nil {
		return n.layer, nil
	}
	l, err := n.build()
	if err != nil {
		return nil, err
	}
	n.layer = l
	return l, nil
}
