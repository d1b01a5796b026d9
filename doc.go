// Package xrinputlayer is an API layer that sits between an XR application
// and its runtime and takes over the action system, translating actions,
// action sets and suggested bindings into an input runtime of its own.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct responsibilities:
//
//	xrinputlayer/
//	├── xr/              Handles, records, result codes and the next-layer function table
//	├── errors/          Structured error types mapped onto result codes
//	├── resource/        Sharded handle registry and generational arena
//	├── input/           Input runtime contract: actions, values, bindings
//	│   └── local/       In-process input runtime and device driver
//	├── binding/         Suggested binding translation, binding store and snapshots
//	├── config/          YAML configuration and logger construction
//	├── layer/           Interception of entry points, instance/session/action lifecycle
//	├── loader/          Loader negotiation
//	└── cmd/xrlayer-sim/ Simulator CLI and TUI
//
// # Quick Start
//
// A loader negotiates with the layer and receives its entry points:
//
//	n, err := loader.FromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	var req loader.APILayerRequest
//	req.StructType = loader.StructAPILayerRequest
//	req.StructVersion = loader.StructVersion
//	if res := n.Negotiate(info, layer.Name, &req); res.Failed() {
//	    log.Fatal(res)
//	}
//
// Every later call reaches the layer through req.GetInstanceProcAddr. Names
// the layer does not intercept resolve to the next layer unchanged.
//
// # Fault Containment
//
// Every intercepted call runs under a recover. A panic poisons the instance
// the call belongs to: that call and every later call on the instance or its
// children report XR_ERROR_INSTANCE_LOST. Other instances keep working.
//
// # Thread Safety
//
// The layer, its registries and the input runtime are safe for concurrent
// use. Attaching action sets to a session happens exactly once even when
// raced from several goroutines.
package xrinputlayer
