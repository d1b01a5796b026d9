// Package local is an in-process input runtime.
//
// It keeps its own path space, evaluates suggested bindings against raw
// device values pushed through a Driver, and tracks per-action changes
// between syncs. The layer uses it when no other input runtime is
// configured, and the simulator drives it from the keyboard.
package local

import (
	"strings"
	"sync"
	"time"

	"github.com/wippyai/xr-input-layer/input"
)

const profilePrefix = "/interaction_profiles/"

// DefaultProfiles are the interaction profiles accepted when none are configured.
var DefaultProfiles = []string{
	"/interaction_profiles/khr/simple_controller",
	"/interaction_profiles/valve/index_controller",
	"/interaction_profiles/oculus/touch_controller",
	"/interaction_profiles/htc/vive_controller",
	"/interaction_profiles/microsoft/motion_controller",
}

// Options configures a Runtime.
type Options struct {
	// Clock returns the current time in nanoseconds.
	Clock func() int64
	// Profiles lists the supported interaction profile paths.
	Profiles []string
}

// Runtime implements input.Runtime.
// Thread-safe.
type Runtime struct {
	clock    func() int64
	profiles map[string]bool
	paths    map[string]input.Path
	strs     []string
	mu       sync.RWMutex
}

var _ input.Runtime = (*Runtime)(nil)

// New creates a runtime.
func New(opts Options) *Runtime {
	if opts.Clock == nil {
		opts.Clock = func() int64 { return time.Now().UnixNano() }
	}
	if len(opts.Profiles) == 0 {
		opts.Profiles = DefaultProfiles
	}
	rt := &Runtime{
		clock:    opts.Clock,
		profiles: make(map[string]bool, len(opts.Profiles)),
		paths:    make(map[string]input.Path),
		strs:     []string{""},
	}
	for _, p := range opts.Profiles {
		rt.profiles[p] = true
	}
	return rt
}

// Loader returns an input.Loader that always yields rt.
func (rt *Runtime) Loader() input.Loader {
	return func() (input.Runtime, error) { return rt, nil }
}

// CreateInstance implements input.Runtime.
func (rt *Runtime) CreateInstance(name string) (input.Instance, error) {
	return &Instance{rt: rt, name: name}, nil
}

// Path implements input.Runtime.
func (rt *Runtime) Path(path string) (input.Path, error) {
	rt.mu.RLock()
	p, ok := rt.paths[path]
	rt.mu.RUnlock()
	if ok {
		return p, nil
	}

	if !wellFormed(path) {
		return 0, input.ErrPathInvalid
	}
	if strings.HasPrefix(path, profilePrefix) && !rt.profiles[path] {
		return 0, input.ErrPathUnsupported
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()
	if p, ok := rt.paths[path]; ok {
		return p, nil
	}
	p = input.Path(len(rt.strs))
	rt.strs = append(rt.strs, path)
	rt.paths[path] = p
	return p, nil
}

// PathString implements input.Runtime.
func (rt *Runtime) PathString(p input.Path) (string, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	if p == 0 || int(p) >= len(rt.strs) {
		return "", false
	}
	return rt.strs[p], true
}

// lookup resolves an already interned path without creating it.
func (rt *Runtime) lookup(path string) (input.Path, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	p, ok := rt.paths[path]
	return p, ok
}

func wellFormed(path string) bool {
	if len(path) < 2 || len(path) >= 256 || path[0] != '/' || path[len(path)-1] == '/' {
		return false
	}
	for _, seg := range strings.Split(path[1:], "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
		for _, c := range seg {
			switch {
			case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
			default:
				return false
			}
		}
	}
	return true
}
