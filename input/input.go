// Package input declares the device-agnostic input runtime the layer
// translates into.
//
// The layer only talks to the runtime through these interfaces. Actions are
// declared in action sets, an application instance is built from the
// declared sets and the suggested bindings, and a session started from it
// produces synchronized action state.
package input

import "errors"

var (
	ErrPathUnsupported  = errors.New("input: path not supported")
	ErrPathInvalid      = errors.New("input: path invalid")
	ErrUnknownActionSet = errors.New("input: action set not part of the application instance")
	ErrUnknownAction    = errors.New("input: action not part of the application instance")
	ErrSessionActive    = errors.New("input: session already started")
	ErrKindMismatch     = errors.New("input: binding source does not match action kind")
)

// Path is a path interned in the input runtime's own path space.
type Path uint32

// Loader loads an input runtime.
type Loader func() (Runtime, error)

// Runtime is the entry point of the input runtime.
type Runtime interface {
	// CreateInstance creates an instance for the named application.
	CreateInstance(name string) (Instance, error)
	// Path resolves a path string in the runtime's path space.
	Path(path string) (Path, error)
	// PathString returns the string a path was created from.
	PathString(p Path) (string, bool)
}

// Instance holds the action declarations of one application.
type Instance interface {
	Name() string
	CreateActionSet(name string, priority uint32) (ActionSet, error)
	// CreateApplicationInstance freezes the declared sets and bindings.
	CreateApplicationInstance(sets []ActionSet, bindings []ProfileBindings) (ApplicationInstance, error)
}

// ActionSet groups actions that are synchronized together.
type ActionSet interface {
	Name() string
	Priority() uint32
	CreateAction(name string, kind ValueKind) (Action, error)
}

// Action is a single input or output declared by the application.
type Action interface {
	Name() string
	Kind() ValueKind
	ActionSet() ActionSet
}

// ApplicationInstance is the frozen set of actions and bindings.
type ApplicationInstance interface {
	// TryBeginSession starts the single session of the application instance.
	TryBeginSession() (Session, error)
}

// Session produces action state.
type Session interface {
	// Sync updates the state of every action in sets.
	Sync(sets []ActionSet) error
	// State returns the state computed by the latest Sync.
	State(action Action) (State, error)
}

// Driver feeds device input into sessions.
type Driver interface {
	// AddSession binds session to the device source identified by handle.
	AddSession(handle uint64, session Session) error
	// RemoveSession unbinds the session added under handle, if any.
	RemoveSession(handle uint64)
}
