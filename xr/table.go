package xr

import "fmt"

// ResultError is a failed call into the layer or runtime below.
type ResultError struct {
	Err    error
	Call   string
	Result Result
}

func (e *ResultError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Call, e.Result, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Call, e.Result)
}

func (e *ResultError) Unwrap() error { return e.Err }

// Check returns a *ResultError when r is an error code.
func Check(call string, r Result) error {
	if r.Failed() {
		return &ResultError{Call: call, Result: r}
	}
	return nil
}

// Table is the set of next-layer entry points the layer calls itself.
// Everything else is forwarded by handing out the next layer's function unchanged.
type Table struct {
	GetInstanceProcAddr   GetInstanceProcAddrFunc
	DestroyInstance       DestroyInstanceFunc
	GetInstanceProperties GetInstancePropertiesFunc
	GetSystem             GetSystemFunc
	CreateSession         CreateSessionFunc
	DestroySession        DestroySessionFunc
	StringToPath          StringToPathFunc
	PathToString          PathToStringFunc
}

// LoadTable resolves the table for instance through gipa.
func LoadTable(gipa GetInstanceProcAddrFunc, instance Instance) (*Table, error) {
	if gipa == nil {
		return nil, &ResultError{Call: NameGetInstanceProcAddr, Result: ErrorFunctionUnsupported}
	}
	t := &Table{GetInstanceProcAddr: gipa}

	var err error
	load := func(name string, dst func(Func) bool) {
		if err != nil {
			return
		}
		var fn Func
		if r := gipa(instance, name, &fn); r.Failed() {
			err = &ResultError{Call: name, Result: r}
			return
		}
		if fn == nil || !dst(fn) {
			err = &ResultError{Call: name, Result: ErrorFunctionUnsupported,
				Err: fmt.Errorf("unexpected entry point type %T", fn)}
		}
	}

	load(NameDestroyInstance, func(fn Func) (ok bool) { t.DestroyInstance, ok = fn.(DestroyInstanceFunc); return })
	load(NameGetInstanceProperties, func(fn Func) (ok bool) { t.GetInstanceProperties, ok = fn.(GetInstancePropertiesFunc); return })
	load(NameGetSystem, func(fn Func) (ok bool) { t.GetSystem, ok = fn.(GetSystemFunc); return })
	load(NameCreateSession, func(fn Func) (ok bool) { t.CreateSession, ok = fn.(CreateSessionFunc); return })
	load(NameDestroySession, func(fn Func) (ok bool) { t.DestroySession, ok = fn.(DestroySessionFunc); return })
	load(NameStringToPath, func(fn Func) (ok bool) { t.StringToPath, ok = fn.(StringToPathFunc); return })
	load(NamePathToString, func(fn Func) (ok bool) { t.PathToString, ok = fn.(PathToStringFunc); return })

	if err != nil {
		return nil, err
	}
	return t, nil
}

// PathString converts path to its string form using the two-call
// buffer protocol: query the required size, then fill.
func PathString(t *Table, instance Instance, path Path) (string, error) {
	var count uint32
	if r := t.PathToString(instance, path, 0, &count, nil); r.Failed() {
		return "", &ResultError{Call: NamePathToString, Result: r}
	}
	if count == 0 {
		return "", &ResultError{Call: NamePathToString, Result: ErrorPathInvalid}
	}

	buf := make([]byte, count)
	if r := t.PathToString(instance, path, count, &count, buf); r.Failed() {
		return "", &ResultError{Call: NamePathToString, Result: r}
	}
	if int(count) > len(buf) {
		return "", &ResultError{Call: NamePathToString, Result: ErrorSizeInsufficient}
	}

	s, err := CString(buf[:count])
	if err != nil {
		return "", &ResultError{Call: NamePathToString, Result: ErrorValidationFailure, Err: err}
	}
	return s, nil
}
