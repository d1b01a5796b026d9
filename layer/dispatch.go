package layer

import (
	"github.com/wippyai/xr-input-layer/errors"
	"github.com/wippyai/xr-input-layer/xr"
)

// interceptor returns the layer's implementation of one entry point.
type interceptor func(l *Layer) xr.Func

// Interception tables, one per handle kind of the first parameter.
var (
	instanceInterceptors = map[string]interceptor{
		xr.NameDestroyInstance:                   func(l *Layer) xr.Func { return xr.DestroyInstanceFunc(l.DestroyInstance) },
		xr.NameGetSystem:                         func(l *Layer) xr.Func { return xr.GetSystemFunc(l.GetSystem) },
		xr.NameCreateSession:                     func(l *Layer) xr.Func { return xr.CreateSessionFunc(l.CreateSession) },
		xr.NameCreateActionSet:                   func(l *Layer) xr.Func { return xr.CreateActionSetFunc(l.CreateActionSet) },
		xr.NameSuggestInteractionProfileBindings: func(l *Layer) xr.Func { return xr.SuggestInteractionProfileBindingsFunc(l.SuggestInteractionProfileBindings) },
	}
	sessionInterceptors = map[string]interceptor{
		xr.NameDestroySession:          func(l *Layer) xr.Func { return xr.DestroySessionFunc(l.DestroySession) },
		xr.NameAttachSessionActionSets: func(l *Layer) xr.Func { return xr.AttachSessionActionSetsFunc(l.AttachSessionActionSets) },
		xr.NameSyncActions:             func(l *Layer) xr.Func { return xr.SyncActionsFunc(l.SyncActions) },
		xr.NameGetActionStateBoolean:   func(l *Layer) xr.Func { return xr.GetActionStateBooleanFunc(l.GetActionStateBoolean) },
		xr.NameGetActionStateFloat:     func(l *Layer) xr.Func { return xr.GetActionStateFloatFunc(l.GetActionStateFloat) },
		xr.NameGetActionStateVector2f:  func(l *Layer) xr.Func { return xr.GetActionStateVector2fFunc(l.GetActionStateVector2f) },
		xr.NameGetActionStatePose:      func(l *Layer) xr.Func { return xr.GetActionStatePoseFunc(l.GetActionStatePose) },
	}
	actionSetInterceptors = map[string]interceptor{
		xr.NameDestroyActionSet: func(l *Layer) xr.Func { return xr.DestroyActionSetFunc(l.DestroyActionSet) },
		xr.NameCreateAction:     func(l *Layer) xr.Func { return xr.CreateActionFunc(l.CreateAction) },
	}
	actionInterceptors = map[string]interceptor{
		xr.NameDestroyAction: func(l *Layer) xr.Func { return xr.DestroyActionFunc(l.DestroyAction) },
	}
)

func findInterceptor(name string) (interceptor, bool) {
	for _, table := range []map[string]interceptor{
		instanceInterceptors,
		sessionInterceptors,
		actionSetInterceptors,
		actionInterceptors,
	} {
		if ic, ok := table[name]; ok {
			return ic, true
		}
	}
	return nil, false
}

// Intercepted reports whether the layer implements the named entry point
// itself rather than forwarding it.
func Intercepted(name string) bool {
	if name == xr.NameGetInstanceProcAddr {
		return true
	}
	_, ok := findInterceptor(name)
	return ok
}

// GetInstanceProcAddr resolves an entry point for instance. Intercepted
// names resolve to the layer's implementation; every other name is
// resolved by the next layer and returned unchanged.
func (l *Layer) GetInstanceProcAddr(instance xr.Instance, name string, fn *xr.Func) xr.Result {
	if fn == nil {
		return xr.ErrorValidationFailure
	}
	*fn = nil
	if name == xr.NameGetInstanceProcAddr {
		*fn = xr.GetInstanceProcAddrFunc(l.GetInstanceProcAddr)
		return xr.Success
	}
	if instance == xr.NullHandle {
		return xr.ErrorHandleInvalid
	}

	return l.withInstance(xr.NameGetInstanceProcAddr, instance, func(i *Instance) (xr.Result, error) {
		if ic, ok := findInterceptor(name); ok {
			*fn = ic(l)
			return xr.Success, nil
		}
		res := i.core.table.GetInstanceProcAddr(i.core.handle, name, fn)
		if res.Failed() {
			*fn = nil
			return res, errors.Forwarded(name, res)
		}
		return res, nil
	})
}

func (l *Layer) DestroyInstance(instance xr.Instance) xr.Result {
	return l.withInstance(xr.NameDestroyInstance, instance, func(i *Instance) (xr.Result, error) {
		return i.destroy()
	})
}

func (l *Layer) GetSystem(instance xr.Instance, info *xr.SystemGetInfo, id *xr.SystemID) xr.Result {
	return l.withInstance(xr.NameGetSystem, instance, func(i *Instance) (xr.Result, error) {
		return i.getSystem(info, id)
	})
}

func (l *Layer) CreateSession(instance xr.Instance, info *xr.SessionCreateInfo, session *xr.Session) xr.Result {
	return l.withInstance(xr.NameCreateSession, instance, func(i *Instance) (xr.Result, error) {
		return i.createSession(info, session)
	})
}

func (l *Layer) CreateActionSet(instance xr.Instance, info *xr.ActionSetCreateInfo, set *xr.ActionSet) xr.Result {
	return l.withInstance(xr.NameCreateActionSet, instance, func(i *Instance) (xr.Result, error) {
		return i.createActionSet(info, set)
	})
}

func (l *Layer) SuggestInteractionProfileBindings(instance xr.Instance, suggested *xr.InteractionProfileSuggestedBinding) xr.Result {
	return l.withInstance(xr.NameSuggestInteractionProfileBindings, instance, func(i *Instance) (xr.Result, error) {
		return i.suggest(suggested)
	})
}

func (l *Layer) DestroySession(session xr.Session) xr.Result {
	return l.withSession(xr.NameDestroySession, session, func(s *Session) (xr.Result, error) {
		return s.destroy()
	})
}

func (l *Layer) AttachSessionActionSets(session xr.Session, info *xr.SessionActionSetsAttachInfo) xr.Result {
	return l.withSession(xr.NameAttachSessionActionSets, session, func(s *Session) (xr.Result, error) {
		return s.attach(info)
	})
}

func (l *Layer) SyncActions(session xr.Session, info *xr.ActionsSyncInfo) xr.Result {
	return l.withSession(xr.NameSyncActions, session, func(s *Session) (xr.Result, error) {
		return s.sync(info)
	})
}

func (l *Layer) GetActionStateBoolean(session xr.Session, info *xr.ActionStateGetInfo, state *xr.ActionStateBoolean) xr.Result {
	return l.withSession(xr.NameGetActionStateBoolean, session, func(s *Session) (xr.Result, error) {
		return s.stateBoolean(info, state)
	})
}

func (l *Layer) GetActionStateFloat(session xr.Session, info *xr.ActionStateGetInfo, state *xr.ActionStateFloat) xr.Result {
	return l.withSession(xr.NameGetActionStateFloat, session, func(s *Session) (xr.Result, error) {
		return s.stateFloat(info, state)
	})
}

func (l *Layer) GetActionStateVector2f(session xr.Session, info *xr.ActionStateGetInfo, state *xr.ActionStateVector2f) xr.Result {
	return l.withSession(xr.NameGetActionStateVector2f, session, func(s *Session) (xr.Result, error) {
		return s.stateVector2f(info, state)
	})
}

func (l *Layer) GetActionStatePose(session xr.Session, info *xr.ActionStateGetInfo, state *xr.ActionStatePose) xr.Result {
	return l.withSession(xr.NameGetActionStatePose, session, func(s *Session) (xr.Result, error) {
		return s.statePose(info, state)
	})
}

func (l *Layer) CreateAction(set xr.ActionSet, info *xr.ActionCreateInfo, action *xr.Action) xr.Result {
	return l.withActionSet(xr.NameCreateAction, set, func(s *ActionSet) (xr.Result, error) {
		return s.createAction(set, info, action)
	})
}

func (l *Layer) DestroyActionSet(set xr.ActionSet) xr.Result {
	return l.withActionSet(xr.NameDestroyActionSet, set, func(s *ActionSet) (xr.Result, error) {
		return s.destroy(set)
	})
}

func (l *Layer) DestroyAction(action xr.Action) xr.Result {
	return l.withAction(xr.NameDestroyAction, action, func(a *Action) (xr.Result, error) {
		return a.destroy(action)
	})
}
