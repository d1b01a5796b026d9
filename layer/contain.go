package layer

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/xr-input-layer/errors"
	"github.com/wippyai/xr-input-layer/xr"
)

// instanceCore is the part of an instance shared by all of its
// descendants: the next-layer table and the poison flag.
type instanceCore struct {
	table    *xr.Table
	log      *zap.Logger
	handle   xr.Instance
	poisoned atomic.Bool
}

// Poisoned reports whether a fault has poisoned the instance.
func (c *instanceCore) Poisoned() bool { return c.poisoned.Load() }

// owned is implemented by every wrapper tied to an instance.
type owned interface {
	owner() *instanceCore
}

// contain runs body as the intercepted call named call. found reports
// whether the handle resolved to w.
//
// An unresolved handle reports handle invalid and a poisoned owner
// reports instance lost without running body. A panic in body poisons the
// owner and reports instance lost. Errors returned by body map through
// errors.ResultOf and never poison.
func contain[W owned](call string, w W, found bool, body func(W) (xr.Result, error)) (res xr.Result) {
	if !found {
		Logger().Debug("call on unknown handle", zap.String("call", call))
		return xr.ErrorHandleInvalid
	}
	core := w.owner()
	if core.poisoned.Load() {
		return xr.ErrorInstanceLost
	}

	defer func() {
		if r := recover(); r != nil {
			core.poisoned.Store(true)
			core.log.Error("intercepted call panicked, instance poisoned",
				zap.String("call", call),
				zap.Any("panic", r),
				zap.Stack("stack"))
			res = xr.ErrorInstanceLost
		}
	}()

	res, err := body(w)
	if err != nil {
		res = errors.ResultOf(err)
		core.log.Debug("call declined",
			zap.String("call", call),
			zap.Stringer("result", res),
			zap.Error(err))
	}
	return res
}

func (l *Layer) withInstance(call string, h xr.Instance, body func(*Instance) (xr.Result, error)) xr.Result {
	inst, ok := l.instances.Get(h)
	return contain(call, inst, ok, body)
}

func (l *Layer) withSession(call string, h xr.Session, body func(*Session) (xr.Result, error)) xr.Result {
	s, ok := l.sessions.Get(h)
	return contain(call, s, ok, body)
}

func (l *Layer) withActionSet(call string, h xr.ActionSet, body func(*ActionSet) (xr.Result, error)) xr.Result {
	set, ok := l.actionSets.Lookup(uint64(h))
	return contain(call, set, ok, body)
}

func (l *Layer) withAction(call string, h xr.Action, body func(*Action) (xr.Result, error)) xr.Result {
	a, ok := l.actions.Lookup(uint64(h))
	return contain(call, a, ok, body)
}
