package layer

import (
	"strings"
	"weak"

	"go.uber.org/zap"

	"github.com/wippyai/xr-input-layer/input"
	"github.com/wippyai/xr-input-layer/resource"
	"github.com/wippyai/xr-input-layer/xr"
)

// Action wraps the input actions of one declared action.
type Action struct {
	instance weak.Pointer[Instance]
	core     *instanceCore
	layer    *Layer
	sub      subActions
	name     string
	typ      xr.ActionType
	set      xr.ActionSet
}

func (a *Action) owner() *instanceCore { return a.core }

func (a *Action) Name() string           { return a.name }
func (a *Action) Type() xr.ActionType     { return a.typ }
func (a *Action) ActionSet() xr.ActionSet { return a.set }

// subActions is either a singleAction or a perPathActions.
type subActions interface {
	// lookup selects the input action queried with a subaction path.
	lookup(path xr.Path) (input.Action, bool)
	// targets returns the input actions a binding path drives.
	targets(binding string) []input.Action
	isSubActions()
}

// singleAction is an action declared without subaction paths.
type singleAction struct {
	action input.Action
}

func (s singleAction) lookup(path xr.Path) (input.Action, bool) {
	return s.action, path == xr.NullPath
}

func (s singleAction) targets(string) []input.Action {
	return []input.Action{s.action}
}

type subAction struct {
	action input.Action
	name   string
	path   xr.Path
}

// perPathActions holds one input action per declared subaction path, in
// declaration order.
type perPathActions []subAction

func (p perPathActions) lookup(path xr.Path) (input.Action, bool) {
	if path == xr.NullPath {
		return nil, false
	}
	for _, s := range p {
		if s.path == path {
			return s.action, true
		}
	}
	return nil, false
}

func (p perPathActions) targets(binding string) []input.Action {
	var out []input.Action
	for _, s := range p {
		if binding == s.name || strings.HasPrefix(binding, s.name+"/") {
			out = append(out, s.action)
		}
	}
	return out
}

func (singleAction) isSubActions()   {}
func (perPathActions) isSubActions() {}

func (a *Action) destroy(h xr.Action) (xr.Result, error) {
	if idx, ok := resource.IndexFromBits(uint64(h)); ok {
		a.layer.actions.Remove(idx)
	}
	if set, ok := a.layer.actionSets.Lookup(uint64(a.set)); ok {
		set.releaseActionName(a.name, h)
	}
	a.core.log.Debug("action destroyed", zap.String("name", a.name))
	return xr.Success, nil
}
