package local

import (
	"math"

	"github.com/wippyai/xr-input-layer/input"
)

// bindingState is the hysteresis memory of one threshold or dpad binding.
type bindingState struct {
	locked  input.Direction
	on      bool
	pressed bool
}

// evaluate computes the value of act from its bindings. Caller holds s.mu.
func (s *Session) evaluate(act *Action) (input.Value, bool) {
	out := zero(act.kind)
	if s.driver == nil || act.kind == input.KindHaptic {
		return out, false
	}

	active := false
	for _, b := range s.app.bindings[act] {
		raw, ok := s.driver.value(b.Source())
		if !ok {
			continue
		}

		var v input.Value
		switch b := b.(type) {
		case *input.SimpleBinding:
			v, ok = coerce(raw, act.kind)
		case *input.AnalogThresholdBinding:
			v, ok = s.threshold(act, b, raw), true
		case *input.DPadBinding:
			v, ok = s.dpad(act, b, raw)
		default:
			ok = false
		}
		if !ok {
			continue
		}

		out = combine(out, v, !active)
		active = true
	}
	return out, active
}

func (s *Session) stateOf(b input.Binding) *bindingState {
	st, ok := s.eval[b]
	if !ok {
		st = &bindingState{}
		s.eval[b] = st
	}
	return st
}

func (s *Session) threshold(act *Action, b *input.AnalogThresholdBinding, raw input.Value) input.Value {
	st := s.stateOf(b)
	f := scalar(raw)
	switch {
	case !st.on && f >= b.On:
		st.on = true
		s.haptic(act, b.OnHaptic)
	case st.on && f <= b.Off:
		st.on = false
		s.haptic(act, b.OffHaptic)
	}
	return input.BoolValue(st.on)
}

func (s *Session) dpad(act *Action, b *input.DPadBinding, raw input.Value) (input.Value, bool) {
	if raw.Kind != input.KindAxis2d {
		return input.Value{}, false
	}
	st := s.stateOf(b)
	force := s.dpadForce(b.Path, raw.Axis2d)

	wasPressed := st.pressed
	if st.pressed {
		st.pressed = force > b.Params.ForceThresholdReleased
	} else {
		st.pressed = force >= b.Params.ForceThreshold
	}

	switch {
	case st.pressed && !wasPressed:
		st.locked = wedgeOf(raw.Axis2d, b.Params)
	case !st.pressed:
		st.locked = 0
	}

	on := false
	if st.pressed {
		if b.Params.Sticky {
			on = st.locked == b.Direction
		} else {
			on = inWedge(b.Direction, raw.Axis2d, b.Params)
		}
	}

	if on != st.on {
		st.on = on
		if on {
			s.haptic(act, b.Params.OnHaptic)
		} else {
			s.haptic(act, b.Params.OffHaptic)
		}
	}
	return input.BoolValue(on), true
}

// dpadForce reads the force or click component next to a two-axis source,
// falling back to the deflection of the source itself.
func (s *Session) dpadForce(source input.Path, v input.Axis2d) float32 {
	rt := s.app.instance.rt
	if str, ok := rt.PathString(source); ok {
		for _, suffix := range []string{"/force", "/click"} {
			p, ok := rt.lookup(str + suffix)
			if !ok {
				continue
			}
			if raw, ok := s.driver.value(p); ok {
				return scalar(raw)
			}
		}
	}
	return v.Magnitude()
}

func (s *Session) haptic(act *Action, h *input.Haptic) {
	if h == nil || s.driver == nil {
		return
	}
	s.driver.emit(HapticEvent{Haptic: *h, Action: act.name, Session: s.handle})
}

var wedgeOrder = []input.Direction{
	input.DirectionCenter,
	input.DirectionUp,
	input.DirectionDown,
	input.DirectionLeft,
	input.DirectionRight,
}

func wedgeOf(v input.Axis2d, p input.DPadParams) input.Direction {
	for _, d := range wedgeOrder {
		if inWedge(d, v, p) {
			return d
		}
	}
	return 0
}

func inWedge(d input.Direction, v input.Axis2d, p input.DPadParams) bool {
	if v.Magnitude() < p.CenterRegion {
		return d == input.DirectionCenter
	}
	if d == input.DirectionCenter {
		return false
	}
	angle := math.Atan2(float64(v.Y), float64(v.X))
	diff := math.Abs(math.Remainder(angle-directionAngle(d), 2*math.Pi))
	return diff <= float64(p.WedgeAngle)/2
}

func directionAngle(d input.Direction) float64 {
	switch d {
	case input.DirectionUp:
		return math.Pi / 2
	case input.DirectionDown:
		return -math.Pi / 2
	case input.DirectionLeft:
		return math.Pi
	default:
		return 0
	}
}

func scalar(v input.Value) float32 {
	switch v.Kind {
	case input.KindBoolean:
		if v.Bool {
			return 1
		}
		return 0
	case input.KindAxis1d:
		return v.Axis1d
	case input.KindAxis2d:
		return v.Axis2d.Magnitude()
	default:
		return 0
	}
}

// coerce converts a raw device value to the value type of an action.
func coerce(raw input.Value, kind input.ValueKind) (input.Value, bool) {
	switch kind {
	case input.KindBoolean:
		switch raw.Kind {
		case input.KindBoolean:
			return raw, true
		case input.KindAxis1d, input.KindAxis2d:
			return input.BoolValue(scalar(raw) >= 0.5), true
		}
	case input.KindAxis1d:
		switch raw.Kind {
		case input.KindBoolean, input.KindAxis1d, input.KindAxis2d:
			return input.Axis1dValue(scalar(raw)), true
		}
	case input.KindAxis2d:
		if raw.Kind == input.KindAxis2d {
			return raw, true
		}
	case input.KindPose:
		return input.PoseValue(), true
	}
	return input.Value{}, false
}

// combine merges the value of one more binding into acc.
func combine(acc, v input.Value, first bool) input.Value {
	if first {
		return v
	}
	switch acc.Kind {
	case input.KindBoolean:
		acc.Bool = acc.Bool || v.Bool
	case input.KindAxis1d:
		if abs(v.Axis1d) > abs(acc.Axis1d) {
			acc.Axis1d = v.Axis1d
		}
	case input.KindAxis2d:
		if v.Axis2d.Magnitude() > acc.Axis2d.Magnitude() {
			acc.Axis2d = v.Axis2d
		}
	}
	return acc
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
