package input

import (
	"fmt"
	"math"
)

// ValueKind is the value type of an action.
type ValueKind uint8

const (
	KindBoolean ValueKind = iota + 1
	KindAxis1d
	KindAxis2d
	KindPose
	KindHaptic
)

func (k ValueKind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindAxis1d:
		return "axis1d"
	case KindAxis2d:
		return "axis2d"
	case KindPose:
		return "pose"
	case KindHaptic:
		return "haptic"
	default:
		return "unknown"
	}
}

// Axis2d is a two-axis value such as a thumbstick position.
type Axis2d struct {
	X float32
	Y float32
}

// Magnitude returns the length of the vector.
func (a Axis2d) Magnitude() float32 {
	return float32(math.Hypot(float64(a.X), float64(a.Y)))
}

// Value is a tagged action or device value.
// Only the field selected by Kind is meaningful.
type Value struct {
	Axis2d Axis2d
	Axis1d float32
	Kind   ValueKind
	Bool   bool
}

func BoolValue(b bool) Value      { return Value{Kind: KindBoolean, Bool: b} }
func Axis1dValue(f float32) Value { return Value{Kind: KindAxis1d, Axis1d: f} }
func Axis2dValue(x, y float32) Value {
	return Value{Kind: KindAxis2d, Axis2d: Axis2d{X: x, Y: y}}
}
func PoseValue() Value { return Value{Kind: KindPose} }

func (v Value) String() string {
	switch v.Kind {
	case KindBoolean:
		return fmt.Sprint(v.Bool)
	case KindAxis1d:
		return fmt.Sprintf("%.2f", v.Axis1d)
	case KindAxis2d:
		return fmt.Sprintf("(%.2f, %.2f)", v.Axis2d.X, v.Axis2d.Y)
	default:
		return v.Kind.String()
	}
}

// State is the synchronized state of an action.
type State struct {
	Value Value
	// LastChanged is the sync timestamp, in nanoseconds, at which Value last changed.
	LastChanged int64
	// Active reports whether any bound source currently provides data.
	Active bool
	// Changed reports whether Value differs from the previous sync.
	Changed bool
}
