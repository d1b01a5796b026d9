package input

// Binding is one suggested binding. It is a closed sum type:
// *SimpleBinding, *AnalogThresholdBinding or *DPadBinding.
type Binding interface {
	// Target returns the action driven by the binding.
	Target() Action
	// Source returns the bound device path.
	Source() Path
	isBinding()
}

// Haptic is a pulse emitted when a threshold binding changes state.
type Haptic struct {
	Duration  int64
	Frequency float32
	Amplitude float32
}

// SimpleBinding maps a device path 1:1 onto an action.
type SimpleBinding struct {
	Action Action
	Path   Path
}

// AnalogThresholdBinding turns an analog source into a boolean with hysteresis.
type AnalogThresholdBinding struct {
	Action    Action
	OnHaptic  *Haptic
	OffHaptic *Haptic
	Path      Path
	On        float32
	Off       float32
}

// Direction is a dpad wedge.
type Direction uint8

const (
	DirectionUp Direction = iota + 1
	DirectionDown
	DirectionLeft
	DirectionRight
	DirectionCenter
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	case DirectionCenter:
		return "center"
	default:
		return "unknown"
	}
}

// DPadParams configures dpad emulation of a two-axis source.
type DPadParams struct {
	OnHaptic               *Haptic
	OffHaptic              *Haptic
	ForceThreshold         float32
	ForceThresholdReleased float32
	CenterRegion           float32
	WedgeAngle             float32
	Sticky                 bool
}

// DPadBinding drives a boolean action from one wedge of a two-axis source.
// Path is the two-axis source (the dpad identifier), not the dpad_* path.
type DPadBinding struct {
	Action    Action
	Path      Path
	Params    DPadParams
	Direction Direction
}

func (b *SimpleBinding) Target() Action          { return b.Action }
func (b *SimpleBinding) Source() Path            { return b.Path }
func (b *AnalogThresholdBinding) Target() Action { return b.Action }
func (b *AnalogThresholdBinding) Source() Path   { return b.Path }
func (b *DPadBinding) Target() Action            { return b.Action }
func (b *DPadBinding) Source() Path              { return b.Path }

func (*SimpleBinding) isBinding()          {}
func (*AnalogThresholdBinding) isBinding() {}
func (*DPadBinding) isBinding()            {}

// ProfileBindings are the bindings suggested for one interaction profile.
type ProfileBindings struct {
	Bindings []Binding
	Profile  Path
}
