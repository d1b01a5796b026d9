package xr

// Handles issued by the runtime below the layer.
type (
	Instance uint64
	Session  uint64
	SystemID uint64
	Path     uint64
)

// Handles minted by the layer itself. The runtime below never sees them.
type (
	ActionSet uint64
	Action    uint64
)

// Time is a runtime timestamp in nanoseconds.
type Time int64

// Duration is a runtime duration in nanoseconds.
type Duration int64

const (
	NullHandle = 0
	NullPath   = Path(0)
	NullSystem = SystemID(0)
)

// FormFactor selects the kind of system requested by GetSystem.
type FormFactor int32

const (
	FormFactorHeadMountedDisplay FormFactor = 1
	FormFactorHandheldDisplay    FormFactor = 2
)

func (f FormFactor) String() string {
	switch f {
	case FormFactorHeadMountedDisplay:
		return "head_mounted_display"
	case FormFactorHandheldDisplay:
		return "handheld_display"
	default:
		return "unknown"
	}
}

// ActionType is the declared value type of an action.
type ActionType int32

const (
	ActionTypeBooleanInput    ActionType = 1
	ActionTypeFloatInput      ActionType = 2
	ActionTypeVector2fInput   ActionType = 3
	ActionTypePoseInput       ActionType = 4
	ActionTypeVibrationOutput ActionType = 100
)

func (t ActionType) String() string {
	switch t {
	case ActionTypeBooleanInput:
		return "boolean_input"
	case ActionTypeFloatInput:
		return "float_input"
	case ActionTypeVector2fInput:
		return "vector2f_input"
	case ActionTypePoseInput:
		return "pose_input"
	case ActionTypeVibrationOutput:
		return "vibration_output"
	default:
		return "unknown"
	}
}
