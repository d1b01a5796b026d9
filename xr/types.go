package xr

// ApplicationInfo identifies the application creating an instance.
type ApplicationInfo struct {
	ApplicationName    [MaxApplicationNameSize]byte
	ApplicationVersion uint32
	EngineName         [MaxEngineNameSize]byte
	EngineVersion      uint32
	APIVersion         Version
}

// InstanceCreateInfo is passed down the layer chain on instance creation.
type InstanceCreateInfo struct {
	EnabledAPILayerNames  []string
	EnabledExtensionNames []string
	ApplicationInfo       ApplicationInfo
	CreateFlags           uint64
}

// APILayerNextInfo is one link of the layer chain built by the loader.
type APILayerNextInfo struct {
	NextGetInstanceProcAddr    GetInstanceProcAddrFunc
	NextCreateAPILayerInstance CreateAPILayerInstanceFunc
	Next                       *APILayerNextInfo
	LayerName                  [MaxAPILayerNameSize]byte
}

// APILayerCreateInfo carries the layer chain into CreateAPILayerInstance.
type APILayerCreateInfo struct {
	NextInfo             *APILayerNextInfo
	SettingsFileLocation string
}

// InstanceProperties describes the runtime behind an instance.
type InstanceProperties struct {
	RuntimeVersion Version
	RuntimeName    [MaxRuntimeNameSize]byte
}

type SystemGetInfo struct {
	FormFactor FormFactor
}

type SessionCreateInfo struct {
	CreateFlags uint64
	SystemID    SystemID
}

type ActionSetCreateInfo struct {
	ActionSetName          [MaxActionSetNameSize]byte
	LocalizedActionSetName [MaxLocalizedActionSetName]byte
	Priority               uint32
}

type ActionCreateInfo struct {
	SubactionPaths      []Path
	ActionName          [MaxActionNameSize]byte
	LocalizedActionName [MaxLocalizedActionNameSize]byte
	ActionType          ActionType
}

type ActionSuggestedBinding struct {
	Action  Action
	Binding Path
}

// HapticVibration describes a haptic pulse.
type HapticVibration struct {
	Duration  Duration
	Frequency float32
	Amplitude float32
}

// AnalogThresholdBinding modifies the suggested binding of the same action
// and path with hysteresis thresholds.
type AnalogThresholdBinding struct {
	OnHaptic     *HapticVibration
	OffHaptic    *HapticVibration
	Action       Action
	Binding      Path
	OnThreshold  float32
	OffThreshold float32
}

// DPadBinding configures the dpad emulation of a thumbstick or trackpad
// identified by Binding, for the actions of one action set.
type DPadBinding struct {
	OnHaptic               *HapticVibration
	OffHaptic              *HapticVibration
	Binding                Path
	ActionSet              ActionSet
	ForceThreshold         float32
	ForceThresholdReleased float32
	CenterRegion           float32
	WedgeAngle             float32
	IsSticky               bool
}

// InteractionProfileSuggestedBinding suggests bindings for one interaction profile.
// AnalogThresholds and DPadBindings are the extension records chained to it.
type InteractionProfileSuggestedBinding struct {
	SuggestedBindings  []ActionSuggestedBinding
	AnalogThresholds   []AnalogThresholdBinding
	DPadBindings       []DPadBinding
	InteractionProfile Path
}

type SessionActionSetsAttachInfo struct {
	ActionSets []ActionSet
}

type ActiveActionSet struct {
	ActionSet     ActionSet
	SubactionPath Path
}

type ActionsSyncInfo struct {
	ActiveActionSets []ActiveActionSet
}

type ActionStateGetInfo struct {
	Action        Action
	SubactionPath Path
}

type Vector2f struct {
	X float32
	Y float32
}

type ActionStateBoolean struct {
	LastChangeTime       Time
	CurrentState         bool
	ChangedSinceLastSync bool
	IsActive             bool
}

type ActionStateFloat struct {
	LastChangeTime       Time
	CurrentState         float32
	ChangedSinceLastSync bool
	IsActive             bool
}

type ActionStateVector2f struct {
	LastChangeTime       Time
	CurrentState         Vector2f
	ChangedSinceLastSync bool
	IsActive             bool
}

type ActionStatePose struct {
	IsActive bool
}
