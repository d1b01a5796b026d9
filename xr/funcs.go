package xr

// Func holds one of the entry-point function types declared below.
// It is the Go equivalent of a PFN_xrVoidFunction.
type Func any

type (
	GetInstanceProcAddrFunc    func(instance Instance, name string, function *Func) Result
	CreateAPILayerInstanceFunc func(info *InstanceCreateInfo, layerInfo *APILayerCreateInfo, instance *Instance) Result
	DestroyInstanceFunc        func(instance Instance) Result
	GetInstancePropertiesFunc  func(instance Instance, properties *InstanceProperties) Result
	GetSystemFunc              func(instance Instance, info *SystemGetInfo, systemID *SystemID) Result
	CreateSessionFunc          func(instance Instance, info *SessionCreateInfo, session *Session) Result
	DestroySessionFunc         func(session Session) Result
	BeginSessionFunc           func(session Session) Result
	RequestExitSessionFunc     func(session Session) Result
	StringToPathFunc           func(instance Instance, pathString string, path *Path) Result
	PathToStringFunc           func(instance Instance, path Path, capacityInput uint32, countOutput *uint32, buffer []byte) Result

	CreateActionSetFunc                   func(instance Instance, info *ActionSetCreateInfo, actionSet *ActionSet) Result
	DestroyActionSetFunc                  func(actionSet ActionSet) Result
	CreateActionFunc                      func(actionSet ActionSet, info *ActionCreateInfo, action *Action) Result
	DestroyActionFunc                     func(action Action) Result
	SuggestInteractionProfileBindingsFunc func(instance Instance, suggested *InteractionProfileSuggestedBinding) Result
	AttachSessionActionSetsFunc           func(session Session, info *SessionActionSetsAttachInfo) Result
	SyncActionsFunc                       func(session Session, info *ActionsSyncInfo) Result
	GetActionStateBooleanFunc             func(session Session, info *ActionStateGetInfo, state *ActionStateBoolean) Result
	GetActionStateFloatFunc               func(session Session, info *ActionStateGetInfo, state *ActionStateFloat) Result
	GetActionStateVector2fFunc            func(session Session, info *ActionStateGetInfo, state *ActionStateVector2f) Result
	GetActionStatePoseFunc                func(session Session, info *ActionStateGetInfo, state *ActionStatePose) Result
)

// Entry-point names.
const (
	NameGetInstanceProcAddr               = "xrGetInstanceProcAddr"
	NameCreateAPILayerInstance            = "xrCreateApiLayerInstance"
	NameDestroyInstance                   = "xrDestroyInstance"
	NameGetInstanceProperties             = "xrGetInstanceProperties"
	NameGetSystem                         = "xrGetSystem"
	NameCreateSession                     = "xrCreateSession"
	NameDestroySession                    = "xrDestroySession"
	NameBeginSession                      = "xrBeginSession"
	NameRequestExitSession                = "xrRequestExitSession"
	NameStringToPath                      = "xrStringToPath"
	NamePathToString                      = "xrPathToString"
	NameCreateActionSet                   = "xrCreateActionSet"
	NameDestroyActionSet                  = "xrDestroyActionSet"
	NameCreateAction                      = "xrCreateAction"
	NameDestroyAction                     = "xrDestroyAction"
	NameSuggestInteractionProfileBindings = "xrSuggestInteractionProfileBindings"
	NameAttachSessionActionSets           = "xrAttachSessionActionSets"
	NameSyncActions                       = "xrSyncActions"
	NameGetActionStateBoolean             = "xrGetActionStateBoolean"
	NameGetActionStateFloat               = "xrGetActionStateFloat"
	NameGetActionStateVector2f            = "xrGetActionStateVector2f"
	NameGetActionStatePose                = "xrGetActionStatePose"
)
