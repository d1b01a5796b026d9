package xr

import "strconv"

// Result is the status code returned by every entry point.
// Negative values are errors, zero and positive values are successes.
type Result int32

const (
	Success                   Result = 0
	ErrorValidationFailure    Result = -1
	ErrorRuntimeFailure       Result = -2
	ErrorInitializationFailed Result = -6
	ErrorFunctionUnsupported  Result = -7
	ErrorSizeInsufficient     Result = -11
	ErrorHandleInvalid        Result = -12
	ErrorInstanceLost         Result = -13
	ErrorSystemInvalid        Result = -18
	ErrorPathInvalid          Result = -19
	ErrorPathFormatInvalid    Result = -21
	ErrorPathUnsupported      Result = -22
	ErrorActionTypeMismatch   Result = -27
	ErrorNameDuplicated       Result = -44
	ErrorNameInvalid          Result = -45
	ErrorActionSetNotAttached Result = -46
	ErrorActionSetsAttached   Result = -47
)

var resultNames = map[Result]string{
	Success:                   "XR_SUCCESS",
	ErrorValidationFailure:    "XR_ERROR_VALIDATION_FAILURE",
	ErrorRuntimeFailure:       "XR_ERROR_RUNTIME_FAILURE",
	ErrorInitializationFailed: "XR_ERROR_INITIALIZATION_FAILED",
	ErrorFunctionUnsupported:  "XR_ERROR_FUNCTION_UNSUPPORTED",
	ErrorSizeInsufficient:     "XR_ERROR_SIZE_INSUFFICIENT",
	ErrorHandleInvalid:        "XR_ERROR_HANDLE_INVALID",
	ErrorInstanceLost:         "XR_ERROR_INSTANCE_LOST",
	ErrorSystemInvalid:        "XR_ERROR_SYSTEM_INVALID",
	ErrorPathInvalid:          "XR_ERROR_PATH_INVALID",
	ErrorPathFormatInvalid:    "XR_ERROR_PATH_FORMAT_INVALID",
	ErrorPathUnsupported:      "XR_ERROR_PATH_UNSUPPORTED",
	ErrorActionTypeMismatch:   "XR_ERROR_ACTION_TYPE_MISMATCH",
	ErrorNameDuplicated:       "XR_ERROR_NAME_DUPLICATED",
	ErrorNameInvalid:          "XR_ERROR_NAME_INVALID",
	ErrorActionSetNotAttached: "XR_ERROR_ACTIONSET_NOT_ATTACHED",
	ErrorActionSetsAttached:   "XR_ERROR_ACTIONSETS_ALREADY_ATTACHED",
}

// Failed reports whether r is an error code.
func (r Result) Failed() bool { return r < 0 }

// Succeeded reports whether r is a success code.
func (r Result) Succeeded() bool { return r >= 0 }

// String returns the symbolic name of r, or its numeric value when unknown.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "XrResult(" + strconv.Itoa(int(r)) + ")"
}
