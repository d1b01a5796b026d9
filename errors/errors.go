package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/wippyai/xr-input-layer/xr"
)

// Phase indicates which part of the layer produced the error
type Phase string

const (
	PhaseNegotiate Phase = "negotiate" // loader negotiation
	PhaseInstance  Phase = "instance"  // instance lifecycle
	PhaseSession   Phase = "session"   // session lifecycle and state queries
	PhaseAction    Phase = "action"    // action set and action creation
	PhaseBinding   Phase = "binding"   // suggested binding translation
	PhaseInput     Phase = "input"     // calls into the input runtime
	PhaseForward   Phase = "forward"   // calls into the next layer
	PhaseDispatch  Phase = "dispatch"  // entry-point resolution and fault containment
)

// Kind categorizes the error
type Kind string

const (
	KindValidation           Kind = "validation"
	KindHandleInvalid        Kind = "handle_invalid"
	KindInstanceLost         Kind = "instance_lost"
	KindNotAttached          Kind = "action_set_not_attached"
	KindAlreadyAttached      Kind = "action_sets_already_attached"
	KindTypeMismatch         Kind = "action_type_mismatch"
	KindPathInvalid          Kind = "path_invalid"
	KindPathUnsupported      Kind = "path_unsupported"
	KindPathFormatInvalid    Kind = "path_format_invalid"
	KindSizeInsufficient     Kind = "size_insufficient"
	KindNameDuplicated       Kind = "name_duplicated"
	KindNameInvalid          Kind = "name_invalid"
	KindSystemInvalid        Kind = "system_invalid"
	KindFunctionUnsupported  Kind = "function_unsupported"
	KindInitializationFailed Kind = "initialization_failed"
	KindRuntimeFailure       Kind = "runtime_failure"
	KindForwarded            Kind = "forwarded"
)

var kindResults = map[Kind]xr.Result{
	KindValidation:           xr.ErrorValidationFailure,
	KindHandleInvalid:        xr.ErrorHandleInvalid,
	KindInstanceLost:         xr.ErrorInstanceLost,
	KindNotAttached:          xr.ErrorActionSetNotAttached,
	KindAlreadyAttached:      xr.ErrorActionSetsAttached,
	KindTypeMismatch:         xr.ErrorActionTypeMismatch,
	KindPathInvalid:          xr.ErrorPathInvalid,
	KindPathUnsupported:      xr.ErrorPathUnsupported,
	KindPathFormatInvalid:    xr.ErrorPathFormatInvalid,
	KindSizeInsufficient:     xr.ErrorSizeInsufficient,
	KindNameDuplicated:       xr.ErrorNameDuplicated,
	KindNameInvalid:          xr.ErrorNameInvalid,
	KindSystemInvalid:        xr.ErrorSystemInvalid,
	KindFunctionUnsupported:  xr.ErrorFunctionUnsupported,
	KindInitializationFailed: xr.ErrorInitializationFailed,
	KindRuntimeFailure:       xr.ErrorRuntimeFailure,
}

// Kind sentinels for errors.Is.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrHandleInvalid   = &Error{Kind: KindHandleInvalid}
	ErrInstanceLost    = &Error{Kind: KindInstanceLost}
	ErrNotAttached     = &Error{Kind: KindNotAttached}
	ErrAlreadyAttached = &Error{Kind: KindAlreadyAttached}
	ErrTypeMismatch    = &Error{Kind: KindTypeMismatch}
	ErrPathInvalid     = &Error{Kind: KindPathInvalid}
	ErrPathUnsupported = &Error{Kind: KindPathUnsupported}
)

// Error is the structured error type used throughout the layer
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	// Result is the code reported by the next layer for KindForwarded.
	Result xr.Result
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Kind == KindForwarded {
		b.WriteByte(' ')
		b.WriteString(e.Result.String())
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target without a phase matches every phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// Code returns the foreign result code for e.
func (e *Error) Code() xr.Result {
	if e.Kind == KindForwarded {
		return e.Result
	}
	if r, ok := kindResults[e.Kind]; ok {
		return r
	}
	return xr.ErrorRuntimeFailure
}

// ResultOf converts err into the foreign result code reported to the caller.
// Errors that did not originate in the layer map to runtime failure.
func ResultOf(err error) xr.Result {
	if err == nil {
		return xr.Success
	}
	var le *Error
	if stderrors.As(err, &le) {
		return le.Code()
	}
	var re *xr.ResultError
	if stderrors.As(err, &re) {
		return re.Result
	}
	return xr.ErrorRuntimeFailure
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Validation creates a validation failure error
func Validation(phase Phase, detail string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindValidation,
		Detail: detail,
		Cause:  cause,
	}
}

// HandleInvalid creates an invalid handle error
func HandleInvalid(phase Phase, what string, handle any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindHandleInvalid,
		Detail: fmt.Sprintf("unknown %s handle %#x", what, handle),
		Value:  handle,
	}
}

// InstanceLost creates an instance lost error
func InstanceLost(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInstanceLost,
		Detail: detail,
	}
}

// NotAttached creates an action set not attached error
func NotAttached(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotAttached,
		Detail: detail,
	}
}

// AlreadyAttached creates an action sets already attached error
func AlreadyAttached(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAlreadyAttached,
		Detail: detail,
	}
}

// TypeMismatch creates an action type mismatch error
func TypeMismatch(phase Phase, action string, declared, requested fmt.Stringer) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Detail: fmt.Sprintf("action %q is %s, queried as %s", action, declared, requested),
	}
}

// PathInvalid creates an invalid path error
func PathInvalid(phase Phase, path any, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPathInvalid,
		Detail: detail,
		Value:  path,
	}
}

// PathUnsupported creates an unsupported path error
func PathUnsupported(phase Phase, path string, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindPathUnsupported,
		Detail: fmt.Sprintf("path %q is not supported", path),
		Value:  path,
		Cause:  cause,
	}
}

// Forwarded wraps a failure reported by the next layer
func Forwarded(call string, result xr.Result) *Error {
	return &Error{
		Phase:  PhaseForward,
		Kind:   KindForwarded,
		Detail: call,
		Result: result,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
