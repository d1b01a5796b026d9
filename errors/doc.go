// Package errors provides the structured error type used by the layer.
//
// Errors are categorized by Phase (which part of the layer produced the error)
// and Kind (what went wrong). Every Kind maps onto exactly one foreign result
// code; ResultOf is the single place where that mapping happens.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSession, errors.KindPathInvalid).
//		Value(path).
//		Detail("sub-action path not declared by action %q", name).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.HandleInvalid(errors.PhaseAction, "action", h)
//	err := errors.NotAttached(errors.PhaseSession, "sync")
//
// Kind sentinels (ErrPathInvalid, ErrInstanceLost, ...) match any error of the
// same kind through errors.Is, regardless of phase.
package errors
