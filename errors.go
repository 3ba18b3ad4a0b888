package vklite

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Kind classifies the abstract error families from spec §7. Configuration
// errors are reported on the violating call and never propagate further;
// frame-loop errors are handled per the policy documented on canvas.Canvas.Step.
type Kind int

const (
	ErrUnsupported Kind = iota
	ErrNotConfigured
	ErrAlreadyCreated
	ErrInvalidIndex
	ErrCapacityExceeded
	ErrBackendFailure
	ErrDeviceLost
	ErrTransient
	ErrInvalidTransition
)

func (k Kind) String() string {
	switch k {
	case ErrUnsupported:
		return "Unsupported"
	case ErrNotConfigured:
		return "NotConfigured"
	case ErrAlreadyCreated:
		return "AlreadyCreated"
	case ErrInvalidIndex:
		return "InvalidIndex"
	case ErrCapacityExceeded:
		return "CapacityExceeded"
	case ErrBackendFailure:
		return "BackendFailure"
	case ErrDeviceLost:
		return "DeviceLost"
	case ErrTransient:
		return "Transient"
	case ErrInvalidTransition:
		return "InvalidTransition"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type carried by every failure in this
// package; Kind lets callers branch with errors.As without string matching.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("vklite: %s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("vklite: %s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

func errorf(kind Kind, format string, args ...interface{}) error {
	return errors.WithStack(&Error{Kind: kind, msg: fmt.Sprintf(format, args...)})
}

// NewError is errorf's exported form, for callers outside this package
// (canvas, visual) that need to raise a vklite.Error of a given Kind.
func NewError(kind Kind, format string, args ...interface{}) error {
	return errorf(kind, format, args...)
}

func wrapf(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(&Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err})
}

// checkResult converts a raw vk.Result into a wrapped *Error, or nil on
// vk.Success. It is the single point every backend call funnels through,
// mirroring the teacher's newError but carrying a Kind and a stack trace
// via github.com/pkg/errors instead of a hand-rolled runtime.Caller frame.
func checkResult(ret vk.Result, op string) error {
	if ret == vk.Success {
		return nil
	}
	kind := ErrBackendFailure
	switch ret {
	case vk.ErrorDeviceLost:
		kind = ErrDeviceLost
	case vk.ErrorOutOfDate:
		kind = ErrTransient
	}
	return wrapf(kind, fmt.Errorf("vk result %d", ret), "%s", op)
}

// IsKind reports whether err (or anything it wraps) carries the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
