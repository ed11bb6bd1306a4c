package fmi

import "github.com/fmi4go/fmi2/internal/fmierr"

// The error taxonomy lives in internal/fmierr (an internal leaf package, so
// every layer below the facade can construct these without importing fmi,
// which imports them). These aliases and wrapper predicates re-export the
// public surface, in the style containerd/errdefs exposes its own fixed
// error category set — ours is FMI-specific rather than errdefs' generic
// categories, which is why we define our own type set instead of importing
// errdefs directly (see DESIGN.md).
// Status mirrors the fmi2Status enum translated from the ABI: OK, Warning,
// Discard, Error, Fatal or Pending.
type Status = fmierr.Status

const (
	StatusOK      = fmierr.StatusOK
	StatusWarning = fmierr.StatusWarning
	StatusDiscard = fmierr.StatusDiscard
	StatusError   = fmierr.StatusError
	StatusFatal   = fmierr.StatusFatal
	StatusPending = fmierr.StatusPending
)

type (
	// PackageError indicates a problem with the FMU package itself: a
	// missing or corrupt archive, a missing required binary or entry point,
	// or an unparseable model description.
	PackageError = fmierr.PackageError

	// StateError indicates an operation was invoked in a lifecycle state
	// where the FMI standard forbids it.
	StateError = fmierr.StateError

	// AbiError wraps an FMI status of Discard, Error or Fatal returned from
	// an ABI call.
	AbiError = fmierr.AbiError

	// UnsupportedOperation indicates a capability-gated operation was
	// called on an FMU that did not advertise the capability.
	UnsupportedOperation = fmierr.UnsupportedOperation
)

// IsPackageError reports whether err (or any error it wraps) is a PackageError.
func IsPackageError(err error) bool { return fmierr.IsPackageError(err) }

// IsStateError reports whether err (or any error it wraps) is a StateError.
func IsStateError(err error) bool { return fmierr.IsStateError(err) }

// IsAbiError reports whether err (or any error it wraps) is an AbiError.
func IsAbiError(err error) bool { return fmierr.IsAbiError(err) }

// IsUnsupportedOperation reports whether err (or any error it wraps) is an
// UnsupportedOperation.
func IsUnsupportedOperation(err error) bool { return fmierr.IsUnsupportedOperation(err) }

// IsFatal reports whether err represents an AbiError carrying the Fatal
// status. Once true for an instance, every further ABI-invoking call on it
// will fail without touching the ABI.
func IsFatal(err error) bool { return fmierr.IsFatal(err) }
