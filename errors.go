package adaptercore

import (
	"errors"
	"fmt"
)

// Sentinel errors for the taxonomy described in the adapter contract.
// Driver errors reach callers wrapped in DriverError, which matches
// ErrDriverFailure. Errors raised by the transform pipeline and by id
// generation are plain errors that match none of these sentinels.
var (
	// ErrSchemaLookup is returned when a model or field name cannot be
	// resolved after all alias attempts (logical, physical, plural) fail.
	ErrSchemaLookup = errors.New("adaptercore: schema lookup failed")

	// ErrInvalidArgument is returned for malformed call arguments, e.g.
	// a non-array value given to an "in"/"not_in" predicate.
	ErrInvalidArgument = errors.New("adaptercore: invalid argument")

	// ErrCapabilityMismatch is returned at factory construction when the
	// requested configuration is incompatible with the driver's declared
	// capabilities (e.g. useNumberId against a driver without numeric ids).
	ErrCapabilityMismatch = errors.New("adaptercore: capability mismatch")

	// ErrDriverFailure wraps any error surfaced by a driver.
	ErrDriverFailure = errors.New("adaptercore: driver failure")

	// ErrHookAbort is matched (via errors.Is) by the *HookError returned
	// when a before-hook fails; that error unwraps to the hook's own error.
	ErrHookAbort = errors.New("adaptercore: hook aborted operation")

	// ErrTransactionUnsupported is an informational condition: the driver
	// declares no transaction support, so transaction() ran its function
	// against the adapter directly and sequentially.
	ErrTransactionUnsupported = errors.New("adaptercore: driver does not support transactions")
)

// SchemaLookupError carries the logical/physical name that failed to
// resolve, for callers that want structured detail instead of a bare
// sentinel match.
type SchemaLookupError struct {
	Model string
	Field string // empty when the lookup was for a model name
	Name  string // the name that could not be resolved
}

func (e *SchemaLookupError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("adaptercore: no field %q on model %q", e.Name, e.Model)
	}
	return fmt.Sprintf("adaptercore: no model named %q", e.Name)
}

// Is allows errors.Is(err, ErrSchemaLookup) to match.
func (e *SchemaLookupError) Is(target error) bool { return target == ErrSchemaLookup }

// InvalidArgumentError carries the operator/value that failed validation.
type InvalidArgumentError struct {
	Operator string
	Value    any
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("adaptercore: invalid argument for operator %q: %s (value=%v)", e.Operator, e.Reason, e.Value)
}

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// CapabilityMismatchError reports which capability the configuration
// requires and which the driver declares.
type CapabilityMismatchError struct {
	Adapter    string
	Capability string
	Required   bool
}

func (e *CapabilityMismatchError) Error() string {
	return fmt.Sprintf("adaptercore: adapter %q does not support %s (required=%v)", e.Adapter, e.Capability, e.Required)
}

func (e *CapabilityMismatchError) Is(target error) bool { return target == ErrCapabilityMismatch }

// DriverError wraps an error returned by a driver with operation context,
// mirroring the teacher's NotFoundError/NotSingularError wrapping style.
type DriverError struct {
	Method        string // e.g. "create", "findMany"
	Model         string
	TransactionID int64
	Err           error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("adaptercore: %s %s failed (tx=%d): %v", e.Method, e.Model, e.TransactionID, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }

func (e *DriverError) Is(target error) bool { return target == ErrDriverFailure }

// NewDriverError wraps err with operation context. Returns nil if err is nil.
func NewDriverError(method, model string, txID int64, err error) error {
	if err == nil {
		return nil
	}
	return &DriverError{Method: method, Model: model, TransactionID: txID, Err: err}
}

// HookError wraps a before-hook failure with the model and operation it
// occurred in.
type HookError struct {
	Model     string
	Operation string
	Err       error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("adaptercore: before hook for %s.%s aborted: %v", e.Model, e.Operation, e.Err)
}

func (e *HookError) Unwrap() error { return e.Err }

func (e *HookError) Is(target error) bool { return target == ErrHookAbort }

// IsNotFound reports whether err matches ErrNotFound. The adapter
// contract surfaces "not found" as a nil result rather than an error:
// reads, updates, deletes and the authstore helpers all report a missing
// row that way, so no operation in this module returns ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ErrNotFound is the sentinel for a missing row. Factory and authstore
// report missing rows as nil/false results and never return it.
var ErrNotFound = errors.New("adaptercore: not found")
