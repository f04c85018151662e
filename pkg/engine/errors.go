package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an action was rejected, skipped or failed.
// The kinds are part of the engine's reporting contract: the UI layer
// keys its presentation off them.
type ErrorKind string

const (
	// ErrUnknownAction means the descriptor's kind is not registered.
	// Forward-incompatible descriptors land here, never in a crash.
	ErrUnknownAction ErrorKind = "unknown_action"

	// ErrUnsupportedAPILevel means the document's feature level is
	// below the schema's minimum for the action.
	ErrUnsupportedAPILevel ErrorKind = "unsupported_api_level"

	// ErrSheetProtected means the target sheet's protection state
	// forbids the action's entity role.
	ErrSheetProtected ErrorKind = "sheet_protected"

	// ErrEntityNotFound means a target named by the action does not
	// exist in the document.
	ErrEntityNotFound ErrorKind = "entity_not_found"

	// ErrInvalidParameter means a descriptor parameter is missing,
	// mistyped or out of its documented bounds.
	ErrInvalidParameter ErrorKind = "invalid_parameter"

	// ErrUnresolvedDependency means the action references a name that
	// is neither in the snapshot nor created earlier in the batch, or
	// the batch's reference graph contains a cycle.
	ErrUnresolvedDependency ErrorKind = "unresolved_dependency"

	// ErrDocumentRejected means the live document refused the call.
	ErrDocumentRejected ErrorKind = "document_rejected"

	// ErrBatchAborted means an earlier action failed under the
	// abort-on-first-failure policy, or the session was abandoned,
	// before this action was dispatched.
	ErrBatchAborted ErrorKind = "batch_aborted"

	// ErrPolicyDenied means an installed action policy forbade the
	// action before dispatch.
	ErrPolicyDenied ErrorKind = "policy_denied"
)

// ActionError is a classified error describing why one action did not
// apply. It carries enough context to be surfaced verbatim in the
// execution report.
type ActionError struct {
	// Kind is the error classification.
	Kind ErrorKind `json:"kind"`

	// Message is the human-readable reason.
	Message string `json:"message"`

	// Field is the offending parameter name, for invalid-parameter
	// errors.
	Field string `json:"field,omitempty"`

	// Target is the action target involved, if any.
	Target string `json:"target,omitempty"`

	// Action is the action kind being processed.
	Action string `json:"action,omitempty"`

	// Err is the underlying error, typically a document rejection.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *ActionError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Action != "" {
		msg = fmt.Sprintf("[%s] %s (action=%s)", e.Kind, e.Message, e.Action)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for chain inspection.
func (e *ActionError) Unwrap() error {
	return e.Err
}

// Is matches ActionErrors by kind, so callers can use errors.Is with a
// bare-kind sentinel.
func (e *ActionError) Is(target error) bool {
	t, ok := target.(*ActionError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewActionError creates a classified action error.
func NewActionError(kind ErrorKind, message string, err error) *ActionError {
	return &ActionError{Kind: kind, Message: message, Err: err}
}

// WithField records the offending parameter name.
func (e *ActionError) WithField(field string) *ActionError {
	e.Field = field
	return e
}

// WithTarget records the action target.
func (e *ActionError) WithTarget(target string) *ActionError {
	e.Target = target
	return e
}

// WithAction records the action kind.
func (e *ActionError) WithAction(kind string) *ActionError {
	e.Action = kind
	return e
}

// KindOf returns the ErrorKind carried by err, or the empty kind when
// err carries none.
func KindOf(err error) ErrorKind {
	var e *ActionError
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given ErrorKind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
