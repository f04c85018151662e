package engine

import (
	"encoding/json"
	"fmt"
)

// OutcomeStatus is the final status of one action.
type OutcomeStatus string

const (
	// OutcomeApplied indicates the mutation was applied to the document.
	OutcomeApplied OutcomeStatus = "applied"

	// OutcomeRejected indicates the action never reached a mutator:
	// it failed validation, gating or ordering.
	OutcomeRejected OutcomeStatus = "rejected"

	// OutcomeSkipped indicates the action was not dispatched because
	// of an earlier failure or a missing runtime dependency.
	OutcomeSkipped OutcomeStatus = "skipped"

	// OutcomeFailed indicates the mutator attempted the mutation and
	// the document refused it.
	OutcomeFailed OutcomeStatus = "failed"
)

// Validate checks the outcome status is a known value.
func (s OutcomeStatus) Validate() error {
	switch s {
	case OutcomeApplied, OutcomeRejected, OutcomeSkipped, OutcomeFailed:
		return nil
	default:
		return fmt.Errorf("invalid outcome status: %s", s)
	}
}

// UnmarshalJSON validates the status on decode.
func (s *OutcomeStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = OutcomeStatus(str)
	return s.Validate()
}

// SessionPhase is the execution session's state machine position.
// Transitions are one-directional; a session is not reentrant.
type SessionPhase string

const (
	PhaseCollecting  SessionPhase = "collecting"
	PhaseValidating  SessionPhase = "validating"
	PhaseOrdering    SessionPhase = "ordering"
	PhaseDispatching SessionPhase = "dispatching"
	PhaseCompleted   SessionPhase = "completed"
)

// next returns the phase that follows s.
func (p SessionPhase) next() SessionPhase {
	switch p {
	case PhaseCollecting:
		return PhaseValidating
	case PhaseValidating:
		return PhaseOrdering
	case PhaseOrdering:
		return PhaseDispatching
	default:
		return PhaseCompleted
	}
}

// CompletionPolicy controls how a session reacts to a failed action.
type CompletionPolicy string

const (
	// ContinueOnFailure lets later independent actions proceed after
	// a failure. This is the default.
	ContinueOnFailure CompletionPolicy = "continue_on_failure"

	// AbortOnFirstFailure marks every not-yet-dispatched action
	// skipped with batch_aborted once one action fails.
	AbortOnFirstFailure CompletionPolicy = "abort_on_first_failure"
)

// Validate checks the completion policy is a known value.
func (p CompletionPolicy) Validate() error {
	switch p {
	case ContinueOnFailure, AbortOnFirstFailure:
		return nil
	default:
		return fmt.Errorf("invalid completion policy: %s", p)
	}
}

// ReportStatus is the aggregate status of a completed session.
type ReportStatus string

const (
	// ReportSucceeded means every submitted action applied.
	ReportSucceeded ReportStatus = "succeeded"

	// ReportPartial means some actions applied and some did not.
	// Partial application is a first-class result, not an error.
	ReportPartial ReportStatus = "partial"

	// ReportFailed means no submitted action applied.
	ReportFailed ReportStatus = "failed"

	// ReportEmpty means the batch contained no actions.
	ReportEmpty ReportStatus = "empty"
)

// summarize derives the aggregate status from outcome counts.
func summarize(s ReportSummary) ReportStatus {
	switch {
	case s.Total == 0:
		return ReportEmpty
	case s.Applied == s.Total:
		return ReportSucceeded
	case s.Applied > 0:
		return ReportPartial
	default:
		return ReportFailed
	}
}
