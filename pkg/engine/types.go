package engine

import (
	"time"

	"github.com/sheetflow/sheetflow/pkg/schema"
)

// ActionDescriptor is the unit of work: one structured instruction
// produced by the upstream assistant layer. Descriptors are immutable
// once created and entirely untrusted until validated.
type ActionDescriptor struct {
	// Kind is the action kind identifier.
	Kind string `json:"kind" yaml:"kind"`

	// Sheet is the worksheet the action addresses. Empty means the
	// snapshot's active sheet.
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`

	// Target is the action's target reference. Its interpretation is
	// kind-dependent: an A1 range, an entity name, or a sheet name.
	Target string `json:"target,omitempty" yaml:"target,omitempty"`

	// Parameters are the named parameter values, shaped per the
	// schema registry entry for Kind. Unknown extra keys are ignored.
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// DependsOn is an optional soft hint naming an entity another
	// action in the batch generates. Name-based inference is
	// authoritative; this is redundant and only warned about on
	// conflict.
	DependsOn string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// ValidatedAction is a descriptor annotated with its resolution status.
// Only ready actions proceed to ordering and dispatch.
type ValidatedAction struct {
	// Descriptor is the original input.
	Descriptor ActionDescriptor `json:"descriptor"`

	// Index is the action's position in the input batch. Outcomes are
	// reported in this order regardless of dispatch order.
	Index int `json:"index"`

	// Schema is the registry entry for the descriptor's kind. Nil for
	// unknown kinds.
	Schema *schema.ActionSchema `json:"-"`

	// Ready is true when the action passed the gate and validator.
	Ready bool `json:"ready"`

	// Err carries the rejection reason when Ready is false.
	Err *ActionError `json:"error,omitempty"`

	// Sheet is the resolved worksheet after defaulting to the active
	// sheet. Meaningful only for ready actions.
	Sheet string `json:"sheet,omitempty"`

	// Creates is the entity name this action brings into existence,
	// when the role is creates and the descriptor requested an
	// explicit name. Empty means the document will auto-generate one.
	Creates string `json:"creates,omitempty"`

	// References are the entity names this action needs to exist,
	// either in the snapshot or earlier in the batch.
	References []EntityRef `json:"references,omitempty"`

	// Warnings are non-fatal findings surfaced on the outcome.
	Warnings []string `json:"warnings,omitempty"`
}

// EntityRef is a by-name reference an action makes to a document entity.
type EntityRef struct {
	// Kind is the referenced entity kind. Empty for dependsOn hints,
	// which carry no kind.
	Kind schema.EntityKind `json:"kind,omitempty"`

	// Name is the referenced entity name.
	Name string `json:"name"`
}

// Reject marks the action rejected with the given error and returns it.
func (a *ValidatedAction) Reject(err *ActionError) *ValidatedAction {
	a.Ready = false
	a.Err = err
	return a
}

// OutcomeDetail is the structured detail of a successful mutation: the
// identifiers later actions and the report consumer need.
type OutcomeDetail struct {
	// EntityName is the concrete name of the entity created or
	// mutated, most importantly the document-assigned name when the
	// descriptor requested an auto-generated one.
	EntityName string `json:"entity_name,omitempty"`

	// EntityKind is the kind of that entity.
	EntityKind schema.EntityKind `json:"entity_kind,omitempty"`

	// CellsAffected is the number of cells the mutation touched,
	// where the operation reports one.
	CellsAffected int `json:"cells_affected,omitempty"`

	// Message is extra human-readable detail.
	Message string `json:"message,omitempty"`
}

// ExecutionOutcome is the single, final result of one submitted action.
type ExecutionOutcome struct {
	// Index is the action's position in the input batch.
	Index int `json:"index"`

	// Kind is the descriptor's action kind.
	Kind string `json:"kind"`

	// Target is the descriptor's target.
	Target string `json:"target,omitempty"`

	// Status is the final status.
	Status OutcomeStatus `json:"status"`

	// Detail carries the applied mutation's identifying detail.
	Detail *OutcomeDetail `json:"detail,omitempty"`

	// Err describes why the action was rejected, skipped or failed.
	Err *ActionError `json:"error,omitempty"`

	// Warnings are non-fatal findings, such as the sparkline soft cap.
	Warnings []string `json:"warnings,omitempty"`

	// Duration is the dispatch time for applied and failed actions.
	Duration time.Duration `json:"duration,omitempty"`
}

// ExecutionReport is the session's aggregate result: one outcome per
// submitted action, in input order. It lives only for the batch and is
// discarded once surfaced; persistence is the caller's concern.
type ExecutionReport struct {
	// SessionID identifies the session that produced the report.
	SessionID string `json:"session_id"`

	// StartedAt and CompletedAt bound the session.
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Duration is the total session time.
	Duration time.Duration `json:"duration"`

	// Status is the aggregate session status.
	Status ReportStatus `json:"status"`

	// Outcomes holds exactly one entry per input action, input order.
	Outcomes []ExecutionOutcome `json:"outcomes"`

	// Summary counts outcomes by status.
	Summary ReportSummary `json:"summary"`
}

// ReportSummary counts a report's outcomes by status.
type ReportSummary struct {
	Total    int `json:"total"`
	Applied  int `json:"applied"`
	Rejected int `json:"rejected"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Outcome returns the outcome for a batch index.
func (r *ExecutionReport) Outcome(index int) (ExecutionOutcome, bool) {
	if index < 0 || index >= len(r.Outcomes) {
		return ExecutionOutcome{}, false
	}
	return r.Outcomes[index], true
}
