package policy

import (
	"time"

	"github.com/sheetflow/sheetflow/pkg/engine"
)

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = "info"

	// SeverityWarning is for warnings that should be reviewed but do
	// not block dispatch.
	SeverityWarning Severity = "warning"

	// SeverityError is for violations that block dispatch.
	SeverityError Severity = "error"

	// SeverityCritical is for violations that must never be dispatched.
	SeverityCritical Severity = "critical"
)

// Policy represents a policy rule with its Rego code.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	// Description provides a human-readable description.
	Description string `json:"description"`

	// Rego contains the Rego policy code.
	Rego string `json:"rego"`

	// Severity is the default severity for violations.
	Severity Severity `json:"severity"`

	// Enabled indicates if the policy is active.
	Enabled bool `json:"enabled"`

	// Tags are labels for organizing policies.
	Tags []string `json:"tags,omitempty"`

	// Metadata contains additional policy metadata.
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// CreatedAt is when the policy was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the policy was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// Violation represents a single policy violation.
type Violation struct {
	// Policy is the name of the policy that was violated.
	Policy string `json:"policy"`

	// ActionKind is the kind of the action that violated the policy.
	ActionKind string `json:"action_kind,omitempty"`

	// ActionIndex is the batch position of the violating action.
	ActionIndex int `json:"action_index"`

	// Message is a human-readable violation message.
	Message string `json:"message"`

	// Severity is the violation severity level.
	Severity Severity `json:"severity"`
}

// Blocking reports whether the violation is severe enough to deny
// dispatch of the action.
func (v Violation) Blocking() bool {
	return v.Severity == SeverityError || v.Severity == SeverityCritical
}

// Decision represents the result of evaluating all policies against
// one action.
type Decision struct {
	// Allowed indicates if the action may be dispatched.
	Allowed bool `json:"allowed"`

	// Violations lists blocking policy violations.
	Violations []Violation `json:"violations,omitempty"`

	// Warnings lists violations that do not block dispatch.
	Warnings []Violation `json:"warnings,omitempty"`

	// EvaluatedPolicies lists the names of policies that were evaluated.
	EvaluatedPolicies []string `json:"evaluated_policies"`

	// EvaluatedAt is when the evaluation occurred.
	EvaluatedAt time.Time `json:"evaluated_at"`

	// Duration is how long the evaluation took.
	Duration time.Duration `json:"duration"`
}

// Reason returns the message of the first blocking violation, or an
// empty string when the decision allows the action.
func (d *Decision) Reason() string {
	if len(d.Violations) == 0 {
		return ""
	}
	return d.Violations[0].Message
}

// Input is the document fed to Rego evaluation for one action. Field
// names match what the built-in policies reference as input.action.*.
type Input struct {
	// Action describes the action under evaluation.
	Action ActionInput `json:"action"`

	// Context carries batch-level evaluation context.
	Context ContextInput `json:"context"`
}

// ActionInput is the policy-visible shape of a validated action.
type ActionInput struct {
	Kind       string                 `json:"kind"`
	Family     string                 `json:"family"`
	Role       string                 `json:"role"`
	Sheet      string                 `json:"sheet,omitempty"`
	Target     string                 `json:"target,omitempty"`
	Index      int                    `json:"index"`
	Creates    string                 `json:"creates,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	DependsOn  string                 `json:"depends_on,omitempty"`
	References []ReferenceInput       `json:"references,omitempty"`
}

// ReferenceInput names one entity an action depends on.
type ReferenceInput struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// ContextInput carries evaluation context shared by the whole batch.
type ContextInput struct {
	Timestamp time.Time `json:"timestamp"`
	DryRun    bool      `json:"dry_run"`
}

// NewInput builds the Rego input for a validated action.
func NewInput(act *engine.ValidatedAction, dryRun bool) *Input {
	in := &Input{
		Action: ActionInput{
			Kind:       act.Descriptor.Kind,
			Family:     string(act.Schema.Family),
			Role:       string(act.Schema.Role),
			Sheet:      act.Sheet,
			Target:     act.Descriptor.Target,
			Index:      act.Index,
			Creates:    act.Creates,
			Parameters: act.Descriptor.Parameters,
			DependsOn:  act.Descriptor.DependsOn,
		},
		Context: ContextInput{
			Timestamp: time.Now(),
			DryRun:    dryRun,
		},
	}
	for _, ref := range act.References {
		in.Action.References = append(in.Action.References, ReferenceInput{
			Kind: string(ref.Kind),
			Name: ref.Name,
		})
	}
	return in
}
