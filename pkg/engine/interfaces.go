package engine

import (
	"context"

	"github.com/sheetflow/sheetflow/pkg/document"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

// Mutator applies the actions of one operation family to a document.
// Implementations live in pkg/mutators, one per family.
//
// Apply receives a validated, gate-checked, ordered action. It must
// re-check the gate against a fresh snapshot before touching the
// document: the snapshot the validator saw may be stale by dispatch
// time. Apply never returns a Go error; every path folds into the
// returned outcome's status.
type Mutator interface {
	// Family reports the operation family this mutator serves.
	Family() schema.Family

	// Apply executes the action against the document and returns its
	// final outcome.
	Apply(ctx context.Context, act *ValidatedAction, doc document.Handle) ExecutionOutcome
}

// PolicyGate decides whether a validated action may be dispatched.
// A nil gate in the session options allows everything.
type PolicyGate interface {
	// Allow reports whether the action may run. When denied, the
	// second return names the rule or reason for the outcome.
	Allow(ctx context.Context, act *ValidatedAction) (bool, string, error)
}

// MutatorSet resolves the mutator for an action's family.
type MutatorSet interface {
	// For returns the mutator serving the family, or false when no
	// mutator is registered for it.
	For(family schema.Family) (Mutator, bool)
}
