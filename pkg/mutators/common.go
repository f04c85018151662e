package mutators

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/sheetflow/sheetflow/pkg/document"
	"github.com/sheetflow/sheetflow/pkg/engine"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

// base carries what every mutator needs: the stale-snapshot gate and a
// logger scoped to the family.
type base struct {
	gate engine.Gate
	log  zerolog.Logger
}

func newBase(family schema.Family, log zerolog.Logger) base {
	return base{log: log.With().Str("family", string(family)).Logger()}
}

// recheck takes a fresh snapshot and re-runs the gate against it. A
// non-nil return means the action must be rejected without touching
// the document.
func (b base) recheck(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) *engine.ActionError {
	snap, err := doc.Snapshot(ctx)
	if err != nil {
		return engine.NewActionError(engine.ErrDocumentRejected,
			"failed to snapshot document", err).WithAction(act.Descriptor.Kind)
	}
	return b.gate.Recheck(act.Schema, act.Sheet, act.Descriptor.Target, snap)
}

func rejected(act *engine.ValidatedAction, err *engine.ActionError, begin time.Time) engine.ExecutionOutcome {
	return engine.ExecutionOutcome{
		Index:    act.Index,
		Kind:     act.Descriptor.Kind,
		Target:   act.Descriptor.Target,
		Status:   engine.OutcomeRejected,
		Err:      err,
		Duration: time.Since(begin),
	}
}

// failed converts a document call error into a failed outcome. A
// structured rejection keeps its message; anything else is wrapped as
// a document rejection.
func failed(act *engine.ValidatedAction, err error, begin time.Time) engine.ExecutionOutcome {
	var aerr *engine.ActionError
	if !errors.As(err, &aerr) {
		aerr = engine.NewActionError(engine.ErrDocumentRejected, err.Error(), err).
			WithAction(act.Descriptor.Kind).WithTarget(act.Descriptor.Target)
	}
	return engine.ExecutionOutcome{
		Index:    act.Index,
		Kind:     act.Descriptor.Kind,
		Target:   act.Descriptor.Target,
		Status:   engine.OutcomeFailed,
		Err:      aerr,
		Duration: time.Since(begin),
	}
}

func applied(act *engine.ValidatedAction, detail *engine.OutcomeDetail, begin time.Time) engine.ExecutionOutcome {
	return engine.ExecutionOutcome{
		Index:    act.Index,
		Kind:     act.Descriptor.Kind,
		Target:   act.Descriptor.Target,
		Status:   engine.OutcomeApplied,
		Detail:   detail,
		Duration: time.Since(begin),
	}
}

// createdDetail builds the detail for a creating action, carrying the
// document-assigned entity name.
func createdDetail(act *engine.ValidatedAction, name string) *engine.OutcomeDetail {
	kind, _ := act.Schema.CreatedEntity()
	return &engine.OutcomeDetail{EntityName: name, EntityKind: kind}
}

func countDetail(cells int) *engine.OutcomeDetail {
	return &engine.OutcomeDetail{CellsAffected: cells}
}

// Parameter accessors. The validator has already enforced presence and
// types, so these only need sensible zero values for optionals.

func str(act *engine.ValidatedAction, name string) string {
	s, _ := act.Descriptor.Parameters[name].(string)
	return s
}

func strDefault(act *engine.ValidatedAction, name, def string) string {
	if s, ok := act.Descriptor.Parameters[name].(string); ok && s != "" {
		return s
	}
	return def
}

func number(act *engine.ValidatedAction, name string, def float64) float64 {
	switch n := act.Descriptor.Parameters[name].(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return def
}

func integer(act *engine.ValidatedAction, name string, def int) int {
	return int(number(act, name, float64(def)))
}

func boolean(act *engine.ValidatedAction, name string, def bool) bool {
	if b, ok := act.Descriptor.Parameters[name].(bool); ok {
		return b
	}
	return def
}

func strList(act *engine.ValidatedAction, name string) []string {
	switch raw := act.Descriptor.Parameters[name].(type) {
	case []string:
		return raw
	case []any:
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
