package mutators

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sheetflow/sheetflow/pkg/document"
	"github.com/sheetflow/sheetflow/pkg/engine"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

// NamedRangeMutator serves the defined-name family.
type NamedRangeMutator struct {
	base
}

// NewNamedRangeMutator creates the named range mutator.
func NewNamedRangeMutator(log zerolog.Logger) *NamedRangeMutator {
	return &NamedRangeMutator{base: newBase(schema.FamilyNamedRange, log)}
}

// Family implements engine.Mutator.
func (m *NamedRangeMutator) Family() schema.Family { return schema.FamilyNamedRange }

// Apply implements engine.Mutator.
func (m *NamedRangeMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	target := act.Descriptor.Target
	names := doc.Names()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "create_named_range":
		var name string
		name, err = names.Define(ctx, str(act, "name"),
			qualifyRange(act.Sheet, target), str(act, "comment"))
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "create_named_formula":
		var name string
		name, err = names.Define(ctx, str(act, "name"), str(act, "formula"), "")
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "update_named_range":
		refersTo := str(act, "formula")
		if rng := str(act, "range"); rng != "" {
			refersTo = qualifyRange(act.Sheet, rng)
		}
		if refersTo == "" {
			return failed(act, engine.NewActionError(engine.ErrInvalidParameter,
				"update requires a range or a formula", nil).WithAction(act.Descriptor.Kind), begin)
		}
		err = names.Update(ctx, target, refersTo)
	case "rename_named_range":
		err = names.Rename(ctx, target, str(act, "new_name"))
		if err == nil {
			detail = &engine.OutcomeDetail{EntityName: str(act, "new_name"), EntityKind: schema.EntityNamedRange}
		}
	case "delete_named_range":
		err = names.Delete(ctx, target)
	default:
		err = fmt.Errorf("kind %q not handled by named range mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}

// qualifyRange prefixes the sheet onto an unqualified A1 reference, so
// the defined name stays valid whatever sheet is active later.
func qualifyRange(sheet, rng string) string {
	if ref, err := document.ParseRange(rng); err == nil && ref.Sheet != "" {
		return rng
	}
	return sheet + "!" + rng
}
