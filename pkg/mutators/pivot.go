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

// PivotMutator serves the pivot table family. For field additions the
// pivot area is baked into the kind rather than passed as a parameter,
// so the switch maps kinds onto areas.
type PivotMutator struct {
	base
}

// NewPivotMutator creates the pivot mutator.
func NewPivotMutator(log zerolog.Logger) *PivotMutator {
	return &PivotMutator{base: newBase(schema.FamilyPivot, log)}
}

// Family implements engine.Mutator.
func (m *PivotMutator) Family() schema.Family { return schema.FamilyPivot }

// Apply implements engine.Mutator.
func (m *PivotMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	target := act.Descriptor.Target
	pivots := doc.Pivots()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "create_pivot_table":
		var name string
		name, err = pivots.Create(ctx, act.Sheet, target, str(act, "destination"), str(act, "name"))
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "delete_pivot_table":
		err = pivots.Delete(ctx, target)
	case "add_pivot_row_field":
		err = pivots.AddField(ctx, target, "row", str(act, "field"), "")
	case "add_pivot_column_field":
		err = pivots.AddField(ctx, target, "column", str(act, "field"), "")
	case "add_pivot_data_field":
		err = pivots.AddField(ctx, target, "data", str(act, "field"), strDefault(act, "aggregation", "sum"))
	case "add_pivot_filter_field":
		err = pivots.AddField(ctx, target, "filter", str(act, "field"), "")
	case "remove_pivot_field":
		err = pivots.RemoveField(ctx, target, str(act, "field"))
	default:
		err = fmt.Errorf("kind %q not handled by pivot mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}
