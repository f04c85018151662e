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

// TableMutator serves the table family.
type TableMutator struct {
	base
}

// NewTableMutator creates the table mutator.
func NewTableMutator(log zerolog.Logger) *TableMutator {
	return &TableMutator{base: newBase(schema.FamilyTable, log)}
}

// Family implements engine.Mutator.
func (m *TableMutator) Family() schema.Family { return schema.FamilyTable }

// Apply implements engine.Mutator.
func (m *TableMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	target := act.Descriptor.Target
	tables := doc.Tables()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "create_table":
		var name string
		name, err = tables.Create(ctx, act.Sheet, target, str(act, "name"),
			boolean(act, "has_headers", true), str(act, "style"))
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "delete_table":
		err = tables.Delete(ctx, target)
	case "rename_table":
		err = tables.Rename(ctx, target, str(act, "new_name"))
		if err == nil {
			detail = &engine.OutcomeDetail{EntityName: str(act, "new_name"), EntityKind: schema.EntityTable}
		}
	case "resize_table":
		err = tables.Resize(ctx, target, str(act, "range"))
	case "add_table_column":
		err = tables.AddColumn(ctx, target, str(act, "column_name"), integer(act, "position", -1))
	case "remove_table_column":
		err = tables.RemoveColumn(ctx, target, str(act, "column_name"))
	case "add_totals_row":
		err = tables.AddTotalsRow(ctx, target, str(act, "column_name"), str(act, "function"))
	case "apply_table_style":
		err = tables.ApplyStyle(ctx, target, str(act, "style"))
	default:
		err = fmt.Errorf("kind %q not handled by table mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}
