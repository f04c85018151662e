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

// RangeMutator serves the row, column and bulk cell family.
type RangeMutator struct {
	base
}

// NewRangeMutator creates the range mutator.
func NewRangeMutator(log zerolog.Logger) *RangeMutator {
	return &RangeMutator{base: newBase(schema.FamilyRange, log)}
}

// Family implements engine.Mutator.
func (m *RangeMutator) Family() schema.Family { return schema.FamilyRange }

// Apply implements engine.Mutator.
func (m *RangeMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	target := act.Descriptor.Target
	ranges := doc.Ranges()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "insert_rows":
		err = ranges.InsertRows(ctx, act.Sheet, integer(act, "start_row", 1), integer(act, "count", 1))
	case "delete_rows":
		err = ranges.DeleteRows(ctx, act.Sheet, integer(act, "start_row", 1), integer(act, "count", 1))
	case "insert_columns":
		err = ranges.InsertColumns(ctx, act.Sheet, str(act, "start_column"), integer(act, "count", 1))
	case "delete_columns":
		err = ranges.DeleteColumns(ctx, act.Sheet, str(act, "start_column"), integer(act, "count", 1))
	case "set_row_height":
		err = ranges.SetRowHeight(ctx, act.Sheet, integer(act, "row", 1), number(act, "height", 0))
	case "set_column_width":
		err = ranges.SetColumnWidth(ctx, act.Sheet, str(act, "column"), number(act, "width", 0))
	case "autofit_columns":
		err = ranges.AutofitColumns(ctx, act.Sheet, target)
	case "hide_rows":
		err = ranges.HideRows(ctx, act.Sheet, integer(act, "start_row", 1), integer(act, "count", 1))
	case "find_replace":
		var cells int
		cells, err = ranges.FindReplace(ctx, act.Sheet, target,
			str(act, "find"), str(act, "replace"), document.FindReplaceOptions{
				MatchCase:       boolean(act, "match_case", false),
				MatchEntireCell: boolean(act, "match_entire_cell", false),
			})
		if err == nil {
			detail = countDetail(cells)
		}
	case "sort_range":
		err = ranges.Sort(ctx, act.Sheet, target, integer(act, "column", 1),
			strDefault(act, "order", "ascending") == "ascending",
			boolean(act, "has_headers", false))
	default:
		err = fmt.Errorf("kind %q not handled by range mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}
