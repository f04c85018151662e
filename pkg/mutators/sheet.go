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

// SheetMutator serves the worksheet management family.
type SheetMutator struct {
	base
}

// NewSheetMutator creates the sheet mutator.
func NewSheetMutator(log zerolog.Logger) *SheetMutator {
	return &SheetMutator{base: newBase(schema.FamilySheet, log)}
}

// Family implements engine.Mutator.
func (m *SheetMutator) Family() schema.Family { return schema.FamilySheet }

// Apply implements engine.Mutator.
func (m *SheetMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	target := act.Descriptor.Target
	sheets := doc.Sheets()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "add_sheet":
		var name string
		name, err = sheets.Add(ctx, str(act, "name"), integer(act, "position", -1))
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "delete_sheet":
		err = sheets.Delete(ctx, target)
	case "rename_sheet":
		err = sheets.Rename(ctx, target, str(act, "new_name"))
		if err == nil {
			detail = &engine.OutcomeDetail{EntityName: str(act, "new_name"), EntityKind: schema.EntitySheet}
		}
	case "move_sheet":
		err = sheets.Move(ctx, target, integer(act, "position", 0))
	case "hide_sheet":
		err = sheets.SetHidden(ctx, target, true)
	case "unhide_sheet":
		err = sheets.SetHidden(ctx, target, false)
	case "set_sheet_tab_color":
		err = sheets.SetTabColor(ctx, target, str(act, "color"))
	case "set_sheet_zoom":
		err = sheets.SetZoom(ctx, target, integer(act, "zoom", 100))
	default:
		err = fmt.Errorf("kind %q not handled by sheet mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}
