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

// ProtectionMutator serves the protection family. A wrong unprotect
// password comes back from the document as a rejection and lands as a
// failed outcome; there is no retry path.
type ProtectionMutator struct {
	base
}

// NewProtectionMutator creates the protection mutator.
func NewProtectionMutator(log zerolog.Logger) *ProtectionMutator {
	return &ProtectionMutator{base: newBase(schema.FamilyProtection, log)}
}

// Family implements engine.Mutator.
func (m *ProtectionMutator) Family() schema.Family { return schema.FamilyProtection }

// Apply implements engine.Mutator.
func (m *ProtectionMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	prot := doc.Protection()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "protect_sheet":
		opts := document.ProtectionOptions{
			AllowFormatCells: boolean(act, "allow_format_cells", false),
			AllowInsertRows:  boolean(act, "allow_insert_rows", false),
			AllowDeleteRows:  boolean(act, "allow_delete_rows", false),
			AllowSort:        boolean(act, "allow_sort", false),
			AllowFilter:      boolean(act, "allow_filter", false),
		}
		err = prot.ProtectSheet(ctx, act.Sheet, str(act, "password"), opts)
	case "unprotect_sheet":
		err = prot.UnprotectSheet(ctx, act.Sheet, str(act, "password"))
	case "protect_workbook":
		err = prot.ProtectWorkbook(ctx, str(act, "password"))
	case "unprotect_workbook":
		err = prot.UnprotectWorkbook(ctx, str(act, "password"))
	case "lock_cells":
		var cells int
		cells, err = prot.SetCellsLocked(ctx, act.Sheet, act.Descriptor.Target, true)
		if err == nil {
			detail = countDetail(cells)
		}
	case "unlock_cells":
		var cells int
		cells, err = prot.SetCellsLocked(ctx, act.Sheet, act.Descriptor.Target, false)
		if err == nil {
			detail = countDetail(cells)
		}
	default:
		err = fmt.Errorf("kind %q not handled by protection mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}
