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

// Default page margins in inches, applied for any margin the
// descriptor leaves out.
const (
	defaultMarginVertical   = 0.75
	defaultMarginHorizontal = 0.7
)

// PageSetupMutator serves the print and page layout family.
type PageSetupMutator struct {
	base
}

// NewPageSetupMutator creates the page setup mutator.
func NewPageSetupMutator(log zerolog.Logger) *PageSetupMutator {
	return &PageSetupMutator{base: newBase(schema.FamilyPageSetup, log)}
}

// Family implements engine.Mutator.
func (m *PageSetupMutator) Family() schema.Family { return schema.FamilyPageSetup }

// Apply implements engine.Mutator.
func (m *PageSetupMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	setup := doc.PageSetup()

	var err error
	switch act.Descriptor.Kind {
	case "set_page_orientation":
		err = setup.SetOrientation(ctx, act.Sheet, str(act, "orientation"))
	case "set_page_margins":
		err = setup.SetMargins(ctx, act.Sheet, document.Margins{
			Top:    number(act, "top", defaultMarginVertical),
			Bottom: number(act, "bottom", defaultMarginVertical),
			Left:   number(act, "left", defaultMarginHorizontal),
			Right:  number(act, "right", defaultMarginHorizontal),
		})
	case "set_print_area":
		err = setup.SetPrintArea(ctx, act.Sheet, str(act, "range"))
	case "clear_print_area":
		err = setup.ClearPrintArea(ctx, act.Sheet)
	case "add_page_break":
		err = setup.AddPageBreak(ctx, act.Sheet, integer(act, "before_row", 1))
	case "set_header_footer":
		err = setup.SetHeaderFooter(ctx, act.Sheet, str(act, "header"), str(act, "footer"))
	default:
		err = fmt.Errorf("kind %q not handled by page setup mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, nil, begin)
}
