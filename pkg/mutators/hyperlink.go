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

// HyperlinkMutator serves the hyperlink family.
type HyperlinkMutator struct {
	base
}

// NewHyperlinkMutator creates the hyperlink mutator.
func NewHyperlinkMutator(log zerolog.Logger) *HyperlinkMutator {
	return &HyperlinkMutator{base: newBase(schema.FamilyHyperlink, log)}
}

// Family implements engine.Mutator.
func (m *HyperlinkMutator) Family() schema.Family { return schema.FamilyHyperlink }

// Apply implements engine.Mutator.
func (m *HyperlinkMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	target := act.Descriptor.Target
	links := doc.Hyperlinks()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "add_hyperlink":
		err = links.Add(ctx, act.Sheet, target, str(act, "url"),
			str(act, "display_text"), str(act, "tooltip"))
	case "update_hyperlink":
		err = links.Update(ctx, act.Sheet, target, str(act, "url"), str(act, "display_text"))
	case "remove_hyperlink":
		var cells int
		cells, err = links.Remove(ctx, act.Sheet, target)
		if err == nil {
			detail = countDetail(cells)
		}
	default:
		err = fmt.Errorf("kind %q not handled by hyperlink mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}
