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

// SlicerMutator serves the slicer family.
type SlicerMutator struct {
	base
}

// NewSlicerMutator creates the slicer mutator.
func NewSlicerMutator(log zerolog.Logger) *SlicerMutator {
	return &SlicerMutator{base: newBase(schema.FamilySlicer, log)}
}

// Family implements engine.Mutator.
func (m *SlicerMutator) Family() schema.Family { return schema.FamilySlicer }

// Apply implements engine.Mutator.
func (m *SlicerMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	slicers := doc.Slicers()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "create_slicer":
		var name string
		name, err = slicers.Create(ctx, str(act, "source"), str(act, "field"), str(act, "name"))
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "delete_slicer":
		err = slicers.Delete(ctx, act.Descriptor.Target)
	case "set_slicer_selection":
		err = slicers.SetSelection(ctx, act.Descriptor.Target, strList(act, "items"))
	case "clear_slicer_filter":
		err = slicers.ClearFilter(ctx, act.Descriptor.Target)
	default:
		err = fmt.Errorf("kind %q not handled by slicer mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}
