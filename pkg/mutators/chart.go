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

// ChartMutator serves the embedded chart family.
type ChartMutator struct {
	base
}

// NewChartMutator creates the chart mutator.
func NewChartMutator(log zerolog.Logger) *ChartMutator {
	return &ChartMutator{base: newBase(schema.FamilyChart, log)}
}

// Family implements engine.Mutator.
func (m *ChartMutator) Family() schema.Family { return schema.FamilyChart }

// Apply implements engine.Mutator.
func (m *ChartMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	target := act.Descriptor.Target
	charts := doc.Charts()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "create_chart":
		var name string
		name, err = charts.Create(ctx, act.Sheet, target,
			str(act, "chart_type"), str(act, "title"), str(act, "name"))
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "delete_chart":
		err = charts.Delete(ctx, target)
	case "set_chart_title":
		err = charts.SetTitle(ctx, target, str(act, "title"))
	case "set_chart_type":
		err = charts.SetType(ctx, target, str(act, "chart_type"))
	case "resize_chart":
		err = charts.Resize(ctx, target, number(act, "width", 0), number(act, "height", 0))
	default:
		err = fmt.Errorf("kind %q not handled by chart mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}
