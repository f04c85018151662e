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

// softSparklineCap is the per-sheet sparkline group count beyond which
// creation still succeeds but the outcome carries a warning. Dense
// sparkline sheets degrade recalculation badly before the document
// itself refuses anything.
const softSparklineCap = 50

// SparklineMutator serves the sparkline family.
type SparklineMutator struct {
	base
}

// NewSparklineMutator creates the sparkline mutator.
func NewSparklineMutator(log zerolog.Logger) *SparklineMutator {
	return &SparklineMutator{base: newBase(schema.FamilySparkline, log)}
}

// Family implements engine.Mutator.
func (m *SparklineMutator) Family() schema.Family { return schema.FamilySparkline }

// Apply implements engine.Mutator.
func (m *SparklineMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	sparks := doc.Sparklines()

	var detail *engine.OutcomeDetail
	var warnings []string
	var err error
	switch act.Descriptor.Kind {
	case "create_sparklines":
		if count, cerr := sparks.CountOnSheet(ctx, act.Sheet); cerr == nil && count >= softSparklineCap {
			warnings = append(warnings, fmt.Sprintf(
				"sheet %q already holds %d sparkline groups; recalculation may degrade", act.Sheet, count))
			m.log.Warn().Str("sheet", act.Sheet).Int("count", count).
				Msg("sparkline soft cap exceeded")
		}
		var name string
		name, err = sparks.Create(ctx, act.Sheet, act.Descriptor.Target,
			str(act, "source"), strDefault(act, "type", "line"), str(act, "name"))
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "delete_sparklines":
		err = sparks.Delete(ctx, act.Descriptor.Target)
	case "set_sparkline_type":
		err = sparks.SetType(ctx, act.Descriptor.Target, str(act, "type"))
	case "set_sparkline_color":
		err = sparks.SetColor(ctx, act.Descriptor.Target, str(act, "color"))
	default:
		err = fmt.Errorf("kind %q not handled by sparkline mutator", act.Descriptor.Kind)
	}

	if err != nil {
		out := failed(act, err, begin)
		out.Warnings = warnings
		return out
	}
	out := applied(act, detail, begin)
	out.Warnings = warnings
	return out
}
