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

// CondFormatMutator serves the conditional formatting family. The four
// add kinds build one rule each; the document applies rules in the
// order they were added.
type CondFormatMutator struct {
	base
}

// NewCondFormatMutator creates the conditional format mutator.
func NewCondFormatMutator(log zerolog.Logger) *CondFormatMutator {
	return &CondFormatMutator{base: newBase(schema.FamilyCondFormat, log)}
}

// Family implements engine.Mutator.
func (m *CondFormatMutator) Family() schema.Family { return schema.FamilyCondFormat }

// Apply implements engine.Mutator.
func (m *CondFormatMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	target := act.Descriptor.Target
	formats := doc.CondFormats()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "add_cell_value_rule":
		err = formats.AddRule(ctx, act.Sheet, target, document.CondFormatRule{
			Type:     "cell_value",
			Operator: str(act, "operator"),
			Value:    number(act, "value", 0),
			Value2:   number(act, "value2", 0),
			Colors:   []string{str(act, "fill_color")},
		})
	case "add_color_scale":
		colors := []string{str(act, "min_color")}
		if mid := str(act, "mid_color"); mid != "" {
			colors = append(colors, mid)
		}
		colors = append(colors, str(act, "max_color"))
		err = formats.AddRule(ctx, act.Sheet, target, document.CondFormatRule{
			Type:   "color_scale",
			Colors: colors,
		})
	case "add_data_bar":
		rule := document.CondFormatRule{Type: "data_bar"}
		if c := str(act, "color"); c != "" {
			rule.Colors = []string{c}
		}
		err = formats.AddRule(ctx, act.Sheet, target, rule)
	case "add_icon_set":
		err = formats.AddRule(ctx, act.Sheet, target, document.CondFormatRule{
			Type:    "icon_set",
			IconSet: str(act, "icon_set"),
		})
	case "clear_conditional_formats":
		var removed int
		removed, err = formats.Clear(ctx, act.Sheet, target)
		if err == nil {
			detail = &engine.OutcomeDetail{Message: fmt.Sprintf("%d rules removed", removed)}
		}
	default:
		err = fmt.Errorf("kind %q not handled by conditional format mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}
