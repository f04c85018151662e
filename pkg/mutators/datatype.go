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

// DataTypeMutator serves the linked data type family.
type DataTypeMutator struct {
	base
}

// NewDataTypeMutator creates the data type mutator.
func NewDataTypeMutator(log zerolog.Logger) *DataTypeMutator {
	return &DataTypeMutator{base: newBase(schema.FamilyDataType, log)}
}

// Family implements engine.Mutator.
func (m *DataTypeMutator) Family() schema.Family { return schema.FamilyDataType }

// Apply implements engine.Mutator.
func (m *DataTypeMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	target := act.Descriptor.Target
	types := doc.DataTypes()

	var cells int
	var err error
	switch act.Descriptor.Kind {
	case "convert_to_stock":
		cells, err = types.Convert(ctx, act.Sheet, target, "stock", strList(act, "properties"))
	case "convert_to_geography":
		cells, err = types.Convert(ctx, act.Sheet, target, "geography", strList(act, "properties"))
	case "convert_to_text":
		cells, err = types.ConvertToText(ctx, act.Sheet, target)
	case "refresh_data_types":
		cells, err = types.Refresh(ctx, act.Sheet, target)
	default:
		err = fmt.Errorf("kind %q not handled by data type mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, countDetail(cells), begin)
}
