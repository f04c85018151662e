package mutators

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/sheetflow/sheetflow/pkg/document"
	"github.com/sheetflow/sheetflow/pkg/engine"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

// ShapeMutator serves the shape and image family.
type ShapeMutator struct {
	base
}

// NewShapeMutator creates the shape mutator.
func NewShapeMutator(log zerolog.Logger) *ShapeMutator {
	return &ShapeMutator{base: newBase(schema.FamilyShape, log)}
}

// Family implements engine.Mutator.
func (m *ShapeMutator) Family() schema.Family { return schema.FamilyShape }

// Apply implements engine.Mutator.
func (m *ShapeMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	target := act.Descriptor.Target
	shapes := doc.Shapes()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "insert_image":
		payload, derr := base64.StdEncoding.DecodeString(str(act, "image_base64"))
		if derr != nil {
			// The payload never reached the document, so this is a
			// rejection rather than a failure.
			return rejected(act, engine.NewActionError(engine.ErrInvalidParameter,
				"image payload is not valid base64", derr).
				WithAction(act.Descriptor.Kind).WithField("image_base64"), begin)
		}
		var name string
		name, err = shapes.InsertImage(ctx, act.Sheet, target, str(act, "name"), payload)
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "insert_geometric_shape":
		var name string
		name, err = shapes.InsertShape(ctx, act.Sheet, target, str(act, "name"),
			str(act, "shape_type"), str(act, "fill_color"))
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "insert_text_box":
		var name string
		name, err = shapes.InsertTextBox(ctx, act.Sheet, target, str(act, "name"), str(act, "text"))
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "move_shape":
		err = shapes.Move(ctx, target, number(act, "left", 0), number(act, "top", 0))
	case "resize_shape":
		err = shapes.Resize(ctx, target, number(act, "width", 0), number(act, "height", 0))
	case "delete_shape":
		err = shapes.Delete(ctx, target)
	default:
		err = fmt.Errorf("kind %q not handled by shape mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}
