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

// CommentMutator serves the comment and note family. Threaded comments
// and legacy notes are distinct entity kinds; a note cannot be edited
// or replied to, only added and deleted.
type CommentMutator struct {
	base
}

// NewCommentMutator creates the comment mutator.
func NewCommentMutator(log zerolog.Logger) *CommentMutator {
	return &CommentMutator{base: newBase(schema.FamilyComment, log)}
}

// Family implements engine.Mutator.
func (m *CommentMutator) Family() schema.Family { return schema.FamilyComment }

// Apply implements engine.Mutator.
func (m *CommentMutator) Apply(ctx context.Context, act *engine.ValidatedAction, doc document.Handle) engine.ExecutionOutcome {
	begin := time.Now()
	if aerr := m.recheck(ctx, act, doc); aerr != nil {
		return rejected(act, aerr, begin)
	}

	target := act.Descriptor.Target
	comments := doc.Comments()

	var detail *engine.OutcomeDetail
	var err error
	switch act.Descriptor.Kind {
	case "add_comment":
		var name string
		name, err = comments.AddComment(ctx, act.Sheet, target, str(act, "text"))
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "edit_comment":
		err = comments.EditComment(ctx, target, str(act, "text"))
	case "reply_to_comment":
		err = comments.Reply(ctx, target, str(act, "text"))
	case "delete_comment":
		err = comments.DeleteComment(ctx, target)
	case "add_note":
		var name string
		name, err = comments.AddNote(ctx, act.Sheet, target, str(act, "text"))
		if err == nil {
			detail = createdDetail(act, name)
		}
	case "delete_note":
		err = comments.DeleteNote(ctx, target)
	default:
		err = fmt.Errorf("kind %q not handled by comment mutator", act.Descriptor.Kind)
	}

	if err != nil {
		return failed(act, err, begin)
	}
	return applied(act, detail, begin)
}
