package memdoc

import (
	"context"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type commentOps struct{ w *Workbook }

func (o commentOps) AddComment(ctx context.Context, sheet, cell, text string) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	if err := o.checkAnchor(sheet, cell); err != nil {
		return "", err
	}
	for _, c := range o.w.st.Comments {
		if c.Sheet == sheet && c.Cell == cell {
			return "", document.Rejectf("cell %s already carries a comment thread", cell)
		}
	}
	picked, err := o.w.pickName("", "Comment")
	if err != nil {
		return "", err
	}
	o.w.st.Comments = append(o.w.st.Comments, &Comment{
		Name:  picked,
		Sheet: sheet,
		Cell:  cell,
		Text:  text,
	})
	return picked, nil
}

func (o commentOps) EditComment(ctx context.Context, name, text string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	c, err := o.comment(name)
	if err != nil {
		return err
	}
	c.Text = text
	return nil
}

func (o commentOps) Reply(ctx context.Context, name, text string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	c, err := o.comment(name)
	if err != nil {
		return err
	}
	c.Replies = append(c.Replies, text)
	return nil
}

func (o commentOps) DeleteComment(ctx context.Context, name string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	for i, c := range o.w.st.Comments {
		if c.Name == name {
			o.w.st.Comments = append(o.w.st.Comments[:i], o.w.st.Comments[i+1:]...)
			return nil
		}
	}
	return document.Rejectf("no comment named %q", name)
}

func (o commentOps) AddNote(ctx context.Context, sheet, cell, text string) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	if err := o.checkAnchor(sheet, cell); err != nil {
		return "", err
	}
	for _, n := range o.w.st.Notes {
		if n.Sheet == sheet && n.Cell == cell {
			return "", document.Rejectf("cell %s already carries a note", cell)
		}
	}
	picked, err := o.w.pickName("", "Note")
	if err != nil {
		return "", err
	}
	o.w.st.Notes = append(o.w.st.Notes, &Note{
		Name:  picked,
		Sheet: sheet,
		Cell:  cell,
		Text:  text,
	})
	return picked, nil
}

func (o commentOps) DeleteNote(ctx context.Context, name string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	for i, n := range o.w.st.Notes {
		if n.Name == name {
			o.w.st.Notes = append(o.w.st.Notes[:i], o.w.st.Notes[i+1:]...)
			return nil
		}
	}
	// A note is not a comment; a comment name here is still not found.
	return document.Rejectf("no note named %q", name)
}

func (o commentOps) comment(name string) (*Comment, error) {
	for _, c := range o.w.st.Comments {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, document.Rejectf("no comment named %q", name)
}

func (o commentOps) checkAnchor(sheet, cell string) error {
	if _, err := o.w.sheet(sheet); err != nil {
		return err
	}
	ref, err := document.ParseRange(cell)
	if err != nil || ref.Cells() != 1 {
		return document.Rejectf("comment anchor %q must be a single cell", cell)
	}
	return nil
}
