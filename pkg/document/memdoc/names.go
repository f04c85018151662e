package memdoc

import (
	"context"
	"strings"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type nameOps struct{ w *Workbook }

func (o nameOps) Define(ctx context.Context, name, refersTo, comment string) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	if name == "" {
		return "", document.Rejectf("a defined name requires a name")
	}
	if document.LooksLikeCellRef(name) {
		return "", document.Rejectf("name %q is indistinguishable from a cell reference", name)
	}
	if strings.ContainsAny(name, " \t") {
		return "", document.Rejectf("name %q contains whitespace", name)
	}
	if o.w.nameTaken(name) {
		return "", document.Rejectf("name %q is already in use", name)
	}
	if err := o.checkRefersTo(refersTo); err != nil {
		return "", err
	}
	o.w.st.Names = append(o.w.st.Names, &DefinedName{Name: name, RefersTo: refersTo, Comment: comment})
	return name, nil
}

func (o nameOps) Update(ctx context.Context, name, refersTo string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	n, err := o.lookup(name)
	if err != nil {
		return err
	}
	if err := o.checkRefersTo(refersTo); err != nil {
		return err
	}
	n.RefersTo = refersTo
	return nil
}

func (o nameOps) Rename(ctx context.Context, name, newName string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	n, err := o.lookup(name)
	if err != nil {
		return err
	}
	if document.LooksLikeCellRef(newName) {
		return document.Rejectf("name %q is indistinguishable from a cell reference", newName)
	}
	if o.w.nameTaken(newName) {
		return document.Rejectf("name %q is already in use", newName)
	}
	n.Name = newName
	return nil
}

func (o nameOps) Delete(ctx context.Context, name string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	for i, n := range o.w.st.Names {
		if n.Name == name {
			o.w.st.Names = append(o.w.st.Names[:i], o.w.st.Names[i+1:]...)
			return nil
		}
	}
	return document.Rejectf("no defined name %q", name)
}

func (o nameOps) Value(ctx context.Context, name string) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	n, err := o.lookup(name)
	if err != nil {
		return "", err
	}
	return n.RefersTo, nil
}

func (o nameOps) lookup(name string) (*DefinedName, error) {
	for _, n := range o.w.st.Names {
		if n.Name == name {
			return n, nil
		}
	}
	return nil, document.Rejectf("no defined name %q", name)
}

// checkRefersTo accepts a formula (leading "=") or a sheet-qualified
// range reference.
func (o nameOps) checkRefersTo(refersTo string) error {
	if refersTo == "" {
		return document.Rejectf("a defined name requires a referent")
	}
	if strings.HasPrefix(refersTo, "=") {
		return nil
	}
	ref, err := document.ParseRange(refersTo)
	if err != nil {
		return document.Rejectf("referent %q is neither a formula nor a range: %v", refersTo, err)
	}
	if ref.Sheet == "" {
		return document.Rejectf("referent %q must be sheet qualified", refersTo)
	}
	if _, err := o.w.sheet(ref.Sheet); err != nil {
		return err
	}
	return nil
}
