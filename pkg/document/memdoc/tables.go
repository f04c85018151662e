package memdoc

import (
	"context"
	"fmt"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type tableOps struct{ w *Workbook }

func (o tableOps) Create(ctx context.Context, sheet, rng, name string, hasHeaders bool, style string) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, nil)
	if err != nil {
		return "", err
	}
	ref, err := document.ParseRange(rng)
	if err != nil {
		return "", document.Rejectf("invalid table range %q: %v", rng, err)
	}
	bounds, ok := ref.Bounds()
	if !ok || !ref.Contiguous() {
		return "", document.Rejectf("table range must be a single contiguous area")
	}
	if owner, hit := o.w.overlapsEntity(sheet, bounds, ""); hit {
		return "", document.Rejectf("range %s overlaps %s", rng, owner)
	}
	picked, err := o.w.pickName(name, "Table")
	if err != nil {
		return "", err
	}

	var columns []string
	if hasHeaders {
		columns = o.w.headerRow(sh, rng)
	} else {
		for i := 1; i <= bounds.Cols(); i++ {
			columns = append(columns, fmt.Sprintf("Column%d", i))
		}
	}
	o.w.st.Tables = append(o.w.st.Tables, &Table{
		Name:       picked,
		Sheet:      sheet,
		Range:      rng,
		Columns:    columns,
		HasHeaders: hasHeaders,
		Style:      style,
	})
	return picked, nil
}

func (o tableOps) Delete(ctx context.Context, name string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	for i, t := range o.w.st.Tables {
		if t.Name != name {
			continue
		}
		// Slicers bound to the table die with it.
		kept := o.w.st.Slicers[:0]
		for _, s := range o.w.st.Slicers {
			if s.Source != name {
				kept = append(kept, s)
			}
		}
		o.w.st.Slicers = kept
		o.w.st.Tables = append(o.w.st.Tables[:i], o.w.st.Tables[i+1:]...)
		return nil
	}
	return document.Rejectf("no table named %q", name)
}

func (o tableOps) Rename(ctx context.Context, name, newName string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	t, err := o.w.table(name)
	if err != nil {
		return err
	}
	if document.LooksLikeCellRef(newName) {
		return document.Rejectf("name %q is indistinguishable from a cell reference", newName)
	}
	if o.w.nameTaken(newName) {
		return document.Rejectf("name %q is already in use", newName)
	}
	for _, s := range o.w.st.Slicers {
		if s.Source == name {
			s.Source = newName
		}
	}
	for _, p := range o.w.st.Pivots {
		if p.Source == name {
			p.Source = newName
		}
	}
	t.Name = newName
	return nil
}

func (o tableOps) Resize(ctx context.Context, name, rng string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	t, err := o.w.table(name)
	if err != nil {
		return err
	}
	ref, err := document.ParseRange(rng)
	if err != nil {
		return document.Rejectf("invalid table range %q: %v", rng, err)
	}
	bounds, ok := ref.Bounds()
	if !ok || !ref.Contiguous() {
		return document.Rejectf("table range must be a single contiguous area")
	}
	if owner, hit := o.w.overlapsEntity(t.Sheet, bounds, name); hit {
		return document.Rejectf("range %s overlaps %s", rng, owner)
	}
	t.Range = rng
	return nil
}

func (o tableOps) AddColumn(ctx context.Context, name, column string, position int) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	t, err := o.w.table(name)
	if err != nil {
		return err
	}
	if contains(t.Columns, column) {
		return document.Rejectf("table %q already has a column %q", name, column)
	}
	if position < 0 || position >= len(t.Columns) {
		t.Columns = append(t.Columns, column)
		return nil
	}
	t.Columns = append(t.Columns[:position], append([]string{column}, t.Columns[position:]...)...)
	return nil
}

func (o tableOps) RemoveColumn(ctx context.Context, name, column string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	t, err := o.w.table(name)
	if err != nil {
		return err
	}
	if !contains(t.Columns, column) {
		return document.Rejectf("table %q has no column %q", name, column)
	}
	t.Columns = remove(t.Columns, column)
	delete(t.Totals, column)
	return nil
}

func (o tableOps) AddTotalsRow(ctx context.Context, name, column, function string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	t, err := o.w.table(name)
	if err != nil {
		return err
	}
	if !contains(t.Columns, column) {
		return document.Rejectf("table %q has no column %q", name, column)
	}
	if t.Totals == nil {
		t.Totals = make(map[string]string)
	}
	t.Totals[column] = function
	return nil
}

func (o tableOps) ApplyStyle(ctx context.Context, name, style string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	t, err := o.w.table(name)
	if err != nil {
		return err
	}
	t.Style = style
	return nil
}
