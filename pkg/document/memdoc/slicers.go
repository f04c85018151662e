package memdoc

import (
	"context"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type slicerOps struct{ w *Workbook }

func (o slicerOps) Create(ctx context.Context, source, field, name string) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	fields, err := o.sourceFields(source)
	if err != nil {
		return "", err
	}
	if len(fields) > 0 && !contains(fields, field) {
		return "", document.Rejectf("source %q has no field %q", source, field)
	}
	// One slicer per field per source.
	for _, s := range o.w.st.Slicers {
		if s.Source == source && s.Field == field {
			return "", document.Rejectf("a slicer for field %q on %q already exists", field, source)
		}
	}
	picked, err := o.w.pickName(name, "Slicer")
	if err != nil {
		return "", err
	}
	o.w.st.Slicers = append(o.w.st.Slicers, &Slicer{Name: picked, Source: source, Field: field})
	return picked, nil
}

func (o slicerOps) Delete(ctx context.Context, name string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	for i, s := range o.w.st.Slicers {
		if s.Name == name {
			o.w.st.Slicers = append(o.w.st.Slicers[:i], o.w.st.Slicers[i+1:]...)
			return nil
		}
	}
	return document.Rejectf("no slicer named %q", name)
}

func (o slicerOps) SetSelection(ctx context.Context, name string, items []string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	s, err := o.slicer(name)
	if err != nil {
		return err
	}
	s.Selection = append([]string(nil), items...)
	return nil
}

func (o slicerOps) ClearFilter(ctx context.Context, name string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	s, err := o.slicer(name)
	if err != nil {
		return err
	}
	s.Selection = nil
	return nil
}

func (o slicerOps) slicer(name string) (*Slicer, error) {
	for _, s := range o.w.st.Slicers {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, document.Rejectf("no slicer named %q", name)
}

// sourceFields resolves the field names of a slicer source, which must
// be an existing table or pivot table.
func (o slicerOps) sourceFields(source string) ([]string, error) {
	for _, t := range o.w.st.Tables {
		if t.Name == source {
			return t.Columns, nil
		}
	}
	for _, p := range o.w.st.Pivots {
		if p.Name == source {
			return p.Headers, nil
		}
	}
	return nil, document.Rejectf("slicer source %q is neither a table nor a pivot table", source)
}
