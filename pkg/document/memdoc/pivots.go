package memdoc

import (
	"context"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type pivotOps struct{ w *Workbook }

func (o pivotOps) Create(ctx context.Context, sheet, sourceRange, destination, name string) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, nil)
	if err != nil {
		return "", err
	}
	if _, err := document.ParseRange(sourceRange); err != nil {
		return "", document.Rejectf("invalid source range %q: %v", sourceRange, err)
	}
	destRef, err := document.ParseRange(destination)
	if err != nil {
		return "", document.Rejectf("invalid destination %q: %v", destination, err)
	}
	if bounds, ok := destRef.Bounds(); ok {
		destSheet := destRef.Sheet
		if destSheet == "" {
			destSheet = sheet
		}
		if owner, hit := o.w.overlapsEntity(destSheet, bounds, ""); hit {
			return "", document.Rejectf("destination %s overlaps %s", destination, owner)
		}
	}
	picked, err := o.w.pickName(name, "PivotTable")
	if err != nil {
		return "", err
	}
	o.w.st.Pivots = append(o.w.st.Pivots, &Pivot{
		Name:        picked,
		Sheet:       sheet,
		Source:      sourceRange,
		Destination: destination,
		Headers:     o.w.headerRow(sh, sourceRange),
	})
	return picked, nil
}

func (o pivotOps) Delete(ctx context.Context, name string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	for i, p := range o.w.st.Pivots {
		if p.Name != name {
			continue
		}
		kept := o.w.st.Slicers[:0]
		for _, s := range o.w.st.Slicers {
			if s.Source != name {
				kept = append(kept, s)
			}
		}
		o.w.st.Slicers = kept
		o.w.st.Pivots = append(o.w.st.Pivots[:i], o.w.st.Pivots[i+1:]...)
		return nil
	}
	return document.Rejectf("no pivot table named %q", name)
}

func (o pivotOps) AddField(ctx context.Context, name, area, field, aggregation string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	p, err := o.w.pivot(name)
	if err != nil {
		return err
	}
	// A field must name a source header; a typo here silently yields
	// an empty pivot in the real document, so refuse it outright.
	if len(p.Headers) > 0 && !contains(p.Headers, field) {
		return document.Rejectf("pivot table %q has no source field %q", name, field)
	}
	switch area {
	case "row":
		if contains(p.Rows, field) {
			return document.Rejectf("field %q is already a row field", field)
		}
		p.Rows = append(p.Rows, field)
	case "column":
		if contains(p.Columns, field) {
			return document.Rejectf("field %q is already a column field", field)
		}
		p.Columns = append(p.Columns, field)
	case "data":
		if contains(p.Data, field) {
			return document.Rejectf("field %q is already a data field", field)
		}
		p.Data = append(p.Data, field)
		if aggregation != "" {
			if p.Aggregation == nil {
				p.Aggregation = make(map[string]string)
			}
			p.Aggregation[field] = aggregation
		}
	case "filter":
		if contains(p.Filters, field) {
			return document.Rejectf("field %q is already a filter field", field)
		}
		p.Filters = append(p.Filters, field)
	default:
		return document.Rejectf("unknown pivot area %q", area)
	}
	return nil
}

func (o pivotOps) RemoveField(ctx context.Context, name, field string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	p, err := o.w.pivot(name)
	if err != nil {
		return err
	}
	if !contains(p.Rows, field) && !contains(p.Columns, field) &&
		!contains(p.Data, field) && !contains(p.Filters, field) {
		return document.Rejectf("pivot table %q does not use field %q", name, field)
	}
	p.Rows = remove(p.Rows, field)
	p.Columns = remove(p.Columns, field)
	p.Data = remove(p.Data, field)
	p.Filters = remove(p.Filters, field)
	delete(p.Aggregation, field)
	return nil
}
