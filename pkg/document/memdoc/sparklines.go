package memdoc

import (
	"context"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type sparklineOps struct{ w *Workbook }

func (o sparklineOps) Create(ctx context.Context, sheet, location, source, sparkType, name string) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	if _, err := o.w.mutableSheet(sheet, nil); err != nil {
		return "", err
	}
	locRef, err := document.ParseRange(location)
	if err != nil {
		return "", document.Rejectf("invalid location %q: %v", location, err)
	}
	srcRef, err := document.ParseRange(source)
	if err != nil {
		return "", document.Rejectf("invalid source %q: %v", source, err)
	}
	// One sparkline per location cell: the source must split evenly
	// across the location's rows or columns.
	locBounds, _ := locRef.Bounds()
	srcBounds, _ := srcRef.Bounds()
	if locBounds.Rows() > 1 && locBounds.Cols() > 1 {
		return "", document.Rejectf("location must be a single row or column of cells")
	}
	groups := locBounds.Rows() * locBounds.Cols()
	if srcBounds.Rows()%groups != 0 && srcBounds.Cols()%groups != 0 {
		return "", document.Rejectf("source %s does not divide evenly across %d sparklines", source, groups)
	}
	picked, err := o.w.pickName(name, "Sparklines")
	if err != nil {
		return "", err
	}
	if sparkType == "" {
		sparkType = "line"
	}
	o.w.st.Sparklines = append(o.w.st.Sparklines, &SparklineGroup{
		Name:     picked,
		Sheet:    sheet,
		Location: location,
		Source:   source,
		Type:     sparkType,
	})
	return picked, nil
}

func (o sparklineOps) Delete(ctx context.Context, name string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	for i, g := range o.w.st.Sparklines {
		if g.Name == name {
			o.w.st.Sparklines = append(o.w.st.Sparklines[:i], o.w.st.Sparklines[i+1:]...)
			return nil
		}
	}
	return document.Rejectf("no sparkline group named %q", name)
}

func (o sparklineOps) SetType(ctx context.Context, name, sparkType string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	g, err := o.group(name)
	if err != nil {
		return err
	}
	g.Type = sparkType
	return nil
}

func (o sparklineOps) SetColor(ctx context.Context, name, color string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	g, err := o.group(name)
	if err != nil {
		return err
	}
	g.Color = color
	return nil
}

func (o sparklineOps) CountOnSheet(ctx context.Context, sheet string) (int, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	count := 0
	for _, g := range o.w.st.Sparklines {
		if g.Sheet == sheet {
			count++
		}
	}
	return count, nil
}

func (o sparklineOps) group(name string) (*SparklineGroup, error) {
	for _, g := range o.w.st.Sparklines {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, document.Rejectf("no sparkline group named %q", name)
}
