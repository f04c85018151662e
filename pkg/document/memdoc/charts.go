package memdoc

import (
	"context"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type chartOps struct{ w *Workbook }

func (o chartOps) Create(ctx context.Context, sheet, sourceRange, chartType, title, name string) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	if _, err := o.w.mutableSheet(sheet, allowObjects); err != nil {
		return "", err
	}
	if _, err := document.ParseRange(sourceRange); err != nil {
		return "", document.Rejectf("invalid source range %q: %v", sourceRange, err)
	}
	picked, err := o.w.pickName(name, "Chart")
	if err != nil {
		return "", err
	}
	o.w.st.Charts = append(o.w.st.Charts, &Chart{
		Name:  picked,
		Sheet: sheet,
		Range: sourceRange,
		Type:  chartType,
		Title: title,
	})
	return picked, nil
}

func (o chartOps) Delete(ctx context.Context, name string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	for i, c := range o.w.st.Charts {
		if c.Name == name {
			o.w.st.Charts = append(o.w.st.Charts[:i], o.w.st.Charts[i+1:]...)
			return nil
		}
	}
	return document.Rejectf("no chart named %q", name)
}

func (o chartOps) SetTitle(ctx context.Context, name, title string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	c, err := o.chart(name)
	if err != nil {
		return err
	}
	c.Title = title
	return nil
}

func (o chartOps) SetType(ctx context.Context, name, chartType string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	c, err := o.chart(name)
	if err != nil {
		return err
	}
	c.Type = chartType
	return nil
}

func (o chartOps) Resize(ctx context.Context, name string, width, height float64) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	c, err := o.chart(name)
	if err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return document.Rejectf("chart dimensions must be positive")
	}
	c.Width, c.Height = width, height
	return nil
}

func (o chartOps) chart(name string) (*Chart, error) {
	for _, c := range o.w.st.Charts {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, document.Rejectf("no chart named %q", name)
}

func allowObjects(opts document.ProtectionOptions) bool {
	return opts.AllowEditObjects
}
