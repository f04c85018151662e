package memdoc

import (
	"context"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type pageSetupOps struct{ w *Workbook }

func (o pageSetupOps) SetOrientation(ctx context.Context, sheet, orientation string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(sheet)
	if err != nil {
		return err
	}
	if orientation != "portrait" && orientation != "landscape" {
		return document.Rejectf("unknown orientation %q", orientation)
	}
	sh.Orientation = orientation
	return nil
}

func (o pageSetupOps) SetMargins(ctx context.Context, sheet string, m document.Margins) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(sheet)
	if err != nil {
		return err
	}
	if m.Top < 0 || m.Bottom < 0 || m.Left < 0 || m.Right < 0 {
		return document.Rejectf("margins must be non-negative")
	}
	sh.Margins = m
	return nil
}

func (o pageSetupOps) SetPrintArea(ctx context.Context, sheet, rng string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(sheet)
	if err != nil {
		return err
	}
	if _, err := document.ParseRange(rng); err != nil {
		return document.Rejectf("invalid print area %q: %v", rng, err)
	}
	sh.PrintArea = rng
	return nil
}

func (o pageSetupOps) ClearPrintArea(ctx context.Context, sheet string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(sheet)
	if err != nil {
		return err
	}
	sh.PrintArea = ""
	return nil
}

func (o pageSetupOps) AddPageBreak(ctx context.Context, sheet string, beforeRow int) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(sheet)
	if err != nil {
		return err
	}
	if beforeRow < 1 {
		return document.Rejectf("page break row must be positive")
	}
	for _, b := range sh.PageBreaks {
		if b == beforeRow {
			return document.Rejectf("a page break before row %d already exists", beforeRow)
		}
	}
	sh.PageBreaks = append(sh.PageBreaks, beforeRow)
	return nil
}

func (o pageSetupOps) SetHeaderFooter(ctx context.Context, sheet, header, footer string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(sheet)
	if err != nil {
		return err
	}
	sh.Header, sh.Footer = header, footer
	return nil
}
