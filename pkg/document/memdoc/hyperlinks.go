package memdoc

import (
	"context"
	"strings"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type hyperlinkOps struct{ w *Workbook }

func (o hyperlinkOps) Add(ctx context.Context, sheet, rng, url, display, tooltip string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, nil)
	if err != nil {
		return err
	}
	if err := checkURL(url); err != nil {
		return err
	}
	if _, err := document.ParseRange(rng); err != nil {
		return document.Rejectf("invalid range %q: %v", rng, err)
	}
	for _, l := range sh.Links {
		if l.Range == rng {
			return document.Rejectf("range %s already carries a hyperlink", rng)
		}
	}
	sh.Links = append(sh.Links, &Hyperlink{Range: rng, URL: url, Display: display, Tooltip: tooltip})
	return nil
}

func (o hyperlinkOps) Update(ctx context.Context, sheet, rng, url, display string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, nil)
	if err != nil {
		return err
	}
	if err := checkURL(url); err != nil {
		return err
	}
	for _, l := range sh.Links {
		if l.Range == rng {
			l.URL = url
			if display != "" {
				l.Display = display
			}
			return nil
		}
	}
	return document.Rejectf("no hyperlink on range %s", rng)
}

func (o hyperlinkOps) Remove(ctx context.Context, sheet, rng string) (int, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, nil)
	if err != nil {
		return 0, err
	}
	ref, err := document.ParseRange(rng)
	if err != nil {
		return 0, document.Rejectf("invalid range %q: %v", rng, err)
	}
	bounds, _ := ref.Bounds()

	removed := 0
	kept := sh.Links[:0]
	for _, l := range sh.Links {
		lref, lerr := document.ParseRange(l.Range)
		if lerr == nil {
			if lb, ok := lref.Bounds(); ok && lb.Overlaps(bounds) {
				removed++
				continue
			}
		}
		kept = append(kept, l)
	}
	sh.Links = kept
	return removed, nil
}

func checkURL(url string) error {
	if url == "" {
		return document.Rejectf("hyperlink URL must not be empty")
	}
	if !strings.Contains(url, "://") && !strings.HasPrefix(url, "mailto:") && !strings.HasPrefix(url, "#") {
		return document.Rejectf("hyperlink URL %q has no scheme", url)
	}
	return nil
}
