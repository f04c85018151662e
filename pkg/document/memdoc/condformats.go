package memdoc

import (
	"context"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type condFormatOps struct{ w *Workbook }

func (o condFormatOps) AddRule(ctx context.Context, sheet, rng string, rule document.CondFormatRule) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, allowFormat)
	if err != nil {
		return err
	}
	if _, err := document.ParseRange(rng); err != nil {
		return document.Rejectf("invalid range %q: %v", rng, err)
	}
	switch rule.Type {
	case "cell_value", "color_scale", "data_bar", "icon_set":
	default:
		return document.Rejectf("unknown rule type %q", rule.Type)
	}
	sh.Rules = append(sh.Rules, &CondRule{Range: rng, Rule: rule})
	return nil
}

func (o condFormatOps) Clear(ctx context.Context, sheet, rng string) (int, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, allowFormat)
	if err != nil {
		return 0, err
	}
	ref, err := document.ParseRange(rng)
	if err != nil {
		return 0, document.Rejectf("invalid range %q: %v", rng, err)
	}
	bounds, _ := ref.Bounds()

	removed := 0
	kept := sh.Rules[:0]
	for _, r := range sh.Rules {
		rref, rerr := document.ParseRange(r.Range)
		if rerr == nil {
			if rb, ok := rref.Bounds(); ok && rb.Overlaps(bounds) {
				removed++
				continue
			}
		}
		kept = append(kept, r)
	}
	sh.Rules = kept
	return removed, nil
}

func allowFormat(opts document.ProtectionOptions) bool {
	return opts.AllowFormatCells
}
