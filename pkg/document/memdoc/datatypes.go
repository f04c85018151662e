package memdoc

import (
	"context"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type dataTypeOps struct{ w *Workbook }

func (o dataTypeOps) Convert(ctx context.Context, sheet, rng, dataType string, properties []string) (int, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, nil)
	if err != nil {
		return 0, err
	}
	cells, err := o.populated(sh, rng)
	if err != nil {
		return 0, err
	}
	if len(cells) == 0 {
		return 0, document.Rejectf("range %s holds no values to convert", rng)
	}
	if sh.LinkedTypes == nil {
		sh.LinkedTypes = make(map[string]string)
	}
	for _, c := range cells {
		sh.LinkedTypes[c] = dataType
	}
	return len(cells), nil
}

func (o dataTypeOps) ConvertToText(ctx context.Context, sheet, rng string) (int, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, nil)
	if err != nil {
		return 0, err
	}
	cells, err := o.populated(sh, rng)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, c := range cells {
		if _, linked := sh.LinkedTypes[c]; linked {
			delete(sh.LinkedTypes, c)
			count++
		}
	}
	return count, nil
}

func (o dataTypeOps) Refresh(ctx context.Context, sheet, rng string) (int, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(sheet)
	if err != nil {
		return 0, err
	}
	cells, err := o.populated(sh, rng)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, c := range cells {
		if _, linked := sh.LinkedTypes[c]; linked {
			count++
		}
	}
	return count, nil
}

// populated returns the addresses in the range holding values.
func (o dataTypeOps) populated(sh *Sheet, rng string) ([]string, error) {
	ref, err := document.ParseRange(rng)
	if err != nil {
		return nil, document.Rejectf("invalid range %q: %v", rng, err)
	}
	var out []string
	for _, addr := range cellAddresses(ref) {
		if sh.Cells[addr] != "" {
			out = append(out, addr)
		}
	}
	return out, nil
}
