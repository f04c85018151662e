package memdoc

import (
	"context"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type protectionOps struct{ w *Workbook }

func (o protectionOps) ProtectSheet(ctx context.Context, sheet, password string, opts document.ProtectionOptions) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(sheet)
	if err != nil {
		return err
	}
	if sh.Protected {
		return document.Rejectf("sheet %q is already protected", sheet)
	}
	sh.Protected = true
	sh.Password = password
	sh.Allow = opts
	return nil
}

func (o protectionOps) UnprotectSheet(ctx context.Context, sheet, password string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(sheet)
	if err != nil {
		return err
	}
	if !sh.Protected {
		return document.Rejectf("sheet %q is not protected", sheet)
	}
	if sh.Password != password {
		return document.Rejectf("wrong password for sheet %q", sheet)
	}
	sh.Protected = false
	sh.Password = ""
	sh.Allow = document.ProtectionOptions{}
	return nil
}

func (o protectionOps) ProtectWorkbook(ctx context.Context, password string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	if o.w.st.Protected {
		return document.Rejectf("workbook structure is already protected")
	}
	o.w.st.Protected = true
	o.w.st.Password = password
	return nil
}

func (o protectionOps) UnprotectWorkbook(ctx context.Context, password string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	if !o.w.st.Protected {
		return document.Rejectf("workbook structure is not protected")
	}
	if o.w.st.Password != password {
		return document.Rejectf("wrong workbook password")
	}
	o.w.st.Protected = false
	o.w.st.Password = ""
	return nil
}

func (o protectionOps) SetCellsLocked(ctx context.Context, sheet, rng string, locked bool) (int, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(sheet)
	if err != nil {
		return 0, err
	}
	// Lock state changes require the sheet unprotected, same as the
	// hosted document.
	if sh.Protected {
		return 0, document.Rejectf("sheet %q is protected", sheet)
	}
	ref, err := document.ParseRange(rng)
	if err != nil {
		return 0, document.Rejectf("invalid range %q: %v", rng, err)
	}
	cells := cellAddresses(ref)
	if locked {
		sh.Unlocked = removeAll(sh.Unlocked, cells)
	} else {
		for _, c := range cells {
			if !contains(sh.Unlocked, c) {
				sh.Unlocked = append(sh.Unlocked, c)
			}
		}
	}
	return len(cells), nil
}

// cellAddresses expands a range into its individual A1 addresses.
func cellAddresses(ref document.RangeRef) []string {
	var out []string
	for _, a := range ref.Areas {
		for row := a.StartRow; row <= a.EndRow; row++ {
			for col := a.StartCol; col <= a.EndCol; col++ {
				out = append(out, cellAddr(col, row))
			}
		}
	}
	return out
}

func removeAll(list, items []string) []string {
	out := list[:0]
	for _, v := range list {
		if !contains(items, v) {
			out = append(out, v)
		}
	}
	return out
}
