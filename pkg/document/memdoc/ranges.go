package memdoc

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/sheetflow/sheetflow/pkg/document"
)

type rangeOps struct{ w *Workbook }

func (o rangeOps) InsertRows(ctx context.Context, sheet string, startRow, count int) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, allowInsert)
	if err != nil {
		return err
	}
	if startRow < 1 || count < 1 {
		return document.Rejectf("row insertion requires a positive row and count")
	}
	o.shiftRows(sh, startRow, count)
	return nil
}

func (o rangeOps) DeleteRows(ctx context.Context, sheet string, startRow, count int) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, allowDelete)
	if err != nil {
		return err
	}
	if startRow < 1 || count < 1 {
		return document.Rejectf("row deletion requires a positive row and count")
	}
	for addr := range sh.Cells {
		if _, row, ok := splitAddr(addr); ok && row >= startRow && row < startRow+count {
			delete(sh.Cells, addr)
		}
	}
	o.shiftRows(sh, startRow+count, -count)
	return nil
}

func (o rangeOps) InsertColumns(ctx context.Context, sheet, startColumn string, count int) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, allowInsert)
	if err != nil {
		return err
	}
	start := document.ColumnIndex(startColumn)
	if start < 1 || count < 1 {
		return document.Rejectf("column insertion requires a valid column and positive count")
	}
	o.shiftCols(sh, start, count)
	return nil
}

func (o rangeOps) DeleteColumns(ctx context.Context, sheet, startColumn string, count int) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, allowDelete)
	if err != nil {
		return err
	}
	start := document.ColumnIndex(startColumn)
	if start < 1 || count < 1 {
		return document.Rejectf("column deletion requires a valid column and positive count")
	}
	for addr := range sh.Cells {
		if col, _, ok := splitAddr(addr); ok && col >= start && col < start+count {
			delete(sh.Cells, addr)
		}
	}
	o.shiftCols(sh, start+count, -count)
	return nil
}

func (o rangeOps) SetRowHeight(ctx context.Context, sheet string, row int, height float64) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, allowFormat)
	if err != nil {
		return err
	}
	if row < 1 || height < 0 {
		return document.Rejectf("row height requires a positive row and non-negative height")
	}
	if sh.RowHeights == nil {
		sh.RowHeights = make(map[int]float64)
	}
	sh.RowHeights[row] = height
	return nil
}

func (o rangeOps) SetColumnWidth(ctx context.Context, sheet, column string, width float64) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, allowFormat)
	if err != nil {
		return err
	}
	if !document.ValidColumnName(column) {
		return document.Rejectf("invalid column %q", column)
	}
	if width < 0 {
		return document.Rejectf("column width must be non-negative")
	}
	if sh.ColumnWidths == nil {
		sh.ColumnWidths = make(map[string]float64)
	}
	sh.ColumnWidths[strings.ToUpper(column)] = width
	return nil
}

func (o rangeOps) AutofitColumns(ctx context.Context, sheet, rng string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, allowFormat)
	if err != nil {
		return err
	}
	ref, err := document.ParseRange(rng)
	if err != nil {
		return document.Rejectf("invalid range %q: %v", rng, err)
	}
	if sh.ColumnWidths == nil {
		sh.ColumnWidths = make(map[string]float64)
	}
	for _, a := range ref.Areas {
		for col := a.StartCol; col <= a.EndCol; col++ {
			widest := 8.0
			for addr, v := range sh.Cells {
				if c, _, ok := splitAddr(addr); ok && c == col && float64(len(v)) > widest {
					widest = float64(len(v))
				}
			}
			if widest > 255 {
				widest = 255
			}
			sh.ColumnWidths[document.ColumnName(col)] = widest
		}
	}
	return nil
}

func (o rangeOps) HideRows(ctx context.Context, sheet string, startRow, count int) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, allowDelete)
	if err != nil {
		return err
	}
	if startRow < 1 || count < 1 {
		return document.Rejectf("row hiding requires a positive row and count")
	}
	for row := startRow; row < startRow+count; row++ {
		found := false
		for _, r := range sh.HiddenRows {
			if r == row {
				found = true
				break
			}
		}
		if !found {
			sh.HiddenRows = append(sh.HiddenRows, row)
		}
	}
	sort.Ints(sh.HiddenRows)
	return nil
}

func (o rangeOps) FindReplace(ctx context.Context, sheet, rng, find, replace string, opts document.FindReplaceOptions) (int, error) {
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
	if find == "" {
		return 0, document.Rejectf("find text must not be empty")
	}

	count := 0
	for _, addr := range cellAddresses(ref) {
		v, ok := sh.Cells[addr]
		if !ok {
			continue
		}
		replaced, hit := replaceValue(v, find, replace, opts)
		if hit {
			sh.Cells[addr] = replaced
			count++
		}
	}
	return count, nil
}

func (o rangeOps) Sort(ctx context.Context, sheet, rng string, column int, ascending, hasHeaders bool) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.mutableSheet(sheet, allowSort)
	if err != nil {
		return err
	}
	ref, err := document.ParseRange(rng)
	if err != nil {
		return document.Rejectf("invalid range %q: %v", rng, err)
	}
	bounds, ok := ref.Bounds()
	if !ok || !ref.Contiguous() {
		return document.Rejectf("sort range must be a single contiguous area")
	}
	if column < 1 || column > bounds.Cols() {
		return document.Rejectf("sort column %d is outside the range", column)
	}

	firstRow := bounds.StartRow
	if hasHeaders {
		firstRow++
	}
	if firstRow > bounds.EndRow {
		return nil
	}

	// Pull the rows out, order them by the key column, write them back.
	type rowData struct {
		key   string
		cells []string
	}
	rows := make([]rowData, 0, bounds.EndRow-firstRow+1)
	for r := firstRow; r <= bounds.EndRow; r++ {
		rd := rowData{cells: make([]string, bounds.Cols())}
		for c := bounds.StartCol; c <= bounds.EndCol; c++ {
			rd.cells[c-bounds.StartCol] = sh.Cells[cellAddr(c, r)]
		}
		rd.key = rd.cells[column-1]
		rows = append(rows, rd)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		less := compareValues(rows[i].key, rows[j].key)
		if ascending {
			return less < 0
		}
		return less > 0
	})
	for i, rd := range rows {
		r := firstRow + i
		for c := bounds.StartCol; c <= bounds.EndCol; c++ {
			addr := cellAddr(c, r)
			if v := rd.cells[c-bounds.StartCol]; v != "" {
				sh.Cells[addr] = v
			} else {
				delete(sh.Cells, addr)
			}
		}
	}
	return nil
}

// shiftRows moves every cell at or below startRow by delta rows.
func (o rangeOps) shiftRows(sh *Sheet, startRow, delta int) {
	moved := make(map[string]string)
	for addr, v := range sh.Cells {
		col, row, ok := splitAddr(addr)
		if !ok || row < startRow {
			continue
		}
		delete(sh.Cells, addr)
		moved[cellAddr(col, row+delta)] = v
	}
	for addr, v := range moved {
		sh.Cells[addr] = v
	}
}

// shiftCols moves every cell at or right of startCol by delta columns.
func (o rangeOps) shiftCols(sh *Sheet, startCol, delta int) {
	moved := make(map[string]string)
	for addr, v := range sh.Cells {
		col, row, ok := splitAddr(addr)
		if !ok || col < startCol {
			continue
		}
		delete(sh.Cells, addr)
		moved[cellAddr(col+delta, row)] = v
	}
	for addr, v := range moved {
		sh.Cells[addr] = v
	}
}

// splitAddr parses an unqualified A1 address.
func splitAddr(addr string) (col, row int, ok bool) {
	i := 0
	for i < len(addr) && addr[i] >= 'A' && addr[i] <= 'Z' {
		i++
	}
	if i == 0 || i == len(addr) {
		return 0, 0, false
	}
	r, err := strconv.Atoi(addr[i:])
	if err != nil {
		return 0, 0, false
	}
	return document.ColumnIndex(addr[:i]), r, true
}

func replaceValue(v, find, replace string, opts document.FindReplaceOptions) (string, bool) {
	if opts.MatchEntireCell {
		if opts.MatchCase {
			if v == find {
				return replace, true
			}
		} else if strings.EqualFold(v, find) {
			return replace, true
		}
		return v, false
	}
	if opts.MatchCase {
		if strings.Contains(v, find) {
			return strings.ReplaceAll(v, find, replace), true
		}
		return v, false
	}
	lower := strings.ToLower(v)
	needle := strings.ToLower(find)
	if !strings.Contains(lower, needle) {
		return v, false
	}
	var b strings.Builder
	for {
		idx := strings.Index(strings.ToLower(v), needle)
		if idx < 0 {
			b.WriteString(v)
			break
		}
		b.WriteString(v[:idx])
		b.WriteString(replace)
		v = v[idx+len(find):]
	}
	return b.String(), true
}

// compareValues orders numerically when both values parse as numbers,
// lexically otherwise. Empty cells sort last.
func compareValues(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == "" {
		return 1
	}
	if b == "" {
		return -1
	}
	fa, ea := strconv.ParseFloat(a, 64)
	fb, eb := strconv.ParseFloat(b, 64)
	if ea == nil && eb == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

func allowInsert(opts document.ProtectionOptions) bool { return opts.AllowInsertRows }
func allowDelete(opts document.ProtectionOptions) bool { return opts.AllowDeleteRows }
func allowSort(opts document.ProtectionOptions) bool   { return opts.AllowSort }
