// Package memdoc is the in-memory document implementation. It models a
// workbook as plain serializable state and enforces the structural
// rules a hosted spreadsheet enforces: overlapping tables, duplicate
// names, protection passwords, payload ceilings. It backs tests and
// the file-based CLI workflow.
package memdoc

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sheetflow/sheetflow/pkg/document"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

// maxImagePayload is the embedded image ceiling in bytes.
const maxImagePayload = 2 << 20

// defaultZoom is the zoom applied when a sheet records none.
const defaultZoom = 100

// Workbook is a live in-memory document. It satisfies document.Handle.
// All access goes through one mutex; the engine dispatches sequentially
// but snapshots may be taken from other goroutines.
type Workbook struct {
	mu  sync.Mutex
	st  *State
	seq map[string]int
}

// New creates a workbook over the given state. A nil state yields a
// single empty sheet at the highest supported feature level.
func New(st *State) *Workbook {
	if st == nil {
		st = &State{}
	}
	if st.APILevel == 0 {
		st.APILevel = schema.APILevelDataTypes
	}
	if len(st.Sheets) == 0 {
		st.Sheets = []*Sheet{{Name: "Sheet1"}}
	}
	if st.ActiveSheet == "" {
		st.ActiveSheet = st.Sheets[0].Name
	}
	for _, sh := range st.Sheets {
		if sh.Cells == nil {
			sh.Cells = make(map[string]string)
		}
		if sh.Zoom == 0 {
			sh.Zoom = defaultZoom
		}
	}
	return &Workbook{st: st, seq: make(map[string]int)}
}

// State returns the underlying workbook state. The caller must not
// mutate it while a session is running.
func (w *Workbook) State() *State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.st
}

// Snapshot implements document.Handle.
func (w *Workbook) Snapshot(ctx context.Context) (*document.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := &document.Snapshot{
		APILevel:          w.st.APILevel,
		ActiveSheet:       w.st.ActiveSheet,
		Sheets:            make(map[string]document.SheetState, len(w.st.Sheets)),
		Entities:          make(map[schema.EntityKind]map[string]document.Entity),
		WorkbookProtected: w.st.Protected,
		TakenAt:           time.Now(),
	}
	for _, sh := range w.st.Sheets {
		snap.Sheets[sh.Name] = document.SheetState{
			Name:   sh.Name,
			Hidden: sh.Hidden,
			Zoom:   sh.Zoom,
			Protection: document.Protection{
				Protected: sh.Protected,
				Options:   sh.Allow,
			},
		}
	}

	add := func(kind schema.EntityKind, e document.Entity) {
		e.Kind = kind
		if snap.Entities[kind] == nil {
			snap.Entities[kind] = make(map[string]document.Entity)
		}
		snap.Entities[kind][e.Name] = e
	}
	for _, t := range w.st.Tables {
		add(schema.EntityTable, document.Entity{Name: t.Name, Sheet: t.Sheet, Range: t.Range, Fields: append([]string(nil), t.Columns...)})
	}
	for _, p := range w.st.Pivots {
		add(schema.EntityPivot, document.Entity{Name: p.Name, Sheet: p.Sheet, Range: p.Destination, Fields: append([]string(nil), p.Headers...)})
	}
	for _, s := range w.st.Slicers {
		add(schema.EntitySlicer, document.Entity{Name: s.Name})
	}
	for _, g := range w.st.Sparklines {
		add(schema.EntitySparkline, document.Entity{Name: g.Name, Sheet: g.Sheet, Range: g.Location})
	}
	for _, n := range w.st.Names {
		add(schema.EntityNamedRange, document.Entity{Name: n.Name, Range: n.RefersTo})
	}
	for _, c := range w.st.Charts {
		add(schema.EntityChart, document.Entity{Name: c.Name, Sheet: c.Sheet, Range: c.Range})
	}
	for _, s := range w.st.Shapes {
		add(schema.EntityShape, document.Entity{Name: s.Name, Sheet: s.Sheet, Range: s.Anchor})
	}
	for _, c := range w.st.Comments {
		add(schema.EntityComment, document.Entity{Name: c.Name, Sheet: c.Sheet, Range: c.Cell})
	}
	for _, n := range w.st.Notes {
		add(schema.EntityNote, document.Entity{Name: n.Name, Sheet: n.Sheet, Range: n.Cell})
	}
	return snap, nil
}

// Ops accessors. Each returns a view over the same workbook.

func (w *Workbook) Tables() document.TableOps           { return tableOps{w} }
func (w *Workbook) Pivots() document.PivotOps           { return pivotOps{w} }
func (w *Workbook) Slicers() document.SlicerOps         { return slicerOps{w} }
func (w *Workbook) Sparklines() document.SparklineOps   { return sparklineOps{w} }
func (w *Workbook) Names() document.NameOps             { return nameOps{w} }
func (w *Workbook) Charts() document.ChartOps           { return chartOps{w} }
func (w *Workbook) Protection() document.ProtectionOps  { return protectionOps{w} }
func (w *Workbook) Shapes() document.ShapeOps           { return shapeOps{w} }
func (w *Workbook) Comments() document.CommentOps       { return commentOps{w} }
func (w *Workbook) Sheets() document.SheetOps           { return sheetOps{w} }
func (w *Workbook) PageSetup() document.PageSetupOps    { return pageSetupOps{w} }
func (w *Workbook) Hyperlinks() document.HyperlinkOps   { return hyperlinkOps{w} }
func (w *Workbook) DataTypes() document.DataTypeOps     { return dataTypeOps{w} }
func (w *Workbook) CondFormats() document.CondFormatOps { return condFormatOps{w} }
func (w *Workbook) Ranges() document.RangeOps           { return rangeOps{w} }

// Internal lookups. Callers hold the mutex.

func (w *Workbook) sheet(name string) (*Sheet, error) {
	for _, sh := range w.st.Sheets {
		if sh.Name == name {
			return sh, nil
		}
	}
	return nil, document.Rejectf("no sheet named %q", name)
}

// mutableSheet additionally refuses protected sheets unless the given
// allowance holds.
func (w *Workbook) mutableSheet(name string, allowed func(document.ProtectionOptions) bool) (*Sheet, error) {
	sh, err := w.sheet(name)
	if err != nil {
		return nil, err
	}
	if sh.Protected && (allowed == nil || !allowed(sh.Allow)) {
		return nil, document.Rejectf("sheet %q is protected", name)
	}
	return sh, nil
}

func (w *Workbook) table(name string) (*Table, error) {
	for _, t := range w.st.Tables {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, document.Rejectf("no table named %q", name)
}

func (w *Workbook) pivot(name string) (*Pivot, error) {
	for _, p := range w.st.Pivots {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, document.Rejectf("no pivot table named %q", name)
}

// nameTaken reports whether any entity of any kind carries the name.
// Tables, pivots, charts, slicers and defined names share a workbook
// namespace.
func (w *Workbook) nameTaken(name string) bool {
	for _, sh := range w.st.Sheets {
		if sh.Name == name {
			return true
		}
	}
	for _, t := range w.st.Tables {
		if t.Name == name {
			return true
		}
	}
	for _, p := range w.st.Pivots {
		if p.Name == name {
			return true
		}
	}
	for _, s := range w.st.Slicers {
		if s.Name == name {
			return true
		}
	}
	for _, g := range w.st.Sparklines {
		if g.Name == name {
			return true
		}
	}
	for _, n := range w.st.Names {
		if n.Name == name {
			return true
		}
	}
	for _, c := range w.st.Charts {
		if c.Name == name {
			return true
		}
	}
	for _, s := range w.st.Shapes {
		if s.Name == name {
			return true
		}
	}
	for _, c := range w.st.Comments {
		if c.Name == name {
			return true
		}
	}
	for _, n := range w.st.Notes {
		if n.Name == name {
			return true
		}
	}
	return false
}

// pickName validates a requested entity name or generates the next
// free one for the prefix.
func (w *Workbook) pickName(requested, prefix string) (string, error) {
	if requested != "" {
		if document.LooksLikeCellRef(requested) {
			return "", document.Rejectf("name %q is indistinguishable from a cell reference", requested)
		}
		if strings.ContainsAny(requested, " \t") {
			return "", document.Rejectf("name %q contains whitespace", requested)
		}
		if w.nameTaken(requested) {
			return "", document.Rejectf("name %q is already in use", requested)
		}
		return requested, nil
	}
	for {
		w.seq[prefix]++
		candidate := fmt.Sprintf("%s%d", prefix, w.seq[prefix])
		if !w.nameTaken(candidate) {
			return candidate, nil
		}
	}
}

// overlapsEntity reports whether the area overlaps any table or pivot
// footprint on the sheet, excluding the named entity itself.
func (w *Workbook) overlapsEntity(sheet string, area document.Area, exclude string) (string, bool) {
	check := func(name, rng, owner string) (string, bool) {
		if name == exclude || rng == "" {
			return "", false
		}
		ref, err := document.ParseRange(rng)
		if err != nil {
			return "", false
		}
		bounds, ok := ref.Bounds()
		if !ok {
			return "", false
		}
		if bounds.Overlaps(area) {
			return owner, true
		}
		return "", false
	}
	for _, t := range w.st.Tables {
		if t.Sheet != sheet {
			continue
		}
		if owner, hit := check(t.Name, t.Range, "table "+t.Name); hit {
			return owner, true
		}
	}
	for _, p := range w.st.Pivots {
		if p.Sheet != sheet {
			continue
		}
		if owner, hit := check(p.Name, p.Destination, "pivot table "+p.Name); hit {
			return owner, true
		}
	}
	return "", false
}

// headerRow reads the first-row cell values of a contiguous range.
func (w *Workbook) headerRow(sh *Sheet, rng string) []string {
	ref, err := document.ParseRange(rng)
	if err != nil {
		return nil
	}
	bounds, ok := ref.Bounds()
	if !ok {
		return nil
	}
	var headers []string
	for col := bounds.StartCol; col <= bounds.EndCol; col++ {
		if v := sh.Cells[cellAddr(col, bounds.StartRow)]; v != "" {
			headers = append(headers, v)
		} else {
			headers = append(headers, "Column"+fmt.Sprint(col-bounds.StartCol+1))
		}
	}
	return headers
}

func cellAddr(col, row int) string {
	return document.ColumnName(col) + strconv.Itoa(row)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
