package memdoc

import (
	"context"
	"strings"

	"github.com/sheetflow/sheetflow/pkg/document"
)

// invalidSheetChars are the characters a sheet name may not contain.
const invalidSheetChars = `:\/?*[]`

// maxSheetName is the sheet name length limit.
const maxSheetName = 31

type sheetOps struct{ w *Workbook }

func (o sheetOps) Add(ctx context.Context, name string, position int) (string, error) {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	if o.w.st.Protected {
		return "", document.Rejectf("workbook structure is protected")
	}
	if name == "" {
		picked, err := o.w.pickName("", "Sheet")
		if err != nil {
			return "", err
		}
		name = picked
	} else if err := o.checkName(name); err != nil {
		return "", err
	}

	sh := &Sheet{Name: name, Zoom: defaultZoom, Cells: make(map[string]string)}
	if position < 0 || position >= len(o.w.st.Sheets) {
		o.w.st.Sheets = append(o.w.st.Sheets, sh)
	} else {
		o.w.st.Sheets = append(o.w.st.Sheets[:position],
			append([]*Sheet{sh}, o.w.st.Sheets[position:]...)...)
	}
	return name, nil
}

func (o sheetOps) Delete(ctx context.Context, name string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	if o.w.st.Protected {
		return document.Rejectf("workbook structure is protected")
	}
	idx := -1
	visible := 0
	for i, sh := range o.w.st.Sheets {
		if sh.Name == name {
			idx = i
		}
		if !sh.Hidden {
			visible++
		}
	}
	if idx == -1 {
		return document.Rejectf("no sheet named %q", name)
	}
	if !o.w.st.Sheets[idx].Hidden && visible <= 1 {
		return document.Rejectf("cannot delete the last visible sheet")
	}

	o.w.st.Sheets = append(o.w.st.Sheets[:idx], o.w.st.Sheets[idx+1:]...)
	o.dropHosted(name)
	if o.w.st.ActiveSheet == name {
		for _, sh := range o.w.st.Sheets {
			if !sh.Hidden {
				o.w.st.ActiveSheet = sh.Name
				break
			}
		}
	}
	return nil
}

func (o sheetOps) Rename(ctx context.Context, name, newName string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(name)
	if err != nil {
		return err
	}
	if err := o.checkName(newName); err != nil {
		return err
	}
	sh.Name = newName
	if o.w.st.ActiveSheet == name {
		o.w.st.ActiveSheet = newName
	}
	o.rehost(name, newName)
	return nil
}

func (o sheetOps) Move(ctx context.Context, name string, position int) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	if o.w.st.Protected {
		return document.Rejectf("workbook structure is protected")
	}
	idx := -1
	for i, sh := range o.w.st.Sheets {
		if sh.Name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return document.Rejectf("no sheet named %q", name)
	}
	sh := o.w.st.Sheets[idx]
	rest := append(o.w.st.Sheets[:idx:idx], o.w.st.Sheets[idx+1:]...)
	if position < 0 || position >= len(rest) {
		o.w.st.Sheets = append(rest, sh)
	} else {
		o.w.st.Sheets = append(rest[:position], append([]*Sheet{sh}, rest[position:]...)...)
	}
	return nil
}

func (o sheetOps) SetHidden(ctx context.Context, name string, hidden bool) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(name)
	if err != nil {
		return err
	}
	if hidden && !sh.Hidden {
		visible := 0
		for _, s := range o.w.st.Sheets {
			if !s.Hidden {
				visible++
			}
		}
		if visible <= 1 {
			return document.Rejectf("cannot hide the last visible sheet")
		}
	}
	sh.Hidden = hidden
	if hidden && o.w.st.ActiveSheet == name {
		for _, s := range o.w.st.Sheets {
			if !s.Hidden {
				o.w.st.ActiveSheet = s.Name
				break
			}
		}
	}
	return nil
}

func (o sheetOps) SetTabColor(ctx context.Context, name, color string) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(name)
	if err != nil {
		return err
	}
	sh.TabColor = color
	return nil
}

func (o sheetOps) SetZoom(ctx context.Context, name string, zoom int) error {
	o.w.mu.Lock()
	defer o.w.mu.Unlock()

	sh, err := o.w.sheet(name)
	if err != nil {
		return err
	}
	if zoom < 10 || zoom > 400 {
		return document.Rejectf("zoom %d%% is outside 10%%..400%%", zoom)
	}
	sh.Zoom = zoom
	return nil
}

func (o sheetOps) checkName(name string) error {
	if name == "" {
		return document.Rejectf("sheet name must not be empty")
	}
	if len(name) > maxSheetName {
		return document.Rejectf("sheet name %q exceeds %d characters", name, maxSheetName)
	}
	if strings.ContainsAny(name, invalidSheetChars) {
		return document.Rejectf("sheet name %q contains a forbidden character", name)
	}
	if o.w.nameTaken(name) {
		return document.Rejectf("name %q is already in use", name)
	}
	return nil
}

// dropHosted removes every entity hosted on a deleted sheet.
func (o sheetOps) dropHosted(sheet string) {
	tables := o.w.st.Tables[:0]
	for _, t := range o.w.st.Tables {
		if t.Sheet != sheet {
			tables = append(tables, t)
		}
	}
	o.w.st.Tables = tables

	pivots := o.w.st.Pivots[:0]
	for _, p := range o.w.st.Pivots {
		if p.Sheet != sheet {
			pivots = append(pivots, p)
		}
	}
	o.w.st.Pivots = pivots

	sparks := o.w.st.Sparklines[:0]
	for _, g := range o.w.st.Sparklines {
		if g.Sheet != sheet {
			sparks = append(sparks, g)
		}
	}
	o.w.st.Sparklines = sparks

	charts := o.w.st.Charts[:0]
	for _, c := range o.w.st.Charts {
		if c.Sheet != sheet {
			charts = append(charts, c)
		}
	}
	o.w.st.Charts = charts

	shapes := o.w.st.Shapes[:0]
	for _, s := range o.w.st.Shapes {
		if s.Sheet != sheet {
			shapes = append(shapes, s)
		}
	}
	o.w.st.Shapes = shapes

	comments := o.w.st.Comments[:0]
	for _, c := range o.w.st.Comments {
		if c.Sheet != sheet {
			comments = append(comments, c)
		}
	}
	o.w.st.Comments = comments

	notes := o.w.st.Notes[:0]
	for _, n := range o.w.st.Notes {
		if n.Sheet != sheet {
			notes = append(notes, n)
		}
	}
	o.w.st.Notes = notes
}

// rehost updates hosted entities after a sheet rename.
func (o sheetOps) rehost(old, updated string) {
	for _, t := range o.w.st.Tables {
		if t.Sheet == old {
			t.Sheet = updated
		}
	}
	for _, p := range o.w.st.Pivots {
		if p.Sheet == old {
			p.Sheet = updated
		}
	}
	for _, g := range o.w.st.Sparklines {
		if g.Sheet == old {
			g.Sheet = updated
		}
	}
	for _, c := range o.w.st.Charts {
		if c.Sheet == old {
			c.Sheet = updated
		}
	}
	for _, s := range o.w.st.Shapes {
		if s.Sheet == old {
			s.Sheet = updated
		}
	}
	for _, c := range o.w.st.Comments {
		if c.Sheet == old {
			c.Sheet = updated
		}
	}
	for _, n := range o.w.st.Notes {
		if n.Sheet == old {
			n.Sheet = updated
		}
	}
}
