package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Area is one rectangular cell region, 1-based and inclusive.
type Area struct {
	StartCol int `json:"start_col"`
	StartRow int `json:"start_row"`
	EndCol   int `json:"end_col"`
	EndRow   int `json:"end_row"`
}

// RangeRef is a parsed A1-style range reference. Multi-area selections
// ("A1:B2,D4:E5") parse to multiple areas.
type RangeRef struct {
	// Sheet is the sheet qualifier, when the reference carried one.
	Sheet string `json:"sheet,omitempty"`

	// Areas are the rectangular regions, in source order.
	Areas []Area `json:"areas"`
}

var cellPattern = regexp.MustCompile(`^\$?([A-Za-z]{1,3})\$?([0-9]+)$`)

// ParseRange parses an A1-style reference, optionally sheet-qualified
// and optionally multi-area. It rejects malformed references and
// inverted regions.
func ParseRange(ref string) (RangeRef, error) {
	r := RangeRef{}
	rest := strings.TrimSpace(ref)
	if rest == "" {
		return r, fmt.Errorf("empty range reference")
	}

	if i := strings.LastIndex(rest, "!"); i >= 0 {
		sheet := strings.Trim(rest[:i], "'")
		if sheet == "" {
			return r, fmt.Errorf("range %q has an empty sheet qualifier", ref)
		}
		r.Sheet = sheet
		rest = rest[i+1:]
	}

	for _, part := range strings.Split(rest, ",") {
		area, err := parseArea(strings.TrimSpace(part))
		if err != nil {
			return RangeRef{}, fmt.Errorf("range %q: %w", ref, err)
		}
		r.Areas = append(r.Areas, area)
	}
	return r, nil
}

func parseArea(part string) (Area, error) {
	if part == "" {
		return Area{}, fmt.Errorf("empty area")
	}

	corners := strings.Split(part, ":")
	if len(corners) > 2 {
		return Area{}, fmt.Errorf("malformed area %q", part)
	}

	col1, row1, err := parseCell(corners[0])
	if err != nil {
		return Area{}, err
	}
	col2, row2 := col1, row1
	if len(corners) == 2 {
		col2, row2, err = parseCell(corners[1])
		if err != nil {
			return Area{}, err
		}
	}

	if col2 < col1 || row2 < row1 {
		return Area{}, fmt.Errorf("inverted area %q", part)
	}
	return Area{StartCol: col1, StartRow: row1, EndCol: col2, EndRow: row2}, nil
}

func parseCell(cell string) (col, row int, err error) {
	m := cellPattern.FindStringSubmatch(cell)
	if m == nil {
		return 0, 0, fmt.Errorf("malformed cell reference %q", cell)
	}
	col = ColumnIndex(m[1])
	row, err = strconv.Atoi(m[2])
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("malformed row in %q", cell)
	}
	return col, row, nil
}

// Contiguous reports whether the reference is a single rectangular
// region rather than a multi-area selection.
func (r RangeRef) Contiguous() bool {
	return len(r.Areas) == 1
}

// Cells returns the total number of cells the reference covers.
func (r RangeRef) Cells() int {
	total := 0
	for _, a := range r.Areas {
		total += (a.EndCol - a.StartCol + 1) * (a.EndRow - a.StartRow + 1)
	}
	return total
}

// Bounds returns the single area of a contiguous reference.
func (r RangeRef) Bounds() (Area, bool) {
	if !r.Contiguous() {
		return Area{}, false
	}
	return r.Areas[0], true
}

// Overlaps reports whether two areas share any cell.
func (a Area) Overlaps(b Area) bool {
	return a.StartCol <= b.EndCol && b.StartCol <= a.EndCol &&
		a.StartRow <= b.EndRow && b.StartRow <= a.EndRow
}

// Rows returns the number of rows the area spans.
func (a Area) Rows() int { return a.EndRow - a.StartRow + 1 }

// Cols returns the number of columns the area spans.
func (a Area) Cols() int { return a.EndCol - a.StartCol + 1 }

// String renders the area back to A1 notation.
func (a Area) String() string {
	start := ColumnName(a.StartCol) + strconv.Itoa(a.StartRow)
	if a.StartCol == a.EndCol && a.StartRow == a.EndRow {
		return start
	}
	return start + ":" + ColumnName(a.EndCol) + strconv.Itoa(a.EndRow)
}

// ColumnIndex converts a column name ("A", "AB") to its 1-based index.
func ColumnIndex(name string) int {
	idx := 0
	for _, c := range strings.ToUpper(name) {
		idx = idx*26 + int(c-'A') + 1
	}
	return idx
}

// ColumnName converts a 1-based column index back to its name.
func ColumnName(index int) string {
	name := ""
	for index > 0 {
		index--
		name = string(rune('A'+index%26)) + name
		index /= 26
	}
	return name
}

var columnOnlyPattern = regexp.MustCompile(`^[A-Za-z]{1,3}$`)

// ValidColumnName reports whether s is a plausible column name.
func ValidColumnName(s string) bool {
	return columnOnlyPattern.MatchString(s)
}

var r1c1Pattern = regexp.MustCompile(`^[Rr][0-9]*[Cc][0-9]*$`)

// LooksLikeCellRef reports whether a name would collide with a cell
// reference in either A1 or R1C1 notation. The document API rejects
// such names for defined names.
func LooksLikeCellRef(name string) bool {
	return cellPattern.MatchString(name) || r1c1Pattern.MatchString(name)
}
