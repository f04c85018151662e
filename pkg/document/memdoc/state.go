package memdoc

import (
	"github.com/sheetflow/sheetflow/pkg/document"
)

// State is the whole workbook model. It is plain data, serializable as
// YAML or JSON, so workbooks can be loaded from fixture files and
// written back after a session.
type State struct {
	// APILevel is the feature level this workbook advertises.
	APILevel int `json:"api_level" yaml:"api_level"`

	// ActiveSheet is the sheet unqualified actions address.
	ActiveSheet string `json:"active_sheet" yaml:"active_sheet"`

	// Protected and Password cover workbook structure protection.
	Protected bool   `json:"protected,omitempty" yaml:"protected,omitempty"`
	Password  string `json:"password,omitempty" yaml:"password,omitempty"`

	Sheets     []*Sheet          `json:"sheets" yaml:"sheets"`
	Tables     []*Table          `json:"tables,omitempty" yaml:"tables,omitempty"`
	Pivots     []*Pivot          `json:"pivots,omitempty" yaml:"pivots,omitempty"`
	Slicers    []*Slicer         `json:"slicers,omitempty" yaml:"slicers,omitempty"`
	Sparklines []*SparklineGroup `json:"sparklines,omitempty" yaml:"sparklines,omitempty"`
	Names      []*DefinedName    `json:"names,omitempty" yaml:"names,omitempty"`
	Charts     []*Chart          `json:"charts,omitempty" yaml:"charts,omitempty"`
	Shapes     []*Shape          `json:"shapes,omitempty" yaml:"shapes,omitempty"`
	Comments   []*Comment        `json:"comments,omitempty" yaml:"comments,omitempty"`
	Notes      []*Note           `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Sheet is one worksheet: its settings plus a sparse cell map keyed by
// A1 address.
type Sheet struct {
	Name   string `json:"name" yaml:"name"`
	Hidden bool   `json:"hidden,omitempty" yaml:"hidden,omitempty"`

	Protected bool                       `json:"protected,omitempty" yaml:"protected,omitempty"`
	Password  string                     `json:"password,omitempty" yaml:"password,omitempty"`
	Allow     document.ProtectionOptions `json:"allow,omitempty" yaml:"allow,omitempty"`

	Zoom     int    `json:"zoom,omitempty" yaml:"zoom,omitempty"`
	TabColor string `json:"tab_color,omitempty" yaml:"tab_color,omitempty"`

	Orientation string           `json:"orientation,omitempty" yaml:"orientation,omitempty"`
	Margins     document.Margins `json:"margins,omitempty" yaml:"margins,omitempty"`
	Header      string           `json:"header,omitempty" yaml:"header,omitempty"`
	Footer      string           `json:"footer,omitempty" yaml:"footer,omitempty"`
	PrintArea   string           `json:"print_area,omitempty" yaml:"print_area,omitempty"`
	PageBreaks  []int            `json:"page_breaks,omitempty" yaml:"page_breaks,omitempty"`

	// Cells holds cell values keyed by unqualified A1 address.
	Cells map[string]string `json:"cells,omitempty" yaml:"cells,omitempty"`

	RowHeights   map[int]float64    `json:"row_heights,omitempty" yaml:"row_heights,omitempty"`
	ColumnWidths map[string]float64 `json:"column_widths,omitempty" yaml:"column_widths,omitempty"`
	HiddenRows   []int              `json:"hidden_rows,omitempty" yaml:"hidden_rows,omitempty"`

	// Unlocked lists cells exempted from sheet protection. Cells are
	// locked by default, matching the document model.
	Unlocked []string `json:"unlocked,omitempty" yaml:"unlocked,omitempty"`

	Links []*Hyperlink `json:"links,omitempty" yaml:"links,omitempty"`
	Rules []*CondRule  `json:"rules,omitempty" yaml:"rules,omitempty"`

	// LinkedTypes maps cell address to its linked data type.
	LinkedTypes map[string]string `json:"linked_types,omitempty" yaml:"linked_types,omitempty"`
}

// Table is one structured table.
type Table struct {
	Name       string            `json:"name" yaml:"name"`
	Sheet      string            `json:"sheet" yaml:"sheet"`
	Range      string            `json:"range" yaml:"range"`
	Columns    []string          `json:"columns,omitempty" yaml:"columns,omitempty"`
	HasHeaders bool              `json:"has_headers,omitempty" yaml:"has_headers,omitempty"`
	Style      string            `json:"style,omitempty" yaml:"style,omitempty"`
	Totals     map[string]string `json:"totals,omitempty" yaml:"totals,omitempty"`
}

// Pivot is one pivot table. Fields added to an area must name source
// headers when the source carries any.
type Pivot struct {
	Name        string            `json:"name" yaml:"name"`
	Sheet       string            `json:"sheet" yaml:"sheet"`
	Source      string            `json:"source" yaml:"source"`
	Destination string            `json:"destination" yaml:"destination"`
	Headers     []string          `json:"headers,omitempty" yaml:"headers,omitempty"`
	Rows        []string          `json:"rows,omitempty" yaml:"rows,omitempty"`
	Columns     []string          `json:"columns,omitempty" yaml:"columns,omitempty"`
	Data        []string          `json:"data,omitempty" yaml:"data,omitempty"`
	Filters     []string          `json:"filters,omitempty" yaml:"filters,omitempty"`
	Aggregation map[string]string `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
}

// Slicer is one slicer, bound to a table or pivot table field.
type Slicer struct {
	Name      string   `json:"name" yaml:"name"`
	Source    string   `json:"source" yaml:"source"`
	Field     string   `json:"field" yaml:"field"`
	Selection []string `json:"selection,omitempty" yaml:"selection,omitempty"`
}

// SparklineGroup is one sparkline group.
type SparklineGroup struct {
	Name     string `json:"name" yaml:"name"`
	Sheet    string `json:"sheet" yaml:"sheet"`
	Location string `json:"location" yaml:"location"`
	Source   string `json:"source" yaml:"source"`
	Type     string `json:"type" yaml:"type"`
	Color    string `json:"color,omitempty" yaml:"color,omitempty"`
}

// DefinedName is one workbook-scoped defined name.
type DefinedName struct {
	Name     string `json:"name" yaml:"name"`
	RefersTo string `json:"refers_to" yaml:"refers_to"`
	Comment  string `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Chart is one embedded chart.
type Chart struct {
	Name   string  `json:"name" yaml:"name"`
	Sheet  string  `json:"sheet" yaml:"sheet"`
	Range  string  `json:"range" yaml:"range"`
	Type   string  `json:"type" yaml:"type"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// Shape is one drawing object: an image, a geometric shape or a text
// box.
type Shape struct {
	Name      string  `json:"name" yaml:"name"`
	Sheet     string  `json:"sheet" yaml:"sheet"`
	Anchor    string  `json:"anchor" yaml:"anchor"`
	Type      string  `json:"type" yaml:"type"`
	Text      string  `json:"text,omitempty" yaml:"text,omitempty"`
	FillColor string  `json:"fill_color,omitempty" yaml:"fill_color,omitempty"`
	Left      float64 `json:"left,omitempty" yaml:"left,omitempty"`
	Top       float64 `json:"top,omitempty" yaml:"top,omitempty"`
	Width     float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height    float64 `json:"height,omitempty" yaml:"height,omitempty"`

	// PayloadBytes is the embedded image size. The payload itself is
	// not retained.
	PayloadBytes int `json:"payload_bytes,omitempty" yaml:"payload_bytes,omitempty"`
}

// Comment is one threaded comment anchored to a cell.
type Comment struct {
	Name    string   `json:"name" yaml:"name"`
	Sheet   string   `json:"sheet" yaml:"sheet"`
	Cell    string   `json:"cell" yaml:"cell"`
	Text    string   `json:"text" yaml:"text"`
	Replies []string `json:"replies,omitempty" yaml:"replies,omitempty"`
}

// Note is one legacy note. Notes and comments are distinct kinds.
type Note struct {
	Name  string `json:"name" yaml:"name"`
	Sheet string `json:"sheet" yaml:"sheet"`
	Cell  string `json:"cell" yaml:"cell"`
	Text  string `json:"text" yaml:"text"`
}

// Hyperlink is one cell range hyperlink.
type Hyperlink struct {
	Range   string `json:"range" yaml:"range"`
	URL     string `json:"url" yaml:"url"`
	Display string `json:"display,omitempty" yaml:"display,omitempty"`
	Tooltip string `json:"tooltip,omitempty" yaml:"tooltip,omitempty"`
}

// CondRule is one conditional formatting rule bound to a range.
type CondRule struct {
	Range string                  `json:"range" yaml:"range"`
	Rule  document.CondFormatRule `json:"rule" yaml:"rule"`
}
