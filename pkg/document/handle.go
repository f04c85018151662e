package document

import "context"

// Handle is the live document the engine mutates through. One logical
// operation per call; structural refusals come back as Rejections.
//
// Implementations are not safe for concurrent structural mutation;
// the execution session dispatches strictly sequentially, and document
// implementations may assume that.
type Handle interface {
	// Snapshot reads the document's current capability state. The
	// engine takes one at session start and again inside mutators as
	// the stale-snapshot guard.
	Snapshot(ctx context.Context) (*Snapshot, error)

	Tables() TableOps
	Pivots() PivotOps
	Slicers() SlicerOps
	Sparklines() SparklineOps
	Names() NameOps
	Charts() ChartOps
	Protection() ProtectionOps
	Shapes() ShapeOps
	Comments() CommentOps
	Sheets() SheetOps
	PageSetup() PageSetupOps
	Hyperlinks() HyperlinkOps
	DataTypes() DataTypeOps
	CondFormats() CondFormatOps
	Ranges() RangeOps
}

// TableOps are the table operations the capability surface offers.
// Create returns the concrete table name the document assigned, which
// is the requested name when one was given.
type TableOps interface {
	Create(ctx context.Context, sheet, rng, name string, hasHeaders bool, style string) (string, error)
	Delete(ctx context.Context, name string) error
	Rename(ctx context.Context, name, newName string) error
	Resize(ctx context.Context, name, rng string) error
	AddColumn(ctx context.Context, name, column string, position int) error
	RemoveColumn(ctx context.Context, name, column string) error
	AddTotalsRow(ctx context.Context, name, column, function string) error
	ApplyStyle(ctx context.Context, name, style string) error
}

// PivotOps are the pivot table operations.
type PivotOps interface {
	Create(ctx context.Context, sheet, sourceRange, destination, name string) (string, error)
	Delete(ctx context.Context, name string) error
	AddField(ctx context.Context, name, area, field, aggregation string) error
	RemoveField(ctx context.Context, name, field string) error
}

// SlicerOps are the slicer operations. Source is the table or pivot
// table the slicer binds to.
type SlicerOps interface {
	Create(ctx context.Context, source, field, name string) (string, error)
	Delete(ctx context.Context, name string) error
	SetSelection(ctx context.Context, name string, items []string) error
	ClearFilter(ctx context.Context, name string) error
}

// SparklineOps are the sparkline group operations. CountOnSheet backs
// the engine's soft per-sheet cap warning.
type SparklineOps interface {
	Create(ctx context.Context, sheet, location, source, sparkType, name string) (string, error)
	Delete(ctx context.Context, name string) error
	SetType(ctx context.Context, name, sparkType string) error
	SetColor(ctx context.Context, name, color string) error
	CountOnSheet(ctx context.Context, sheet string) (int, error)
}

// NameOps are the defined-name operations. RefersTo is either an
// A1-style reference (qualified with a sheet) or an "="-prefixed
// formula. Value reads the current referent, for diagnostics.
type NameOps interface {
	Define(ctx context.Context, name, refersTo, comment string) (string, error)
	Update(ctx context.Context, name, refersTo string) error
	Rename(ctx context.Context, name, newName string) error
	Delete(ctx context.Context, name string) error
	Value(ctx context.Context, name string) (string, error)
}

// ChartOps are the embedded chart operations.
type ChartOps interface {
	Create(ctx context.Context, sheet, sourceRange, chartType, title, name string) (string, error)
	Delete(ctx context.Context, name string) error
	SetTitle(ctx context.Context, name, title string) error
	SetType(ctx context.Context, name, chartType string) error
	Resize(ctx context.Context, name string, width, height float64) error
}

// ProtectionOps are the protection operations. Unprotect with a wrong
// password is a Rejection; there is no recovery path.
type ProtectionOps interface {
	ProtectSheet(ctx context.Context, sheet, password string, opts ProtectionOptions) error
	UnprotectSheet(ctx context.Context, sheet, password string) error
	ProtectWorkbook(ctx context.Context, password string) error
	UnprotectWorkbook(ctx context.Context, password string) error
	SetCellsLocked(ctx context.Context, sheet, rng string, locked bool) (int, error)
}

// ShapeOps are the shape and image operations. Payloads beyond the
// document's embedded-image ceiling are Rejections.
type ShapeOps interface {
	InsertImage(ctx context.Context, sheet, anchor, name string, payload []byte) (string, error)
	InsertShape(ctx context.Context, sheet, anchor, name, shapeType, fillColor string) (string, error)
	InsertTextBox(ctx context.Context, sheet, anchor, name, text string) (string, error)
	Move(ctx context.Context, name string, left, top float64) error
	Resize(ctx context.Context, name string, width, height float64) error
	Delete(ctx context.Context, name string) error
}

// CommentOps are the threaded comment and legacy note operations.
// The two are distinct entity kinds and are not interchangeable.
type CommentOps interface {
	AddComment(ctx context.Context, sheet, cell, text string) (string, error)
	EditComment(ctx context.Context, name, text string) error
	Reply(ctx context.Context, name, text string) error
	DeleteComment(ctx context.Context, name string) error
	AddNote(ctx context.Context, sheet, cell, text string) (string, error)
	DeleteNote(ctx context.Context, name string) error
}

// SheetOps are the worksheet management operations.
type SheetOps interface {
	Add(ctx context.Context, name string, position int) (string, error)
	Delete(ctx context.Context, name string) error
	Rename(ctx context.Context, name, newName string) error
	Move(ctx context.Context, name string, position int) error
	SetHidden(ctx context.Context, name string, hidden bool) error
	SetTabColor(ctx context.Context, name, color string) error
	SetZoom(ctx context.Context, name string, zoom int) error
}

// Margins are page margins in points.
type Margins struct {
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
}

// PageSetupOps are the print and page layout operations.
type PageSetupOps interface {
	SetOrientation(ctx context.Context, sheet, orientation string) error
	SetMargins(ctx context.Context, sheet string, m Margins) error
	SetPrintArea(ctx context.Context, sheet, rng string) error
	ClearPrintArea(ctx context.Context, sheet string) error
	AddPageBreak(ctx context.Context, sheet string, beforeRow int) error
	SetHeaderFooter(ctx context.Context, sheet, header, footer string) error
}

// HyperlinkOps are the cell hyperlink operations.
type HyperlinkOps interface {
	Add(ctx context.Context, sheet, rng, url, display, tooltip string) error
	Update(ctx context.Context, sheet, rng, url, display string) error
	Remove(ctx context.Context, sheet, rng string) (int, error)
}

// DataTypeOps are the linked data type operations. Each returns the
// number of cells converted or refreshed.
type DataTypeOps interface {
	Convert(ctx context.Context, sheet, rng, dataType string, properties []string) (int, error)
	ConvertToText(ctx context.Context, sheet, rng string) (int, error)
	Refresh(ctx context.Context, sheet, rng string) (int, error)
}

// CondFormatRule is one conditional formatting rule.
type CondFormatRule struct {
	// Type is the rule type: cell_value, color_scale, data_bar, icon_set.
	Type string `json:"type"`

	// Operator and values apply to cell_value rules.
	Operator string  `json:"operator,omitempty"`
	Value    float64 `json:"value,omitempty"`
	Value2   float64 `json:"value2,omitempty"`

	// Colors apply to cell_value, color_scale and data_bar rules.
	Colors []string `json:"colors,omitempty"`

	// IconSet applies to icon_set rules.
	IconSet string `json:"icon_set,omitempty"`
}

// CondFormatOps are the conditional formatting operations. Clear
// returns the number of rules removed.
type CondFormatOps interface {
	AddRule(ctx context.Context, sheet, rng string, rule CondFormatRule) error
	Clear(ctx context.Context, sheet, rng string) (int, error)
}

// FindReplaceOptions control a find-replace pass.
type FindReplaceOptions struct {
	MatchCase       bool `json:"match_case"`
	MatchEntireCell bool `json:"match_entire_cell"`
}

// RangeOps are the row, column and bulk cell operations. Counting
// methods return the number of cells or rows affected.
type RangeOps interface {
	InsertRows(ctx context.Context, sheet string, startRow, count int) error
	DeleteRows(ctx context.Context, sheet string, startRow, count int) error
	InsertColumns(ctx context.Context, sheet, startColumn string, count int) error
	DeleteColumns(ctx context.Context, sheet, startColumn string, count int) error
	SetRowHeight(ctx context.Context, sheet string, row int, height float64) error
	SetColumnWidth(ctx context.Context, sheet, column string, width float64) error
	AutofitColumns(ctx context.Context, sheet, rng string) error
	HideRows(ctx context.Context, sheet string, startRow, count int) error
	FindReplace(ctx context.Context, sheet, rng, find, replace string, opts FindReplaceOptions) (int, error)
	Sort(ctx context.Context, sheet, rng string, column int, ascending, hasHeaders bool) error
}
