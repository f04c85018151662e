package document

import (
	"time"

	"github.com/sheetflow/sheetflow/pkg/schema"
)

// Snapshot is a read-only view of the live document taken at session
// start. It is not updated mid-session: the engine treats it as
// potentially stale and re-checks against the live handle immediately
// before every mutation.
type Snapshot struct {
	// APILevel is the feature level the hosting document supports.
	APILevel int `json:"api_level"`

	// ActiveSheet is the sheet actions address when a descriptor
	// names no sheet of its own.
	ActiveSheet string `json:"active_sheet"`

	// Sheets maps sheet name to its recorded state.
	Sheets map[string]SheetState `json:"sheets"`

	// Entities maps entity kind to the names existing at snapshot
	// time, with their recorded positions.
	Entities map[schema.EntityKind]map[string]Entity `json:"entities"`

	// WorkbookProtected reports workbook-level structure protection.
	WorkbookProtected bool `json:"workbook_protected"`

	// TakenAt is when the snapshot was read.
	TakenAt time.Time `json:"taken_at"`
}

// SheetState is the recorded state of one worksheet.
type SheetState struct {
	// Name is the sheet name.
	Name string `json:"name"`

	// Hidden reports sheet visibility.
	Hidden bool `json:"hidden"`

	// Protection is the sheet's protection state.
	Protection Protection `json:"protection"`

	// Zoom is the current zoom percentage.
	Zoom int `json:"zoom,omitempty"`
}

// Protection records a sheet's protection state and the operations its
// protection options still permit.
type Protection struct {
	// Protected reports whether the sheet is protected.
	Protected bool `json:"protected"`

	// Options are the recorded allowances. Meaningful only while
	// Protected is true.
	Options ProtectionOptions `json:"options"`
}

// ProtectionOptions mirrors the document API's sheet protection
// allowances relevant to the engine's action kinds.
type ProtectionOptions struct {
	AllowFormatCells bool `json:"allow_format_cells"`
	AllowInsertRows  bool `json:"allow_insert_rows"`
	AllowDeleteRows  bool `json:"allow_delete_rows"`
	AllowSort        bool `json:"allow_sort"`
	AllowFilter      bool `json:"allow_filter"`
	AllowEditObjects bool `json:"allow_edit_objects"`
}

// Entity is one named document object visible in the snapshot.
type Entity struct {
	// Name is the entity's document-assigned name.
	Name string `json:"name"`

	// Kind is the entity kind.
	Kind schema.EntityKind `json:"kind"`

	// Sheet is the sheet hosting the entity. Empty for
	// workbook-scoped entities such as names.
	Sheet string `json:"sheet,omitempty"`

	// Range is the entity's anchor range, where it has one.
	Range string `json:"range,omitempty"`

	// Fields are the entity's column or field names, for tables and
	// pivot tables.
	Fields []string `json:"fields,omitempty"`
}

// Sheet returns the state for a named sheet.
func (s *Snapshot) Sheet(name string) (SheetState, bool) {
	st, ok := s.Sheets[name]
	return st, ok
}

// Entity returns a named entity of the given kind.
func (s *Snapshot) Entity(kind schema.EntityKind, name string) (Entity, bool) {
	if kind == schema.EntitySheet {
		st, ok := s.Sheets[name]
		if !ok {
			return Entity{}, false
		}
		return Entity{Name: st.Name, Kind: schema.EntitySheet}, true
	}
	byName, ok := s.Entities[kind]
	if !ok {
		return Entity{}, false
	}
	e, ok := byName[name]
	return e, ok
}

// HasEntity reports whether a named entity of the given kind exists.
func (s *Snapshot) HasEntity(kind schema.EntityKind, name string) bool {
	_, ok := s.Entity(kind, name)
	return ok
}

// HasName reports whether any entity of any kind carries the name.
// Used to resolve dependsOn hints, which carry no kind of their own.
func (s *Snapshot) HasName(name string) bool {
	if _, ok := s.Sheets[name]; ok {
		return true
	}
	for _, byName := range s.Entities {
		if _, ok := byName[name]; ok {
			return true
		}
	}
	return false
}
