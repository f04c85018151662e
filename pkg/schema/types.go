package schema

import "fmt"

// Family identifies the operation family an action kind belongs to.
// Each family is served by exactly one mutator.
type Family string

const (
	// FamilyTable covers table creation, structure and styling.
	FamilyTable Family = "table"

	// FamilyPivot covers pivot table creation and field layout.
	FamilyPivot Family = "pivot"

	// FamilySlicer covers slicers bound to tables and pivot tables.
	FamilySlicer Family = "slicer"

	// FamilySparkline covers sparkline groups.
	FamilySparkline Family = "sparkline"

	// FamilyNamedRange covers workbook and sheet scoped names.
	FamilyNamedRange Family = "namedrange"

	// FamilyChart covers embedded charts.
	FamilyChart Family = "chart"

	// FamilyProtection covers sheet and workbook protection.
	FamilyProtection Family = "protection"

	// FamilyShape covers images, geometric shapes and text boxes.
	FamilyShape Family = "shape"

	// FamilyComment covers threaded comments and legacy notes.
	FamilyComment Family = "comment"

	// FamilySheet covers worksheet management.
	FamilySheet Family = "sheet"

	// FamilyPageSetup covers print and page layout settings.
	FamilyPageSetup Family = "pagesetup"

	// FamilyHyperlink covers cell hyperlinks.
	FamilyHyperlink Family = "hyperlink"

	// FamilyDataType covers linked data type conversion.
	FamilyDataType Family = "datatype"

	// FamilyCondFormat covers conditional formatting rules.
	FamilyCondFormat Family = "condformat"

	// FamilyRange covers row, column and bulk cell manipulation.
	FamilyRange Family = "range"
)

// Families lists every operation family in registration order.
func Families() []Family {
	return []Family{
		FamilyTable, FamilyPivot, FamilySlicer, FamilySparkline,
		FamilyNamedRange, FamilyChart, FamilyProtection, FamilyShape,
		FamilyComment, FamilySheet, FamilyPageSetup, FamilyHyperlink,
		FamilyDataType, FamilyCondFormat, FamilyRange,
	}
}

// EntityRole describes what an action does to its target entity.
type EntityRole string

const (
	// RoleCreates indicates the action brings a new named entity into
	// existence. Referencing actions must be ordered after it.
	RoleCreates EntityRole = "creates"

	// RoleMutates indicates the action modifies an existing entity.
	RoleMutates EntityRole = "mutates"

	// RoleDeletes indicates the action removes an existing entity.
	RoleDeletes EntityRole = "deletes"

	// RoleReads indicates the action only inspects document state.
	RoleReads EntityRole = "reads"
)

// Validate checks the entity role is one of the known values.
func (r EntityRole) Validate() error {
	switch r {
	case RoleCreates, RoleMutates, RoleDeletes, RoleReads:
		return nil
	default:
		return fmt.Errorf("invalid entity role: %s", r)
	}
}

// EntityKind identifies the kind of named document entity an action
// targets or creates. Comments and notes are deliberately distinct
// kinds: they have different capability requirements.
type EntityKind string

const (
	EntityTable      EntityKind = "table"
	EntityPivot      EntityKind = "pivot"
	EntitySlicer     EntityKind = "slicer"
	EntitySparkline  EntityKind = "sparkline"
	EntityNamedRange EntityKind = "namedrange"
	EntityChart      EntityKind = "chart"
	EntityShape      EntityKind = "shape"
	EntityComment    EntityKind = "comment"
	EntityNote       EntityKind = "note"
	EntitySheet      EntityKind = "sheet"
)

// TargetKind describes how a descriptor's target field is interpreted
// for a given action kind.
type TargetKind string

const (
	// TargetRange means the target is an A1-style range reference.
	TargetRange TargetKind = "range"

	// TargetEntity means the target is the name of an existing (or
	// created-earlier-in-batch) entity of the schema's EntityKind.
	TargetEntity TargetKind = "entity"

	// TargetSheet means the target is a worksheet name.
	TargetSheet TargetKind = "sheet"

	// TargetWorkbook means the action addresses the whole document and
	// the target field is ignored.
	TargetWorkbook TargetKind = "workbook"
)

// ParamType is the declared value type of an action parameter.
type ParamType string

const (
	ParamString     ParamType = "string"
	ParamNumber     ParamType = "number"
	ParamBool       ParamType = "bool"
	ParamEnum       ParamType = "enum"
	ParamRange      ParamType = "range"
	ParamColor      ParamType = "color"
	ParamStringList ParamType = "string_list"
	ParamNumberList ParamType = "number_list"
)

// ParamSpec declares one named parameter of an action kind.
type ParamSpec struct {
	// Name is the parameter name as it appears in the descriptor.
	Name string

	// Type is the declared value type.
	Type ParamType

	// Required marks parameters that must be present.
	Required bool

	// Enum lists the permitted values for ParamEnum parameters.
	Enum []string

	// Min and Max bound numeric parameters when non-nil.
	Min *float64
	Max *float64

	// MaxLen bounds string length when positive.
	MaxLen int

	// MaxItems bounds list length when positive.
	MaxItems int

	// Contiguous requires a ParamRange value to be a single
	// contiguous region rather than a multi-area selection.
	Contiguous bool

	// Refs marks a string parameter as a by-name reference to an
	// entity of the given kind. The resolver uses it to order the
	// batch and the validator to check the referent exists.
	Refs EntityKind
}

// ActionSchema describes one registered action kind.
type ActionSchema struct {
	// Kind is the action kind identifier (e.g. "create_table").
	Kind string

	// Family routes the action to its mutator.
	Family Family

	// Role is the action's effect on its target entity.
	Role EntityRole

	// Target says how the descriptor's target field is interpreted.
	Target TargetKind

	// Entity is the entity kind created, mutated or deleted. Empty
	// for actions that address ranges or the workbook only.
	Entity EntityKind

	// TargetContiguous requires a TargetRange target to be a single
	// contiguous region.
	TargetContiguous bool

	// MinAPILevel is the document API feature level the action needs.
	MinAPILevel int

	// Params declares the action's parameters.
	Params []ParamSpec
}

// Param returns the ParamSpec for the named parameter, if declared.
func (s *ActionSchema) Param(name string) (*ParamSpec, bool) {
	for i := range s.Params {
		if s.Params[i].Name == name {
			return &s.Params[i], true
		}
	}
	return nil, false
}

// CreatedEntity returns the kind of entity this action creates, or
// false when the action creates nothing.
func (s *ActionSchema) CreatedEntity() (EntityKind, bool) {
	if s.Role != RoleCreates || s.Entity == "" {
		return "", false
	}
	return s.Entity, true
}

// Document API feature levels, lowest to highest. The snapshot reports
// the level the hosting document supports; an action whose schema wants
// a higher level is denied before any document call.
const (
	APILevelBase       = 1
	APILevelTables     = 2
	APILevelProtection = 3
	APILevelComments   = 4
	APILevelPivots     = 5
	APILevelShapes     = 5
	APILevelSlicers    = 6
	APILevelDataTypes  = 7
)
