package schema

import "sort"

// Registry is the immutable table of action schemas, keyed by kind.
type Registry struct {
	schemas map[string]*ActionSchema
}

// NewRegistry builds the registry from the built-in schema set.
// It panics on duplicate kinds: that is a programming error in the
// built-in table, not a runtime condition.
func NewRegistry() *Registry {
	r := &Registry{schemas: make(map[string]*ActionSchema, len(builtinSchemas))}
	for i := range builtinSchemas {
		s := &builtinSchemas[i]
		if _, dup := r.schemas[s.Kind]; dup {
			panic("schema: duplicate action kind " + s.Kind)
		}
		r.schemas[s.Kind] = s
	}
	return r
}

// Lookup returns the schema for an action kind. The second return is
// false for kinds the registry does not know; callers reject those
// descriptors rather than failing.
func (r *Registry) Lookup(kind string) (*ActionSchema, bool) {
	s, ok := r.schemas[kind]
	return s, ok
}

// Kinds returns all registered action kinds, sorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// KindsByFamily returns the registered kinds of one family, sorted.
func (r *Registry) KindsByFamily(f Family) []string {
	kinds := make([]string, 0)
	for k, s := range r.schemas {
		if s.Family == f {
			kinds = append(kinds, k)
		}
	}
	sort.Strings(kinds)
	return kinds
}

// Len returns the number of registered action kinds.
func (r *Registry) Len() int {
	return len(r.schemas)
}

func num(v float64) *float64 { return &v }

// Reusable bounds from the document API surface.
const (
	maxSheetNameLen  = 31
	maxEntityNameLen = 255
)

var (
	boundZoom       = ParamSpec{Name: "zoom", Type: ParamNumber, Required: true, Min: num(10), Max: num(400)}
	enumOrientation = []string{"portrait", "landscape"}
	enumSortOrder   = []string{"ascending", "descending"}
)

// builtinSchemas is the full action kind table: 87 kinds across the 15
// operation families. Order within a family is creation first, then
// mutation, then deletion.
var builtinSchemas = []ActionSchema{
	// ---- tables -----------------------------------------------------
	{
		Kind: "create_table", Family: FamilyTable, Role: RoleCreates,
		Target: TargetRange, Entity: EntityTable, TargetContiguous: true,
		MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "name", Type: ParamString, MaxLen: maxEntityNameLen},
			{Name: "has_headers", Type: ParamBool},
			{Name: "style", Type: ParamString},
		},
	},
	{
		Kind: "delete_table", Family: FamilyTable, Role: RoleDeletes,
		Target: TargetEntity, Entity: EntityTable, MinAPILevel: APILevelTables,
	},
	{
		Kind: "rename_table", Family: FamilyTable, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityTable, MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "new_name", Type: ParamString, Required: true, MaxLen: maxEntityNameLen},
		},
	},
	{
		Kind: "resize_table", Family: FamilyTable, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityTable, MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "range", Type: ParamRange, Required: true, Contiguous: true},
		},
	},
	{
		Kind: "add_table_column", Family: FamilyTable, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityTable, MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "column_name", Type: ParamString, Required: true, MaxLen: maxEntityNameLen},
			{Name: "position", Type: ParamNumber, Min: num(0)},
		},
	},
	{
		Kind: "remove_table_column", Family: FamilyTable, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityTable, MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "column_name", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "add_totals_row", Family: FamilyTable, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityTable, MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "column_name", Type: ParamString, Required: true},
			{Name: "function", Type: ParamEnum, Required: true,
				Enum: []string{"sum", "average", "count", "min", "max"}},
		},
	},
	{
		Kind: "apply_table_style", Family: FamilyTable, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityTable, MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "style", Type: ParamString, Required: true},
		},
	},

	// ---- pivot tables ----------------------------------------------
	{
		Kind: "create_pivot_table", Family: FamilyPivot, Role: RoleCreates,
		Target: TargetRange, Entity: EntityPivot, TargetContiguous: true,
		MinAPILevel: APILevelPivots,
		Params: []ParamSpec{
			{Name: "name", Type: ParamString, MaxLen: maxEntityNameLen},
			{Name: "destination", Type: ParamRange, Required: true, Contiguous: true},
			{Name: "source_table", Type: ParamString, Refs: EntityTable},
		},
	},
	{
		Kind: "delete_pivot_table", Family: FamilyPivot, Role: RoleDeletes,
		Target: TargetEntity, Entity: EntityPivot, MinAPILevel: APILevelPivots,
	},
	{
		Kind: "add_pivot_row_field", Family: FamilyPivot, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityPivot, MinAPILevel: APILevelPivots,
		Params: []ParamSpec{
			{Name: "field", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "add_pivot_column_field", Family: FamilyPivot, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityPivot, MinAPILevel: APILevelPivots,
		Params: []ParamSpec{
			{Name: "field", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "add_pivot_data_field", Family: FamilyPivot, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityPivot, MinAPILevel: APILevelPivots,
		Params: []ParamSpec{
			{Name: "field", Type: ParamString, Required: true},
			{Name: "aggregation", Type: ParamEnum,
				Enum: []string{"sum", "average", "count", "min", "max"}},
		},
	},
	{
		Kind: "add_pivot_filter_field", Family: FamilyPivot, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityPivot, MinAPILevel: APILevelPivots,
		Params: []ParamSpec{
			{Name: "field", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "remove_pivot_field", Family: FamilyPivot, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityPivot, MinAPILevel: APILevelPivots,
		Params: []ParamSpec{
			{Name: "field", Type: ParamString, Required: true},
		},
	},

	// ---- slicers ----------------------------------------------------
	{
		Kind: "create_slicer", Family: FamilySlicer, Role: RoleCreates,
		Target: TargetWorkbook, Entity: EntitySlicer, MinAPILevel: APILevelSlicers,
		Params: []ParamSpec{
			{Name: "name", Type: ParamString, MaxLen: maxEntityNameLen},
			{Name: "source", Type: ParamString, Required: true, Refs: EntityTable},
			{Name: "field", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "delete_slicer", Family: FamilySlicer, Role: RoleDeletes,
		Target: TargetEntity, Entity: EntitySlicer, MinAPILevel: APILevelSlicers,
	},
	{
		Kind: "set_slicer_selection", Family: FamilySlicer, Role: RoleMutates,
		Target: TargetEntity, Entity: EntitySlicer, MinAPILevel: APILevelSlicers,
		Params: []ParamSpec{
			{Name: "items", Type: ParamStringList, Required: true},
		},
	},
	{
		Kind: "clear_slicer_filter", Family: FamilySlicer, Role: RoleMutates,
		Target: TargetEntity, Entity: EntitySlicer, MinAPILevel: APILevelSlicers,
	},

	// ---- sparklines -------------------------------------------------
	{
		Kind: "create_sparklines", Family: FamilySparkline, Role: RoleCreates,
		Target: TargetRange, Entity: EntitySparkline, TargetContiguous: true,
		MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "name", Type: ParamString, MaxLen: maxEntityNameLen},
			{Name: "source", Type: ParamRange, Required: true, Contiguous: true},
			{Name: "type", Type: ParamEnum, Enum: []string{"line", "column", "winloss"}},
		},
	},
	{
		Kind: "delete_sparklines", Family: FamilySparkline, Role: RoleDeletes,
		Target: TargetEntity, Entity: EntitySparkline, MinAPILevel: APILevelTables,
	},
	{
		Kind: "set_sparkline_type", Family: FamilySparkline, Role: RoleMutates,
		Target: TargetEntity, Entity: EntitySparkline, MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "type", Type: ParamEnum, Required: true,
				Enum: []string{"line", "column", "winloss"}},
		},
	},
	{
		Kind: "set_sparkline_color", Family: FamilySparkline, Role: RoleMutates,
		Target: TargetEntity, Entity: EntitySparkline, MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "color", Type: ParamColor, Required: true},
		},
	},

	// ---- named ranges ----------------------------------------------
	{
		Kind: "create_named_range", Family: FamilyNamedRange, Role: RoleCreates,
		Target: TargetRange, Entity: EntityNamedRange, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "name", Type: ParamString, Required: true, MaxLen: maxEntityNameLen},
			{Name: "comment", Type: ParamString},
		},
	},
	{
		Kind: "create_named_formula", Family: FamilyNamedRange, Role: RoleCreates,
		Target: TargetWorkbook, Entity: EntityNamedRange, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "name", Type: ParamString, Required: true, MaxLen: maxEntityNameLen},
			{Name: "formula", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "update_named_range", Family: FamilyNamedRange, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityNamedRange, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "range", Type: ParamRange},
			{Name: "formula", Type: ParamString},
		},
	},
	{
		Kind: "rename_named_range", Family: FamilyNamedRange, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityNamedRange, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "new_name", Type: ParamString, Required: true, MaxLen: maxEntityNameLen},
		},
	},
	{
		Kind: "delete_named_range", Family: FamilyNamedRange, Role: RoleDeletes,
		Target: TargetEntity, Entity: EntityNamedRange, MinAPILevel: APILevelBase,
	},

	// ---- charts -----------------------------------------------------
	{
		Kind: "create_chart", Family: FamilyChart, Role: RoleCreates,
		Target: TargetRange, Entity: EntityChart, TargetContiguous: true,
		MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "name", Type: ParamString, MaxLen: maxEntityNameLen},
			{Name: "chart_type", Type: ParamEnum, Required: true,
				Enum: []string{"column", "bar", "line", "pie", "scatter", "area"}},
			{Name: "title", Type: ParamString},
		},
	},
	{
		Kind: "delete_chart", Family: FamilyChart, Role: RoleDeletes,
		Target: TargetEntity, Entity: EntityChart, MinAPILevel: APILevelTables,
	},
	{
		Kind: "set_chart_title", Family: FamilyChart, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityChart, MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "title", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "set_chart_type", Family: FamilyChart, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityChart, MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "chart_type", Type: ParamEnum, Required: true,
				Enum: []string{"column", "bar", "line", "pie", "scatter", "area"}},
		},
	},
	{
		Kind: "resize_chart", Family: FamilyChart, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityChart, MinAPILevel: APILevelTables,
		Params: []ParamSpec{
			{Name: "width", Type: ParamNumber, Required: true, Min: num(1)},
			{Name: "height", Type: ParamNumber, Required: true, Min: num(1)},
		},
	},

	// ---- protection -------------------------------------------------
	{
		Kind: "protect_sheet", Family: FamilyProtection, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelProtection,
		Params: []ParamSpec{
			{Name: "password", Type: ParamString},
			{Name: "allow_format_cells", Type: ParamBool},
			{Name: "allow_insert_rows", Type: ParamBool},
			{Name: "allow_delete_rows", Type: ParamBool},
			{Name: "allow_sort", Type: ParamBool},
			{Name: "allow_filter", Type: ParamBool},
		},
	},
	{
		Kind: "unprotect_sheet", Family: FamilyProtection, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelProtection,
		Params: []ParamSpec{
			{Name: "password", Type: ParamString},
		},
	},
	{
		Kind: "protect_workbook", Family: FamilyProtection, Role: RoleMutates,
		Target: TargetWorkbook, MinAPILevel: APILevelProtection,
		Params: []ParamSpec{
			{Name: "password", Type: ParamString},
		},
	},
	{
		Kind: "unprotect_workbook", Family: FamilyProtection, Role: RoleMutates,
		Target: TargetWorkbook, MinAPILevel: APILevelProtection,
		Params: []ParamSpec{
			{Name: "password", Type: ParamString},
		},
	},
	{
		Kind: "lock_cells", Family: FamilyProtection, Role: RoleMutates,
		Target: TargetRange, MinAPILevel: APILevelProtection,
	},
	{
		Kind: "unlock_cells", Family: FamilyProtection, Role: RoleMutates,
		Target: TargetRange, MinAPILevel: APILevelProtection,
	},

	// ---- shapes and images -----------------------------------------
	{
		Kind: "insert_image", Family: FamilyShape, Role: RoleCreates,
		Target: TargetRange, Entity: EntityShape, MinAPILevel: APILevelShapes,
		Params: []ParamSpec{
			{Name: "name", Type: ParamString, MaxLen: maxEntityNameLen},
			{Name: "image_base64", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "insert_geometric_shape", Family: FamilyShape, Role: RoleCreates,
		Target: TargetRange, Entity: EntityShape, MinAPILevel: APILevelShapes,
		Params: []ParamSpec{
			{Name: "name", Type: ParamString, MaxLen: maxEntityNameLen},
			{Name: "shape_type", Type: ParamEnum, Required: true,
				Enum: []string{"rectangle", "ellipse", "triangle", "arrow", "star"}},
			{Name: "fill_color", Type: ParamColor},
		},
	},
	{
		Kind: "insert_text_box", Family: FamilyShape, Role: RoleCreates,
		Target: TargetRange, Entity: EntityShape, MinAPILevel: APILevelShapes,
		Params: []ParamSpec{
			{Name: "name", Type: ParamString, MaxLen: maxEntityNameLen},
			{Name: "text", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "move_shape", Family: FamilyShape, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityShape, MinAPILevel: APILevelShapes,
		Params: []ParamSpec{
			{Name: "left", Type: ParamNumber, Required: true, Min: num(0)},
			{Name: "top", Type: ParamNumber, Required: true, Min: num(0)},
		},
	},
	{
		Kind: "resize_shape", Family: FamilyShape, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityShape, MinAPILevel: APILevelShapes,
		Params: []ParamSpec{
			{Name: "width", Type: ParamNumber, Required: true, Min: num(1)},
			{Name: "height", Type: ParamNumber, Required: true, Min: num(1)},
		},
	},
	{
		Kind: "delete_shape", Family: FamilyShape, Role: RoleDeletes,
		Target: TargetEntity, Entity: EntityShape, MinAPILevel: APILevelShapes,
	},

	// ---- comments and notes ----------------------------------------
	{
		Kind: "add_comment", Family: FamilyComment, Role: RoleCreates,
		Target: TargetRange, Entity: EntityComment, TargetContiguous: true,
		MinAPILevel: APILevelComments,
		Params: []ParamSpec{
			{Name: "text", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "edit_comment", Family: FamilyComment, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityComment, MinAPILevel: APILevelComments,
		Params: []ParamSpec{
			{Name: "text", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "reply_to_comment", Family: FamilyComment, Role: RoleMutates,
		Target: TargetEntity, Entity: EntityComment, MinAPILevel: APILevelComments,
		Params: []ParamSpec{
			{Name: "text", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "delete_comment", Family: FamilyComment, Role: RoleDeletes,
		Target: TargetEntity, Entity: EntityComment, MinAPILevel: APILevelComments,
	},
	{
		Kind: "add_note", Family: FamilyComment, Role: RoleCreates,
		Target: TargetRange, Entity: EntityNote, TargetContiguous: true,
		MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "text", Type: ParamString, Required: true},
		},
	},
	{
		Kind: "delete_note", Family: FamilyComment, Role: RoleDeletes,
		Target: TargetEntity, Entity: EntityNote, MinAPILevel: APILevelBase,
	},

	// ---- worksheet management --------------------------------------
	{
		Kind: "add_sheet", Family: FamilySheet, Role: RoleCreates,
		Target: TargetWorkbook, Entity: EntitySheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "name", Type: ParamString, MaxLen: maxSheetNameLen},
			{Name: "position", Type: ParamNumber, Min: num(0)},
		},
	},
	{
		Kind: "delete_sheet", Family: FamilySheet, Role: RoleDeletes,
		Target: TargetSheet, Entity: EntitySheet, MinAPILevel: APILevelBase,
	},
	{
		Kind: "rename_sheet", Family: FamilySheet, Role: RoleMutates,
		Target: TargetSheet, Entity: EntitySheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "new_name", Type: ParamString, Required: true, MaxLen: maxSheetNameLen},
		},
	},
	{
		Kind: "move_sheet", Family: FamilySheet, Role: RoleMutates,
		Target: TargetSheet, Entity: EntitySheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "position", Type: ParamNumber, Required: true, Min: num(0)},
		},
	},
	{
		Kind: "hide_sheet", Family: FamilySheet, Role: RoleMutates,
		Target: TargetSheet, Entity: EntitySheet, MinAPILevel: APILevelBase,
	},
	{
		Kind: "unhide_sheet", Family: FamilySheet, Role: RoleMutates,
		Target: TargetSheet, Entity: EntitySheet, MinAPILevel: APILevelBase,
	},
	{
		Kind: "set_sheet_tab_color", Family: FamilySheet, Role: RoleMutates,
		Target: TargetSheet, Entity: EntitySheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "color", Type: ParamColor, Required: true},
		},
	},
	{
		Kind: "set_sheet_zoom", Family: FamilySheet, Role: RoleMutates,
		Target: TargetSheet, Entity: EntitySheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{boundZoom},
	},

	// ---- page setup -------------------------------------------------
	{
		Kind: "set_page_orientation", Family: FamilyPageSetup, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "orientation", Type: ParamEnum, Required: true, Enum: enumOrientation},
		},
	},
	{
		Kind: "set_page_margins", Family: FamilyPageSetup, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "top", Type: ParamNumber, Min: num(0)},
			{Name: "bottom", Type: ParamNumber, Min: num(0)},
			{Name: "left", Type: ParamNumber, Min: num(0)},
			{Name: "right", Type: ParamNumber, Min: num(0)},
		},
	},
	{
		Kind: "set_print_area", Family: FamilyPageSetup, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "range", Type: ParamRange, Required: true},
		},
	},
	{
		Kind: "clear_print_area", Family: FamilyPageSetup, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
	},
	{
		Kind: "add_page_break", Family: FamilyPageSetup, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "before_row", Type: ParamNumber, Required: true, Min: num(1)},
		},
	},
	{
		Kind: "set_header_footer", Family: FamilyPageSetup, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "header", Type: ParamString},
			{Name: "footer", Type: ParamString},
		},
	},

	// ---- hyperlinks -------------------------------------------------
	{
		Kind: "add_hyperlink", Family: FamilyHyperlink, Role: RoleMutates,
		Target: TargetRange, TargetContiguous: true, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "url", Type: ParamString, Required: true},
			{Name: "display_text", Type: ParamString},
			{Name: "tooltip", Type: ParamString},
		},
	},
	{
		Kind: "update_hyperlink", Family: FamilyHyperlink, Role: RoleMutates,
		Target: TargetRange, TargetContiguous: true, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "url", Type: ParamString, Required: true},
			{Name: "display_text", Type: ParamString},
		},
	},
	{
		Kind: "remove_hyperlink", Family: FamilyHyperlink, Role: RoleMutates,
		Target: TargetRange, TargetContiguous: true, MinAPILevel: APILevelBase,
	},

	// ---- linked data types -----------------------------------------
	{
		Kind: "convert_to_stock", Family: FamilyDataType, Role: RoleMutates,
		Target: TargetRange, TargetContiguous: true, MinAPILevel: APILevelDataTypes,
		Params: []ParamSpec{
			{Name: "properties", Type: ParamStringList, MaxItems: 10},
		},
	},
	{
		Kind: "convert_to_geography", Family: FamilyDataType, Role: RoleMutates,
		Target: TargetRange, TargetContiguous: true, MinAPILevel: APILevelDataTypes,
		Params: []ParamSpec{
			{Name: "properties", Type: ParamStringList, MaxItems: 10},
		},
	},
	{
		Kind: "convert_to_text", Family: FamilyDataType, Role: RoleMutates,
		Target: TargetRange, TargetContiguous: true, MinAPILevel: APILevelDataTypes,
	},
	{
		Kind: "refresh_data_types", Family: FamilyDataType, Role: RoleMutates,
		Target: TargetRange, MinAPILevel: APILevelDataTypes,
	},

	// ---- conditional formatting ------------------------------------
	{
		Kind: "add_cell_value_rule", Family: FamilyCondFormat, Role: RoleMutates,
		Target: TargetRange, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "operator", Type: ParamEnum, Required: true,
				Enum: []string{"greater_than", "less_than", "between", "equal_to"}},
			{Name: "value", Type: ParamNumber, Required: true},
			{Name: "value2", Type: ParamNumber},
			{Name: "fill_color", Type: ParamColor, Required: true},
		},
	},
	{
		Kind: "add_color_scale", Family: FamilyCondFormat, Role: RoleMutates,
		Target: TargetRange, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "min_color", Type: ParamColor, Required: true},
			{Name: "mid_color", Type: ParamColor},
			{Name: "max_color", Type: ParamColor, Required: true},
		},
	},
	{
		Kind: "add_data_bar", Family: FamilyCondFormat, Role: RoleMutates,
		Target: TargetRange, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "color", Type: ParamColor},
		},
	},
	{
		Kind: "add_icon_set", Family: FamilyCondFormat, Role: RoleMutates,
		Target: TargetRange, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "icon_set", Type: ParamEnum, Required: true,
				Enum: []string{"three_arrows", "three_traffic_lights", "four_ratings", "five_quarters"}},
		},
	},
	{
		Kind: "clear_conditional_formats", Family: FamilyCondFormat, Role: RoleMutates,
		Target: TargetRange, MinAPILevel: APILevelBase,
	},

	// ---- rows, columns, bulk cell operations -----------------------
	{
		Kind: "insert_rows", Family: FamilyRange, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "start_row", Type: ParamNumber, Required: true, Min: num(1)},
			{Name: "count", Type: ParamNumber, Required: true, Min: num(1)},
		},
	},
	{
		Kind: "delete_rows", Family: FamilyRange, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "start_row", Type: ParamNumber, Required: true, Min: num(1)},
			{Name: "count", Type: ParamNumber, Required: true, Min: num(1)},
		},
	},
	{
		Kind: "insert_columns", Family: FamilyRange, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "start_column", Type: ParamString, Required: true},
			{Name: "count", Type: ParamNumber, Required: true, Min: num(1)},
		},
	},
	{
		Kind: "delete_columns", Family: FamilyRange, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "start_column", Type: ParamString, Required: true},
			{Name: "count", Type: ParamNumber, Required: true, Min: num(1)},
		},
	},
	{
		Kind: "set_row_height", Family: FamilyRange, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "row", Type: ParamNumber, Required: true, Min: num(1)},
			{Name: "height", Type: ParamNumber, Required: true, Min: num(0), Max: num(409)},
		},
	},
	{
		Kind: "set_column_width", Family: FamilyRange, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "column", Type: ParamString, Required: true},
			{Name: "width", Type: ParamNumber, Required: true, Min: num(0), Max: num(255)},
		},
	},
	{
		Kind: "autofit_columns", Family: FamilyRange, Role: RoleMutates,
		Target: TargetRange, MinAPILevel: APILevelBase,
	},
	{
		Kind: "hide_rows", Family: FamilyRange, Role: RoleMutates,
		Target: TargetSheet, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "start_row", Type: ParamNumber, Required: true, Min: num(1)},
			{Name: "count", Type: ParamNumber, Required: true, Min: num(1)},
		},
	},
	{
		Kind: "find_replace", Family: FamilyRange, Role: RoleMutates,
		Target: TargetRange, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "find", Type: ParamString, Required: true},
			{Name: "replace", Type: ParamString, Required: true},
			{Name: "match_case", Type: ParamBool},
			{Name: "match_entire_cell", Type: ParamBool},
		},
	},
	{
		Kind: "sort_range", Family: FamilyRange, Role: RoleMutates,
		Target: TargetRange, TargetContiguous: true, MinAPILevel: APILevelBase,
		Params: []ParamSpec{
			{Name: "column", Type: ParamNumber, Required: true, Min: num(1)},
			{Name: "order", Type: ParamEnum, Enum: enumSortOrder},
			{Name: "has_headers", Type: ParamBool},
		},
	},
}
