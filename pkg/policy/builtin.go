package policy

import (
	"time"
)

// BuiltinPolicies returns all built-in policies.
func BuiltinPolicies() []Policy {
	return []Policy{
		unsafeHyperlinksPolicy(),
		destructiveActionsPolicy(),
		protectionChangesPolicy(),
		bulkRowChangesPolicy(),
	}
}

// unsafeHyperlinksPolicy blocks hyperlinks with script or local file
// schemes.
func unsafeHyperlinksPolicy() Policy {
	return Policy{
		Name:        "unsafe-hyperlinks",
		Description: "Blocks hyperlinks using script or local file URL schemes",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"hyperlinks", "safety"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package sheetflow.policies.hyperlinks

import rego.v1

# URL schemes that must never reach the document
blocked_schemes := ["javascript:", "file:", "vbscript:", "data:"]

deny contains violation if {
	input.action.kind == "add_hyperlink"
	url := lower(input.action.parameters.url)

	some scheme in blocked_schemes
	startswith(url, scheme)

	violation := {
		"message": sprintf("Hyperlink URL scheme %s is not allowed", [scheme]),
		"severity": "error",
	}
}`,
	}
}

// destructiveActionsPolicy blocks entity and sheet deletions. It is
// disabled by default; operators enable it for read-mostly workbooks.
func destructiveActionsPolicy() Policy {
	return Policy{
		Name:        "destructive-actions",
		Description: "Blocks actions that delete sheets, tables, pivot tables or defined names",
		Severity:    SeverityCritical,
		Enabled:     false,
		Tags:        []string{"safety", "deletion"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package sheetflow.policies.destructive

import rego.v1

destructive_kinds := [
	"delete_sheet",
	"delete_table",
	"delete_pivot_table",
	"delete_named_range",
	"delete_shape",
	"delete_chart",
]

deny contains violation if {
	some kind in destructive_kinds
	input.action.kind == kind

	# Dry runs never mutate, so let them through for preview
	not input.context.dry_run

	violation := {
		"message": sprintf("Destructive action %s is blocked by policy", [kind]),
		"severity": "critical",
	}
}`,
	}
}

// protectionChangesPolicy flags actions that remove protection. The
// violations are warnings and never block dispatch.
func protectionChangesPolicy() Policy {
	return Policy{
		Name:        "protection-changes",
		Description: "Flags actions that remove workbook or sheet protection",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"protection", "audit"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package sheetflow.policies.protection

import rego.v1

deny contains violation if {
	input.action.kind in ["unprotect_sheet", "unprotect_workbook"]

	violation := {
		"message": sprintf("Action %s removes protection", [input.action.kind]),
		"severity": "warning",
	}
}`,
	}
}

// bulkRowChangesPolicy warns when a single action inserts or deletes
// a large number of rows or columns.
func bulkRowChangesPolicy() Policy {
	return Policy{
		Name:        "bulk-row-changes",
		Description: "Warns when a single action inserts or deletes more than 100 rows or columns",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"ranges", "audit"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package sheetflow.policies.bulk

import rego.v1

bulk_kinds := ["insert_rows", "delete_rows", "insert_columns", "delete_columns"]

deny contains violation if {
	some kind in bulk_kinds
	input.action.kind == kind

	n := to_number(input.action.parameters.count)
	n > 100

	violation := {
		"message": sprintf("Action %s affects %v rows or columns", [kind, n]),
		"severity": "warning",
	}
}`,
	}
}
