package engine

import (
	"fmt"

	"github.com/sheetflow/sheetflow/pkg/document"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

// NameSet tracks entity names a batch creates, keyed by kind. The gate
// treats a sibling-created name as existing; whether the creating action
// actually runs first is the resolver's and session's concern.
type NameSet map[schema.EntityKind]map[string]struct{}

// Add records a created name.
func (n NameSet) Add(kind schema.EntityKind, name string) {
	if name == "" {
		return
	}
	if n[kind] == nil {
		n[kind] = make(map[string]struct{})
	}
	n[kind][name] = struct{}{}
}

// Has reports whether the set holds the name under the kind.
func (n NameSet) Has(kind schema.EntityKind, name string) bool {
	_, ok := n[kind][name]
	return ok
}

// HasName reports whether any kind holds the name.
func (n NameSet) HasName(name string) bool {
	for _, names := range n {
		if _, ok := names[name]; ok {
			return true
		}
	}
	return false
}

// Gate evaluates whether the document supports an action right now:
// feature level, protection state, and target existence. It is run once
// during validation against the session snapshot and again by every
// mutator against a fresh snapshot immediately before the live call.
type Gate struct{}

// Check returns nil when the action may proceed. sheet is the resolved
// worksheet, target the descriptor target, pending the names created by
// batch siblings (empty on the mutator-time re-check, where the live
// snapshot already reflects earlier applications).
func (Gate) Check(s *schema.ActionSchema, sheet, target string, snap *document.Snapshot, pending NameSet) *ActionError {
	if snap.APILevel < s.MinAPILevel {
		return NewActionError(ErrUnsupportedAPILevel,
			fmt.Sprintf("action needs document API level %d, document reports %d",
				s.MinAPILevel, snap.APILevel), nil).WithAction(s.Kind)
	}

	if err := checkProtection(s, protectionSheet(s, sheet, target, snap), snap); err != nil {
		return err
	}

	return checkExistence(s, sheet, target, snap, pending)
}

// protectionSheet resolves the sheet whose protection governs the
// action. An entity target is governed by its hosting sheet as the
// snapshot records it, not by the descriptor's sheet field or the
// active sheet.
func protectionSheet(s *schema.ActionSchema, sheet, target string, snap *document.Snapshot) string {
	if s.Target != schema.TargetEntity {
		return sheet
	}
	if e, ok := snap.Entity(s.Entity, target); ok && e.Sheet != "" {
		return e.Sheet
	}
	return sheet
}

// Recheck re-runs the gate against a fresh snapshot immediately before
// a mutation, guarding against stale snapshots. Unlike Check, a missing named
// target is a hard denial here: by dispatch time the entity must exist
// in the live document.
func (g Gate) Recheck(s *schema.ActionSchema, sheet, target string, snap *document.Snapshot) *ActionError {
	if err := g.Check(s, sheet, target, snap, nil); err != nil {
		return err
	}
	if (s.Role == schema.RoleMutates || s.Role == schema.RoleDeletes) &&
		s.Target == schema.TargetEntity && !snap.HasEntity(s.Entity, target) {
		return NewActionError(ErrEntityNotFound,
			fmt.Sprintf("%s %q does not exist", s.Entity, target), nil).
			WithAction(s.Kind).WithTarget(target)
	}
	return nil
}

// checkProtection denies actions whose entity role is not permitted
// under the target sheet's recorded protection options. Protection
// actions themselves pass: unprotecting a protected sheet must be
// attemptable, and a wrong password is the document's call to refuse.
func checkProtection(s *schema.ActionSchema, sheet string, snap *document.Snapshot) *ActionError {
	if s.Family == schema.FamilyProtection || s.Role == schema.RoleReads {
		return nil
	}

	if snap.WorkbookProtected && s.Entity == schema.EntitySheet {
		return NewActionError(ErrSheetProtected,
			"workbook structure is protected", nil).WithAction(s.Kind)
	}

	st, ok := snap.Sheets[sheet]
	if !ok || !st.Protection.Protected {
		return nil
	}
	if permittedUnderProtection(s, st.Protection.Options) {
		return nil
	}
	return NewActionError(ErrSheetProtected,
		fmt.Sprintf("sheet %q is protected", sheet), nil).WithAction(s.Kind)
}

// permittedUnderProtection maps action kinds to the protection
// allowances that still permit them on a protected sheet.
func permittedUnderProtection(s *schema.ActionSchema, opts document.ProtectionOptions) bool {
	switch s.Kind {
	case "insert_rows", "insert_columns":
		return opts.AllowInsertRows
	case "delete_rows", "delete_columns", "hide_rows":
		return opts.AllowDeleteRows
	case "sort_range":
		return opts.AllowSort
	case "set_slicer_selection", "clear_slicer_filter":
		return opts.AllowFilter
	}
	switch s.Family {
	case schema.FamilyCondFormat:
		return opts.AllowFormatCells
	case schema.FamilyShape, schema.FamilyChart:
		return opts.AllowEditObjects
	}
	return false
}

// checkExistence verifies the action's addressed sheet and, for
// mutates/deletes roles, its named target entity. A target that a batch
// sibling creates passes here; the resolver orders it and reports
// dangling references.
func checkExistence(s *schema.ActionSchema, sheet, target string, snap *document.Snapshot, pending NameSet) *ActionError {
	// Every sheet-addressed action needs its sheet, including creates
	// anchored to a range on it.
	if s.Target == schema.TargetRange || (s.Target == schema.TargetSheet && s.Entity != schema.EntitySheet) {
		if _, ok := snap.Sheets[sheet]; !ok && !pending.Has(schema.EntitySheet, sheet) {
			return NewActionError(ErrEntityNotFound,
				fmt.Sprintf("sheet %q does not exist", sheet), nil).
				WithAction(s.Kind).WithTarget(sheet)
		}
		return nil
	}

	if s.Role != schema.RoleMutates && s.Role != schema.RoleDeletes {
		return nil
	}

	switch s.Target {
	case schema.TargetSheet:
		if _, ok := snap.Sheets[target]; ok || pending.Has(schema.EntitySheet, target) {
			return nil
		}
		return NewActionError(ErrEntityNotFound,
			fmt.Sprintf("sheet %q does not exist", target), nil).
			WithAction(s.Kind).WithTarget(target)
	case schema.TargetEntity:
		if snap.HasEntity(s.Entity, target) || pending.Has(s.Entity, target) {
			return nil
		}
		// Left for the resolver: at validation time, a name neither
		// in the snapshot nor created by a batch sibling is an
		// unresolved dependency, not a gate denial.
		return nil
	default:
		return nil
	}
}
