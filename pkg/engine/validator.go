package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sheetflow/sheetflow/pkg/document"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

// Validator performs structural and semantic validation of one
// descriptor against its schema and the session snapshot. It never
// coerces values and never drops invalid fields: any violation rejects
// the action with the offending field named.
type Validator struct {
	registry *schema.Registry
	gate     Gate
	log      zerolog.Logger
}

// NewValidator creates a validator over the given schema registry.
func NewValidator(registry *schema.Registry, log zerolog.Logger) *Validator {
	return &Validator{registry: registry, log: log}
}

// Validate resolves one descriptor into a ValidatedAction. pending
// holds the entity names created by batch siblings, so that forward
// references within the batch pass the gate and land in the resolver.
func (v *Validator) Validate(desc ActionDescriptor, index int, snap *document.Snapshot, pending NameSet) *ValidatedAction {
	act := &ValidatedAction{Descriptor: desc, Index: index, Ready: true}

	s, ok := v.registry.Lookup(desc.Kind)
	if !ok {
		return act.Reject(NewActionError(ErrUnknownAction,
			fmt.Sprintf("unknown action kind %q", desc.Kind), nil))
	}
	act.Schema = s

	act.Sheet = v.resolveSheet(desc, s, snap)

	if err := v.gate.Check(s, act.Sheet, desc.Target, snap, pending); err != nil {
		return act.Reject(err)
	}

	if err := v.validateTarget(desc, s); err != nil {
		return act.Reject(err)
	}

	for i := range s.Params {
		if err := v.validateParam(desc, &s.Params[i]); err != nil {
			return act.Reject(err)
		}
	}

	v.collectNames(act, s, snap)
	return act
}

// resolveSheet picks the worksheet the action addresses: an explicit
// sheet field wins, then a sheet-qualified range target, then the
// snapshot's active sheet.
func (v *Validator) resolveSheet(desc ActionDescriptor, s *schema.ActionSchema, snap *document.Snapshot) string {
	if desc.Sheet != "" {
		return desc.Sheet
	}
	if s.Target == schema.TargetSheet && desc.Target != "" {
		return desc.Target
	}
	if s.Target == schema.TargetRange {
		if ref, err := document.ParseRange(desc.Target); err == nil && ref.Sheet != "" {
			return ref.Sheet
		}
	}
	return snap.ActiveSheet
}

func (v *Validator) validateTarget(desc ActionDescriptor, s *schema.ActionSchema) *ActionError {
	switch s.Target {
	case schema.TargetRange:
		ref, err := document.ParseRange(desc.Target)
		if err != nil {
			return NewActionError(ErrInvalidParameter, err.Error(), nil).
				WithAction(s.Kind).WithField("target").WithTarget(desc.Target)
		}
		if s.TargetContiguous && !ref.Contiguous() {
			return NewActionError(ErrInvalidParameter,
				"target must be a single contiguous range", nil).
				WithAction(s.Kind).WithField("target").WithTarget(desc.Target)
		}
	case schema.TargetEntity, schema.TargetSheet:
		if strings.TrimSpace(desc.Target) == "" {
			return NewActionError(ErrInvalidParameter,
				"target is required", nil).
				WithAction(s.Kind).WithField("target")
		}
	case schema.TargetWorkbook:
		// Target ignored.
	}
	return nil
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

func (v *Validator) validateParam(desc ActionDescriptor, p *schema.ParamSpec) *ActionError {
	raw, present := desc.Parameters[p.Name]
	if !present || raw == nil {
		if p.Required {
			return NewActionError(ErrInvalidParameter,
				fmt.Sprintf("required parameter %q is missing", p.Name), nil).
				WithAction(desc.Kind).WithField(p.Name)
		}
		return nil
	}

	fail := func(format string, args ...any) *ActionError {
		return NewActionError(ErrInvalidParameter,
			fmt.Sprintf(format, args...), nil).
			WithAction(desc.Kind).WithField(p.Name)
	}

	switch p.Type {
	case schema.ParamString:
		s, ok := raw.(string)
		if !ok {
			return fail("parameter %q must be a string", p.Name)
		}
		if p.MaxLen > 0 && len(s) > p.MaxLen {
			return fail("parameter %q exceeds %d characters", p.Name, p.MaxLen)
		}

	case schema.ParamNumber:
		n, ok := toNumber(raw)
		if !ok {
			return fail("parameter %q must be a number", p.Name)
		}
		if p.Min != nil && n < *p.Min {
			return fail("parameter %q must be at least %v", p.Name, *p.Min)
		}
		if p.Max != nil && n > *p.Max {
			return fail("parameter %q must be at most %v", p.Name, *p.Max)
		}

	case schema.ParamBool:
		if _, ok := raw.(bool); !ok {
			return fail("parameter %q must be a boolean", p.Name)
		}

	case schema.ParamEnum:
		s, ok := raw.(string)
		if !ok {
			return fail("parameter %q must be a string", p.Name)
		}
		for _, allowed := range p.Enum {
			if s == allowed {
				return nil
			}
		}
		return fail("parameter %q must be one of %s", p.Name, strings.Join(p.Enum, ", "))

	case schema.ParamRange:
		s, ok := raw.(string)
		if !ok {
			return fail("parameter %q must be a range reference", p.Name)
		}
		ref, err := document.ParseRange(s)
		if err != nil {
			return fail("parameter %q: %v", p.Name, err)
		}
		if p.Contiguous && !ref.Contiguous() {
			return fail("parameter %q must be a single contiguous range", p.Name)
		}

	case schema.ParamColor:
		s, ok := raw.(string)
		if !ok || !colorPattern.MatchString(s) {
			return fail("parameter %q must be a #RRGGBB color", p.Name)
		}

	case schema.ParamStringList:
		items, ok := toStringList(raw)
		if !ok {
			return fail("parameter %q must be a list of strings", p.Name)
		}
		if p.MaxItems > 0 && len(items) > p.MaxItems {
			return fail("parameter %q holds at most %d items", p.Name, p.MaxItems)
		}
		if len(items) == 0 {
			return fail("parameter %q must not be empty", p.Name)
		}

	case schema.ParamNumberList:
		items, ok := toNumberList(raw)
		if !ok {
			return fail("parameter %q must be a list of numbers", p.Name)
		}
		if p.MaxItems > 0 && len(items) > p.MaxItems {
			return fail("parameter %q holds at most %d items", p.Name, p.MaxItems)
		}
	}
	return nil
}

// collectNames records what the action creates and which entity names
// it references, for the resolver. The dependsOn hint is folded in as a
// kindless reference; a hint that disagrees with the inferred
// references is warned about, not trusted.
func (v *Validator) collectNames(act *ValidatedAction, s *schema.ActionSchema, snap *document.Snapshot) {
	desc := act.Descriptor

	if _, creates := s.CreatedEntity(); creates {
		if name, ok := desc.Parameters["name"].(string); ok {
			act.Creates = name
		}
	}

	if (s.Role == schema.RoleMutates || s.Role == schema.RoleDeletes) && s.Target == schema.TargetEntity {
		act.References = append(act.References, EntityRef{Kind: s.Entity, Name: desc.Target})
	}
	for i := range s.Params {
		p := &s.Params[i]
		if p.Refs == "" {
			continue
		}
		if name, ok := desc.Parameters[p.Name].(string); ok && name != "" {
			act.References = append(act.References, EntityRef{Kind: p.Refs, Name: name})
		}
	}

	if desc.DependsOn == "" {
		return
	}
	inferred := false
	for _, ref := range act.References {
		if ref.Name == desc.DependsOn {
			inferred = true
			break
		}
	}
	if !inferred {
		warn := fmt.Sprintf("depends_on hint %q does not match any inferred reference; treating it as an ordering hint only", desc.DependsOn)
		act.Warnings = append(act.Warnings, warn)
		v.log.Warn().Str("kind", desc.Kind).Str("depends_on", desc.DependsOn).
			Msg("depends_on hint conflicts with name-based inference")
	}
	act.References = append(act.References, EntityRef{Name: desc.DependsOn})
}

func toNumber(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func toStringList(raw any) ([]string, bool) {
	switch items := raw.(type) {
	case []string:
		return items, true
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

func toNumberList(raw any) ([]float64, bool) {
	switch items := raw.(type) {
	case []float64:
		return items, true
	case []any:
		out := make([]float64, 0, len(items))
		for _, item := range items {
			n, ok := toNumber(item)
			if !ok {
				return nil, false
			}
			out = append(out, n)
		}
		return out, true
	default:
		return nil, false
	}
}
