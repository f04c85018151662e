package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/sheetflow/sheetflow/pkg/document"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

// Resolver orders the ready subset of a batch so entity-creating
// actions precede the actions that reference the created names, and
// rejects references that nothing satisfies.
//
// The order is a stable topological sort: actions with no dependency
// relation keep their original relative batch order. Name-based
// inference is authoritative; dependsOn hints only add edges.
type Resolver struct {
	log zerolog.Logger
}

// NewResolver creates a resolver.
func NewResolver(log zerolog.Logger) *Resolver {
	return &Resolver{log: log}
}

type creatorKey struct {
	kind schema.EntityKind
	name string
}

// Order returns the ready actions in dispatch order. Actions whose
// references dangle, and actions caught in a reference cycle, are
// rejected in place and excluded from the returned order.
func (r *Resolver) Order(ready []*ValidatedAction, snap *document.Snapshot) []*ValidatedAction {
	if len(ready) == 0 {
		return nil
	}

	// Rejecting an action can orphan the references that pointed at
	// the entity it would have created, so resolve to a fixpoint.
	for r.rejectDangling(ready, snap) {
	}

	pending := make([]*ValidatedAction, 0, len(ready))
	for _, act := range ready {
		if act.Ready {
			pending = append(pending, act)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	creators, byName := r.indexCreators(pending)

	// Build edges creator -> referencer among the surviving actions.
	adjacency := make(map[int][]*ValidatedAction, len(pending))
	inDegree := make(map[int]int, len(pending))
	for _, act := range pending {
		for _, ref := range act.References {
			creator := r.lookupCreator(ref, creators, byName)
			if creator == nil || creator.Index == act.Index {
				continue
			}
			adjacency[creator.Index] = append(adjacency[creator.Index], act)
			inDegree[act.Index]++
		}
	}

	// Kahn's algorithm with a stable tie-break: always take the
	// lowest original batch index among the unblocked actions.
	ordered := make([]*ValidatedAction, 0, len(pending))
	done := make(map[int]bool, len(pending))
	for len(ordered) < len(pending) {
		var next *ValidatedAction
		for _, act := range pending {
			if done[act.Index] || inDegree[act.Index] > 0 {
				continue
			}
			next = act
			break
		}
		if next == nil {
			// Remaining actions form a cycle. Impossible under the
			// built-in schemas, but descriptors are untrusted.
			remaining := 0
			for _, act := range pending {
				if !done[act.Index] {
					remaining++
					act.Reject(NewActionError(ErrUnresolvedDependency,
						"action is part of a reference cycle", nil).
						WithAction(act.Descriptor.Kind))
				}
			}
			r.log.Warn().Int("actions", remaining).Msg("reference cycle rejected")
			break
		}
		done[next.Index] = true
		ordered = append(ordered, next)
		for _, dependent := range adjacency[next.Index] {
			inDegree[dependent.Index]--
		}
	}

	return ordered
}

// rejectDangling rejects every still-ready action holding a reference
// that neither the snapshot nor a still-ready sibling satisfies. It
// reports whether it rejected anything.
func (r *Resolver) rejectDangling(ready []*ValidatedAction, snap *document.Snapshot) bool {
	creators, byName := r.indexCreators(ready)
	changed := false
	for _, act := range ready {
		if !act.Ready {
			continue
		}
		for _, ref := range act.References {
			if r.lookupCreator(ref, creators, byName) != nil {
				continue
			}
			if r.satisfiedBySnapshot(ref, snap) {
				continue
			}
			act.Reject(NewActionError(ErrUnresolvedDependency,
				fmt.Sprintf("reference %q is neither in the document nor created in this batch", ref.Name), nil).
				WithAction(act.Descriptor.Kind).WithTarget(ref.Name))
			changed = true
			break
		}
	}
	return changed
}

// indexCreators maps created entity names to the still-ready actions
// that create them. On duplicate creation of one name the first
// creator anchors the dependency; later duplicates are refused by the
// document itself at dispatch time.
func (r *Resolver) indexCreators(acts []*ValidatedAction) (map[creatorKey]*ValidatedAction, map[string]*ValidatedAction) {
	creators := make(map[creatorKey]*ValidatedAction)
	byName := make(map[string]*ValidatedAction)
	for _, act := range acts {
		if !act.Ready || act.Creates == "" {
			continue
		}
		kind, _ := act.Schema.CreatedEntity()
		key := creatorKey{kind: kind, name: act.Creates}
		if prev, dup := creators[key]; dup {
			r.log.Warn().Str("name", act.Creates).Int("first", prev.Index).
				Int("duplicate", act.Index).
				Msg("two actions create the same entity name; ordering against the first")
			continue
		}
		creators[key] = act
		if _, dup := byName[act.Creates]; !dup {
			byName[act.Creates] = act
		}
	}
	return creators, byName
}

func (r *Resolver) lookupCreator(ref EntityRef, creators map[creatorKey]*ValidatedAction, byName map[string]*ValidatedAction) *ValidatedAction {
	if ref.Kind != "" {
		return creators[creatorKey{kind: ref.Kind, name: ref.Name}]
	}
	return byName[ref.Name]
}

func (r *Resolver) satisfiedBySnapshot(ref EntityRef, snap *document.Snapshot) bool {
	if ref.Kind != "" {
		return snap.HasEntity(ref.Kind, ref.Name)
	}
	return snap.HasName(ref.Name)
}
