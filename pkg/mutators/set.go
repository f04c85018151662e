package mutators

import (
	"github.com/rs/zerolog"

	"github.com/sheetflow/sheetflow/pkg/engine"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

// Set is the full mutator registry: one mutator per operation family.
// It satisfies engine.MutatorSet.
type Set struct {
	byFamily map[schema.Family]engine.Mutator
}

// NewSet builds the set with every built-in family mutator registered.
func NewSet(log zerolog.Logger) *Set {
	s := &Set{byFamily: make(map[schema.Family]engine.Mutator)}
	for _, m := range []engine.Mutator{
		NewTableMutator(log),
		NewPivotMutator(log),
		NewSlicerMutator(log),
		NewSparklineMutator(log),
		NewNamedRangeMutator(log),
		NewChartMutator(log),
		NewProtectionMutator(log),
		NewShapeMutator(log),
		NewCommentMutator(log),
		NewSheetMutator(log),
		NewPageSetupMutator(log),
		NewHyperlinkMutator(log),
		NewDataTypeMutator(log),
		NewCondFormatMutator(log),
		NewRangeMutator(log),
	} {
		s.byFamily[m.Family()] = m
	}
	return s
}

// For returns the mutator registered for the family.
func (s *Set) For(family schema.Family) (engine.Mutator, bool) {
	m, ok := s.byFamily[family]
	return m, ok
}
