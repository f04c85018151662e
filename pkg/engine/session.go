package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sheetflow/sheetflow/pkg/document"
	"github.com/sheetflow/sheetflow/pkg/schema"
	"github.com/sheetflow/sheetflow/pkg/telemetry"
)

// Options configures one execution session.
type Options struct {
	// Completion selects the completion policy. Zero value means
	// continue on failure.
	Completion CompletionPolicy

	// DryRun validates and orders the batch but dispatches nothing.
	// Dispatchable actions are reported as skipped with a dry run note.
	DryRun bool

	// BatchName labels spans, metrics and events for this batch.
	BatchName string

	// Policy is an optional admission gate consulted after validation.
	Policy PolicyGate
}

// Session executes one batch of action descriptors against a document
// and produces an ExecutionReport. A session is single use: it walks
// the phases in one direction and is not reentrant.
type Session struct {
	registry  *schema.Registry
	validator *Validator
	resolver  *Resolver
	mutators  MutatorSet
	log       zerolog.Logger

	id    string
	phase SessionPhase
}

// NewSession creates a session over the given registry and mutators.
func NewSession(registry *schema.Registry, mutators MutatorSet, log zerolog.Logger) *Session {
	id := uuid.New().String()
	log = log.With().Str("session_id", id).Logger()
	return &Session{
		registry:  registry,
		validator: NewValidator(registry, log),
		resolver:  NewResolver(log),
		mutators:  mutators,
		log:       log,
		id:        id,
		phase:     PhaseCollecting,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the session's current phase.
func (s *Session) Phase() SessionPhase { return s.phase }

// Execute runs the batch to completion and returns the report. The
// report always carries exactly one outcome per submitted action, in
// input order. Business failures never surface as a Go error; the
// error return covers only a failed initial snapshot, where nothing
// can be decided about any action.
func (s *Session) Execute(ctx context.Context, batch []ActionDescriptor, doc document.Handle, opts Options) (*ExecutionReport, error) {
	started := time.Now()
	report := &ExecutionReport{
		SessionID: s.id,
		StartedAt: started,
	}

	if opts.Completion == "" {
		opts.Completion = ContinueOnFailure
	}
	if err := opts.Completion.Validate(); err != nil {
		return nil, err
	}

	s.log.Info().Int("actions", len(batch)).
		Str("completion", string(opts.Completion)).
		Bool("dry_run", opts.DryRun).
		Msg("session started")

	mode := "live"
	if opts.DryRun {
		mode = "dry_run"
	}
	ctx = telemetry.WithSessionContext(ctx, s.id, opts.BatchName, mode, len(batch))

	if len(batch) == 0 {
		s.phase = PhaseCompleted
		s.finish(report)
		telemetry.EndSessionContext(ctx, s.id, string(report.Status), nil)
		return report, nil
	}

	s.advance()
	snap, err := doc.Snapshot(ctx)
	if err != nil {
		aerr := NewActionError(ErrDocumentRejected, "failed to snapshot document", err)
		telemetry.EndSessionContext(ctx, s.id, string(ReportFailed), aerr)
		return nil, aerr
	}

	acts := s.validate(ctx, batch, snap, opts)
	s.publishRejections(ctx, acts)

	s.advance()
	ordered := s.resolver.Order(acts, snap)

	s.advance()
	outcomes := s.dispatch(ctx, ordered, doc, snap, opts)

	s.advance()
	s.assemble(report, acts, outcomes)
	s.finish(report)
	telemetry.EndSessionContext(ctx, s.id, string(report.Status), nil)
	return report, nil
}

// validate resolves every descriptor against the registry, the gate
// and the snapshot, then applies the admission policy to the survivors.
func (s *Session) validate(ctx context.Context, batch []ActionDescriptor, snap *document.Snapshot, opts Options) []*ValidatedAction {
	// Let the gate see names sibling actions create, so a reference to
	// a not-yet-existing entity defers to the resolver instead of
	// being denied outright.
	pending := make(NameSet)
	for _, desc := range batch {
		sch, ok := s.registry.Lookup(desc.Kind)
		if !ok || sch.Role != schema.RoleCreates {
			continue
		}
		if name, ok := desc.Parameters["name"].(string); ok && name != "" {
			kind, _ := sch.CreatedEntity()
			pending.Add(kind, name)
		}
	}

	acts := make([]*ValidatedAction, len(batch))
	for i, desc := range batch {
		acts[i] = s.validator.Validate(desc, i, snap, pending)
	}

	if opts.Policy == nil {
		return acts
	}
	for _, act := range acts {
		if !act.Ready {
			continue
		}
		allowed, rule, err := opts.Policy.Allow(ctx, act)
		if err != nil {
			act.Reject(NewActionError(ErrPolicyDenied, "policy evaluation failed", err).
				WithAction(act.Descriptor.Kind))
			continue
		}
		if !allowed {
			act.Reject(NewActionError(ErrPolicyDenied, "denied by policy: "+rule, nil).
				WithAction(act.Descriptor.Kind))
			if tel := telemetry.FromTelemetryContext(ctx); tel != nil {
				tel.Metrics.RecordPolicyDenial(rule)
				_ = tel.Events.PublishPolicyViolation(s.id,
					act.Descriptor.Kind, act.Index, rule, rule)
			}
		}
	}
	return acts
}

// publishRejections feeds validation denials to the metrics and event
// exporters. Dispatched outcomes report themselves; only actions that
// never reach a mutator are covered here.
func (s *Session) publishRejections(ctx context.Context, acts []*ValidatedAction) {
	tel := telemetry.FromTelemetryContext(ctx)
	if tel == nil {
		return
	}
	for _, act := range acts {
		if act.Ready || act.Err == nil {
			continue
		}
		tel.Metrics.RecordError(string(act.Err.Kind))
		_ = tel.Events.PublishActionRejected(s.id, act.Descriptor.Kind,
			act.Index, string(act.Err.Kind), act.Err.Message)
	}
}

// dispatch runs the ordered actions strictly sequentially and returns
// their outcomes keyed by batch index.
func (s *Session) dispatch(ctx context.Context, ordered []*ValidatedAction, doc document.Handle, snap *document.Snapshot, opts Options) map[int]ExecutionOutcome {
	outcomes := make(map[int]ExecutionOutcome, len(ordered))

	// Names whose in-batch creator has actually applied. A dependent
	// of a failed creator is skipped without reaching its mutator.
	applied := make(NameSet)

	skipRest := func(from int, err *ActionError) {
		for _, rest := range ordered[from:] {
			outcomes[rest.Index] = ExecutionOutcome{
				Index:  rest.Index,
				Kind:   rest.Descriptor.Kind,
				Target: rest.Descriptor.Target,
				Status: OutcomeSkipped,
				Err:    err,
			}
		}
	}

	for i, act := range ordered {
		if ctx.Err() != nil {
			skipRest(i, NewActionError(ErrBatchAborted, "session cancelled", ctx.Err()))
			return outcomes
		}

		if ref, ok := s.unappliedRef(act, snap, applied); ok {
			outcomes[act.Index] = ExecutionOutcome{
				Index:  act.Index,
				Kind:   act.Descriptor.Kind,
				Target: act.Descriptor.Target,
				Status: OutcomeSkipped,
				Err: NewActionError(ErrUnresolvedDependency,
					"creator of "+ref.Name+" did not apply", nil).
					WithAction(act.Descriptor.Kind).WithTarget(ref.Name),
			}
			continue
		}

		if opts.DryRun {
			outcomes[act.Index] = ExecutionOutcome{
				Index:  act.Index,
				Kind:   act.Descriptor.Kind,
				Target: act.Descriptor.Target,
				Status: OutcomeSkipped,
				Detail: &OutcomeDetail{Message: "dry run, not dispatched"},
			}
			if act.Creates != "" {
				kind, _ := act.Schema.CreatedEntity()
				applied.Add(kind, act.Creates)
			}
			continue
		}

		mut, ok := s.mutators.For(act.Schema.Family)
		if !ok {
			// A registered kind without a mutator is a wiring bug,
			// not a user condition.
			outcomes[act.Index] = ExecutionOutcome{
				Index:  act.Index,
				Kind:   act.Descriptor.Kind,
				Target: act.Descriptor.Target,
				Status: OutcomeFailed,
				Err: NewActionError(ErrUnknownAction,
					"no mutator registered for family "+string(act.Schema.Family), nil),
			}
			continue
		}

		// A dispatched mutation runs to completion or failure even if
		// the session deadline lapses mid-call.
		actx := telemetry.WithActionContext(ctx, s.id,
			act.Descriptor.Kind, string(act.Schema.Family), act.Index)
		outcome := mut.Apply(context.WithoutCancel(actx), act, doc)
		outcomes[act.Index] = outcome

		var operr error
		if outcome.Err != nil {
			operr = outcome.Err
		}
		telemetry.EndActionContext(actx, s.id, act.Descriptor.Kind,
			string(act.Schema.Family), act.Sheet, act.Index,
			string(outcome.Status), operr)

		s.log.Debug().Int("index", act.Index).
			Str("kind", act.Descriptor.Kind).
			Str("status", string(outcome.Status)).
			Dur("duration", outcome.Duration).
			Msg("action dispatched")

		if outcome.Status == OutcomeApplied && act.Creates != "" {
			kind, _ := act.Schema.CreatedEntity()
			applied.Add(kind, act.Creates)
		}
		if outcome.Status == OutcomeApplied && outcome.Detail != nil && outcome.Detail.EntityName != "" {
			if tel := telemetry.FromTelemetryContext(ctx); tel != nil {
				tel.Metrics.RecordEntityCreated(string(outcome.Detail.EntityKind))
				_ = tel.Events.PublishEntityCreated(s.id,
					string(outcome.Detail.EntityKind), outcome.Detail.EntityName, act.Sheet)
			}
		}

		if outcome.Status == OutcomeFailed && opts.Completion == AbortOnFirstFailure {
			s.log.Warn().Int("index", act.Index).Msg("aborting batch on failure")
			skipRest(i+1, NewActionError(ErrBatchAborted,
				"batch aborted after action failure", nil))
			return outcomes
		}
	}
	return outcomes
}

// unappliedRef finds the first reference whose in-batch creator has
// not applied. References already satisfied by the snapshot need no
// in-batch creator.
func (s *Session) unappliedRef(act *ValidatedAction, snap *document.Snapshot, applied NameSet) (EntityRef, bool) {
	for _, ref := range act.References {
		if ref.Name == act.Creates {
			continue
		}
		if ref.Kind != "" {
			if snap.HasEntity(ref.Kind, ref.Name) || applied.Has(ref.Kind, ref.Name) {
				continue
			}
		} else if snap.HasName(ref.Name) || applied.HasName(ref.Name) {
			continue
		}
		return ref, true
	}
	return EntityRef{}, false
}

// assemble fills the report with one outcome per input action, in
// input order.
func (s *Session) assemble(report *ExecutionReport, acts []*ValidatedAction, outcomes map[int]ExecutionOutcome) {
	report.Outcomes = make([]ExecutionOutcome, len(acts))
	for i, act := range acts {
		if out, ok := outcomes[i]; ok {
			out.Warnings = append(act.Warnings, out.Warnings...)
			report.Outcomes[i] = out
			continue
		}
		report.Outcomes[i] = ExecutionOutcome{
			Index:    i,
			Kind:     act.Descriptor.Kind,
			Target:   act.Descriptor.Target,
			Status:   OutcomeRejected,
			Err:      act.Err,
			Warnings: act.Warnings,
		}
	}
}

func (s *Session) finish(report *ExecutionReport) {
	report.CompletedAt = time.Now()
	report.Duration = report.CompletedAt.Sub(report.StartedAt)
	for _, out := range report.Outcomes {
		report.Summary.Total++
		switch out.Status {
		case OutcomeApplied:
			report.Summary.Applied++
		case OutcomeRejected:
			report.Summary.Rejected++
		case OutcomeSkipped:
			report.Summary.Skipped++
		case OutcomeFailed:
			report.Summary.Failed++
		}
	}
	report.Status = summarize(report.Summary)

	s.log.Info().
		Int("applied", report.Summary.Applied).
		Int("rejected", report.Summary.Rejected).
		Int("skipped", report.Summary.Skipped).
		Int("failed", report.Summary.Failed).
		Dur("duration", report.Duration).
		Str("status", string(report.Status)).
		Msg("session completed")
}

func (s *Session) advance() {
	next := s.phase.next()
	s.log.Debug().Str("from", string(s.phase)).Str("to", string(next)).Msg("phase transition")
	s.phase = next
}
