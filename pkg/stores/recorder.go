package stores

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sheetflow/sheetflow/pkg/engine"
	"github.com/sheetflow/sheetflow/pkg/schema"
)

// RecordMeta carries session context the execution report does not.
type RecordMeta struct {
	BatchName  string
	SourcePath string
	Mode       string // live, dry_run
	Workbook   string
	Actor      string
}

// Recorder persists execution reports and workbook snapshots.
type Recorder struct {
	store    Store
	registry *schema.Registry
	logger   zerolog.Logger
}

// NewRecorder creates a recorder writing to the given store.
func NewRecorder(store Store, logger zerolog.Logger) *Recorder {
	return &Recorder{
		store:    store,
		registry: schema.NewRegistry(),
		logger:   logger.With().Str("component", "recorder").Logger(),
	}
}

// RecordReport persists a completed execution report as a session with
// one outcome row per action. The descriptors provide the per-action
// sheet, which the report does not carry.
func (r *Recorder) RecordReport(ctx context.Context, report *engine.ExecutionReport, descriptors []engine.ActionDescriptor, meta RecordMeta) error {
	if report == nil {
		return fmt.Errorf("report is required")
	}

	mode := meta.Mode
	if mode == "" {
		mode = "live"
	}

	now := time.Now()
	session := &Session{
		ID:           report.SessionID,
		BatchName:    meta.BatchName,
		SourcePath:   meta.SourcePath,
		Mode:         mode,
		Status:       sessionStatusFor(report),
		TotalActions: report.Summary.Total,
		Applied:      report.Summary.Applied,
		Rejected:     report.Summary.Rejected,
		Skipped:      report.Summary.Skipped,
		Failed:       report.Summary.Failed,
		StartedAt:    report.StartedAt,
		CompletedAt:  &report.CompletedAt,
		Metadata:     r.sessionMetadata(meta),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := r.store.CreateSession(ctx, session); err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	for _, outcome := range report.Outcomes {
		row := r.outcomeRow(report.SessionID, outcome, descriptors)
		if err := r.store.CreateOutcome(ctx, row); err != nil {
			return fmt.Errorf("failed to record outcome %d: %w", outcome.Index, err)
		}

		if outcome.Status == engine.OutcomeApplied && outcome.Detail != nil && outcome.Detail.EntityName != "" {
			if err := r.recordEntity(ctx, report.SessionID, outcome, descriptors, meta); err != nil {
				r.logger.Warn().Err(err).Int("index", outcome.Index).Msg("failed to record entity")
			}
		}
	}

	target := report.SessionID
	entry := &AuditEntry{
		Action:    "session.recorded",
		Actor:     actorOr(meta.Actor),
		TargetID:  &target,
		Timestamp: now,
	}
	if err := r.store.CreateAuditEntry(ctx, entry); err != nil {
		r.logger.Warn().Err(err).Msg("failed to record audit entry")
	}

	r.logger.Debug().
		Str("session_id", report.SessionID).
		Int("outcomes", len(report.Outcomes)).
		Msg("recorded execution report")

	return nil
}

// RecordSnapshot persists the serialized workbook state for a session.
func (r *Recorder) RecordSnapshot(ctx context.Context, sessionID, workbook string, state any) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to serialize workbook state: %w", err)
	}

	sum := sha256.Sum256(payload)
	now := time.Now()

	snapshot := &Snapshot{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Workbook:  workbook,
		State:     string(payload),
		Hash:      hex.EncodeToString(sum[:]),
		SavedAt:   now,
		CreatedAt: now,
	}

	if err := r.store.SaveSnapshot(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

func (r *Recorder) outcomeRow(sessionID string, outcome engine.ExecutionOutcome, descriptors []engine.ActionDescriptor) *Outcome {
	row := &Outcome{
		ID:          uuid.New().String(),
		SessionID:   sessionID,
		ActionIndex: outcome.Index,
		Kind:        outcome.Kind,
		Status:      OutcomeStatus(outcome.Status),
		DurationMS:  outcome.Duration.Milliseconds(),
		CreatedAt:   time.Now(),
	}

	if s, ok := r.registry.Lookup(outcome.Kind); ok {
		row.Family = string(s.Family)
	}
	if outcome.Index >= 0 && outcome.Index < len(descriptors) {
		row.Sheet = descriptors[outcome.Index].Sheet
	}
	if outcome.Err != nil {
		kind := string(outcome.Err.Kind)
		msg := outcome.Err.Message
		row.ErrorKind = &kind
		row.ErrorMessage = &msg
	}
	if outcome.Detail != nil && outcome.Detail.EntityName != "" {
		kind := string(outcome.Detail.EntityKind)
		name := outcome.Detail.EntityName
		row.EntityKind = &kind
		row.EntityName = &name
	}

	return row
}

func (r *Recorder) recordEntity(ctx context.Context, sessionID string, outcome engine.ExecutionOutcome, descriptors []engine.ActionDescriptor, meta RecordMeta) error {
	sheet := ""
	if outcome.Index >= 0 && outcome.Index < len(descriptors) {
		sheet = descriptors[outcome.Index].Sheet
	}

	now := time.Now()
	entity := &Entity{
		ID:        uuid.New().String(),
		Workbook:  meta.Workbook,
		Kind:      string(outcome.Detail.EntityKind),
		Name:      outcome.Detail.EntityName,
		Sheet:     sheet,
		SessionID: sessionID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return r.store.UpsertEntity(ctx, entity)
}

func (r *Recorder) sessionMetadata(meta RecordMeta) string {
	payload, err := json.Marshal(map[string]string{
		"workbook": meta.Workbook,
	})
	if err != nil {
		return "{}"
	}
	return string(payload)
}

// sessionStatusFor maps a report status onto the stored session status.
// A report with batch-aborted skips records as aborted.
func sessionStatusFor(report *engine.ExecutionReport) SessionStatus {
	for _, outcome := range report.Outcomes {
		if outcome.Err != nil && outcome.Err.Kind == engine.ErrBatchAborted {
			return SessionStatusAborted
		}
	}

	switch report.Status {
	case engine.ReportFailed:
		return SessionStatusFailed
	default:
		return SessionStatusCompleted
	}
}

func actorOr(actor string) string {
	if actor == "" {
		return "cli"
	}
	return actor
}
