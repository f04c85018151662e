package stores

import (
	"context"
	"os"
	"testing"
	"time"
)

// setupTestStore creates an in-memory SQLite store for testing
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}

	return store
}

// TestStoreLifecycle tests database initialization and closure
func TestStoreLifecycle(t *testing.T) {
	store, err := NewSQLiteStore(Config{
		Path: ":memory:",
	})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}

	if err := store.HealthCheck(ctx); err != nil {
		t.Fatalf("health check failed: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

// TestStoreMigrations tests database migrations
func TestStoreMigrations(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()

	// Check that tables exist by querying them
	tables := []string{"sessions", "outcomes", "events", "snapshots", "entities", "audit"}
	for _, table := range tables {
		query := "SELECT COUNT(*) FROM " + table
		var count int
		err := store.db.QueryRowContext(ctx, query).Scan(&count)
		if err != nil {
			t.Errorf("table %s does not exist or is not accessible: %v", table, err)
		}
	}
}

// TestSessionCRUD tests Session CRUD operations
func TestSessionCRUD(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now()

	// Create
	session := &Session{
		ID:           "sess-001",
		BatchName:    "monthly-close",
		SourcePath:   "/batches/close.cue",
		Mode:         "live",
		Status:       SessionStatusPending,
		TotalActions: 12,
		StartedAt:    now,
		Metadata:     `{"workbook":"report.yaml"}`,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	// Read
	retrieved, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}

	if retrieved.ID != session.ID {
		t.Errorf("expected ID %s, got %s", session.ID, retrieved.ID)
	}
	if retrieved.BatchName != session.BatchName {
		t.Errorf("expected BatchName %s, got %s", session.BatchName, retrieved.BatchName)
	}
	if retrieved.TotalActions != session.TotalActions {
		t.Errorf("expected TotalActions %d, got %d", session.TotalActions, retrieved.TotalActions)
	}
	if retrieved.Status != session.Status {
		t.Errorf("expected Status %s, got %s", session.Status, retrieved.Status)
	}

	// Update status
	errMsg := "document rejected mutations"
	if err := store.UpdateSessionStatus(ctx, session.ID, SessionStatusFailed, &errMsg); err != nil {
		t.Fatalf("failed to update session status: %v", err)
	}

	updated, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to get updated session: %v", err)
	}

	if updated.Status != SessionStatusFailed {
		t.Errorf("expected Status %s, got %s", SessionStatusFailed, updated.Status)
	}
	if updated.Error == nil || *updated.Error != errMsg {
		t.Errorf("expected Error %s, got %v", errMsg, updated.Error)
	}
	if updated.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}

	// Update counts
	if err := store.UpdateSessionCounts(ctx, session.ID, 8, 2, 1, 1); err != nil {
		t.Fatalf("failed to update session counts: %v", err)
	}

	counted, err := store.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to get counted session: %v", err)
	}
	if counted.Applied != 8 || counted.Rejected != 2 || counted.Skipped != 1 || counted.Failed != 1 {
		t.Errorf("unexpected counts: applied=%d rejected=%d skipped=%d failed=%d",
			counted.Applied, counted.Rejected, counted.Skipped, counted.Failed)
	}

	// List
	sessions, err := store.ListSessions(ctx, 10, 0)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}

	if len(sessions) != 1 {
		t.Errorf("expected 1 session, got %d", len(sessions))
	}

	// Delete
	if err := store.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}

	_, err = store.GetSession(ctx, session.ID)
	if err == nil {
		t.Error("expected error when getting deleted session")
	}
}

// TestOutcomeCRUD tests Outcome CRUD operations
func TestOutcomeCRUD(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now()

	// Create a session first (required for foreign key)
	session := &Session{
		ID:           "sess-002",
		BatchName:    "report",
		Mode:         "live",
		Status:       SessionStatusRunning,
		TotalActions: 2,
		StartedAt:    now,
		Metadata:     `{}`,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	// Create
	entityKind := "table"
	entityName := "Orders"
	outcome := &Outcome{
		ID:          "out-001",
		SessionID:   session.ID,
		ActionIndex: 0,
		Kind:        "add_table",
		Family:      "tables",
		Sheet:       "Sales",
		Status:      OutcomeStatusApplied,
		EntityKind:  &entityKind,
		EntityName:  &entityName,
		DurationMS:  12,
		CreatedAt:   now,
	}

	if err := store.CreateOutcome(ctx, outcome); err != nil {
		t.Fatalf("failed to create outcome: %v", err)
	}

	errKind := "EntityNotFound"
	errMsg := "table Missing not found"
	rejected := &Outcome{
		ID:           "out-002",
		SessionID:    session.ID,
		ActionIndex:  1,
		Kind:         "set_table_style",
		Family:       "tables",
		Sheet:        "Sales",
		Status:       OutcomeStatusRejected,
		ErrorKind:    &errKind,
		ErrorMessage: &errMsg,
		CreatedAt:    now,
	}
	if err := store.CreateOutcome(ctx, rejected); err != nil {
		t.Fatalf("failed to create rejected outcome: %v", err)
	}

	// Read
	retrieved, err := store.GetOutcome(ctx, outcome.ID)
	if err != nil {
		t.Fatalf("failed to get outcome: %v", err)
	}

	if retrieved.Kind != outcome.Kind {
		t.Errorf("expected Kind %s, got %s", outcome.Kind, retrieved.Kind)
	}
	if retrieved.Status != OutcomeStatusApplied {
		t.Errorf("expected Status %s, got %s", OutcomeStatusApplied, retrieved.Status)
	}
	if retrieved.EntityName == nil || *retrieved.EntityName != entityName {
		t.Errorf("expected EntityName %s, got %v", entityName, retrieved.EntityName)
	}

	// List in batch order
	outcomes, err := store.ListOutcomesBySession(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to list outcomes: %v", err)
	}

	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[0].ActionIndex != 0 || outcomes[1].ActionIndex != 1 {
		t.Errorf("outcomes not in batch order: %d, %d", outcomes[0].ActionIndex, outcomes[1].ActionIndex)
	}
	if outcomes[1].ErrorKind == nil || *outcomes[1].ErrorKind != errKind {
		t.Errorf("expected ErrorKind %s, got %v", errKind, outcomes[1].ErrorKind)
	}

	// Delete
	if err := store.DeleteOutcome(ctx, outcome.ID); err != nil {
		t.Fatalf("failed to delete outcome: %v", err)
	}

	_, err = store.GetOutcome(ctx, outcome.ID)
	if err == nil {
		t.Error("expected error when getting deleted outcome")
	}
}

// TestEventOperations tests event append and retrieval
func TestEventOperations(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now()

	session := &Session{
		ID:        "sess-003",
		BatchName: "events",
		Mode:      "live",
		Status:    SessionStatusRunning,
		StartedAt: now,
		Metadata:  `{}`,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	// Append events at different levels
	idx := 0
	events := []*Event{
		{SessionID: &session.ID, Level: EventLevelInfo, Message: "session started", Timestamp: now},
		{SessionID: &session.ID, ActionIndex: &idx, Level: EventLevelWarning, Message: "sheet protected", Timestamp: now.Add(time.Second)},
		{SessionID: &session.ID, Level: EventLevelError, Message: "batch aborted", Timestamp: now.Add(2 * time.Second)},
	}

	for _, event := range events {
		if err := store.AppendEvent(ctx, event); err != nil {
			t.Fatalf("failed to append event: %v", err)
		}
		if event.ID == 0 {
			t.Error("expected event ID to be set after append")
		}
	}

	// Get all events for the session
	all, err := store.GetEvents(ctx, &session.ID, nil, 10, 0)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 events, got %d", len(all))
	}

	// Filter by level
	level := EventLevelError
	errorEvents, err := store.GetEvents(ctx, &session.ID, &level, 10, 0)
	if err != nil {
		t.Fatalf("failed to get error events: %v", err)
	}
	if len(errorEvents) != 1 {
		t.Errorf("expected 1 error event, got %d", len(errorEvents))
	}
	if len(errorEvents) == 1 && errorEvents[0].Message != "batch aborted" {
		t.Errorf("expected 'batch aborted', got %q", errorEvents[0].Message)
	}
}

// TestSnapshotOperations tests workbook snapshot persistence
func TestSnapshotOperations(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now()

	session := &Session{
		ID:        "sess-004",
		BatchName: "snapshot",
		Mode:      "live",
		Status:    SessionStatusCompleted,
		StartedAt: now,
		Metadata:  `{}`,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	snapshot := &Snapshot{
		ID:        "snap-001",
		SessionID: session.ID,
		Workbook:  "report.yaml",
		State:     `{"sheets":[{"name":"Sales"}]}`,
		Hash:      "abc123",
		SavedAt:   now,
		CreatedAt: now,
	}

	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("failed to save snapshot: %v", err)
	}

	// Get
	retrieved, err := store.GetSnapshot(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to get snapshot: %v", err)
	}
	if retrieved.Hash != snapshot.Hash {
		t.Errorf("expected Hash %s, got %s", snapshot.Hash, retrieved.Hash)
	}

	// Saving again for the same session replaces the state
	snapshot.State = `{"sheets":[{"name":"Sales"},{"name":"Summary"}]}`
	snapshot.Hash = "def456"
	snapshot.SavedAt = now.Add(time.Minute)
	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("failed to re-save snapshot: %v", err)
	}

	updated, err := store.GetSnapshot(ctx, session.ID)
	if err != nil {
		t.Fatalf("failed to get updated snapshot: %v", err)
	}
	if updated.Hash != "def456" {
		t.Errorf("expected updated Hash def456, got %s", updated.Hash)
	}

	// List by workbook
	snapshots, err := store.ListSnapshots(ctx, "report.yaml", 10, 0)
	if err != nil {
		t.Fatalf("failed to list snapshots: %v", err)
	}
	if len(snapshots) != 1 {
		t.Errorf("expected 1 snapshot, got %d", len(snapshots))
	}

	// Delete
	if err := store.DeleteSnapshot(ctx, snapshot.ID); err != nil {
		t.Fatalf("failed to delete snapshot: %v", err)
	}

	_, err = store.GetSnapshot(ctx, session.ID)
	if err == nil {
		t.Error("expected error when getting deleted snapshot")
	}
}

// TestEntityCatalog tests entity catalog operations
func TestEntityCatalog(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now()

	entity := &Entity{
		ID:        "ent-001",
		Workbook:  "report.yaml",
		Kind:      "table",
		Name:      "Orders",
		Sheet:     "Sales",
		SessionID: "sess-005",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := store.UpsertEntity(ctx, entity); err != nil {
		t.Fatalf("failed to upsert entity: %v", err)
	}

	// Get
	retrieved, err := store.GetEntity(ctx, "report.yaml", "table", "Orders")
	if err != nil {
		t.Fatalf("failed to get entity: %v", err)
	}
	if retrieved.Sheet != "Sales" {
		t.Errorf("expected Sheet Sales, got %s", retrieved.Sheet)
	}

	// Upsert with the same identity updates in place
	entity.Sheet = "Archive"
	entity.SessionID = "sess-006"
	entity.UpdatedAt = now.Add(time.Minute)
	if err := store.UpsertEntity(ctx, entity); err != nil {
		t.Fatalf("failed to re-upsert entity: %v", err)
	}

	updated, err := store.GetEntity(ctx, "report.yaml", "table", "Orders")
	if err != nil {
		t.Fatalf("failed to get updated entity: %v", err)
	}
	if updated.Sheet != "Archive" {
		t.Errorf("expected updated Sheet Archive, got %s", updated.Sheet)
	}
	if updated.SessionID != "sess-006" {
		t.Errorf("expected SessionID sess-006, got %s", updated.SessionID)
	}

	// Add a chart and filter by kind
	chart := &Entity{
		ID:        "ent-002",
		Workbook:  "report.yaml",
		Kind:      "chart",
		Name:      "RevenueTrend",
		Sheet:     "Sales",
		SessionID: "sess-006",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.UpsertEntity(ctx, chart); err != nil {
		t.Fatalf("failed to upsert chart entity: %v", err)
	}

	workbook := "report.yaml"
	kind := "chart"
	charts, err := store.ListEntities(ctx, &workbook, &kind, 10, 0)
	if err != nil {
		t.Fatalf("failed to list chart entities: %v", err)
	}
	if len(charts) != 1 {
		t.Errorf("expected 1 chart entity, got %d", len(charts))
	}

	all, err := store.ListEntities(ctx, &workbook, nil, 10, 0)
	if err != nil {
		t.Fatalf("failed to list all entities: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 entities, got %d", len(all))
	}

	// Delete
	if err := store.DeleteEntity(ctx, entity.ID); err != nil {
		t.Fatalf("failed to delete entity: %v", err)
	}

	_, err = store.GetEntity(ctx, "report.yaml", "table", "Orders")
	if err == nil {
		t.Error("expected error when getting deleted entity")
	}
}

// TestAuditOperations tests audit trail operations
func TestAuditOperations(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now()

	targetID := "sess-007"
	entries := []*AuditEntry{
		{Action: "session.created", Actor: "cli", TargetID: &targetID, Timestamp: now},
		{Action: "session.created", Actor: "admin", TargetID: &targetID, Timestamp: now.Add(time.Second)},
		{Action: "snapshot.saved", Actor: "cli", TargetID: &targetID, Timestamp: now.Add(2 * time.Second)},
	}

	for _, entry := range entries {
		if err := store.CreateAuditEntry(ctx, entry); err != nil {
			t.Fatalf("failed to create audit entry: %v", err)
		}
		if entry.ID == 0 {
			t.Error("expected audit entry ID to be set")
		}
	}

	// List all
	all, err := store.ListAuditEntries(ctx, nil, nil, 10, 0)
	if err != nil {
		t.Fatalf("failed to list audit entries: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 audit entries, got %d", len(all))
	}

	// Filter by action
	action := "session.created"
	filtered, err := store.ListAuditEntries(ctx, &action, nil, 10, 0)
	if err != nil {
		t.Fatalf("failed to list filtered audit entries: %v", err)
	}

	if len(filtered) != 2 {
		t.Errorf("expected 2 session.created entries, got %d", len(filtered))
	}

	// Filter by actor
	actor := "admin"
	actorFiltered, err := store.ListAuditEntries(ctx, nil, &actor, 10, 0)
	if err != nil {
		t.Fatalf("failed to list actor filtered audit entries: %v", err)
	}

	if len(actorFiltered) != 1 {
		t.Errorf("expected 1 admin entry, got %d", len(actorFiltered))
	}
}

// TestTransactions tests transaction support
func TestTransactions(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now()

	// Begin transaction
	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}

	query := `
		INSERT INTO sessions (id, batch_name, mode, status, started_at, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query, "sess-tx-001", "tx", "live", SessionStatusPending, now, `{}`, now, now)
	if err != nil {
		store.RollbackTx(tx)
		t.Fatalf("failed to insert session in transaction: %v", err)
	}

	// Rollback
	if err := store.RollbackTx(tx); err != nil {
		t.Fatalf("failed to rollback transaction: %v", err)
	}

	// Verify session was not created
	_, err = store.GetSession(ctx, "sess-tx-001")
	if err == nil {
		t.Error("expected error when getting rolled back session")
	}

	// Begin new transaction and commit
	tx, err = store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("failed to begin second transaction: %v", err)
	}

	_, err = tx.ExecContext(ctx, query, "sess-tx-001", "tx", "live", SessionStatusPending, now, `{}`, now, now)
	if err != nil {
		store.RollbackTx(tx)
		t.Fatalf("failed to insert session in second transaction: %v", err)
	}

	if err := store.CommitTx(tx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	// Verify session was created
	retrieved, err := store.GetSession(ctx, "sess-tx-001")
	if err != nil {
		t.Fatalf("failed to get committed session: %v", err)
	}

	if retrieved.ID != "sess-tx-001" {
		t.Errorf("expected ID sess-tx-001, got %s", retrieved.ID)
	}
}

// TestCascadeDelete tests foreign key cascading
func TestCascadeDelete(t *testing.T) {
	store := setupTestStore(t)
	defer store.Close()

	ctx := context.Background()
	now := time.Now()

	// Create session
	session := &Session{
		ID:        "sess-cascade-001",
		BatchName: "cascade",
		Mode:      "live",
		Status:    SessionStatusRunning,
		StartedAt: now,
		Metadata:  `{}`,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.CreateSession(ctx, session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	// Create outcome
	outcome := &Outcome{
		ID:          "out-cascade-001",
		SessionID:   session.ID,
		ActionIndex: 0,
		Kind:        "sort_range",
		Family:      "range",
		Sheet:       "Sheet1",
		Status:      OutcomeStatusApplied,
		CreatedAt:   now,
	}
	if err := store.CreateOutcome(ctx, outcome); err != nil {
		t.Fatalf("failed to create outcome: %v", err)
	}

	// Create event
	event := &Event{
		SessionID: &session.ID,
		Level:     EventLevelInfo,
		Message:   "test event",
		Timestamp: now,
	}
	if err := store.AppendEvent(ctx, event); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	// Delete session (should cascade to outcomes and events)
	if err := store.DeleteSession(ctx, session.ID); err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}

	// Verify outcome was deleted
	_, err := store.GetOutcome(ctx, outcome.ID)
	if err == nil {
		t.Error("expected error when getting cascaded deleted outcome")
	}

	// Verify events were deleted
	events, err := store.GetEvents(ctx, &session.ID, nil, 10, 0)
	if err != nil {
		t.Fatalf("failed to get events: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected 0 events after cascade delete, got %d", len(events))
	}
}

// TestMain sets up and tears down test environment
func TestMain(m *testing.M) {
	// Run tests
	code := m.Run()

	// Exit
	os.Exit(code)
}
