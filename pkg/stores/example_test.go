package stores_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/sheetflow/sheetflow/pkg/stores"
)

// ExampleNewSQLiteStore demonstrates creating and initializing a new SQLite store.
func ExampleNewSQLiteStore() {
	// Create store configuration
	store, err := stores.NewSQLiteStore(stores.Config{
		Path:            ":memory:", // Use in-memory database for example
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		log.Fatal(err)
	}

	// Initialize the database connection
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		log.Fatal(err)
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		log.Fatal(err)
	}

	defer store.Close()

	// Store is now ready to use
	fmt.Println("Store initialized successfully")
	// Output: Store initialized successfully
}

// ExampleSQLiteStore_CreateSession demonstrates creating a new session record.
func ExampleSQLiteStore_CreateSession() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	// Create a new session
	session := &stores.Session{
		ID:           "sess-001",
		BatchName:    "monthly-close",
		SourcePath:   "/batches/close.cue",
		Mode:         "live",
		Status:       stores.SessionStatusPending,
		TotalActions: 12,
		StartedAt:    time.Now(),
		Metadata:     `{"workbook":"report.yaml"}`,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := store.CreateSession(ctx, session); err != nil {
		log.Fatal(err)
	}

	// Retrieve the session
	retrieved, err := store.GetSession(ctx, "sess-001")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Session ID: %s, Status: %s\n", retrieved.ID, retrieved.Status)
	// Output: Session ID: sess-001, Status: pending
}

// ExampleSQLiteStore_UpsertEntity demonstrates maintaining the entity catalog.
func ExampleSQLiteStore_UpsertEntity() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	// Record a table created by a session
	entity := &stores.Entity{
		ID:        "ent-001",
		Workbook:  "report.yaml",
		Kind:      "table",
		Name:      "Orders",
		Sheet:     "Sales",
		SessionID: "sess-002",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if err := store.UpsertEntity(ctx, entity); err != nil {
		log.Fatal(err)
	}

	// Get the entity
	retrieved, err := store.GetEntity(ctx, "report.yaml", "table", "Orders")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Entity: %s/%s on sheet %s\n",
		retrieved.Kind, retrieved.Name, retrieved.Sheet)
	// Output: Entity: table/Orders on sheet Sales
}

// ExampleSQLiteStore_AppendEvent demonstrates logging events.
func ExampleSQLiteStore_AppendEvent() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	// Create a session
	session := &stores.Session{
		ID:        "sess-003",
		BatchName: "report",
		Mode:      "live",
		Status:    stores.SessionStatusRunning,
		StartedAt: time.Now(),
		Metadata:  `{}`,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_ = store.CreateSession(ctx, session)

	// Log an event
	details := `{"sheet":"Sales"}`
	event := &stores.Event{
		SessionID: &session.ID,
		Level:     stores.EventLevelInfo,
		Message:   "Starting dispatch",
		Details:   &details,
		Timestamp: time.Now(),
	}

	if err := store.AppendEvent(ctx, event); err != nil {
		log.Fatal(err)
	}

	// Retrieve events
	events, err := store.GetEvents(ctx, &session.ID, nil, 10, 0)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Event count: %d, Message: %s\n", len(events), events[0].Message)
	// Output: Event count: 1, Message: Starting dispatch
}

// ExampleSQLiteStore_SaveSnapshot demonstrates persisting workbook snapshots.
func ExampleSQLiteStore_SaveSnapshot() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	// Create a session (required for foreign key)
	session := &stores.Session{
		ID:        "sess-004",
		BatchName: "report",
		Mode:      "live",
		Status:    stores.SessionStatusCompleted,
		StartedAt: time.Now(),
		Metadata:  `{}`,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	_ = store.CreateSession(ctx, session)

	// Save the workbook state after the session
	snapshot := &stores.Snapshot{
		ID:        "snap-001",
		SessionID: session.ID,
		Workbook:  "report.yaml",
		State:     `{"sheets":[{"name":"Sales"}]}`,
		Hash:      "abc123def456",
		SavedAt:   time.Now(),
		CreatedAt: time.Now(),
	}

	if err := store.SaveSnapshot(ctx, snapshot); err != nil {
		log.Fatal(err)
	}

	// Get the snapshot
	retrieved, err := store.GetSnapshot(ctx, session.ID)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Snapshot: %s, Hash: %s\n", retrieved.Workbook, retrieved.Hash)
	// Output: Snapshot: report.yaml, Hash: abc123def456
}

// ExampleSQLiteStore_BeginTx demonstrates using transactions.
func ExampleSQLiteStore_BeginTx() {
	store, _ := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	ctx := context.Background()
	_ = store.Init(ctx)
	_ = store.Migrate(ctx)
	defer store.Close()

	// Begin transaction
	tx, err := store.BeginTx(ctx)
	if err != nil {
		log.Fatal(err)
	}

	// Perform operations within transaction
	query := `
		INSERT INTO sessions (id, batch_name, mode, status, started_at, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	now := time.Now()
	_, err = tx.ExecContext(ctx, query, "sess-tx-001", "tx-demo",
		"live", "pending", now, "{}", now, now)

	if err != nil {
		_ = store.RollbackTx(tx)
		log.Fatal(err)
	}

	// Commit transaction
	if err := store.CommitTx(tx); err != nil {
		log.Fatal(err)
	}

	// Verify session was created
	session, err := store.GetSession(ctx, "sess-tx-001")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Transaction committed: Session %s created\n", session.ID)
	// Output: Transaction committed: Session sess-tx-001 created
}
