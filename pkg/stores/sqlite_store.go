package stores

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// Config holds SQLite store configuration
type Config struct {
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(cfg Config) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	// Set defaults
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime == 0 {
		cfg.ConnMaxLifetime = 5 * time.Minute
	}

	return &SQLiteStore{
		path: cfg.Path,
	}, nil
}

// Init initializes the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	// Open database with SQLite-specific connection parameters
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_txlock=immediate", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection and set PRAGMAs
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// Ensure foreign keys are enabled (connection-level setting)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	// Create migration source from embedded FS
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	// Create database driver
	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	// Create migration instance
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	// Run migrations
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
}

// CommitTx commits a transaction
func (s *SQLiteStore) CommitTx(tx *sql.Tx) error {
	return tx.Commit()
}

// RollbackTx rolls back a transaction
func (s *SQLiteStore) RollbackTx(tx *sql.Tx) error {
	return tx.Rollback()
}

// CreateSession creates a new session record
func (s *SQLiteStore) CreateSession(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO sessions (
			id, batch_name, source_path, mode, status, total_actions,
			applied, rejected, skipped, failed,
			started_at, completed_at, error, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.BatchName,
		session.SourcePath,
		session.Mode,
		session.Status,
		session.TotalActions,
		session.Applied,
		session.Rejected,
		session.Skipped,
		session.Failed,
		session.StartedAt,
		session.CompletedAt,
		session.Error,
		session.Metadata,
		session.CreatedAt,
		session.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*Session, error) {
	query := `
		SELECT id, batch_name, source_path, mode, status, total_actions,
			   applied, rejected, skipped, failed,
			   started_at, completed_at, error, metadata, created_at, updated_at
		FROM sessions
		WHERE id = ?
	`

	session := &Session{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.BatchName,
		&session.SourcePath,
		&session.Mode,
		&session.Status,
		&session.TotalActions,
		&session.Applied,
		&session.Rejected,
		&session.Skipped,
		&session.Failed,
		&session.StartedAt,
		&session.CompletedAt,
		&session.Error,
		&session.Metadata,
		&session.CreatedAt,
		&session.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session, nil
}

// UpdateSessionStatus updates the status of a session
func (s *SQLiteStore) UpdateSessionStatus(ctx context.Context, id string, status SessionStatus, errMsg *string) error {
	query := `
		UPDATE sessions
		SET status = ?, error = ?, completed_at = ?
		WHERE id = ?
	`

	var completedAt *time.Time
	if status == SessionStatusCompleted || status == SessionStatusAborted || status == SessionStatusFailed {
		now := time.Now()
		completedAt = &now
	}

	result, err := s.db.ExecContext(ctx, query, status, errMsg, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// UpdateSessionCounts updates the per-outcome counters of a session
func (s *SQLiteStore) UpdateSessionCounts(ctx context.Context, id string, applied, rejected, skipped, failed int) error {
	query := `
		UPDATE sessions
		SET applied = ?, rejected = ?, skipped = ?, failed = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query, applied, rejected, skipped, failed, id)
	if err != nil {
		return fmt.Errorf("failed to update session counts: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// ListSessions lists sessions with pagination
func (s *SQLiteStore) ListSessions(ctx context.Context, limit, offset int) ([]*Session, error) {
	query := `
		SELECT id, batch_name, source_path, mode, status, total_actions,
			   applied, rejected, skipped, failed,
			   started_at, completed_at, error, metadata, created_at, updated_at
		FROM sessions
		ORDER BY started_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*Session{}
	for rows.Next() {
		session := &Session{}
		err := rows.Scan(
			&session.ID,
			&session.BatchName,
			&session.SourcePath,
			&session.Mode,
			&session.Status,
			&session.TotalActions,
			&session.Applied,
			&session.Rejected,
			&session.Skipped,
			&session.Failed,
			&session.StartedAt,
			&session.CompletedAt,
			&session.Error,
			&session.Metadata,
			&session.CreatedAt,
			&session.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// DeleteSession deletes a session by ID
func (s *SQLiteStore) DeleteSession(ctx context.Context, id string) error {
	query := `DELETE FROM sessions WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// CreateOutcome creates a new outcome record
func (s *SQLiteStore) CreateOutcome(ctx context.Context, outcome *Outcome) error {
	query := `
		INSERT INTO outcomes (
			id, session_id, action_index, kind, family, sheet, status,
			error_kind, error_message, entity_kind, entity_name,
			duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		outcome.ID,
		outcome.SessionID,
		outcome.ActionIndex,
		outcome.Kind,
		outcome.Family,
		outcome.Sheet,
		outcome.Status,
		outcome.ErrorKind,
		outcome.ErrorMessage,
		outcome.EntityKind,
		outcome.EntityName,
		outcome.DurationMS,
		outcome.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create outcome: %w", err)
	}

	return nil
}

// GetOutcome retrieves an outcome by ID
func (s *SQLiteStore) GetOutcome(ctx context.Context, id string) (*Outcome, error) {
	query := `
		SELECT id, session_id, action_index, kind, family, sheet, status,
			   error_kind, error_message, entity_kind, entity_name,
			   duration_ms, created_at
		FROM outcomes
		WHERE id = ?
	`

	outcome := &Outcome{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&outcome.ID,
		&outcome.SessionID,
		&outcome.ActionIndex,
		&outcome.Kind,
		&outcome.Family,
		&outcome.Sheet,
		&outcome.Status,
		&outcome.ErrorKind,
		&outcome.ErrorMessage,
		&outcome.EntityKind,
		&outcome.EntityName,
		&outcome.DurationMS,
		&outcome.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("outcome not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome: %w", err)
	}

	return outcome, nil
}

// ListOutcomesBySession lists all outcomes for a session in batch order
func (s *SQLiteStore) ListOutcomesBySession(ctx context.Context, sessionID string) ([]*Outcome, error) {
	query := `
		SELECT id, session_id, action_index, kind, family, sheet, status,
			   error_kind, error_message, entity_kind, entity_name,
			   duration_ms, created_at
		FROM outcomes
		WHERE session_id = ?
		ORDER BY action_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	outcomes := []*Outcome{}
	for rows.Next() {
		outcome := &Outcome{}
		err := rows.Scan(
			&outcome.ID,
			&outcome.SessionID,
			&outcome.ActionIndex,
			&outcome.Kind,
			&outcome.Family,
			&outcome.Sheet,
			&outcome.Status,
			&outcome.ErrorKind,
			&outcome.ErrorMessage,
			&outcome.EntityKind,
			&outcome.EntityName,
			&outcome.DurationMS,
			&outcome.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outcomes: %w", err)
	}

	return outcomes, nil
}

// DeleteOutcome deletes an outcome by ID
func (s *SQLiteStore) DeleteOutcome(ctx context.Context, id string) error {
	query := `DELETE FROM outcomes WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete outcome: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("outcome not found: %s", id)
	}

	return nil
}

// AppendEvent appends a new event to the log
func (s *SQLiteStore) AppendEvent(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO events (session_id, action_index, level, message, details, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		event.SessionID,
		event.ActionIndex,
		event.Level,
		event.Message,
		event.Details,
		event.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}

	// Get the auto-generated ID
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get event ID: %w", err)
	}

	event.ID = id
	return nil
}

// GetEvents retrieves events with optional filters and pagination
func (s *SQLiteStore) GetEvents(ctx context.Context, sessionID *string, level *EventLevel, limit, offset int) ([]*Event, error) {
	query := `
		SELECT id, session_id, action_index, level, message, details, timestamp
		FROM events
		WHERE (? IS NULL OR session_id = ?)
		  AND (? IS NULL OR level = ?)
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, sessionID, sessionID, level, level, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %w", err)
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		event := &Event{}
		err := rows.Scan(
			&event.ID,
			&event.SessionID,
			&event.ActionIndex,
			&event.Level,
			&event.Message,
			&event.Details,
			&event.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// SaveSnapshot saves a workbook state snapshot, replacing any earlier one for the session
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snapshot *Snapshot) error {
	query := `
		INSERT INTO snapshots (
			id, session_id, workbook, state, hash, saved_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			state = excluded.state,
			hash = excluded.hash,
			saved_at = excluded.saved_at
	`

	_, err := s.db.ExecContext(ctx, query,
		snapshot.ID,
		snapshot.SessionID,
		snapshot.Workbook,
		snapshot.State,
		snapshot.Hash,
		snapshot.SavedAt,
		snapshot.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// GetSnapshot retrieves the snapshot for a session
func (s *SQLiteStore) GetSnapshot(ctx context.Context, sessionID string) (*Snapshot, error) {
	query := `
		SELECT id, session_id, workbook, state, hash, saved_at, created_at
		FROM snapshots
		WHERE session_id = ?
	`

	snapshot := &Snapshot{}
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(
		&snapshot.ID,
		&snapshot.SessionID,
		&snapshot.Workbook,
		&snapshot.State,
		&snapshot.Hash,
		&snapshot.SavedAt,
		&snapshot.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot not found for session: %s", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	return snapshot, nil
}

// ListSnapshots lists snapshots for a workbook with pagination
func (s *SQLiteStore) ListSnapshots(ctx context.Context, workbook string, limit, offset int) ([]*Snapshot, error) {
	query := `
		SELECT id, session_id, workbook, state, hash, saved_at, created_at
		FROM snapshots
		WHERE workbook = ?
		ORDER BY saved_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, workbook, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []*Snapshot{}
	for rows.Next() {
		snapshot := &Snapshot{}
		err := rows.Scan(
			&snapshot.ID,
			&snapshot.SessionID,
			&snapshot.Workbook,
			&snapshot.State,
			&snapshot.Hash,
			&snapshot.SavedAt,
			&snapshot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return snapshots, nil
}

// DeleteSnapshot deletes a snapshot by ID
func (s *SQLiteStore) DeleteSnapshot(ctx context.Context, id string) error {
	query := `DELETE FROM snapshots WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("snapshot not found: %s", id)
	}

	return nil
}

// UpsertEntity inserts or updates a catalog entity
func (s *SQLiteStore) UpsertEntity(ctx context.Context, entity *Entity) error {
	query := `
		INSERT INTO entities (
			id, workbook, kind, name, sheet, session_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(workbook, kind, name) DO UPDATE SET
			sheet = excluded.sheet,
			session_id = excluded.session_id,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Workbook,
		entity.Kind,
		entity.Name,
		entity.Sheet,
		entity.SessionID,
		entity.CreatedAt,
		entity.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert entity: %w", err)
	}

	return nil
}

// GetEntity retrieves a catalog entity by workbook, kind, and name
func (s *SQLiteStore) GetEntity(ctx context.Context, workbook, kind, name string) (*Entity, error) {
	query := `
		SELECT id, workbook, kind, name, sheet, session_id, created_at, updated_at
		FROM entities
		WHERE workbook = ? AND kind = ? AND name = ?
	`

	entity := &Entity{}
	err := s.db.QueryRowContext(ctx, query, workbook, kind, name).Scan(
		&entity.ID,
		&entity.Workbook,
		&entity.Kind,
		&entity.Name,
		&entity.Sheet,
		&entity.SessionID,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("entity not found: %s/%s/%s", workbook, kind, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}

	return entity, nil
}

// ListEntities lists catalog entities with optional filters and pagination
func (s *SQLiteStore) ListEntities(ctx context.Context, workbook *string, kind *string, limit, offset int) ([]*Entity, error) {
	query := `
		SELECT id, workbook, kind, name, sheet, session_id, created_at, updated_at
		FROM entities
		WHERE (? IS NULL OR workbook = ?)
		  AND (? IS NULL OR kind = ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, workbook, workbook, kind, kind, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	entities := []*Entity{}
	for rows.Next() {
		entity := &Entity{}
		err := rows.Scan(
			&entity.ID,
			&entity.Workbook,
			&entity.Kind,
			&entity.Name,
			&entity.Sheet,
			&entity.SessionID,
			&entity.CreatedAt,
			&entity.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}

	return entities, nil
}

// DeleteEntity deletes a catalog entity by ID
func (s *SQLiteStore) DeleteEntity(ctx context.Context, id string) error {
	query := `DELETE FROM entities WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("entity not found: %s", id)
	}

	return nil
}

// CreateAuditEntry creates a new audit log entry
func (s *SQLiteStore) CreateAuditEntry(ctx context.Context, entry *AuditEntry) error {
	query := `
		INSERT INTO audit (action, actor, target_id, details, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		entry.Action,
		entry.Actor,
		entry.TargetID,
		entry.Details,
		entry.Timestamp,
	)

	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}

	// Get the auto-generated ID
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get audit entry ID: %w", err)
	}

	entry.ID = id
	return nil
}

// ListAuditEntries lists audit entries with optional filters and pagination
func (s *SQLiteStore) ListAuditEntries(ctx context.Context, action *string, actor *string, limit, offset int) ([]*AuditEntry, error) {
	query := `
		SELECT id, action, actor, target_id, details, timestamp
		FROM audit
		WHERE (? IS NULL OR action = ?)
		  AND (? IS NULL OR actor = ?)
		ORDER BY timestamp DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, action, action, actor, actor, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []*AuditEntry{}
	for rows.Next() {
		entry := &AuditEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&entry.Actor,
			&entry.TargetID,
			&entry.Details,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit entries: %w", err)
	}

	return entries, nil
}

// HealthCheck verifies the database connection is healthy
func (s *SQLiteStore) HealthCheck(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	return s.db.PingContext(ctx)
}
