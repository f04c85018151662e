package stores

import (
	"context"
	"database/sql"
	"time"
)

// SessionStatus represents the status of an execution session
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusAborted   SessionStatus = "aborted"
	SessionStatusFailed    SessionStatus = "failed"
)

// OutcomeStatus represents the terminal status of a single action
type OutcomeStatus string

const (
	OutcomeStatusApplied  OutcomeStatus = "applied"
	OutcomeStatusRejected OutcomeStatus = "rejected"
	OutcomeStatusSkipped  OutcomeStatus = "skipped"
	OutcomeStatusFailed   OutcomeStatus = "failed"
)

// EventLevel represents the severity level of an event
type EventLevel string

const (
	EventLevelDebug   EventLevel = "debug"
	EventLevelInfo    EventLevel = "info"
	EventLevelWarning EventLevel = "warning"
	EventLevelError   EventLevel = "error"
)

// Session represents one execution of a batch against a workbook
type Session struct {
	ID           string        `json:"id"`
	BatchName    string        `json:"batch_name"`
	SourcePath   string        `json:"source_path"`
	Mode         string        `json:"mode"` // live, dry_run
	Status       SessionStatus `json:"status"`
	TotalActions int           `json:"total_actions"`
	Applied      int           `json:"applied"`
	Rejected     int           `json:"rejected"`
	Skipped      int           `json:"skipped"`
	Failed       int           `json:"failed"`
	StartedAt    time.Time     `json:"started_at"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
	Error        *string       `json:"error,omitempty"`
	Metadata     string        `json:"metadata"` // JSON blob
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Outcome represents the recorded result of a single action in a session
type Outcome struct {
	ID           string        `json:"id"`
	SessionID    string        `json:"session_id"`
	ActionIndex  int           `json:"action_index"`
	Kind         string        `json:"kind"`
	Family       string        `json:"family"`
	Sheet        string        `json:"sheet"`
	Status       OutcomeStatus `json:"status"`
	ErrorKind    *string       `json:"error_kind,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
	EntityKind   *string       `json:"entity_kind,omitempty"` // entity created by the action, if any
	EntityName   *string       `json:"entity_name,omitempty"`
	DurationMS   int64         `json:"duration_ms"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Event represents an append-only log event
type Event struct {
	ID          int64      `json:"id"`
	SessionID   *string    `json:"session_id,omitempty"`
	ActionIndex *int       `json:"action_index,omitempty"`
	Level       EventLevel `json:"level"`
	Message     string     `json:"message"`
	Details     *string    `json:"details,omitempty"` // JSON blob
	Timestamp   time.Time  `json:"timestamp"`
}

// Snapshot represents a serialized workbook state captured after a session
type Snapshot struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Workbook  string    `json:"workbook"`
	State     string    `json:"state"` // JSON blob
	Hash      string    `json:"hash"`  // SHA256 of state for change detection
	SavedAt   time.Time `json:"saved_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Entity represents a named workbook entity recorded in the catalog
type Entity struct {
	ID        string    `json:"id"`
	Workbook  string    `json:"workbook"`
	Kind      string    `json:"kind"` // table, chart, pivot_table, named_range, slicer, sheet
	Name      string    `json:"name"`
	Sheet     string    `json:"sheet"`
	SessionID string    `json:"session_id"` // session that created or last touched the entity
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AuditEntry represents an audit trail entry
type AuditEntry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`              // e.g., "session.created", "snapshot.saved", "batch.applied"
	Actor     string    `json:"actor"`               // user or system identifier
	TargetID  *string   `json:"target_id,omitempty"` // session/snapshot/etc ID
	Details   *string   `json:"details,omitempty"`   // JSON blob
	Timestamp time.Time `json:"timestamp"`
}

// Store defines the interface for the persistence layer
type Store interface {
	// Lifecycle
	Init(ctx context.Context) error
	Close() error
	Migrate(ctx context.Context) error

	// Transaction support
	BeginTx(ctx context.Context) (*sql.Tx, error)
	CommitTx(tx *sql.Tx) error
	RollbackTx(tx *sql.Tx) error

	// Session operations
	CreateSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, id string) (*Session, error)
	UpdateSessionStatus(ctx context.Context, id string, status SessionStatus, err *string) error
	UpdateSessionCounts(ctx context.Context, id string, applied, rejected, skipped, failed int) error
	ListSessions(ctx context.Context, limit, offset int) ([]*Session, error)
	DeleteSession(ctx context.Context, id string) error

	// Outcome operations
	CreateOutcome(ctx context.Context, outcome *Outcome) error
	GetOutcome(ctx context.Context, id string) (*Outcome, error)
	ListOutcomesBySession(ctx context.Context, sessionID string) ([]*Outcome, error)
	DeleteOutcome(ctx context.Context, id string) error

	// Event operations
	AppendEvent(ctx context.Context, event *Event) error
	GetEvents(ctx context.Context, sessionID *string, level *EventLevel, limit, offset int) ([]*Event, error)

	// Snapshot operations
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error
	GetSnapshot(ctx context.Context, sessionID string) (*Snapshot, error)
	ListSnapshots(ctx context.Context, workbook string, limit, offset int) ([]*Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error

	// Entity catalog operations
	UpsertEntity(ctx context.Context, entity *Entity) error
	GetEntity(ctx context.Context, workbook, kind, name string) (*Entity, error)
	ListEntities(ctx context.Context, workbook *string, kind *string, limit, offset int) ([]*Entity, error)
	DeleteEntity(ctx context.Context, id string) error

	// Audit operations
	CreateAuditEntry(ctx context.Context, entry *AuditEntry) error
	ListAuditEntries(ctx context.Context, action *string, actor *string, limit, offset int) ([]*AuditEntry, error)

	// Utility
	HealthCheck(ctx context.Context) error
}
