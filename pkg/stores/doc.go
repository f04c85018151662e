// Package stores provides the sheetflow persistence layer.
// It includes SQLite-based storage with WAL mode, connection pooling,
// and CRUD operations for execution sessions, action outcomes, events,
// workbook snapshots, the entity catalog, and audit logs.
package stores
