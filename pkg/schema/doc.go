// Package schema defines the static registry of spreadsheet action kinds.
//
// Every action kind the engine accepts is described by an ActionSchema:
// its parameter shapes, the minimum document API level it needs, the role
// it plays against its target entity (creates, mutates, deletes, reads),
// and the operation family whose mutator executes it. The registry is
// built once at process start and never mutated afterwards; lookups are
// safe for concurrent use.
//
// Descriptors arriving with a kind the registry does not know are a data
// problem, not a programming error: callers get a not-found result and
// are expected to reject the action rather than fail the batch.
package schema
