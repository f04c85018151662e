// Package document defines the capability surface the engine mutates
// through: a Handle offering per-family operations on a live spreadsheet
// document, plus the point-in-time Snapshot the engine validates against.
//
// The engine owns no spreadsheet internals. Ranges, formulas and cell
// storage belong to the hosting document; this package only names the
// operations the engine needs and the read access required for
// existence, protection and feature-level checks. The memdoc subpackage
// provides an in-memory implementation for the CLI and tests.
package document
