// Package mutators holds the per-family mutator implementations: the
// only code that calls the live document's mutation surface. One
// mutator serves one operation family and switches on the action kind.
//
// Every mutator re-checks the admission gate against a fresh snapshot
// before its first document call, so a document changed since session
// start denies cleanly instead of corrupting. Document refusals and
// call errors fold into failed outcomes; nothing escapes as a Go error.
package mutators
