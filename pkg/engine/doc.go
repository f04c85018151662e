// Package engine executes batches of assistant-produced action
// descriptors against a live spreadsheet document.
//
// A batch moves through one Session: every descriptor is checked by the
// capability gate and the validator, the surviving actions are ordered
// so creations precede references, and each ordered action is dispatched
// to its family's mutator strictly sequentially. Every submitted
// descriptor yields exactly one ExecutionOutcome; the session's
// ExecutionReport covers the whole batch, including actions that never
// reached the document.
//
// Descriptors are untrusted input: validation and ordering failures
// short-circuit to rejected outcomes, document refusals become failed
// outcomes at the mutator boundary, and no error raised by the document
// API escapes the session.
package engine
