package document

import (
	"errors"
	"fmt"
)

// Rejection is the error a document implementation returns when the
// live document refuses an operation for structural reasons: overlapping
// table ranges, duplicate names, locked sheets, oversized payloads,
// wrong protection password. Mutators translate Rejections into failed
// outcomes; they never escape the engine.
type Rejection struct {
	// Message is the provider's reason, surfaced verbatim in the
	// execution report.
	Message string
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	return r.Message
}

// Rejectf builds a Rejection with a formatted message.
func Rejectf(format string, args ...any) error {
	return &Rejection{Message: fmt.Sprintf(format, args...)}
}

// IsRejection reports whether err is (or wraps) a document Rejection.
func IsRejection(err error) bool {
	var r *Rejection
	return errors.As(err, &r)
}
