package errors

import (
	"fmt"
)

// Recover converts a panic raised by an underlying PDF library into an error.
// It must be deferred directly:
//
//	defer errors.Recover(&err, "read annotations")
//
// ledongthuc/pdf reports malformed objects and content streams by panicking,
// so every call into it goes through this guard.
func Recover(errp *error, op string) {
	r := recover()
	if r == nil {
		return
	}

	var cause error
	switch v := r.(type) {
	case error:
		cause = v
	default:
		cause = fmt.Errorf("%v", v)
	}

	*errp = fmt.Errorf("%s: recovered from library panic: %w", op, cause)
}

// Guard runs fn and returns its error, or the panic it raised as an error
func Guard(op string, fn func() error) (err error) {
	defer Recover(&err, op)
	return fn()
}
