package canon

import (
	"errors"
	"fmt"
)

// CanonicalizationError reports content that cannot be canonicalized:
// non-finite numbers, non-string object keys, or unsupported value shapes.
type CanonicalizationError struct {
	// Path locates the offending value in the input tree, e.g.
	// "root.metrics.spin_rate[2]".
	Path string

	// Reason is a human-readable description.
	Reason string
}

// Error implements the error interface.
func (e *CanonicalizationError) Error() string {
	return fmt.Sprintf("cannot canonicalize %s: %s", e.Path, e.Reason)
}

// IsCanonicalizationError reports whether err is (or wraps) a
// CanonicalizationError.
func IsCanonicalizationError(err error) bool {
	var ce *CanonicalizationError
	return errors.As(err, &ce)
}
