// pkg/inspect/errors.go
package inspect

import "errors"

var (
	// ErrInputRequired is returned when the archive path is not specified
	ErrInputRequired = errors.New("input path is required")

	// ErrDirtyPadding is returned when alignment padding holds non-zero bytes
	ErrDirtyPadding = errors.New("padding contains non-zero bytes")

	// ErrBadOffset is returned when a header's next-offset field disagrees
	// with the value recomputed from its length
	ErrBadOffset = errors.New("inconsistent next offset")
)
