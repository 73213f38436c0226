// pkg/archive/errors.go
package archive

import "errors"

var (
	// ErrInputRequired is returned when the source directory is not specified
	ErrInputRequired = errors.New("input path is required")

	// ErrNotADirectory is returned when the source root is not a directory
	ErrNotADirectory = errors.New("input path is not a directory")

	// ErrNameTooLong is returned when an entry name exceeds the 255-byte
	// limit imposed by the single-byte name length field
	ErrNameTooLong = errors.New("entry name exceeds 255 bytes")

	// ErrFileTooLarge is returned when a file's block-aligned size does not
	// fit the 32-bit length and offset fields
	ErrFileTooLarge = errors.New("file too large for 32-bit length field")
)
