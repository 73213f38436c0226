// pkg/archive/result.go
package archive

// Result contains statistics about the archiving operation
type Result struct {
	// Total number of entries found by the pre-scan
	EntriesTotal int

	// Number of entries written to the archive
	EntriesWritten int

	// Number of regular files written
	FilesWritten int

	// Number of directories written
	DirsWritten int

	// Total raw content size in bytes (before alignment padding)
	SourceBytes uint64

	// Total bytes emitted to the sink, headers and names included
	BytesWritten uint64

	// Zero-fill bytes emitted for block alignment
	PaddingBytes uint64

	// Hex-encoded BLAKE3 digest of the archive stream.
	// Empty in dry-run mode.
	Digest string

	// List of errors encountered (the traversal is fail-fast, so this
	// holds at most the error that aborted it)
	Errors []error
}

// Overhead returns the padding overhead as a percentage of the output
func (r *Result) Overhead() float64 {
	if r.BytesWritten == 0 {
		return 0
	}
	return float64(r.PaddingBytes) / float64(r.BytesWritten) * 100
}

// Success returns true if every discovered entry was written without errors
func (r *Result) Success() bool {
	return len(r.Errors) == 0 && r.EntriesWritten == r.EntriesTotal
}
