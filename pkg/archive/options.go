// pkg/archive/options.go
package archive

import "io"

// Options configures archive creation
type Options struct {
	// Input directory to archive (required)
	InputPath string

	// Output archive path
	// Ignored if Sink is provided
	OutputPath string

	// Sink allows library users to supply their own output stream.
	// When set, OutputPath is ignored and the caller owns the stream's
	// lifetime. This option is for library use only (not exposed in CLI).
	Sink io.Writer

	// UseGitignore respects .gitignore files to exclude matching paths.
	// Off by default: the archive stream then depends only on the tree
	// contents and the directory listing order.
	UseGitignore bool

	// DryRun traverses and reads without writing an archive
	DryRun bool

	// Verbose enables detailed logging
	Verbose bool

	// Quiet suppresses all output except errors
	Quiet bool
}

// DefaultOptions returns options with sensible defaults
func DefaultOptions() *Options {
	return &Options{
		DryRun:  false,
		Verbose: false,
		Quiet:   false,
	}
}

// Validate checks if options are valid
func (o *Options) Validate() error {
	if o.InputPath == "" {
		return ErrInputRequired
	}
	if o.OutputPath == "" {
		o.OutputPath = "archive.omar"
	}
	if o.Quiet {
		o.Verbose = false
	}
	return nil
}
