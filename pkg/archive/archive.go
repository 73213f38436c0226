// pkg/archive/archive.go
package archive

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"
)

// Create flattens the directory tree at opts.InputPath into a single OMAR
// archive. Entries are recorded in raw directory-listing order, pre-order
// depth-first; names starting with "." are skipped, as is anything that is
// neither a directory nor a regular file.
//
// The traversal is fail-fast: the first entry error aborts it and is
// returned. The sink may then hold a truncated stream that is not a valid
// archive; callers must discard it.
func Create(opts *Options, progressCb ProgressCallback) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{}

	info, err := os.Stat(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, opts.InputPath)
	}

	var matcher *gitignoreMatcher
	if opts.UseGitignore {
		matcher, err = newGitignoreMatcher(opts.InputPath)
		if err != nil {
			return nil, fmt.Errorf("scan gitignore files: %w", err)
		}
	}

	// Pre-scan for progress totals. Does not touch the output stream.
	totalEntries, totalBytes, err := countEntries(opts.InputPath, "", matcher)
	if err != nil {
		return nil, err
	}
	result.EntriesTotal = totalEntries

	if progressCb != nil {
		progressCb(ProgressEvent{
			Type:       EventStart,
			Total:      int64(totalEntries),
			TotalBytes: totalBytes,
		})
	}

	var sink io.Writer
	switch {
	case opts.DryRun:
		sink = io.Discard
	case opts.Sink != nil:
		sink = opts.Sink
	default:
		outFile, err := os.Create(opts.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("create output file: %w", err)
		}
		defer outFile.Close()
		sink = outFile
	}

	var hasher *blake3.Hasher
	if !opts.DryRun {
		hasher = blake3.New()
		sink = io.MultiWriter(sink, hasher)
	}

	w := NewWriter(sink)
	if err := traverse(w, opts.InputPath, "", matcher, result, progressCb); err != nil {
		result.Errors = append(result.Errors, err)
		result.BytesWritten = w.Offset()
		return result, err
	}

	result.BytesWritten = w.Offset()
	if hasher != nil {
		result.Digest = hex.EncodeToString(hasher.Sum(nil))
	}

	if progressCb != nil {
		progressCb(ProgressEvent{
			Type:       EventComplete,
			Current:    int64(result.EntriesWritten),
			Total:      int64(result.EntriesTotal),
			TotalBytes: result.BytesWritten,
		})
	}

	return result, nil
}

// traverse enumerates dir in the order the filesystem returns entries and
// pushes each one, descending into subdirectories before moving to the
// next sibling. The first failure halts further siblings.
func traverse(w *Writer, dir, rel string, matcher *gitignoreMatcher, result *Result, progressCb ProgressCallback) error {
	ents, err := listDir(dir)
	if err != nil {
		return err
	}

	for _, ent := range ents {
		name := ent.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		path := filepath.Join(dir, name)
		relPath := name
		if rel != "" {
			relPath = rel + "/" + name
		}

		switch {
		case ent.IsDir():
			if matcher.ShouldIgnoreDir(relPath) {
				continue
			}
			info, err := w.PushEntry(path, name)
			if err != nil {
				return entryErr(relPath, err, progressCb)
			}
			record(result, progressCb, relPath, info)
			if err := traverse(w, path, relPath, matcher, result, progressCb); err != nil {
				return err
			}

		case ent.Type().IsRegular():
			if matcher.ShouldIgnore(relPath) {
				continue
			}
			info, err := w.PushEntry(path, name)
			if err != nil {
				return entryErr(relPath, err, progressCb)
			}
			record(result, progressCb, relPath, info)

		default:
			// Symlinks, devices, fifos, sockets: not representable.
		}
	}

	return nil
}

// listDir reads all entries of dir without sorting them. The archive
// records entries in raw listing order, so the sorted os.ReadDir would
// silently change the stream.
func listDir(dir string) ([]os.DirEntry, error) {
	d, err := os.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	defer d.Close()

	ents, err := d.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("list directory %s: %w", dir, err)
	}
	return ents, nil
}

func entryErr(relPath string, err error, progressCb ProgressCallback) error {
	if progressCb != nil {
		progressCb(ProgressEvent{Type: EventError, EntryName: relPath})
	}
	return fmt.Errorf("%s: %w", relPath, err)
}

func record(result *Result, progressCb ProgressCallback, relPath string, info *EntryInfo) {
	result.EntriesWritten++
	if info.Dir {
		result.DirsWritten++
	} else {
		result.FilesWritten++
		result.SourceBytes += info.Size
		result.PaddingBytes += info.Padding
	}

	if progressCb != nil {
		progressCb(ProgressEvent{
			Type:       EventEntry,
			EntryName:  relPath,
			Dir:        info.Dir,
			Current:    int64(result.EntriesWritten),
			Total:      int64(result.EntriesTotal),
			EntryBytes: info.Size,
		})
	}
}

// countEntries walks the tree with the same skip rules as traverse and
// returns how many entries the write pass will push, plus their raw size.
func countEntries(dir, rel string, matcher *gitignoreMatcher) (int, uint64, error) {
	ents, err := listDir(dir)
	if err != nil {
		return 0, 0, err
	}

	var entries int
	var bytes uint64
	for _, ent := range ents {
		name := ent.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		relPath := name
		if rel != "" {
			relPath = rel + "/" + name
		}

		switch {
		case ent.IsDir():
			if matcher.ShouldIgnoreDir(relPath) {
				continue
			}
			entries++
			sub, subBytes, err := countEntries(filepath.Join(dir, name), relPath, matcher)
			if err != nil {
				return 0, 0, err
			}
			entries += sub
			bytes += subBytes

		case ent.Type().IsRegular():
			if matcher.ShouldIgnore(relPath) {
				continue
			}
			entries++
			if info, err := ent.Info(); err == nil {
				bytes += uint64(info.Size())
			}
		}
	}

	return entries, bytes, nil
}
