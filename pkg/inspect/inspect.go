// pkg/inspect/inspect.go
package inspect

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"

	"github.com/osmora/go-omar/internal/format"
)

// Entry is one record decoded from an archive. Names are base names: the
// format carries no depth or parent information, so entries are exposed as
// the linear sequence the writer emitted (pre-order, children immediately
// after their directory).
type Entry struct {
	Name string
	Dir  bool
	Size uint32
	Data []byte
}

// Walk reads entries from r sequentially and calls fn for each one until
// end-of-stream, a decode failure, or an error from fn. End-of-archive is
// a clean EOF at a header boundary; there is no sentinel record.
//
// Each header is validated as it is read: magic tag, zero length for
// directories, the next-offset arithmetic, and zero-filled padding.
func Walk(r io.Reader, fn func(*Entry) error) error {
	for i := 0; ; i++ {
		hdr, err := format.ReadHeader(r)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}

		name := make([]byte, hdr.NameLength)
		if _, err := io.ReadFull(r, name); err != nil {
			return fmt.Errorf("entry %d: read name: %w", i, err)
		}

		entry := &Entry{Name: string(name), Dir: hdr.IsDir(), Size: hdr.Length}

		if entry.Dir {
			if hdr.Length != 0 {
				return fmt.Errorf("entry %d (%s): %w: directory with length %d",
					i, entry.Name, format.ErrMalformedHeader, hdr.Length)
			}
			if hdr.NextOffset != format.HeaderSize {
				return fmt.Errorf("entry %d (%s): %w: got %d, want %d",
					i, entry.Name, ErrBadOffset, hdr.NextOffset, format.HeaderSize)
			}
		} else {
			want := format.HeaderSize + format.AlignUp(uint64(hdr.Length))
			if uint64(hdr.NextOffset) != want {
				return fmt.Errorf("entry %d (%s): %w: got %d, want %d",
					i, entry.Name, ErrBadOffset, hdr.NextOffset, want)
			}

			entry.Data = make([]byte, hdr.Length)
			if _, err := io.ReadFull(r, entry.Data); err != nil {
				return fmt.Errorf("entry %d (%s): read content: %w", i, entry.Name, err)
			}

			pad := format.AlignUp(uint64(hdr.Length)) - uint64(hdr.Length)
			if pad > 0 {
				padding := make([]byte, pad)
				if _, err := io.ReadFull(r, padding); err != nil {
					return fmt.Errorf("entry %d (%s): read padding: %w", i, entry.Name, err)
				}
				for _, b := range padding {
					if b != 0 {
						return fmt.Errorf("entry %d (%s): %w", i, entry.Name, ErrDirtyPadding)
					}
				}
			}
		}

		if err := fn(entry); err != nil {
			return err
		}
	}
}

// List decodes all entries of an archive in stream order.
func List(r io.Reader) ([]*Entry, error) {
	var entries []*Entry
	err := Walk(r, func(e *Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Options configures archive inspection
type Options struct {
	// Archive file to inspect (required)
	InputPath string
}

// Validate checks if options are valid
func (o *Options) Validate() error {
	if o.InputPath == "" {
		return ErrInputRequired
	}
	return nil
}

// Result contains statistics about an inspected archive
type Result struct {
	EntryCount   int
	FileCount    int
	DirCount     int
	DataBytes    uint64 // raw content bytes across all files
	PaddingBytes uint64
	ArchiveSize  uint64 // total stream size
	Digest       string // hex BLAKE3 of the whole stream
}

// ProgressCallback is called once per decoded entry
type ProgressCallback func(entry *Entry)

// Inspect walks the archive at opts.InputPath, validating its structure,
// and returns aggregate statistics plus a digest of the stream.
func Inspect(opts *Options, progressCb ProgressCallback) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(opts.InputPath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	hasher := blake3.New()
	counted := &countingReader{r: io.TeeReader(f, hasher)}

	result := &Result{}
	err = Walk(counted, func(e *Entry) error {
		result.EntryCount++
		if e.Dir {
			result.DirCount++
		} else {
			result.FileCount++
			result.DataBytes += uint64(e.Size)
			result.PaddingBytes += format.AlignUp(uint64(e.Size)) - uint64(e.Size)
		}
		if progressCb != nil {
			progressCb(e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.ArchiveSize = counted.n
	result.Digest = hex.EncodeToString(hasher.Sum(nil))
	return result, nil
}

type countingReader struct {
	r io.Reader
	n uint64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += uint64(n)
	return n, err
}
