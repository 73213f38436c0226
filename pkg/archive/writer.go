// pkg/archive/writer.go
package archive

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/osmora/go-omar/internal/format"
)

// Writer emits OMAR entries to a single output sink. It owns the sink and
// the byte cursor for the archive's entire construction; there is exactly
// one writer per archive and no concurrent use.
type Writer struct {
	w      io.Writer
	offset uint64
}

// NewWriter returns a writer that appends entries to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Offset returns the total number of bytes written so far.
func (w *Writer) Offset() uint64 {
	return w.offset
}

// EntryInfo describes one entry after it has been written.
type EntryInfo struct {
	Name    string
	Dir     bool
	Size    uint64 // raw content bytes
	Padding uint64 // zero-fill bytes appended after the content
}

// PushEntry records the filesystem object at path under the given base
// name. Directories get a header and name only; regular files get header,
// name, content, and zero padding up to the next multiple of
// format.BlockSize.
//
// File content is read entirely into memory before any bytes are written,
// so individual files are bounded by available memory. A failure aborts
// the entry before a partial header reaches the sink.
func (w *Writer) PushEntry(path, name string) (*EntryInfo, error) {
	if len(name) > format.MaxNameLength {
		return nil, fmt.Errorf("%w: %q is %d bytes", ErrNameTooLong, name, len(name))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open entry: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat entry: %w", err)
	}

	if info.IsDir() {
		hdr := &format.Header{
			Type:       format.TypeDir,
			NextOffset: format.HeaderSize,
			Length:     0,
			NameLength: uint8(len(name)),
		}
		if err := w.writeHeader(hdr, name); err != nil {
			return nil, err
		}
		return &EntryInfo{Name: name, Dir: true}, nil
	}

	if size := uint64(info.Size()); format.HeaderSize+format.AlignUp(size) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, size)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read entry: %w", err)
	}

	length := uint64(len(data))
	aligned := format.AlignUp(length)
	if format.HeaderSize+aligned > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, length)
	}

	hdr := &format.Header{
		Type:       0,
		NextOffset: uint32(format.HeaderSize + aligned),
		Length:     uint32(length),
		NameLength: uint8(len(name)),
	}
	if err := w.writeHeader(hdr, name); err != nil {
		return nil, err
	}
	if err := w.write(data); err != nil {
		return nil, err
	}

	// Padding is always shorter than one block.
	pad := aligned - length
	if pad > 0 {
		var zeros [format.BlockSize]byte
		if err := w.write(zeros[:pad]); err != nil {
			return nil, err
		}
	}

	return &EntryInfo{Name: name, Size: length, Padding: pad}, nil
}

func (w *Writer) writeHeader(hdr *format.Header, name string) error {
	if err := w.write(format.EncodeHeader(hdr)); err != nil {
		return err
	}
	// Name bytes are not null-terminated; their extent is NameLength.
	return w.write([]byte(name))
}

func (w *Writer) write(p []byte) error {
	n, err := w.w.Write(p)
	w.offset += uint64(n)
	if err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}
