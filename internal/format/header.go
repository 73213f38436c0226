// internal/format/header.go
package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// Magic signature at the start of every OMAR entry header
	Magic     = "OMAR"
	MagicSize = 4

	// Header layout (packed, little-endian):
	//   Magic (4):       "OMAR"
	//   Type (2):        uint16 flag set, bit 0 = directory
	//   Next Offset (4): uint32, bytes from this header to the next one
	//   Length (4):      uint32, raw (unpadded) content length, 0 for dirs
	//   Name Length (1): uint8, byte length of the name after the header
	HeaderSize = 15

	// BlockSize is the payload alignment: file content is zero-padded
	// up to the next multiple of this.
	BlockSize = 512

	// MaxNameLength is the cap imposed by the single-byte name length field.
	MaxNameLength = 255
)

// Entry type flags. All bits other than TypeDir are reserved.
const (
	TypeDir uint16 = 1 << 0
)

var (
	// ErrBadMagic is returned when a header does not start with the OMAR magic
	ErrBadMagic = errors.New("bad magic")

	// ErrMalformedHeader is returned when fewer than HeaderSize bytes are available
	ErrMalformedHeader = errors.New("malformed header")
)

// Header is the fixed-size metadata record preceding each entry's name
// and optional payload.
type Header struct {
	Type       uint16
	NextOffset uint32
	Length     uint32
	NameLength uint8
}

// IsDir reports whether the directory flag is set.
func (h *Header) IsDir() bool {
	return h.Type&TypeDir != 0
}

// AlignUp rounds n up to the next multiple of BlockSize.
func AlignUp(n uint64) uint64 {
	return (n + BlockSize - 1) &^ (BlockSize - 1)
}

// EncodeHeader serializes a header to its packed on-wire layout.
// The output is always exactly HeaderSize bytes.
func EncodeHeader(h *Header) []byte {
	buf := make([]byte, HeaderSize)
	copy(buf[0:4], Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.Type)
	binary.LittleEndian.PutUint32(buf[6:10], h.NextOffset)
	binary.LittleEndian.PutUint32(buf[10:14], h.Length)
	buf[14] = h.NameLength
	return buf
}

// DecodeHeader parses a packed header. It fails with ErrMalformedHeader
// if buf holds fewer than HeaderSize bytes, and with ErrBadMagic if the
// magic tag does not match.
func DecodeHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrMalformedHeader, len(buf), HeaderSize)
	}
	if string(buf[0:4]) != Magic {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrBadMagic, buf[0:4], Magic)
	}

	return &Header{
		Type:       binary.LittleEndian.Uint16(buf[4:6]),
		NextOffset: binary.LittleEndian.Uint32(buf[6:10]),
		Length:     binary.LittleEndian.Uint32(buf[10:14]),
		NameLength: buf[14],
	}, nil
}

// WriteHeader writes the packed header to w.
func WriteHeader(w io.Writer, h *Header) error {
	if _, err := w.Write(EncodeHeader(h)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// ReadHeader reads and decodes one header from r. A clean io.EOF at the
// header boundary is passed through unchanged so callers can treat it as
// end-of-archive; a partial header is ErrMalformedHeader.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: truncated", ErrMalformedHeader)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	return DecodeHeader(buf)
}
