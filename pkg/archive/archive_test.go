// pkg/archive/archive_test.go
package archive_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/osmora/go-omar/internal/format"
	"github.com/osmora/go-omar/pkg/archive"
)

// writeTree creates files under dir from a map of relative path -> content
func writeTree(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatalf("Failed to write file: %v", err)
		}
	}
}

// TestCreateConcreteScenario checks the total stream length for the
// two-file tree: 3 headers + 13 name bytes + one 512-byte aligned payload.
func TestCreateConcreteScenario(t *testing.T) {
	sourceDir := t.TempDir()
	writeTree(t, sourceDir, map[string][]byte{
		"a.txt":     []byte("abcd"),
		"sub/b.txt": {},
	})

	var buf bytes.Buffer
	opts := &archive.Options{InputPath: sourceDir, Sink: &buf, Quiet: true}
	result, err := archive.Create(opts, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	wantLen := 3*format.HeaderSize + len("a.txt") + len("sub") + len("b.txt") + 512
	if buf.Len() != wantLen {
		t.Errorf("Stream length = %d, want %d", buf.Len(), wantLen)
	}
	if result.BytesWritten != uint64(wantLen) {
		t.Errorf("BytesWritten = %d, want %d", result.BytesWritten, wantLen)
	}
	if result.EntriesWritten != 3 || result.FilesWritten != 2 || result.DirsWritten != 1 {
		t.Errorf("Counts = %d entries (%d files, %d dirs), want 3 (2, 1)",
			result.EntriesWritten, result.FilesWritten, result.DirsWritten)
	}
	if result.SourceBytes != 4 {
		t.Errorf("SourceBytes = %d, want 4", result.SourceBytes)
	}
	if result.PaddingBytes != 508 {
		t.Errorf("PaddingBytes = %d, want 508", result.PaddingBytes)
	}
	if !result.Success() {
		t.Errorf("Expected success, errors: %v", result.Errors)
	}
}

// TestCreateSingleFileLayout checks the stream byte-for-byte for a
// one-file tree, where traversal order cannot vary.
func TestCreateSingleFileLayout(t *testing.T) {
	sourceDir := t.TempDir()
	writeTree(t, sourceDir, map[string][]byte{"a.txt": []byte("abcd")})

	var buf bytes.Buffer
	opts := &archive.Options{InputPath: sourceDir, Sink: &buf, Quiet: true}
	if _, err := archive.Create(opts, nil); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	want := format.EncodeHeader(&format.Header{
		Type:       0,
		NextOffset: format.HeaderSize + 512,
		Length:     4,
		NameLength: 5,
	})
	want = append(want, "a.txt"...)
	want = append(want, "abcd"...)
	want = append(want, make([]byte, 508)...)

	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("Stream mismatch:\n got  %v...\n want %v...", buf.Bytes()[:32], want[:32])
	}
}

// TestPushEntryDirectory checks that directory entries carry no payload
func TestPushEntryDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	if err := os.Mkdir(dir, 0755); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	w := archive.NewWriter(&buf)
	info, err := w.PushEntry(dir, "docs")
	if err != nil {
		t.Fatalf("PushEntry failed: %v", err)
	}

	if !info.Dir {
		t.Error("Expected a directory entry")
	}
	if info.Size != 0 || info.Padding != 0 {
		t.Errorf("Directory entry has size %d, padding %d", info.Size, info.Padding)
	}
	if buf.Len() != format.HeaderSize+len("docs") {
		t.Errorf("Wrote %d bytes, want %d", buf.Len(), format.HeaderSize+len("docs"))
	}
	if w.Offset() != uint64(buf.Len()) {
		t.Errorf("Offset = %d, buffer holds %d", w.Offset(), buf.Len())
	}

	hdr, err := format.DecodeHeader(buf.Bytes())
	if err != nil {
		t.Fatalf("Emitted header invalid: %v", err)
	}
	if !hdr.IsDir() || hdr.Length != 0 || hdr.NextOffset != format.HeaderSize {
		t.Errorf("Header = %+v, want dir flag, length 0, next %d", hdr, format.HeaderSize)
	}
	if hdr.NameLength != 4 {
		t.Errorf("NameLength = %d, want 4", hdr.NameLength)
	}
}

// TestPushEntryNameBoundary checks the 255-byte name length limit
func TestPushEntryNameBoundary(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("255 bytes succeeds", func(t *testing.T) {
		var buf bytes.Buffer
		w := archive.NewWriter(&buf)
		name := strings.Repeat("n", 255)
		if _, err := w.PushEntry(file, name); err != nil {
			t.Fatalf("PushEntry failed: %v", err)
		}
		hdr, err := format.DecodeHeader(buf.Bytes())
		if err != nil {
			t.Fatal(err)
		}
		if hdr.NameLength != 255 {
			t.Errorf("NameLength = %d, want 255", hdr.NameLength)
		}
	})

	t.Run("256 bytes fails", func(t *testing.T) {
		var buf bytes.Buffer
		w := archive.NewWriter(&buf)
		_, err := w.PushEntry(file, strings.Repeat("n", 256))
		if !errors.Is(err, archive.ErrNameTooLong) {
			t.Errorf("Expected ErrNameTooLong, got %v", err)
		}
		if buf.Len() != 0 {
			t.Errorf("Failed push wrote %d bytes", buf.Len())
		}
	})
}

// TestPaddingInvariant checks payload alignment across block boundaries
func TestPaddingInvariant(t *testing.T) {
	sizes := []int{0, 1, 511, 512, 513, 1024}

	for _, size := range sizes {
		file := filepath.Join(t.TempDir(), "f.bin")
		if err := os.WriteFile(file, bytes.Repeat([]byte{0xAB}, size), 0644); err != nil {
			t.Fatal(err)
		}

		var buf bytes.Buffer
		w := archive.NewWriter(&buf)
		info, err := w.PushEntry(file, "f.bin")
		if err != nil {
			t.Fatalf("size %d: PushEntry failed: %v", size, err)
		}

		aligned := format.AlignUp(uint64(size))
		if got := uint64(buf.Len()) - format.HeaderSize - uint64(len("f.bin")); got != aligned {
			t.Errorf("size %d: payload bytes = %d, want %d", size, got, aligned)
		}
		if info.Padding != aligned-uint64(size) {
			t.Errorf("size %d: padding = %d, want %d", size, info.Padding, aligned-uint64(size))
		}

		pad := buf.Bytes()[format.HeaderSize+len("f.bin")+size:]
		for i, b := range pad {
			if b != 0 {
				t.Fatalf("size %d: padding byte %d is 0x%02X", size, i, b)
			}
		}
	}
}

// TestHiddenEntriesExcluded checks the dot-name skip rule
func TestHiddenEntriesExcluded(t *testing.T) {
	sourceDir := t.TempDir()
	writeTree(t, sourceDir, map[string][]byte{
		"visible.txt":    []byte("data"),
		".cache":         []byte("cached"),
		".git/config":    []byte("[core]"),
		"sub/.hidden":    []byte("secret"),
		"sub/normal.txt": []byte("ok"),
	})

	var buf bytes.Buffer
	opts := &archive.Options{InputPath: sourceDir, Sink: &buf, Quiet: true}
	result, err := archive.Create(opts, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// visible.txt, sub, sub/normal.txt
	if result.EntriesWritten != 3 {
		t.Errorf("EntriesWritten = %d, want 3", result.EntriesWritten)
	}
	for _, needle := range []string{".cache", ".git", ".hidden", "cached", "secret"} {
		if bytes.Contains(buf.Bytes(), []byte(needle)) {
			t.Errorf("Archive contains %q", needle)
		}
	}
}

// TestIrregularEntriesSkipped checks that symlinks are neither pushed nor followed
func TestIrregularEntriesSkipped(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires privileges on windows")
	}

	sourceDir := t.TempDir()
	writeTree(t, sourceDir, map[string][]byte{"real.txt": []byte("data")})
	if err := os.Symlink(filepath.Join(sourceDir, "real.txt"), filepath.Join(sourceDir, "link.txt")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	opts := &archive.Options{InputPath: sourceDir, Sink: &buf, Quiet: true}
	result, err := archive.Create(opts, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if result.EntriesWritten != 1 {
		t.Errorf("EntriesWritten = %d, want 1", result.EntriesWritten)
	}
	if bytes.Contains(buf.Bytes(), []byte("link.txt")) {
		t.Error("Archive contains the symlink name")
	}
}

// TestCreateNotADirectory checks the source root precondition
func TestCreateNotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	opts := &archive.Options{InputPath: file, Sink: &bytes.Buffer{}, Quiet: true}
	_, err := archive.Create(opts, nil)
	if !errors.Is(err, archive.ErrNotADirectory) {
		t.Errorf("Expected ErrNotADirectory, got %v", err)
	}
}

// TestOptionsValidate tests option validation and defaults
func TestOptionsValidate(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		opts := &archive.Options{}
		if err := opts.Validate(); !errors.Is(err, archive.ErrInputRequired) {
			t.Errorf("Expected ErrInputRequired, got %v", err)
		}
	})

	t.Run("default output", func(t *testing.T) {
		opts := &archive.Options{InputPath: "src"}
		if err := opts.Validate(); err != nil {
			t.Fatal(err)
		}
		if opts.OutputPath != "archive.omar" {
			t.Errorf("OutputPath = %q, want archive.omar", opts.OutputPath)
		}
	})

	t.Run("quiet overrides verbose", func(t *testing.T) {
		opts := &archive.Options{InputPath: "src", Verbose: true, Quiet: true}
		if err := opts.Validate(); err != nil {
			t.Fatal(err)
		}
		if opts.Verbose {
			t.Error("Quiet should override Verbose")
		}
	})
}

// TestDryRun checks that nothing is written but stats are still produced
func TestDryRun(t *testing.T) {
	sourceDir := t.TempDir()
	writeTree(t, sourceDir, map[string][]byte{"a.txt": []byte("abcd")})

	outPath := filepath.Join(t.TempDir(), "out.omar")
	opts := &archive.Options{InputPath: sourceDir, OutputPath: outPath, DryRun: true, Quiet: true}
	result, err := archive.Create(opts, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if result.BytesWritten == 0 {
		t.Error("Dry run should still report the bytes it would write")
	}
	if result.Digest != "" {
		t.Errorf("Dry run produced a digest: %s", result.Digest)
	}
	if _, err := os.Stat(outPath); !errors.Is(err, os.ErrNotExist) {
		t.Error("Dry run created an output file")
	}
}

// TestCreateToFile checks the OutputPath mode and the stream digest
func TestCreateToFile(t *testing.T) {
	sourceDir := t.TempDir()
	writeTree(t, sourceDir, map[string][]byte{"a.txt": []byte("abcd")})

	outPath := filepath.Join(t.TempDir(), "out.omar")
	opts := &archive.Options{InputPath: sourceDir, OutputPath: outPath, Quiet: true}
	result, err := archive.Create(opts, nil)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	fi, err := os.Stat(outPath)
	if err != nil {
		t.Fatalf("Output file missing: %v", err)
	}
	if uint64(fi.Size()) != result.BytesWritten {
		t.Errorf("File size %d != BytesWritten %d", fi.Size(), result.BytesWritten)
	}
	if len(result.Digest) != 64 {
		t.Errorf("Digest = %q, want 64 hex chars", result.Digest)
	}
}

// TestProgressEvents checks the callback sequence
func TestProgressEvents(t *testing.T) {
	sourceDir := t.TempDir()
	writeTree(t, sourceDir, map[string][]byte{
		"a.txt":     []byte("one"),
		"sub/b.txt": []byte("two"),
	})

	var events []archive.EventType
	progressCb := func(event archive.ProgressEvent) {
		events = append(events, event.Type)
	}

	opts := &archive.Options{InputPath: sourceDir, Sink: &bytes.Buffer{}, Quiet: true}
	if _, err := archive.Create(opts, progressCb); err != nil {
		t.Fatal(err)
	}

	if len(events) != 5 { // start + 3 entries + complete
		t.Fatalf("Got %d events, want 5: %v", len(events), events)
	}
	if events[0] != archive.EventStart {
		t.Error("First event should be EventStart")
	}
	if events[len(events)-1] != archive.EventComplete {
		t.Error("Last event should be EventComplete")
	}
	for _, e := range events[1 : len(events)-1] {
		if e != archive.EventEntry {
			t.Errorf("Middle event = %v, want EventEntry", e)
		}
	}
}
