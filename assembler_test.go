package pics2pdf

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeJPEGFile persists a generated JPEG into dir and returns its path.
func writeJPEGFile(t *testing.T, dir string, width, height int) string {
	t.Helper()

	path := filepath.Join(dir, "img.jpg")
	if err := os.WriteFile(path, encodeJPEG(t, width, height), 0o600); err != nil {
		t.Fatalf("writing test JPEG: %v", err)
	}
	return path
}

func TestFpdfAssembler_Build(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "a.jpg")
	second := filepath.Join(dir, "b.jpg")
	if err := os.WriteFile(first, encodeJPEG(t, 30, 50), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, encodeJPEG(t, 70, 20), 0o600); err != nil {
		t.Fatal(err)
	}

	asm := newFpdfAssembler()
	if err := asm.AddPage(30, 50, first); err != nil {
		t.Fatalf("AddPage(first) error = %v", err)
	}
	if err := asm.AddPage(70, 20, second); err != nil {
		t.Fatalf("AddPage(second) error = %v", err)
	}

	var buf bytes.Buffer
	if err := asm.Finalize(&buf); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("output does not start with a PDF header")
	}
	if buf.Len() < 500 {
		t.Errorf("output suspiciously small: %d bytes", buf.Len())
	}
}

func TestFpdfAssembler_MissingFile(t *testing.T) {
	t.Parallel()

	asm := newFpdfAssembler()
	err := asm.AddPage(10, 10, filepath.Join(t.TempDir(), "gone.jpg"))
	if !errors.Is(err, ErrAssembly) {
		t.Errorf("AddPage() error = %v, want ErrAssembly", err)
	}
}

func TestFpdfAssembler_InvalidSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeJPEGFile(t, dir, 4, 4)

	asm := newFpdfAssembler()
	if err := asm.AddPage(0, 10, path); !errors.Is(err, ErrAssembly) {
		t.Errorf("AddPage(0, 10) error = %v, want ErrAssembly", err)
	}
	if err := asm.AddPage(10, -1, path); !errors.Is(err, ErrAssembly) {
		t.Errorf("AddPage(10, -1) error = %v, want ErrAssembly", err)
	}
}
