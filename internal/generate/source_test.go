package generate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeSource(t *testing.T) {
	in := "Heading  \t\n\n\n\n\nBody\x00 text\n\n"
	want := "Heading\n\nBody text"

	if got := NormalizeSource(in); got != want {
		t.Errorf("NormalizeSource = %q, want %q", got, want)
	}
}

func TestReadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("# Notes\n\n\n\nSome text.   \n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadSource(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "# Notes\n\nSome text." {
		t.Errorf("unexpected source: %q", got)
	}
}

func TestReadSource_RejectsBinary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.7\x00\x01\x02"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadSource(path)
	if err == nil {
		t.Fatal("expected binary file to be rejected")
	}
	if !strings.Contains(err.Error(), "text file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReadSource_Missing(t *testing.T) {
	_, err := ReadSource(filepath.Join(t.TempDir(), "nope.md"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
