package generate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/llm"
)

func generatedResult(t *testing.T) *Result {
	t.Helper()
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: packJSON(t, flashcardsDoc, quizDoc),
	})
	res, err := New(mock, DefaultConfig()).Generate(context.Background(), testInput())
	if err != nil {
		t.Fatalf("generate fixture: %v", err)
	}
	return res
}

func TestWrite_CorpusLoadsResult(t *testing.T) {
	root := t.TempDir()
	res := generatedResult(t)

	flashPath, quizPath, err := Write(root, res)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if flashPath != filepath.Join(root, "flashcards", "two-pointers-001.md") {
		t.Errorf("unexpected flashcards path: %s", flashPath)
	}
	if quizPath != filepath.Join(root, "quizzes", "two-pointers-001.md") {
		t.Errorf("unexpected quiz path: %s", quizPath)
	}

	corpus, err := content.LoadCorpus(root)
	if err != nil {
		t.Fatalf("written files should load as a corpus: %v", err)
	}
	if _, ok := corpus.Group("algorithms-two-pointers-group-001"); !ok {
		t.Error("written deck missing from corpus")
	}
	if _, ok := corpus.Quiz("pattern-selection-two-pointers-001"); !ok {
		t.Error("written quiz missing from corpus")
	}
}

func TestWrite_RefusesOverwrite(t *testing.T) {
	root := t.TempDir()
	res := generatedResult(t)

	if err := os.MkdirAll(filepath.Join(root, "flashcards"), 0o755); err != nil {
		t.Fatal(err)
	}
	existing := filepath.Join(root, "flashcards", res.FlashcardsFileName)
	if err := os.WriteFile(existing, []byte("handwritten"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := Write(root, res)
	if err == nil {
		t.Fatal("expected error for existing file")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(existing)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "handwritten" {
		t.Error("existing file was overwritten")
	}
}
