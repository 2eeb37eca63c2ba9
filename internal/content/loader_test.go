package content

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func groupDoc(id, version string) string {
	return `---
id: ` + id + `
category: dsa
subcategory: arrays
difficulty: easy
tags: [a]
version: ` + version + `
---

## Card 1

### Front
f

### Back
b
`
}

func TestLoadCorpus_SkipsMalformed(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "flashcards/good.md", groupDoc("g-001", "1.0.0"))
	writeDoc(t, root, "flashcards/bad.md", "no frontmatter at all")
	writeDoc(t, root, "quizzes/good.md", quizDoc(goodQuestion))

	c, err := LoadCorpus(root)
	if err != nil {
		t.Fatalf("loader must isolate per-document failures: %v", err)
	}
	if len(c.Groups()) != 1 {
		t.Errorf("got %d groups, want 1", len(c.Groups()))
	}
	if _, ok := c.Quiz("quiz-001"); !ok {
		t.Error("quiz-001 not loaded")
	}
}

func TestLoadCorpus_DuplicateIDHighestVersionWins(t *testing.T) {
	root := t.TempDir()
	writeDoc(t, root, "flashcards/a.md", groupDoc("g-001", "1.2.0"))
	writeDoc(t, root, "flashcards/b.md", groupDoc("g-001", "1.10.0"))

	c, err := LoadCorpus(root)
	if err != nil {
		t.Fatal(err)
	}
	g, ok := c.Group("g-001")
	if !ok {
		t.Fatal("g-001 not loaded")
	}
	// Semver ordering, not lexical: 1.10.0 > 1.2.0.
	if g.Version != "1.10.0" {
		t.Errorf("Version = %q, want 1.10.0", g.Version)
	}
}

func TestLoadCorpus_MissingSubtrees(t *testing.T) {
	c, err := LoadCorpus(t.TempDir())
	if err != nil {
		t.Fatalf("empty corpus dir must load: %v", err)
	}
	if len(c.Groups()) != 0 || len(c.Quizzes()) != 0 {
		t.Error("expected empty corpus")
	}
}

func TestNewerVersion(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"1.1.0", "1.0.0", true},
		{"1.0.0", "1.1.0", false},
		{"1.0.0", "garbage", true},
		{"garbage", "1.0.0", false},
		{"1.0.0", "1.0.0", false},
	}
	for _, tt := range tests {
		if got := newerVersion(tt.a, tt.b); got != tt.want {
			t.Errorf("newerVersion(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
