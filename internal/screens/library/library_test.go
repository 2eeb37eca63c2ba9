package library

import (
	"os"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/anupamd/revise/internal/content"
	"github.com/anupamd/revise/internal/router"
	"github.com/anupamd/revise/internal/screens/quiz"
	"github.com/anupamd/revise/internal/screens/study"
)

const quizDoc = `---
id: quiz-001
type: pattern-selection
category: dsa
subcategory: two-pointers
difficulty: medium
tags: [arrays]
version: 1.0.0
---

## Question 1

Which pattern fits removing duplicates from a sorted slice in place?

### Options
- A: Two pointers
- B: Binary search
- C: BFS
- D: Heap

### Answer
A

### Explanation
A read pointer scans while a write pointer tracks the next free slot.
`

const deckDoc = `---
id: deck-001
category: dsa
subcategory: arrays
difficulty: easy
tags: [arrays]
version: 1.0.0
---

## Card 1

### Front
What does append do when capacity is exhausted?

### Back
Allocates a larger backing array and copies the elements over.
`

func testCorpus(t *testing.T) *content.Corpus {
	t.Helper()
	root := t.TempDir()
	for rel, body := range map[string]string{
		"quizzes/quiz-001.md":    quizDoc,
		"flashcards/deck-001.md": deckDoc,
	} {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	corpus, err := content.LoadCorpus(root)
	if err != nil {
		t.Fatal(err)
	}
	return corpus
}

func keyPress(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	default:
		return tea.KeyPressMsg{Code: rune(s[0]), Text: s}
	}
}

func TestListsQuizzes(t *testing.T) {
	s := New(ModeQuizzes, Deps{Corpus: testCorpus(t)})
	if len(s.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(s.entries))
	}
	if s.entries[0].id != "quiz-001" {
		t.Errorf("entry id = %q", s.entries[0].id)
	}
	if s.entries[0].detail != "1 questions" {
		t.Errorf("detail = %q", s.entries[0].detail)
	}
}

func TestListsDecks(t *testing.T) {
	s := New(ModeFlashcards, Deps{Corpus: testCorpus(t)})
	if len(s.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(s.entries))
	}
	if s.entries[0].id != "deck-001" {
		t.Errorf("entry id = %q", s.entries[0].id)
	}
}

func TestNavigationClamps(t *testing.T) {
	s := New(ModeQuizzes, Deps{Corpus: testCorpus(t)})
	s.Update(keyPress("down"))
	if s.selected != 0 {
		t.Errorf("selected = %d, want 0 (single entry)", s.selected)
	}
}

func TestEscPops(t *testing.T) {
	s := New(ModeQuizzes, Deps{Corpus: testCorpus(t)})
	_, cmd := s.Update(keyPress("esc"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Fatal("expected PopScreenMsg")
	}
}

func TestEnterOpensQuiz(t *testing.T) {
	s := New(ModeQuizzes, Deps{Corpus: testCorpus(t)})
	_, cmd := s.Update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := msg.Screen.(*quiz.QuizScreen); !ok {
		t.Fatalf("pushed %T, want *quiz.QuizScreen", msg.Screen)
	}
}

func TestEnterOpensDeck(t *testing.T) {
	s := New(ModeFlashcards, Deps{Corpus: testCorpus(t)})
	_, cmd := s.Update(keyPress("enter"))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := msg.Screen.(*study.StudyScreen); !ok {
		t.Fatalf("pushed %T, want *study.StudyScreen", msg.Screen)
	}
}
