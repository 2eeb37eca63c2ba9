package content

import (
	"errors"
	"testing"
)

const flashcardDoc = `---
id: arrays-001
category: dsa
subcategory: dynamic-arrays
difficulty: easy
tags: [arrays, basics]
version: 1.0.0
---

## Card 1

### Front
What is amortized append cost?

### Back
O(1), because doublings are rare.

## Card 2

### Front
When does a dynamic array reallocate?

### Back
When length exceeds capacity.
`

func TestParseFlashcardGroup_WellFormed(t *testing.T) {
	group, err := ParseFlashcardGroup(flashcardDoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if group.ID != "arrays-001" {
		t.Errorf("ID = %q, want arrays-001", group.ID)
	}
	if group.Difficulty != DifficultyEasy {
		t.Errorf("Difficulty = %q, want easy", group.Difficulty)
	}
	if len(group.Tags) != 2 || group.Tags[0] != "arrays" || group.Tags[1] != "basics" {
		t.Errorf("Tags = %v, want [arrays basics]", group.Tags)
	}

	if len(group.Cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(group.Cards))
	}
	// Document order is study order; it must be preserved exactly.
	if group.Cards[0].Front != "What is amortized append cost?" {
		t.Errorf("card 1 front = %q", group.Cards[0].Front)
	}
	if group.Cards[1].Back != "When length exceeds capacity." {
		t.Errorf("card 2 back = %q", group.Cards[1].Back)
	}
}

func TestParseFlashcardGroup_Title(t *testing.T) {
	tests := []struct {
		subcategory string
		id          string
		want        string
	}{
		{"dynamic-arrays", "arrays-001", "Dynamic Arrays Fundamentals"},
		{"dynamic-arrays", "arrays-002", "Dynamic Arrays Applications"},
		{"hash-maps", "hash-001", "Hash Maps Fundamentals"},
	}
	for _, tt := range tests {
		got := GroupTitle(tt.subcategory, tt.id)
		if got != tt.want {
			t.Errorf("GroupTitle(%q, %q) = %q, want %q", tt.subcategory, tt.id, got, tt.want)
		}
	}
}

func TestParseFlashcardGroup_MissingFrontmatter(t *testing.T) {
	_, err := ParseFlashcardGroup("## Card 1\n\n### Front\nA\n\n### Back\nB\n")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseFlashcardGroup_EmptyBack(t *testing.T) {
	doc := `---
id: g1
version: 1.0.0
---

## Card 1

### Front
ok

### Back
fine

## Card 2

### Front
has a front but no back
`
	_, err := ParseFlashcardGroup(doc)
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if valErr.Index != 2 {
		t.Errorf("Index = %d, want 2 (1-based)", valErr.Index)
	}
	if valErr.Field != "back" {
		t.Errorf("Field = %q, want back", valErr.Field)
	}
}

func TestParseFlashcardGroup_EmptyFront(t *testing.T) {
	doc := `---
id: g1
version: 1.0.0
---

## Card 1

### Front

### Back
only a back
`
	_, err := ParseFlashcardGroup(doc)
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if valErr.Index != 1 || valErr.Field != "front" {
		t.Errorf("got card %d field %q, want card 1 field front", valErr.Index, valErr.Field)
	}
}

func TestParseFlashcardGroup_NumberingGaps(t *testing.T) {
	// Section numbers are boundaries, not indices; gaps are tolerated.
	doc := `---
id: g1
version: 1.0.0
---

## Card 1

### Front
a

### Back
b

## Card 7

### Front
c

### Back
d
`
	group, err := ParseFlashcardGroup(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(group.Cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(group.Cards))
	}
}
