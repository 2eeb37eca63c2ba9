package content

import (
	"regexp"
	"strings"
)

var (
	frontRe = regexp.MustCompile(`(?s)### Front\s*\n(.*?)(?:### Back|\z)`)
	backRe  = regexp.MustCompile(`(?s)### Back\s*\n(.*)\z`)
)

// ParseFlashcardGroup parses a full flashcard document (frontmatter plus
// "## Card N" sections) into a FlashcardGroup. Card order is preserved
// exactly as encountered.
func ParseFlashcardGroup(raw string) (*FlashcardGroup, error) {
	fields, body, err := parseFrontmatter(raw)
	if err != nil {
		return nil, err
	}

	cards, err := extractCards(body)
	if err != nil {
		return nil, err
	}

	meta := parseMeta(fields)
	return &FlashcardGroup{
		Meta:  meta,
		Title: GroupTitle(meta.Subcategory, meta.ID),
		Cards: cards,
	}, nil
}

// extractCards turns raw card sections into Flashcards. Each section must
// yield a non-empty front and back; violations report the 1-based card
// index and the offending field.
func extractCards(body string) ([]Flashcard, error) {
	sections := splitSections(body, cardSectionRe)
	if len(sections) == 0 {
		return nil, &ParseError{Reason: "no card sections"}
	}

	cards := make([]Flashcard, 0, len(sections))
	for i, section := range sections {
		card := Flashcard{
			Front: matchGroup(frontRe, section),
			Back:  matchGroup(backRe, section),
		}
		if card.Front == "" {
			return nil, &ValidationError{Kind: "card", Index: i + 1, Field: "front", Msg: "cannot be empty"}
		}
		if card.Back == "" {
			return nil, &ValidationError{Kind: "card", Index: i + 1, Field: "back", Msg: "cannot be empty"}
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// matchGroup returns the first capture group of re in s, trimmed.
func matchGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// GroupTitle derives the display title of a flashcard group. The first
// group of a subcategory (id suffix "001") is the fundamentals group;
// later groups cover applications.
func GroupTitle(subcategory, id string) string {
	suffix := "Applications"
	if strings.HasSuffix(id, "001") {
		suffix = "Fundamentals"
	}
	return titleCase(subcategory) + " " + suffix
}

// titleCase converts a kebab-case slug into a spaced, capitalized title.
func titleCase(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
