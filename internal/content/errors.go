package content

import "fmt"

// ParseError indicates a document could not be split into frontmatter and
// sections at all (as opposed to a section failing validation).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse document: " + e.Reason
}

// ValidationError describes why one section of a document failed
// validation. Index is 1-based and refers to the section's position in
// the document, matching the numbering authors see.
type ValidationError struct {
	Kind  string // "card" or "question"
	Index int    // 1-based section index
	Field string // the empty or invalid field
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %d: %s %s", e.Kind, e.Index, e.Field, e.Msg)
}
