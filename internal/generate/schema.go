package generate

import "github.com/anupamd/revise/internal/llm"

// PackSchema defines the JSON schema for content-generation responses:
// both markdown files delivered in one structured object.
var PackSchema = &llm.Schema{
	Name:        "content-pack",
	Description: "A flashcard deck and a quiz generated from source material, as two complete markdown documents",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"flashcards_file_name": map[string]any{
				"type":        "string",
				"description": "File name for the flashcard markdown, e.g. \"two-pointers-001.md\"",
			},
			"quiz_file_name": map[string]any{
				"type":        "string",
				"description": "File name for the quiz markdown, e.g. \"two-pointers-001.md\"",
			},
			"flashcards_markdown": map[string]any{
				"type":        "string",
				"description": "The complete flashcard document: frontmatter plus ## Card sections",
			},
			"quiz_markdown": map[string]any{
				"type":        "string",
				"description": "The complete quiz document: frontmatter plus ## Question sections",
			},
		},
		"required":             []any{"flashcards_file_name", "quiz_file_name", "flashcards_markdown", "quiz_markdown"},
		"additionalProperties": false,
	},
}
