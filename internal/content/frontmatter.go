package content

import (
	"regexp"
	"strings"
)

var frontmatterRe = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---`)

// sectionRe returns the section delimiter for a kind ("Card" or "Question").
// The integer is a boundary marker only; numbering gaps are tolerated.
func sectionRe(kind string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^## ` + kind + ` \d+\s*$`)
}

var (
	cardSectionRe     = sectionRe("Card")
	questionSectionRe = sectionRe("Question")
)

// parseFrontmatter extracts the key-value metadata block at the top of a
// document. Values wrapped in [...] are split on commas into a list.
// Returns the metadata, the remaining body, and an error if the block is
// absent. Both the loader and the single-document parse paths require the
// block; there is no lenient mode.
func parseFrontmatter(raw string) (map[string]any, string, error) {
	m := frontmatterRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, "", &ParseError{Reason: "missing frontmatter"}
	}

	fields := make(map[string]any)
	for _, line := range strings.Split(m[1], "\n") {
		colon := strings.Index(line, ":")
		if colon == -1 {
			continue
		}
		key := strings.TrimSpace(line[:colon])
		value := strings.TrimSpace(line[colon+1:])

		if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
			var list []string
			for _, item := range strings.Split(value[1:len(value)-1], ",") {
				list = append(list, strings.TrimSpace(item))
			}
			fields[key] = list
			continue
		}
		fields[key] = value
	}

	body := strings.TrimSpace(raw[len(m[0]):])
	return fields, body, nil
}

// splitSections splits a document body on the section delimiter.
// Text before the first delimiter is preamble and is discarded; empty
// chunks are dropped.
func splitSections(body string, re *regexp.Regexp) []string {
	parts := re.Split(body, -1)
	var sections []string
	for i, p := range parts {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(p) == "" {
			continue
		}
		sections = append(sections, p)
	}
	return sections
}

// metaString reads a scalar frontmatter field, empty when missing.
func metaString(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// metaList reads a list-valued frontmatter field.
func metaList(fields map[string]any, key string) []string {
	if v, ok := fields[key].([]string); ok {
		return v
	}
	return nil
}

func parseMeta(fields map[string]any) Meta {
	return Meta{
		ID:          metaString(fields, "id"),
		Category:    metaString(fields, "category"),
		Subcategory: metaString(fields, "subcategory"),
		Difficulty:  Difficulty(metaString(fields, "difficulty")),
		Tags:        metaList(fields, "tags"),
		Version:     metaString(fields, "version"),
	}
}
