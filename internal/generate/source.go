package generate

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	trailingSpaceRe = regexp.MustCompile(`[ \t]+\n`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
)

// NormalizeSource cleans extracted source material for prompting: NUL
// bytes are dropped, trailing whitespace per line is stripped, and runs
// of three or more newlines collapse to a blank line.
func NormalizeSource(text string) string {
	text = strings.ReplaceAll(text, "\x00", "")
	text = trailingSpaceRe.ReplaceAllString(text, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// ReadSource loads source material from a text or markdown file and
// normalizes it. Binary formats are not supported; convert to text first.
func ReadSource(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source %s: %w", path, err)
	}
	if !isText(raw) {
		return "", fmt.Errorf("%s does not look like a text file; convert it to text or markdown first", path)
	}
	return NormalizeSource(string(raw)), nil
}

// isText reports whether data looks like plain text rather than a binary
// format. NUL bytes within the first 4KB are the tell.
func isText(data []byte) bool {
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	for _, b := range head {
		if b == 0 {
			return false
		}
	}
	return true
}
