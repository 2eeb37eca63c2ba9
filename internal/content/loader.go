package content

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// Corpus holds every successfully parsed document, keyed by id.
type Corpus struct {
	groups  map[string]*FlashcardGroup
	quizzes map[string]*Quiz
}

// LoadCorpus walks root's "flashcards" and "quizzes" subtrees and parses
// every .md file. A malformed document is skipped with a warning; it never
// aborts the rest of the corpus. When two documents share an id, the one
// with the higher semver "version" frontmatter wins.
func LoadCorpus(root string) (*Corpus, error) {
	c := &Corpus{
		groups:  make(map[string]*FlashcardGroup),
		quizzes: make(map[string]*Quiz),
	}

	if err := walkMarkdown(filepath.Join(root, "flashcards"), func(path, raw string) {
		group, err := ParseFlashcardGroup(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, err)
			return
		}
		if group.ID == "" {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: missing id\n", path)
			return
		}
		if prev, ok := c.groups[group.ID]; ok && !newerVersion(group.Version, prev.Version) {
			return
		}
		c.groups[group.ID] = group
	}); err != nil {
		return nil, err
	}

	if err := walkMarkdown(filepath.Join(root, "quizzes"), func(path, raw string) {
		quiz, err := ParseQuiz(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: %v\n", path, err)
			return
		}
		if quiz.ID == "" {
			fmt.Fprintf(os.Stderr, "warning: skipping %s: missing id\n", path)
			return
		}
		if prev, ok := c.quizzes[quiz.ID]; ok && !newerVersion(quiz.Version, prev.Version) {
			return
		}
		c.quizzes[quiz.ID] = quiz
	}); err != nil {
		return nil, err
	}

	return c, nil
}

// walkMarkdown invokes fn for each .md file under dir. A missing dir is
// not an error; a corpus may contain only one content kind.
func walkMarkdown(dir string, fn func(path, raw string)) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		fn(path, string(data))
		return nil
	})
}

// newerVersion reports whether a should replace b. Versions are authored
// without the "v" prefix; anything that is not valid semver loses to
// anything that is.
func newerVersion(a, b string) bool {
	va, vb := "v"+a, "v"+b
	if !semver.IsValid(va) {
		return false
	}
	if !semver.IsValid(vb) {
		return true
	}
	return semver.Compare(va, vb) > 0
}

// Issue is one rejected document found during validation.
type Issue struct {
	Path string
	Err  error
}

// Validate parses every markdown document under root and returns the
// problems found, without building a corpus.
func Validate(root string) ([]Issue, error) {
	var issues []Issue

	if err := walkMarkdown(filepath.Join(root, "flashcards"), func(path, raw string) {
		if _, err := ParseFlashcardGroup(raw); err != nil {
			issues = append(issues, Issue{Path: path, Err: err})
		}
	}); err != nil {
		return nil, err
	}

	if err := walkMarkdown(filepath.Join(root, "quizzes"), func(path, raw string) {
		if _, err := ParseQuiz(raw); err != nil {
			issues = append(issues, Issue{Path: path, Err: err})
		}
	}); err != nil {
		return nil, err
	}

	return issues, nil
}

// Group returns the flashcard group with the given id.
func (c *Corpus) Group(id string) (*FlashcardGroup, bool) {
	g, ok := c.groups[id]
	return g, ok
}

// Quiz returns the quiz with the given id.
func (c *Corpus) Quiz(id string) (*Quiz, bool) {
	q, ok := c.quizzes[id]
	return q, ok
}

// Groups returns all flashcard groups sorted by id.
func (c *Corpus) Groups() []*FlashcardGroup {
	out := make([]*FlashcardGroup, 0, len(c.groups))
	for _, g := range c.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Quizzes returns all quizzes sorted by id.
func (c *Corpus) Quizzes() []*Quiz {
	out := make([]*Quiz, 0, len(c.quizzes))
	for _, q := range c.quizzes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
