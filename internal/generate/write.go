package generate

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write saves both files of a Result under the content directory,
// flashcards into flashcards/ and the quiz into quizzes/, matching the
// layout the corpus loader walks. Existing files are never overwritten.
func Write(root string, res *Result) (flashPath, quizPath string, err error) {
	flashPath = filepath.Join(root, "flashcards", res.FlashcardsFileName)
	quizPath = filepath.Join(root, "quizzes", res.QuizFileName)

	if err := writeNew(flashPath, res.FlashcardsMarkdown); err != nil {
		return "", "", err
	}
	if err := writeNew(quizPath, res.QuizMarkdown); err != nil {
		// Leave the flashcard file in place; the caller sees which write
		// failed and can rerun with a different subcategory.
		return "", "", err
	}
	return flashPath, quizPath, nil
}

func writeNew(path, markdown string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%s already exists; refusing to overwrite", path)
		}
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(markdown); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
