package content

import (
	"hash/fnv"
	"strconv"
)

// Hash fingerprints a quiz's graded content: every question's text,
// options (label and text, in bullet order) and answer key, in document
// order. Sessions store the value and compare it on resume to detect
// content edits underneath an in-progress attempt. Equality comparison
// only; 64-bit FNV-1a is plenty for human-authored revisions.
func Hash(quiz *Quiz) string {
	h := fnv.New64a()
	for _, q := range quiz.Questions {
		writeField(h, q.Question)
		for _, o := range q.Options {
			writeField(h, o.Label)
			writeField(h, o.Text)
		}
		writeField(h, q.Answer)
	}
	return strconv.FormatUint(h.Sum64(), 36)
}

type byteWriter interface {
	Write(p []byte) (int, error)
}

// writeField length-prefixes each field so adjacent fields can never
// collide by concatenation ("ab"+"c" vs "a"+"bc").
func writeField(h byteWriter, s string) {
	h.Write([]byte(strconv.Itoa(len(s))))
	h.Write([]byte{0})
	h.Write([]byte(s))
}
