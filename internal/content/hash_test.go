package content

import "testing"

func hashFixture() *Quiz {
	return &Quiz{
		Questions: []Question{
			{
				Question: "Which pattern?",
				Options: []QuizOption{
					{Label: "A", Text: "Two pointers"},
					{Label: "B", Text: "Binary search"},
				},
				Answer:      "A",
				Explanation: "not hashed",
			},
			{
				Question: "What complexity?",
				Options: []QuizOption{
					{Label: "A", Text: "O(n)"},
					{Label: "B", Text: "O(log n)"},
				},
				Answer:      "B",
				Explanation: "not hashed",
			},
		},
	}
}

func TestHash_Deterministic(t *testing.T) {
	a := Hash(hashFixture())
	b := Hash(hashFixture())
	if a != b {
		t.Fatalf("same content hashed differently: %q vs %q", a, b)
	}
	if a == "" {
		t.Fatal("empty hash")
	}
}

func TestHash_SensitiveToGradedContent(t *testing.T) {
	base := Hash(hashFixture())

	optionEdit := hashFixture()
	optionEdit.Questions[0].Options[1].Text = "Linear scan"
	if Hash(optionEdit) == base {
		t.Error("option text change not reflected in hash")
	}

	answerEdit := hashFixture()
	answerEdit.Questions[1].Answer = "A"
	if Hash(answerEdit) == base {
		t.Error("answer change not reflected in hash")
	}

	reordered := hashFixture()
	reordered.Questions[0], reordered.Questions[1] = reordered.Questions[1], reordered.Questions[0]
	if Hash(reordered) == base {
		t.Error("question reorder not reflected in hash")
	}
}

func TestHash_IgnoresUngradedContent(t *testing.T) {
	base := Hash(hashFixture())

	explEdit := hashFixture()
	explEdit.Questions[0].Explanation = "reworded explanation"
	if Hash(explEdit) != base {
		t.Error("explanation edit must not invalidate sessions")
	}
}

func TestHash_FieldBoundaries(t *testing.T) {
	// Length prefixing keeps adjacent fields from colliding by shifting
	// characters across the boundary.
	a := &Quiz{Questions: []Question{{Question: "ab", Answer: "c"}}}
	b := &Quiz{Questions: []Question{{Question: "a", Answer: "bc"}}}
	if Hash(a) == Hash(b) {
		t.Error("boundary shift collided")
	}
}
