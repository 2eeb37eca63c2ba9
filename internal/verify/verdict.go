package verify

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/anupamd/revise/internal/store"
)

const verdictSchemaJSON = `{
	"type": "object",
	"properties": {
		"verdict": {"type": "string", "enum": ["PASS", "FAIL"]},
		"explanation": {"type": "string"}
	},
	"required": ["verdict", "explanation"],
	"additionalProperties": false
}`

var compileVerdictSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var def any
	if err := json.Unmarshal([]byte(verdictSchemaJSON), &def); err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema://answer-verdict.json", def); err != nil {
		return nil, err
	}
	return c.Compile("schema://answer-verdict.json")
})

type verdictOutput struct {
	Verdict     string `json:"verdict"`
	Explanation string `json:"explanation"`
}

// ParseVerdict extracts a verdict and explanation from the grader's
// final accumulated text. The structured contract is a JSON object
// {verdict, explanation}; text that does not satisfy it falls back to
// substring sniffing, and text with no recognizable verdict at all is a
// FAIL — inability to parse never passes a justification.
func ParseVerdict(text string) (store.Verdict, string) {
	var doc any
	if err := json.Unmarshal([]byte(text), &doc); err == nil {
		if schema, err := compileVerdictSchema(); err == nil && schema.Validate(doc) == nil {
			var out verdictOutput
			if err := json.Unmarshal([]byte(text), &out); err == nil {
				return store.Verdict(out.Verdict), out.Explanation
			}
		}
	}

	upper := strings.ToUpper(text)
	if strings.Contains(upper, "PASS") {
		return store.VerdictPass, text
	}
	if strings.Contains(upper, "FAIL") {
		return store.VerdictFail, text
	}
	return store.VerdictFail, text
}
