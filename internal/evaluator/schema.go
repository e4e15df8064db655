package evaluator

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// replySchema pins the types whose misreading would change the verdict.
// Sub-score values and list items stay loose: Normalize coerces and cleans them.
const replySchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"properties": {
		"document_valide": {"type": "boolean"},
		"raison_rejet": {"type": ["string", "null"]},
		"score_global": {"type": ["number", "string", "null"]},
		"scores": {"type": ["object", "null"]},
		"resume_executif": {"type": ["string", "null"]}
	}
}`

var replySchema = jsonschema.MustCompileString("reply.json", replySchemaJSON)

// validateReply checks the raw model reply before any field is read.
func validateReply(reply string) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(reply)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode reply: %w", err)
	}
	if err := replySchema.Validate(v); err != nil {
		return fmt.Errorf("reply does not match schema: %w", err)
	}
	return nil
}
