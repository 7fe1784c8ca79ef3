package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"mbebench/internal/question"
)

const answerSchemaURL = "mbe_answer.json"

// answerSchemaJSON is the structured-output contract shared by every vendor.
const answerSchemaJSON = `{
  "type": "object",
  "properties": {
    "answer": {
      "type": "string",
      "enum": ["A", "B", "C", "D"],
      "description": "The letter of your answer choice"
    }
  },
  "required": ["answer"],
  "additionalProperties": false
}`

var answerSchema = mustCompileAnswerSchema()

func mustCompileAnswerSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(answerSchemaURL, strings.NewReader(answerSchemaJSON)); err != nil {
		panic(fmt.Sprintf("add answer schema: %v", err))
	}
	schema, err := compiler.Compile(answerSchemaURL)
	if err != nil {
		panic(fmt.Sprintf("compile answer schema: %v", err))
	}
	return schema
}

// answerSchemaObject returns the schema as a generic map for vendor payloads.
func answerSchemaObject() map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(answerSchemaJSON), &out); err != nil {
		panic(fmt.Sprintf("decode answer schema: %v", err))
	}
	return out
}

// decodeAnswer validates a JSON answer payload and extracts its letter.
// Surrounding whitespace and lower-case letters are normalized first.
func decodeAnswer(providerID, raw string) (Response, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Response{}, &UnparseableResponseError{Provider: providerID, Raw: raw, Reason: "empty answer payload"}
	}
	var payload any
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return Response{}, &UnparseableResponseError{Provider: providerID, Raw: raw, Reason: fmt.Sprintf("invalid json: %v", err)}
	}
	return validateAnswer(providerID, raw, payload)
}

// validateAnswer checks the payload as received; a lower-case or padded
// letter breaks the enum contract and is reported as unparseable.
func validateAnswer(providerID, raw string, payload any) (Response, error) {
	if err := answerSchema.Validate(payload); err != nil {
		return Response{}, &UnparseableResponseError{Provider: providerID, Raw: raw, Reason: fmt.Sprintf("schema: %v", err)}
	}
	answer, _ := payload.(map[string]any)["answer"].(string)
	letter, ok := question.ParseLetter(answer)
	if !ok {
		return Response{}, &UnparseableResponseError{Provider: providerID, Raw: raw, Reason: fmt.Sprintf("invalid letter %q", answer)}
	}
	return Response{Letter: letter, Raw: raw}, nil
}
