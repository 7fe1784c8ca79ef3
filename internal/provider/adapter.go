package provider

import (
	"context"
	"net/http"

	"mbebench/internal/question"
)

// OutputMode selects the structured-output mechanism an adapter uses.
type OutputMode string

const (
	// ModeJSONSchema uses an OpenAI-style response_format json_schema.
	ModeJSONSchema OutputMode = "json_schema"
	// ModeResponseSchema uses Gemini responseMimeType + responseSchema.
	ModeResponseSchema OutputMode = "response_schema"
	// ModeToolCall forces a single submit_answer tool invocation.
	ModeToolCall OutputMode = "tool_call"
)

// Provider type names accepted in configuration.
const (
	TypeOpenAI     = "openai"
	TypeAnthropic  = "anthropic"
	TypeGemini     = "gemini"
	TypeOpenRouter = "openrouter"
	TypeStub       = "stub"
)

var supportedModes = map[string][]OutputMode{
	TypeOpenAI:     {ModeJSONSchema, ModeToolCall},
	TypeAnthropic:  {ModeToolCall},
	TypeGemini:     {ModeResponseSchema, ModeToolCall},
	TypeOpenRouter: {ModeJSONSchema, ModeToolCall},
	TypeStub:       {ModeJSONSchema, ModeResponseSchema, ModeToolCall},
}

// SupportedModes lists the output modes a provider type can use. The first
// entry is the default.
func SupportedModes(providerType string) []OutputMode {
	return supportedModes[providerType]
}

// SupportsMode reports whether the provider type can use mode.
func SupportsMode(providerType string, mode OutputMode) bool {
	for _, candidate := range supportedModes[providerType] {
		if candidate == mode {
			return true
		}
	}
	return false
}

// KnownType reports whether providerType names a buildable adapter.
func KnownType(providerType string) bool {
	_, ok := supportedModes[providerType]
	return ok
}

// Response is the outcome of one successful Answer call.
type Response struct {
	Letter question.Letter
	Raw    string
}

// Adapter answers one question through a vendor API.
type Adapter interface {
	ID() string
	Model() string
	Mode() OutputMode
	Answer(ctx context.Context, item question.Question) (Response, error)
}

// HTTPDoer abstracts HTTP clients used by adapters.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	answerToolName        = "submit_answer"
	answerToolDescription = "Submit your answer to the multiple choice question"
	answerFieldDesc       = "The letter of your answer choice"

	letterInstruction = "Answer the following multiple choice question. Respond with ONLY the letter of your answer (A, B, C, or D)."
	toolInstruction   = "Answer the following multiple choice question. Use the submit_answer tool to provide your answer (A, B, C, or D)."
)

// BuildPrompt returns the user message sent for a question in the given mode.
func BuildPrompt(mode OutputMode, item question.Question) string {
	instruction := letterInstruction
	if mode == ModeToolCall {
		instruction = toolInstruction
	}
	return instruction + "\n\n" + question.FormatPrompt(item)
}
