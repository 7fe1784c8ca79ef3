package provider

import (
	"context"
	"encoding/json"

	"mbebench/internal/question"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
	defaultAnthropicTokens  = 100
)

// AnthropicAdapter answers through the Anthropic Messages API with a forced
// submit_answer tool.
type AnthropicAdapter struct {
	base
	apiKey    string
	baseURL   string
	client    HTTPDoer
	maxTokens int
}

type anthropicRequest struct {
	Model      string              `json:"model"`
	MaxTokens  int                 `json:"max_tokens"`
	Messages   []anthropicMessage  `json:"messages"`
	Tools      []anthropicTool     `json:"tools"`
	ToolChoice anthropicToolChoice `json:"tool_choice"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
}

type anthropicContentBlock struct {
	Type  string          `json:"type"`
	Name  string          `json:"name,omitempty"`
	Text  string          `json:"text,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// NewAnthropic builds an Anthropic adapter from resolved settings.
func NewAnthropic(settings Settings, client HTTPDoer) *AnthropicAdapter {
	maxTokens := settings.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicTokens
	}
	return &AnthropicAdapter{
		base:      base{id: settings.ID, model: settings.Model, mode: ModeToolCall},
		apiKey:    settings.APIKey,
		baseURL:   trimBaseURL(settings.BaseURL, defaultAnthropicBaseURL),
		client:    client,
		maxTokens: maxTokens,
	}
}

// Answer sends one Messages request and reads the submit_answer tool input.
func (a *AnthropicAdapter) Answer(ctx context.Context, item question.Question) (Response, error) {
	request := anthropicRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: BuildPrompt(ModeToolCall, item)}},
		Tools: []anthropicTool{{
			Name:        answerToolName,
			Description: answerToolDescription,
			InputSchema: answerSchemaObject(),
		}},
		ToolChoice: anthropicToolChoice{Type: "tool", Name: answerToolName},
	}
	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}
	var response anthropicResponse
	raw, err := postJSON(ctx, a.client, a.id, a.baseURL+"/messages", headers, request, &response)
	if err != nil {
		return Response{}, err
	}
	for _, block := range response.Content {
		if block.Type == "tool_use" && block.Name == answerToolName {
			return decodeAnswer(a.id, string(block.Input))
		}
	}
	return Response{}, &UnparseableResponseError{Provider: a.id, Raw: string(raw), Reason: "no submit_answer tool_use block"}
}
