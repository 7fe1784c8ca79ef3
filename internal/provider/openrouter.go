package provider

import (
	"context"
	"encoding/json"

	"mbebench/internal/question"
)

// defaultOpenRouterBaseURL is the default OpenRouter API base URL.
const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterAdapter answers through the OpenAI-compatible OpenRouter API.
type OpenRouterAdapter struct {
	base
	apiKey    string
	baseURL   string
	client    HTTPDoer
	maxTokens int
}

// openRouterRequest is the JSON payload sent to OpenRouter.
type openRouterRequest struct {
	Model          string                    `json:"model"`
	Messages       []openRouterMessage       `json:"messages"`
	MaxTokens      int                       `json:"max_tokens,omitempty"`
	ResponseFormat *openRouterResponseFormat `json:"response_format,omitempty"`
	Tools          []openRouterTool          `json:"tools,omitempty"`
	ToolChoice     any                       `json:"tool_choice,omitempty"`
}

// openRouterMessage represents a single OpenRouter chat message.
type openRouterMessage struct {
	Role      string               `json:"role"`
	Content   string               `json:"content,omitempty"`
	ToolCalls []openRouterToolCall `json:"tool_calls,omitempty"`
}

type openRouterResponseFormat struct {
	Type       string               `json:"type"`
	JSONSchema openRouterJSONSchema `json:"json_schema"`
}

type openRouterJSONSchema struct {
	Name   string          `json:"name"`
	Strict bool            `json:"strict"`
	Schema json.RawMessage `json:"schema"`
}

// openRouterTool describes a function tool for OpenRouter.
type openRouterTool struct {
	Type     string                       `json:"type"`
	Function openRouterFunctionDefinition `json:"function"`
}

// openRouterFunctionDefinition describes a tool's function signature.
type openRouterFunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

// openRouterToolCall represents a tool call emitted by OpenRouter.
type openRouterToolCall struct {
	ID       string                 `json:"id"`
	Type     string                 `json:"type"`
	Function openRouterFunctionCall `json:"function"`
}

// openRouterFunctionCall describes the name and arguments of a tool call.
type openRouterFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openRouterToolChoice struct {
	Type     string                   `json:"type"`
	Function openRouterToolChoiceName `json:"function"`
}

type openRouterToolChoiceName struct {
	Name string `json:"name"`
}

type openRouterResponse struct {
	Choices []struct {
		Message openRouterMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenRouter builds an OpenRouter adapter from resolved settings.
func NewOpenRouter(settings Settings, client HTTPDoer) *OpenRouterAdapter {
	return &OpenRouterAdapter{
		base:      base{id: settings.ID, model: settings.Model, mode: settings.Mode},
		apiKey:    settings.APIKey,
		baseURL:   trimBaseURL(settings.BaseURL, defaultOpenRouterBaseURL),
		client:    client,
		maxTokens: settings.MaxTokens,
	}
}

// Answer sends one chat completion to OpenRouter and extracts the letter.
func (a *OpenRouterAdapter) Answer(ctx context.Context, item question.Question) (Response, error) {
	request := openRouterRequest{
		Model:     a.model,
		Messages:  []openRouterMessage{{Role: "user", Content: BuildPrompt(a.mode, item)}},
		MaxTokens: a.maxTokens,
	}
	if a.mode == ModeToolCall {
		request.Tools = []openRouterTool{{
			Type: "function",
			Function: openRouterFunctionDefinition{
				Name:        answerToolName,
				Description: answerToolDescription,
				Parameters:  json.RawMessage(answerSchemaJSON),
			},
		}}
		request.ToolChoice = openRouterToolChoice{
			Type:     "function",
			Function: openRouterToolChoiceName{Name: answerToolName},
		}
	} else {
		request.ResponseFormat = &openRouterResponseFormat{
			Type: "json_schema",
			JSONSchema: openRouterJSONSchema{
				Name:   "mbe_answer",
				Strict: true,
				Schema: json.RawMessage(answerSchemaJSON),
			},
		}
	}

	headers := map[string]string{"Authorization": "Bearer " + a.apiKey}
	var response openRouterResponse
	raw, err := postJSON(ctx, a.client, a.id, a.baseURL+"/chat/completions", headers, request, &response)
	if err != nil {
		return Response{}, err
	}
	if len(response.Choices) == 0 {
		return Response{}, &UnparseableResponseError{Provider: a.id, Raw: string(raw), Reason: "no choices returned"}
	}
	message := response.Choices[0].Message
	if a.mode == ModeToolCall {
		for _, call := range message.ToolCalls {
			if call.Function.Name == answerToolName {
				return decodeAnswer(a.id, call.Function.Arguments)
			}
		}
		return Response{}, &UnparseableResponseError{Provider: a.id, Raw: string(raw), Reason: "no submit_answer tool call"}
	}
	return decodeAnswer(a.id, message.Content)
}
