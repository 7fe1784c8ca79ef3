package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"mbebench/internal/question"
)

// OpenAIAdapter answers through the OpenAI chat completions API.
type OpenAIAdapter struct {
	base
	client    *openai.Client
	maxTokens int
}

// NewOpenAI builds an OpenAI adapter from resolved settings.
func NewOpenAI(settings Settings, client HTTPDoer) *OpenAIAdapter {
	config := openai.DefaultConfig(settings.APIKey)
	if strings.TrimSpace(settings.BaseURL) != "" {
		config.BaseURL = strings.TrimRight(settings.BaseURL, "/")
	}
	if client != nil {
		config.HTTPClient = client
	}
	return &OpenAIAdapter{
		base:      base{id: settings.ID, model: settings.Model, mode: settings.Mode},
		client:    openai.NewClientWithConfig(config),
		maxTokens: settings.MaxTokens,
	}
}

// Answer sends one chat completion and extracts the structured letter.
func (a *OpenAIAdapter) Answer(ctx context.Context, item question.Question) (Response, error) {
	request := openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(a.mode, item)},
		},
		MaxCompletionTokens: a.maxTokens,
	}
	if a.mode == ModeToolCall {
		request.Tools = []openai.Tool{{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        answerToolName,
				Description: answerToolDescription,
				Strict:      true,
				Parameters:  json.RawMessage(answerSchemaJSON),
			},
		}}
		request.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: answerToolName},
		}
	} else {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "mbe_answer",
				Schema: json.RawMessage(answerSchemaJSON),
				Strict: true,
			},
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return Response{}, a.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, &UnparseableResponseError{Provider: a.id, Reason: "no choices returned"}
	}
	message := resp.Choices[0].Message
	if a.mode == ModeToolCall {
		for _, call := range message.ToolCalls {
			if call.Function.Name == answerToolName {
				return decodeAnswer(a.id, call.Function.Arguments)
			}
		}
		return Response{}, &UnparseableResponseError{Provider: a.id, Raw: message.Content, Reason: "no submit_answer tool call"}
	}
	return decodeAnswer(a.id, message.Content)
}

func (a *OpenAIAdapter) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Provider: a.id, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Provider: a.id, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &ProviderError{Provider: a.id, Err: fmt.Errorf("create chat completion: %w", err)}
}
