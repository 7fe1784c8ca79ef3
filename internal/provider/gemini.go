package provider

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"mbebench/internal/question"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiAdapter answers through the Gemini generateContent API.
type GeminiAdapter struct {
	base
	apiKey    string
	baseURL   string
	client    HTTPDoer
	maxTokens int
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
	Tools            []geminiTool            `json:"tools,omitempty"`
	ToolConfig       *geminiToolConfig       `json:"toolConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	Thought      bool                `json:"thought,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
}

type geminiFunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
	MaxOutputTokens  int            `json:"maxOutputTokens,omitempty"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiFunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

type geminiToolConfig struct {
	FunctionCallingConfig geminiFunctionCallingConfig `json:"functionCallingConfig"`
}

type geminiFunctionCallingConfig struct {
	Mode                 string   `json:"mode"`
	AllowedFunctionNames []string `json:"allowedFunctionNames,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// geminiAnswerSchema is the OpenAPI-subset form Gemini accepts.
func geminiAnswerSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"answer": map[string]any{
				"type":        "STRING",
				"enum":        []string{"A", "B", "C", "D"},
				"description": answerFieldDesc,
			},
		},
		"required": []string{"answer"},
	}
}

// NewGemini builds a Gemini adapter from resolved settings.
func NewGemini(settings Settings, client HTTPDoer) *GeminiAdapter {
	return &GeminiAdapter{
		base:      base{id: settings.ID, model: settings.Model, mode: settings.Mode},
		apiKey:    settings.APIKey,
		baseURL:   trimBaseURL(settings.BaseURL, defaultGeminiBaseURL),
		client:    client,
		maxTokens: settings.MaxTokens,
	}
}

// Answer sends one generateContent request and extracts the letter.
func (a *GeminiAdapter) Answer(ctx context.Context, item question.Question) (Response, error) {
	request := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: BuildPrompt(a.mode, item)}},
		}},
	}
	if a.mode == ModeToolCall {
		request.Tools = []geminiTool{{FunctionDeclarations: []geminiFunctionDeclaration{{
			Name:        answerToolName,
			Description: answerToolDescription,
			Parameters:  geminiAnswerSchema(),
		}}}}
		request.ToolConfig = &geminiToolConfig{FunctionCallingConfig: geminiFunctionCallingConfig{
			Mode:                 "ANY",
			AllowedFunctionNames: []string{answerToolName},
		}}
		if a.maxTokens > 0 {
			request.GenerationConfig = &geminiGenerationConfig{MaxOutputTokens: a.maxTokens}
		}
	} else {
		request.GenerationConfig = &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   geminiAnswerSchema(),
			MaxOutputTokens:  a.maxTokens,
		}
	}

	endpoint := a.baseURL + "/models/" + url.PathEscape(a.model) + ":generateContent"
	headers := map[string]string{"x-goog-api-key": a.apiKey}
	var response geminiResponse
	raw, err := postJSON(ctx, a.client, a.id, endpoint, headers, request, &response)
	if err != nil {
		return Response{}, err
	}
	if len(response.Candidates) == 0 {
		return Response{}, &UnparseableResponseError{Provider: a.id, Raw: string(raw), Reason: "no candidates returned"}
	}
	parts := response.Candidates[0].Content.Parts
	if a.mode == ModeToolCall {
		for _, part := range parts {
			if part.FunctionCall != nil && part.FunctionCall.Name == answerToolName {
				return decodeAnswer(a.id, string(part.FunctionCall.Args))
			}
		}
		return Response{}, &UnparseableResponseError{Provider: a.id, Raw: string(raw), Reason: "no submit_answer function call"}
	}
	var text strings.Builder
	for _, part := range parts {
		if part.Thought {
			continue
		}
		text.WriteString(part.Text)
	}
	return decodeAnswer(a.id, text.String())
}
