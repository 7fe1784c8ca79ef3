package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"mbebench/internal/question"
	"mbebench/internal/testutil"
)

func sampleQuestion() question.Question {
	return question.Question{
		ID:          7,
		Subject:     question.Torts,
		FactPattern: "A hiker fell on a trail.",
		Stem:        "Is the park liable?",
		Choices: []question.Choice{
			{Label: question.LetterA, Text: "Yes"},
			{Label: question.LetterB, Text: "No"},
			{Label: question.LetterC, Text: "Only if warned"},
			{Label: question.LetterD, Text: "Only if paid"},
		},
		CorrectAnswer: question.LetterB,
	}
}

func newAdapter(t *testing.T, settings Settings, client HTTPDoer) Adapter {
	t.Helper()
	adapter, err := New(settings, client)
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	return adapter
}

// TestDecodeAnswerSchemaGuard verifies the shared answer schema.
func TestDecodeAnswerSchemaGuard(t *testing.T) {
	resp, err := decodeAnswer("p", `{"answer":"C"}`)
	if err != nil || resp.Letter != question.LetterC {
		t.Fatalf("expected C, got %+v %v", resp, err)
	}
	for _, raw := range []string{`{"answer":"b"}`, `{"answer":" C "}`, `{"answer":"E"}`, `{"answer":"A","extra":1}`, `{}`, `not json`, ``, `{"answer":1}`} {
		_, err := decodeAnswer("p", raw)
		var unparseable *UnparseableResponseError
		if !errors.As(err, &unparseable) {
			t.Fatalf("expected unparseable error for %q, got %v", raw, err)
		}
		if unparseable.Raw != raw {
			t.Fatalf("expected raw payload preserved, got %q", unparseable.Raw)
		}
	}
}

// TestBuildPromptInstructions verifies mode-specific instructions.
func TestBuildPromptInstructions(t *testing.T) {
	prompt := BuildPrompt(ModeJSONSchema, sampleQuestion())
	if !strings.HasPrefix(prompt, "Answer the following multiple choice question. Respond with ONLY the letter") {
		t.Fatalf("unexpected prompt: %q", prompt)
	}
	if !strings.Contains(prompt, "\n\nA hiker fell on a trail.\n\nIs the park liable?\n\n(A) Yes\n") {
		t.Fatalf("prompt missing question body: %q", prompt)
	}
	if !strings.Contains(BuildPrompt(ModeToolCall, sampleQuestion()), "Use the submit_answer tool") {
		t.Fatalf("tool prompt missing tool instruction")
	}
}

// TestOpenAIJSONSchema verifies the OpenAI structured output request.
func TestOpenAIJSONSchema(t *testing.T) {
	server := testutil.NewJSONServer(t, http.StatusOK, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"answer\":\"B\"}"},"finish_reason":"stop"}]}`)
	adapter := newAdapter(t, Settings{ID: "openai", Type: TypeOpenAI, Model: "gpt-5.2", APIKey: "key", BaseURL: server.URL}, server.Client())
	resp, err := adapter.Answer(context.Background(), sampleQuestion())
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if resp.Letter != question.LetterB {
		t.Fatalf("expected B, got %q", resp.Letter)
	}

	req := server.Last(t)
	if req.Path != "/chat/completions" {
		t.Fatalf("unexpected path %s", req.Path)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer key" {
		t.Fatalf("unexpected auth header %q", got)
	}
	format, _ := req.Body["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("unexpected response_format %v", req.Body["response_format"])
	}
	schema, _ := format["json_schema"].(map[string]any)
	if schema["name"] != "mbe_answer" || schema["strict"] != true {
		t.Fatalf("unexpected json_schema %v", schema)
	}
}

// TestOpenAIToolCall verifies forced function calling.
func TestOpenAIToolCall(t *testing.T) {
	server := testutil.NewJSONServer(t, http.StatusOK, `{"choices":[{"index":0,"message":{"role":"assistant","tool_calls":[{"id":"c1","type":"function","function":{"name":"submit_answer","arguments":"{\"answer\":\"D\"}"}}]}}]}`)
	adapter := newAdapter(t, Settings{ID: "openai", Type: TypeOpenAI, Model: "gpt-5.2", Mode: ModeToolCall, APIKey: "key", BaseURL: server.URL}, server.Client())
	resp, err := adapter.Answer(context.Background(), sampleQuestion())
	if err != nil || resp.Letter != question.LetterD {
		t.Fatalf("expected D, got %+v %v", resp, err)
	}
	choice, _ := server.Last(t).Body["tool_choice"].(map[string]any)
	function, _ := choice["function"].(map[string]any)
	if function["name"] != "submit_answer" {
		t.Fatalf("unexpected tool_choice %v", choice)
	}
}

// TestOpenAIStatusError verifies non-2xx responses become ProviderError.
func TestOpenAIStatusError(t *testing.T) {
	server := testutil.NewJSONServer(t, http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"rate_limit"}}`)
	adapter := newAdapter(t, Settings{ID: "openai", Type: TypeOpenAI, Model: "gpt-5.2", APIKey: "key", BaseURL: server.URL}, server.Client())
	_, err := adapter.Answer(context.Background(), sampleQuestion())
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected ProviderError, got %T %v", err, err)
	}
	if providerErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", providerErr.StatusCode)
	}
}

// TestAnthropicToolUse verifies the Messages request and tool extraction.
func TestAnthropicToolUse(t *testing.T) {
	server := testutil.NewJSONServer(t, http.StatusOK, `{"content":[{"type":"text","text":"thinking"},{"type":"tool_use","id":"t1","name":"submit_answer","input":{"answer":"A"}}]}`)
	adapter := newAdapter(t, Settings{ID: "claude", Type: TypeAnthropic, Model: "claude-opus-4-5-20251101", APIKey: "key", BaseURL: server.URL}, server.Client())
	if adapter.Mode() != ModeToolCall {
		t.Fatalf("expected tool_call mode, got %s", adapter.Mode())
	}
	resp, err := adapter.Answer(context.Background(), sampleQuestion())
	if err != nil || resp.Letter != question.LetterA {
		t.Fatalf("expected A, got %+v %v", resp, err)
	}

	req := server.Last(t)
	if req.Path != "/messages" {
		t.Fatalf("unexpected path %s", req.Path)
	}
	if req.Header.Get("x-api-key") != "key" || req.Header.Get("anthropic-version") == "" {
		t.Fatalf("missing anthropic headers")
	}
	if req.Body["max_tokens"] != float64(100) {
		t.Fatalf("expected default max_tokens 100, got %v", req.Body["max_tokens"])
	}
	choice, _ := req.Body["tool_choice"].(map[string]any)
	if choice["type"] != "tool" || choice["name"] != "submit_answer" {
		t.Fatalf("unexpected tool_choice %v", choice)
	}
}

// TestAnthropicMissingToolUse verifies text-only replies are unparseable.
func TestAnthropicMissingToolUse(t *testing.T) {
	server := testutil.NewJSONServer(t, http.StatusOK, `{"content":[{"type":"text","text":"B"}]}`)
	adapter := newAdapter(t, Settings{ID: "claude", Type: TypeAnthropic, Model: "m", APIKey: "key", BaseURL: server.URL}, server.Client())
	_, err := adapter.Answer(context.Background(), sampleQuestion())
	var unparseable *UnparseableResponseError
	if !errors.As(err, &unparseable) {
		t.Fatalf("expected unparseable error, got %v", err)
	}
}

// TestGeminiResponseSchema verifies generateContent with a response schema.
func TestGeminiResponseSchema(t *testing.T) {
	server := testutil.NewJSONServer(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"plan","thought":true},{"text":"{\"answer\": \"C\"}"}]}}]}`)
	adapter := newAdapter(t, Settings{ID: "gemini", Type: TypeGemini, Model: "gemini-3-pro-preview", APIKey: "key", BaseURL: server.URL}, server.Client())
	resp, err := adapter.Answer(context.Background(), sampleQuestion())
	if err != nil || resp.Letter != question.LetterC {
		t.Fatalf("expected C, got %+v %v", resp, err)
	}

	req := server.Last(t)
	if req.Path != "/models/gemini-3-pro-preview:generateContent" {
		t.Fatalf("unexpected path %s", req.Path)
	}
	if req.Header.Get("x-goog-api-key") != "key" {
		t.Fatalf("missing api key header")
	}
	config, _ := req.Body["generationConfig"].(map[string]any)
	if config["responseMimeType"] != "application/json" || config["responseSchema"] == nil {
		t.Fatalf("unexpected generationConfig %v", config)
	}
}

// TestGeminiToolCall verifies function calling mode ANY.
func TestGeminiToolCall(t *testing.T) {
	server := testutil.NewJSONServer(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"functionCall":{"name":"submit_answer","args":{"answer":"B"}}}]}}]}`)
	adapter := newAdapter(t, Settings{ID: "gemini", Type: TypeGemini, Model: "g", Mode: ModeToolCall, APIKey: "key", BaseURL: server.URL}, server.Client())
	resp, err := adapter.Answer(context.Background(), sampleQuestion())
	if err != nil || resp.Letter != question.LetterB {
		t.Fatalf("expected B, got %+v %v", resp, err)
	}
	toolConfig, _ := server.Last(t).Body["toolConfig"].(map[string]any)
	calling, _ := toolConfig["functionCallingConfig"].(map[string]any)
	if calling["mode"] != "ANY" {
		t.Fatalf("unexpected toolConfig %v", toolConfig)
	}
}

// TestOpenRouterJSONSchema verifies the OpenRouter request and parsing.
func TestOpenRouterJSONSchema(t *testing.T) {
	server := testutil.NewJSONServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":"{\"answer\":\"A\"}"}}]}`)
	adapter := newAdapter(t, Settings{ID: "router", Type: TypeOpenRouter, Model: "m", APIKey: "key", BaseURL: server.URL}, server.Client())
	resp, err := adapter.Answer(context.Background(), sampleQuestion())
	if err != nil || resp.Letter != question.LetterA {
		t.Fatalf("expected A, got %+v %v", resp, err)
	}
	req := server.Last(t)
	if req.Header.Get("Authorization") != "Bearer key" {
		t.Fatalf("missing bearer token")
	}
	if req.Body["response_format"] == nil {
		t.Fatalf("expected response_format")
	}
}

// TestOpenRouterServerError verifies status and body are surfaced.
func TestOpenRouterServerError(t *testing.T) {
	server := testutil.NewJSONServer(t, http.StatusBadGateway, "upstream down")
	adapter := newAdapter(t, Settings{ID: "router", Type: TypeOpenRouter, Model: "m", APIKey: "key", BaseURL: server.URL}, server.Client())
	_, err := adapter.Answer(context.Background(), sampleQuestion())
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) || providerErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 ProviderError, got %v", err)
	}
	if !strings.Contains(err.Error(), "upstream down") {
		t.Fatalf("expected body in error, got %q", err.Error())
	}
}

// TestBuildValidation verifies settings resolution errors.
func TestBuildValidation(t *testing.T) {
	cases := []Settings{
		{Type: TypeOpenAI, Model: "m", APIKey: "k"},
		{ID: "x", Type: "bard", Model: "m", APIKey: "k"},
		{ID: "x", Type: TypeAnthropic, Model: "m", APIKey: "k", Mode: ModeJSONSchema},
		{ID: "x", Type: TypeGemini, APIKey: "k"},
		{ID: "x", Type: TypeOpenAI, Model: "m"},
	}
	for _, settings := range cases {
		if _, err := New(settings, nil); err == nil {
			t.Fatalf("expected error for %+v", settings)
		}
	}
	if _, err := Build([]Settings{{ID: "s", Type: TypeStub}, {ID: "s", Type: TypeStub}}, nil); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	adapters, err := Build([]Settings{{ID: "s", Type: TypeStub, StubAnswer: "c"}}, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	resp, err := adapters[0].Answer(context.Background(), sampleQuestion())
	if err != nil || resp.Letter != question.LetterC {
		t.Fatalf("expected stub answer C, got %+v %v", resp, err)
	}
}

// TestScriptedDelayHonorsContext verifies cancellation becomes ProviderError.
func TestScriptedDelayHonorsContext(t *testing.T) {
	adapter := &Scripted{ProviderID: "slow", Delay: time.Second, Default: "A"}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := adapter.Answer(ctx, sampleQuestion())
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline ProviderError, got %v", err)
	}
	if adapter.Calls() != 1 {
		t.Fatalf("expected 1 call, got %d", adapter.Calls())
	}
}
