package provider

import (
	"fmt"
	"net/http"
	"strings"
)

// Settings is the resolved configuration for one adapter.
type Settings struct {
	ID        string
	Type      string
	Model     string
	Mode      OutputMode
	APIKey    string
	BaseURL   string
	MaxTokens int
	// StubAnswer is the letter a stub adapter returns for every question.
	StubAnswer string
}

type base struct {
	id    string
	model string
	mode  OutputMode
}

func (b base) ID() string       { return b.id }
func (b base) Model() string    { return b.model }
func (b base) Mode() OutputMode { return b.mode }

// Build constructs adapters in the given order.
func Build(settings []Settings, client HTTPDoer) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(settings))
	seen := map[string]struct{}{}
	for _, entry := range settings {
		if _, exists := seen[entry.ID]; exists {
			return nil, fmt.Errorf("duplicate provider id %q", entry.ID)
		}
		seen[entry.ID] = struct{}{}
		adapter, err := New(entry, client)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

// New constructs one adapter from settings.
func New(settings Settings, client HTTPDoer) (Adapter, error) {
	resolved, err := resolveSettings(settings)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	switch resolved.Type {
	case TypeOpenAI:
		return NewOpenAI(resolved, client), nil
	case TypeAnthropic:
		return NewAnthropic(resolved, client), nil
	case TypeGemini:
		return NewGemini(resolved, client), nil
	case TypeOpenRouter:
		return NewOpenRouter(resolved, client), nil
	case TypeStub:
		return NewStub(resolved), nil
	default:
		return nil, fmt.Errorf("provider %q: unsupported type %q", resolved.ID, resolved.Type)
	}
}

func resolveSettings(settings Settings) (Settings, error) {
	settings.ID = strings.TrimSpace(settings.ID)
	settings.Type = strings.ToLower(strings.TrimSpace(settings.Type))
	settings.Model = strings.TrimSpace(settings.Model)
	if settings.ID == "" {
		return Settings{}, fmt.Errorf("provider id is required")
	}
	if !KnownType(settings.Type) {
		return Settings{}, fmt.Errorf("provider %q: unsupported type %q", settings.ID, settings.Type)
	}
	if settings.Mode == "" {
		settings.Mode = SupportedModes(settings.Type)[0]
	}
	if !SupportsMode(settings.Type, settings.Mode) {
		return Settings{}, fmt.Errorf("provider %q: type %s does not support mode %s", settings.ID, settings.Type, settings.Mode)
	}
	if settings.Type == TypeStub {
		if settings.Model == "" {
			settings.Model = "stub"
		}
		return settings, nil
	}
	if settings.Model == "" {
		return Settings{}, fmt.Errorf("provider %q: model is required", settings.ID)
	}
	if strings.TrimSpace(settings.APIKey) == "" {
		return Settings{}, fmt.Errorf("provider %q: api key is required", settings.ID)
	}
	return settings, nil
}
