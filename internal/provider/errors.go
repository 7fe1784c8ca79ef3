package provider

import (
	"fmt"
	"strings"
)

// ProviderError reports a transport failure, timeout, or non-2xx response.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *ProviderError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s request failed", e.Provider)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " with status %d", e.StatusCode)
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		fmt.Fprintf(&b, ": %s", truncate(body, 300))
	} else if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ProviderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// UnparseableResponseError reports a response with no valid structured answer.
type UnparseableResponseError struct {
	Provider string
	Raw      string
	Reason   string
}

func (e *UnparseableResponseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s returned an unparseable answer: %s", e.Provider, e.Reason)
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + "..."
}
