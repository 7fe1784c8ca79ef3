package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxResponseBytes caps how much of a vendor response is read.
const maxResponseBytes = 4 << 20

// postJSON sends one JSON request and decodes a 2xx body into out.
// It returns the raw body alongside any error.
func postJSON(ctx context.Context, client HTTPDoer, providerID, endpoint string, headers map[string]string, body, out any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: providerID, Err: err}
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ProviderError{Provider: providerID, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return raw, &ProviderError{
			Provider:   providerID,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return raw, &UnparseableResponseError{Provider: providerID, Raw: string(raw), Reason: fmt.Sprintf("decode response: %v", err)}
	}
	return raw, nil
}

func trimBaseURL(baseURL, fallback string) string {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = fallback
	}
	return strings.TrimRight(baseURL, "/")
}
