package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is a request captured by a JSONServer.
type RecordedRequest struct {
	Path   string
	Header http.Header
	Body   map[string]any
}

// JSONServer replies to every request with a fixed status and payload and
// records what it received.
type JSONServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewJSONServer starts a server closed at test cleanup.
func NewJSONServer(t testing.TB, status int, payload string) *JSONServer {
	t.Helper()
	server := &JSONServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read request body: %v", err)
		}
		var body map[string]any
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &body); err != nil {
				t.Errorf("decode request body: %v", err)
			}
		}
		server.mu.Lock()
		server.requests = append(server.requests, RecordedRequest{Path: r.URL.Path, Header: r.Header.Clone(), Body: body})
		server.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, payload)
	}))
	t.Cleanup(server.Close)
	return server
}

// Requests returns a copy of the captured requests.
func (s *JSONServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Last returns the most recent request or fails the test.
func (s *JSONServer) Last(t testing.TB) RecordedRequest {
	t.Helper()
	requests := s.Requests()
	if len(requests) == 0 {
		t.Fatalf("no requests recorded")
	}
	return requests[len(requests)-1]
}
