package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/loreweaver/loom/internal/provider"
	"github.com/loreweaver/loom/internal/weaver"
	"github.com/loreweaver/loom/pkg/weave"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type stubEngine struct {
	mu    sync.Mutex
	reply string
	err   error
	last  weaver.PromptRequest
	calls int
}

func (s *stubEngine) Prompt(_ context.Context, req weaver.PromptRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = req
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestGateway(t *testing.T, engine promptEngine, mutate func(*Config)) (*Gateway, *httptest.Server) {
	t.Helper()

	cfg := Config{}
	cfg.defaults()
	if mutate != nil {
		mutate(&cfg)
	}

	g := &Gateway{
		config:  cfg,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: NewMetrics(),
		engine:  engine,
		lanes:   weaver.NewLaneLock(),
	}

	srv := httptest.NewServer(g.buildRouter())
	t.Cleanup(srv.Close)
	return g, srv
}

func postPrompt(t *testing.T, srv *httptest.Server, req weave.PromptRequest) (*http.Response, []byte) {
	t.Helper()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := srv.Client().Post(srv.URL+"/v1/prompt", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/prompt: %v", err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}
	return resp, raw
}

// ---------------------------------------------------------------------------
// POST /v1/prompt
// ---------------------------------------------------------------------------

func TestPromptEndpoint_OK(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{reply: "the story continues"}
	_, srv := newTestGateway(t, engine, nil)

	resp, raw := postPrompt(t, srv, weave.PromptRequest{
		System:         "narrate",
		WeavingID:      "weaving-1",
		Message:        "hello",
		AccountID:      42,
		Username:       "Bob",
		PseudoUsername: "-the-bard",
		MaxWords:       25,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, raw)
	}

	var got weave.PromptResponse
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Reply != "the story continues" {
		t.Fatalf("Reply = %q", got.Reply)
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.last.WeavingID.BaseKey() != "weaving-1" {
		t.Fatalf("engine weaving = %q", engine.last.WeavingID.BaseKey())
	}
	if engine.last.AccountID != 42 || engine.last.Username != "Bob" ||
		engine.last.PseudoUsername != "-the-bard" || engine.last.MaxWords != 25 {
		t.Fatalf("engine request = %+v", engine.last)
	}
}

func TestPromptEndpoint_Validation(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{reply: "ok"}
	_, srv := newTestGateway(t, engine, nil)

	tests := []struct {
		name string
		req  weave.PromptRequest
	}{
		{"missing weaving id", weave.PromptRequest{Message: "hi"}},
		{"missing message", weave.PromptRequest{WeavingID: "w"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postPrompt(t, srv, tt.req)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}

	engine.mu.Lock()
	defer engine.mu.Unlock()
	if engine.calls != 0 {
		t.Fatalf("engine called %d times for invalid requests", engine.calls)
	}
}

func TestPromptEndpoint_BadJSON(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, &stubEngine{}, nil)

	resp, err := srv.Client().Post(srv.URL+"/v1/prompt", "application/json", strings.NewReader("{nope"))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPromptEndpoint_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"context length", fmt.Errorf("%w: too big", provider.ErrContextLength), http.StatusRequestEntityTooLarge},
		{"rate limit", fmt.Errorf("%w: %w", weaver.ErrPromptFailed, provider.ErrRateLimit), http.StatusTooManyRequests},
		{"provider down", fmt.Errorf("%w: %w", weaver.ErrPromptFailed, provider.ErrProviderDown), http.StatusServiceUnavailable},
		{"no content", weaver.ErrNoContent, http.StatusBadGateway},
		{"prompt failed", fmt.Errorf("%w: boom", weaver.ErrPromptFailed), http.StatusBadGateway},
		{"storage", fmt.Errorf("%w: disk full", weaver.ErrStorage), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, srv := newTestGateway(t, &stubEngine{err: tt.err}, nil)
			resp, raw := postPrompt(t, srv, weave.PromptRequest{WeavingID: "w", Message: "m"})
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, raw)
			}

			var apiErr weave.ErrorResponse
			if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Error == "" {
				t.Fatalf("error body = %s", raw)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Health, metrics, status
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, &stubEngine{}, nil)

	resp, err := srv.Client().Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var got HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if got.Status != "ok" {
		t.Fatalf("Status = %q", got.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	g, srv := newTestGateway(t, &stubEngine{reply: "ok"}, nil)

	// Drive one prompt through so the counters exist in the exposition.
	resp, _ := postPrompt(t, srv, weave.PromptRequest{WeavingID: "w", Message: "m"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("prompt status = %d", resp.StatusCode)
	}
	g.metrics.ObservePrompt("w", 12, 0, nil)

	mresp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer func() { _ = mresp.Body.Close() }()

	body, _ := io.ReadAll(mresp.Body)
	for _, want := range []string{"loom_prompts_total", "loom_prompt_duration_seconds", "loom_story_context_tokens"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("exposition missing %s:\n%s", want, body)
		}
	}
}

func TestStatusEndpoint_Auth(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, &stubEngine{}, func(c *Config) {
		c.Auth.BearerToken = "sekrit"
	})

	// No credentials.
	resp, err := srv.Client().Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d without credentials, want 401", resp.StatusCode)
	}

	// Wrong token.
	req, _ := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/status", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d with wrong token, want 401", resp.StatusCode)
	}

	// Correct token.
	req, _ = http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL+"/status", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d with valid token, want 200", resp.StatusCode)
	}

	var got StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decoding: %v", err)
	}
}

func TestStatusEndpoint_NotMountedWithoutAuth(t *testing.T) {
	t.Parallel()

	_, srv := newTestGateway(t, &stubEngine{}, nil)

	resp, err := srv.Client().Get(srv.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 when auth is not configured", resp.StatusCode)
	}
}
