package main

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
)

func apiEvent(method, path string) events.APIGatewayV2HTTPRequest {
	return events.APIGatewayV2HTTPRequest{
		RawPath: path,
		RequestContext: events.APIGatewayV2HTTPRequestContext{
			HTTP: events.APIGatewayV2HTTPRequestContextHTTPDescription{
				Method:   method,
				Path:     path,
				SourceIP: "203.0.113.9",
			},
		},
	}
}

func TestHandleHealth(t *testing.T) {
	cfg := config{upstreamBaseURL: "http://example.com", upstreamTimeout: time.Second}
	client := &http.Client{Timeout: time.Second}

	resp, err := handle(context.Background(), cfg, client, apiEvent(http.MethodGet, "/health"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if resp.Body != "ok" {
		t.Fatalf("expected ok body, got %q", resp.Body)
	}
}

func TestHandleRoutingRules(t *testing.T) {
	cfg := config{upstreamBaseURL: "http://example.com", upstreamTimeout: time.Second}
	client := &http.Client{Timeout: time.Second}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/webhooks/voice/tools", http.StatusMethodNotAllowed},
		{http.MethodGet, "/tools/book_appointment", http.StatusMethodNotAllowed},
		{http.MethodPost, "/tools/", http.StatusMethodNotAllowed},
		{http.MethodPost, "/webhooks/unknown", http.StatusNotFound},
		{http.MethodPost, "/tools/a/b", http.StatusNotFound},
		{http.MethodPost, "/metrics", http.StatusNotFound},
	}
	for _, tt := range tests {
		resp, err := handle(context.Background(), cfg, client, apiEvent(tt.method, tt.path))
		if err != nil {
			t.Fatalf("%s %s: unexpected error: %v", tt.method, tt.path, err)
		}
		if resp.StatusCode != tt.want {
			t.Fatalf("%s %s: expected status %d, got %d", tt.method, tt.path, tt.want, resp.StatusCode)
		}
	}
}

func TestHandleInvalidBase64Body(t *testing.T) {
	cfg := config{upstreamBaseURL: "http://example.com", upstreamTimeout: time.Second}
	client := &http.Client{Timeout: time.Second}

	evt := apiEvent(http.MethodPost, "/webhooks/voice/tools")
	evt.Body = "not-base64"
	evt.IsBase64Encoded = true

	resp, err := handle(context.Background(), cfg, client, evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	if resp.Body != "invalid body" {
		t.Fatalf("expected invalid body response, got %q", resp.Body)
	}
}

func TestHandleForwardsVoiceToolWebhook(t *testing.T) {
	type captured struct {
		method  string
		path    string
		query   string
		headers http.Header
		body    string
	}
	reqCh := make(chan captured, 1)

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		reqCh <- captured{
			method:  r.Method,
			path:    r.URL.Path,
			query:   r.URL.RawQuery,
			headers: r.Header.Clone(),
			body:    string(body),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Request-Id", "req-42")
		_, _ = w.Write([]byte(`{"response":"Dr.Badr is available at that time."}`))
	}))
	defer upstream.Close()

	client := upstream.Client()
	client.Timeout = time.Second
	cfg := config{upstreamBaseURL: upstream.URL, upstreamTimeout: time.Second}

	evt := apiEvent(http.MethodPost, "/webhooks/voice/tools")
	evt.RawQueryString = "agent=frontdesk"
	evt.Body = `{"tool_name":"check_doctor_availability"}`
	evt.Headers = map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer token",
	}

	resp, err := handle(context.Background(), cfg, client, evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if resp.Body != `{"response":"Dr.Badr is available at that time."}` {
		t.Fatalf("expected upstream body, got %q", resp.Body)
	}
	if ct := resp.Headers["content-type"]; ct != "application/json" {
		t.Fatalf("expected content-type to be forwarded, got %q", ct)
	}
	if rid := resp.Headers["x-request-id"]; rid != "req-42" {
		t.Fatalf("expected request id to be forwarded, got %q", rid)
	}

	select {
	case got := <-reqCh:
		if got.method != http.MethodPost {
			t.Fatalf("expected method POST, got %s", got.method)
		}
		if got.path != "/webhooks/voice/tools" {
			t.Fatalf("expected path /webhooks/voice/tools, got %s", got.path)
		}
		if got.query != "agent=frontdesk" {
			t.Fatalf("expected query agent=frontdesk, got %s", got.query)
		}
		if got.body != `{"tool_name":"check_doctor_availability"}` {
			t.Fatalf("unexpected body %q", got.body)
		}
		if got.headers.Get("Content-Type") != "application/json" {
			t.Fatalf("expected content type to be forwarded, got %q", got.headers.Get("Content-Type"))
		}
		if got.headers.Get("Authorization") != "Bearer token" {
			t.Fatalf("expected authorization to be forwarded, got %q", got.headers.Get("Authorization"))
		}
		if got.headers.Get("X-Forwarded-For") != "203.0.113.9" {
			t.Fatalf("expected source ip to be forwarded, got %q", got.headers.Get("X-Forwarded-For"))
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for upstream request")
	}
}

func TestHandleForwardsToolListing(t *testing.T) {
	var gotPath, gotMethod string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		_, _ = w.Write([]byte(`{"tools":[]}`))
	}))
	defer upstream.Close()

	cfg := config{upstreamBaseURL: upstream.URL, upstreamTimeout: time.Second}
	resp, err := handle(context.Background(), cfg, upstream.Client(), apiEvent(http.MethodGet, "/tools"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if gotPath != "/tools/" || gotMethod != http.MethodGet {
		t.Fatalf("expected GET /tools/, got %s %s", gotMethod, gotPath)
	}
}

func TestHandleUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := upstream.URL
	upstream.Close()

	cfg := config{upstreamBaseURL: url, upstreamTimeout: time.Second}
	resp, err := handle(context.Background(), cfg, &http.Client{Timeout: time.Second}, apiEvent(http.MethodPost, "/tools/current_time_date"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status %d, got %d", http.StatusBadGateway, resp.StatusCode)
	}
}

func TestDecodeBodyBase64(t *testing.T) {
	raw := []byte("hello")
	evt := events.APIGatewayV2HTTPRequest{
		Body:            base64.StdEncoding.EncodeToString(raw),
		IsBase64Encoded: true,
	}

	decoded, err := decodeBody(evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(decoded) != "hello" {
		t.Fatalf("expected decoded body, got %q", string(decoded))
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("UPSTREAM_BASE_URL", "")
	if _, err := loadConfig(); err == nil {
		t.Fatalf("expected error without UPSTREAM_BASE_URL")
	}

	t.Setenv("UPSTREAM_BASE_URL", "https://api.example.com/")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.upstreamBaseURL != "https://api.example.com" || cfg.upstreamTimeout != 3*time.Second {
		t.Fatalf("unexpected config %+v", cfg)
	}

	t.Setenv("UPSTREAM_TIMEOUT", "soon")
	if _, err := loadConfig(); err == nil {
		t.Fatalf("expected error for bad UPSTREAM_TIMEOUT")
	}
}
