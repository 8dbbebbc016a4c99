package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pmorken/kinsource/internal/model"
)

func testClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestGet_InjectsHeaders(t *testing.T) {
	var gotAuth, gotAccept, gotUA, gotExtra string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		gotExtra = r.Header.Get("X-Reason")
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	c := testClient(t, Config{AccessToken: "tok123", UserAgent: "kinsource-test"})
	_, err := c.Get(context.Background(), server.URL, nil, map[string]string{"X-Reason": "unit test"})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotAccept != AcceptHeader {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotUA != "kinsource-test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotExtra != "unit test" {
		t.Errorf("X-Reason = %q", gotExtra)
	}
}

func TestGet_AppendsParams(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	c := testClient(t, Config{})
	params := url.Values{"person": []string{"P1"}, "access_token": []string{"x"}}
	if _, err := c.Get(context.Background(), server.URL+"/platform/sources?a=1", params, nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if gotQuery.Get("person") != "P1" || gotQuery.Get("a") != "1" {
		t.Errorf("query params lost: %v", gotQuery)
	}
}

func TestGet_DecodesEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"persons":[{"id":"P1"}],"sourceDescriptions":[{"id":"5"}]}`)
	}))
	defer server.Close()

	c := testClient(t, Config{})
	resp, err := c.Get(context.Background(), server.URL, nil, nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	env, err := resp.Data()
	if err != nil {
		t.Fatalf("Data failed: %v", err)
	}
	if len(env.Persons) != 1 || env.Persons[0].ID != "P1" {
		t.Errorf("unexpected persons: %+v", env.Persons)
	}
	if len(env.SourceDescriptions) != 1 || env.SourceDescriptions[0].ID != "5" {
		t.Errorf("unexpected descriptions: %+v", env.SourceDescriptions)
	}
}

func TestGet_RetriesTransientFailures(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	origSleep := sleepFunc
	sleepFunc = func(d time.Duration) {}
	defer func() { sleepFunc = origSleep }()

	c := testClient(t, Config{})
	if _, err := c.Get(context.Background(), server.URL, nil, nil); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts.Load())
	}
}

func TestGet_DoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	origSleep := sleepFunc
	sleepFunc = func(d time.Duration) {}
	defer func() { sleepFunc = origSleep }()

	c := testClient(t, Config{})
	_, err := c.Get(context.Background(), server.URL, nil, nil)
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if attempts.Load() != 1 {
		t.Errorf("404 must not be retried, got %d attempts", attempts.Load())
	}
}

func TestPost_SendsPayloadAndReturnsLocation(t *testing.T) {
	var gotBody model.Envelope
	var gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Location", "https://example.org/platform/sources/descriptions/NEW-1")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	payload := &model.Envelope{
		SourceDescriptions: []model.SourceDescription{{About: "https://example.org/record/1"}},
	}

	c := testClient(t, Config{})
	resp, err := c.Post(context.Background(), server.URL, payload, nil)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}

	if gotContentType != AcceptHeader {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if len(gotBody.SourceDescriptions) != 1 {
		t.Errorf("payload not delivered: %+v", gotBody)
	}
	if loc := resp.Location(); loc != "https://example.org/platform/sources/descriptions/NEW-1" {
		t.Errorf("Location = %q", loc)
	}
}

func TestDel_Succeeds(t *testing.T) {
	var gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := testClient(t, Config{})
	resp, err := c.Del(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("Del failed: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q", gotMethod)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestGet_BodySizeCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i := 0; i < 1000; i++ {
			_, _ = fmt.Fprint(w, "xxxxxxxxxx")
		}
	}))
	defer server.Close()

	c := testClient(t, Config{MaxBodyBytes: 100})
	resp, err := c.Get(context.Background(), server.URL, nil, nil)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(resp.Body) != 100 {
		t.Errorf("expected body capped at 100 bytes, got %d", len(resp.Body))
	}
}

func TestResponse_HeaderMissing(t *testing.T) {
	r := &Response{}
	if got := r.Header("Location"); got != "" {
		t.Errorf("expected empty header, got %q", got)
	}
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err       string
		retryable bool
	}{
		{"unexpected status: 503 503 Service Unavailable", true},
		{"unexpected status: 500 500 Internal Server Error", true},
		{"unexpected status: 429 429 Too Many Requests", true},
		{"unexpected status: 404 404 Not Found", false},
		{"unexpected status: 401 401 Unauthorized", false},
		{"request: dial tcp: connection refused", true},
		{"request: read tcp: connection reset by peer", true},
		{"create request: invalid URL", false},
		{"read body: unexpected EOF", false},
	}

	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			err := fmt.Errorf("%s", tt.err)
			if got := isRetryableError(err); got != tt.retryable {
				t.Errorf("isRetryableError(%q) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestIsRetryableError_Nil(t *testing.T) {
	if isRetryableError(nil) {
		t.Error("nil error must not be retryable")
	}
}
