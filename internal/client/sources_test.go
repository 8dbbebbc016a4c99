package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pmorken/kinsource/internal/model"
)

func testConfig(serverURL string) *model.Config {
	cfg := model.DefaultConfig()
	cfg.API.BaseURL = serverURL
	cfg.API.AccessToken = "test-token"
	cfg.HTTP.Timeout = 5 * time.Second
	cfg.Rate.RequestsPerSecond = 0 // No throttling in tests
	cfg.Cache.Enabled = false
	return cfg
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := New(testConfig(serverURL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

const personSourcesBody = `{
	"persons": [{
		"id": "P1",
		"links": {"person": {"href": "https://example.org/platform/tree/persons/P1"}},
		"sources": [
			{"description": "#5", "tags": [{"resource": "http://gedcomx.org/Birth"}]},
			{"description": "https://example.org/platform/sources/descriptions/9"}
		]
	}],
	"sourceDescriptions": [{
		"id": "5",
		"titles": [{"value": "1900 Census"}],
		"citations": [{"value": "1900 US Census, Dubuque, Iowa, sheet 4"}]
	}]
}`

func TestSourceRefs_PersonWithFragment(t *testing.T) {
	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, _ = fmt.Fprint(w, personSourcesBody)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	view, err := c.PersonSourceRefs(context.Background(), "P1")
	if err != nil {
		t.Fatalf("PersonSourceRefs failed: %v", err)
	}

	if gotPath != "/platform/tree/persons/P1/source-references" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("missing bearer token, got %q", gotAuth)
	}

	refs := view.SourceRefs()
	if len(refs) != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}

	// Fragment reference resolves in-envelope
	if refs[0].Resolved == nil || refs[0].Resolved.ID != "5" {
		t.Errorf("fragment #5 did not resolve: %+v", refs[0].Resolved)
	}
	if refs[0].Resolved != nil && refs[0].Resolved.Citation() != "1900 US Census, Dubuque, Iowa, sheet 4" {
		t.Errorf("unexpected citation: %q", refs[0].Resolved.Citation())
	}

	// Absolute reference stays unresolved
	if refs[1].Resolved != nil {
		t.Errorf("absolute ref must not resolve, got %+v", refs[1].Resolved)
	}

	for _, ref := range refs {
		if ref.AttachedEntityID != "P1" {
			t.Errorf("AttachedEntityID = %q", ref.AttachedEntityID)
		}
		if ref.AttachedEntityURL != "https://example.org/platform/tree/persons/P1" {
			t.Errorf("AttachedEntityURL = %q", ref.AttachedEntityURL)
		}
	}
}

func TestSourceRefs_RootPickedFromURL(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = fmt.Fprint(w, `{"childAndParentsRelationships":[{"id":"C1","sources":[{"description":"#1"}]}],"sourceDescriptions":[{"id":"1"}]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	view, err := c.ChildAndParentsSourceRefs(context.Background(), "C1")
	if err != nil {
		t.Fatalf("ChildAndParentsSourceRefs failed: %v", err)
	}

	if gotPath != "/platform/tree/child-and-parents-relationships/C1/source-references" {
		t.Errorf("unexpected path: %s", gotPath)
	}

	refs := view.SourceRefs()
	if len(refs) != 1 || refs[0].AttachedEntityID != "C1" {
		t.Fatalf("expected C1's refs, got %+v", refs)
	}
	if refs[0].Resolved == nil {
		t.Error("fragment should have resolved against envelope descriptions")
	}
}

func TestSourceRefs_UnclassifiableURL(t *testing.T) {
	c := newTestClient(t, "https://example.org")
	_, err := c.SourceRefs(context.Background(), "/platform/somewhere/else")
	if err == nil {
		t.Fatal("expected error for unclassifiable URL")
	}
}

func TestSourceRefs_EmptyCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	view, err := c.PersonSourceRefs(context.Background(), "P1")
	if err != nil {
		t.Fatalf("empty response must not error: %v", err)
	}
	if refs := view.SourceRefs(); len(refs) != 0 {
		t.Errorf("expected no refs, got %d", len(refs))
	}
}

func TestSourcesQuery_MultiEntity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{
			"persons": [{"id": "P1", "sources": [{"description": "#5"}]}],
			"relationships": [{"id": "R1", "sources": [{"description": "#5"}]}],
			"sourceDescriptions": [{"id": "5", "titles": [{"value": "1900 Census"}]}]
		}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	view, err := c.SourcesQuery(context.Background(), "/platform/tree/source-references", nil)
	if err != nil {
		t.Fatalf("SourcesQuery failed: %v", err)
	}

	if got := len(view.PersonSourceRefs()); got != 1 {
		t.Errorf("expected 1 person ref, got %d", got)
	}
	if got := len(view.CoupleSourceRefs()); got != 1 {
		t.Errorf("expected 1 couple ref, got %d", got)
	}
	if sd := view.SourceDescription("5"); sd == nil || sd.Title() != "1900 Census" {
		t.Errorf("description lookup failed: %+v", sd)
	}
}

func TestSourceDescription_ByID(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = fmt.Fprint(w, `{"sourceDescriptions":[{"id":"MM-1","titles":[{"value":"Parish Register"}]}]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	sd, err := c.SourceDescription(context.Background(), "MM-1")
	if err != nil {
		t.Fatalf("SourceDescription failed: %v", err)
	}

	if gotPath != "/platform/sources/descriptions/MM-1" {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if sd == nil || sd.Title() != "Parish Register" {
		t.Errorf("unexpected description: %+v", sd)
	}
}

func TestSourceDescription_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	sd, err := c.SourceDescription(context.Background(), "MM-1")
	if err != nil {
		t.Fatalf("expected silent degradation, got %v", err)
	}
	if sd != nil {
		t.Errorf("expected nil description, got %+v", sd)
	}
}

func TestCreateSourceDescription_Location(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://example.org/platform/sources/descriptions/NEW-1")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	location, err := c.CreateSourceDescription(context.Background(), &model.SourceDescription{
		About: "https://example.org/records/1",
	})
	if err != nil {
		t.Fatalf("CreateSourceDescription failed: %v", err)
	}
	if location != "https://example.org/platform/sources/descriptions/NEW-1" {
		t.Errorf("unexpected location: %s", location)
	}
}

func TestCreateSourceDescription_MissingLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.CreateSourceDescription(context.Background(), &model.SourceDescription{})
	if err == nil {
		t.Fatal("expected error when Location header is missing")
	}
}

func TestSourceDescriptionNotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"sourceDescriptions":[{"id":"MM-1","notes":[{"id":"N1","subject":"Provenance","text":"Copied from microfilm."}]}]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	notes, err := c.SourceDescriptionNotes(context.Background(), "/platform/sources/descriptions/MM-1")
	if err != nil {
		t.Fatalf("SourceDescriptionNotes failed: %v", err)
	}
	if len(notes) != 1 || notes[0].Subject != "Provenance" {
		t.Errorf("unexpected notes: %+v", notes)
	}
}

func TestCurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{"users":[{"id":"U1","contactName":"Ragnhild Morken"}]}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	name, err := c.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if name != "Ragnhild Morken" {
		t.Errorf("unexpected name: %q", name)
	}
}

func TestCurrentUser_NoUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	if _, err := c.CurrentUser(context.Background()); err == nil {
		t.Fatal("expected error for empty users collection")
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	_, err := c.PersonSourceRefs(context.Background(), "P1")
	if err == nil {
		t.Fatal("expected transport failure to propagate")
	}
}

func TestGetEnvelope_CacheSkipsNetwork(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, personSourcesBody)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.Cache.Enabled = true
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := c.PersonSourceRefs(context.Background(), "P1"); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}

	if hits.Load() != 1 {
		t.Errorf("expected 1 network hit with cache enabled, got %d", hits.Load())
	}
}
