package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pagelens/pagelens/internal/app"
	"github.com/pagelens/pagelens/internal/fetcher"
	"github.com/pagelens/pagelens/internal/server"
	"github.com/pagelens/pagelens/internal/summarizer"
	"github.com/pagelens/pagelens/internal/testutil"
)

// stubFetcher serves canned pages and typed failures without touching the
// network.
type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, rawURL string) (*fetcher.Result, error) {
	if !strings.HasPrefix(rawURL, "http") {
		return nil, &fetcher.Error{Kind: fetcher.KindInvalidURL, Message: "Invalid URL format"}
	}
	return &fetcher.Result{
		URL:        rawURL,
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": []string{"text/html"}},
		Body:       []byte(`<html><head><title>Stub</title></head><body><div class="content">hello</div></body></html>`),
	}, nil
}

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	logger := testutil.NoopLogger{}
	orch := app.NewOrchestrator(app.DefaultConfig(), stubFetcher{}, summarizer.NewHeuristic(), logger)

	s := server.NewServer(server.Config{ListenAddr: ":0"}, orch, logger)
	t.Cleanup(func() { s.Close() })
	return s
}

func doJSON(t *testing.T, s http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

// ─── CORS ──────────────────────────────────────────────────────────────

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/jobs", "")

	origin := rec.Header().Get("Access-Control-Allow-Origin")
	if origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

// ─── Analyze ───────────────────────────────────────────────────────────

func TestServer_Analyze(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/analyze", `{"url":"https://example.com/"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var res map[string]any
	decodeJSON(t, rec, &res)
	if res["status"] != "success" {
		t.Errorf("expected status success, got %v", res["status"])
	}
	if res["url"] != "https://example.com/" {
		t.Errorf("expected echoed url, got %v", res["url"])
	}
}

func TestServer_Analyze_PipelineFailureStaysHTTP200(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/analyze", `{"url":"not a url"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with error envelope, got %d", rec.Code)
	}

	var res map[string]any
	decodeJSON(t, rec, &res)
	if res["status"] != "error" {
		t.Errorf("expected status error, got %v", res["status"])
	}
	if res["error"] != "Invalid URL format" {
		t.Errorf("unexpected error message %v", res["error"])
	}
}

func TestServer_Analyze_InvalidJSON(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/analyze", `{invalid}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestServer_Analyze_MissingURL(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/analyze", `{}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestServer_AnalyzeBatch(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/analyze/batch",
		`{"urls":["https://a.example.com/","bad","https://c.example.com/"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var results []map[string]any
	decodeJSON(t, rec, &results)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0]["status"] != "success" || results[1]["status"] != "error" || results[2]["status"] != "success" {
		t.Errorf("unexpected statuses: %v %v %v",
			results[0]["status"], results[1]["status"], results[2]["status"])
	}
}

func TestServer_AnalyzeBatch_EmptyURLs(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/analyze/batch", `{"urls":[]}`)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// ─── Jobs ──────────────────────────────────────────────────────────────

func TestServer_BatchJobLifecycle(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/jobs/batch", `{"urls":["https://a.example.com/"]}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	var job map[string]any
	decodeJSON(t, rec, &job)
	jobID, _ := job["id"].(string)
	if jobID == "" {
		t.Fatal("expected a job ID")
	}

	// Poll until the job finishes.
	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = doJSON(t, s, "GET", "/jobs/"+jobID, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		decodeJSON(t, rec, &job)
		if job["status"] == "done" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job never finished, status %v", job["status"])
		}
		time.Sleep(10 * time.Millisecond)
	}

	results, ok := job["results"].([]any)
	if !ok || len(results) != 1 {
		t.Fatalf("expected 1 result, got %v", job["results"])
	}
}

func TestServer_GetJob_NotFound(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/jobs/definitely-missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServer_CancelJob(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	urls := make([]string, 50)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://example.com/%d", i)
	}
	body, _ := json.Marshal(map[string]any{"urls": urls})

	rec := doJSON(t, s, "POST", "/jobs/batch", string(body))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}
	var job map[string]any
	decodeJSON(t, rec, &job)

	rec = doJSON(t, s, "DELETE", "/jobs/"+job["id"].(string), "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}

// ─── Export ────────────────────────────────────────────────────────────

func TestServer_ExportCSV(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/export/csv", `{"urls":["https://a.example.com/"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "URL,Title,Status") {
		t.Errorf("unexpected CSV header: %q", rec.Body.String())
	}
}

func TestServer_ExportJSON(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/export/json", `{"urls":["https://a.example.com/"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var results []map[string]any
	decodeJSON(t, rec, &results)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
}

// ─── Operational ───────────────────────────────────────────────────────

func TestServer_Healthz(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
