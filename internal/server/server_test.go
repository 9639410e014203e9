package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codescout/internal/assistant"
	"codescout/internal/fetch"
)

type stubService struct {
	analyzeN   int
	analyzeErr error
	queryRes   *assistant.QueryResult
	queryErr   error
	status     assistant.Status
}

func (s *stubService) Analyze(ctx context.Context, locator string) (int, error) {
	return s.analyzeN, s.analyzeErr
}

func (s *stubService) Query(ctx context.Context, question string, topK int) (*assistant.QueryResult, error) {
	return s.queryRes, s.queryErr
}

func (s *stubService) Status() assistant.Status { return s.status }

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAnalyzeEndpoint(t *testing.T) {
	api := NewAPI(&stubService{analyzeN: 42}, nil)
	rr := doJSON(t, api.Handler(), http.MethodPost, "/analyze", `{"repo_url":"https://github.com/u/r"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out["unit_count"].(float64) != 42 {
		t.Errorf("unit_count = %v", out["unit_count"])
	}
}

func TestAnalyzeEndpointRejectsBadInput(t *testing.T) {
	api := NewAPI(&stubService{}, nil)
	h := api.Handler()

	if rr := doJSON(t, h, http.MethodPost, "/analyze", `{"repo_url":""}`); rr.Code != http.StatusBadRequest {
		t.Errorf("empty repo_url: status = %d", rr.Code)
	}
	if rr := doJSON(t, h, http.MethodPost, "/analyze", `not json`); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed body: status = %d", rr.Code)
	}
	if rr := doJSON(t, h, http.MethodGet, "/analyze", ""); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET: status = %d", rr.Code)
	}

	api = NewAPI(&stubService{analyzeErr: fetch.ErrInvalidURL}, nil)
	if rr := doJSON(t, api.Handler(), http.MethodPost, "/analyze", `{"repo_url":"ftp://x"}`); rr.Code != http.StatusBadRequest {
		t.Errorf("invalid url: status = %d", rr.Code)
	}
}

func TestQueryEndpoint(t *testing.T) {
	svc := &stubService{queryRes: &assistant.QueryResult{
		Answer:    "it parses files",
		Relevance: "high",
		Sources:   []assistant.SourceRef{{File: "a.py", Name: "f", Lines: "1-3", Similarity: 0.91}},
	}}
	api := NewAPI(svc, nil)
	rr := doJSON(t, api.Handler(), http.MethodPost, "/query", `{"question":"what does f do?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}
	var out assistant.QueryResult
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Answer != "it parses files" || len(out.Sources) != 1 {
		t.Errorf("unexpected body: %+v", out)
	}
}

func TestQueryEndpointPreconditions(t *testing.T) {
	api := NewAPI(&stubService{queryErr: assistant.ErrNotAnalyzed}, nil)
	rr := doJSON(t, api.Handler(), http.MethodPost, "/query", `{"question":"q"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("not analyzed: status = %d", rr.Code)
	}

	api = NewAPI(&stubService{queryErr: assistant.ErrEmptyQuestion}, nil)
	rr = doJSON(t, api.Handler(), http.MethodPost, "/query", `{"question":""}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty question: status = %d", rr.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	svc := &stubService{status: assistant.Status{State: assistant.StateReady, Locator: "https://github.com/u/r", UnitCount: 7}}
	api := NewAPI(svc, nil)
	rr := doJSON(t, api.Handler(), http.MethodGet, "/status", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var out assistant.Status
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.UnitCount != 7 || out.State != assistant.StateReady {
		t.Errorf("unexpected status body: %+v", out)
	}
}

func TestRequestIDGeneratedWhenMissing(t *testing.T) {
	api := NewAPI(&stubService{}, nil)
	rr := doJSON(t, api.Handler(), http.MethodGet, "/healthz", "")
	if got := rr.Header().Get("X-Request-ID"); len(got) < 8 {
		t.Fatalf("expected a generated request id, got %q", got)
	}
}

func TestRequestIDPropagatesFromClient(t *testing.T) {
	api := NewAPI(&stubService{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc123")
	rr := httptest.NewRecorder()
	api.Handler().ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-ID"); got != "abc123" {
		t.Fatalf("expected X-Request-ID to propagate, got %q", got)
	}
}
