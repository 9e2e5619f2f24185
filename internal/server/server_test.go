package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"seoforge/internal/config"
	"seoforge/internal/core"
	"seoforge/internal/scheduler"
)

type fakeOrchestrator struct {
	processed   int
	tickErr     error
	outcome     scheduler.RunOutcome
	topics      []core.Topic
	scan        *core.WebsiteScan
	scannedID   string
	previewed   string
	discoverCnt int
}

func (f *fakeOrchestrator) Tick(_ context.Context, _ time.Time) (int, error) {
	return f.processed, f.tickErr
}

func (f *fakeOrchestrator) RunWebsite(_ context.Context, websiteID string) (scheduler.RunOutcome, error) {
	return f.outcome, nil
}

func (f *fakeOrchestrator) DiscoverTopics(_ context.Context, websiteID string, count int) ([]core.Topic, error) {
	f.discoverCnt = count
	return f.topics, nil
}

func (f *fakeOrchestrator) ScanWebsite(_ context.Context, websiteID string) (*core.WebsiteScan, error) {
	f.scannedID = websiteID
	if f.scan == nil {
		return nil, errors.New("scan failed")
	}
	return f.scan, nil
}

func (f *fakeOrchestrator) PreviewScan(_ context.Context, domain string) (*core.WebsiteScan, error) {
	f.previewed = domain
	return f.scan, nil
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response was not JSON: %v\n%s", err, rec.Body.String())
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	s := New(&fakeOrchestrator{}, config.Server{})
	rec, body := get(t, s, "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "ok" || body["service"] != "seoforge" {
		t.Errorf("body = %v", body)
	}
	if body["timestamp"] == "" {
		t.Error("missing timestamp")
	}
}

func TestTriggerAllDue(t *testing.T) {
	orch := &fakeOrchestrator{processed: 3}
	s := New(orch, config.Server{})
	rec, body := get(t, s, "/trigger")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["processed"] != float64(3) {
		t.Errorf("processed = %v", body["processed"])
	}
}

func TestTriggerSingleWebsite(t *testing.T) {
	orch := &fakeOrchestrator{outcome: scheduler.RunOutcome{
		Success:     true,
		ArticleSlug: "how-to-wax-a-surfboard",
		SEOScore:    82,
	}}
	s := New(orch, config.Server{})
	rec, body := get(t, s, "/generate?website_id=w1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["success"] != true || body["article_slug"] != "how-to-wax-a-surfboard" {
		t.Errorf("body = %v", body)
	}
}

func TestTriggerErrorShape(t *testing.T) {
	orch := &fakeOrchestrator{tickErr: errors.New("central store unreachable")}
	s := New(orch, config.Server{})
	rec, body := get(t, s, "/trigger")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["error"] != "central store unreachable" {
		t.Errorf("body = %v", body)
	}
}

func TestDiscoverRequiresWebsiteID(t *testing.T) {
	s := New(&fakeOrchestrator{}, config.Server{})
	rec, body := get(t, s, "/discover")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["error"] == "" {
		t.Error("missing error message")
	}
}

func TestDiscoverPassesCount(t *testing.T) {
	orch := &fakeOrchestrator{topics: []core.Topic{{Title: "T1"}, {Title: "T2"}}}
	s := New(orch, config.Server{})
	rec, body := get(t, s, "/discover-topics?website_id=w1&count=7")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if orch.discoverCnt != 7 {
		t.Errorf("count = %d, want 7", orch.discoverCnt)
	}
	if body["discovered"] != float64(2) {
		t.Errorf("discovered = %v", body["discovered"])
	}
}

func TestScanEndpoint(t *testing.T) {
	orch := &fakeOrchestrator{scan: &core.WebsiteScan{WebsiteID: "w1", Status: core.ScanCompleted}}
	s := New(orch, config.Server{})
	rec, body := get(t, s, "/scan?website_id=w1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if orch.scannedID != "w1" || body["success"] != true {
		t.Errorf("scanned = %q, body = %v", orch.scannedID, body)
	}
}

func TestScanPreviewEndpoint(t *testing.T) {
	orch := &fakeOrchestrator{scan: &core.WebsiteScan{MainKeywords: []string{"surf"}}}
	s := New(orch, config.Server{})
	rec, body := get(t, s, "/scan-preview?domain=example.com")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if orch.previewed != "example.com" {
		t.Errorf("previewed = %q", orch.previewed)
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("missing data: %v", body)
	}
	if kws, ok := data["main_keywords"].([]any); !ok || len(kws) != 1 {
		t.Errorf("main_keywords = %v", data["main_keywords"])
	}
	// No AI analysis ran, so the niche field must not appear at all.
	if _, present := data["niche_description"]; present {
		t.Errorf("niche_description present in preview without analysis: %v", data)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := New(&fakeOrchestrator{}, config.Server{})
	req := httptest.NewRequest(http.MethodOptions, "/trigger", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("missing CORS allow-origin header")
	}
}
