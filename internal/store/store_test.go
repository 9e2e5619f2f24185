package store

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"seoforge/internal/core"
	"seoforge/internal/httpx"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) (*Gateway, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "service-key", httpx.New(), 5*time.Second), srv
}

func TestListDueWebsitesQuery(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/websites" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("is_active") != "eq.true" {
			t.Errorf("missing is_active filter, got %q", q.Get("is_active"))
		}
		if !strings.HasPrefix(q.Get("next_scheduled_at"), "lte.2025-06-10T09:00:00") {
			t.Errorf("bad next_scheduled_at filter %q", q.Get("next_scheduled_at"))
		}
		if r.Header.Get("Authorization") != "Bearer service-key" {
			t.Errorf("missing bearer auth")
		}
		_ = json.NewEncoder(w).Encode([]core.Website{{ID: "w1", Name: "Surf Shop"}})
	})

	websites, err := gw.ListDueWebsites(context.Background(), now)
	if err != nil {
		t.Fatalf("ListDueWebsites failed: %v", err)
	}
	if len(websites) != 1 || websites[0].ID != "w1" {
		t.Errorf("unexpected result %+v", websites)
	}
}

func TestGetAPIKeysAbsent(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("[]"))
	})
	keys, err := gw.GetAPIKeys(context.Background(), "w1")
	if err != nil {
		t.Fatalf("GetAPIKeys failed: %v", err)
	}
	if keys != nil {
		t.Errorf("expected nil for absent keys, got %+v", keys)
	}
}

func TestFindReusableTopicOrdering(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("times_used") != "lt.3" {
			t.Errorf("bad times_used filter %q", q.Get("times_used"))
		}
		if q.Get("order") != "priority.desc,times_used.asc" {
			t.Errorf("bad order %q", q.Get("order"))
		}
		if q.Get("limit") != "1" {
			t.Errorf("bad limit %q", q.Get("limit"))
		}
		_ = json.NewEncoder(w).Encode([]core.Topic{{ID: "t1", Title: "Reusable", TimesUsed: 1}})
	})

	topic, err := gw.FindReusableTopic(context.Background(), "w1", 3)
	if err != nil {
		t.Fatalf("FindReusableTopic failed: %v", err)
	}
	if topic == nil || topic.ID != "t1" {
		t.Errorf("unexpected topic %+v", topic)
	}
}

func TestMarkTopicUsedIncrementsAndTerminates(t *testing.T) {
	var patched map[string]any
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"times_used": 2}]`))
		case http.MethodPatch:
			if err := json.NewDecoder(r.Body).Decode(&patched); err != nil {
				t.Fatalf("bad patch body: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		}
	})

	if err := gw.MarkTopicUsed(context.Background(), "t1", 3); err != nil {
		t.Fatalf("MarkTopicUsed failed: %v", err)
	}
	if patched["times_used"] != float64(3) {
		t.Errorf("expected times_used=3, got %v", patched["times_used"])
	}
	if patched["is_used"] != true {
		t.Errorf("expected is_used=true at the cap, got %v", patched["is_used"])
	}
	if _, ok := patched["used_at"]; !ok {
		t.Error("used_at not written")
	}
}

func TestMarkTopicUsedBelowCap(t *testing.T) {
	var patched map[string]any
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"times_used": 0}]`))
		case http.MethodPatch:
			_ = json.NewDecoder(r.Body).Decode(&patched)
			w.WriteHeader(http.StatusNoContent)
		}
	})

	if err := gw.MarkTopicUsed(context.Background(), "t1", 3); err != nil {
		t.Fatalf("MarkTopicUsed failed: %v", err)
	}
	if patched["times_used"] != float64(1) || patched["is_used"] != false {
		t.Errorf("expected times_used=1 is_used=false, got %v", patched)
	}
}

func TestCreateGenerationLog(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Prefer") != "return=representation" {
			t.Errorf("missing representation preference")
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["status"] != core.LogGenerating {
			t.Errorf("expected generating status, got %v", body["status"])
		}
		_, _ = w.Write([]byte(`[{"id": "log-1"}]`))
	})

	id, err := gw.CreateGenerationLog(context.Background(), "w1", "t1")
	if err != nil {
		t.Fatalf("CreateGenerationLog failed: %v", err)
	}
	if id != "log-1" {
		t.Errorf("expected log-1, got %q", id)
	}
}

func TestUpsertWebsiteScanMergesOnWebsiteID(t *testing.T) {
	gw, _ := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("on_conflict") != "website_id" {
			t.Errorf("missing on_conflict, got %q", r.URL.RawQuery)
		}
		if !strings.Contains(r.Header.Get("Prefer"), "merge-duplicates") {
			t.Errorf("missing merge preference, got %q", r.Header.Get("Prefer"))
		}
		w.WriteHeader(http.StatusCreated)
	})

	scan := core.WebsiteScan{WebsiteID: "w1", Status: core.ScanCompleted}
	if err := gw.UpsertWebsiteScan(context.Background(), scan); err != nil {
		t.Fatalf("UpsertWebsiteScan failed: %v", err)
	}
}

func TestGatewayMapsTransportFailure(t *testing.T) {
	gw, srv := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_ = srv
	if _, err := gw.ListDueWebsites(context.Background(), time.Now()); err == nil {
		t.Error("expected error on 500")
	}
}
