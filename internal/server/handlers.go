package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"seoforge/internal/logger"
)

// HealthResponse is the static heartbeat payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   "seoforge",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleIndex lists the available endpoints.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "seoforge",
		"endpoints": []string{
			"/health",
			"/trigger?website_id=",
			"/generate?website_id=",
			"/discover-topics?website_id=&count=",
			"/scan?website_id=",
			"/scan-preview?domain=",
		},
	})
}

// handleTrigger handles GET /trigger and /generate. With website_id it
// runs that website end-to-end; without, it processes all due websites.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if websiteID := r.URL.Query().Get("website_id"); websiteID != "" {
		outcome, err := s.orchestrator.RunWebsite(ctx, websiteID)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respondJSON(w, http.StatusOK, outcome)
		return
	}

	processed, err := s.orchestrator.Tick(ctx, time.Now())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"processed": processed,
		"message":   "tick completed",
	})
}

// handleDiscover handles GET /discover-topics and /discover.
func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	websiteID := r.URL.Query().Get("website_id")
	if websiteID == "" {
		s.respondJSON(w, http.StatusBadRequest, map[string]any{"error": "website_id is required"})
		return
	}
	count := 0
	if raw := r.URL.Query().Get("count"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			count = n
		}
	}

	topics, err := s.orchestrator.DiscoverTopics(r.Context(), websiteID, count)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"discovered": len(topics),
		"topics":     topics,
	})
}

// handleScan handles GET /scan.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	websiteID := r.URL.Query().Get("website_id")
	if websiteID == "" {
		s.respondJSON(w, http.StatusBadRequest, map[string]any{"error": "website_id is required"})
		return
	}

	scan, err := s.orchestrator.ScanWebsite(r.Context(), websiteID)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": scan})
}

// handleScanPreview handles GET /scan-preview?domain=D. Nothing is
// persisted; the crawl result is returned directly.
func (s *Server) handleScanPreview(w http.ResponseWriter, r *http.Request) {
	domain := r.URL.Query().Get("domain")
	if domain == "" {
		s.respondJSON(w, http.StatusBadRequest, map[string]any{"error": "domain is required"})
		return
	}

	scan, err := s.orchestrator.PreviewScan(r.Context(), domain)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": scan})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	logger.Error("request failed", err)
	s.respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
}
