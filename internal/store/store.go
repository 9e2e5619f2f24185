// Package store is the typed facade over the central coordination
// database's REST interface (PostgREST conventions: equality filters,
// order/limit query params, Prefer: return=representation).
package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"seoforge/internal/core"
	"seoforge/internal/httpx"
)

// Gateway performs typed reads and writes against the central store.
// Nothing here retries; retries are the caller's responsibility.
type Gateway struct {
	baseURL    string
	serviceKey string
	http       *httpx.Client
	timeout    time.Duration
}

// New creates a Gateway. baseURL is the store root (no trailing slash).
func New(baseURL, serviceKey string, client *httpx.Client, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		http:       client,
		timeout:    timeout,
	}
}

func (g *Gateway) headers(representation bool) map[string]string {
	h := map[string]string{
		"apikey":        g.serviceKey,
		"Authorization": "Bearer " + g.serviceKey,
	}
	if representation {
		h["Prefer"] = "return=representation"
	}
	return h
}

func (g *Gateway) restURL(table, query string) string {
	u := g.baseURL + "/rest/v1/" + table
	if query != "" {
		u += "?" + query
	}
	return u
}

// ListDueWebsites returns active websites whose next_scheduled_at is at or
// before now.
func (g *Gateway) ListDueWebsites(ctx context.Context, now time.Time) ([]core.Website, error) {
	q := url.Values{}
	q.Set("is_active", "eq.true")
	q.Set("next_scheduled_at", "lte."+now.UTC().Format(time.RFC3339))
	q.Set("select", "*")

	var websites []core.Website
	if err := g.http.JSONRequest(ctx, http.MethodGet, g.restURL("websites", q.Encode()), g.headers(false), nil, g.timeout, &websites); err != nil {
		return nil, fmt.Errorf("list due websites: %w", err)
	}
	return websites, nil
}

// GetWebsite fetches one website by id.
func (g *Gateway) GetWebsite(ctx context.Context, id string) (*core.Website, error) {
	q := url.Values{}
	q.Set("id", "eq."+id)
	q.Set("select", "*")

	var websites []core.Website
	if err := g.http.JSONRequest(ctx, http.MethodGet, g.restURL("websites", q.Encode()), g.headers(false), nil, g.timeout, &websites); err != nil {
		return nil, fmt.Errorf("get website %s: %w", id, err)
	}
	if len(websites) == 0 {
		return nil, fmt.Errorf("website %s not found", id)
	}
	return &websites[0], nil
}

// GetAPIKeys fetches the credentials bundle for a website, nil when absent.
func (g *Gateway) GetAPIKeys(ctx context.Context, websiteID string) (*core.APIKeys, error) {
	q := url.Values{}
	q.Set("website_id", "eq."+websiteID)
	q.Set("select", "*")

	var keys []core.APIKeys
	if err := g.http.JSONRequest(ctx, http.MethodGet, g.restURL("api_keys", q.Encode()), g.headers(false), nil, g.timeout, &keys); err != nil {
		return nil, fmt.Errorf("get api keys for %s: %w", websiteID, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	return &keys[0], nil
}

// GetWebsiteScan fetches the cached scan for a website, nil when absent.
func (g *Gateway) GetWebsiteScan(ctx context.Context, websiteID string) (*core.WebsiteScan, error) {
	q := url.Values{}
	q.Set("website_id", "eq."+websiteID)
	q.Set("select", "*")

	var scans []core.WebsiteScan
	if err := g.http.JSONRequest(ctx, http.MethodGet, g.restURL("website_scans", q.Encode()), g.headers(false), nil, g.timeout, &scans); err != nil {
		return nil, fmt.Errorf("get website scan for %s: %w", websiteID, err)
	}
	if len(scans) == 0 {
		return nil, nil
	}
	return &scans[0], nil
}

// UpsertWebsiteScan writes the scan record, merging on website_id so the
// one-row-per-website uniqueness holds.
func (g *Gateway) UpsertWebsiteScan(ctx context.Context, scan core.WebsiteScan) error {
	h := g.headers(false)
	h["Prefer"] = "resolution=merge-duplicates"
	u := g.restURL("website_scans", "on_conflict=website_id")
	if err := g.http.JSONRequest(ctx, http.MethodPost, u, h, scan, g.timeout, nil); err != nil {
		return fmt.Errorf("upsert website scan for %s: %w", scan.WebsiteID, err)
	}
	return nil
}

// SetScanStatus updates only the scan's status (and error message, when
// non-empty) without touching the extracted content.
func (g *Gateway) SetScanStatus(ctx context.Context, websiteID string, status core.ScanStatus, errMsg string) error {
	patch := map[string]any{"status": status}
	if errMsg != "" {
		patch["error_message"] = errMsg
	}
	q := url.Values{}
	q.Set("website_id", "eq."+websiteID)
	if err := g.http.JSONRequest(ctx, http.MethodPatch, g.restURL("website_scans", q.Encode()), g.headers(false), patch, g.timeout, nil); err != nil {
		return fmt.Errorf("set scan status for %s: %w", websiteID, err)
	}
	return nil
}

// FindUnusedTopic returns the highest-priority unused topic, nil when none.
func (g *Gateway) FindUnusedTopic(ctx context.Context, websiteID string) (*core.Topic, error) {
	q := url.Values{}
	q.Set("website_id", "eq."+websiteID)
	q.Set("is_used", "eq.false")
	q.Set("order", "priority.desc")
	q.Set("limit", "1")

	var topics []core.Topic
	if err := g.http.JSONRequest(ctx, http.MethodGet, g.restURL("topics", q.Encode()), g.headers(false), nil, g.timeout, &topics); err != nil {
		return nil, fmt.Errorf("find unused topic for %s: %w", websiteID, err)
	}
	if len(topics) == 0 {
		return nil, nil
	}
	return &topics[0], nil
}

// FindReusableTopic returns the least-reused topic under the use cap,
// highest priority first. Nil when none.
func (g *Gateway) FindReusableTopic(ctx context.Context, websiteID string, maxUses int) (*core.Topic, error) {
	q := url.Values{}
	q.Set("website_id", "eq."+websiteID)
	q.Set("times_used", fmt.Sprintf("lt.%d", maxUses))
	q.Set("order", "priority.desc,times_used.asc")
	q.Set("limit", "1")

	var topics []core.Topic
	if err := g.http.JSONRequest(ctx, http.MethodGet, g.restURL("topics", q.Encode()), g.headers(false), nil, g.timeout, &topics); err != nil {
		return nil, fmt.Errorf("find reusable topic for %s: %w", websiteID, err)
	}
	if len(topics) == 0 {
		return nil, nil
	}
	return &topics[0], nil
}

// InsertTopic persists a topic and returns the stored row (with id).
func (g *Gateway) InsertTopic(ctx context.Context, topic core.Topic) (*core.Topic, error) {
	var saved []core.Topic
	if err := g.http.JSONRequest(ctx, http.MethodPost, g.restURL("topics", ""), g.headers(true), topic, g.timeout, &saved); err != nil {
		return nil, fmt.Errorf("insert topic %q: %w", topic.Title, err)
	}
	if len(saved) == 0 {
		return nil, fmt.Errorf("insert topic %q: store returned no row", topic.Title)
	}
	return &saved[0], nil
}

// MarkTopicUsed increments times_used and terminates the topic when the
// cap is reached. The counter is read immediately before the write; the
// gateway is the single place to swap in a server-side atomic update.
func (g *Gateway) MarkTopicUsed(ctx context.Context, topicID string, maxUses int) error {
	q := url.Values{}
	q.Set("id", "eq."+topicID)
	q.Set("select", "times_used")

	var rows []struct {
		TimesUsed int `json:"times_used"`
	}
	if err := g.http.JSONRequest(ctx, http.MethodGet, g.restURL("topics", q.Encode()), g.headers(false), nil, g.timeout, &rows); err != nil {
		return fmt.Errorf("read topic %s counter: %w", topicID, err)
	}
	timesUsed := 0
	if len(rows) > 0 {
		timesUsed = rows[0].TimesUsed
	}

	next := timesUsed + 1
	patch := map[string]any{
		"times_used": next,
		"is_used":    next >= maxUses,
		"used_at":    time.Now().UTC().Format(time.RFC3339),
	}

	pq := url.Values{}
	pq.Set("id", "eq."+topicID)
	if err := g.http.JSONRequest(ctx, http.MethodPatch, g.restURL("topics", pq.Encode()), g.headers(false), patch, g.timeout, nil); err != nil {
		return fmt.Errorf("mark topic %s used: %w", topicID, err)
	}
	return nil
}

// CreateGenerationLog opens a "generating" log row and returns its id.
func (g *Gateway) CreateGenerationLog(ctx context.Context, websiteID, topicID string) (string, error) {
	record := map[string]any{
		"website_id": websiteID,
		"topic_id":   topicID,
		"status":     core.LogGenerating,
		"started_at": time.Now().UTC().Format(time.RFC3339),
	}

	var saved []struct {
		ID string `json:"id"`
	}
	if err := g.http.JSONRequest(ctx, http.MethodPost, g.restURL("generation_logs", ""), g.headers(true), record, g.timeout, &saved); err != nil {
		return "", fmt.Errorf("create generation log: %w", err)
	}
	if len(saved) == 0 {
		return "", fmt.Errorf("create generation log: store returned no row")
	}
	return saved[0].ID, nil
}

// LogResult carries the success fields written on finalize.
type LogResult struct {
	ArticleTitle string
	ArticleSlug  string
	APIUsed      string
	SEOScore     int
}

// FinalizeGenerationLog closes a log row exactly once as success or failed.
func (g *Gateway) FinalizeGenerationLog(ctx context.Context, logID, status, errMsg string, result *LogResult) error {
	patch := map[string]any{
		"status":       status,
		"completed_at": time.Now().UTC().Format(time.RFC3339),
	}
	if errMsg != "" {
		patch["error_message"] = errMsg
	}
	if result != nil {
		patch["article_title"] = result.ArticleTitle
		patch["article_slug"] = result.ArticleSlug
		patch["api_used"] = result.APIUsed
		patch["seo_score"] = result.SEOScore
	}

	q := url.Values{}
	q.Set("id", "eq."+logID)
	if err := g.http.JSONRequest(ctx, http.MethodPatch, g.restURL("generation_logs", q.Encode()), g.headers(false), patch, g.timeout, nil); err != nil {
		return fmt.Errorf("finalize generation log %s: %w", logID, err)
	}
	return nil
}

// UpdateWebsiteAfterRun advances the schedule and rotation bookkeeping
// after a successful publish.
func (g *Gateway) UpdateWebsiteAfterRun(ctx context.Context, websiteID string, nextRun time.Time, lastAPI string, recentFormats []string, lastPostingHour int) error {
	patch := map[string]any{
		"last_generated_at": time.Now().UTC().Format(time.RFC3339),
		"next_scheduled_at": nextRun.UTC().Format(time.RFC3339),
		"last_api_used":     lastAPI,
		"recent_formats":    recentFormats,
		"last_posting_hour": lastPostingHour,
	}

	q := url.Values{}
	q.Set("id", "eq."+websiteID)
	if err := g.http.JSONRequest(ctx, http.MethodPatch, g.restURL("websites", q.Encode()), g.headers(false), patch, g.timeout, nil); err != nil {
		return fmt.Errorf("update website %s after run: %w", websiteID, err)
	}
	return nil
}
