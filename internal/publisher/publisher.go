// Package publisher ships finished articles into each tenant's own article
// table. Tenant schemas differ: optional columns a given tenant never
// migrated are discovered at insert time and dropped from the payload.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"seoforge/internal/core"
	"seoforge/internal/httpx"
	"seoforge/internal/logger"
)

// maxRetries bounds the schema-adaptation loop. The payload shrinks by one
// optional column per retry, so the loop always converges.
const maxRetries = 5

const articleTable = "blog_articles"

// ErrSchemaAdaptationExhausted means unknown-column errors continued past
// the retry budget.
var ErrSchemaAdaptationExhausted = errors.New("publisher: schema adaptation retries exhausted")

// PublishError is any tenant-store rejection that schema adaptation cannot
// recover from.
type PublishError struct {
	Reason string
	Cause  error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publisher: %s", e.Reason)
}

func (e *PublishError) Unwrap() error { return e.Cause }

// requiredColumns must survive every retry; a tenant schema missing one of
// these is misprovisioned and the publish is fatal.
var requiredColumns = map[string]bool{
	"title":        true,
	"slug":         true,
	"content":      true,
	"status":       true,
	"published_at": true,
	"created_at":   true,
}

// optionalColumns enumerates everything the adaptation loop may remove.
var optionalColumns = []string{
	"excerpt", "meta_description", "tags", "primary_keyword", "author",
	"read_time", "category", "seo_score", "product_id", "website_domain",
	"language", "geo_optimized",
}

// PostgREST reports an unknown column either with its own PGRST204 message
// or with the Postgres 42703 text; both quote the column name. Bodies come
// back JSON-encoded, so the 42703 quotes may arrive escaped (`\"col\"`).
var unknownColumnPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[Cc]ould not find the '([A-Za-z0-9_]+)' column`),
	regexp.MustCompile(`column \\?"([A-Za-z0-9_]+)\\?" .* does not exist`),
	regexp.MustCompile(`column ([A-Za-z0-9_]+) does not exist`),
}

var optionalColumnSet = func() map[string]bool {
	m := make(map[string]bool, len(optionalColumns))
	for _, c := range optionalColumns {
		m[c] = true
	}
	return m
}()

// Publisher performs schema-adaptive inserts into tenant stores.
type Publisher struct {
	http    *httpx.Client
	timeout time.Duration
}

// New creates a Publisher sharing the process-wide HTTP client.
func New(client *httpx.Client, timeout time.Duration) *Publisher {
	return &Publisher{http: client, timeout: timeout}
}

// Publish inserts the article into the tenant store at targetURL, removing
// optional columns the tenant schema rejects, up to maxRetries times.
func (p *Publisher) Publish(ctx context.Context, article core.Article, website core.Website, targetURL, targetKey string) error {
	payload := buildPayload(article, website)

	headers := map[string]string{
		"apikey":        targetKey,
		"Authorization": "Bearer " + targetKey,
		"Prefer":        "return=representation",
	}
	u := strings.TrimRight(targetURL, "/") + "/rest/v1/" + articleTable

	for attempt := 0; attempt <= maxRetries; attempt++ {
		var created []map[string]any
		err := p.http.JSONRequest(ctx, http.MethodPost, u, headers, payload, p.timeout, &created)
		if err == nil {
			if len(created) == 0 {
				return &PublishError{Reason: "tenant store returned no created row"}
			}
			return nil
		}

		var httpErr *httpx.HTTPError
		if !errors.As(err, &httpErr) {
			return &PublishError{Reason: "tenant store unreachable", Cause: err}
		}

		column, ok := parseUnknownColumn(httpErr.Body)
		if !ok {
			return &PublishError{Reason: fmt.Sprintf("tenant store rejected insert: status %d", httpErr.StatusCode), Cause: err}
		}
		if requiredColumns[column] {
			return &PublishError{Reason: fmt.Sprintf("tenant schema missing required column %q", column), Cause: err}
		}
		if !optionalColumnSet[column] {
			return &PublishError{Reason: fmt.Sprintf("tenant store rejected unexpected column %q", column), Cause: err}
		}
		if _, present := payload[column]; !present {
			// The store named a column we already removed (or never sent);
			// retrying the same payload cannot make progress.
			return &PublishError{Reason: fmt.Sprintf("tenant store repeatedly rejected column %q", column), Cause: err}
		}

		delete(payload, column)
		logger.Warn("tenant schema missing optional column, retrying without it",
			"column", column, "website", website.Domain, "attempt", attempt+1)
	}

	return ErrSchemaAdaptationExhausted
}

// buildPayload assembles the required core plus the full optional set.
func buildPayload(article core.Article, website core.Website) map[string]any {
	now := time.Now().UTC().Format(time.RFC3339)
	payload := map[string]any{
		"title":        article.Title,
		"slug":         article.Slug,
		"content":      article.Content,
		"status":       "published",
		"published_at": now,
		"created_at":   now,

		"excerpt":          article.Excerpt,
		"meta_description": article.MetaDescription,
		"tags":             article.Tags,
		"primary_keyword":  article.PrimaryKeyword,
		"author":           article.Author,
		"read_time":        article.ReadTime,
		"category":         article.Category,
		"seo_score":        article.SEOScore,
		"product_id":       website.ProductID,
		"website_domain":   website.Domain,
		"language":         article.Language,
		"geo_optimized":    article.GEOOptimized,
	}
	return payload
}

// parseUnknownColumn extracts the offending column name from a tenant
// store error body, when the error is an unknown-column error.
func parseUnknownColumn(body string) (string, bool) {
	for _, re := range unknownColumnPatterns {
		if m := re.FindStringSubmatch(body); m != nil {
			return m[1], true
		}
	}
	return "", false
}
