package search

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"seoforge/internal/logger"
)

// GoogleProvider implements Provider using the Google Custom Search API.
type GoogleProvider struct {
	apiKey   string
	searchID string
}

// NewGoogleProvider creates a Google Custom Search provider.
func NewGoogleProvider(apiKey, searchID string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if searchID == "" {
		return nil, ErrMissingSearchID
	}
	return &GoogleProvider{apiKey: apiKey, searchID: searchID}, nil
}

// GetName returns the name of this provider.
func (g *GoogleProvider) GetName() string {
	return "Google Custom Search"
}

// Search performs one query against the Custom Search API.
func (g *GoogleProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	svc, err := customsearch.NewService(ctx, option.WithAPIKey(g.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}

	num := config.MaxResults
	if num <= 0 || num > 10 { // CSE allows at most 10 results per request
		num = 10
	}

	call := svc.Cse.List().Cx(g.searchID).Q(query).Num(int64(num)).Context(ctx)
	if lang := languageCode(config.Language); lang != "" {
		call = call.Lr("lang_" + lang)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("google custom search failed: %w", err)
	}

	var results []Result
	for i, item := range resp.Items {
		results = append(results, Result{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
			Rank:    i + 1,
		})
	}

	logger.Debug("google custom search completed", "query", query, "results", len(results))
	return results, nil
}

// languageCode reduces a language tag like "en-US" to the two-letter code
// the lr parameter expects.
func languageCode(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return ""
	}
	if idx := strings.IndexAny(tag, "-_"); idx > 0 {
		tag = tag[:idx]
	}
	if len(tag) != 2 {
		return ""
	}
	return tag
}
