// Package search wraps the external search provider used by topic
// discovery. A mock provider exists for tests.
package search

import (
	"context"
	"errors"
)

// Provider defines the unified interface for search providers.
type Provider interface {
	// Search runs one query and returns ranked results.
	Search(ctx context.Context, query string, config Config) ([]Result, error)

	// GetName returns the name of the search provider.
	GetName() string
}

// Config holds configuration for search requests.
type Config struct {
	MaxResults int    // Maximum number of results to return
	Language   string // Language preference (e.g., "en", "nl")
}

// Result represents a unified search result.
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Rank    int    `json:"rank"`
}

// Errors returned by provider construction.
var (
	ErrMissingAPIKey   = errors.New("search: missing API key")
	ErrMissingSearchID = errors.New("search: missing search engine ID")
)
