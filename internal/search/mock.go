package search

import "context"

// MockProvider returns canned results for tests.
type MockProvider struct {
	Results map[string][]Result // keyed by query; nil falls back to Default
	Default []Result
	Queries []string // every query seen, in order
	Err     error
}

// NewMockProvider creates an empty mock provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// GetName returns the name of this provider.
func (m *MockProvider) GetName() string { return "Mock" }

// Search records the query and returns the canned results.
func (m *MockProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	if results, ok := m.Results[query]; ok {
		return results, nil
	}
	return m.Default, nil
}
