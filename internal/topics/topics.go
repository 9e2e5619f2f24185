// Package topics implements the topic lifecycle: selection with reuse
// counting, bulk discovery via search and AI, and single-topic minting
// for a due run that has nothing queued.
package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"seoforge/internal/catalog"
	"seoforge/internal/core"
	"seoforge/internal/llm"
	"seoforge/internal/logger"
	"seoforge/internal/search"
)

// Store is the slice of the central store the engine needs.
type Store interface {
	FindUnusedTopic(ctx context.Context, websiteID string) (*core.Topic, error)
	FindReusableTopic(ctx context.Context, websiteID string, maxUses int) (*core.Topic, error)
	InsertTopic(ctx context.Context, topic core.Topic) (*core.Topic, error)
	MarkTopicUsed(ctx context.Context, topicID string, maxUses int) error
}

// ScanProvider supplies a usable website scan, running one when needed.
type ScanProvider interface {
	Ensure(ctx context.Context, website core.Website, ai llm.Caller) (*core.WebsiteScan, error)
}

// Engine picks and mints topics for websites.
type Engine struct {
	store  Store
	scans  ScanProvider
	search search.Provider // nil when the platform has no search credentials
}

// New creates an Engine. searchProvider may be nil.
func New(store Store, scans ScanProvider, searchProvider search.Provider) *Engine {
	return &Engine{store: store, scans: scans, search: searchProvider}
}

// NextTopic returns the topic a due run should write about, or nil when
// the website has no work. Selection order: unused first, then reusable
// under the use cap, then a freshly minted topic when auto-generation is
// on and an LLM key exists.
func (e *Engine) NextTopic(ctx context.Context, website core.Website, ai llm.Caller) (*core.Topic, error) {
	topic, err := e.store.FindUnusedTopic(ctx, website.ID)
	if err != nil {
		return nil, err
	}
	if topic != nil {
		return topic, nil
	}

	if website.MaxTopicUses > 1 {
		topic, err = e.store.FindReusableTopic(ctx, website.ID, website.MaxTopicUses)
		if err != nil {
			return nil, err
		}
		if topic != nil {
			return topic, nil
		}
	}

	if website.AutoGenerateTopics && ai != nil {
		return e.mint(ctx, website, ai)
	}
	return nil, nil
}

// MarkUsed advances the topic's reuse counter, terminating it at the cap.
func (e *Engine) MarkUsed(ctx context.Context, topicID string, maxUses int) error {
	if maxUses < 1 {
		maxUses = 1
	}
	return e.store.MarkTopicUsed(ctx, topicID, maxUses)
}

// mint asks the LLM for one topic grounded on the website's scan and
// persists it as ai_generated.
func (e *Engine) mint(ctx context.Context, website core.Website, ai llm.Caller) (*core.Topic, error) {
	scan := e.scanOrNil(ctx, website, ai)

	suggestions, err := e.askForTopics(ctx, website, scan, ai, 1)
	if err != nil {
		return nil, fmt.Errorf("auto-generate topic: %w", err)
	}
	if len(suggestions) == 0 {
		return nil, nil
	}

	topic := suggestions[0]
	topic.Source = core.TopicSourceAIGenerated
	if scan != nil && len(scan.ContentThemes) > 0 {
		topic.DiscoveryContext = map[string]any{"scan_themes": scan.ContentThemes}
	}

	saved, err := e.store.InsertTopic(ctx, topic)
	if err != nil {
		return nil, err
	}
	logger.Info("minted topic", "website_id", website.ID, "title", saved.Title)
	return saved, nil
}

// scanOrNil fetches the website's scan; discovery degrades gracefully when
// the scan pipeline is down.
func (e *Engine) scanOrNil(ctx context.Context, website core.Website, ai llm.Caller) *core.WebsiteScan {
	if e.scans == nil {
		return nil
	}
	scan, err := e.scans.Ensure(ctx, website, ai)
	if err != nil {
		logger.Warn("proceeding without website scan", "website_id", website.ID, "error", err.Error())
		return nil
	}
	return scan
}

type topicSuggestion struct {
	Title          string   `json:"title"`
	Keywords       []string `json:"keywords"`
	Category       string   `json:"category"`
	Priority       int      `json:"priority"`
	SearchIntent   string   `json:"search_intent"`
	Timeliness     string   `json:"timeliness"`
	FormatHint     string   `json:"format_hint"`
	TrendingReason string   `json:"trending_reason"`
}

// askForTopics runs one structured-JSON completion and validates each
// suggestion against the catalog.
func (e *Engine) askForTopics(ctx context.Context, website core.Website, scan *core.WebsiteScan, ai llm.Caller, count int) ([]core.Topic, error) {
	prompt := buildDiscoveryPrompt(website, scan, count, time.Now().Month())

	raw, err := ai.Complete(ctx, discoverySystemPrompt, prompt, llm.Options{Temperature: 0.8, MaxTokens: 1500})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Topics []topicSuggestion `json:"topics"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("topic suggestions were not valid JSON: %w", err)
	}

	topics := make([]core.Topic, 0, len(parsed.Topics))
	for _, s := range parsed.Topics {
		if strings.TrimSpace(s.Title) == "" {
			continue
		}
		topics = append(topics, validateSuggestion(s, website.ID))
	}
	return topics, nil
}

// validateSuggestion maps one raw suggestion onto the catalog's vocabulary.
func validateSuggestion(s topicSuggestion, websiteID string) core.Topic {
	intent := core.SearchIntent(s.SearchIntent)
	if !catalog.ValidIntent(s.SearchIntent) {
		intent = catalog.ClassifyIntent(s.Title)
	}

	timeliness := core.Timeliness(s.Timeliness)
	if !catalog.ValidTimeliness(s.Timeliness) {
		timeliness = core.TimelinessEvergreen
	}

	formatHint := s.FormatHint
	if _, ok := catalog.Format(formatHint); !ok {
		formatHint = ""
	}

	priority := s.Priority
	if priority <= 0 {
		priority = 5
	}

	return core.Topic{
		WebsiteID:      websiteID,
		Title:          strings.TrimSpace(s.Title),
		Keywords:       s.Keywords,
		Category:       s.Category,
		Priority:       priority,
		SearchIntent:   intent,
		Timeliness:     timeliness,
		FormatHint:     formatHint,
		TrendingReason: s.TrendingReason,
	}
}

// stripFences removes a Markdown code fence wrapper when the model adds one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
