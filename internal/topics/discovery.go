package topics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"seoforge/internal/catalog"
	"seoforge/internal/core"
	"seoforge/internal/llm"
	"seoforge/internal/logger"
	"seoforge/internal/search"
)

// Discovery bounds: search queries are cheap to build but expensive to
// run, so the built set is capped separately from the executed set.
const (
	maxQueriesBuilt    = 10
	maxQueriesExecuted = 5
	maxSearchTopics    = 10
	defaultAICount     = 5

	topKeywordsForQueries = 5
	topThemesForQueries   = 3
)

const discoverySystemPrompt = "You are a content strategist. Return only valid JSON, no markdown."

// Discover runs bulk topic discovery for a website: search-grounded
// candidates when Google Search is enabled, plus AI-suggested topics.
// Everything found is persisted; the saved topics are returned.
func (e *Engine) Discover(ctx context.Context, website core.Website, ai llm.Caller, count int) ([]core.Topic, error) {
	if count <= 0 {
		count = defaultAICount
	}

	scan := e.scanOrNil(ctx, website, ai)

	var discovered []core.Topic
	if website.GoogleSearchEnabled && e.search != nil && scan != nil {
		found, err := e.discoverFromSearch(ctx, website, scan)
		if err != nil {
			logger.Warn("search discovery failed", "website_id", website.ID, "error", err.Error())
		} else {
			discovered = append(discovered, found...)
		}
	}

	if ai != nil {
		suggestions, err := e.askForTopics(ctx, website, scan, ai, count)
		if err != nil {
			logger.Warn("ai topic discovery failed", "website_id", website.ID, "error", err.Error())
		}
		for _, topic := range suggestions {
			topic.Source = core.TopicSourceAISuggested
			saved, err := e.store.InsertTopic(ctx, topic)
			if err != nil {
				logger.Error("failed to save suggested topic", err, "title", topic.Title)
				continue
			}
			discovered = append(discovered, *saved)
		}
	}

	logger.Info("topic discovery finished", "website_id", website.ID, "discovered", len(discovered))
	return discovered, nil
}

// discoverFromSearch turns scan keywords and themes into search queries
// and the results into on-topic candidates.
func (e *Engine) discoverFromSearch(ctx context.Context, website core.Website, scan *core.WebsiteScan) ([]core.Topic, error) {
	queries := buildSearchQueries(scan)
	if len(queries) == 0 {
		return nil, nil
	}

	var topics []core.Topic
	executed := 0
	for _, query := range queries {
		if executed >= maxQueriesExecuted || len(topics) >= maxSearchTopics {
			break
		}
		executed++

		results, err := e.search.Search(ctx, query, search.Config{MaxResults: 5, Language: website.Language})
		if err != nil {
			logger.Debug("search query failed", "query", query, "error", err.Error())
			continue
		}

		for _, result := range results {
			if len(topics) >= maxSearchTopics {
				break
			}
			topic, ok := topicFromResult(result, scan, website.ID)
			if !ok {
				continue
			}
			saved, err := e.store.InsertTopic(ctx, topic)
			if err != nil {
				logger.Error("failed to save search topic", err, "title", topic.Title)
				continue
			}
			topics = append(topics, *saved)
		}
	}
	return topics, nil
}

// buildSearchQueries derives a bounded query set from the scan's top
// keywords (two templates each) and top themes (one each).
func buildSearchQueries(scan *core.WebsiteScan) []string {
	var queries []string
	add := func(q string) {
		if len(queries) < maxQueriesBuilt {
			queries = append(queries, q)
		}
	}

	for i, kw := range scan.MainKeywords {
		if i >= topKeywordsForQueries {
			break
		}
		add(fmt.Sprintf("best %s guide %d", kw, time.Now().Year()))
		add(fmt.Sprintf("%s tips and trends", kw))
	}
	for i, theme := range scan.ContentThemes {
		if i >= topThemesForQueries {
			break
		}
		add(fmt.Sprintf("latest %s developments", theme))
	}
	return queries
}

// topicFromResult converts a search hit into a candidate topic, keeping
// only hits that share vocabulary with the scan's themes.
func topicFromResult(result search.Result, scan *core.WebsiteScan, websiteID string) (core.Topic, bool) {
	text := strings.ToLower(result.Title + " " + result.Snippet)

	var keywords []string
	onTheme := false
	for _, theme := range scan.ContentThemes {
		if theme != "" && strings.Contains(text, strings.ToLower(theme)) {
			keywords = append(keywords, strings.ToLower(theme))
			onTheme = true
		}
	}
	for _, kw := range scan.MainKeywords {
		if len(keywords) >= 5 {
			break
		}
		if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
			keywords = appendUnique(keywords, strings.ToLower(kw))
		}
	}
	if !onTheme {
		return core.Topic{}, false
	}

	title := strings.TrimSpace(result.Title)
	if title == "" {
		return core.Topic{}, false
	}

	return core.Topic{
		WebsiteID:    websiteID,
		Title:        title,
		Keywords:     keywords,
		Priority:     5,
		Source:       core.TopicSourceGoogleSearch,
		SearchIntent: catalog.ClassifyIntent(title),
		Timeliness:   core.TimelinessTrending,
		DiscoveryContext: map[string]any{
			"search_url":     result.URL,
			"search_snippet": result.Snippet,
		},
	}, true
}

func appendUnique(list []string, item string) []string {
	for _, existing := range list {
		if existing == item {
			return list
		}
	}
	return append(list, item)
}

// buildDiscoveryPrompt composes the context prompt shared by bulk
// discovery and single-topic minting.
func buildDiscoveryPrompt(website core.Website, scan *core.WebsiteScan, count int, month time.Month) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Find %d blog topic(s) for the website %q (%s).\n", count, website.Name, website.Domain)
	fmt.Fprintf(&b, "Language: %s\n\n", languageOrDefault(website.Language))

	if scan != nil {
		if scan.NicheDescription != "" {
			fmt.Fprintf(&b, "Site niche: %s\n", scan.NicheDescription)
		}
		if len(scan.ContentThemes) > 0 {
			fmt.Fprintf(&b, "Content themes: %s\n", strings.Join(scan.ContentThemes, ", "))
		}
		if len(scan.Headings) > 0 {
			sample := scan.Headings
			if len(sample) > 10 {
				sample = sample[:10]
			}
			fmt.Fprintf(&b, "Sample headings from the site: %s\n", strings.Join(sample, "; "))
		}
	}

	if themes := catalog.SeasonalThemes(month); len(themes) > 0 {
		fmt.Fprintf(&b, "Seasonal angles for %s: %s\n", month.String(), strings.Join(themes, ", "))
	}

	b.WriteString("\nTopics should be current, SEO-optimized, and relevant to the site's niche.\n")
	b.WriteString("Return ONLY a JSON object (no markdown):\n")
	b.WriteString(`{"topics": [{"title": "Title", "keywords": ["kw1", "kw2"], "category": "cat", ` +
		`"priority": 7, "search_intent": "informational|commercial|transactional|navigational", ` +
		`"timeliness": "evergreen|seasonal|news|trending", "format_hint": "listicle", ` +
		`"trending_reason": "why now"}]}`)
	return b.String()
}

func languageOrDefault(lang string) string {
	if lang == "" {
		return "en"
	}
	return lang
}
