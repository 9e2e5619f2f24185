// Package generator turns a topic into a publishable article: format
// selection, prompt assembly, the provider call, response cleaning, and
// parsing into an article record.
package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"seoforge/internal/catalog"
	"seoforge/internal/core"
	"seoforge/internal/llm"
	"seoforge/internal/logger"
)

// recentFormatWindow is how many of the website's most recent formats are
// excluded from selection to keep output varied.
const recentFormatWindow = 3

// GenerateError means the provider returned empty or unusable content.
type GenerateError struct {
	Provider string
	Cause    error
}

func (e *GenerateError) Error() string {
	return fmt.Sprintf("generate via %s: %v", e.Provider, e.Cause)
}

func (e *GenerateError) Unwrap() error { return e.Cause }

// Generator builds articles from topics. The rand source is guarded so
// concurrent website runs can share one Generator.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator with the given randomness source.
func New(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Generate runs the full pipeline on one provider. The returned article
// carries the format key used so the caller can update format history.
func (g *Generator) Generate(ctx context.Context, topic core.Topic, website core.Website, caller llm.Caller) (*core.Article, error) {
	format := g.selectFormat(website)
	prompt := buildPrompt(topic, website, format)
	system := systemPromptFor(website, caller.Name())

	logger.Info("generating article", "website_id", website.ID,
		"topic", topic.Title, "format", format.Key, "provider", caller.Name())

	raw, err := caller.Complete(ctx, system, prompt, llm.Options{})
	if err != nil {
		return nil, &GenerateError{Provider: caller.Name(), Cause: err}
	}

	content := Clean(raw, topic.Title)
	if strings.TrimSpace(content) == "" {
		return nil, &GenerateError{Provider: caller.Name(), Cause: llm.ErrEmptyCompletion}
	}

	article := parseArticle(content, topic, website)
	article.FormatUsed = format.Key
	return article, nil
}

// selectFormat picks a content format from the website's enabled set,
// avoiding the formats used most recently.
func (g *Generator) selectFormat(website core.Website) catalog.ContentFormat {
	enabled := enabledFormats(website)

	recent := website.RecentFormats
	if len(recent) > recentFormatWindow {
		recent = recent[len(recent)-recentFormatWindow:]
	}
	avoid := map[string]bool{}
	for _, key := range recent {
		avoid[key] = true
	}

	candidates := enabled[:0:0]
	for _, key := range enabled {
		if !avoid[key] {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		candidates = enabled
	}

	g.mu.Lock()
	key := candidates[g.rng.Intn(len(candidates))]
	g.mu.Unlock()
	format, _ := catalog.Format(key)
	return format
}

// enabledFormats validates the website's configured formats against the
// catalog, defaulting to all of them.
func enabledFormats(website core.Website) []string {
	var valid []string
	for _, key := range website.EnabledFormats {
		if _, ok := catalog.Format(key); ok {
			valid = append(valid, key)
		}
	}
	if len(valid) == 0 {
		return catalog.FormatKeys()
	}
	return valid
}

// parseArticle derives the article record from the cleaned content.
func parseArticle(content string, topic core.Topic, website core.Website) *core.Article {
	title := extractTitle(content, topic.Title)
	plain := stripTags(content)
	words := len(strings.Fields(content))

	excerpt := truncateRunes(plain, 200)
	meta := truncateRunes(plain, 160)

	primaryKeyword := ""
	if len(topic.Keywords) > 0 {
		primaryKeyword = topic.Keywords[0]
	}

	author := website.DefaultAuthor
	if author == "" {
		author = "Team"
	}
	language := website.Language
	if language == "" {
		language = "en-US"
	}

	readTime := words / 200
	if readTime < 1 {
		readTime = 1
	}

	return &core.Article{
		Title:           title,
		Slug:            Slugify(topic.Title),
		Content:         content,
		Excerpt:         excerpt,
		MetaDescription: meta,
		Tags:            topic.Keywords,
		PrimaryKeyword:  primaryKeyword,
		Author:          author,
		ReadTime:        readTime,
		WordCount:       words,
		Category:        topic.Category,
		Language:        language,
		SearchIntent:    topic.SearchIntent,
	}
}

// truncateRunes cuts s to at most n characters on a rune boundary, so
// multibyte content never ships a split rune.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}

// Slugify derives a URL slug: lowercase, alphanumerics and spaces only,
// spaces collapsed to hyphens, at most 60 chars.
func Slugify(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			b.WriteRune(r)
		}
	}
	slug := strings.Join(strings.Fields(b.String()), "-")
	if len(slug) > 60 {
		slug = strings.TrimRight(slug[:60], "-")
	}
	return slug
}

// extractTitle takes the first h1 (or h2) from the content, falling back
// to the topic title.
func extractTitle(content, fallback string) string {
	for _, tag := range []string{"h1", "h2"} {
		open := "<" + tag + ">"
		closing := "</" + tag + ">"
		start := strings.Index(content, open)
		if start < 0 {
			continue
		}
		end := strings.Index(content[start:], closing)
		if end < 0 {
			continue
		}
		title := strings.TrimSpace(content[start+len(open) : start+end])
		if title != "" {
			return stripTags(title)
		}
	}
	return fallback
}
