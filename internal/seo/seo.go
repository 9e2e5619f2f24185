// Package seo scores articles against a deterministic SEO/GEO rubric.
// Scoring is pure: no I/O, no randomness, same article in, same score out.
package seo

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"seoforge/internal/core"
)

// Breakdown is the per-category subtotal, returned for logging.
type Breakdown struct {
	Title     int `json:"title"`
	Structure int `json:"structure"`
	Meta      int `json:"meta"`
	Keywords  int `json:"keywords"`
	GEO       int `json:"geo"`
}

// geoThreshold is the GEO subtotal at which an article counts as
// optimized for generative engines.
const geoThreshold = 15

var powerWords = []string{
	"how", "why", "what", "best", "guide", "top", "ultimate", "essential", "complete",
}

// Score evaluates an article and returns the 0..100 score, the category
// breakdown, and the geo-optimized flag.
func Score(article core.Article) (int, Breakdown, bool) {
	content := article.Content
	plain := stripTags(content)
	keyword := strings.ToLower(strings.TrimSpace(article.PrimaryKeyword))

	b := Breakdown{
		Title:     scoreTitle(article.Title, keyword),
		Structure: scoreStructure(content, plain),
		Meta:      scoreMeta(article.MetaDescription, keyword),
		Keywords:  scoreKeywords(content, plain, keyword),
		GEO:       scoreGEO(content, plain),
	}

	total := b.Title + b.Structure + b.Meta + b.Keywords + b.GEO
	if total > 100 {
		total = 100
	}
	return total, b, b.GEO >= geoThreshold
}

// scoreTitle awards up to 20 points for length, keyword placement, and a
// power word.
func scoreTitle(title, keyword string) int {
	score := 0
	length := utf8.RuneCountInString(title)
	switch {
	case length >= 50 && length <= 60:
		score += 8
	case (length >= 30 && length <= 49) || (length >= 61 && length <= 70):
		score += 5
	case length >= 20:
		score += 2
	}

	lower := strings.ToLower(title)
	if keyword != "" {
		if idx := strings.Index(lower, keyword); idx >= 0 {
			if idx < len(lower)/3 {
				score += 8
			} else {
				score += 5
			}
		}
	}

	for _, word := range powerWords {
		if strings.Contains(lower, word) {
			score += 4
			break
		}
	}
	return score
}

// scoreStructure awards up to 25 points for word count, headings, lists,
// and paragraphs.
func scoreStructure(content, plain string) int {
	score := 0
	words := len(strings.Fields(plain))
	switch {
	case words >= 1500:
		score += 8
	case words >= 1000:
		score += 5
	case words >= 600:
		score += 2
	}

	switch h2 := strings.Count(content, "<h2"); {
	case h2 >= 3:
		score += 5
	case h2 >= 2:
		score += 3
	}
	switch h3 := strings.Count(content, "<h3"); {
	case h3 >= 2:
		score += 4
	case h3 >= 1:
		score += 2
	}
	if strings.Contains(content, "<ul") || strings.Contains(content, "<ol") {
		score += 4
	}
	switch p := strings.Count(content, "<p"); {
	case p >= 5:
		score += 4
	case p >= 3:
		score += 2
	}
	return score
}

// scoreMeta awards up to 15 points for the meta description.
func scoreMeta(meta, keyword string) int {
	meta = strings.TrimSpace(meta)
	if meta == "" {
		return 0
	}

	score := 0
	length := utf8.RuneCountInString(meta)
	switch {
	case length >= 120 && length <= 160:
		score += 8
	case length >= 80 && length <= 119:
		score += 5
	default:
		score += 2
	}

	if keyword != "" && strings.Contains(strings.ToLower(meta), keyword) {
		score += 4
	}
	if length >= 50 {
		score += 3
	}
	return score
}

var firstParagraphRe = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)

// scoreKeywords awards up to 15 points for keyword density and placement.
func scoreKeywords(content, plain, keyword string) int {
	if keyword == "" {
		return 0
	}

	score := 0
	lowerPlain := strings.ToLower(plain)
	totalTokens := len(strings.Fields(plain))
	if totalTokens > 0 {
		count := strings.Count(lowerPlain, keyword)
		tokenLen := len(strings.Fields(keyword))
		density := float64(count*tokenLen) / float64(totalTokens) * 100
		switch {
		case density >= 0.5 && density <= 2.5:
			score += 8
		case (density >= 0.2 && density < 0.5) || (density > 2.5 && density <= 4.0):
			score += 4
		}
	}

	if m := firstParagraphRe.FindStringSubmatch(content); m != nil {
		if strings.Contains(strings.ToLower(m[1]), keyword) {
			score += 4
		}
	}

	for _, heading := range headingTexts(content) {
		if strings.Contains(strings.ToLower(heading), keyword) {
			score += 3
			break
		}
	}
	return score
}

var (
	headingRe      = regexp.MustCompile(`(?is)<h[23][^>]*>(.*?)</h[23]>`)
	definitionalRe = regexp.MustCompile(`(?i)\b[a-z][a-z-]*\s+(is|means|refers to|defined as)\s+[a-z]`)
	numberUnitRe   = regexp.MustCompile(`(?i)([$€£]\s?\d|\b\d+(\.\d+)?\s*(%|percent|hours?|minutes?|seconds?|days?|weeks?|months?|years?|kg|km|g|mg|ml|l|lbs?|miles?|x\b))`)
)

var faqSignals = []string{"faq", "frequently asked", "questions"}

var summarySignals = []string{"summary", "takeaway", "conclusion", "tl;dr"}

// scoreGEO awards up to 25 points for generative-engine readiness: FAQ
// coverage, a summary block, bullet density, definitional statements, and
// concrete numbers.
func scoreGEO(content, plain string) int {
	score := 0
	headings := headingTexts(content)

	hasFAQ := false
	for _, heading := range headings {
		lower := strings.ToLower(heading)
		for _, signal := range faqSignals {
			if strings.Contains(lower, signal) {
				hasFAQ = true
			}
		}
	}
	if hasFAQ {
		score += 8
	} else {
		questionHeadings := 0
		for _, heading := range headings {
			if strings.HasSuffix(strings.TrimSpace(heading), "?") {
				questionHeadings++
			}
		}
		if questionHeadings >= 2 {
			score += 5
		}
	}

	for _, heading := range headings {
		lower := strings.ToLower(heading)
		found := false
		for _, signal := range summarySignals {
			if strings.Contains(lower, signal) {
				found = true
			}
		}
		if found {
			score += 5
			break
		}
	}

	switch bullets := strings.Count(content, "<li"); {
	case bullets >= 5:
		score += 5
	case bullets >= 3:
		score += 3
	}

	switch defs := len(definitionalRe.FindAllString(plain, -1)); {
	case defs >= 2:
		score += 4
	case defs >= 1:
		score += 2
	}

	if numberUnitRe.MatchString(plain) {
		score += 3
	}
	return score
}

// headingTexts extracts the inner text of every h2/h3.
func headingTexts(content string) []string {
	matches := headingRe.FindAllStringSubmatch(content, -1)
	headings := make([]string, 0, len(matches))
	for _, m := range matches {
		headings = append(headings, strings.TrimSpace(stripTags(m[1])))
	}
	return headings
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

func stripTags(html string) string {
	text := tagRe.ReplaceAllString(html, " ")
	return strings.Join(strings.Fields(text), " ")
}
