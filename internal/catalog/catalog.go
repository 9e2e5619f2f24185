// Package catalog is the process-wide immutable registry of content
// formats, voice styles, human-writing cues, seasonal themes, and the
// search-intent classifier. It performs no I/O and is safe to share.
package catalog

import (
	"strings"
	"time"

	"seoforge/internal/core"
)

// Section is one required block of a content format.
type Section struct {
	Key         string
	Description string
}

// ContentFormat is one of the eight editorial templates.
type ContentFormat struct {
	Key          string
	Name         string
	Sections     []Section
	Tone         string
	HeadingStyle string
	MinWords     int
	MaxWords     int
}

// VoiceStyle bundles surface-form choices applied on top of a format.
type VoiceStyle struct {
	Key                string
	UseContractions    bool
	FirstPerson        string // "I" or "we"
	SentenceComplexity string
	Formality          string
	UseEmoji           bool
}

// IntentRule holds lowercase substring signals and the GEO priority for
// one search intent.
type IntentRule struct {
	Intent      core.SearchIntent
	Signals     []string
	GEOPriority string
}

var formatOrder = []string{
	"listicle", "how_to_guide", "deep_dive", "comparison",
	"case_study", "qa_format", "news_commentary", "ultimate_guide",
}

var formats = map[string]ContentFormat{
	"listicle": {
		Key:  "listicle",
		Name: "Listicle",
		Sections: []Section{
			{Key: "intro", Description: "Hook the reader and promise the list's value"},
			{Key: "list_items", Description: "Numbered items, each with a bolded takeaway and 2-3 supporting sentences"},
			{Key: "summary", Description: "Short recap of the strongest items"},
			{Key: "faq", Description: "3-4 common questions with concise answers"},
		},
		Tone:         "punchy",
		HeadingStyle: "numbered",
		MinWords:     1000,
		MaxWords:     1600,
	},
	"how_to_guide": {
		Key:  "how_to_guide",
		Name: "How-To Guide",
		Sections: []Section{
			{Key: "tldr", Description: "TL;DR summary of the outcome in 50-75 words"},
			{Key: "prerequisites", Description: "What the reader needs before starting"},
			{Key: "steps", Description: "Numbered steps with concrete actions and expected results"},
			{Key: "troubleshooting", Description: "Common mistakes and how to fix them"},
			{Key: "faq", Description: "3-5 frequently asked questions"},
		},
		Tone:         "instructional",
		HeadingStyle: "step-by-step",
		MinWords:     1200,
		MaxWords:     1800,
	},
	"deep_dive": {
		Key:  "deep_dive",
		Name: "Deep Dive",
		Sections: []Section{
			{Key: "overview", Description: "Frame the subject and why it matters now"},
			{Key: "background", Description: "Context and fundamentals"},
			{Key: "analysis", Description: "Detailed examination with data and examples"},
			{Key: "implications", Description: "What this means for the reader"},
			{Key: "key_takeaways", Description: "Bulleted key takeaways"},
		},
		Tone:         "analytical",
		HeadingStyle: "descriptive",
		MinWords:     1500,
		MaxWords:     2400,
	},
	"comparison": {
		Key:  "comparison",
		Name: "Comparison",
		Sections: []Section{
			{Key: "intro", Description: "Name the options and the decision the reader faces"},
			{Key: "criteria", Description: "The dimensions being compared"},
			{Key: "head_to_head", Description: "Option-by-option comparison with a verdict per criterion"},
			{Key: "recommendation", Description: "Which option fits which reader"},
			{Key: "faq", Description: "3-4 buying or switching questions"},
		},
		Tone:         "balanced",
		HeadingStyle: "versus",
		MinWords:     1100,
		MaxWords:     1700,
	},
	"case_study": {
		Key:  "case_study",
		Name: "Case Study",
		Sections: []Section{
			{Key: "situation", Description: "The starting point and the challenge"},
			{Key: "approach", Description: "What was done, step by step"},
			{Key: "results", Description: "Measurable outcomes with numbers"},
			{Key: "lessons", Description: "What transfers to the reader's situation"},
		},
		Tone:         "narrative",
		HeadingStyle: "story-arc",
		MinWords:     1000,
		MaxWords:     1600,
	},
	"qa_format": {
		Key:  "qa_format",
		Name: "Q&A",
		Sections: []Section{
			{Key: "intro", Description: "Why these questions keep coming up"},
			{Key: "questions", Description: "Question-form headings, each answered directly in the first sentence"},
			{Key: "summary", Description: "One-paragraph wrap-up"},
		},
		Tone:         "direct",
		HeadingStyle: "question",
		MinWords:     900,
		MaxWords:     1500,
	},
	"news_commentary": {
		Key:  "news_commentary",
		Name: "News Commentary",
		Sections: []Section{
			{Key: "what_happened", Description: "The development, stated plainly"},
			{Key: "why_it_matters", Description: "Impact on the reader's niche"},
			{Key: "analysis", Description: "Informed opinion with reasoning"},
			{Key: "outlook", Description: "What to watch next"},
		},
		Tone:         "timely",
		HeadingStyle: "descriptive",
		MinWords:     800,
		MaxWords:     1300,
	},
	"ultimate_guide": {
		Key:  "ultimate_guide",
		Name: "Ultimate Guide",
		Sections: []Section{
			{Key: "tldr", Description: "TL;DR of the whole guide"},
			{Key: "fundamentals", Description: "Core concepts defined"},
			{Key: "main_chapters", Description: "Comprehensive chapters covering every major aspect"},
			{Key: "advanced", Description: "Advanced tips for experienced readers"},
			{Key: "faq", Description: "5+ frequently asked questions"},
			{Key: "conclusion", Description: "Summary and next steps"},
		},
		Tone:         "authoritative",
		HeadingStyle: "chaptered",
		MinWords:     1800,
		MaxWords:     3000,
	},
}

var voiceStyles = map[string]VoiceStyle{
	"professional": {
		Key:                "professional",
		UseContractions:    false,
		FirstPerson:        "we",
		SentenceComplexity: "moderate",
		Formality:          "formal",
		UseEmoji:           false,
	},
	"conversational": {
		Key:                "conversational",
		UseContractions:    true,
		FirstPerson:        "I",
		SentenceComplexity: "simple",
		Formality:          "casual",
		UseEmoji:           false,
	},
	"expert": {
		Key:                "expert",
		UseContractions:    false,
		FirstPerson:        "we",
		SentenceComplexity: "complex",
		Formality:          "formal",
		UseEmoji:           false,
	},
	"friendly": {
		Key:                "friendly",
		UseContractions:    true,
		FirstPerson:        "we",
		SentenceComplexity: "simple",
		Formality:          "casual",
		UseEmoji:           true,
	},
}

// seasonalThemes is keyed by month number 1..12.
var seasonalThemes = map[time.Month][]string{
	time.January:   {"new year planning", "fresh starts", "goal setting", "winter"},
	time.February:  {"winter", "valentine's day", "planning ahead"},
	time.March:     {"spring preparation", "early spring", "tax season"},
	time.April:     {"spring", "renewal", "outdoor season start"},
	time.May:       {"late spring", "mother's day", "summer preparation"},
	time.June:      {"early summer", "father's day", "vacation planning"},
	time.July:      {"summer", "holidays", "outdoor activities"},
	time.August:    {"late summer", "back to school", "end-of-summer"},
	time.September: {"autumn start", "back to routine", "harvest"},
	time.October:   {"autumn", "halloween", "preparation for winter"},
	time.November:  {"late autumn", "black friday", "thanksgiving", "year-end planning"},
	time.December:  {"winter", "holidays", "year in review", "gift guides"},
}

var intentRules = []IntentRule{
	{
		Intent:      core.IntentTransactional,
		Signals:     []string{"buy", "order", "purchase", "price", "cheap", "deal", "discount", "coupon", "shop"},
		GEOPriority: "high",
	},
	{
		Intent:      core.IntentCommercial,
		Signals:     []string{"best", "top", "review", "compare", "comparison", "vs", "versus", "alternative"},
		GEOPriority: "high",
	},
	{
		Intent:      core.IntentNavigational,
		Signals:     []string{"login", "sign in", "website", "official", "contact", "near me"},
		GEOPriority: "low",
	},
	{
		Intent:      core.IntentInformational,
		Signals:     []string{"how", "what", "why", "when", "guide", "tutorial", "learn", "tips", "examples"},
		GEOPriority: "medium",
	},
}

// FormatKeys returns the catalog's format keys in stable order.
func FormatKeys() []string {
	keys := make([]string, len(formatOrder))
	copy(keys, formatOrder)
	return keys
}

// Format looks up a content format by key.
func Format(key string) (ContentFormat, bool) {
	f, ok := formats[key]
	return f, ok
}

// Voice looks up a voice style, falling back to professional.
func Voice(key string) VoiceStyle {
	if v, ok := voiceStyles[key]; ok {
		return v
	}
	return voiceStyles["professional"]
}

// SeasonalThemes returns the themes for the given month.
func SeasonalThemes(month time.Month) []string {
	return seasonalThemes[month]
}

// ClassifyIntent derives a search intent from free text using the
// substring signals. Rules are checked in priority order; informational
// is the fallback.
func ClassifyIntent(text string) core.SearchIntent {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, signal := range rule.Signals {
			if strings.Contains(lower, signal) {
				return rule.Intent
			}
		}
	}
	return core.IntentInformational
}

// GEOPriority returns the GEO priority tag for an intent.
func GEOPriority(intent core.SearchIntent) string {
	for _, rule := range intentRules {
		if rule.Intent == intent {
			return rule.GEOPriority
		}
	}
	return "medium"
}

// ValidIntent reports whether s is a known search intent value.
func ValidIntent(s string) bool {
	switch core.SearchIntent(s) {
	case core.IntentInformational, core.IntentCommercial, core.IntentTransactional, core.IntentNavigational:
		return true
	}
	return false
}

// ValidTimeliness reports whether s is a known timeliness value.
func ValidTimeliness(s string) bool {
	switch core.Timeliness(s) {
	case core.TimelinessEvergreen, core.TimelinessSeasonal, core.TimelinessNews, core.TimelinessTrending:
		return true
	}
	return false
}
