package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"seoforge/internal/llm"
)

// AnalyzerInput is the distilled page evidence handed to the LLM.
type AnalyzerInput struct {
	Domain          string
	Title           string
	MetaDescription string
	Headings        []string
	Keywords        []string
}

// Analysis is the LLM's classification of what the site is about.
type Analysis struct {
	NicheDescription string   `json:"niche_description"`
	Themes           []string `json:"themes"`
	Keywords         []string `json:"keywords"`
	Language         string   `json:"language"`
}

const analyzerSystemPrompt = "You are a website analyst. You classify what a website is about " +
	"from its visible metadata. Respond with JSON only, no commentary."

const (
	analyzerMaxHeadings = 20
	analyzerMaxKeywords = 30
)

// Analyze asks the LLM to distill the crawl evidence into a niche
// description, content themes, and extra keywords.
func Analyze(ctx context.Context, ai llm.Caller, in AnalyzerInput) (*Analysis, error) {
	prompt := buildAnalyzerPrompt(in)
	raw, err := ai.Complete(ctx, analyzerSystemPrompt, prompt, llm.Options{MaxTokens: 1000})
	if err != nil {
		return nil, fmt.Errorf("site analysis: %w", err)
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(stripFences(raw)), &analysis); err != nil {
		return nil, fmt.Errorf("site analysis returned unparseable JSON: %w", err)
	}
	return &analysis, nil
}

func buildAnalyzerPrompt(in AnalyzerInput) string {
	var b strings.Builder
	b.WriteString("Analyze this website and describe its content niche.\n\n")
	fmt.Fprintf(&b, "Domain: %s\n", in.Domain)
	fmt.Fprintf(&b, "Title: %s\n", in.Title)
	fmt.Fprintf(&b, "Meta description: %s\n", in.MetaDescription)
	fmt.Fprintf(&b, "Headings: %s\n", strings.Join(capList(in.Headings, analyzerMaxHeadings), "; "))
	fmt.Fprintf(&b, "Keywords: %s\n", strings.Join(capList(in.Keywords, analyzerMaxKeywords), ", "))
	b.WriteString("\nReturn JSON with exactly these fields:\n")
	b.WriteString(`{"niche_description": "1-2 sentence description of the site's niche", ` +
		`"themes": ["up to 5 content themes"], ` +
		`"keywords": ["up to 10 additional relevant keywords"], ` +
		`"language": "two-letter language code of the site"}`)
	return b.String()
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
