package generator

import (
	"regexp"
	"strings"
)

// Cleaning patterns, compiled once. Providers wrap output in fences,
// document scaffolding, or lead-in commentary often enough that every
// response goes through the full pass.
var (
	codeFenceRe = regexp.MustCompile("(?m)^```[a-zA-Z]*[ \t]*$\n?|```")

	doctypeRe  = regexp.MustCompile(`(?i)<!DOCTYPE[^>]*>`)
	htmlTagRe  = regexp.MustCompile(`(?i)</?html[^>]*>`)
	headRe     = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	bodyTagRe  = regexp.MustCompile(`(?i)</?body[^>]*>`)
	metaTagRe  = regexp.MustCompile(`(?i)<meta[^>]*>`)
	titleTagRe = regexp.MustCompile(`(?is)<title[^>]*>.*?</title>`)
	headerRe   = regexp.MustCompile(`(?is)<header[^>]*>.*?</header>`)

	metaCommentaryRe = regexp.MustCompile(`(?i)^(here is|here's|below is|i've written|i have written|i've created|this is)\b.*:$|^\[[^\]]*article[^\]]*\]$`)

	htmlCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)

	mdH3Re     = regexp.MustCompile(`(?m)^###\s+(.+?)\s*$`)
	mdH2Re     = regexp.MustCompile(`(?m)^##\s+(.+?)\s*$`)
	mdBulletRe = regexp.MustCompile(`(?m)^[*-]\s+(.+?)\s*$`)

	blankRunsRe = regexp.MustCompile(`\n{3,}`)
)

// Clean normalizes raw provider output into a bare HTML article body.
// The pass is idempotent: cleaning already-clean content is a no-op.
func Clean(raw, title string) string {
	content := raw

	content = codeFenceRe.ReplaceAllString(content, "")

	content = doctypeRe.ReplaceAllString(content, "")
	content = headRe.ReplaceAllString(content, "")
	content = htmlTagRe.ReplaceAllString(content, "")
	content = bodyTagRe.ReplaceAllString(content, "")
	content = metaTagRe.ReplaceAllString(content, "")
	content = titleTagRe.ReplaceAllString(content, "")
	content = headerRe.ReplaceAllString(content, "")

	content = dropLeadingCommentary(content)
	content = htmlCommentRe.ReplaceAllString(content, "")
	content = dropDuplicateTitle(content, title)

	content = mdH3Re.ReplaceAllString(content, "<h3>$1</h3>")
	content = mdH2Re.ReplaceAllString(content, "<h2>$1</h2>")
	content = mdBulletRe.ReplaceAllString(content, "<li>$1</li>")

	content = blankRunsRe.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// dropLeadingCommentary removes lead-in lines like "Here is the
// 1500-word article:" before the body starts.
func dropLeadingCommentary(content string) string {
	lines := strings.Split(content, "\n")
	start := 0
	for start < len(lines) {
		line := strings.TrimSpace(lines[start])
		if line == "" || metaCommentaryRe.MatchString(line) {
			start++
			continue
		}
		break
	}
	return strings.Join(lines[start:], "\n")
}

// dropDuplicateTitle removes the title when the model repeats it as the
// first line of the body.
func dropDuplicateTitle(content, title string) string {
	if title == "" {
		return content
	}
	trimmed := strings.TrimLeft(content, "\n ")
	newline := strings.Index(trimmed, "\n")
	first := trimmed
	if newline >= 0 {
		first = trimmed[:newline]
	}

	candidate := strings.TrimSpace(strings.TrimLeft(first, "# "))
	candidate = strings.TrimSpace(stripTags(candidate))
	if !strings.EqualFold(candidate, strings.TrimSpace(title)) {
		return content
	}
	// Headed first lines stay: a leading <h1> with the title is the
	// article's own heading, not a repetition.
	if strings.HasPrefix(strings.TrimSpace(first), "<h") {
		return content
	}
	if newline < 0 {
		return ""
	}
	return trimmed[newline+1:]
}

var tagRe = regexp.MustCompile(`<[^>]+>`)

// stripTags replaces HTML tags with spaces and collapses whitespace.
func stripTags(html string) string {
	text := tagRe.ReplaceAllString(html, " ")
	return strings.Join(strings.Fields(text), " ")
}
