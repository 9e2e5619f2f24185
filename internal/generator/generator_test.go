package generator

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"seoforge/internal/core"
	"seoforge/internal/llm"
)

type fakeCaller struct {
	name     string
	response string
	err      error
	system   string
	prompt   string
}

func (f *fakeCaller) Complete(_ context.Context, system, user string, _ llm.Options) (string, error) {
	f.system = system
	f.prompt = user
	return f.response, f.err
}

func (f *fakeCaller) Name() string { return f.name }

func testGenerator() *Generator {
	return New(rand.New(rand.NewSource(1)))
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"How to Wax a Surfboard", "how-to-wax-a-surfboard"},
		{"What's New in 2025?", "whats-new-in-2025"},
		{"  Extra   Spaces  ", "extra-spaces"},
		{"Ümlauts & Symbols!!", "mlauts-symbols"},
	}
	for _, c := range cases {
		if got := Slugify(c.in); got != c.want {
			t.Errorf("Slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	long := Slugify(strings.Repeat("surfboard wax ", 20))
	if len(long) > 60 {
		t.Errorf("slug length %d exceeds 60", len(long))
	}
	if !regexp.MustCompile(`^[a-z0-9-]{1,60}$`).MatchString(long) {
		t.Errorf("slug %q fails shape check", long)
	}
}

func TestCleanRemovesWrapping(t *testing.T) {
	raw := "Here is the 1500-word article:\n\n```html\n<!DOCTYPE html>\n<html>\n<head><title>Ignore</title></head>\n<body>\n<h1>Waxing Basics</h1>\n<!-- internal link: /wax-guide -->\n<p>Wax keeps you on the board.</p>\n</body>\n</html>\n```"

	got := Clean(raw, "Waxing Basics")

	for _, banned := range []string{"```", "<!DOCTYPE", "<html>", "<head>", "<body>", "Here is", "<!--"} {
		if strings.Contains(got, banned) {
			t.Errorf("cleaned content still contains %q:\n%s", banned, got)
		}
	}
	if !strings.Contains(got, "<h1>Waxing Basics</h1>") {
		t.Errorf("article heading lost:\n%s", got)
	}
	if !strings.Contains(got, "<p>Wax keeps you on the board.</p>") {
		t.Errorf("body lost:\n%s", got)
	}
}

func TestCleanConvertsMarkdown(t *testing.T) {
	raw := "## Getting Started\nSome intro.\n### Tools\n* Wax comb\n- Base coat\n\n\n\n\nDone."
	got := Clean(raw, "")

	for _, want := range []string{"<h2>Getting Started</h2>", "<h3>Tools</h3>", "<li>Wax comb</li>", "<li>Base coat</li>"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
	if strings.Contains(got, "\n\n\n") {
		t.Error("blank-line runs not collapsed")
	}
}

func TestCleanDropsRepeatedTitle(t *testing.T) {
	raw := "Waxing Basics\n<p>First paragraph.</p>"
	got := Clean(raw, "Waxing Basics")
	if strings.Contains(got, "Waxing Basics\n") || strings.HasPrefix(got, "Waxing Basics") {
		t.Errorf("bare repeated title kept:\n%s", got)
	}

	headed := "<h1>Waxing Basics</h1>\n<p>First paragraph.</p>"
	if got := Clean(headed, "Waxing Basics"); !strings.Contains(got, "<h1>Waxing Basics</h1>") {
		t.Errorf("heading with the title must stay:\n%s", got)
	}
}

func TestCleanIsIdempotent(t *testing.T) {
	raws := []string{
		"Here is the article:\n```html\n<h2>Hi</h2>\n<p>Body</p>\n```",
		"## One\n* a\n* b\n\n\n\nEnd",
		"<h1>Title</h1>\n<p>Plain already-clean content.</p>",
	}
	for _, raw := range raws {
		once := Clean(raw, "Title")
		twice := Clean(once, "Title")
		if once != twice {
			t.Errorf("clean not idempotent:\nonce:  %q\ntwice: %q", once, twice)
		}
	}
}

func TestParseArticle(t *testing.T) {
	content := "<h1>The Complete Waxing Guide</h1>\n<p>" + strings.Repeat("wax on wax off ", 80) + "</p>"
	topic := core.Topic{
		Title:    "How to Wax a Surfboard",
		Keywords: []string{"wax a surfboard", "surf wax"},
		Category: "gear",
	}
	website := core.Website{DefaultAuthor: "Kai", Language: "en"}

	article := parseArticle(content, topic, website)

	if article.Title != "The Complete Waxing Guide" {
		t.Errorf("title = %q", article.Title)
	}
	if article.Slug != "how-to-wax-a-surfboard" {
		t.Errorf("slug = %q", article.Slug)
	}
	if len(article.Excerpt) > 200 {
		t.Errorf("excerpt length %d exceeds 200", len(article.Excerpt))
	}
	if article.ReadTime < 1 {
		t.Errorf("read time = %d", article.ReadTime)
	}
	if article.PrimaryKeyword != "wax a surfboard" {
		t.Errorf("primary keyword = %q", article.PrimaryKeyword)
	}
	if article.Author != "Kai" || article.Language != "en" {
		t.Errorf("author = %q, language = %q", article.Author, article.Language)
	}
	if article.WordCount < 300 {
		t.Errorf("word count = %d", article.WordCount)
	}
}

func TestParseArticleFallsBackToTopicTitle(t *testing.T) {
	article := parseArticle("<p>No headings here at all.</p>", core.Topic{Title: "Fallback Title"}, core.Website{})
	if article.Title != "Fallback Title" {
		t.Errorf("title = %q", article.Title)
	}
	if article.Author != "Team" || article.Language != "en-US" {
		t.Errorf("defaults: author = %q, language = %q", article.Author, article.Language)
	}
}

func TestSelectFormatAvoidsRecent(t *testing.T) {
	g := testGenerator()
	website := core.Website{
		EnabledFormats: []string{"listicle", "how_to_guide", "deep_dive", "comparison"},
		RecentFormats:  []string{"qa_format", "listicle", "how_to_guide", "deep_dive"},
	}
	// Last 3 recent are listicle, how_to_guide, deep_dive: only
	// comparison remains.
	for i := 0; i < 20; i++ {
		if format := g.selectFormat(website); format.Key != "comparison" {
			t.Fatalf("format = %q, want comparison", format.Key)
		}
	}
}

func TestSelectFormatFallsBackWhenAllRecent(t *testing.T) {
	g := testGenerator()
	website := core.Website{
		EnabledFormats: []string{"listicle", "qa_format"},
		RecentFormats:  []string{"deep_dive", "listicle", "qa_format"},
	}
	for i := 0; i < 20; i++ {
		format := g.selectFormat(website)
		if format.Key != "listicle" && format.Key != "qa_format" {
			t.Fatalf("format = %q, want an enabled one", format.Key)
		}
	}
}

func TestSelectFormatIgnoresUnknownEnabled(t *testing.T) {
	g := testGenerator()
	website := core.Website{EnabledFormats: []string{"freeform_rant"}}
	format := g.selectFormat(website)
	if format.Key == "" {
		t.Error("unknown enabled formats must fall back to the full catalog")
	}
}

func TestSelectFormatSharedAcrossGoroutines(t *testing.T) {
	g := testGenerator()
	website := core.Website{}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if format := g.selectFormat(website); format.Key == "" {
					t.Error("selectFormat returned an empty format")
				}
			}
		}()
	}
	wg.Wait()
}

func TestParseArticleExcerptKeepsRunesIntact(t *testing.T) {
	content := "<p>" + strings.Repeat("日本語のサーフィン情報 ", 60) + "</p>"
	article := parseArticle(content, core.Topic{Title: "T"}, core.Website{Language: "ja"})

	if !utf8.ValidString(article.Excerpt) {
		t.Errorf("excerpt is not valid UTF-8: %q", article.Excerpt)
	}
	if !utf8.ValidString(article.MetaDescription) {
		t.Errorf("meta description is not valid UTF-8: %q", article.MetaDescription)
	}
	if strings.ContainsRune(article.Excerpt, '�') {
		t.Error("excerpt carries a replacement character")
	}
	if n := utf8.RuneCountInString(article.Excerpt); n > 200 {
		t.Errorf("excerpt rune count %d exceeds 200", n)
	}
	if n := utf8.RuneCountInString(article.MetaDescription); n > 160 {
		t.Errorf("meta description rune count %d exceeds 160", n)
	}
}

func TestSystemPromptOverrides(t *testing.T) {
	website := core.Website{
		Name:                  "Surf Shack",
		SystemPromptOpenAI:    "openai override",
		SystemPromptAnthropic: "anthropic override",
	}
	if got := systemPromptFor(website, "openai"); got != "openai override" {
		t.Errorf("openai override not used: %q", got)
	}
	if got := systemPromptFor(website, "anthropic"); got != "anthropic override" {
		t.Errorf("anthropic override not used: %q", got)
	}

	plain := core.Website{Name: "Surf Shack", VoiceStyle: "friendly"}
	got := systemPromptFor(plain, "openai")
	if !strings.Contains(got, "Surf Shack") {
		t.Errorf("default system prompt missing site name: %q", got)
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	caller := &fakeCaller{
		name: "openai",
		response: "```html\n<h1>Five Board Wax Picks</h1>\n<p>" +
			strings.Repeat("surf wax matters a lot here ", 50) + "</p>\n```",
	}
	g := testGenerator()
	topic := core.Topic{
		Title:        "Best Surf Wax This Year",
		Keywords:     []string{"surf wax"},
		SearchIntent: core.IntentCommercial,
	}
	website := core.Website{ID: "w1", Name: "Surf Shack", EnabledFormats: []string{"listicle"}}

	article, err := g.Generate(context.Background(), topic, website, caller)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if article.FormatUsed != "listicle" {
		t.Errorf("format used = %q", article.FormatUsed)
	}
	if article.Title != "Five Board Wax Picks" {
		t.Errorf("title = %q", article.Title)
	}
	if article.SearchIntent != core.IntentCommercial {
		t.Errorf("search intent = %q", article.SearchIntent)
	}
	if !strings.Contains(caller.prompt, "Best Surf Wax This Year") {
		t.Error("topic title missing from prompt")
	}
	if !strings.Contains(caller.prompt, "surf wax") {
		t.Error("keywords missing from prompt")
	}
}

func TestGenerateWrapsProviderError(t *testing.T) {
	caller := &fakeCaller{name: "anthropic", err: errors.New("rate limited")}
	g := testGenerator()

	_, err := g.Generate(context.Background(), core.Topic{Title: "T"}, core.Website{}, caller)
	var genErr *GenerateError
	if !errors.As(err, &genErr) {
		t.Fatalf("want GenerateError, got %v", err)
	}
	if genErr.Provider != "anthropic" {
		t.Errorf("provider = %q", genErr.Provider)
	}
}

func TestGenerateRejectsEmptyContent(t *testing.T) {
	caller := &fakeCaller{name: "openai", response: "```\n```"}
	g := testGenerator()

	_, err := g.Generate(context.Background(), core.Topic{Title: "T"}, core.Website{}, caller)
	if !errors.Is(err, llm.ErrEmptyCompletion) {
		t.Errorf("want ErrEmptyCompletion, got %v", err)
	}
}
