package topics

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"seoforge/internal/core"
	"seoforge/internal/llm"
	"seoforge/internal/search"
)

type fakeStore struct {
	unused   *core.Topic
	reusable *core.Topic
	inserted []core.Topic
	marked   []string
}

func (f *fakeStore) FindUnusedTopic(_ context.Context, _ string) (*core.Topic, error) {
	return f.unused, nil
}

func (f *fakeStore) FindReusableTopic(_ context.Context, _ string, _ int) (*core.Topic, error) {
	return f.reusable, nil
}

func (f *fakeStore) InsertTopic(_ context.Context, topic core.Topic) (*core.Topic, error) {
	topic.ID = fmt.Sprintf("t%d", len(f.inserted)+1)
	f.inserted = append(f.inserted, topic)
	return &topic, nil
}

func (f *fakeStore) MarkTopicUsed(_ context.Context, topicID string, _ int) error {
	f.marked = append(f.marked, topicID)
	return nil
}

type fakeScans struct {
	scan *core.WebsiteScan
	err  error
}

func (f *fakeScans) Ensure(_ context.Context, _ core.Website, _ llm.Caller) (*core.WebsiteScan, error) {
	return f.scan, f.err
}

type fakeCaller struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeCaller) Complete(_ context.Context, _, user string, _ llm.Options) (string, error) {
	f.prompts = append(f.prompts, user)
	return f.response, f.err
}

func (f *fakeCaller) Name() string { return "fake" }

func TestNextTopicPrefersUnused(t *testing.T) {
	st := &fakeStore{
		unused:   &core.Topic{ID: "u1", Title: "Unused"},
		reusable: &core.Topic{ID: "r1", Title: "Reusable"},
	}
	e := New(st, nil, nil)

	topic, err := e.NextTopic(context.Background(), core.Website{ID: "w1", MaxTopicUses: 3}, nil)
	if err != nil {
		t.Fatalf("NextTopic: %v", err)
	}
	if topic == nil || topic.ID != "u1" {
		t.Errorf("topic = %+v, want unused", topic)
	}
}

func TestNextTopicFallsBackToReusable(t *testing.T) {
	st := &fakeStore{reusable: &core.Topic{ID: "r1", TimesUsed: 1}}
	e := New(st, nil, nil)

	topic, err := e.NextTopic(context.Background(), core.Website{ID: "w1", MaxTopicUses: 2}, nil)
	if err != nil {
		t.Fatalf("NextTopic: %v", err)
	}
	if topic == nil || topic.ID != "r1" {
		t.Errorf("topic = %+v, want reusable", topic)
	}
}

func TestNextTopicSkipsReusableWhenSingleUse(t *testing.T) {
	st := &fakeStore{reusable: &core.Topic{ID: "r1"}}
	e := New(st, nil, nil)

	topic, err := e.NextTopic(context.Background(), core.Website{ID: "w1", MaxTopicUses: 1}, nil)
	if err != nil {
		t.Fatalf("NextTopic: %v", err)
	}
	if topic != nil {
		t.Errorf("max_uses=1 must not reach the reusable branch, got %+v", topic)
	}
}

func TestNextTopicMintsWhenAutoGenerate(t *testing.T) {
	st := &fakeStore{}
	scans := &fakeScans{scan: &core.WebsiteScan{ContentThemes: []string{"surfing", "gear"}}}
	ai := &fakeCaller{response: `{"topics": [{"title": "Choosing Your First Surfboard", ` +
		`"keywords": ["surfboard"], "category": "gear", "priority": 7, ` +
		`"search_intent": "commercial", "timeliness": "evergreen", "format_hint": "comparison"}]}`}
	e := New(st, scans, nil)

	website := core.Website{ID: "w1", AutoGenerateTopics: true}
	topic, err := e.NextTopic(context.Background(), website, ai)
	if err != nil {
		t.Fatalf("NextTopic: %v", err)
	}
	if topic == nil || topic.Title != "Choosing Your First Surfboard" {
		t.Fatalf("topic = %+v", topic)
	}
	if topic.Source != core.TopicSourceAIGenerated {
		t.Errorf("source = %q, want ai_generated", topic.Source)
	}
	themes, ok := topic.DiscoveryContext["scan_themes"].([]string)
	if !ok || len(themes) != 2 {
		t.Errorf("discovery context missing scan themes: %+v", topic.DiscoveryContext)
	}
	if topic.SearchIntent != core.IntentCommercial || topic.FormatHint != "comparison" {
		t.Errorf("intent = %q, format = %q", topic.SearchIntent, topic.FormatHint)
	}
}

func TestNextTopicNoneWithoutAutoGenerate(t *testing.T) {
	e := New(&fakeStore{}, &fakeScans{}, nil)

	topic, err := e.NextTopic(context.Background(), core.Website{ID: "w1", AutoGenerateTopics: false}, &fakeCaller{})
	if err != nil {
		t.Fatalf("NextTopic: %v", err)
	}
	if topic != nil {
		t.Errorf("expected none, got %+v", topic)
	}
}

func TestValidateSuggestionFallbacks(t *testing.T) {
	topic := validateSuggestion(topicSuggestion{
		Title:        "How to Wax a Surfboard",
		SearchIntent: "bogus",
		Timeliness:   "whenever",
		FormatHint:   "freeform_rant",
	}, "w1")

	if topic.SearchIntent != core.IntentInformational {
		t.Errorf("intent fallback = %q, want informational from classifier", topic.SearchIntent)
	}
	if topic.Timeliness != core.TimelinessEvergreen {
		t.Errorf("timeliness fallback = %q", topic.Timeliness)
	}
	if topic.FormatHint != "" {
		t.Errorf("invalid format hint must be dropped, got %q", topic.FormatHint)
	}
	if topic.Priority != 5 {
		t.Errorf("priority default = %d", topic.Priority)
	}
}

func TestDiscoverPersistsAISuggestions(t *testing.T) {
	st := &fakeStore{}
	scans := &fakeScans{scan: &core.WebsiteScan{NicheDescription: "Surf shop blog."}}
	ai := &fakeCaller{response: `{"topics": [` +
		`{"title": "Topic One", "keywords": ["a"]}, {"title": "Topic Two", "keywords": ["b"]}]}`}
	e := New(st, scans, nil)

	found, err := e.Discover(context.Background(), core.Website{ID: "w1"}, ai, 2)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("discovered = %d, want 2", len(found))
	}
	for _, topic := range found {
		if topic.Source != core.TopicSourceAISuggested {
			t.Errorf("source = %q, want ai_suggested", topic.Source)
		}
		if topic.ID == "" {
			t.Error("discovered topics must be persisted")
		}
	}
}

func TestDiscoverSearchBranch(t *testing.T) {
	st := &fakeStore{}
	scan := &core.WebsiteScan{
		MainKeywords:  []string{"surfboard", "wetsuit", "wax", "fins", "leash", "extra"},
		ContentThemes: []string{"surfing", "equipment"},
	}
	provider := &search.MockProvider{Default: []search.Result{
		{Title: "Surfing Gear Roundup", Snippet: "the best surfing equipment this year", URL: "https://a.example.com"},
		{Title: "Celebrity Gossip Weekly", Snippet: "nothing relevant here", URL: "https://b.example.com"},
	}}
	e := New(st, &fakeScans{scan: scan}, provider)

	found, err := e.Discover(context.Background(), core.Website{ID: "w1", GoogleSearchEnabled: true}, nil, 0)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if len(provider.Queries) > maxQueriesExecuted {
		t.Errorf("executed %d queries, cap is %d", len(provider.Queries), maxQueriesExecuted)
	}
	for _, topic := range found {
		if topic.Source != core.TopicSourceGoogleSearch {
			t.Errorf("source = %q", topic.Source)
		}
		if topic.Title == "Celebrity Gossip Weekly" {
			t.Error("off-theme result must be filtered out")
		}
	}
	if len(found) == 0 {
		t.Error("on-theme result should become a topic")
	}
	if len(found) > maxSearchTopics {
		t.Errorf("found %d topics, cap is %d", len(found), maxSearchTopics)
	}
}

func TestBuildSearchQueriesBounds(t *testing.T) {
	scan := &core.WebsiteScan{
		MainKeywords:  []string{"a", "b", "c", "d", "e", "f", "g"},
		ContentThemes: []string{"t1", "t2", "t3", "t4"},
	}
	queries := buildSearchQueries(scan)
	if len(queries) > maxQueriesBuilt {
		t.Errorf("built %d queries, cap is %d", len(queries), maxQueriesBuilt)
	}
}

func TestDiscoveryPromptIncludesContext(t *testing.T) {
	website := core.Website{Name: "Surf Shack", Domain: "surfshack.example.com", Language: "en"}
	scan := &core.WebsiteScan{
		NicheDescription: "A surf equipment shop.",
		ContentThemes:    []string{"surfing"},
		Headings:         []string{"Beginner Boards"},
	}
	prompt := buildDiscoveryPrompt(website, scan, 5, time.December)

	for _, want := range []string{"Surf Shack", "A surf equipment shop.", "surfing", "Beginner Boards", "December"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
