package core

import "time"

// ScheduleMode controls how a website's next publication time is chosen.
type ScheduleMode string

const (
	ScheduleFixed  ScheduleMode = "fixed"
	ScheduleWindow ScheduleMode = "window"
	ScheduleRandom ScheduleMode = "random"
)

// RotationMode controls which LLM provider a website uses.
type RotationMode string

const (
	RotationOpenAIOnly    RotationMode = "openai_only"
	RotationAnthropicOnly RotationMode = "anthropic_only"
	RotationRotate        RotationMode = "rotate"
)

// Provider identifies an LLM provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// TopicSource records where a topic came from.
type TopicSource string

const (
	TopicSourceAIGenerated  TopicSource = "ai_generated"
	TopicSourceAISuggested  TopicSource = "ai_suggested"
	TopicSourceGoogleSearch TopicSource = "google_search"
	TopicSourceManual       TopicSource = "manual"
)

// SearchIntent classifies what a searcher is trying to do.
type SearchIntent string

const (
	IntentInformational SearchIntent = "informational"
	IntentCommercial    SearchIntent = "commercial"
	IntentTransactional SearchIntent = "transactional"
	IntentNavigational  SearchIntent = "navigational"
)

// Timeliness classifies how time-sensitive a topic is.
type Timeliness string

const (
	TimelinessEvergreen Timeliness = "evergreen"
	TimelinessSeasonal  Timeliness = "seasonal"
	TimelinessNews      Timeliness = "news"
	TimelinessTrending  Timeliness = "trending"
)

// ScanStatus is the lifecycle state of a WebsiteScan.
type ScanStatus string

const (
	ScanPending   ScanStatus = "pending"
	ScanScanning  ScanStatus = "scanning"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
)

// Generation log statuses.
const (
	LogGenerating = "generating"
	LogSuccess    = "success"
	LogFailed     = "failed"
)

// HumanElements are the genuineness switches applied on top of a voice style.
type HumanElements struct {
	RhetoricalQuestions  bool `json:"rhetorical_questions"`
	ConversationalAsides bool `json:"conversational_asides"`
	OpinionMarkers       bool `json:"opinion_markers"`
	UncertaintyMarkers   bool `json:"uncertainty_markers"`
	AnecdoteHints        bool `json:"anecdote_hints"`
	TransitionVariety    bool `json:"transition_variety"`
}

// Website is one tenant configuration. It is created externally; the
// pipeline only reads it and writes back scheduling and rotation fields.
type Website struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Domain   string `json:"domain"`
	IsActive bool   `json:"is_active"`

	// Scheduling policy.
	ScheduleMode       ScheduleMode `json:"schedule_mode"`
	MinHoursBetween    int          `json:"min_hours_between_posts"`
	MaxHoursBetween    int          `json:"max_hours_between_posts"`
	PreferredDays      []int        `json:"preferred_days"` // time.Weekday values
	PostingWindowStart int          `json:"posting_window_start"`
	PostingWindowEnd   int          `json:"posting_window_end"`
	LastPostingHour    *int         `json:"last_posting_hour"`
	DaysBetweenPosts   int          `json:"days_between_posts"`
	PreferredTime      string       `json:"preferred_time"` // "HH:MM", fixed mode

	// Topic policy.
	MaxTopicUses        int  `json:"max_topic_uses"`
	AutoGenerateTopics  bool `json:"auto_generate_topics"`
	GoogleSearchEnabled bool `json:"google_search_enabled"`
	ScanFrequencyDays   int  `json:"scan_frequency_days"`
	AutoScan            bool `json:"auto_scan"`

	// Generation policy.
	EnabledFormats  []string      `json:"enabled_content_formats"`
	VoiceStyle      string        `json:"voice_style"`
	HumanElements   HumanElements `json:"human_elements"`
	APIRotationMode RotationMode  `json:"api_rotation_mode"`
	LastAPIUsed     string        `json:"last_api_used"`
	RecentFormats   []string      `json:"recent_formats"` // bounded to 10

	// Content identity.
	Language              string `json:"language"`
	DefaultAuthor         string `json:"default_author"`
	SystemPromptOpenAI    string `json:"system_prompt_openai"`
	SystemPromptAnthropic string `json:"system_prompt_anthropic"`
	ProductID             string `json:"product_id"`

	LastGeneratedAt *time.Time `json:"last_generated_at"`
	NextScheduledAt *time.Time `json:"next_scheduled_at"`
}

// APIKeys is the per-website credentials bundle. The encrypted fields are
// only meaningful together with the process-wide encryption key.
type APIKeys struct {
	WebsiteID                 string `json:"website_id"`
	OpenAIKeyEncrypted        string `json:"openai_api_key_encrypted"`
	AnthropicKeyEncrypted     string `json:"anthropic_api_key_encrypted"`
	TargetURL                 string `json:"target_supabase_url"`
	TargetServiceKeyEncrypted string `json:"target_supabase_service_key_encrypted"`
}

// Topic is a candidate article subject.
type Topic struct {
	ID               string         `json:"id"`
	WebsiteID        string         `json:"website_id"`
	Title            string         `json:"title"`
	Keywords         []string       `json:"keywords"`
	Category         string         `json:"category"`
	Priority         int            `json:"priority"` // larger = higher
	Source           TopicSource    `json:"source"`
	IsUsed           bool           `json:"is_used"`
	TimesUsed        int            `json:"times_used"`
	UsedAt           *time.Time     `json:"used_at"`
	DiscoveryContext map[string]any `json:"discovery_context"`
	FormatHint       string         `json:"format_hint"`
	SearchIntent     SearchIntent   `json:"search_intent"`
	Timeliness       Timeliness     `json:"timeliness"`
	TrendingReason   string         `json:"trending_reason"`
}

// NavLink is one navigation entry found on a scanned site.
type NavLink struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// WebsiteScan is the cached content profile of a tenant's public site.
// One row per website.
type WebsiteScan struct {
	WebsiteID        string     `json:"website_id"`
	HomepageTitle    string     `json:"homepage_title"`
	MetaDescription  string     `json:"meta_description"`
	MainKeywords     []string   `json:"main_keywords"`    // bounded to 50
	Headings         []string   `json:"headings"`         // bounded to 30
	NavigationLinks  []NavLink  `json:"navigation_links"` // bounded to 10
	ContentThemes    []string   `json:"content_themes"`
	NicheDescription string     `json:"niche_description,omitempty"`
	PagesScanned     int        `json:"pages_scanned"`
	Status           ScanStatus `json:"status"`
	LastScannedAt    *time.Time `json:"last_scanned_at"`
	ErrorMessage     string     `json:"error_message,omitempty"`
}

// GenerationLog is one record per article-generation attempt.
type GenerationLog struct {
	ID           string     `json:"id"`
	WebsiteID    string     `json:"website_id"`
	TopicID      string     `json:"topic_id"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at"`
	ArticleTitle string     `json:"article_title,omitempty"`
	ArticleSlug  string     `json:"article_slug,omitempty"`
	APIUsed      string     `json:"api_used,omitempty"`
	SEOScore     int        `json:"seo_score,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}

// Article is the generated output before it ships to a tenant database.
type Article struct {
	Title           string       `json:"title"`
	Slug            string       `json:"slug"`
	Content         string       `json:"content"` // HTML body
	Excerpt         string       `json:"excerpt"`
	MetaDescription string       `json:"meta_description"`
	Tags            []string     `json:"tags"`
	PrimaryKeyword  string       `json:"primary_keyword"`
	Author          string       `json:"author"`
	ReadTime        int          `json:"read_time"`
	WordCount       int          `json:"word_count"`
	Category        string       `json:"category"`
	SEOScore        int          `json:"seo_score"`
	Language        string       `json:"language"`
	GEOOptimized    bool         `json:"geo_optimized"`
	SearchIntent    SearchIntent `json:"search_intent"`
	FormatUsed      string       `json:"-"` // catalog key, kept for format history
}
