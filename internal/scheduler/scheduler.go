// Package scheduler is the orchestrator: it finds due websites, runs each
// one end-to-end (credentials, topic, generation, scoring, publish,
// bookkeeping), and computes the next run time per the website's
// scheduling mode.
package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"seoforge/internal/catalog"
	"seoforge/internal/core"
	"seoforge/internal/cryptobox"
	"seoforge/internal/httpx"
	"seoforge/internal/llm"
	"seoforge/internal/logger"
	"seoforge/internal/seo"
	"seoforge/internal/store"
)

// Failure messages recorded on the generation log.
const (
	msgGenerationFailed = "Content generation failed (both APIs)"
	msgPublishFailed    = "Failed to save article"
)

// recentFormatsCap bounds the per-website format history.
const recentFormatsCap = 10

// Store is the slice of the central store the orchestrator needs.
type Store interface {
	ListDueWebsites(ctx context.Context, now time.Time) ([]core.Website, error)
	GetWebsite(ctx context.Context, id string) (*core.Website, error)
	GetAPIKeys(ctx context.Context, websiteID string) (*core.APIKeys, error)
	CreateGenerationLog(ctx context.Context, websiteID, topicID string) (string, error)
	FinalizeGenerationLog(ctx context.Context, logID, status, errMsg string, result *store.LogResult) error
	UpdateWebsiteAfterRun(ctx context.Context, websiteID string, nextRun time.Time, lastAPI string, recentFormats []string, lastPostingHour int) error
}

// TopicEngine picks, mints, and retires topics.
type TopicEngine interface {
	NextTopic(ctx context.Context, website core.Website, ai llm.Caller) (*core.Topic, error)
	MarkUsed(ctx context.Context, topicID string, maxUses int) error
	Discover(ctx context.Context, website core.Website, ai llm.Caller, count int) ([]core.Topic, error)
}

// ArticleGenerator produces an article from a topic on one provider.
type ArticleGenerator interface {
	Generate(ctx context.Context, topic core.Topic, website core.Website, caller llm.Caller) (*core.Article, error)
}

// Publisher ships an article to a tenant store.
type Publisher interface {
	Publish(ctx context.Context, article core.Article, website core.Website, targetURL, targetKey string) error
}

// SiteScanner crawls tenant sites.
type SiteScanner interface {
	Scan(ctx context.Context, website core.Website, ai llm.Caller) (*core.WebsiteScan, error)
	Preview(ctx context.Context, domain string, ai llm.Caller) (*core.WebsiteScan, error)
}

// Config carries the process-wide secrets and fallbacks.
type Config struct {
	EncryptionKey        string
	PlatformOpenAIKey    string
	PlatformAnthropicKey string
	HTTP                 *httpx.Client
}

// Scheduler drives the content pipeline.
type Scheduler struct {
	store     Store
	topics    TopicEngine
	generator ArticleGenerator
	publisher Publisher
	scanner   SiteScanner
	cfg       Config

	newCaller func(llm.Selection) llm.Caller

	rngMu sync.Mutex
	rng   *rand.Rand

	locks websiteLocks
}

// New creates a Scheduler.
func New(st Store, topics TopicEngine, generator ArticleGenerator, publisher Publisher, scanner SiteScanner, cfg Config) *Scheduler {
	if cfg.HTTP == nil {
		cfg.HTTP = httpx.New()
	}
	return &Scheduler{
		store:     st,
		topics:    topics,
		generator: generator,
		publisher: publisher,
		scanner:   scanner,
		cfg:       cfg,
		newCaller: func(sel llm.Selection) llm.Caller {
			return llm.NewCaller(sel, cfg.HTTP)
		},
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		locks: websiteLocks{held: map[string]bool{}},
	}
}

// RunOutcome summarizes one website's end-to-end run.
type RunOutcome struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	ArticleTitle string `json:"article_title,omitempty"`
	ArticleSlug  string `json:"article_slug,omitempty"`
	SEOScore     int    `json:"seo_score,omitempty"`
	APIUsed      string `json:"api_used,omitempty"`
}

// Tick processes every due website once and returns the number that
// published an article. A failure in one website never aborts the tick.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) (int, error) {
	websites, err := s.store.ListDueWebsites(ctx, now)
	if err != nil {
		return 0, err
	}
	if len(websites) == 0 {
		return 0, nil
	}
	logger.Info("tick started", "due_websites", len(websites))

	processed := 0
	for _, website := range websites {
		outcome := s.runWebsite(ctx, website, now)
		if outcome.Success {
			processed++
		} else if outcome.Message != "" {
			logger.Warn("website run did not publish", "website_id", website.ID, "reason", outcome.Message)
		}
	}
	logger.Info("tick finished", "processed", processed)
	return processed, nil
}

// RunWebsite runs a single website end-to-end, regardless of schedule.
func (s *Scheduler) RunWebsite(ctx context.Context, websiteID string) (RunOutcome, error) {
	website, err := s.store.GetWebsite(ctx, websiteID)
	if err != nil {
		return RunOutcome{}, err
	}
	return s.runWebsite(ctx, *website, time.Now()), nil
}

// runWebsite is the per-tenant task. Per-website serialization: a run
// already in flight for this website makes this one a no-op.
func (s *Scheduler) runWebsite(ctx context.Context, website core.Website, now time.Time) RunOutcome {
	if !s.locks.tryAcquire(website.ID) {
		return RunOutcome{Message: "run already in progress"}
	}
	defer s.locks.release(website.ID)

	runID := uuid.NewString()
	logger.Info("website run started", "run_id", runID, "website_id", website.ID)

	creds, err := s.credentials(ctx, website.ID)
	if err != nil {
		logger.Error("credentials unavailable", err, "website_id", website.ID)
		return RunOutcome{Message: "credentials unavailable"}
	}

	topic, err := s.topics.NextTopic(ctx, website, s.topicCaller(creds))
	if err != nil {
		logger.Error("topic selection failed", err, "website_id", website.ID)
		return RunOutcome{Message: "topic selection failed"}
	}
	if topic == nil {
		// No work: the site stays due and gets checked again next tick.
		return RunOutcome{Message: "no topic available"}
	}

	logID, err := s.store.CreateGenerationLog(ctx, website.ID, topic.ID)
	if err != nil {
		logger.Error("could not open generation log", err, "website_id", website.ID)
		return RunOutcome{Message: "could not open generation log"}
	}

	article, apiUsed, err := s.generateWithFallback(ctx, *topic, website, creds)
	if err != nil {
		s.finalizeFailed(ctx, logID, msgGenerationFailed)
		return RunOutcome{Message: msgGenerationFailed}
	}

	if article.SearchIntent == "" {
		article.SearchIntent = catalog.ClassifyIntent(topic.Title)
	}
	total, breakdown, geo := seo.Score(*article)
	article.SEOScore = total
	article.GEOOptimized = geo
	logger.Debug("article scored", "website_id", website.ID, "seo_score", total,
		"geo", breakdown.GEO, "geo_optimized", geo)

	if err := s.publisher.Publish(ctx, *article, website, creds.targetURL, creds.targetKey); err != nil {
		logger.Error("publish failed", err, "website_id", website.ID, "slug", article.Slug)
		s.finalizeFailed(ctx, logID, msgPublishFailed)
		return RunOutcome{Message: msgPublishFailed}
	}

	if err := s.store.FinalizeGenerationLog(ctx, logID, core.LogSuccess, "", &store.LogResult{
		ArticleTitle: article.Title,
		ArticleSlug:  article.Slug,
		APIUsed:      apiUsed,
		SEOScore:     article.SEOScore,
	}); err != nil {
		logger.Error("failed to finalize generation log", err, "log_id", logID)
	}

	maxUses := website.MaxTopicUses
	if maxUses < 1 {
		maxUses = 1
	}
	if err := s.topics.MarkUsed(ctx, topic.ID, maxUses); err != nil {
		logger.Error("failed to mark topic used", err, "topic_id", topic.ID)
	}

	nextRun := s.nextRun(website, now)
	formats := appendFormat(website.RecentFormats, article.FormatUsed)
	if err := s.store.UpdateWebsiteAfterRun(ctx, website.ID, nextRun, apiUsed, formats, now.Hour()); err != nil {
		logger.Error("failed to update website after run", err, "website_id", website.ID)
	}

	logger.Info("article published", "run_id", runID, "website_id", website.ID, "slug", article.Slug,
		"seo_score", article.SEOScore, "api_used", apiUsed, "next_run", nextRun.Format(time.RFC3339))
	return RunOutcome{
		Success:      true,
		ArticleTitle: article.Title,
		ArticleSlug:  article.Slug,
		SEOScore:     article.SEOScore,
		APIUsed:      apiUsed,
	}
}

// generateWithFallback tries the routed provider and once more on the
// other one. The provider actually used is returned for bookkeeping.
func (s *Scheduler) generateWithFallback(ctx context.Context, topic core.Topic, website core.Website, creds credentials) (*core.Article, string, error) {
	sel, ok := llm.Choose(website, creds.openaiKey, creds.anthropicKey, s.randSource())
	if !ok {
		return nil, "", fmt.Errorf("no llm key available for website %s", website.ID)
	}

	article, err := s.generator.Generate(ctx, topic, website, s.newCaller(sel))
	if err == nil {
		return article, string(sel.Provider), nil
	}
	logger.Warn("primary provider failed", "website_id", website.ID,
		"provider", string(sel.Provider), "error", err.Error())

	fallback, ok := llm.Other(sel, creds.openaiKey, creds.anthropicKey)
	if !ok {
		return nil, "", err
	}
	article, err = s.generator.Generate(ctx, topic, website, s.newCaller(fallback))
	if err != nil {
		return nil, "", err
	}
	return article, string(fallback.Provider), nil
}

// DiscoverTopics runs bulk discovery for one website.
func (s *Scheduler) DiscoverTopics(ctx context.Context, websiteID string, count int) ([]core.Topic, error) {
	website, err := s.store.GetWebsite(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	creds, err := s.llmCredentials(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	return s.topics.Discover(ctx, *website, s.topicCaller(creds), count)
}

// ScanWebsite forces a fresh scan of one website.
func (s *Scheduler) ScanWebsite(ctx context.Context, websiteID string) (*core.WebsiteScan, error) {
	website, err := s.store.GetWebsite(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	creds, err := s.llmCredentials(ctx, websiteID)
	if err != nil {
		return nil, err
	}
	return s.scanner.Scan(ctx, *website, s.topicCaller(creds))
}

// PreviewScan crawls a bare domain without persisting anything. Platform
// keys, when configured, let the AI analyzer run.
func (s *Scheduler) PreviewScan(ctx context.Context, domain string) (*core.WebsiteScan, error) {
	var ai llm.Caller
	if s.cfg.PlatformOpenAIKey != "" {
		ai = s.newCaller(llm.Selection{Provider: core.ProviderOpenAI, Key: s.cfg.PlatformOpenAIKey})
	} else if s.cfg.PlatformAnthropicKey != "" {
		ai = s.newCaller(llm.Selection{Provider: core.ProviderAnthropic, Key: s.cfg.PlatformAnthropicKey})
	}
	return s.scanner.Preview(ctx, domain, ai)
}

// credentials is the decrypted per-website bundle. It lives only for the
// duration of one website task and is never logged.
type credentials struct {
	openaiKey    string
	anthropicKey string
	targetURL    string
	targetKey    string
}

// credentials loads and decrypts the website's keys. LLM keys fall back
// to the platform-wide ones; a missing target key aborts the website.
func (s *Scheduler) credentials(ctx context.Context, websiteID string) (credentials, error) {
	creds, keys, err := s.loadLLMKeys(ctx, websiteID)
	if err != nil {
		return credentials{}, err
	}
	if keys == nil {
		return credentials{}, fmt.Errorf("no api_keys row for website %s", websiteID)
	}

	creds.targetURL = keys.TargetURL
	if creds.targetURL == "" {
		return credentials{}, fmt.Errorf("no target database url for website %s", websiteID)
	}
	creds.targetKey, err = cryptobox.Decrypt(keys.TargetServiceKeyEncrypted, s.cfg.EncryptionKey)
	if err != nil {
		return credentials{}, fmt.Errorf("target service key for website %s: %w", websiteID, err)
	}
	return creds, nil
}

// llmCredentials is the lighter variant for discovery and scans, which
// never touch the tenant database.
func (s *Scheduler) llmCredentials(ctx context.Context, websiteID string) (credentials, error) {
	creds, _, err := s.loadLLMKeys(ctx, websiteID)
	return creds, err
}

func (s *Scheduler) loadLLMKeys(ctx context.Context, websiteID string) (credentials, *core.APIKeys, error) {
	creds := credentials{
		openaiKey:    s.cfg.PlatformOpenAIKey,
		anthropicKey: s.cfg.PlatformAnthropicKey,
	}

	keys, err := s.store.GetAPIKeys(ctx, websiteID)
	if err != nil {
		return credentials{}, nil, err
	}
	if keys == nil {
		return creds, nil, nil
	}

	if keys.OpenAIKeyEncrypted != "" {
		if plain, err := cryptobox.Decrypt(keys.OpenAIKeyEncrypted, s.cfg.EncryptionKey); err == nil {
			creds.openaiKey = plain
		} else {
			logger.Warn("openai key decrypt failed, using platform key", "website_id", websiteID)
		}
	}
	if keys.AnthropicKeyEncrypted != "" {
		if plain, err := cryptobox.Decrypt(keys.AnthropicKeyEncrypted, s.cfg.EncryptionKey); err == nil {
			creds.anthropicKey = plain
		} else {
			logger.Warn("anthropic key decrypt failed, using platform key", "website_id", websiteID)
		}
	}
	return creds, keys, nil
}

// topicCaller builds the utility caller used for scans and topic minting,
// preferring OpenAI. Nil when no key exists.
func (s *Scheduler) topicCaller(creds credentials) llm.Caller {
	if creds.openaiKey != "" {
		return s.newCaller(llm.Selection{Provider: core.ProviderOpenAI, Key: creds.openaiKey})
	}
	if creds.anthropicKey != "" {
		return s.newCaller(llm.Selection{Provider: core.ProviderAnthropic, Key: creds.anthropicKey})
	}
	return nil
}

func (s *Scheduler) finalizeFailed(ctx context.Context, logID, msg string) {
	if err := s.store.FinalizeGenerationLog(ctx, logID, core.LogFailed, msg, nil); err != nil {
		logger.Error("failed to finalize generation log", err, "log_id", logID)
	}
}

// appendFormat appends to the format history, trimmed to the last 10.
func appendFormat(history []string, format string) []string {
	if format == "" {
		return history
	}
	history = append(history, format)
	if len(history) > recentFormatsCap {
		history = history[len(history)-recentFormatsCap:]
	}
	return history
}

// randSource derives a per-call rng so concurrent runs never share one.
func (s *Scheduler) randSource() *rand.Rand {
	s.rngMu.Lock()
	seed := s.rng.Int63()
	s.rngMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

// websiteLocks serializes runs per website id.
type websiteLocks struct {
	mu   sync.Mutex
	held map[string]bool
}

func (l *websiteLocks) tryAcquire(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[id] {
		return false
	}
	l.held[id] = true
	return true
}

func (l *websiteLocks) release(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, id)
}
