package cmd

import (
	"fmt"
	"math/rand"
	"time"

	"seoforge/internal/config"
	"seoforge/internal/generator"
	"seoforge/internal/httpx"
	"seoforge/internal/publisher"
	"seoforge/internal/scanner"
	"seoforge/internal/scheduler"
	"seoforge/internal/search"
	"seoforge/internal/store"
	"seoforge/internal/topics"
)

// buildScheduler wires the full pipeline: one shared HTTP client feeding
// the central store gateway, the scanner, the topic engine, the
// generator, and the publisher.
func buildScheduler(cfg *config.Config) (*scheduler.Scheduler, error) {
	client := httpx.New()
	storeTimeout := config.Duration(cfg.Central.Timeout, 15*time.Second)
	gateway := store.New(cfg.Central.URL, cfg.Central.ServiceKey, client, storeTimeout)

	scan := scanner.New(gateway, client, scanner.Options{
		HomepageTimeout: config.Duration(cfg.Scan.HomepageTimeout, 10*time.Second),
		PageTimeout:     config.Duration(cfg.Scan.PageTimeout, 6*time.Second),
		MaxNavPages:     cfg.Scan.MaxNavPages,
	})

	var searchProvider search.Provider
	if config.HasGoogleSearch() {
		provider, err := search.NewGoogleProvider(cfg.Search.APIKey, cfg.Search.SearchID)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize google search: %w", err)
		}
		searchProvider = provider
	}

	engine := topics.New(gateway, scan, searchProvider)
	gen := generator.New(rand.New(rand.NewSource(time.Now().UnixNano())))
	pub := publisher.New(client, storeTimeout)

	return scheduler.New(gateway, engine, gen, pub, scan, scheduler.Config{
		EncryptionKey:        cfg.Crypto.EncryptionKey,
		PlatformOpenAIKey:    cfg.LLM.OpenAI.APIKey,
		PlatformAnthropicKey: cfg.LLM.Anthropic.APIKey,
		HTTP:                 client,
	}), nil
}
