package llm

import (
	"math/rand"

	"seoforge/internal/core"
	"seoforge/internal/httpx"
)

// Selection is one routed provider choice.
type Selection struct {
	Provider core.Provider
	Key      string
}

// Choose picks a provider for a website based on its rotation mode and the
// keys actually available. Returns false when no usable key exists.
//
// In rotate mode with both keys present the pick alternates off
// last_api_used; with no history it is uniformly random.
func Choose(website core.Website, openaiKey, anthropicKey string, rng *rand.Rand) (Selection, bool) {
	switch website.APIRotationMode {
	case core.RotationOpenAIOnly:
		if openaiKey != "" {
			return Selection{Provider: core.ProviderOpenAI, Key: openaiKey}, true
		}
		return Selection{}, false
	case core.RotationAnthropicOnly:
		if anthropicKey != "" {
			return Selection{Provider: core.ProviderAnthropic, Key: anthropicKey}, true
		}
		return Selection{}, false
	}

	// rotate (default)
	switch {
	case openaiKey != "" && anthropicKey != "":
		switch core.Provider(website.LastAPIUsed) {
		case core.ProviderOpenAI:
			return Selection{Provider: core.ProviderAnthropic, Key: anthropicKey}, true
		case core.ProviderAnthropic:
			return Selection{Provider: core.ProviderOpenAI, Key: openaiKey}, true
		}
		if rng.Intn(2) == 0 {
			return Selection{Provider: core.ProviderOpenAI, Key: openaiKey}, true
		}
		return Selection{Provider: core.ProviderAnthropic, Key: anthropicKey}, true
	case openaiKey != "":
		return Selection{Provider: core.ProviderOpenAI, Key: openaiKey}, true
	case anthropicKey != "":
		return Selection{Provider: core.ProviderAnthropic, Key: anthropicKey}, true
	}
	return Selection{}, false
}

// Other returns the fallback selection for the opposite provider, when its
// key is available.
func Other(sel Selection, openaiKey, anthropicKey string) (Selection, bool) {
	if sel.Provider == core.ProviderOpenAI && anthropicKey != "" {
		return Selection{Provider: core.ProviderAnthropic, Key: anthropicKey}, true
	}
	if sel.Provider == core.ProviderAnthropic && openaiKey != "" {
		return Selection{Provider: core.ProviderOpenAI, Key: openaiKey}, true
	}
	return Selection{}, false
}

// NewCaller builds the concrete client for a selection.
func NewCaller(sel Selection, client *httpx.Client) Caller {
	if sel.Provider == core.ProviderAnthropic {
		return NewAnthropic(sel.Key, "", client)
	}
	return NewOpenAI(sel.Key, "")
}
