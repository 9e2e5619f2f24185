package llm

import (
	"math/rand"
	"testing"

	"seoforge/internal/core"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(1))
}

func TestChooseSingleProviderModes(t *testing.T) {
	w := core.Website{APIRotationMode: core.RotationOpenAIOnly}
	sel, ok := Choose(w, "ok", "ak", testRNG())
	if !ok || sel.Provider != core.ProviderOpenAI || sel.Key != "ok" {
		t.Errorf("openai_only: got %+v ok=%v", sel, ok)
	}

	w.APIRotationMode = core.RotationAnthropicOnly
	sel, ok = Choose(w, "ok", "ak", testRNG())
	if !ok || sel.Provider != core.ProviderAnthropic {
		t.Errorf("anthropic_only: got %+v ok=%v", sel, ok)
	}

	w.APIRotationMode = core.RotationOpenAIOnly
	if _, ok := Choose(w, "", "ak", testRNG()); ok {
		t.Error("openai_only with no openai key should return none")
	}
}

func TestChooseRotateAlternates(t *testing.T) {
	w := core.Website{APIRotationMode: core.RotationRotate, LastAPIUsed: "openai"}
	for i := 0; i < 20; i++ {
		sel, ok := Choose(w, "ok", "ak", testRNG())
		if !ok || sel.Provider == core.ProviderOpenAI {
			t.Fatalf("rotate with last=openai must pick anthropic, got %+v", sel)
		}
	}

	w.LastAPIUsed = "anthropic"
	sel, _ := Choose(w, "ok", "ak", testRNG())
	if sel.Provider != core.ProviderOpenAI {
		t.Errorf("rotate with last=anthropic must pick openai, got %+v", sel)
	}
}

func TestChooseRotateNoHistoryPicksEither(t *testing.T) {
	w := core.Website{APIRotationMode: core.RotationRotate}
	rng := testRNG()
	seen := map[core.Provider]bool{}
	for i := 0; i < 100; i++ {
		sel, ok := Choose(w, "ok", "ak", rng)
		if !ok {
			t.Fatal("expected a selection")
		}
		seen[sel.Provider] = true
	}
	if !seen[core.ProviderOpenAI] || !seen[core.ProviderAnthropic] {
		t.Errorf("random pick never chose both providers: %v", seen)
	}
}

func TestChooseRotateSingleKey(t *testing.T) {
	w := core.Website{APIRotationMode: core.RotationRotate, LastAPIUsed: "anthropic"}
	sel, ok := Choose(w, "", "ak", testRNG())
	if !ok || sel.Provider != core.ProviderAnthropic {
		t.Errorf("single available key must be returned, got %+v ok=%v", sel, ok)
	}
	if _, ok := Choose(w, "", "", testRNG()); ok {
		t.Error("no keys must return none")
	}
}

func TestChooseEmptyModeDefaultsToRotate(t *testing.T) {
	w := core.Website{LastAPIUsed: "openai"}
	sel, ok := Choose(w, "ok", "ak", testRNG())
	if !ok || sel.Provider != core.ProviderAnthropic {
		t.Errorf("empty mode should rotate, got %+v", sel)
	}
}

func TestOther(t *testing.T) {
	sel := Selection{Provider: core.ProviderOpenAI, Key: "ok"}
	other, ok := Other(sel, "ok", "ak")
	if !ok || other.Provider != core.ProviderAnthropic || other.Key != "ak" {
		t.Errorf("Other(openai) = %+v ok=%v", other, ok)
	}
	if _, ok := Other(sel, "ok", ""); ok {
		t.Error("Other without the opposite key should return none")
	}
}
