package generator

import (
	"fmt"
	"strings"

	"seoforge/internal/catalog"
	"seoforge/internal/core"
)

// buildPrompt composes the user prompt: format structure, heading style,
// voice and tone, genuineness cues, the GEO instruction for the topic's
// search intent, and the formatting contract.
func buildPrompt(topic core.Topic, website core.Website, format catalog.ContentFormat) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write a comprehensive, SEO-optimized blog article about: %s\n\n", topic.Title)
	fmt.Fprintf(&b, "Target keywords: %s\n", strings.Join(topic.Keywords, ", "))
	fmt.Fprintf(&b, "Language: %s\n", languageOrDefault(website.Language))
	fmt.Fprintf(&b, "Category: %s\n\n", categoryOrDefault(topic.Category))

	fmt.Fprintf(&b, "Content format: %s (%d-%d words)\n", format.Name, format.MinWords, format.MaxWords)
	b.WriteString("Required structure, in order:\n")
	for i, section := range format.Sections {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, section.Key, section.Description)
	}
	fmt.Fprintf(&b, "Heading style: %s. Overall tone: %s.\n\n", format.HeadingStyle, format.Tone)

	b.WriteString(voiceInstruction(website))
	b.WriteString(genuinenessInstruction(website.HumanElements))
	b.WriteString(geoInstruction(topic.SearchIntent))

	b.WriteString("\nFormatting contract:\n")
	b.WriteString("- Write in HTML with proper headings (h2, h3), paragraphs, and lists\n")
	b.WriteString("- Return only the article body: no document wrapper, no code fences, no commentary\n")
	b.WriteString("- Start directly at the first section\n")
	return b.String()
}

// voiceInstruction translates the website's voice style into prose rules.
func voiceInstruction(website core.Website) string {
	voice := catalog.Voice(website.VoiceStyle)

	var b strings.Builder
	fmt.Fprintf(&b, "Voice: %s, %s sentences, write as %q.\n",
		voice.Formality, voice.SentenceComplexity, voice.FirstPerson)
	if voice.UseContractions {
		b.WriteString("Use contractions naturally.\n")
	} else {
		b.WriteString("Avoid contractions.\n")
	}
	if voice.UseEmoji {
		b.WriteString("An occasional emoji is welcome where it fits.\n")
	}
	return b.String()
}

// genuinenessInstruction turns the human-elements flags into writing cues.
func genuinenessInstruction(h core.HumanElements) string {
	var cues []string
	if h.RhetoricalQuestions {
		cues = append(cues, "pose an occasional rhetorical question")
	}
	if h.ConversationalAsides {
		cues = append(cues, "allow brief conversational asides")
	}
	if h.OpinionMarkers {
		cues = append(cues, "mark opinions as opinions (\"in our experience\", \"we find\")")
	}
	if h.UncertaintyMarkers {
		cues = append(cues, "acknowledge uncertainty where it genuinely exists")
	}
	if h.AnecdoteHints {
		cues = append(cues, "hint at practical anecdotes")
	}
	if h.TransitionVariety {
		cues = append(cues, "vary transitions between sections")
	}
	if len(cues) == 0 {
		return ""
	}
	return "To read naturally: " + strings.Join(cues, "; ") + ".\n"
}

// geoInstruction shapes the article for extraction by AI search engines,
// weighted by the topic's search intent.
func geoInstruction(intent core.SearchIntent) string {
	var b strings.Builder
	b.WriteString("Generative-engine optimization:\n")
	b.WriteString("- Open with a TL;DR summary (50-75 words)\n")
	b.WriteString("- End with an FAQ section of 3-5 questions (<h3>Q: question</h3><p>answer</p>)\n")
	b.WriteString("- Use bullet lists for enumerable facts and include concrete numbers with units\n")

	switch catalog.GEOPriority(intent) {
	case "high":
		b.WriteString("- Add quotable, standalone statements that answer the query directly\n")
		b.WriteString("- Define key terms explicitly (\"X is ...\")\n")
	case "medium":
		b.WriteString("- Define the core concept early in plain language\n")
	}
	return b.String()
}

// systemPromptFor returns the website's per-provider override when set,
// else a default derived from the voice style.
func systemPromptFor(website core.Website, provider string) string {
	if provider == "openai" && website.SystemPromptOpenAI != "" {
		return website.SystemPromptOpenAI
	}
	if provider == "anthropic" && website.SystemPromptAnthropic != "" {
		return website.SystemPromptAnthropic
	}
	return defaultSystemPrompt(website)
}

func defaultSystemPrompt(website core.Website) string {
	voice := catalog.Voice(website.VoiceStyle)
	name := website.Name
	if name == "" {
		name = "a professional website"
	}
	return fmt.Sprintf(`You are an expert content writer for %s.
Write engaging, informative, and SEO-optimized blog articles in a %s, %s voice.
Focus on providing value to readers while incorporating relevant keywords naturally.
Your content should be well-structured, easy to read, and actionable.
Always include practical examples and real-world applications where relevant.`,
		name, voice.Formality, voice.Key)
}

func languageOrDefault(lang string) string {
	if lang == "" {
		return "en-US"
	}
	return lang
}

func categoryOrDefault(category string) string {
	if category == "" {
		return "general"
	}
	return category
}
