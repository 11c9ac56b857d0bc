package tone

import "strings"

// Tone is a named writing-style preset applied to generation.
type Tone struct {
	Name       string // Catalog key, lowercase.
	Style      string // One-line style description for the prompt.
	Guidelines string // Structural writing guidance block.
}

// DefaultName is the tone used when the requested one is absent or unknown.
const DefaultName = "friendly"

// catalog holds the fixed tone presets in display order.
var catalog = []Tone{
	{
		Name:  "professional",
		Style: "polished, confident and businesslike",
		Guidelines: "Keep sentences crisp and declarative. Lead with competence and outcomes. " +
			"Avoid slang, exclamation marks and emotional appeals. Close with a clear next step.",
	},
	{
		Name:  "friendly",
		Style: "warm, approachable and conversational",
		Guidelines: "Write like a helpful colleague. Use contractions and plain words. " +
			"Show genuine interest in the client's goal before talking about yourself. Keep it light without being casual about the work.",
	},
	{
		Name:  "bold",
		Style: "direct, assertive and high-energy",
		Guidelines: "Open with a strong claim or promise. Use short punchy sentences. " +
			"Take a clear position on how the problem should be solved. Never hedge with maybes.",
	},
	{
		Name:  "technical",
		Style: "precise, detail-oriented and matter-of-fact",
		Guidelines: "Name concrete tools, methods and metrics. Prefer specifics over adjectives. " +
			"Structure the response around how the work would actually be done, step by step.",
	},
	{
		Name:  "empathetic",
		Style: "understanding, patient and reassuring",
		Guidelines: "Acknowledge the client's situation and frustrations first. Mirror their language. " +
			"Frame your skills as relief for their specific pain. Keep the pace calm and unhurried.",
	},
	{
		Name:  "results-driven",
		Style: "outcome-focused and evidence-backed",
		Guidelines: "Anchor every claim to a measurable result or deliverable. Quantify where possible. " +
			"Describe what the client will have in hand at the end, not what you will be doing.",
	},
}

// Resolve maps a requested tone name to its preset, falling back to the
// default tone for unknown or empty names.
func Resolve(name string) Tone {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range catalog {
		if t.Name == name {
			return t
		}
	}
	return Resolve(DefaultName)
}

// All returns the tone catalog in fixed order, used for multi-variant
// generation where each variant takes a distinct tone.
func All() []Tone {
	out := make([]Tone, len(catalog))
	copy(out, catalog)
	return out
}
