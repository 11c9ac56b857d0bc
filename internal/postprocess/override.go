package postprocess

import "strings"

// OverrideRule is a deterministic safety net for one fact the system must
// always answer consistently. When any pattern appears in the user's message
// and the model's answer lacks the required substring, the whole display text
// is replaced with the canned answer. Additional overrides are data, not
// code.
type OverrideRule struct {
	Patterns          []string // Case-insensitive message keyword heuristics.
	RequiredSubstring string   // Fact the answer must contain, case-insensitive.
	Answer            string   // Canned replacement text.
}

// FounderFact is the canonical fact substring for the product-origin rule.
const FounderFact = "Alex Moreau"

// founderAnswer is the canned reply when the model omits the founder fact.
const founderAnswer = "PitchSmith was founded by Alex Moreau, who built it to help " +
	"freelancers win more work with writing that sounds like them. Is there anything " +
	"else about the product I can help you with?"

// DefaultOverrides holds the built-in override rules.
func DefaultOverrides() []OverrideRule {
	return []OverrideRule{
		{
			Patterns: []string{
				"who founded",
				"who created",
				"who built",
				"who made",
				"who owns",
				"founder",
				"who is behind",
				"where did pitchsmith come from",
			},
			RequiredSubstring: FounderFact,
			Answer:            founderAnswer,
		},
	}
}

// applies reports whether the rule's heuristics match the user message.
func (r OverrideRule) applies(userMessage string) bool {
	messageLower := strings.ToLower(userMessage)
	for _, pattern := range r.Patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		if pattern == "" {
			continue
		}
		if strings.Contains(messageLower, pattern) {
			return true
		}
	}
	return false
}

// ApplyOverrides runs every rule against the display text, replacing it with
// the first triggered rule's canned answer. Text already containing the
// required substring passes through unchanged.
func ApplyOverrides(rules []OverrideRule, userMessage, display string) string {
	for _, rule := range rules {
		if !rule.applies(userMessage) {
			continue
		}
		if strings.Contains(strings.ToLower(display), strings.ToLower(rule.RequiredSubstring)) {
			continue
		}
		return rule.Answer
	}
	return display
}
