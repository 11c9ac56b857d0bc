package prompt

import (
	"fmt"
	"strings"
)

// bannedPhrases are clichéd filler openers the model is told to avoid. The
// list is fixed content, concatenated verbatim into every composition.
var bannedPhrases = []string{
	"I hope this message finds you well",
	"Dear Sir/Madam",
	"I am writing to express my interest",
	"I came across your job posting",
	"I believe I am the perfect fit",
	"With all due respect",
	"As per your requirements",
	"Look no further",
}

// powerPhrases are encouraged constructions that keep generated text
// concrete and client-facing.
var powerPhrases = []string{
	"I noticed that",
	"Here's how I'd approach it",
	"In a similar project I",
	"You'd walk away with",
	"The first thing I'd do is",
}

// bannedPhrasesBlock renders the banned-phrase instruction section.
func bannedPhrasesBlock() string {
	return "Never use these phrases or anything close to them:\n- " +
		strings.Join(bannedPhrases, "\n- ")
}

// powerPhrasesBlock renders the power-phrase instruction section.
func powerPhrasesBlock() string {
	return "Favor concrete, client-facing constructions such as:\n- " +
		strings.Join(powerPhrases, "\n- ")
}

// lengthGuidance translates a character limit into approximate word-count
// guidance. Zero or negative limits yield no guidance.
func lengthGuidance(charLimit int) string {
	if charLimit <= 0 {
		return ""
	}
	words := charLimit / 6
	if words < 1 {
		words = 1
	}
	return fmt.Sprintf(
		"Stay under roughly %d words (the platform enforces a %d character limit).",
		words, charLimit,
	)
}
