package postprocess

import (
	"strings"

	"github.com/pitchsmith/pitchsmith/internal/models"

	log "github.com/sirupsen/logrus"
)

// Result is the deterministic outcome of post-processing one model response.
type Result struct {
	DisplayText string     // Final user-facing text.
	Activities  []Activity // Extracted schedule entries, chat kind only.
	CharCount   int        // Character count of DisplayText.
	WordCount   int        // Word count of DisplayText.
}

// Processor runs structured extraction, the factual override guard, and
// count bookkeeping, in that fixed order. Extraction failures degrade to "no
// structured data" and never fail the call.
type Processor struct {
	extractor StructuredBlockExtractor
	overrides []OverrideRule
}

// NewProcessor constructs a Processor with defaults for nil arguments.
func NewProcessor(extractor StructuredBlockExtractor, overrides []OverrideRule) *Processor {
	if extractor == nil {
		extractor = NewScheduleExtractor()
	}
	if overrides == nil {
		overrides = DefaultOverrides()
	}
	return &Processor{extractor: extractor, overrides: overrides}
}

// Process post-processes raw model text for the given artifact kind. The
// user message feeds the override heuristics. Counts are computed from the
// final display text, never from the raw text.
func (p *Processor) Process(raw, kind, userMessage string) Result {
	display := raw
	var activities []Activity

	if kind == models.KindChatReply {
		stripped, extracted, errExtract := p.extractor.Extract(raw)
		display = stripped
		activities = extracted
		if errExtract != nil {
			log.WithError(errExtract).Debug("schedule block discarded")
		}
	}

	display = ApplyOverrides(p.overrides, userMessage, display)

	return Result{
		DisplayText: display,
		Activities:  activities,
		CharCount:   len([]rune(display)),
		WordCount:   len(strings.Fields(display)),
	}
}
