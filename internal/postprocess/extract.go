package postprocess

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Schedule block markers. These are a versioned wire contract with the model
// prompt: changing them breaks extraction of any output generated under the
// old convention.
const (
	ScheduleOpenMarker  = "[SCHEDULE_BLOCK]"
	ScheduleCloseMarker = "[/SCHEDULE_BLOCK]"
)

// Activity is one schedule entry extracted from a model response.
type Activity struct {
	Name      string   `json:"name"`
	Category  string   `json:"category,omitempty"`
	StartTime string   `json:"start_time,omitempty"`
	EndTime   string   `json:"end_time,omitempty"`
	Days      []string `json:"days,omitempty"`
	Priority  string   `json:"priority,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// StructuredBlockExtractor scrapes an embedded structured block out of free
// model text. The delimiter convention and payload schema live entirely
// behind this interface so they can evolve without touching the pipeline.
type StructuredBlockExtractor interface {
	// Extract returns the text with the delimited region removed plus any
	// parsed activities. The region is stripped even when parsing fails; a
	// parse failure is reported through err and never through display.
	Extract(raw string) (display string, activities []Activity, err error)
}

// schedulePayload is the expected shape inside the delimited block.
type schedulePayload struct {
	Activities []Activity `json:"activities"`
}

// ScheduleExtractor parses the marker-delimited schedule block.
type ScheduleExtractor struct{}

// NewScheduleExtractor constructs a ScheduleExtractor.
func NewScheduleExtractor() *ScheduleExtractor { return &ScheduleExtractor{} }

// Extract implements StructuredBlockExtractor.
func (e *ScheduleExtractor) Extract(raw string) (string, []Activity, error) {
	open := strings.Index(raw, ScheduleOpenMarker)
	if open < 0 {
		return raw, nil, nil
	}
	rest := raw[open+len(ScheduleOpenMarker):]
	close := strings.Index(rest, ScheduleCloseMarker)
	if close < 0 {
		// Unterminated block: strip from the open marker onward.
		display := strings.TrimSpace(raw[:open])
		return display, nil, fmt.Errorf("postprocess: unterminated schedule block")
	}

	inner := rest[:close]
	display := strings.TrimSpace(raw[:open] + rest[close+len(ScheduleCloseMarker):])

	activities, errParse := parseActivities(inner)
	if errParse != nil {
		return display, nil, errParse
	}
	return display, activities, nil
}

// parseActivities decodes the block payload, accepting either the object
// form {"activities": [...]} or a bare array. Entries without a name are
// discarded.
func parseActivities(inner string) ([]Activity, error) {
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return nil, nil
	}

	var payload schedulePayload
	if errObject := json.Unmarshal([]byte(inner), &payload); errObject != nil {
		var bare []Activity
		if errArray := json.Unmarshal([]byte(inner), &bare); errArray != nil {
			return nil, fmt.Errorf("postprocess: parse schedule block: %w", errObject)
		}
		payload.Activities = bare
	}

	out := make([]Activity, 0, len(payload.Activities))
	for _, activity := range payload.Activities {
		if strings.TrimSpace(activity.Name) == "" {
			continue
		}
		out = append(out, activity)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
