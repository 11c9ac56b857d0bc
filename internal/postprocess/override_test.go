package postprocess

import (
	"strings"
	"testing"
)

func TestOverrideReplacesAnswerMissingFact(t *testing.T) {
	rules := DefaultOverrides()
	got := ApplyOverrides(rules, "Who founded this product?", "It was built by an anonymous team.")
	if !strings.Contains(got, FounderFact) {
		t.Fatalf("expected canned founder answer, got %q", got)
	}
}

func TestOverridePassesWhenFactPresent(t *testing.T) {
	rules := DefaultOverrides()
	original := "PitchSmith was created by Alex Moreau a few years back."
	got := ApplyOverrides(rules, "who created pitchsmith?", original)
	if got != original {
		t.Fatalf("expected pass-through, got %q", got)
	}
}

func TestOverrideFactMatchIsCaseInsensitive(t *testing.T) {
	rules := DefaultOverrides()
	original := "The founder is ALEX MOREAU."
	if got := ApplyOverrides(rules, "Tell me about the FOUNDER", original); got != original {
		t.Fatalf("expected case-insensitive pass-through, got %q", got)
	}
}

func TestOverrideIgnoresUnrelatedMessages(t *testing.T) {
	rules := DefaultOverrides()
	original := "Charge per project, not per hour."
	if got := ApplyOverrides(rules, "how should I price my work?", original); got != original {
		t.Fatalf("expected unrelated message untouched, got %q", got)
	}
}

func TestOverrideIsDeterministic(t *testing.T) {
	rules := DefaultOverrides()
	for i := 0; i < 5; i++ {
		got := ApplyOverrides(rules, "who owns this?", "no idea")
		if !strings.Contains(got, FounderFact) {
			t.Fatalf("run %d: expected canned answer, got %q", i, got)
		}
	}
}

func TestProcessorCountsFromFinalDisplay(t *testing.T) {
	processor := NewProcessor(nil, nil)
	raw := "Okay! " + ScheduleOpenMarker + `{"activities":[{"name":"Gym"}]}` + ScheduleCloseMarker

	res := processor.Process(raw, "chat-reply", "save my schedule")
	if res.DisplayText != "Okay!" {
		t.Fatalf("unexpected display %q", res.DisplayText)
	}
	if res.CharCount != len([]rune("Okay!")) || res.WordCount != 1 {
		t.Fatalf("counts must come from display, got chars=%d words=%d", res.CharCount, res.WordCount)
	}
	if len(res.Activities) != 1 {
		t.Fatalf("expected extracted activity, got %v", res.Activities)
	}
}

func TestProcessorSkipsExtractionForSingleShotKinds(t *testing.T) {
	processor := NewProcessor(nil, nil)
	raw := "Proposal mentioning " + ScheduleOpenMarker + " literally."

	res := processor.Process(raw, "proposal", "")
	if res.DisplayText != raw {
		t.Fatalf("single-shot kinds must not extract blocks, got %q", res.DisplayText)
	}
	if res.Activities != nil {
		t.Fatalf("expected no activities for proposal, got %v", res.Activities)
	}
}
