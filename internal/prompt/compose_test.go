package prompt

import (
	"strings"
	"testing"

	"github.com/pitchsmith/pitchsmith/internal/llm"
	"github.com/pitchsmith/pitchsmith/internal/models"
	"github.com/pitchsmith/pitchsmith/internal/postprocess"
	"github.com/pitchsmith/pitchsmith/internal/tone"
)

func TestComposeProposalIncludesAllSections(t *testing.T) {
	approach := tone.Approaches()[0]
	composed := Compose(Input{
		Kind:           models.KindProposal,
		ProfileContext: "Profession: developer",
		Tone:           tone.Resolve("bold"),
		Approach:       &approach,
		RuleAddendum:   "Additional guidance:\n\nBe specific about pricing.",
		Task: TaskFields{
			Platform:       "Upwork",
			JobTitle:       "Build a landing page",
			JobDescription: "Need a fast landing page for a product launch.",
			KeyPoints:      []string{"React experience", "one-week turnaround"},
			Instructions:   "Mention availability.",
			CharLimit:      600,
		},
	})

	if composed.System != "" {
		t.Fatalf("single-shot composition must not use a system prompt")
	}
	if len(composed.Messages) != 1 || composed.Messages[0].Role != models.RoleUser {
		t.Fatalf("expected exactly one user turn, got %+v", composed.Messages)
	}

	text := composed.Messages[0].Content
	for _, want := range []string{
		"Freelancer profile:",
		"Profession: developer",
		"direct, assertive",
		approach.Hook,
		"Never use these phrases",
		"I hope this message finds you well",
		"Favor concrete, client-facing constructions",
		"600 character limit",
		"React experience",
		"Mention availability.",
		"Be specific about pricing.",
		"Build a landing page",
		"Upwork",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("composition missing %q:\n%s", want, text)
		}
	}
}

func TestComposeOmitsEmptySections(t *testing.T) {
	composed := Compose(Input{
		Kind: models.KindProposal,
		Tone: tone.Resolve(""),
		Task: TaskFields{JobTitle: "Small gig"},
	})
	text := composed.Messages[0].Content
	for _, absent := range []string{
		"Freelancer profile:",
		"character limit",
		"Make sure to cover these points",
		"Additional instructions",
		"portfolio link instead",
	} {
		if strings.Contains(text, absent) {
			t.Fatalf("composition should omit %q when input empty:\n%s", absent, text)
		}
	}
}

func TestComposePortfolioOverrideWins(t *testing.T) {
	composed := Compose(Input{
		Kind:           models.KindProposal,
		ProfileContext: "Portfolio: https://old.example.com",
		Tone:           tone.Resolve("friendly"),
		Task:           TaskFields{PortfolioOverride: "https://new.example.com"},
	})
	text := composed.Messages[0].Content
	if !strings.Contains(text, "Use this portfolio link instead of the profile one: https://new.example.com") {
		t.Fatalf("expected portfolio override instruction:\n%s", text)
	}
}

func TestComposeChatCarriesWindowAndContract(t *testing.T) {
	window := []llm.Turn{
		{Role: models.RoleUser, Content: "earlier question"},
		{Role: models.RoleAssistant, Content: "earlier answer"},
	}
	composed := Compose(Input{
		Kind:           models.KindChatReply,
		ProfileContext: "Profession: designer",
		Tone:           tone.Resolve("empathetic"),
		Window:         window,
		Task:           TaskFields{UserMessage: "plan my week"},
	})

	if composed.System == "" {
		t.Fatalf("chat composition requires a system prompt")
	}
	if !strings.Contains(composed.System, postprocess.ScheduleOpenMarker) ||
		!strings.Contains(composed.System, postprocess.ScheduleCloseMarker) {
		t.Fatalf("system prompt missing schedule markers:\n%s", composed.System)
	}
	if !strings.Contains(composed.System, postprocess.FounderFact) {
		t.Fatalf("system prompt missing founder fact:\n%s", composed.System)
	}

	if len(composed.Messages) != 3 {
		t.Fatalf("expected window plus new turn, got %d messages", len(composed.Messages))
	}
	last := composed.Messages[2]
	if last.Role != models.RoleUser || last.Content != "plan my week" {
		t.Fatalf("expected new user turn last, got %+v", last)
	}
}

func TestLengthGuidanceScaling(t *testing.T) {
	if lengthGuidance(0) != "" {
		t.Fatalf("expected no guidance without a limit")
	}
	got := lengthGuidance(300)
	if !strings.Contains(got, "50 words") || !strings.Contains(got, "300 character") {
		t.Fatalf("unexpected guidance %q", got)
	}
}
