package prompt

import (
	"strings"

	"github.com/pitchsmith/pitchsmith/internal/llm"
	"github.com/pitchsmith/pitchsmith/internal/models"
	"github.com/pitchsmith/pitchsmith/internal/postprocess"
	"github.com/pitchsmith/pitchsmith/internal/tone"
)

// TaskFields carries the task-specific inputs of one generation request.
type TaskFields struct {
	Platform          string   // Target platform name.
	JobTitle          string   // Job posting title, proposal kind.
	JobDescription    string   // Job posting body, proposal kind.
	BuyerMessage      string   // Buyer's message, buyer-reply kind.
	UserMessage       string   // User's chat message, chat kind.
	PortfolioOverride string   // Portfolio URL override for this call.
	Instructions      string   // Free-text custom instructions.
	KeyPoints         []string // Points the output must cover.
	CharLimit         int      // Hard character limit, 0 for none.
}

// Input bundles everything the composer needs for one call.
type Input struct {
	Kind           string         // Artifact kind.
	ProfileContext string         // Flattened profile block.
	Tone           tone.Tone      // Resolved tone preset.
	Approach       *tone.Approach // Opening approach, single-shot kinds only.
	RuleAddendum   string         // Coaching addendum, may be empty.
	Window         []llm.Turn     // Recent conversation window, chat kind only.
	Task           TaskFields     // Task-specific fields.
}

// Composed is a ready-to-send model request. Single-shot kinds compose one
// user turn and no system prompt; the chat kind uses a system prompt plus the
// window and new turn.
type Composed struct {
	System   string
	Messages []llm.Turn
}

// Compose assembles the model request for the given input.
func Compose(in Input) Composed {
	switch in.Kind {
	case models.KindChatReply:
		return composeChat(in)
	case models.KindProfile:
		return composeSingleShot(in, profileTask(in))
	case models.KindBuyerReply:
		return composeSingleShot(in, buyerReplyTask(in))
	default:
		return composeSingleShot(in, proposalTask(in))
	}
}

// composeSingleShot builds one composed user turn from the shared sections
// plus the kind-specific task block.
func composeSingleShot(in Input, task string) Composed {
	sections := []string{
		"You are an expert freelance copywriter who drafts winning client-facing text.",
	}
	if in.ProfileContext != "" {
		sections = append(sections, "Freelancer profile:\n"+in.ProfileContext)
	}
	if override := strings.TrimSpace(in.Task.PortfolioOverride); override != "" {
		sections = append(sections, "Use this portfolio link instead of the profile one: "+override)
	}
	sections = append(sections,
		"Write in a "+in.Tone.Style+" tone. "+in.Tone.Guidelines,
	)
	if in.Approach != nil {
		sections = append(sections, in.Approach.Hook)
	}
	sections = append(sections, bannedPhrasesBlock(), powerPhrasesBlock())
	if guidance := lengthGuidance(in.Task.CharLimit); guidance != "" {
		sections = append(sections, guidance)
	}
	if len(in.Task.KeyPoints) > 0 {
		sections = append(sections, "Make sure to cover these points:\n- "+
			strings.Join(in.Task.KeyPoints, "\n- "))
	}
	if instructions := strings.TrimSpace(in.Task.Instructions); instructions != "" {
		sections = append(sections, "Additional instructions from the freelancer: "+instructions)
	}
	if in.RuleAddendum != "" {
		sections = append(sections, in.RuleAddendum)
	}
	sections = append(sections, task)

	return Composed{
		Messages: []llm.Turn{{Role: models.RoleUser, Content: joinSections(sections)}},
	}
}

// proposalTask renders the proposal-specific task block.
func proposalTask(in Input) string {
	var b strings.Builder
	b.WriteString("Write a bid proposal")
	if platform := strings.TrimSpace(in.Task.Platform); platform != "" {
		b.WriteString(" for " + platform)
	}
	b.WriteString(" responding to this job posting.\n")
	if title := strings.TrimSpace(in.Task.JobTitle); title != "" {
		b.WriteString("Job title: " + title + "\n")
	}
	if desc := strings.TrimSpace(in.Task.JobDescription); desc != "" {
		b.WriteString("Job description:\n" + desc + "\n")
	}
	b.WriteString("Return only the proposal text, no commentary.")
	return b.String()
}

// buyerReplyTask renders the buyer-reply task block.
func buyerReplyTask(in Input) string {
	var b strings.Builder
	b.WriteString("Write a reply to this message from a buyer")
	if platform := strings.TrimSpace(in.Task.Platform); platform != "" {
		b.WriteString(" on " + platform)
	}
	b.WriteString(":\n" + strings.TrimSpace(in.Task.BuyerMessage) + "\n")
	b.WriteString("Return only the reply text, no commentary.")
	return b.String()
}

// profileTask renders the platform-profile task block.
func profileTask(in Input) string {
	var b strings.Builder
	b.WriteString("Write a freelancer profile overview")
	if platform := strings.TrimSpace(in.Task.Platform); platform != "" {
		b.WriteString(" for " + platform)
	}
	b.WriteString(" that presents this freelancer to potential clients.\n")
	b.WriteString("Return only the profile text, no commentary.")
	return b.String()
}

// composeChat builds the system prompt plus message list for coaching chat.
func composeChat(in Input) Composed {
	sections := []string{
		"You are the PitchSmith coach, a practical career assistant for freelancers. " +
			"Answer concretely and briefly; this is a chat, not an essay.",
		"Fact you must state correctly whenever asked about the product's origin: " +
			"PitchSmith was founded by " + postprocess.FounderFact + ".",
		scheduleContract(),
	}
	if in.ProfileContext != "" {
		sections = append(sections, "Freelancer profile:\n"+in.ProfileContext)
	}
	sections = append(sections,
		"Write in a "+in.Tone.Style+" tone.",
	)
	if in.RuleAddendum != "" {
		sections = append(sections, in.RuleAddendum)
	}

	messages := make([]llm.Turn, 0, len(in.Window)+1)
	messages = append(messages, in.Window...)
	messages = append(messages, llm.Turn{Role: models.RoleUser, Content: in.Task.UserMessage})

	return Composed{
		System:   joinSections(sections),
		Messages: messages,
	}
}

// scheduleContract renders the machine-checkable schedule block instructions.
// The markers are a versioned contract shared with the extractor.
func scheduleContract() string {
	return "Only when the user explicitly asks to create or save a schedule, append a block " +
		"delimited by " + postprocess.ScheduleOpenMarker + " and " + postprocess.ScheduleCloseMarker +
		" after your reply. Inside the block put exactly one JSON object of the form " +
		`{"activities":[{"name":"...","category":"...","start_time":"HH:MM","end_time":"HH:MM",` +
		`"days":["monday"],"priority":"high","notes":"..."}]}` +
		". Every activity needs a name. For any other request, never emit the block or mention it."
}

// joinSections concatenates prompt sections with blank lines.
func joinSections(sections []string) string {
	kept := make([]string, 0, len(sections))
	for _, section := range sections {
		if strings.TrimSpace(section) == "" {
			continue
		}
		kept = append(kept, section)
	}
	return strings.Join(kept, "\n\n")
}
