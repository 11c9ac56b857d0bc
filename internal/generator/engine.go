package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pitchsmith/pitchsmith/internal/coaching"
	"github.com/pitchsmith/pitchsmith/internal/conversation"
	"github.com/pitchsmith/pitchsmith/internal/llm"
	"github.com/pitchsmith/pitchsmith/internal/models"
	"github.com/pitchsmith/pitchsmith/internal/postprocess"
	"github.com/pitchsmith/pitchsmith/internal/profile"
	"github.com/pitchsmith/pitchsmith/internal/prompt"
	"github.com/pitchsmith/pitchsmith/internal/quota"
	"github.com/pitchsmith/pitchsmith/internal/tone"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Engine orchestrates one generation call end to end: quota gate, context
// building, prompt composition, model invocation, post-processing, and
// persistence. Usage is recorded only after a successful model response, so
// cancelled or failed invocations never consume quota.
type Engine struct {
	db        *gorm.DB
	quota     *quota.Manager
	client    llm.Client
	threads   *conversation.Store
	selector  *tone.Selector
	processor *postprocess.Processor
	maxTokens int
	window    int
	nowFn     func() time.Time
}

// Options tunes engine behavior; zero values take defaults.
type Options struct {
	MaxTokens int              // Max-token budget per invocation.
	Window    int              // Conversation window size for chat.
	NowFn     func() time.Time // Clock override for tests.
}

// NewEngine constructs an Engine.
func NewEngine(db *gorm.DB, quotaMgr *quota.Manager, client llm.Client, threads *conversation.Store, selector *tone.Selector, processor *postprocess.Processor, opts Options) *Engine {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}
	if opts.Window <= 0 {
		opts.Window = conversation.DefaultWindow
	}
	if opts.NowFn == nil {
		opts.NowFn = func() time.Time { return time.Now().UTC() }
	}
	if selector == nil {
		selector = tone.NewSelector(nil)
	}
	if processor == nil {
		processor = postprocess.NewProcessor(nil, nil)
	}
	return &Engine{
		db:        db,
		quota:     quotaMgr,
		client:    client,
		threads:   threads,
		selector:  selector,
		processor: processor,
		maxTokens: opts.MaxTokens,
		window:    opts.Window,
		nowFn:     opts.NowFn,
	}
}

// ProposalRequest carries the inputs for a bid proposal generation.
type ProposalRequest struct {
	Platform          string   `json:"platform"`
	JobTitle          string   `json:"job_title"`
	JobDescription    string   `json:"job_description"`
	Tone              string   `json:"tone"`
	CharLimit         int      `json:"char_limit"`
	PortfolioOverride string   `json:"portfolio_override"`
	Instructions      string   `json:"instructions"`
	KeyPoints         []string `json:"key_points"`
}

// BuyerReplyRequest carries the inputs for a buyer-message reply.
type BuyerReplyRequest struct {
	Platform     string `json:"platform"`
	BuyerMessage string `json:"buyer_message"`
	Tone         string `json:"tone"`
	CharLimit    int    `json:"char_limit"`
	Instructions string `json:"instructions"`
}

// ProfileRequest carries the inputs for platform-profile generation.
type ProfileRequest struct {
	Platform  string `json:"platform"`
	CharLimit int    `json:"char_limit"`
}

// ChatRequest carries one coaching chat turn.
type ChatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

// Generated is the outcome of a single-shot generation.
type Generated struct {
	ArtifactID uint64 // Persisted artifact row ID.
	Kind       string // Artifact kind.
	Content    string // Final display text.
	CharCount  int    // Character count of Content.
	WordCount  int    // Word count of Content.
	Remaining  int    // Remaining quota after this call, -1 when ungated.
}

// ProfileVariant is one tone variant of a generated profile.
type ProfileVariant struct {
	Tone      string // Tone name used for the variant.
	Content   string // Final display text.
	CharCount int    // Character count of Content.
	WordCount int    // Word count of Content.
}

// ProfileResult bundles all tone variants of one profile generation call.
type ProfileResult struct {
	Variants  []ProfileVariant
	Remaining int
}

// ChatResult is the outcome of one coaching chat turn.
type ChatResult struct {
	ConversationID string                 // Public thread ID, created lazily when absent.
	Reply          string                 // Assistant display text.
	Activities     []postprocess.Activity // Extracted schedule entries, if any.
}

// Proposal generates a bid proposal for the user.
func (e *Engine) Proposal(ctx context.Context, user *models.User, req ProposalRequest) (*Generated, error) {
	check, errGate := e.gate(ctx, user, models.KindProposal)
	if errGate != nil {
		return nil, errGate
	}

	addendum, errRules := e.ruleAddendum(ctx, user.Profession, req.JobTitle+" "+req.JobDescription)
	if errRules != nil {
		return nil, errRules
	}

	approach := e.selector.Pick()
	composed := prompt.Compose(prompt.Input{
		Kind:           models.KindProposal,
		ProfileContext: profile.BuildContext(user),
		Tone:           tone.Resolve(req.Tone),
		Approach:       &approach,
		RuleAddendum:   addendum,
		Task: prompt.TaskFields{
			Platform:          req.Platform,
			JobTitle:          req.JobTitle,
			JobDescription:    req.JobDescription,
			PortfolioOverride: req.PortfolioOverride,
			Instructions:      req.Instructions,
			KeyPoints:         req.KeyPoints,
			CharLimit:         req.CharLimit,
		},
	})

	raw, errInvoke := e.client.Invoke(ctx, composed.System, composed.Messages, e.maxTokens)
	if errInvoke != nil {
		return nil, errInvoke
	}

	res := e.processor.Process(raw, models.KindProposal, "")
	artifactID, errPersist := e.persist(ctx, user.ID, models.KindProposal, req.Platform, res, req, nil)
	if errPersist != nil {
		return nil, errPersist
	}

	return &Generated{
		ArtifactID: artifactID,
		Kind:       models.KindProposal,
		Content:    res.DisplayText,
		CharCount:  res.CharCount,
		WordCount:  res.WordCount,
		Remaining:  remainingAfter(check),
	}, nil
}

// BuyerReply generates a reply to a buyer's message.
func (e *Engine) BuyerReply(ctx context.Context, user *models.User, req BuyerReplyRequest) (*Generated, error) {
	check, errGate := e.gate(ctx, user, models.KindBuyerReply)
	if errGate != nil {
		return nil, errGate
	}

	addendum, errRules := e.ruleAddendum(ctx, user.Profession, req.BuyerMessage)
	if errRules != nil {
		return nil, errRules
	}

	approach := e.selector.Pick()
	composed := prompt.Compose(prompt.Input{
		Kind:           models.KindBuyerReply,
		ProfileContext: profile.BuildContext(user),
		Tone:           tone.Resolve(req.Tone),
		Approach:       &approach,
		RuleAddendum:   addendum,
		Task: prompt.TaskFields{
			Platform:     req.Platform,
			BuyerMessage: req.BuyerMessage,
			Instructions: req.Instructions,
			CharLimit:    req.CharLimit,
		},
	})

	raw, errInvoke := e.client.Invoke(ctx, composed.System, composed.Messages, e.maxTokens)
	if errInvoke != nil {
		return nil, errInvoke
	}

	res := e.processor.Process(raw, models.KindBuyerReply, "")
	artifactID, errPersist := e.persist(ctx, user.ID, models.KindBuyerReply, req.Platform, res, req, nil)
	if errPersist != nil {
		return nil, errPersist
	}

	return &Generated{
		ArtifactID: artifactID,
		Kind:       models.KindBuyerReply,
		Content:    res.DisplayText,
		CharCount:  res.CharCount,
		WordCount:  res.WordCount,
		Remaining:  remainingAfter(check),
	}, nil
}

// ProfileVariants generates one profile per catalog tone. Diversity comes
// from iterating distinct tones, so the random approach selector is not
// involved. The whole batch consumes a single quota unit.
func (e *Engine) ProfileVariants(ctx context.Context, user *models.User, req ProfileRequest) (*ProfileResult, error) {
	check, errGate := e.gate(ctx, user, models.KindProfile)
	if errGate != nil {
		return nil, errGate
	}

	profileContext := profile.BuildContext(user)
	variants := make([]ProfileVariant, 0, len(tone.All()))
	results := make([]postprocess.Result, 0, len(tone.All()))
	for _, t := range tone.All() {
		composed := prompt.Compose(prompt.Input{
			Kind:           models.KindProfile,
			ProfileContext: profileContext,
			Tone:           t,
			Task: prompt.TaskFields{
				Platform:  req.Platform,
				CharLimit: req.CharLimit,
			},
		})
		raw, errInvoke := e.client.Invoke(ctx, composed.System, composed.Messages, e.maxTokens)
		if errInvoke != nil {
			return nil, errInvoke
		}
		res := e.processor.Process(raw, models.KindProfile, "")
		results = append(results, res)
		variants = append(variants, ProfileVariant{
			Tone:      t.Name,
			Content:   res.DisplayText,
			CharCount: res.CharCount,
			WordCount: res.WordCount,
		})
	}

	inputs := encodeInputs(req)
	errTx := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, res := range results {
			artifact := models.GeneratedArtifact{
				UserID:    user.ID,
				Kind:      models.KindProfile,
				Platform:  strings.TrimSpace(req.Platform),
				Content:   res.DisplayText,
				CharCount: res.CharCount,
				WordCount: res.WordCount,
				Inputs:    inputs,
				CreatedAt: e.nowFn(),
			}
			if errCreate := tx.Create(&artifact).Error; errCreate != nil {
				return fmt.Errorf("generator: persist variant %d: %w", i, errCreate)
			}
		}
		return e.quota.RecordTx(ctx, tx, user.ID, models.KindProfile)
	})
	if errTx != nil {
		return nil, errTx
	}

	return &ProfileResult{Variants: variants, Remaining: remainingAfter(check)}, nil
}

// Chat runs one coaching chat turn, creating the thread lazily, extracting
// any schedule block, and appending both turns after a successful response.
func (e *Engine) Chat(ctx context.Context, user *models.User, req ChatRequest) (*ChatResult, error) {
	if _, errGate := e.gate(ctx, user, models.KindChatReply); errGate != nil {
		return nil, errGate
	}

	conv, errEnsure := e.threads.Ensure(ctx, user.ID, req.ConversationID, req.Message)
	if errEnsure != nil {
		return nil, errEnsure
	}

	window, errWindow := e.threads.RecentWindow(ctx, conv.ID, e.window)
	if errWindow != nil {
		return nil, errWindow
	}

	addendum, errRules := e.ruleAddendum(ctx, user.Profession, req.Message)
	if errRules != nil {
		return nil, errRules
	}

	composed := prompt.Compose(prompt.Input{
		Kind:           models.KindChatReply,
		ProfileContext: profile.BuildContext(user),
		Tone:           tone.Resolve(user.PreferredStyle),
		RuleAddendum:   addendum,
		Window:         window,
		Task:           prompt.TaskFields{UserMessage: req.Message},
	})

	raw, errInvoke := e.client.Invoke(ctx, composed.System, composed.Messages, e.maxTokens)
	if errInvoke != nil {
		return nil, errInvoke
	}

	res := e.processor.Process(raw, models.KindChatReply, req.Message)

	if errAppend := e.threads.Append(ctx, conv.ID, models.RoleUser, req.Message); errAppend != nil {
		return nil, errAppend
	}
	if errAppend := e.threads.Append(ctx, conv.ID, models.RoleAssistant, res.DisplayText); errAppend != nil {
		return nil, errAppend
	}

	convID := conv.ID
	if _, errPersist := e.persist(ctx, user.ID, models.KindChatReply, "", res, req, &convID); errPersist != nil {
		return nil, errPersist
	}

	return &ChatResult{
		ConversationID: conv.PublicID,
		Reply:          res.DisplayText,
		Activities:     res.Activities,
	}, nil
}

// gate enforces identity, profile completeness, and quota, in that order.
func (e *Engine) gate(ctx context.Context, user *models.User, kind string) (quota.Result, error) {
	if user == nil || user.ID == 0 {
		return quota.Result{}, ErrUnauthenticated
	}
	if !profile.Complete(user) {
		return quota.Result{}, ErrProfileMissing
	}
	check, errCheck := e.quota.Check(ctx, user.ID, kind)
	if errCheck != nil {
		return quota.Result{}, errCheck
	}
	if !check.Allowed {
		return quota.Result{}, &QuotaExceededError{
			Kind:           kind,
			Limit:          check.Limit,
			DaysUntilReset: check.DaysUntilReset(e.nowFn()),
			Reason:         check.Reason,
		}
	}
	return check, nil
}

// ruleAddendum loads active coaching rules and renders the matched addendum.
func (e *Engine) ruleAddendum(ctx context.Context, profession, message string) (string, error) {
	rules, errLoad := coaching.LoadActive(ctx, e.db)
	if errLoad != nil {
		return "", errLoad
	}
	return coaching.Addendum(coaching.Match(rules, profession, message)), nil
}

// persist writes the artifact and records usage in one transaction.
func (e *Engine) persist(ctx context.Context, userID uint64, kind, platform string, res postprocess.Result, inputs any, conversationID *uint64) (uint64, error) {
	artifact := models.GeneratedArtifact{
		UserID:         userID,
		Kind:           kind,
		Platform:       strings.TrimSpace(platform),
		Content:        res.DisplayText,
		CharCount:      res.CharCount,
		WordCount:      res.WordCount,
		Inputs:         encodeInputs(inputs),
		ConversationID: conversationID,
		CreatedAt:      e.nowFn(),
	}
	errTx := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&artifact).Error; errCreate != nil {
			return fmt.Errorf("generator: persist artifact: %w", errCreate)
		}
		return e.quota.RecordTx(ctx, tx, userID, kind)
	})
	if errTx != nil {
		return 0, errTx
	}
	return artifact.ID, nil
}

// remainingAfter reports the capacity left once this call is counted.
func remainingAfter(check quota.Result) int {
	if check.Remaining < 0 {
		return -1
	}
	remaining := check.Remaining - 1
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// encodeInputs snapshots the request payload for audit.
func encodeInputs(inputs any) datatypes.JSON {
	raw, errMarshal := json.Marshal(inputs)
	if errMarshal != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}
