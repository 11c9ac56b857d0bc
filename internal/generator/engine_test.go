package generator

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/pitchsmith/pitchsmith/internal/conversation"
	"github.com/pitchsmith/pitchsmith/internal/db"
	"github.com/pitchsmith/pitchsmith/internal/llm"
	"github.com/pitchsmith/pitchsmith/internal/models"
	"github.com/pitchsmith/pitchsmith/internal/postprocess"
	"github.com/pitchsmith/pitchsmith/internal/quota"
	"github.com/pitchsmith/pitchsmith/internal/settings"
	"github.com/pitchsmith/pitchsmith/internal/tone"

	"gorm.io/gorm"
)

// fakeClient is a scripted model endpoint.
type fakeClient struct {
	response string
	err      error
	calls    int
	system   string
	turns    []llm.Turn
}

func (f *fakeClient) Invoke(_ context.Context, system string, turns []llm.Turn, _ int) (string, error) {
	f.calls++
	f.system = system
	f.turns = turns
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type testEnv struct {
	conn    *gorm.DB
	engine  *Engine
	client  *fakeClient
	quota   *quota.Manager
	threads *conversation.Store
	user    *models.User
}

func newTestEnv(t *testing.T, limits map[string]int) *testEnv {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "engine-test.db")
	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	user := &models.User{
		Username:   "freelancer",
		Password:   "x",
		Profession: "developer",
		Skills:     models.EncodeStringList([]string{"Go"}),
		Platforms:  models.EncodeStringList(nil),
		Active:     true,
	}
	if errCreate := conn.Create(user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}

	provider := func(context.Context) settings.Quota {
		return settings.Quota{PeriodDays: 30, Limits: limits}
	}
	quotaMgr := quota.NewManager(conn, provider, nil)
	threads := conversation.NewStore(conn, nil)
	client := &fakeClient{response: "Generated text."}
	engine := NewEngine(conn, quotaMgr, client, threads,
		tone.NewSelector(rand.New(rand.NewSource(7))),
		postprocess.NewProcessor(nil, nil),
		Options{},
	)
	return &testEnv{conn: conn, engine: engine, client: client, quota: quotaMgr, threads: threads, user: user}
}

func (env *testEnv) usedCount(t *testing.T, kind string) int {
	t.Helper()
	check, errCheck := env.quota.Check(context.Background(), env.user.ID, kind)
	if errCheck != nil {
		t.Fatalf("quota check: %v", errCheck)
	}
	return check.Used
}

func TestProposalPersistsArtifactAndRecordsUsage(t *testing.T) {
	env := newTestEnv(t, map[string]int{models.KindProposal: 10})

	out, errGen := env.engine.Proposal(context.Background(), env.user, ProposalRequest{
		Platform:       "Upwork",
		JobTitle:       "Build an API",
		JobDescription: "REST API in Go",
		Tone:           "professional",
	})
	if errGen != nil {
		t.Fatalf("proposal: %v", errGen)
	}
	if out.Content != "Generated text." || out.Remaining != 9 {
		t.Fatalf("unexpected result %+v", out)
	}
	if out.WordCount != 2 {
		t.Fatalf("expected word count from display text, got %d", out.WordCount)
	}

	var artifact models.GeneratedArtifact
	if errFind := env.conn.First(&artifact, out.ArtifactID).Error; errFind != nil {
		t.Fatalf("load artifact: %v", errFind)
	}
	if artifact.Kind != models.KindProposal || artifact.UserID != env.user.ID {
		t.Fatalf("unexpected artifact %+v", artifact)
	}
	if used := env.usedCount(t, models.KindProposal); used != 1 {
		t.Fatalf("expected usage recorded once, got %d", used)
	}
}

func TestFailedInvocationConsumesNoQuota(t *testing.T) {
	env := newTestEnv(t, map[string]int{models.KindProposal: 10})
	env.client.err = &llm.UpstreamError{StatusCode: 500, Body: "boom"}

	_, errGen := env.engine.Proposal(context.Background(), env.user, ProposalRequest{JobTitle: "x"})
	var upstream *llm.UpstreamError
	if !errors.As(errGen, &upstream) {
		t.Fatalf("expected upstream error, got %v", errGen)
	}
	if used := env.usedCount(t, models.KindProposal); used != 0 {
		t.Fatalf("failed call must not consume quota, got used=%d", used)
	}
	var count int64
	env.conn.Model(&models.GeneratedArtifact{}).Count(&count)
	if count != 0 {
		t.Fatalf("failed call must not persist artifacts, got %d", count)
	}
}

func TestGateRejectsMissingIdentityAndProfile(t *testing.T) {
	env := newTestEnv(t, map[string]int{models.KindProposal: 10})

	if _, errGen := env.engine.Proposal(context.Background(), nil, ProposalRequest{}); !errors.Is(errGen, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", errGen)
	}

	bare := &models.User{ID: env.user.ID, Username: "bare"}
	if _, errGen := env.engine.Proposal(context.Background(), bare, ProposalRequest{}); !errors.Is(errGen, ErrProfileMissing) {
		t.Fatalf("expected ErrProfileMissing, got %v", errGen)
	}
	if env.client.calls != 0 {
		t.Fatalf("gate failures must not reach the model, got %d calls", env.client.calls)
	}
}

func TestQuotaExhaustionDeniesBeforeInvocation(t *testing.T) {
	env := newTestEnv(t, map[string]int{models.KindBuyerReply: 1})
	ctx := context.Background()

	if _, errGen := env.engine.BuyerReply(ctx, env.user, BuyerReplyRequest{BuyerMessage: "hi"}); errGen != nil {
		t.Fatalf("first call: %v", errGen)
	}

	_, errGen := env.engine.BuyerReply(ctx, env.user, BuyerReplyRequest{BuyerMessage: "hi again"})
	var quotaErr *QuotaExceededError
	if !errors.As(errGen, &quotaErr) {
		t.Fatalf("expected QuotaExceededError, got %v", errGen)
	}
	if quotaErr.Kind != models.KindBuyerReply || quotaErr.Limit != 1 {
		t.Fatalf("unexpected quota error %+v", quotaErr)
	}
	if quotaErr.DaysUntilReset <= 0 {
		t.Fatalf("expected days until reset in denial, got %d", quotaErr.DaysUntilReset)
	}
	if env.client.calls != 1 {
		t.Fatalf("denied call must not reach the model, got %d calls", env.client.calls)
	}
}

func TestProfileVariantsOneQuotaUnitManyArtifacts(t *testing.T) {
	env := newTestEnv(t, map[string]int{models.KindProfile: 2})

	out, errGen := env.engine.ProfileVariants(context.Background(), env.user, ProfileRequest{Platform: "Fiverr"})
	if errGen != nil {
		t.Fatalf("profile variants: %v", errGen)
	}
	wantVariants := len(tone.All())
	if len(out.Variants) != wantVariants {
		t.Fatalf("expected %d variants, got %d", wantVariants, len(out.Variants))
	}
	if env.client.calls != wantVariants {
		t.Fatalf("expected one invocation per tone, got %d", env.client.calls)
	}

	var count int64
	env.conn.Model(&models.GeneratedArtifact{}).Where("kind = ?", models.KindProfile).Count(&count)
	if count != int64(wantVariants) {
		t.Fatalf("expected %d persisted variants, got %d", wantVariants, count)
	}
	if used := env.usedCount(t, models.KindProfile); used != 1 {
		t.Fatalf("batch must consume one quota unit, got %d", used)
	}
}

func TestChatCreatesThreadAppendsTurnsAndExtracts(t *testing.T) {
	env := newTestEnv(t, map[string]int{models.KindChatReply: 30})
	env.client.response = "Saved! " + postprocess.ScheduleOpenMarker +
		`{"activities":[{"name":"Gym","start_time":"07:00"}]}` +
		postprocess.ScheduleCloseMarker
	ctx := context.Background()

	out, errGen := env.engine.Chat(ctx, env.user, ChatRequest{Message: "save my gym schedule"})
	if errGen != nil {
		t.Fatalf("chat: %v", errGen)
	}
	if out.ConversationID == "" {
		t.Fatalf("expected a conversation id")
	}
	if out.Reply != "Saved!" {
		t.Fatalf("expected stripped reply, got %q", out.Reply)
	}
	if len(out.Activities) != 1 || out.Activities[0].Name != "Gym" {
		t.Fatalf("expected extracted activity, got %v", out.Activities)
	}

	msgs, errMsgs := env.threads.Messages(ctx, env.user.ID, out.ConversationID)
	if errMsgs != nil {
		t.Fatalf("messages: %v", errMsgs)
	}
	if len(msgs) != 2 || msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Fatalf("expected user+assistant turns, got %+v", msgs)
	}
	if msgs[1].Content != "Saved!" {
		t.Fatalf("assistant turn must store display text, got %q", msgs[1].Content)
	}

	var artifact models.GeneratedArtifact
	if errFind := env.conn.Where("kind = ?", models.KindChatReply).First(&artifact).Error; errFind != nil {
		t.Fatalf("load chat artifact: %v", errFind)
	}
	if artifact.ConversationID == nil {
		t.Fatalf("chat artifact must reference its conversation")
	}
	if used := env.usedCount(t, models.KindChatReply); used != 1 {
		t.Fatalf("expected one chat usage, got %d", used)
	}
}

func TestChatReusesExistingThreadWindow(t *testing.T) {
	env := newTestEnv(t, map[string]int{})
	ctx := context.Background()

	first, errFirst := env.engine.Chat(ctx, env.user, ChatRequest{Message: "first question"})
	if errFirst != nil {
		t.Fatalf("first chat: %v", errFirst)
	}
	second, errSecond := env.engine.Chat(ctx, env.user, ChatRequest{
		ConversationID: first.ConversationID,
		Message:        "follow up",
	})
	if errSecond != nil {
		t.Fatalf("second chat: %v", errSecond)
	}
	if second.ConversationID != first.ConversationID {
		t.Fatalf("expected same thread, got %q and %q", first.ConversationID, second.ConversationID)
	}

	// The second invocation must carry the first exchange plus the new turn.
	if len(env.client.turns) != 3 {
		t.Fatalf("expected 3 turns in second invocation, got %d", len(env.client.turns))
	}
	if env.client.turns[0].Content != "first question" {
		t.Fatalf("window must start with the first user turn, got %q", env.client.turns[0].Content)
	}
	if env.client.turns[2].Content != "follow up" {
		t.Fatalf("new turn must come last, got %q", env.client.turns[2].Content)
	}
}
