package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"fisiqia-be/internal/dto"
	"fisiqia-be/internal/pkg/apperror"
	"fisiqia-be/internal/pkg/logger"
	"fisiqia-be/internal/repository/contract"
	"fisiqia-be/internal/repository/memory"
	"fisiqia-be/internal/repository/specification"
	"fisiqia-be/pkg/answer"
	"fisiqia-be/pkg/events"
	"fisiqia-be/pkg/guard"
	"fisiqia-be/pkg/llm"
	"fisiqia-be/pkg/llm/llmtest"
	"fisiqia-be/pkg/section"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type questionFixture struct {
	svc       IQuestionService
	provider  *llmtest.Provider
	publisher *recordingPublisher
	repo      contract.ExchangeRepository
}

func newQuestionFixture(provider *llmtest.Provider, cfg QuestionServiceConfig) questionFixture {
	repo := memory.NewExchangeRepository(time.Hour)
	pub := &recordingPublisher{}
	log := logger.NewNopLogger()
	return questionFixture{
		svc:       NewQuestionService(repo, provider, pub, cfg, log, log),
		provider:  provider,
		publisher: pub,
		repo:      repo,
	}
}

func TestAskIrrigationSystemMaterials(t *testing.T) {
	f := newQuestionFixture(llmtest.Reply(structuredReply), QuestionServiceConfig{Timeout: time.Second})

	res, err := f.svc.Ask(context.Background(), section.Materials, &dto.QuestionRequest{
		Question:  "List 3 low-cost materials",
		Project:   "Irrigation System",
		SessionId: "sess-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.Resposta)
	assert.Equal(t, "materials", res.Secao)
	assert.Equal(t, "Irrigation System", res.Projeto)
	assert.Equal(t, "sess-1", res.SessionId)
	assert.Equal(t, []string{"Halliday. Fundamentos de Física", "Tipler. Física"}, res.Referencias)
	assert.Equal(t, "baixo custo", res.Notas)

	calls := f.provider.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2)
	assert.Equal(t, llm.RoleSystem, calls[0][0].Role)
	assert.Equal(t, answer.SystemInstruction, calls[0][0].Content)
	assert.Contains(t, calls[0][1].Content, "Irrigation System")
	assert.Contains(t, calls[0][1].Content, "List 3 low-cost materials")

	stored, err := f.repo.FindAll(context.Background(), specification.BySessionID{SessionID: "sess-1"})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "fake", stored[0].Provider)
	assert.Equal(t, "test", stored[0].Model)
	assert.Equal(t, []string{events.TypeExchangeRecorded}, f.publisher.types())
}

func TestAskAutoLoadUsesSectionPrompt(t *testing.T) {
	f := newQuestionFixture(llmtest.Reply(structuredReply), QuestionServiceConfig{Timeout: time.Second})

	_, err := f.svc.Ask(context.Background(), section.Overview, &dto.QuestionRequest{Projeto: "Pêndulo simples", SessionId: "s"})
	require.NoError(t, err)

	calls := f.provider.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "Explique de forma acadêmica a visão geral do projeto 'Pêndulo simples'.", calls[0][1].Content)
}

func TestAskValidation(t *testing.T) {
	cases := []struct {
		name string
		sec  section.Section
		req  dto.QuestionRequest
	}{
		{"missing project", section.Materials, dto.QuestionRequest{Question: "x", SessionId: "s"}},
		{"blank project", section.Overview, dto.QuestionRequest{Project: "   ", SessionId: "s"}},
		{"general needs a question", section.General, dto.QuestionRequest{Project: "P", SessionId: "s"}},
		{"report is not askable", section.Report, dto.QuestionRequest{Project: "P", SessionId: "s"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := newQuestionFixture(llmtest.Reply(structuredReply), QuestionServiceConfig{Timeout: time.Second})
			req := c.req
			_, err := f.svc.Ask(context.Background(), c.sec, &req)
			assert.True(t, apperror.Is(err, apperror.KindValidation), "got %v", err)
			assert.Empty(t, f.provider.Calls())
		})
	}
}

func TestAskIssuesSessionID(t *testing.T) {
	f := newQuestionFixture(llmtest.Reply(structuredReply), QuestionServiceConfig{Timeout: time.Second})

	res, err := f.svc.Ask(context.Background(), section.Procedure, &dto.QuestionRequest{Project: "P"})
	require.NoError(t, err)
	_, err = uuid.Parse(res.SessionId)
	assert.NoError(t, err)
}

func TestAskTopicGuard(t *testing.T) {
	cfg := QuestionServiceConfig{Timeout: time.Second, Guard: guard.NewTopicGuard(guard.DefaultTopics)}

	f := newQuestionFixture(llmtest.Reply(structuredReply), cfg)
	_, err := f.svc.Ask(context.Background(), section.Overview, &dto.QuestionRequest{Project: "Receita de bolo", SessionId: "s"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindTopicDenied))
	assert.Contains(t, err.Error(), guard.DeniedMessage)
	assert.Empty(t, f.provider.Calls())

	_, err = f.svc.Ask(context.Background(), section.Overview, &dto.QuestionRequest{Project: "Experimento de Forca e Atrito", SessionId: "s"})
	assert.NoError(t, err)
}

func TestAskUpstreamFailureHidesProviderText(t *testing.T) {
	f := newQuestionFixture(llmtest.Fail(errors.New("401 invalid api key sk-secret")), QuestionServiceConfig{Timeout: time.Second})

	_, err := f.svc.Ask(context.Background(), section.Materials, &dto.QuestionRequest{Project: "P", SessionId: "s"})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindUpstream))

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.NotContains(t, appErr.Message, "sk-secret")

	n, _ := f.repo.Count(context.Background(), specification.BySessionID{SessionID: "s"})
	assert.Zero(t, n)
	assert.Empty(t, f.publisher.types())
}

func TestAskTimeoutIsDistinct(t *testing.T) {
	f := newQuestionFixture(llmtest.Block(), QuestionServiceConfig{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := f.svc.Ask(context.Background(), section.Assembly, &dto.QuestionRequest{Project: "P", SessionId: "s"})
	assert.True(t, apperror.Is(err, apperror.KindUpstreamTimeout), "got %v", err)
	assert.Less(t, time.Since(start), time.Second)
}

// transportTimeout is what net/http reports when its client deadline fires first.
type transportTimeout struct{}

func (transportTimeout) Error() string { return "context deadline exceeded (Client.Timeout exceeded while awaiting headers)" }
func (transportTimeout) Timeout() bool { return true }
func (transportTimeout) Temporary() bool { return true }

func TestAskTransportTimeoutIsUpstreamTimeout(t *testing.T) {
	cause := &url.Error{Op: "Post", URL: "http://localhost:11434/api/chat", Err: transportTimeout{}}
	f := newQuestionFixture(llmtest.Fail(cause), QuestionServiceConfig{Timeout: time.Second})

	_, err := f.svc.Ask(context.Background(), section.Assembly, &dto.QuestionRequest{Project: "P", SessionId: "s"})
	assert.True(t, apperror.Is(err, apperror.KindUpstreamTimeout), "got %v", err)
}

func TestAskUnstructuredReplyKeepsText(t *testing.T) {
	f := newQuestionFixture(llmtest.Reply("Use uma garrafa PET e uma mangueira."), QuestionServiceConfig{Timeout: time.Second})

	res, err := f.svc.Ask(context.Background(), section.Materials, &dto.QuestionRequest{Project: "P", SessionId: "s"})
	require.NoError(t, err)
	assert.Equal(t, "Use uma garrafa PET e uma mangueira.", res.Resposta)
	assert.Equal(t, answer.InvalidJSONNote, res.Notas)
	assert.Empty(t, res.Referencias)
}

func TestAskEmptyReplyIsUpstreamError(t *testing.T) {
	for _, reply := range []string{"   ", `{"content":"","books":[]}`} {
		f := newQuestionFixture(llmtest.Reply(reply), QuestionServiceConfig{Timeout: time.Second})
		_, err := f.svc.Ask(context.Background(), section.Materials, &dto.QuestionRequest{Project: "P", SessionId: "s"})
		assert.True(t, apperror.Is(err, apperror.KindUpstream), "reply %q: %v", reply, err)
	}
}

func TestAskStorageFailure(t *testing.T) {
	log := logger.NewNopLogger()
	svc := NewQuestionService(failingRepository{}, llmtest.Reply(structuredReply), nil, QuestionServiceConfig{Timeout: time.Second}, log, nil)

	_, err := svc.Ask(context.Background(), section.Materials, &dto.QuestionRequest{Project: "P", SessionId: "s"})
	assert.True(t, apperror.Is(err, apperror.KindInternal))
	assert.ErrorIs(t, err, errStore)
}

func TestAskPublishFailureDoesNotFailRequest(t *testing.T) {
	f := newQuestionFixture(llmtest.Reply(structuredReply), QuestionServiceConfig{Timeout: time.Second})
	f.publisher.err = errors.New("bus closed")

	_, err := f.svc.Ask(context.Background(), section.Materials, &dto.QuestionRequest{Project: "P", SessionId: "s"})
	assert.NoError(t, err)
}

func TestHistory(t *testing.T) {
	f := newQuestionFixture(llmtest.Reply(structuredReply), QuestionServiceConfig{Timeout: time.Second})
	ctx := context.Background()

	_, err := f.svc.Ask(ctx, section.Overview, &dto.QuestionRequest{Project: "A", SessionId: "s"})
	require.NoError(t, err)
	_, err = f.svc.Ask(ctx, section.General, &dto.QuestionRequest{Project: "A", Question: "Qual a massa?", SessionId: "s"})
	require.NoError(t, err)
	_, err = f.svc.Ask(ctx, section.Overview, &dto.QuestionRequest{Project: "B", SessionId: "s"})
	require.NoError(t, err)

	all, err := f.svc.History(ctx, &dto.HistoryRequest{SessionId: "s"})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)

	onlyA, err := f.svc.History(ctx, &dto.HistoryRequest{SessionId: "s", Project: "A"})
	require.NoError(t, err)
	require.Equal(t, 2, onlyA.Total)
	assert.Equal(t, "overview", onlyA.Itens[0].Secao)
	assert.Equal(t, "Qual a massa?", onlyA.Itens[1].Pergunta)

	_, err = f.svc.History(ctx, &dto.HistoryRequest{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
