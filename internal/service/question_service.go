package service

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"fisiqia-be/internal/constant"
	"fisiqia-be/internal/dto"
	"fisiqia-be/internal/entity"
	"fisiqia-be/internal/pkg/apperror"
	"fisiqia-be/internal/pkg/logger"
	"fisiqia-be/internal/repository/contract"
	"fisiqia-be/internal/repository/specification"
	"fisiqia-be/pkg/answer"
	"fisiqia-be/pkg/events"
	"fisiqia-be/pkg/guard"
	"fisiqia-be/pkg/llm"
	"fisiqia-be/pkg/section"

	"github.com/google/uuid"
)

type IQuestionService interface {
	Ask(ctx context.Context, sec section.Section, req *dto.QuestionRequest) (*dto.QuestionResponse, error)
	History(ctx context.Context, req *dto.HistoryRequest) (*dto.HistoryResponse, error)
}

type QuestionServiceConfig struct {
	Timeout time.Duration
	// Guard restricts projects to an allowed vocabulary. Nil disables it.
	Guard *guard.TopicGuard
}

type questionService struct {
	repo      contract.ExchangeRepository
	provider  llm.LLMProvider
	publisher IPublisherService
	cfg       QuestionServiceConfig
	logger    logger.ILogger
	llmLogger logger.ILogger
}

func NewQuestionService(
	repo contract.ExchangeRepository,
	provider llm.LLMProvider,
	publisher IPublisherService,
	cfg QuestionServiceConfig,
	log logger.ILogger,
	llmLog logger.ILogger,
) IQuestionService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if llmLog == nil {
		llmLog = log
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &questionService{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
		llmLogger: llmLog,
	}
}

func (s *questionService) Ask(ctx context.Context, sec section.Section, req *dto.QuestionRequest) (*dto.QuestionResponse, error) {
	if !sec.Askable() {
		return nil, apperror.Validation(constant.ErrSectionNotAskable)
	}

	req.Normalize()
	if req.Project == "" {
		return nil, apperror.Validation(constant.ErrProjectRequired)
	}
	if sec.RequiresQuestion() && req.Question == "" {
		return nil, apperror.Validation(constant.ErrQuestionRequired)
	}

	if s.cfg.Guard != nil && !s.cfg.Guard.Allowed(req.Project, req.Question) {
		s.logger.Warn(constant.ModuleQuestion, "Topic denied", map[string]interface{}{
			"project": req.Project,
			"section": sec.Key(),
		})
		return nil, apperror.New(apperror.KindTopicDenied, guard.DeniedMessage)
	}

	if req.SessionId == "" {
		req.SessionId = uuid.NewString()
	}

	prompt, err := sec.Prompt(req.Project, req.Question)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, constant.ErrQuestionRequired, err)
	}

	raw, err := s.complete(ctx, sec, req.SessionId, prompt)
	if err != nil {
		return nil, err
	}

	ans := answer.Parse(raw)
	if strings.TrimSpace(ans.Content) == "" {
		return nil, apperror.New(apperror.KindUpstream, constant.ErrEmptyAnswer)
	}
	if !ans.Structured {
		s.logger.Warn(constant.ModuleQuestion, "Model reply was not the expected JSON", map[string]interface{}{
			"session_id": req.SessionId,
			"section":    sec.Key(),
		})
	}

	backend, modelName := llm.SplitName(s.provider.Name())
	exchange := &entity.Exchange{
		Id:         uuid.New(),
		SessionId:  req.SessionId,
		Project:    req.Project,
		Section:    sec.Key(),
		Question:   req.Question,
		Prompt:     prompt,
		Answer:     ans.Content,
		References: ans.Books,
		Notes:      ans.Notes,
		Provider:   backend,
		Model:      modelName,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.Append(ctx, exchange); err != nil {
		s.logger.Error(constant.ModuleStorage, "Failed to append exchange", map[string]interface{}{
			"session_id": req.SessionId,
			"section":    sec.Key(),
			"error":      err.Error(),
		})
		return nil, apperror.Wrap(apperror.KindInternal, constant.ErrStorage, err)
	}

	evt := events.New(events.TypeExchangeRecorded, map[string]interface{}{
		"exchange_id": exchange.Id.String(),
		"session_id":  exchange.SessionId,
		"projeto":     exchange.Project,
		"secao":       exchange.Section,
		"provider":    exchange.Provider,
		"model":       exchange.Model,
	})
	// Activity events are auxiliary; a failed publish does not fail the request.
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn(constant.ModuleQuestion, "Failed to publish EXCHANGE_RECORDED", map[string]interface{}{"error": err.Error()})
	}

	return &dto.QuestionResponse{
		Resposta:    ans.Content,
		Referencias: ans.Books,
		Notas:       ans.Notes,
		Secao:       sec.Key(),
		Projeto:     req.Project,
		SessionId:   req.SessionId,
	}, nil
}

// complete runs the bounded upstream call. Provider error text is logged, never returned.
func (s *questionService) complete(ctx context.Context, sec section.Section, sessionID, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: answer.SystemInstruction},
		{Role: llm.RoleUser, Content: prompt},
	}

	s.llmLogger.Debug(constant.ModuleLLM, "Prompt", map[string]interface{}{
		"provider":   s.provider.Name(),
		"session_id": sessionID,
		"section":    sec.Key(),
		"prompt":     prompt,
	})

	start := time.Now()
	raw, err := s.provider.Chat(callCtx, messages)
	elapsed := time.Since(start)

	if err != nil {
		timedOut := isTimeout(err) || errors.Is(callCtx.Err(), context.DeadlineExceeded)
		s.logger.Error(constant.ModuleLLM, "Provider call failed", map[string]interface{}{
			"provider":   s.provider.Name(),
			"session_id": sessionID,
			"section":    sec.Key(),
			"timeout":    timedOut,
			"elapsed_ms": elapsed.Milliseconds(),
			"error":      err.Error(),
		})
		if timedOut {
			return "", apperror.Wrap(apperror.KindUpstreamTimeout, constant.ErrUpstreamTimeout, err)
		}
		return "", apperror.Wrap(apperror.KindUpstream, constant.ErrUpstream, err)
	}

	s.llmLogger.Debug(constant.ModuleLLM, "Response", map[string]interface{}{
		"provider":   s.provider.Name(),
		"session_id": sessionID,
		"section":    sec.Key(),
		"elapsed_ms": elapsed.Milliseconds(),
		"raw":        raw,
	})

	if strings.TrimSpace(raw) == "" {
		return "", apperror.New(apperror.KindUpstream, constant.ErrEmptyAnswer)
	}
	return raw, nil
}

// isTimeout also covers the provider's own HTTP client deadline.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (s *questionService) History(ctx context.Context, req *dto.HistoryRequest) (*dto.HistoryResponse, error) {
	req.SessionId = strings.TrimSpace(req.SessionId)
	req.Project = strings.TrimSpace(req.Project)
	if req.SessionId == "" {
		return nil, apperror.Validation(constant.ErrSessionRequired)
	}

	specs := []specification.Specification{specification.BySessionID{SessionID: req.SessionId}}
	if req.Project != "" {
		specs = append(specs, specification.ByProject{Project: req.Project})
	}
	specs = append(specs, specification.OrderByCreatedAt{})

	items, err := s.repo.FindAll(ctx, specs...)
	if err != nil {
		s.logger.Error(constant.ModuleStorage, "Failed to load history", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		return nil, apperror.Wrap(apperror.KindInternal, constant.ErrHistory, err)
	}

	out := make([]dto.ExchangeDTO, 0, len(items))
	for _, e := range items {
		out = append(out, dto.ExchangeDTO{
			Id:          e.Id.String(),
			Secao:       e.Section,
			Projeto:     e.Project,
			Pergunta:    e.Question,
			Resposta:    e.Answer,
			Referencias: e.References,
			Notas:       e.Notes,
			CriadoEm:    e.CreatedAt,
		})
	}

	return &dto.HistoryResponse{
		SessionId: req.SessionId,
		Total:     len(out),
		Itens:     out,
	}, nil
}
