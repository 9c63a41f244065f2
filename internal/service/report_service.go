package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
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
	"fisiqia-be/pkg/llm"
	"fisiqia-be/pkg/report"
	"fisiqia-be/pkg/section"
)

type IReportService interface {
	Generate(ctx context.Context, req *dto.ReportRequest) (*dto.ReportResponse, error)
}

type ReportServiceConfig struct {
	Timeout            time.Duration
	RequireAllSections bool
	ConsistencyCheck   bool
}

type reportService struct {
	repo      contract.ExchangeRepository
	provider  llm.LLMProvider
	publisher IPublisherService
	cfg       ReportServiceConfig
	logger    logger.ILogger
	now       func() time.Time
}

func NewReportService(
	repo contract.ExchangeRepository,
	provider llm.LLMProvider,
	publisher IPublisherService,
	cfg ReportServiceConfig,
	log logger.ILogger,
) IReportService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &reportService{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
	}
}

// chapterOrder is the order sections appear in the report.
var chapterOrder = []section.Section{section.Overview, section.Materials, section.Assembly, section.Procedure, section.General}

func (s *reportService) Generate(ctx context.Context, req *dto.ReportRequest) (*dto.ReportResponse, error) {
	req.Normalize()
	if req.Project == "" {
		return nil, apperror.Validation(constant.ErrProjectRequired)
	}
	if req.SessionId == "" {
		return nil, apperror.Validation(constant.ErrSessionRequired)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	items, err := s.repo.FindAll(ctx,
		specification.BySessionID{SessionID: req.SessionId},
		specification.ByProject{Project: req.Project},
		specification.OrderByCreatedAt{},
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperror.Wrap(apperror.KindUpstreamTimeout, constant.ErrReportTimeout, err)
		}
		s.logger.Error(constant.ModuleStorage, "Failed to load exchanges for report", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		return nil, apperror.Wrap(apperror.KindInternal, constant.ErrHistory, err)
	}

	if len(items) == 0 {
		s.reject(ctx, req, apperror.KindNothingToReport, nil)
		return nil, apperror.New(apperror.KindNothingToReport, constant.ErrNothingToReport)
	}

	grouped := groupBySection(items)

	if s.cfg.RequireAllSections {
		if missing := missingSections(grouped); len(missing) > 0 {
			s.reject(ctx, req, apperror.KindIncompleteReport, map[string]interface{}{"faltantes": missing})
			return nil, apperror.New(apperror.KindIncompleteReport, constant.ErrIncompleteReport).
				WithDetail("faltantes", missing).
				WithDetail("instrucao", constant.InstructionIncomplete)
		}
	}

	if s.cfg.ConsistencyCheck {
		if err := s.checkConsistency(ctx, req, grouped); err != nil {
			return nil, err
		}
	}

	doc := s.compose(req.Project, grouped)

	content, err := s.render(ctx, doc)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperror.Wrap(apperror.KindUpstreamTimeout, constant.ErrReportTimeout, err)
		}
		s.logger.Error(constant.ModuleReport, "Failed to render report", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		return nil, apperror.Wrap(apperror.KindReportFailed, constant.ErrReportFailed, err)
	}

	evt := events.New(events.TypeReportGenerated, map[string]interface{}{
		"session_id": req.SessionId,
		"projeto":    req.Project,
		"respostas":  len(items),
		"bytes":      len(content),
	})
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn(constant.ModuleReport, "Failed to publish REPORT_GENERATED", map[string]interface{}{"error": err.Error()})
	}

	return &dto.ReportResponse{
		Filename: constant.ReportFilename,
		Content:  content,
	}, nil
}

func groupBySection(items []*entity.Exchange) map[string][]*entity.Exchange {
	grouped := make(map[string][]*entity.Exchange)
	for _, e := range items {
		grouped[e.Section] = append(grouped[e.Section], e)
	}
	return grouped
}

func missingSections(grouped map[string][]*entity.Exchange) []string {
	var missing []string
	for _, sec := range section.Required {
		if len(grouped[sec.Key()]) == 0 {
			missing = append(missing, sec.Key())
		}
	}
	return missing
}

type consistencyVerdict struct {
	Consistent  *bool    `json:"consistent"`
	Mismatch    []string `json:"mismatch"`
	Explanation string   `json:"explanation"`
}

// checkConsistency asks the model whether the latest answer of each section
// describes the same project. A failed or unreadable check does not block the report.
func (s *reportService) checkConsistency(ctx context.Context, req *dto.ReportRequest, grouped map[string][]*entity.Exchange) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Projeto: %s\n", req.Project)
	present := 0
	for _, sec := range section.Required {
		list := grouped[sec.Key()]
		if len(list) == 0 {
			continue
		}
		present++
		fmt.Fprintf(&b, "\n[%s]\n%s\n", sec.Key(), list[len(list)-1].Answer)
	}
	if present < 2 {
		return nil
	}

	raw, err := s.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: constant.ConsistencyCheckInstruction},
		{Role: llm.RoleUser, Content: b.String()},
	}, llm.WithTemperature(0))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return apperror.Wrap(apperror.KindUpstreamTimeout, constant.ErrReportTimeout, err)
		}
		s.logger.Warn(constant.ModuleReport, "Consistency check failed, continuing", map[string]interface{}{
			"session_id": req.SessionId,
			"error":      err.Error(),
		})
		return nil
	}

	var verdict consistencyVerdict
	if err := json.Unmarshal([]byte(answer.ExtractJSON(strings.TrimSpace(raw))), &verdict); err != nil || verdict.Consistent == nil {
		s.logger.Warn(constant.ModuleReport, "Consistency check reply unreadable, continuing", map[string]interface{}{
			"session_id": req.SessionId,
			"raw":        raw,
		})
		return nil
	}
	if *verdict.Consistent {
		return nil
	}

	mismatch := make([]string, 0, len(verdict.Mismatch))
	for _, m := range verdict.Mismatch {
		if sec, ok := section.Parse(m); ok {
			mismatch = append(mismatch, sec.Key())
		}
	}

	s.reject(ctx, req, apperror.KindInconsistentReport, map[string]interface{}{"divergencias": mismatch})
	return apperror.New(apperror.KindInconsistentReport, constant.ErrInconsistent).
		WithDetail("divergencias", mismatch).
		WithDetail("explicacao", verdict.Explanation).
		WithDetail("instrucao", constant.InstructionInconsistent)
}

func (s *reportService) compose(project string, grouped map[string][]*entity.Exchange) report.Document {
	doc := report.Document{
		Project:     project,
		Generator:   report.DefaultGenerator,
		GeneratedAt: s.now(),
	}

	var refs []string
	for _, sec := range chapterOrder {
		list := grouped[sec.Key()]
		if len(list) == 0 {
			continue
		}
		chapter := report.Chapter{Title: sec.Title()}
		for _, e := range list {
			chapter.Entries = append(chapter.Entries, report.Entry{Question: e.Question, Body: e.Answer})
			refs = append(refs, e.References...)
		}
		doc.Chapters = append(doc.Chapters, chapter)
	}
	doc.References = answer.Dedupe(refs)
	return doc
}

// render runs the PDF layout off the request goroutine so the deadline holds.
func (s *reportService) render(ctx context.Context, doc report.Document) ([]byte, error) {
	type result struct {
		content []byte
		err     error
	}
	done := make(chan result, 1)
	go func() {
		content, err := report.Bytes(doc)
		done <- result{content, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err == nil && len(r.content) == 0 {
			return nil, errors.New("empty pdf")
		}
		return r.content, r.err
	}
}

func (s *reportService) reject(ctx context.Context, req *dto.ReportRequest, kind apperror.Kind, extra map[string]interface{}) {
	data := map[string]interface{}{
		"session_id": req.SessionId,
		"projeto":    req.Project,
		"motivo":     string(kind),
	}
	for k, v := range extra {
		data[k] = v
	}
	if err := s.publisher.Publish(ctx, events.New(events.TypeReportRejected, data)); err != nil {
		s.logger.Warn(constant.ModuleReport, "Failed to publish REPORT_REJECTED", map[string]interface{}{"error": err.Error()})
	}
}
