package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"fisiqia-be/internal/config"
	"fisiqia-be/internal/controller"
	"fisiqia-be/internal/pkg/logger"
	"fisiqia-be/internal/service"
	"fisiqia-be/pkg/guard"
	"fisiqia-be/pkg/llm"
	"fisiqia-be/pkg/llm/factory"
	pktNats "fisiqia-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	QuestionController controller.IQuestionController
	ReportController   controller.IReportController
	HealthController   controller.IHealthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger logger.ILogger

	closers []func() error
}

func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	llmLogger := logger.NewIsolatedLogger(cfg.App.LLMLogFilePath)

	c := &Container{Logger: sysLogger}
	// Sync on a console core fails with EINVAL on most terminals, so errors are dropped.
	c.closers = append(c.closers, func() error {
		_ = llmLogger.Sync()
		_ = sysLogger.Sync()
		return nil
	})

	// 2. Storage
	repo, closeRepo, err := NewExchangeRepository(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("exchange storage: %w", err)
	}
	c.closers = append(c.closers, closeRepo)

	// 3. LLM Provider
	llmProvider, err := newLLMProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s", llmProvider.Name())

	// 4. Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermill.NewStdLogger(false, false),
	)
	c.closers = append(c.closers, pubSub.Close)

	var forwarder service.EventForwarder
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			forwarder = natsPub
			c.closers = append(c.closers, func() error { natsPub.Close(); return nil })
			log.Printf("[INFO] Forwarding events to NATS: %s", cfg.App.NatsURL)
		}
	}

	publisherService := service.NewPublisherService(service.EventsTopic, pubSub)
	c.ConsumerService = service.NewConsumerService(pubSub, service.EventsTopic, forwarder, sysLogger)

	// 5. Services
	var topicGuard *guard.TopicGuard
	if cfg.App.TopicGuardEnabled {
		topicGuard = guard.NewTopicGuard(guard.DefaultTopics)
		log.Printf("[INFO] Topic guard enabled")
	}

	questionService := service.NewQuestionService(
		repo,
		llmProvider,
		publisherService,
		service.QuestionServiceConfig{
			Timeout: cfg.Ai.Timeout,
			Guard:   topicGuard,
		},
		sysLogger,
		llmLogger,
	)

	reportService := service.NewReportService(
		repo,
		llmProvider,
		publisherService,
		service.ReportServiceConfig{
			Timeout:            cfg.Report.Timeout,
			RequireAllSections: cfg.Report.RequireAllSections,
			ConsistencyCheck:   cfg.Report.ConsistencyCheck,
		},
		sysLogger,
	)

	// 6. Controllers
	c.QuestionController = controller.NewQuestionController(questionService)
	c.ReportController = controller.NewReportController(reportService)
	c.HealthController = controller.NewHealthController(cfg.Storage.Driver, llmProvider.Name())

	return c, nil
}

func newLLMProvider(ctx context.Context, cfg *config.Config) (llm.LLMProvider, error) {
	fc := factory.Config{
		Provider:  cfg.Ai.LLMProvider,
		Model:     cfg.Ai.LLMModel,
		MaxTokens: cfg.Ai.MaxTokens,
		Timeout:   cfg.Ai.Timeout,
	}
	switch cfg.Ai.LLMProvider {
	case "openai":
		fc.APIKey = cfg.Keys.OpenAI
		fc.BaseURL = cfg.Ai.OpenAIBaseURL
	case "gemini":
		fc.APIKey = cfg.Keys.GoogleGemini
	case "ollama":
		fc.BaseURL = cfg.Ai.OllamaBaseURL
	}
	return factory.NewLLMProvider(ctx, fc)
}

// Close releases everything the container opened, last opened first.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
