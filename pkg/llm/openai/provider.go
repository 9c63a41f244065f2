package openai

import (
	"context"
	"fmt"
	"time"

	"fisiqia-be/pkg/llm"

	einoOpenAI "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

type OpenAIProvider struct {
	chatModel *einoOpenAI.ChatModel
	modelName string
	maxTokens int
}

var _ llm.LLMProvider = &OpenAIProvider{}

func NewOpenAIProvider(ctx context.Context, apiKey, baseURL, modelName string, maxTokens int, timeout time.Duration) (*OpenAIProvider, error) {
	cfg := &einoOpenAI.ChatModelConfig{
		APIKey:  apiKey,
		Model:   modelName,
		Timeout: timeout,
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	chatModel, err := einoOpenAI.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}

	return &OpenAIProvider{
		chatModel: chatModel,
		modelName: modelName,
		maxTokens: maxTokens,
	}, nil
}

func (p *OpenAIProvider) Name() string {
	return "openai/" + p.modelName
}

func (p *OpenAIProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.Apply(llm.Options{
		Temperature: 0.7,
		MaxTokens:   p.maxTokens,
	}, opts...)

	messages := make([]*schema.Message, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case llm.RoleSystem:
			messages = append(messages, schema.SystemMessage(msg.Content))
		case llm.RoleAssistant, "model":
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		default:
			messages = append(messages, schema.UserMessage(msg.Content))
		}
	}

	callOpts := []model.Option{
		model.WithTemperature(float32(options.Temperature)),
	}
	if options.MaxTokens > 0 {
		callOpts = append(callOpts, model.WithMaxTokens(options.MaxTokens))
	}
	if options.Model != "" {
		callOpts = append(callOpts, model.WithModel(options.Model))
	}

	out, err := p.chatModel.Generate(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("openai generate: %w", err)
	}
	if out == nil {
		return "", fmt.Errorf("openai generate: empty message")
	}

	return out.Content, nil
}

func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}
