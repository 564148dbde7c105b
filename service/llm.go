package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/kashvi5907-create/legalease/backend/config"
	"github.com/kashvi5907-create/legalease/backend/pkg/logger"
)

// ChatModel is the slice of the eino chat-model surface this service needs.
// Tests implement it with a canned-response fake.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// LLMService wraps the configured chat model behind prompt-level helpers.
// The model is an unreliable external collaborator: every caller must treat
// an error as a degraded result, not a pipeline failure.
type LLMService struct {
	chatModel ChatModel
	cfg       *config.LLMConfig
}

// NewLLMService builds a chat model for the configured provider.
func NewLLMService(ctx context.Context, cfg *config.LLMConfig) (*LLMService, error) {
	var chatModel ChatModel
	var err error

	switch cfg.Provider {
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			APIKey:  cfg.APIKey,
		})
	case "claude":
		var baseURLPtr *string
		if cfg.BaseURL != "" {
			baseURLPtr = &cfg.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			BaseURL:   baseURLPtr,
			MaxTokens: cfg.MaxTokens,
		})
	case "gemini":
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  cfg.Model,
		})
	default:
		return nil, fmt.Errorf("invalid llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s chat model: %w", cfg.Provider, err)
	}

	return &LLMService{chatModel: chatModel, cfg: cfg}, nil
}

// NewLLMServiceWithModel is used by tests to inject a fake chat model.
func NewLLMServiceWithModel(cfg *config.LLMConfig, m ChatModel) *LLMService {
	return &LLMService{chatModel: m, cfg: cfg}
}

// Complete sends a single user prompt and returns the trimmed completion.
func (s *LLMService) Complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	messages := []*schema.Message{schema.UserMessage(prompt)}

	resp, err := s.chatModel.Generate(ctx, messages,
		model.WithTemperature(temperature),
		model.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return strings.TrimSpace(resp.Content), nil
}

// Summarize produces a three-bullet summary of the contract. Simplify
// switches to plain English for non-lawyers.
func (s *LLMService) Summarize(ctx context.Context, fullText string, simplify bool) (string, error) {
	var prompt string
	if simplify {
		prompt = "Explain the following contract in simple, friendly English for a non-lawyer. " +
			"Focus on what they actually need to know. Use exactly 3 bullet points (start each point with '* '):\n\n" + fullText
	} else {
		prompt = "Summarize the following contract in exactly 3 concise bullet points (start each point with '* '). " +
			"Focus on the main purpose and key obligations:\n\n" + fullText
	}

	out, err := s.Complete(ctx, prompt, 0.3, 500)
	if err != nil {
		logger.Warn(ctx, "summary generation failed", "error", err)
		return "", err
	}
	return stripCodeFence(out), nil
}

// ExplainRisk explains why a detected clause category is a potential red
// flag, grounded in the first snippet found for it.
func (s *LLMService) ExplainRisk(ctx context.Context, category, snippet string) (string, error) {
	prompt := fmt.Sprintf(
		"Explain why a '%s' clause in a contract is a potential red flag. Keep it to 2 sentences. Context: %s",
		category, snippet,
	)
	return s.Complete(ctx, prompt, 0.3, 150)
}

// Chat answers a single question about the document text.
func (s *LLMService) Chat(ctx context.Context, fullText, question string) (string, error) {
	contextText := clipContext(fullText)
	prompt := fmt.Sprintf(
		"You are a helpful legal assistant. Answer the user's question about the following contract. "+
			"Be concise and practical.\n\nContract:\n%s\n\nQuestion: %s",
		contextText, question,
	)
	return s.Complete(ctx, prompt, 0.3, 500)
}

// stripCodeFence removes markdown code-fence wrapping (```json ... ``` or
// ``` ... ```) from a model response before further processing.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)

	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}

	if strings.Contains(s, "```") {
		parts := strings.SplitN(s, "```", 3)
		if len(parts) >= 2 {
			body := parts[1]
			// drop a bare language tag on the opening fence line
			if nl := strings.IndexByte(body, '\n'); nl >= 0 {
				tag := strings.TrimSpace(body[:nl])
				if tag != "" && !strings.ContainsAny(tag, " \t{[") {
					body = body[nl+1:]
				}
			}
			return strings.TrimSpace(body)
		}
	}

	return s
}
