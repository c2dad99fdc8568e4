package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/diarylab/backend/internal/config"
)

// ErrUnknownTemplate signals a generate request naming a template that is not
// in the catalog.
var ErrUnknownTemplate = errors.New("unknown prompt template")

const systemPrompt = "You are the AI companion inside a personal diary app. " +
	"Answer the user's prompts helpfully and concisely, and never reveal " +
	"another user's content."

// Service is the completion provider: it turns prompts into either a full
// response or a lazy stream of fragments from the configured chat model.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
	templates *TemplateCatalog
	log       zerolog.Logger
}

// NewService compiles the chat chain against the configured model backend.
func NewService(ctx context.Context, cfg config.AIConfig, log zerolog.Logger) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile chat chain: %w", err)
	}

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
		templates: NewTemplateCatalog(),
		log:       log.With().Str("component", "ai-service").Logger(),
	}, nil
}

// StreamingEnabled reports whether streamed responses are configured.
func (s *Service) StreamingEnabled() bool {
	return s.cfg.StreamResponse
}

// StreamChat returns a lazy fragment stream for the prompt. The stream ends
// with io.EOF on completion; closing it (or cancelling ctx) releases the
// underlying model subscription.
func (s *Service) StreamChat(ctx context.Context, promptText string) (*schema.StreamReader[*schema.Message], error) {
	stream, err := s.chain.Stream(ctx, map[string]any{
		"system": systemPrompt,
		"query":  promptText,
	})
	if err != nil {
		return nil, fmt.Errorf("stream chat completion: %w", err)
	}
	return stream, nil
}

// GenerateFromTemplate renders a catalog template with the supplied variables
// and runs a synchronous completion.
func (s *Service) GenerateFromTemplate(ctx context.Context, templateID string, vars map[string]any) (string, error) {
	tmpl, ok := s.templates.Find(templateID)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, templateID)
	}

	rendered, err := tmpl.Render(vars)
	if err != nil {
		return "", err
	}

	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": systemPrompt,
		"query":  rendered,
	})
	if err != nil {
		return "", fmt.Errorf("run completion: %w", err)
	}

	s.log.Debug().Str("template", templateID).Int("length", len(response.Content)).Msg("generated response")
	return response.Content, nil
}
