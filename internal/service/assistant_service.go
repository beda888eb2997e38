package service

import (
	"context"
	"fmt"
	"strings"

	"ai-chat-be/internal/constant"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/pkg/llm"
)

// IAssistantService never fails: provider errors degrade to fixed strings.
type IAssistantService interface {
	GenerateTitle(ctx context.Context, message string) string
	GenerateReply(ctx context.Context, message string) string
}

type assistantService struct {
	provider llm.LLMProvider
	log      logger.ILogger
}

func NewAssistantService(provider llm.LLMProvider, log logger.ILogger) IAssistantService {
	return &assistantService{
		provider: provider,
		log:      log,
	}
}

// CleanTitle trims whitespace and unwraps one pair of quotes around the whole
// generated title.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if len(title) >= 2 && isQuote(title[0]) && isQuote(title[len(title)-1]) {
		title = title[1 : len(title)-1]
	}
	return strings.TrimSpace(title)
}

func isQuote(b byte) bool {
	return b == '"' || b == '\''
}

func (s *assistantService) GenerateTitle(ctx context.Context, message string) string {
	if s.provider == nil {
		return constant.DefaultChatTitle
	}

	raw, err := s.provider.Generate(ctx, fmt.Sprintf(constant.ChatTitlePromptV1, message))
	if err != nil {
		s.log.Warn("assistant", "Failed to generate chat title, using default", map[string]interface{}{
			"error": err.Error(),
		})
		return constant.DefaultChatTitle
	}

	title := CleanTitle(raw)
	if len([]rune(title)) < constant.MinChatTitleLength {
		return constant.DefaultChatTitle
	}
	return title
}

func (s *assistantService) GenerateReply(ctx context.Context, message string) string {
	if s.provider == nil {
		return constant.AssistantReplyUnavailable
	}

	reply, err := s.provider.Generate(ctx, fmt.Sprintf(constant.ChatReplyPromptV1, message))
	if err != nil {
		s.log.Warn("assistant", "Failed to generate AI response, using default", map[string]interface{}{
			"error": err.Error(),
		})
		return constant.AssistantReplyFallback
	}
	if strings.TrimSpace(reply) == "" {
		return constant.AssistantReplyFallback
	}
	return reply
}
