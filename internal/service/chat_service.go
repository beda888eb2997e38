package service

import (
	"context"
	"strings"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"
)

const (
	msgTurnFieldsRequired = "Message and userId are required"
	msgUserIdRequired     = "User ID is required"
	msgChatNotFound       = "Chat not found"
	msgDeleteNotFound     = "Chat not found or not authorized to delete"
	msgCreateFailed       = "Failed to create new chat"
	msgAppendFailed       = "Failed to add message to chat"
	msgListFailed         = "Failed to fetch chats"
	msgGetFailed          = "Failed to fetch chat"
	msgDeleteFailed       = "Failed to delete chat"
	msgChatDeleted        = "Chat deleted successfully"
)

type IChatService interface {
	HandleTurn(ctx context.Context, req *dto.ChatTurnRequest) (*dto.ChatTurnResult, error)
	CreateChat(ctx context.Context, userId, message string) (*dto.CreateChatResponse, error)
	ContinueChat(ctx context.Context, chatId, userId, message string) (*dto.ContinueChatResponse, error)
	ListChats(ctx context.Context, userId string) (*dto.ChatListResponse, error)
	GetChat(ctx context.Context, chatId, userId string) (*dto.ChatDetailResponse, error)
	DeleteChat(ctx context.Context, chatId, userId string) (*dto.DeleteChatResponse, error)
	PurgeUserChats(ctx context.Context, userId string) (int64, error)
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	assistant  IAssistantService
	publisher  events.Publisher
	log        logger.ILogger
	now        func() time.Time
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	assistant IAssistantService,
	publisher events.Publisher,
	log logger.ILogger,
) IChatService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &chatService{
		uowFactory: uowFactory,
		assistant:  assistant,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

func (s *chatService) HandleTurn(ctx context.Context, req *dto.ChatTurnRequest) (*dto.ChatTurnResult, error) {
	if req == nil || req.Message == "" || req.UserId == "" {
		return nil, apperror.BadRequest(msgTurnFieldsRequired)
	}

	if req.ChatId != "" {
		res, err := s.ContinueChat(ctx, req.ChatId, req.UserId, req.Message)
		if err != nil {
			return nil, err
		}
		return &dto.ChatTurnResult{Continued: res}, nil
	}

	res, err := s.CreateChat(ctx, req.UserId, req.Message)
	if err != nil {
		return nil, err
	}
	return &dto.ChatTurnResult{Created: res}, nil
}

// CreateChat writes the chat twice: once with the user turn, once with the
// assistant turn. A failed reply is stored as fallback text, not rolled back.
func (s *chatService) CreateChat(ctx context.Context, userId, message string) (*dto.CreateChatResponse, error) {
	if message == "" || userId == "" {
		return nil, apperror.BadRequest(msgTurnFieldsRequired)
	}

	title := s.assistant.GenerateTitle(ctx, message)

	now := s.now()
	chat := &entity.Chat{
		Title:     title,
		UserId:    userId,
		CreatedAt: now,
		UpdatedAt: now,
	}
	chat.AppendMessage(entity.MessageRoleUser, message, now)

	repo := s.uowFactory.NewUnitOfWork(ctx).ChatRepository()
	if err := repo.Create(ctx, chat); err != nil {
		s.log.Error("chat", "Error creating new chat", map[string]interface{}{"user_id": userId, "error": err})
		return nil, apperror.Internal(msgCreateFailed, err)
	}

	reply := s.assistant.GenerateReply(ctx, message)
	chat.AppendMessage(entity.MessageRoleAssistant, reply, s.now())

	if err := repo.Save(ctx, chat); err != nil {
		s.log.Error("chat", "Error saving assistant reply", map[string]interface{}{"chat_id": chat.Id, "error": err})
		return nil, apperror.Internal(msgCreateFailed, err)
	}

	s.publish(ctx, events.ChatCreated, map[string]interface{}{
		"chat_id":       chat.Id,
		"user_id":       userId,
		"message_count": len(chat.Messages),
	})

	return &dto.CreateChatResponse{
		Success: true,
		Chat: dto.CreatedChat{
			Id:        chat.Id,
			Title:     chat.Title,
			Messages:  toMessageResponses(chat.Messages),
			CreatedAt: chat.CreatedAt,
		},
	}, nil
}

func (s *chatService) ContinueChat(ctx context.Context, chatId, userId, message string) (*dto.ContinueChatResponse, error) {
	if message == "" || userId == "" || chatId == "" {
		return nil, apperror.BadRequest("Message, chatId, and userId are required")
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).ChatRepository()

	chat, err := repo.FindOwned(ctx, chatId, userId)
	if err != nil {
		s.log.Error("chat", "Error loading chat", map[string]interface{}{"chat_id": chatId, "error": err})
		return nil, apperror.Internal(msgAppendFailed, err)
	}
	if chat == nil {
		return nil, apperror.NotFound(msgChatNotFound)
	}

	chat.AppendMessage(entity.MessageRoleUser, message, s.now())
	if err := repo.Save(ctx, chat); err != nil {
		s.log.Error("chat", "Error saving user message", map[string]interface{}{"chat_id": chatId, "error": err})
		return nil, apperror.Internal(msgAppendFailed, err)
	}

	reply := s.assistant.GenerateReply(ctx, message)
	chat.AppendMessage(entity.MessageRoleAssistant, reply, s.now())
	if err := repo.Save(ctx, chat); err != nil {
		s.log.Error("chat", "Error saving assistant reply", map[string]interface{}{"chat_id": chatId, "error": err})
		return nil, apperror.Internal(msgAppendFailed, err)
	}

	s.publish(ctx, events.ChatMessageAppended, map[string]interface{}{
		"chat_id":       chat.Id,
		"user_id":       userId,
		"message_count": len(chat.Messages),
	})

	return &dto.ContinueChatResponse{
		Success: true,
		Message: toMessageResponse(chat.LastMessage()),
		ChatId:  chat.Id,
	}, nil
}

func (s *chatService) ListChats(ctx context.Context, userId string) (*dto.ChatListResponse, error) {
	if userId == "" {
		return nil, apperror.BadRequest(msgUserIdRequired)
	}

	summaries, err := s.uowFactory.NewUnitOfWork(ctx).ChatRepository().ListSummaries(ctx, userId)
	if err != nil {
		s.log.Error("chat", "Error fetching chats", map[string]interface{}{"user_id": userId, "error": err})
		return nil, apperror.Internal(msgListFailed, err)
	}

	res := &dto.ChatListResponse{Chats: make([]dto.ChatSummaryResponse, 0, len(summaries))}
	for _, sm := range summaries {
		res.Chats = append(res.Chats, dto.ChatSummaryResponse{
			Id:        sm.Id,
			Title:     sm.Title,
			CreatedAt: sm.CreatedAt,
			UpdatedAt: sm.UpdatedAt,
		})
	}
	return res, nil
}

func (s *chatService) GetChat(ctx context.Context, chatId, userId string) (*dto.ChatDetailResponse, error) {
	if userId == "" {
		return nil, apperror.BadRequest(msgUserIdRequired)
	}

	chat, err := s.uowFactory.NewUnitOfWork(ctx).ChatRepository().FindOwned(ctx, chatId, userId)
	if err != nil {
		s.log.Error("chat", "Error fetching chat", map[string]interface{}{"chat_id": chatId, "error": err})
		return nil, apperror.Internal(msgGetFailed, err)
	}
	if chat == nil {
		return nil, apperror.NotFound(msgChatNotFound)
	}

	return &dto.ChatDetailResponse{
		Chat: dto.ChatResponse{
			Id:        chat.Id,
			Title:     chat.Title,
			Messages:  toMessageResponses(chat.Messages),
			UserId:    chat.UserId,
			CreatedAt: chat.CreatedAt,
			UpdatedAt: chat.UpdatedAt,
		},
	}, nil
}

func (s *chatService) DeleteChat(ctx context.Context, chatId, userId string) (*dto.DeleteChatResponse, error) {
	if userId == "" {
		return nil, apperror.BadRequest(msgUserIdRequired)
	}

	deleted, err := s.uowFactory.NewUnitOfWork(ctx).ChatRepository().DeleteOwned(ctx, chatId, userId)
	if err != nil {
		s.log.Error("chat", "Error deleting chat", map[string]interface{}{"chat_id": chatId, "error": err})
		return nil, apperror.Internal(msgDeleteFailed, err)
	}
	if deleted == 0 {
		return nil, apperror.NotFound(msgDeleteNotFound)
	}

	s.publish(ctx, events.ChatDeleted, map[string]interface{}{"chat_id": chatId, "user_id": userId})

	return &dto.DeleteChatResponse{Success: true, Message: msgChatDeleted}, nil
}

// PurgeUserChats removes every chat owned by userId. Used when the account is deleted.
func (s *chatService) PurgeUserChats(ctx context.Context, userId string) (int64, error) {
	if strings.TrimSpace(userId) == "" {
		return 0, apperror.BadRequest(msgUserIdRequired)
	}
	return s.uowFactory.NewUnitOfWork(ctx).ChatRepository().DeleteAllByUser(ctx, userId)
}

func (s *chatService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.log.Warn("chat", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}

func toMessageResponse(m *entity.ChatMessage) dto.MessageResponse {
	return dto.MessageResponse{
		Id:        m.Id,
		Content:   m.Content,
		Role:      string(m.Role),
		Timestamp: m.Timestamp,
	}
}

func toMessageResponses(msgs []*entity.ChatMessage) []dto.MessageResponse {
	out := make([]dto.MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = toMessageResponse(m)
	}
	return out
}
