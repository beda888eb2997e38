package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/mapper"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
	now    func() time.Time
}

func NewChatRepository(db *gorm.DB) contract.ChatRepository {
	return &ChatRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
		now:    time.Now,
	}
}

func (r *ChatRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// insertNewMessages writes messages that have no id yet. Position is the index
// in the chat, so already stored rows keep their order.
func (r *ChatRepositoryImpl) insertNewMessages(tx *gorm.DB, chatId uuid.UUID, messages []*entity.ChatMessage) error {
	for i, msg := range messages {
		if msg.Id != "" {
			continue
		}
		if !msg.Role.Valid() {
			return fmt.Errorf("%w: %q", entity.ErrInvalidMessageRole, msg.Role)
		}
		m := r.mapper.MessageToModel(chatId, i, msg)
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		msg.Id = m.Id.String()
	}
	return nil
}

func (r *ChatRepositoryImpl) Create(ctx context.Context, chat *entity.Chat) error {
	now := r.now()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	chat.UpdatedAt = now

	m, err := r.mapper.ChatToModel(chat)
	if err != nil {
		return fmt.Errorf("invalid chat id: %w", err)
	}
	if m.Id == uuid.Nil {
		m.Id = uuid.New()
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		if err := r.insertNewMessages(tx, m.Id, chat.Messages); err != nil {
			return err
		}
		chat.Id = m.Id.String()
		return nil
	})
}

func (r *ChatRepositoryImpl) Save(ctx context.Context, chat *entity.Chat) error {
	id, err := uuid.Parse(chat.Id)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", chat.Id, err)
	}
	now := r.now()

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Chat{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{"title": chat.Title, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("chat %s: %w", chat.Id, gorm.ErrRecordNotFound)
		}
		return r.insertNewMessages(tx, id, chat.Messages)
	})
	if err != nil {
		return err
	}

	chat.UpdatedAt = now
	return nil
}

func (r *ChatRepositoryImpl) FindOwned(ctx context.Context, id, userId string) (*entity.Chat, error) {
	chatId, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}

	var m model.Chat
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.ByID{ID: chatId},
		specification.UserOwnedBy{UserID: userId},
		specification.WithMessages{},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ChatToEntity(&m), nil
}

func (r *ChatRepositoryImpl) ListSummaries(ctx context.Context, userId string) ([]*entity.ChatSummary, error) {
	var models []*model.Chat
	query := r.applySpecifications(r.db.WithContext(ctx),
		specification.Select{Fields: []string{"id", "title", "created_at", "updated_at"}},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "updated_at", Desc: true},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}

	summaries := make([]*entity.ChatSummary, len(models))
	for i, m := range models {
		summaries[i] = r.mapper.ChatToSummary(m)
	}
	return summaries, nil
}

func (r *ChatRepositoryImpl) DeleteOwned(ctx context.Context, id, userId string) (int64, error) {
	chatId, err := uuid.Parse(id)
	if err != nil {
		return 0, nil
	}

	var deleted int64
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := r.applySpecifications(tx,
			specification.ByID{ID: chatId},
			specification.UserOwnedBy{UserID: userId},
		).Delete(&model.Chat{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		if deleted == 0 {
			return nil
		}
		return specification.ByChatID{ChatID: chatId}.Apply(tx).Delete(&model.ChatMessage{}).Error
	})
	return deleted, err
}

func (r *ChatRepositoryImpl) DeleteAllByUser(ctx context.Context, userId string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		owned := specification.UserOwnedBy{UserID: userId}
		if err := owned.Apply(tx.Model(&model.Chat{})).Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("chat_id IN ?", ids).Delete(&model.ChatMessage{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&model.Chat{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}
