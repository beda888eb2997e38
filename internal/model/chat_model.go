package model

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	Id        uuid.UUID     `gorm:"type:uuid;primaryKey"`
	UserId    string        `gorm:"type:text;not null;index"`
	Title     string        `gorm:"type:text;not null"`
	CreatedAt time.Time     `gorm:"autoCreateTime:false"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime:false;index"`
	Messages  []ChatMessage `gorm:"foreignKey:ChatId;constraint:OnDelete:CASCADE"`
}

func (Chat) TableName() string {
	return "chats"
}

type ChatMessage struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ChatId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Position  int       `gorm:"not null"`
	Role      string    `gorm:"type:varchar(16);not null"`
	Content   string    `gorm:"type:text;not null"`
	Timestamp time.Time `gorm:"not null"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
