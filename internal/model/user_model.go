package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	Id        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ClerkId   string            `gorm:"type:text;not null;uniqueIndex"`
	Email     string            `gorm:"type:text;not null"`
	Metadata  datatypes.JSONMap `gorm:"type:json"`
	CreatedAt time.Time         `gorm:"autoCreateTime"`
	UpdatedAt time.Time         `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
