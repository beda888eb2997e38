package mapper

import (
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:        u.Id.String(),
		ClerkId:   u.ClerkId,
		Email:     u.Email,
		Metadata:  map[string]interface{}(u.Metadata),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	id, err := uuid.Parse(u.Id)
	if err != nil {
		id = uuid.Nil
	}
	return &model.User{
		Id:        id,
		ClerkId:   u.ClerkId,
		Email:     u.Email,
		Metadata:  datatypes.JSONMap(u.Metadata),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
