package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/identity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	msgPrimaryEmailMissing = "Primary email not found"
	msgUserCreated         = "User created successfully"
	msgUserCreateFailed    = "Failed to create user"
	msgUserDeleted         = "User deleted successfully"
	msgUserDeleteFailed    = "Failed to delete user"
	msgUserUpdated         = "User updated successfully"
	msgUserUpdateFailed    = "Failed to update user"
	msgUserNotFound        = "User not found"
)

// IUserService applies identity-provider webhook events to the local user mirror.
// The returned string is the success message for the response envelope.
type IUserService interface {
	CreateFromWebhook(ctx context.Context, req *dto.ClerkWebhookRequest) (string, error)
	UpdateFromWebhook(ctx context.Context, req *dto.ClerkWebhookRequest) (string, error)
	DeleteFromWebhook(ctx context.Context, req *dto.ClerkWebhookRequest) (string, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	identity   identity.Client
	bus        message.Publisher
	purgeTopic string
	publisher  events.Publisher
	log        logger.ILogger
}

// NewUserService wires the webhook handlers. identityClient and bus may be nil.
func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	identityClient identity.Client,
	bus message.Publisher,
	purgeTopic string,
	publisher events.Publisher,
	log logger.ILogger,
) IUserService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &userService{
		uowFactory: uowFactory,
		identity:   identityClient,
		bus:        bus,
		purgeTopic: purgeTopic,
		publisher:  publisher,
		log:        log,
	}
}

func (s *userService) CreateFromWebhook(ctx context.Context, req *dto.ClerkWebhookRequest) (string, error) {
	email, ok := req.Data.PrimaryEmail()
	if !ok {
		return "", apperror.BadRequest(msgPrimaryEmailMissing)
	}

	repo := s.uowFactory.NewUnitOfWork(ctx).UserRepository()
	user := &entity.User{
		ClerkId: req.Data.Id,
		Email:   email,
	}
	if err := repo.Create(ctx, user); err != nil {
		s.log.Error("user", "Error creating user", map[string]interface{}{"clerk_id": req.Data.Id, "error": err})
		return "", apperror.Internal(msgUserCreateFailed, err)
	}

	s.syncIdentityMetadata(ctx, user)

	s.publish(ctx, events.UserCreated, map[string]interface{}{"user_id": user.Id, "clerk_id": user.ClerkId})
	return msgUserCreated, nil
}

// syncIdentityMetadata stores the local id in the provider's public metadata so
// session tokens can carry it. Failures only get logged.
func (s *userService) syncIdentityMetadata(ctx context.Context, user *entity.User) {
	if s.identity == nil {
		return
	}
	if c, ok := s.identity.(*identity.ClerkClient); ok && !c.Enabled() {
		return
	}

	metadata := map[string]interface{}{"_id": user.Id}
	if err := s.identity.UpdatePublicMetadata(ctx, user.ClerkId, metadata); err != nil {
		s.log.Warn("user", "Failed to update identity metadata", map[string]interface{}{
			"clerk_id": user.ClerkId,
			"error":    err.Error(),
		})
		return
	}

	user.Metadata = metadata
	if err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().Update(ctx, user); err != nil {
		s.log.Warn("user", "Failed to store metadata mirror", map[string]interface{}{
			"clerk_id": user.ClerkId,
			"error":    err.Error(),
		})
	}
}

func (s *userService) UpdateFromWebhook(ctx context.Context, req *dto.ClerkWebhookRequest) (string, error) {
	repo := s.uowFactory.NewUnitOfWork(ctx).UserRepository()

	user, err := repo.FindByClerkId(ctx, req.Data.Id)
	if err != nil {
		s.log.Error("user", "Error loading user", map[string]interface{}{"clerk_id": req.Data.Id, "error": err})
		return "", apperror.Internal(msgUserUpdateFailed, err)
	}
	if user == nil {
		return "", apperror.NotFound(msgUserNotFound)
	}

	email, ok := req.Data.PrimaryEmail()
	if !ok {
		return "", apperror.BadRequest(msgPrimaryEmailMissing)
	}
	user.Email = email

	if err := repo.Update(ctx, user); err != nil {
		s.log.Error("user", "Error updating user", map[string]interface{}{"clerk_id": req.Data.Id, "error": err})
		return "", apperror.Internal(msgUserUpdateFailed, err)
	}

	s.publish(ctx, events.UserUpdated, map[string]interface{}{"user_id": user.Id, "clerk_id": user.ClerkId})
	return msgUserUpdated, nil
}

// DeleteFromWebhook succeeds even when the user was never mirrored locally;
// their chats are still purged.
func (s *userService) DeleteFromWebhook(ctx context.Context, req *dto.ClerkWebhookRequest) (string, error) {
	clerkId := req.Data.Id

	if _, err := s.uowFactory.NewUnitOfWork(ctx).UserRepository().DeleteByClerkId(ctx, clerkId); err != nil {
		s.log.Error("user", "Error deleting user", map[string]interface{}{"clerk_id": clerkId, "error": err})
		return "", apperror.Internal(msgUserDeleteFailed, err)
	}

	if err := s.requestPurge(clerkId); err != nil {
		s.log.Warn("user", "Failed to queue chat purge", map[string]interface{}{
			"clerk_id": clerkId,
			"error":    err.Error(),
		})
	}

	s.publish(ctx, events.UserDeleted, map[string]interface{}{"clerk_id": clerkId})
	return msgUserDeleted, nil
}

func (s *userService) requestPurge(clerkId string) error {
	if s.bus == nil {
		return nil
	}
	payload, err := json.Marshal(dto.UserDeletedMessage{ClerkId: clerkId})
	if err != nil {
		return fmt.Errorf("marshal purge message: %w", err)
	}
	return s.bus.Publish(s.purgeTopic, message.NewMessage(watermill.NewUUID(), payload))
}

func (s *userService) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if err := s.publisher.Publish(ctx, events.New(eventType, data)); err != nil {
		s.log.Warn("user", "Failed to publish event", map[string]interface{}{
			"event": eventType,
			"error": err.Error(),
		})
	}
}
