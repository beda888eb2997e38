package controller

import (
	"context"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/pkg/webhook"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	msgInvalidSignature = "Invalid webhook signature"
	msgAlreadyProcessed = "Webhook already processed"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
}

type userController struct {
	service  service.IUserService
	verifier *webhook.Verifier
	guard    *webhook.ReplayGuard
	log      logger.ILogger
}

// NewUserController serves the identity-provider webhooks. A nil verifier
// disables signature checks; a nil guard disables replay detection.
func NewUserController(
	service service.IUserService,
	verifier *webhook.Verifier,
	guard *webhook.ReplayGuard,
	log logger.ILogger,
) IUserController {
	return &userController{
		service:  service,
		verifier: verifier,
		guard:    guard,
		log:      log,
	}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/users")
	h.Post("/create", c.Create)
	h.Post("/delete", c.Delete)
	h.Post("/update", c.Update)
}

func (c *userController) Create(ctx *fiber.Ctx) error {
	return c.handle(ctx, c.service.CreateFromWebhook)
}

func (c *userController) Delete(ctx *fiber.Ctx) error {
	return c.handle(ctx, c.service.DeleteFromWebhook)
}

func (c *userController) Update(ctx *fiber.Ctx) error {
	return c.handle(ctx, c.service.UpdateFromWebhook)
}

type webhookHandler func(ctx context.Context, req *dto.ClerkWebhookRequest) (string, error)

func (c *userController) handle(ctx *fiber.Ctx, apply webhookHandler) error {
	deliveryId := ctx.Get(webhook.HeaderID)

	if c.verifier != nil {
		err := c.verifier.Verify(deliveryId, ctx.Get(webhook.HeaderTimestamp), ctx.Get(webhook.HeaderSignature), ctx.Body())
		if err != nil {
			c.log.Warn("webhook", "Rejected webhook", map[string]interface{}{
				"path":  ctx.Path(),
				"error": err.Error(),
			})
			return apperror.Unauthorized(msgInvalidSignature)
		}
	}

	var req dto.ClerkWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid webhook payload")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	first, err := c.guard.FirstDelivery(ctx.UserContext(), deliveryId)
	if err != nil {
		// a broken dedupe store should not drop deliveries
		c.log.Warn("webhook", "Replay guard unavailable", map[string]interface{}{"error": err.Error()})
		first = true
	}
	if !first {
		c.log.Info("webhook", "Skipping replayed delivery", map[string]interface{}{"svix_id": deliveryId})
		return ctx.JSON(serverutils.SuccessResponse[any](msgAlreadyProcessed, nil))
	}

	msg, err := apply(ctx.UserContext(), &req)
	if err != nil {
		if relErr := c.guard.Release(ctx.UserContext(), deliveryId); relErr != nil {
			c.log.Warn("webhook", "Failed to release delivery id", map[string]interface{}{"error": relErr.Error()})
		}
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any](msg, nil))
}
