package controller

import (
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	Turn(ctx *fiber.Ctx) error
	AppendMessage(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/chats", auth)
	h.Post("/", c.Turn)
	h.Get("/", c.List)
	h.Get("/:id", c.Get)
	h.Delete("/:id", c.Delete)
	h.Post("/:id/messages", c.AppendMessage)
}

// checkOwner rejects a client-supplied userId that is not the token subject.
// An empty userId is left for the service to reject.
func checkOwner(ctx *fiber.Ctx, userId string) error {
	if userId == "" {
		return nil
	}
	sub, ok := serverutils.UserIDFromCtx(ctx)
	if !ok || sub != userId {
		return serverutils.ErrRequestUnauthorized
	}
	return nil
}

func (c *chatController) Turn(ctx *fiber.Ctx) error {
	var req dto.ChatTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.BadRequest("Message and userId are required")
	}
	return c.turn(ctx, &req)
}

// AppendMessage is the REST form of continue; the path id wins over the body.
func (c *chatController) AppendMessage(ctx *fiber.Ctx) error {
	var req dto.ChatTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.BadRequest("Message and userId are required")
	}
	req.ChatId = ctx.Params("id")
	return c.turn(ctx, &req)
}

func (c *chatController) turn(ctx *fiber.Ctx, req *dto.ChatTurnRequest) error {
	if err := checkOwner(ctx, req.UserId); err != nil {
		return err
	}

	res, err := c.service.HandleTurn(ctx.UserContext(), req)
	if err != nil {
		return err
	}

	if res.Created != nil {
		return ctx.Status(fiber.StatusCreated).JSON(res.Created)
	}
	return ctx.JSON(res.Continued)
}

func (c *chatController) List(ctx *fiber.Ctx) error {
	userId := ctx.Query("userId")
	if err := checkOwner(ctx, userId); err != nil {
		return err
	}

	res, err := c.service.ListChats(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *chatController) Get(ctx *fiber.Ctx) error {
	userId := ctx.Query("userId")
	if err := checkOwner(ctx, userId); err != nil {
		return err
	}

	res, err := c.service.GetChat(ctx.UserContext(), ctx.Params("id"), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

// Delete reads userId from the body and falls back to the query string.
func (c *chatController) Delete(ctx *fiber.Ctx) error {
	var req dto.DeleteChatRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperror.BadRequest("User ID is required")
		}
	}
	if req.UserId == "" {
		req.UserId = ctx.Query("userId")
	}
	if err := checkOwner(ctx, req.UserId); err != nil {
		return err
	}

	res, err := c.service.DeleteChat(ctx.UserContext(), ctx.Params("id"), req.UserId)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}
