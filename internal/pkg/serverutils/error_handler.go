package serverutils

import (
	"errors"

	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const internalErrorMessage = "Internal server error"

// ErrorHandler is installed as fiber's ErrorHandler. Anything that is not an
// apperror, fiber error or validation error becomes a bare 500.
func ErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		status, body := resolveError(err)

		if status >= fiber.StatusInternalServerError {
			log.Error("http", "request failed", map[string]interface{}{
				"method": ctx.Method(),
				"path":   ctx.Path(),
				"error":  err,
			})
		}

		return ctx.Status(status).JSON(body)
	}
}

// ErrorHandlerMiddleware converts errors returned further down the chain right
// away so outer middleware (the performance logger) sees the final status.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	handle := ErrorHandler(log)
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return handle(ctx, err)
		}
		return nil
	}
}

func resolveError(err error) (int, Response[any]) {
	if errors.Is(err, ErrRequestUnauthorized) {
		return fiber.StatusUnauthorized, unauthorizedResponse()
	}

	if appErr, ok := apperror.As(err); ok {
		return appErr.Status, ErrorResponse(appErr.Message, nil)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, ErrorResponse(fiberErr.Message, nil)
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fiber.StatusBadRequest, ErrorResponse("Validation failed", ValidationMessages(err))
	}

	return fiber.StatusInternalServerError, ErrorResponse(internalErrorMessage, nil)
}
