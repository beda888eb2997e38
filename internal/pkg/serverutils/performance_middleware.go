package serverutils

import (
	"fmt"
	"strings"
	"time"

	"ai-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// FormatPerformanceLine renders the single-line request summary, e.g.
// "MT: GET | PA: /chats | AU: Authenticated | ST: 200 | RT: 12.34 ms".
func FormatPerformanceLine(method, path string, authenticated bool, status int, elapsed time.Duration) string {
	au := "Unauthenticated"
	if authenticated {
		au = "Authenticated"
	}
	return strings.Join([]string{
		"MT: " + method,
		"PA: " + path,
		"AU: " + au,
		fmt.Sprintf("ST: %d", status),
		fmt.Sprintf("RT: %.2f ms", float64(elapsed.Microseconds())/1000),
	}, " | ")
}

func PerformanceMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			// not yet converted by the error handler
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		_, authenticated := UserIDFromCtx(ctx)
		log.Info("http", FormatPerformanceLine(ctx.Method(), ctx.Path(), authenticated, status, time.Since(start)), nil)
		return err
	}
}
