package server

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"ai-chat-be/internal/bootstrap"
	"ai-chat-be/internal/config"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/serverutils"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Server struct {
	app       *fiber.App
	cfg       *config.Config
	container *bootstrap.Container
	log       logger.ILogger
}

func New(cfg *config.Config, container *bootstrap.Container) *Server {
	log := container.Logger

	app := fiber.New(fiber.Config{
		BodyLimit:             1 * 1024 * 1024,
		ErrorHandler:          serverutils.ErrorHandler(log),
		DisableStartupMessage: cfg.IsProduction(),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.App.CorsAllowedOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, svix-id, svix-timestamp, svix-signature",
		AllowMethods:  "GET, POST, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Content-Type",
	}))

	// OpenTelemetry tracing middleware (no-op unless a tracer provider is installed)
	app.Use(otelfiber.Middleware())

	app.Use(serverutils.PerformanceMiddleware(log))
	app.Use(prettyJSON)
	app.Use(serverutils.ErrorHandlerMiddleware(log))

	registerRoutes(app, container)

	app.Use(func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "not found"})
	})

	return &Server{
		app:       app,
		cfg:       cfg,
		container: container,
		log:       log,
	}
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.log.Info("bootstrap", "Server is running", map[string]interface{}{"port": s.cfg.App.Port})
	return s.app.Listen(":" + s.cfg.App.Port)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// registerRoutes mounts everything at the root and again under /api.
func registerRoutes(app *fiber.App, c *bootstrap.Container) {
	for _, r := range []fiber.Router{app, app.Group("/api")} {
		c.HealthController.RegisterRoutes(r)
		c.UserController.RegisterRoutes(r)
		c.ChatController.RegisterRoutes(r, c.AuthMiddleware)
	}
}

// prettyJSON re-indents JSON responses when the query carries "pretty".
func prettyJSON(ctx *fiber.Ctx) error {
	if err := ctx.Next(); err != nil {
		return err
	}
	if !ctx.Request().URI().QueryArgs().Has("pretty") {
		return nil
	}
	if !strings.HasPrefix(string(ctx.Response().Header.ContentType()), fiber.MIMEApplicationJSON) {
		return nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, ctx.Response().Body(), "", "  "); err != nil {
		return nil
	}
	ctx.Response().SetBodyRaw(buf.Bytes())
	return nil
}
