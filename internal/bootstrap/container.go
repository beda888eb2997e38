package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/controller"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/pkg/identity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/pkg/webhook"
	"ai-chat-be/internal/repository/contract"
	"ai-chat-be/internal/repository/memory"
	"ai-chat-be/internal/repository/mongodb"
	"ai-chat-be/internal/repository/redisstore"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/service"
	"ai-chat-be/pkg/database"
	"ai-chat-be/pkg/events"
	"ai-chat-be/pkg/llm"
	"ai-chat-be/pkg/llm/factory"
	pktNats "ai-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gofiber/fiber/v2"
)

type Container struct {
	Logger logger.ILogger

	// Controllers
	ChatController   controller.IChatController
	UserController   controller.IUserController
	HealthController controller.IHealthController

	AuthMiddleware fiber.Handler

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []closer
}

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

func (c *Container) onClose(name string, fn func(ctx context.Context) error) {
	c.closers = append(c.closers, closer{name: name, fn: fn})
}

// Close releases infrastructure in reverse order of acquisition.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		cl := c.closers[i]
		if err := cl.fn(ctx); err != nil {
			c.Logger.Warn("bootstrap", "Failed to close "+cl.name, map[string]interface{}{"error": err.Error()})
			errs = append(errs, fmt.Errorf("close %s: %w", cl.name, err))
		}
	}
	return errors.Join(errs...)
}

func NewContainer(ctx context.Context, cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	c := &Container{Logger: sysLogger}

	// 1. Store
	uowFactory, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// 2. Infrastructure
	deliveries := c.openDeliveryStore(ctx, cfg)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(ctx, cfg.App.NatsURL)
		if err != nil {
			sysLogger.Warn("bootstrap", "NATS unavailable, domain events disabled", map[string]interface{}{"error": err.Error()})
		} else {
			publisher = natsPub
			c.onClose("nats", func(context.Context) error {
				natsPub.Close()
				return nil
			})
		}
	}

	// Event Bus
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		logger.NewWatermillAdapter(sysLogger, "consumer"),
	)
	c.onClose("pubsub", func(context.Context) error { return pubSub.Close() })

	// 3. Providers
	var provider llm.LLMProvider
	provider, err = factory.NewLLMProvider(ctx, factory.ProviderConfig{
		Provider:            cfg.Ai.LLMProvider,
		Model:               cfg.Ai.LLMModel,
		Timeout:             time.Duration(cfg.Ai.TimeoutSeconds) * time.Second,
		CloudflareAccountID: cfg.Ai.CloudflareAccountID,
		CloudflareAPIToken:  cfg.Ai.CloudflareAPIToken,
		CloudflareEndpoint:  cfg.Ai.CloudflareEndpoint,
		OllamaBaseURL:       cfg.Ai.OllamaBaseURL,
		OpenAIKey:           cfg.Ai.OpenAIKey,
		OpenAIBaseURL:       cfg.Ai.OpenAIBaseURL,
		ArkAPIKey:           cfg.Ai.ArkAPIKey,
		ArkBaseURL:          cfg.Ai.ArkBaseURL,
	})
	if err != nil {
		// chats keep working with the fixed fallback replies
		sysLogger.Warn("bootstrap", "LLM provider unavailable", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"error":    err.Error(),
		})
		provider = nil
	} else {
		sysLogger.Info("bootstrap", "Using LLM provider", map[string]interface{}{
			"provider": cfg.Ai.LLMProvider,
			"model":    cfg.Ai.LLMModel,
		})
	}

	identityClient := identity.NewClerkClient(cfg.Clerk.APIURL, cfg.Clerk.SecretKey)

	// 4. Services
	assistantService := service.NewAssistantService(provider, sysLogger)
	chatService := service.NewChatService(uowFactory, assistantService, publisher, sysLogger)
	userService := service.NewUserService(uowFactory, identityClient, pubSub, cfg.App.UserPurgeTopic, publisher, sysLogger)
	consumerService := service.NewChatPurgeConsumer(pubSub, cfg.App.UserPurgeTopic, chatService, sysLogger)

	// 5. HTTP
	verifier, err := serverutils.NewJwtVerifier(serverutils.JwtConfig{
		Secret:            cfg.Auth.JwtSecret,
		PublicKeyPEM:      cfg.Auth.JwtPublicKey,
		AuthorizedParties: cfg.Auth.AuthorizedParties,
	})
	if err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	if cfg.Auth.JwtSecret == "" && cfg.Auth.JwtPublicKey == "" {
		sysLogger.Warn("bootstrap", "No JWT key configured, every chat request will be rejected", nil)
	}

	var webhookVerifier *webhook.Verifier
	if cfg.Clerk.WebhookSecret != "" {
		webhookVerifier, err = webhook.NewVerifier(cfg.Clerk.WebhookSecret)
		if err != nil {
			_ = c.Close(ctx)
			return nil, err
		}
	} else {
		sysLogger.Warn("bootstrap", "CLERK_WEBHOOK_SECRET not set, webhook signatures are not checked", nil)
	}

	c.ChatController = controller.NewChatController(chatService)
	c.UserController = controller.NewUserController(
		userService,
		webhookVerifier,
		webhook.NewReplayGuard(deliveries, webhook.DefaultReplayWindow),
		sysLogger,
	)
	c.HealthController = controller.NewHealthController(cfg.App.Version)
	c.AuthMiddleware = serverutils.JwtMiddleware(verifier)
	c.ConsumerService = consumerService

	return c, nil
}

func (c *Container) openStore(ctx context.Context, cfg *config.Config) (unitofwork.RepositoryFactory, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("unable to connect to postgres: %w", err)
		}
		if err := database.Migrate(db, &model.User{}, &model.Chat{}, &model.ChatMessage{}); err != nil {
			_ = database.CloseGormDB(db)
			return nil, fmt.Errorf("migrate: %w", err)
		}
		c.onClose("postgres", func(context.Context) error { return database.CloseGormDB(db) })
		c.Logger.Info("bootstrap", "Using postgres store", nil)
		return unitofwork.NewRepositoryFactory(db), nil

	case "mongo", "":
		client, err := database.NewMongoClient(ctx, cfg.Database.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("unable to connect to mongo: %w", err)
		}
		db := client.Database(cfg.Database.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			c.Logger.Warn("bootstrap", "Failed to ensure mongo indexes", map[string]interface{}{"error": err.Error()})
		}
		c.onClose("mongo", client.Disconnect)
		c.Logger.Info("bootstrap", "Using mongo store", map[string]interface{}{"database": cfg.Database.MongoDB})
		return unitofwork.NewMongoRepositoryFactory(db), nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Database.Driver)
	}
}

// openDeliveryStore prefers redis so replay detection is shared across instances.
func (c *Container) openDeliveryStore(ctx context.Context, cfg *config.Config) contract.DeliveryRepository {
	if cfg.App.RedisURL != "" {
		rdb, err := redisstore.NewClient(ctx, cfg.App.RedisURL)
		if err == nil {
			c.onClose("redis", func(context.Context) error { return rdb.Close() })
			return redisstore.NewDeliveryRepository(rdb)
		}
		c.Logger.Warn("bootstrap", "Redis unavailable, using in-process replay guard", map[string]interface{}{"error": err.Error()})
	}
	return memory.NewDeliveryRepository()
}
