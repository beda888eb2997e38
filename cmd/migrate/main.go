package main

import (
	"context"
	"log"
	"time"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/mongodb"
	"ai-chat-be/pkg/database"
)

func main() {
	// 1. Load Environment Variables
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.Connection == "" {
			log.Fatal("Error: DB_CONNECTION_STRING is not set")
		}

		// 2. Connect to Database using existing GORM helpers
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, true)
		if err != nil {
			log.Fatal("Error: Failed to connect to database:", err)
		}
		defer database.CloseGormDB(db)

		log.Println("Running AutoMigrate for chats, chat_messages and users...")
		if err := database.Migrate(db, &model.User{}, &model.Chat{}, &model.ChatMessage{}); err != nil {
			log.Fatalf("Error: AutoMigrate failed: %v", err)
		}

	case "mongo", "":
		client, err := database.NewMongoClient(ctx, cfg.Database.MongoURI)
		if err != nil {
			log.Fatal("Error: Failed to connect to mongo:", err)
		}
		defer client.Disconnect(context.Background())

		log.Printf("Ensuring indexes on %s...", cfg.Database.MongoDB)
		if err := mongodb.EnsureIndexes(ctx, client.Database(cfg.Database.MongoDB)); err != nil {
			log.Fatalf("Error: Index creation failed: %v", err)
		}

	default:
		log.Fatalf("Error: unknown STORE_DRIVER %q", cfg.Database.Driver)
	}

	log.Println("Success: store migration completed")
}
