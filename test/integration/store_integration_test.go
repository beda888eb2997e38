package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/repository/mongodb"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEnv() {
	// tests run in the package dir
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
}

func TestMongoStore(t *testing.T) {
	loadEnv()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("Skipping integration test: MONGO_URI not set")
	}

	ctx := context.Background()
	client, err := database.NewMongoClient(ctx, uri)
	require.NoError(t, err)
	defer client.Disconnect(ctx)

	db := client.Database("ai_chat_it_" + uuid.NewString()[:8])
	defer db.Drop(ctx)
	require.NoError(t, mongodb.EnsureIndexes(ctx, db))

	exerciseStore(t, unitofwork.NewMongoRepositoryFactory(db))
}

func TestPostgresStore(t *testing.T) {
	loadEnv()
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	defer database.CloseGormDB(db)
	require.NoError(t, database.Migrate(db, &model.User{}, &model.Chat{}, &model.ChatMessage{}))

	exerciseStore(t, unitofwork.NewRepositoryFactory(db))
}

func exerciseStore(t *testing.T, factory unitofwork.RepositoryFactory) {
	ctx := context.Background()
	uow := factory.NewUnitOfWork(ctx)
	chats := uow.ChatRepository()
	users := uow.UserRepository()

	owner := "it_" + uuid.NewString()
	defer chats.DeleteAllByUser(ctx, owner)

	t.Run("Chat round trip", func(t *testing.T) {
		now := time.Now().UTC().Truncate(time.Millisecond)
		chat := &entity.Chat{Title: "New conversation", UserId: owner}
		chat.AppendMessage(entity.MessageRoleUser, "hello", now)
		require.NoError(t, chats.Create(ctx, chat))
		require.NotEmpty(t, chat.Id)
		require.NotEmpty(t, chat.Messages[0].Id)

		chat.Title = "Greetings"
		chat.AppendMessage(entity.MessageRoleAssistant, "hi there", now)
		require.NoError(t, chats.Save(ctx, chat))

		found, err := chats.FindOwned(ctx, chat.Id, owner)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Greetings", found.Title)
		require.Len(t, found.Messages, 2)
		assert.Equal(t, entity.MessageRoleAssistant, found.Messages[1].Role)

		other, err := chats.FindOwned(ctx, chat.Id, "someone_else")
		require.NoError(t, err)
		assert.Nil(t, other)

		malformed, err := chats.FindOwned(ctx, "not-an-id", owner)
		require.NoError(t, err)
		assert.Nil(t, malformed)
	})

	t.Run("List newest first and delete", func(t *testing.T) {
		second := &entity.Chat{Title: "Second", UserId: owner}
		second.AppendMessage(entity.MessageRoleUser, "again", time.Now())
		require.NoError(t, chats.Create(ctx, second))

		list, err := chats.ListSummaries(ctx, owner)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.Id, list[0].Id)

		n, err := chats.DeleteOwned(ctx, second.Id, "someone_else")
		require.NoError(t, err)
		assert.Zero(t, n)

		n, err = chats.DeleteOwned(ctx, second.Id, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = chats.DeleteAllByUser(ctx, owner)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("User mirror", func(t *testing.T) {
		clerkId := "user_" + uuid.NewString()
		user := &entity.User{ClerkId: clerkId, Email: "it@example.com"}
		require.NoError(t, users.Create(ctx, user))
		require.NotEmpty(t, user.Id)

		user.Email = "changed@example.com"
		require.NoError(t, users.Update(ctx, user))

		found, err := users.FindByClerkId(ctx, clerkId)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "changed@example.com", found.Email)

		n, err := users.DeleteByClerkId(ctx, clerkId)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}
