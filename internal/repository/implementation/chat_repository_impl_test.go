package implementation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Chat{}, &model.ChatMessage{}, &model.User{}))
	return db
}

// steppedClock returns strictly increasing times so updated_at ordering is deterministic.
func steppedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newTestChatRepo(t *testing.T) *ChatRepositoryImpl {
	repo := NewChatRepository(newTestDB(t)).(*ChatRepositoryImpl)
	repo.now = steppedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	return repo
}

func newChat(userId, title string, contents ...string) *entity.Chat {
	chat := &entity.Chat{Title: title, UserId: userId}
	for i, c := range contents {
		role := entity.MessageRoleUser
		if i%2 == 1 {
			role = entity.MessageRoleAssistant
		}
		chat.AppendMessage(role, c, time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC))
	}
	return chat
}

func TestChatRepository_CreateAndFind(t *testing.T) {
	repo := newTestChatRepo(t)
	ctx := context.Background()

	chat := newChat("u1", "Recursion basics", "Explain recursion")
	require.NoError(t, repo.Create(ctx, chat))

	require.NotEmpty(t, chat.Id)
	require.NotEmpty(t, chat.Messages[0].Id)
	assert.False(t, chat.CreatedAt.IsZero())

	found, err := repo.FindOwned(ctx, chat.Id, "u1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Recursion basics", found.Title)
	require.Len(t, found.Messages, 1)
	assert.Equal(t, entity.MessageRoleUser, found.Messages[0].Role)
	assert.Equal(t, "Explain recursion", found.Messages[0].Content)
}

func TestChatRepository_FindOwned_ScopesByOwner(t *testing.T) {
	repo := newTestChatRepo(t)
	ctx := context.Background()

	chat := newChat("u1", "Mine", "hello")
	require.NoError(t, repo.Create(ctx, chat))

	found, err := repo.FindOwned(ctx, chat.Id, "u2")
	require.NoError(t, err)
	assert.Nil(t, found)

	found, err = repo.FindOwned(ctx, "not-a-uuid", "u1")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestChatRepository_SaveAppendsAndKeepsOrder(t *testing.T) {
	repo := newTestChatRepo(t)
	ctx := context.Background()

	chat := newChat("u1", "Chat", "first")
	require.NoError(t, repo.Create(ctx, chat))
	createdUpdatedAt := chat.UpdatedAt

	chat.AppendMessage(entity.MessageRoleAssistant, "reply", time.Now())
	chat.AppendMessage(entity.MessageRoleUser, "more detail", time.Now())
	require.NoError(t, repo.Save(ctx, chat))
	assert.True(t, chat.UpdatedAt.After(createdUpdatedAt))

	found, err := repo.FindOwned(ctx, chat.Id, "u1")
	require.NoError(t, err)
	require.Len(t, found.Messages, 3)
	assert.Equal(t, []string{"first", "reply", "more detail"}, []string{
		found.Messages[0].Content, found.Messages[1].Content, found.Messages[2].Content,
	})
	assert.Equal(t, chat.Messages[0].Id, found.Messages[0].Id)
}

func TestChatRepository_RejectsUnknownRole(t *testing.T) {
	repo := newTestChatRepo(t)
	ctx := context.Background()

	chat := newChat("u1", "Chat", "first")
	require.NoError(t, repo.Create(ctx, chat))

	chat.Title = "Renamed"
	chat.AppendMessage("system", "be terse", time.Now())
	assert.ErrorIs(t, repo.Save(ctx, chat), entity.ErrInvalidMessageRole)

	found, err := repo.FindOwned(ctx, chat.Id, "u1")
	require.NoError(t, err)
	assert.Len(t, found.Messages, 1)
	assert.Equal(t, "Chat", found.Title)

	bad := &entity.Chat{Title: "Bad", UserId: "u1"}
	bad.AppendMessage("", "x", time.Now())
	assert.ErrorIs(t, repo.Create(ctx, bad), entity.ErrInvalidMessageRole)
	assert.Empty(t, bad.Id)
}

func TestChatRepository_SaveUnknownChat(t *testing.T) {
	repo := newTestChatRepo(t)

	chat := newChat("u1", "ghost", "hi")
	chat.Id = uuid.NewString()
	assert.ErrorIs(t, repo.Save(context.Background(), chat), gorm.ErrRecordNotFound)
}

func TestChatRepository_ListSummaries(t *testing.T) {
	repo := newTestChatRepo(t)
	ctx := context.Background()

	older := newChat("u1", "older", "a")
	newer := newChat("u1", "newer", "b")
	foreign := newChat("u2", "foreign", "c")
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))
	require.NoError(t, repo.Create(ctx, foreign))

	// touching older moves it to the top
	older.AppendMessage(entity.MessageRoleAssistant, "reply", time.Now())
	require.NoError(t, repo.Save(ctx, older))

	summaries, err := repo.ListSummaries(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "older", summaries[0].Title)
	assert.Equal(t, "newer", summaries[1].Title)

	for _, s := range summaries {
		assert.NotEqual(t, foreign.Id, s.Id)
	}
}

func TestChatRepository_DeleteOwned(t *testing.T) {
	repo := newTestChatRepo(t)
	ctx := context.Background()

	chat := newChat("u1", "to delete", "x", "y")
	require.NoError(t, repo.Create(ctx, chat))

	n, err := repo.DeleteOwned(ctx, chat.Id, "u2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.DeleteOwned(ctx, chat.Id, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteOwned(ctx, chat.Id, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	var remaining int64
	require.NoError(t, repo.db.Model(&model.ChatMessage{}).Count(&remaining).Error)
	assert.Equal(t, int64(0), remaining)
}

func TestChatRepository_DeleteAllByUser(t *testing.T) {
	repo := newTestChatRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newChat("u1", "a", "1")))
	require.NoError(t, repo.Create(ctx, newChat("u1", "b", "2")))
	keep := newChat("u2", "c", "3")
	require.NoError(t, repo.Create(ctx, keep))

	n, err := repo.DeleteAllByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	left, err := repo.ListSummaries(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
