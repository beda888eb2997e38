package nats

import (
	"context"
	"os"
	"testing"

	"ai-chat-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.chat.created", Subject(events.ChatCreated))
}

func TestPublisher_Live(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("Skipping NATS test: NATS_URL not set")
	}

	p, err := NewPublisher(context.Background(), url)
	require.NoError(t, err)
	defer p.Close()

	err = p.Publish(context.Background(), events.New(events.ChatCreated, map[string]interface{}{"chat_id": "c1"}))
	assert.NoError(t, err)
}
