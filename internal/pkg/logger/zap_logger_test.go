package logger

import (
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_ModuleAndDetails(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Info("chat", "chat created", map[string]interface{}{"chat_id": "c1"})
	l.Warn("http", "slow", nil)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "chat created", entries[0].Message)
	assert.Equal(t, "chat", entries[0].ContextMap()["module"])
	assert.Equal(t, map[string]interface{}{"chat_id": "c1"}, entries[0].ContextMap()["details"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestZapLogger_ErrorAttachesError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewFromZap(zap.New(core))

	l.Error("chat", "save failed", map[string]interface{}{"error": errors.New("boom")})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
}

func TestWatermillAdapter_MergesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	adapter := NewWatermillAdapter(NewFromZap(zap.New(core)), "pubsub")

	adapter.With(watermill.LogFields{"topic": "user.deleted"}).Info("subscribed", watermill.LogFields{"n": 1})

	entries := logs.All()
	require.Len(t, entries, 1)
	details := entries[0].ContextMap()["details"].(map[string]interface{})
	assert.Equal(t, "user.deleted", details["topic"])
	assert.Equal(t, "pubsub", entries[0].ContextMap()["module"])
}
