package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternal_WrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("Failed to create new chat", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to create new chat: connection reset", err.Error())
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestAs_ThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handle turn: %w", NotFound("Chat not found"))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, "Chat not found", appErr.Message)
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsNotFound(errors.New("plain")))
}
