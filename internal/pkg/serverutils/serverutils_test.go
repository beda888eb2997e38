package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signHS256(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func newAuthApp(t *testing.T, cfg JwtConfig) *fiber.App {
	t.Helper()
	verifier, err := NewJwtVerifier(cfg)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", JwtMiddleware(verifier), func(ctx *fiber.Ctx) error {
		id, _ := UserIDFromCtx(ctx)
		return ctx.SendString(id)
	})
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))
	return out
}

func TestJwtMiddleware(t *testing.T) {
	app := newAuthApp(t, JwtConfig{Secret: testSecret})

	valid := signHS256(t, jwt.MapClaims{"sub": "user_1", "exp": time.Now().Add(time.Hour).Unix()})
	legacy := signHS256(t, jwt.MapClaims{"user_id": "user_2", "exp": time.Now().Add(time.Hour).Unix()})
	expired := signHS256(t, jwt.MapClaims{"sub": "user_1", "exp": time.Now().Add(-time.Hour).Unix()})
	noExp := signHS256(t, jwt.MapClaims{"sub": "user_1"})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{name: "valid sub", header: "Bearer " + valid, wantStatus: 200, wantBody: "user_1"},
		{name: "legacy user_id claim", header: "Bearer " + legacy, wantStatus: 200, wantBody: "user_2"},
		{name: "missing header", header: "", wantStatus: 401},
		{name: "wrong scheme", header: "Basic abc", wantStatus: 401},
		{name: "garbage", header: "Bearer not-a-jwt", wantStatus: 401},
		{name: "expired", header: "Bearer " + expired, wantStatus: 401},
		{name: "no expiry", header: "Bearer " + noExp, wantStatus: 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			if tt.wantStatus == 200 {
				b, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantBody, string(b))
				return
			}
			body := decode(t, resp.Body)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, UnauthorizedMessage, body["message"])
		})
	}
}

func TestJwtMiddleware_AuthorizedParties(t *testing.T) {
	app := newAuthApp(t, JwtConfig{Secret: testSecret, AuthorizedParties: []string{"https://app.example.com"}})

	ok := signHS256(t, jwt.MapClaims{"sub": "u1", "azp": "https://app.example.com", "exp": time.Now().Add(time.Hour).Unix()})
	bad := signHS256(t, jwt.MapClaims{"sub": "u1", "azp": "https://evil.example.com", "exp": time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+ok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestJwtVerifier_NoKeyRejects(t *testing.T) {
	v, err := NewJwtVerifier(JwtConfig{})
	require.NoError(t, err)

	_, err = v.Verify("anything")
	assert.ErrorIs(t, err, ErrNoVerifierKey)
}

func TestJwtVerifier_BadPEM(t *testing.T) {
	_, err := NewJwtVerifier(JwtConfig{PublicKeyPEM: "-----BEGIN PUBLIC KEY-----\nnope\n-----END PUBLIC KEY-----"})
	assert.Error(t, err)
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(logger.NewNopLogger()))

	type payload struct {
		Message string `validate:"required"`
	}

	app.Get("/notfound", func(ctx *fiber.Ctx) error { return apperror.NotFound("Chat not found") })
	app.Get("/internal", func(ctx *fiber.Ctx) error {
		return apperror.Internal("Failed to create new chat", errors.New("mongo down"))
	})
	app.Get("/unknown", func(ctx *fiber.Ctx) error { return errors.New("secret detail") })
	app.Get("/fiber", func(ctx *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "bad body") })
	app.Get("/validation", func(ctx *fiber.Ctx) error { return ValidateRequest(payload{}) })

	tests := []struct {
		path        string
		wantStatus  int
		wantMessage string
	}{
		{"/notfound", 404, "Chat not found"},
		{"/internal", 500, "Failed to create new chat"},
		{"/unknown", 500, "Internal server error"},
		{"/fiber", 400, "bad body"},
		{"/validation", 400, "Validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decode(t, resp.Body)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMessage, body["message"])
			assert.NotContains(t, body["error"], "mongo down")
			assert.NotContains(t, body["error"], "secret detail")
		})
	}
}

func TestErrorHandler_RequestUnauthorizedMatchesGate(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger.NewNopLogger())})
	app.Get("/owner", func(ctx *fiber.Ctx) error {
		return fmt.Errorf("chat c1: %w", ErrRequestUnauthorized)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/owner", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	body := decode(t, resp.Body)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, UnauthorizedMessage, body["message"])
	assert.Contains(t, body, "error")
	assert.Nil(t, body["error"])
}

func TestFormatPerformanceLine(t *testing.T) {
	line := FormatPerformanceLine("POST", "/chats", true, 201, 12346*time.Microsecond)
	assert.Equal(t, "MT: POST | PA: /chats | AU: Authenticated | ST: 201 | RT: 12.35 ms", line)

	line = FormatPerformanceLine("GET", "/health", false, 200, 0)
	assert.Equal(t, "MT: GET | PA: /health | AU: Unauthenticated | ST: 200 | RT: 0.00 ms", line)
}

func TestSuccessResponse(t *testing.T) {
	res := SuccessResponse[any]("User created successfully", nil)
	b, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"User created successfully","data":null,"error":null}`, string(b))
}
