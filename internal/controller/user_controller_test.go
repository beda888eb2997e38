package controller

import (
	"context"
	"encoding/base64"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/apperror"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/pkg/webhook"
	"ai-chat-be/internal/repository/memory"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUserService struct {
	calls  []string
	failOn string
}

func (s *stubUserService) CreateFromWebhook(ctx context.Context, req *dto.ClerkWebhookRequest) (string, error) {
	s.calls = append(s.calls, "create:"+req.Data.Id)
	if _, ok := req.Data.PrimaryEmail(); !ok {
		return "", apperror.BadRequest("Primary email not found")
	}
	if s.failOn == "create" {
		return "", apperror.Internal("Failed to create user", nil)
	}
	return "User created successfully", nil
}

func (s *stubUserService) UpdateFromWebhook(ctx context.Context, req *dto.ClerkWebhookRequest) (string, error) {
	s.calls = append(s.calls, "update:"+req.Data.Id)
	return "", apperror.NotFound("User not found")
}

func (s *stubUserService) DeleteFromWebhook(ctx context.Context, req *dto.ClerkWebhookRequest) (string, error) {
	s.calls = append(s.calls, "delete:"+req.Data.Id)
	return "User deleted successfully", nil
}

var webhookSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("webhook-signing-key"))

const createBody = `{"type":"user.created","data":{"id":"user_1","primary_email_address_id":"e1","email_addresses":[{"id":"e1","email_address":"a@example.com"}]}}`

func newUserApp(t *testing.T, svc *stubUserService, signed bool) (*fiber.App, *webhook.Verifier) {
	t.Helper()
	var verifier *webhook.Verifier
	if signed {
		v, err := webhook.NewVerifier(webhookSecret)
		require.NoError(t, err)
		verifier = v
	}
	guard := webhook.NewReplayGuard(memory.NewDeliveryRepository(), time.Hour)

	app := fiber.New(fiber.Config{ErrorHandler: serverutils.ErrorHandler(logger.NewNopLogger())})
	NewUserController(svc, verifier, guard, logger.NewNopLogger()).RegisterRoutes(app)
	return app, verifier
}

func postWebhook(t *testing.T, app *fiber.App, path, body string, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp.StatusCode, decodeBody(t, resp)
}

func signedHeaders(t *testing.T, v *webhook.Verifier, id, body string) map[string]string {
	t.Helper()
	now := time.Now()
	sig, err := v.Sign(id, now, []byte(body))
	require.NoError(t, err)
	return map[string]string{
		webhook.HeaderID:        id,
		webhook.HeaderTimestamp: formatUnix(now),
		webhook.HeaderSignature: sig,
	}
}

func TestUserController_Create(t *testing.T) {
	svc := &stubUserService{}
	app, _ := newUserApp(t, svc, false)

	status, body := postWebhook(t, app, "/users/create", createBody, nil)
	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "User created successfully", body["message"])
	assert.Nil(t, body["data"])
	assert.Nil(t, body["error"])
}

func TestUserController_Errors(t *testing.T) {
	svc := &stubUserService{}
	app, _ := newUserApp(t, svc, false)

	noEmail := `{"data":{"id":"user_1","primary_email_address_id":"x","email_addresses":[]}}`
	status, body := postWebhook(t, app, "/users/create", noEmail, nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Primary email not found", body["message"])

	status, body = postWebhook(t, app, "/users/update", createBody, nil)
	assert.Equal(t, 404, status)
	assert.Equal(t, "User not found", body["message"])

	status, body = postWebhook(t, app, "/users/delete", `{"data":{}}`, nil)
	assert.Equal(t, 400, status)
	assert.Equal(t, "Validation failed", body["message"])

	status, _ = postWebhook(t, app, "/users/delete", `{"data":{"id":"user_1"}}`, nil)
	assert.Equal(t, 200, status)
}

func TestUserController_Signature(t *testing.T) {
	svc := &stubUserService{}
	app, v := newUserApp(t, svc, true)

	status, body := postWebhook(t, app, "/users/create", createBody, nil)
	assert.Equal(t, 401, status)
	assert.Equal(t, "Invalid webhook signature", body["message"])

	headers := signedHeaders(t, v, "msg_1", createBody)
	tampered := strings.Replace(createBody, "user_1", "user_2", 1)
	status, _ = postWebhook(t, app, "/users/create", tampered, headers)
	assert.Equal(t, 401, status)
	assert.Empty(t, svc.calls)

	status, _ = postWebhook(t, app, "/users/create", createBody, headers)
	assert.Equal(t, 200, status)
	assert.Equal(t, []string{"create:user_1"}, svc.calls)
}

func TestUserController_ReplayIsSkipped(t *testing.T) {
	svc := &stubUserService{}
	app, v := newUserApp(t, svc, true)
	headers := signedHeaders(t, v, "msg_1", createBody)

	status, _ := postWebhook(t, app, "/users/create", createBody, headers)
	assert.Equal(t, 200, status)

	status, body := postWebhook(t, app, "/users/create", createBody, headers)
	assert.Equal(t, 200, status)
	assert.Equal(t, "Webhook already processed", body["message"])
	assert.Len(t, svc.calls, 1)
}

func TestUserController_FailedDeliveryCanRetry(t *testing.T) {
	svc := &stubUserService{failOn: "create"}
	app, v := newUserApp(t, svc, true)
	headers := signedHeaders(t, v, "msg_1", createBody)

	status, body := postWebhook(t, app, "/users/create", createBody, headers)
	assert.Equal(t, 500, status)
	assert.Equal(t, "Failed to create user", body["message"])

	svc.failOn = ""
	status, _ = postWebhook(t, app, "/users/create", createBody, headers)
	assert.Equal(t, 200, status)
	assert.Len(t, svc.calls, 2)
}
