// Package identity wraps the few Clerk Backend API calls the backend makes.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultAPIURL = "https://api.clerk.com"

var ErrNotConfigured = errors.New("identity client has no secret key")

// Client is the subset of the identity provider used by the user service.
type Client interface {
	UpdatePublicMetadata(ctx context.Context, userId string, metadata map[string]interface{}) error
}

type ClerkClient struct {
	secretKey string
	http      *resty.Client
}

var _ Client = &ClerkClient{}

func NewClerkClient(apiURL, secretKey string) *ClerkClient {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(apiURL, "/")).
		SetTimeout(10*time.Second).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(secretKey)

	return &ClerkClient{secretKey: secretKey, http: client}
}

func (c *ClerkClient) Enabled() bool {
	return c != nil && c.secretKey != ""
}

// UpdatePublicMetadata merges metadata into the user's public_metadata.
func (c *ClerkClient) UpdatePublicMetadata(ctx context.Context, userId string, metadata map[string]interface{}) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", userId).
		SetBody(map[string]interface{}{"public_metadata": metadata}).
		Patch("/v1/users/{id}/metadata")
	if err != nil {
		return fmt.Errorf("update metadata for %s: %w", userId, err)
	}
	if resp.IsError() {
		return fmt.Errorf("update metadata for %s: status %d: %s", userId, resp.StatusCode(), resp.String())
	}
	return nil
}
