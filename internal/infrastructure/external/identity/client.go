// Package identity implements the role.Provider interface against the
// hosted identity/organization provider's REST API. The provider is
// only trusted for identity and raw role strings; role meaning is
// derived locally by the resolver.
package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/clematis-labs/justify-server/internal/domain/role"
	"go.uber.org/zap"
)

// Config holds identity provider connection configuration
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the identity provider's backend API
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new identity provider client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type membershipResponse struct {
	Role string `json:"role"`
}

type profileResponse struct {
	DisplayName string            `json:"display_name"`
	Email       string            `json:"email"`
	Metadata    map[string]string `json:"metadata"`
}

// Membership returns the user's membership role within the organization.
// A 404 means no membership and returns nil without error.
func (c *Client) Membership(ctx context.Context, userID, orgID string) (*role.Membership, error) {
	path := fmt.Sprintf("/v1/organizations/%s/memberships/%s", orgID, userID)

	var body membershipResponse
	found, err := c.get(ctx, path, &body)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	return &role.Membership{Role: body.Role}, nil
}

// Profile returns the user's own profile. A 404 yields an empty profile
// so the resolver's metadata fallback fails closed rather than erroring.
func (c *Client) Profile(ctx context.Context, userID string) (*role.Profile, error) {
	path := fmt.Sprintf("/v1/users/%s", userID)

	var body profileResponse
	found, err := c.get(ctx, path, &body)
	if err != nil {
		return nil, err
	}
	if !found {
		return &role.Profile{}, nil
	}

	return &role.Profile{
		DisplayName: body.DisplayName,
		Email:       body.Email,
		Metadata:    body.Metadata,
	}, nil
}

// get performs an authenticated GET, decoding the JSON body into out.
// Returns found=false on 404.
func (c *Client) get(ctx context.Context, path string, out interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Identity provider request failed",
			zap.String("path", path),
			zap.Error(err))
		return false, fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("Identity provider returned error",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return false, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode identity provider response: %w", err)
	}

	return true, nil
}

// Verify interface compliance
var _ role.Provider = (*Client)(nil)
