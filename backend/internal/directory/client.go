// Package directory enriches results with display metadata from the user
// directory service. Lookups never fail the caller: any error degrades to an
// "Unknown" placeholder.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"socialmesh/backend/pkg/logger"
)

// Profile is the display metadata for a user
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
}

// Directory resolves display metadata for user ids
type Directory interface {
	Lookup(ctx context.Context, userID string) Profile
}

// Client is an HTTP client for the user directory service
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient creates a directory client. An empty baseURL disables lookups;
// every call then returns the placeholder.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger.Get(),
	}
}

// Lookup fetches the profile for userID, degrading to a placeholder on any
// failure.
func (c *Client) Lookup(ctx context.Context, userID string) Profile {
	if c.baseURL == "" {
		return Placeholder(userID)
	}

	url := fmt.Sprintf("%s/users/%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.logger.Debug("directory lookup failed", zap.String("user_id", userID), zap.Error(err))
		return Placeholder(userID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("directory lookup failed", zap.String("user_id", userID), zap.Error(err))
		return Placeholder(userID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("directory lookup returned non-OK status",
			zap.String("user_id", userID),
			zap.Int("status", resp.StatusCode),
		)
		return Placeholder(userID)
	}

	var profile Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		c.logger.Debug("directory lookup returned malformed body", zap.String("user_id", userID), zap.Error(err))
		return Placeholder(userID)
	}
	if profile.ID == "" {
		profile.ID = userID
	}
	if profile.DisplayName == "" {
		profile.DisplayName = "Unknown"
	}

	return profile
}

// Placeholder is the profile used when the directory cannot resolve a user
func Placeholder(userID string) Profile {
	return Profile{
		ID:          userID,
		DisplayName: "Unknown",
	}
}
