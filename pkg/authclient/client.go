// Package authclient calls the auth service over HTTP.
package authclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	authmw "github.com/Skotchmaster/pokedex/pkg/middleware/auth"
)

// ErrRejected means the auth service answered 401 for the presented token.
var ErrRejected = errors.New("auth service rejected token")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(authServiceURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(authServiceURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// RequestNewAccessToken exchanges a refresh token for a fresh access token.
func (c *Client) RequestNewAccessToken(ctx context.Context, refreshToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/requestNewAccessToken", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set(authmw.HeaderRefreshToken, refreshToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", ErrRejected
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("refresh failed with status: %d", resp.StatusCode)
	}

	access := resp.Header.Get(authmw.HeaderAccessToken)
	if access == "" {
		return "", fmt.Errorf("refresh response without %s header", authmw.HeaderAccessToken)
	}
	return access, nil
}

// Ready reports whether the auth service answers its readiness check.
func (c *Client) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health/ready", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth not ready: status %d", resp.StatusCode)
	}
	return nil
}
