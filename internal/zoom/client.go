package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/config"
)

const maxErrorBodyBytes = 2048

// UpstreamAuthError reports a failed Server-to-Server OAuth exchange.
type UpstreamAuthError struct {
	Status int
	Body   string
}

func (e *UpstreamAuthError) Error() string {
	return fmt.Sprintf("oauth token exchange failed with status %d: %s", e.Status, e.Body)
}

// UpstreamTokenError reports a failed ZAK fetch for a specific user.
type UpstreamTokenError struct {
	Status int
	Body   string
}

func (e *UpstreamTokenError) Error() string {
	return fmt.Sprintf("zak fetch failed with status %d: %s", e.Status, e.Body)
}

// Client talks to the Zoom OAuth and REST endpoints used for host
// elevation. It owns the access-token caching tiers.
type Client struct {
	accountsURL  string
	apiURL       string
	clientID     string
	clientSecret string
	accountID    string
	local        *TokenCache
	shared       SharedTokenCache
	httpClient   *http.Client
	logger       *zap.Logger
}

// NewClient builds a Zoom API client. shared may be nil when no Redis
// tier is configured.
func NewClient(cfg config.ZoomConfig, local *TokenCache, shared SharedTokenCache, logger *zap.Logger) *Client {
	return &Client{
		accountsURL:  strings.TrimRight(cfg.AccountsURL, "/"),
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		accountID:    cfg.AccountID,
		local:        local,
		shared:       shared,
		httpClient:   &http.Client{Timeout: cfg.UpstreamTimeout()},
		logger:       logger,
	}
}

type oauthResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type zakResponse struct {
	Token string `json:"token"`
}

// AccessToken returns a cached Server-to-Server token or exchanges
// credentials for a fresh one. Concurrent refreshes are benign: each
// caller gets a valid token and the cache keeps whichever was written
// last.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	if token, ok := c.local.Get(); ok {
		return token, nil
	}

	if c.shared != nil {
		token, expiresAt, err := c.shared.Get(ctx)
		if err != nil {
			c.logger.Warn("shared token cache read failed", zap.Error(err))
		} else if token != "" {
			c.local.Put(token, expiresAt)
			return token, nil
		}
	}

	token, expiresAt, err := c.exchangeCredentials(ctx)
	if err != nil {
		return "", err
	}

	c.local.Put(token, expiresAt)
	if c.shared != nil {
		if err := c.shared.Put(ctx, token, expiresAt); err != nil {
			c.logger.Warn("shared token cache write failed", zap.Error(err))
		}
	}
	return token, nil
}

func (c *Client) exchangeCredentials(ctx context.Context) (string, time.Time, error) {
	endpoint := fmt.Sprintf("%s/oauth/token?grant_type=account_credentials&account_id=%s",
		c.accountsURL, url.QueryEscape(c.accountID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("build oauth request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("oauth token exchange: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", time.Time{}, &UpstreamAuthError{Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	var payload oauthResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", time.Time{}, fmt.Errorf("decode oauth response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", time.Time{}, &UpstreamAuthError{Status: resp.StatusCode, Body: "empty access_token"}
	}

	expiresAt := time.Now().Add(time.Duration(payload.ExpiresIn) * time.Second)
	return payload.AccessToken, expiresAt, nil
}

// UserZAK fetches the Zoom Access Key that lets the given user start
// meetings as host. An empty token with a success status is returned
// as-is; the caller decides what an empty grant means.
func (c *Client) UserZAK(ctx context.Context, email string) (string, error) {
	accessToken, err := c.AccessToken(ctx)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v2/users/%s/token?type=zak", c.apiURL, url.PathEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build zak request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("zak fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamTokenError{Status: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	var payload zakResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode zak response: %w", err)
	}
	return payload.Token, nil
}

func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(body))
}
