// Package issuerclient calls the host's context token issuance endpoint over
// HTTP. It is the ContextIssuer used by launchers running outside the host
// process.
package issuerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/ericfisherdev/careerhub/internal/domain/model"
	"github.com/ericfisherdev/careerhub/internal/domain/port/driven"
)

// TokenPath is the issuance endpoint relative to the host base URL.
const TokenPath = "/api/v1/context/token"

const (
	defaultMaxRetries      = 3
	defaultInitialInterval = 250 * time.Millisecond
	maxErrorBody           = 4 << 10
)

// Compile-time interface satisfaction check.
var _ driven.ContextIssuer = (*Client)(nil)

// Client requests context tokens from a running host.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	maxRetries      uint64
	initialInterval time.Duration
	logger          *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithInitialInterval sets the first retry delay. Later delays grow
// exponentially.
func WithInitialInterval(d time.Duration) Option {
	return func(c *Client) { c.initialInterval = d }
}

// New creates a Client for the host at baseURL.
func New(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:         strings.TrimSuffix(baseURL, "/"),
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		maxRetries:      defaultMaxRetries,
		initialInterval: defaultInitialInterval,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type issueRequest struct {
	ApplicationID string `json:"applicationId"`
}

type issueResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// IssueContextToken posts applicationID to the issuance endpoint, presenting
// caller's session token. Transport errors and 5xx responses are retried;
// 401 maps to driven.ErrUnauthenticated and 404 to driven.ErrApplicationNotFound.
func (c *Client) IssueContextToken(ctx context.Context, caller model.Identity, applicationID string) (model.IssuedToken, error) {
	if caller.SessionToken == "" {
		return model.IssuedToken{}, driven.ErrUnauthenticated
	}

	body, err := json.Marshal(issueRequest{ApplicationID: applicationID})
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("marshal issue request: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.initialInterval
	retrying := backoff.WithContext(backoff.WithMaxRetries(policy, c.maxRetries), ctx)

	operation := func() (model.IssuedToken, error) {
		return c.issueOnce(ctx, caller.SessionToken, body)
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("context token request failed, retrying",
			"application_id", applicationID, "retry_in", wait, "error", err)
	}

	issued, err := backoff.RetryNotifyWithData(operation, retrying, notify)
	if err != nil {
		return model.IssuedToken{}, fmt.Errorf("request context token for %s: %w", applicationID, err)
	}
	return issued, nil
}

func (c *Client) issueOnce(ctx context.Context, sessionToken string, body []byte) (model.IssuedToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+TokenPath, bytes.NewReader(body))
	if err != nil {
		return model.IssuedToken{}, backoff.Permanent(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+sessionToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return model.IssuedToken{}, backoff.Permanent(ctx.Err())
		}
		return model.IssuedToken{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var out issueResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return model.IssuedToken{}, backoff.Permanent(fmt.Errorf("decode issue response: %w", err))
		}
		if out.Token == "" {
			return model.IssuedToken{}, backoff.Permanent(errors.New("issue response carried no token"))
		}
		return model.IssuedToken{Token: out.Token, UserID: out.UserID, ExpiresAt: out.ExpiresAt}, nil

	case resp.StatusCode == http.StatusUnauthorized:
		return model.IssuedToken{}, backoff.Permanent(driven.ErrUnauthenticated)

	case resp.StatusCode == http.StatusNotFound:
		return model.IssuedToken{}, backoff.Permanent(driven.ErrApplicationNotFound)

	case resp.StatusCode >= 500:
		return model.IssuedToken{}, fmt.Errorf("issuer returned %d: %s", resp.StatusCode, readError(resp.Body))

	default:
		return model.IssuedToken{}, backoff.Permanent(
			fmt.Errorf("issuer returned %d: %s", resp.StatusCode, readError(resp.Body)))
	}
}

func readError(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return "unreadable body"
	}

	var body errorResponse
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
