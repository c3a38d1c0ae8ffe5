package github

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/devconnect/devconnect/domain"
)

// DefaultBaseURL is the public GitHub REST endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client resolves public GitHub profiles. Every failure mode — transport
// error, non-200 status, or a response without a resolvable login — is
// reported uniformly as domain.ErrInvalidUsername.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    &fasthttp.Client{},
		timeout: timeout,
		logger:  logger,
	}
}

// Lookup fetches the profile for a login. The returned record carries no
// location; coordinates are captured separately at registration time.
func (c *Client) Lookup(ctx context.Context, login string) (*domain.UserRecord, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/users/%s", c.baseURL, login))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/vnd.github+json")

	if err := c.http.DoDeadline(req, resp, deadline(ctx, c.timeout)); err != nil {
		c.logger.Warn("github lookup failed", zap.String("login", login), zap.Error(err))
		return nil, domain.ErrInvalidUsername
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Debug("github lookup rejected",
			zap.String("login", login),
			zap.Int("status", resp.StatusCode()))
		return nil, domain.ErrInvalidUsername
	}

	var body struct {
		Login     string `json:"login"`
		Name      string `json:"name"`
		Bio       string `json:"bio"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil || body.Login == "" {
		return nil, domain.ErrInvalidUsername
	}

	return &domain.UserRecord{
		Login:     body.Login,
		Name:      body.Name,
		Bio:       body.Bio,
		AvatarURL: body.AvatarURL,
	}, nil
}

func deadline(ctx context.Context, fallback time.Duration) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(fallback)
}
