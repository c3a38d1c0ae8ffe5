package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/devconnect/devconnect/domain"
)

// Client talks to the registry service over its json-server style API:
// GET /users, GET /users?login={id}, POST /users.
type Client struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
	logger  *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
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

// List fetches the full roster.
func (c *Client) List(ctx context.Context) ([]domain.UserRecord, error) {
	return c.query(ctx, c.baseURL+"/users")
}

// GetByLogin checks for an existing record. An empty result is
// domain.ErrUserNotFound.
func (c *Client) GetByLogin(ctx context.Context, login string) (*domain.UserRecord, error) {
	records, err := c.query(ctx, fmt.Sprintf("%s/users?login=%s", c.baseURL, url.QueryEscape(login)))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return &records[0], nil
}

// Create submits a new record. A duplicate login is domain.ErrUserExists.
func (c *Client) Create(ctx context.Context, record *domain.UserRecord) error {
	if record == nil || record.Login == "" {
		return domain.ErrInvalidPayload
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/users")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := c.http.DoDeadline(req, resp, deadline(ctx, c.timeout)); err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "registry create failed", err)
	}

	switch resp.StatusCode() {
	case fasthttp.StatusCreated, fasthttp.StatusOK:
		// The service echoes the stored record with its created_at.
		_ = json.Unmarshal(resp.Body(), record)
		return nil
	case fasthttp.StatusConflict:
		return domain.ErrUserExists
	default:
		return domain.NewError(domain.ErrCodeInternal,
			fmt.Sprintf("registry create returned status %d", resp.StatusCode()))
	}
}

func (c *Client) query(ctx context.Context, uri string) ([]domain.UserRecord, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := c.http.DoDeadline(req, resp, deadline(ctx, c.timeout)); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "registry unreachable", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, domain.NewError(domain.ErrCodeInternal,
			fmt.Sprintf("registry returned status %d", resp.StatusCode()))
	}

	var records []domain.UserRecord
	if err := json.Unmarshal(resp.Body(), &records); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "malformed roster payload", err)
	}
	return records, nil
}

func deadline(ctx context.Context, fallback time.Duration) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(fallback)
}
