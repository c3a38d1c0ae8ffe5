package profilepage

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/devconnect/devconnect/domain"
)

// DefaultBaseURL is the public GitHub web front.
const DefaultBaseURL = "https://github.com"

// Viewer renders a public profile page as an opaque passthrough. No
// extraction, no caching.
type Viewer struct {
	baseURL string
	http    *fasthttp.Client
	timeout time.Duration
}

func NewViewer(baseURL string, timeout time.Duration) *Viewer {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Viewer{
		baseURL: baseURL,
		http:    &fasthttp.Client{},
		timeout: timeout,
	}
}

// URL returns the profile page address for a login.
func (v *Viewer) URL(login string) string {
	return fmt.Sprintf("%s/%s", v.baseURL, login)
}

// Fetch retrieves the raw profile page body.
func (v *Viewer) Fetch(ctx context.Context, login string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(v.URL(login))
	req.Header.SetMethod(fasthttp.MethodGet)

	d, ok := ctx.Deadline()
	if !ok {
		d = time.Now().Add(v.timeout)
	}
	if err := v.http.DoDeadline(req, resp, d); err != nil {
		return nil, domain.WrapError(domain.ErrCodeInternal, "profile page unreachable", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, domain.NewError(domain.ErrCodeInternal,
			fmt.Sprintf("profile page returned status %d", resp.StatusCode()))
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
