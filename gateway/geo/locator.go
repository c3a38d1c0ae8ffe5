package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/devconnect/devconnect/domain"
)

// DefaultEndpoint resolves the caller's public IP to a coordinate.
const DefaultEndpoint = "http://ip-api.com/json/?fields=status,message,lat,lon"

// Locator captures the device coordinate once, at registration time.
// There is no continuous subscription.
type Locator interface {
	Locate(ctx context.Context) (domain.Coordinate, error)
}

// IPLocator implements Locator using an ip-api.com style lookup.
type IPLocator struct {
	endpoint string
	http     *fasthttp.Client
	timeout  time.Duration
}

func NewIPLocator(endpoint string, timeout time.Duration) *IPLocator {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &IPLocator{
		endpoint: endpoint,
		http:     &fasthttp.Client{},
		timeout:  timeout,
	}
}

func (l *IPLocator) Locate(ctx context.Context) (domain.Coordinate, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(l.endpoint)
	req.Header.SetMethod(fasthttp.MethodGet)

	d, ok := ctx.Deadline()
	if !ok {
		d = time.Now().Add(l.timeout)
	}
	if err := l.http.DoDeadline(req, resp, d); err != nil {
		return domain.Coordinate{}, domain.WrapError(domain.ErrCodeInternal, "geo lookup failed", err)
	}

	var body struct {
		Status  string  `json:"status"`
		Message string  `json:"message"`
		Lat     float64 `json:"lat"`
		Lon     float64 `json:"lon"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return domain.Coordinate{}, domain.WrapError(domain.ErrCodeInternal, "geo lookup failed", err)
	}
	if strings.ToLower(body.Status) != "success" {
		return domain.Coordinate{}, domain.NewError(domain.ErrCodeInternal,
			fmt.Sprintf("geo lookup failed: %s", body.Message))
	}

	return domain.Coordinate{Latitude: body.Lat, Longitude: body.Lon}, nil
}

// ConsentLocator gates a Locator behind the device permission prompt.
// A nil or refusing Ask func aborts with domain.ErrLocationDenied
// before any lookup happens.
type ConsentLocator struct {
	Ask   func() bool
	Inner Locator
}

func (l ConsentLocator) Locate(ctx context.Context) (domain.Coordinate, error) {
	if l.Ask == nil || !l.Ask() {
		return domain.Coordinate{}, domain.ErrLocationDenied
	}
	if l.Inner == nil {
		return domain.Coordinate{}, domain.ErrLocationDenied
	}
	return l.Inner.Locate(ctx)
}
