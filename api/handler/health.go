package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/devconnect/devconnect/api/transport"
	"github.com/devconnect/devconnect/internal/infrastructure/monitor"
	"github.com/devconnect/devconnect/pkg/httpcontext"
)

type HealthHandler struct {
	baseHandler
	monitor *monitor.Monitor
}

func NewHealthHandler(mon *monitor.Monitor, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// Check reports dependency health. Redis only degrades the service; the
// roster keeps serving from Postgres on cache misses.
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"services": map[string]interface{}{
			"postgres": status.Postgres,
			"redis":    status.Redis,
			"pending":  status.PendingSize,
		},
	}

	if !status.Postgres {
		h.respondEnvelope(ctx, http.StatusServiceUnavailable,
			transport.NewError("OFFLINE", "roster storage unreachable", payload))
		return
	}
	if !status.Redis {
		h.respondEnvelope(ctx, http.StatusOK, transport.Envelope{
			Status: "degraded",
			Code:   "CACHE_DOWN",
			Meta:   payload,
		})
		return
	}
	h.respondJSON(ctx, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"meta":   payload,
	})
}
