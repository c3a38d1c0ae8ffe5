package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/devconnect/devconnect/api/transport"
	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/pkg/httpcontext"
	registryUC "github.com/devconnect/devconnect/usecase/registry"
)

type UsersHandler struct {
	baseHandler
	uc *registryUC.UseCase
}

func NewUsersHandler(uc *registryUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *UsersHandler {
	return &UsersHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// List serves GET /users. With a login query it answers the existence
// check: an array with zero or one element, json-server style.
func (h *UsersHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	login := string(ctx.QueryArgs().Peek("login"))
	if login != "" {
		record, err := h.uc.FindByLogin(stdCtx, login)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				h.respondJSON(ctx, http.StatusOK, []domain.UserRecord{})
				return
			}
			h.respondError(ctx, err)
			return
		}
		h.respondJSON(ctx, http.StatusOK, []domain.UserRecord{*record})
		return
	}

	records, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusOK, records)
}

// Create serves POST /users.
func (h *UsersHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.UserCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondEnvelope(ctx, http.StatusBadRequest,
			transport.NewError(string(domain.ErrCodeInvalid), "invalid payload", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	record, err := h.uc.Create(stdCtx, req.ToRecord())
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondJSON(ctx, http.StatusCreated, record)
}
