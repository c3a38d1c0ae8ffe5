package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/devconnect/devconnect/api/handler"
	"github.com/devconnect/devconnect/api/transport"
	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/repository"
	registryUC "github.com/devconnect/devconnect/usecase/registry"
)

type userRepoMock struct{ mock.Mock }

func (m *userRepoMock) GetByLogin(ctx context.Context, login string) (*domain.UserRecord, error) {
	args := m.Called(ctx, login)
	if rec := args.Get(0); rec != nil {
		return rec.(*domain.UserRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) List(ctx context.Context) ([]domain.UserRecord, error) {
	args := m.Called(ctx)
	if recs := args.Get(0); recs != nil {
		return recs.([]domain.UserRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *userRepoMock) Create(ctx context.Context, record *domain.UserRecord) error {
	return m.Called(ctx, record).Error(0)
}

func newUsersHandler(users repository.UserRepository) *handler.UsersHandler {
	return handler.NewUsersHandler(registryUC.New(users, nil, nil), nil, nil)
}

func getRequest(uri string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI(uri)
	ctx.Request.Header.SetMethod(fasthttp.MethodGet)
	return ctx
}

func postRequest(uri, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI(uri)
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.Header.SetContentType("application/json")
	ctx.Request.SetBodyString(body)
	return ctx
}

func TestList(t *testing.T) {
	users := new(userRepoMock)
	users.On("List", mock.Anything).Return([]domain.UserRecord{
		{Login: "alice", Location: &domain.Coordinate{Latitude: 1, Longitude: 2}},
		{Login: "bob"},
	}, nil)

	ctx := getRequest("/users")
	newUsersHandler(users).List(ctx)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var records []domain.UserRecord
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "alice", records[0].Login)
}

func TestList_LoginFilter(t *testing.T) {
	users := new(userRepoMock)
	users.On("GetByLogin", mock.Anything, "alice").
		Return(&domain.UserRecord{Login: "alice"}, nil)

	ctx := getRequest("/users?login=alice")
	newUsersHandler(users).List(ctx)

	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	var records []domain.UserRecord
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "alice", records[0].Login)
}

func TestList_LoginMiss(t *testing.T) {
	users := new(userRepoMock)
	users.On("GetByLogin", mock.Anything, "ghost").Return(nil, domain.ErrUserNotFound)

	ctx := getRequest("/users?login=ghost")
	newUsersHandler(users).List(ctx)

	// An unknown login is not an error on the wire: the existence check
	// answers with an empty array.
	assert.Equal(t, http.StatusOK, ctx.Response.StatusCode())
	assert.JSONEq(t, "[]", string(ctx.Response.Body()))
}

func TestCreate(t *testing.T) {
	users := new(userRepoMock)
	users.On("Create", mock.Anything, mock.MatchedBy(func(rec *domain.UserRecord) bool {
		return rec.Login == "carol" && rec.Location != nil
	})).Return(nil)

	ctx := postRequest("/users",
		`{"login":"carol","location":{"latitude":3,"longitude":4}}`)
	newUsersHandler(users).Create(ctx)

	assert.Equal(t, http.StatusCreated, ctx.Response.StatusCode())
	var record domain.UserRecord
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &record))
	assert.Equal(t, "carol", record.Login)
	users.AssertExpectations(t)
}

func TestCreate_Duplicate(t *testing.T) {
	users := new(userRepoMock)
	users.On("Create", mock.Anything, mock.Anything).Return(domain.ErrUserExists)

	ctx := postRequest("/users", `{"login":"alice"}`)
	newUsersHandler(users).Create(ctx)

	assert.Equal(t, http.StatusConflict, ctx.Response.StatusCode())
	var envelope transport.Envelope
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &envelope))
	assert.Equal(t, "error", envelope.Status)
	assert.Equal(t, string(domain.ErrCodeConflict), envelope.Code)
}

func TestCreate_MalformedBody(t *testing.T) {
	users := new(userRepoMock)

	ctx := postRequest("/users", `{"login":`)
	newUsersHandler(users).Create(ctx)

	assert.Equal(t, http.StatusBadRequest, ctx.Response.StatusCode())
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
