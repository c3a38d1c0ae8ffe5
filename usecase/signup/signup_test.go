package signup_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/usecase/signup"
)

type profileSourceMock struct{ mock.Mock }

func (m *profileSourceMock) Lookup(ctx context.Context, login string) (*domain.UserRecord, error) {
	args := m.Called(ctx, login)
	if rec := args.Get(0); rec != nil {
		return rec.(*domain.UserRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

type registryMock struct{ mock.Mock }

func (m *registryMock) GetByLogin(ctx context.Context, login string) (*domain.UserRecord, error) {
	args := m.Called(ctx, login)
	if rec := args.Get(0); rec != nil {
		return rec.(*domain.UserRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *registryMock) Create(ctx context.Context, record *domain.UserRecord) error {
	return m.Called(ctx, record).Error(0)
}

type sessionStoreMock struct{ mock.Mock }

func (m *sessionStoreMock) Current(ctx context.Context) (*domain.Session, error) {
	args := m.Called(ctx)
	if s := args.Get(0); s != nil {
		return s.(*domain.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *sessionStoreMock) Save(ctx context.Context, session *domain.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *sessionStoreMock) Clear(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type locatorStub struct {
	coordinate domain.Coordinate
	err        error
	calls      int
}

func (l *locatorStub) Locate(ctx context.Context) (domain.Coordinate, error) {
	l.calls++
	return l.coordinate, l.err
}

func TestRegister_NewUser(t *testing.T) {
	profiles := new(profileSourceMock)
	registry := new(registryMock)
	sessions := new(sessionStoreMock)
	locator := &locatorStub{coordinate: domain.Coordinate{Latitude: 51.0447, Longitude: -114.0719}}

	profiles.On("Lookup", mock.Anything, "octocat").
		Return(&domain.UserRecord{Login: "octocat", Name: "The Octocat", AvatarURL: "https://example.com/a.png"}, nil)
	registry.On("GetByLogin", mock.Anything, "octocat").Return(nil, domain.ErrUserNotFound)
	registry.On("Create", mock.Anything, mock.MatchedBy(func(rec *domain.UserRecord) bool {
		return rec.Login == "octocat" && rec.Location != nil
	})).Return(nil)
	sessions.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
		return s.Login == "octocat"
	})).Return(nil)

	uc := signup.New(profiles, registry, sessions, locator, nil)
	record, err := uc.Register(context.Background(), "  octocat  ")

	require.NoError(t, err)
	require.NotNil(t, record.Location)
	assert.Equal(t, 51.0447, record.Location.Latitude)
	assert.Equal(t, "The Octocat", record.Name)
	assert.Equal(t, 1, locator.calls)
	profiles.AssertExpectations(t)
	registry.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestRegister_ReturningUser(t *testing.T) {
	profiles := new(profileSourceMock)
	registry := new(registryMock)
	sessions := new(sessionStoreMock)
	locator := &locatorStub{}

	existing := &domain.UserRecord{
		Login:    "octocat",
		Location: &domain.Coordinate{Latitude: 1, Longitude: 2},
	}
	profiles.On("Lookup", mock.Anything, "octocat").
		Return(&domain.UserRecord{Login: "octocat"}, nil)
	registry.On("GetByLogin", mock.Anything, "octocat").Return(existing, nil)
	sessions.On("Save", mock.Anything, mock.Anything).Return(nil)

	uc := signup.New(profiles, registry, sessions, locator, nil)
	record, err := uc.Register(context.Background(), "octocat")

	require.NoError(t, err)
	assert.Same(t, existing, record)
	// No duplicate record and no location re-capture for returning users.
	registry.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Zero(t, locator.calls)
}

func TestRegister_EmptyInput(t *testing.T) {
	profiles := new(profileSourceMock)
	registry := new(registryMock)
	sessions := new(sessionStoreMock)

	uc := signup.New(profiles, registry, sessions, &locatorStub{}, nil)
	_, err := uc.Register(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidUsername)
	// Whitespace input performs zero network calls and zero writes.
	profiles.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
	registry.AssertNotCalled(t, "GetByLogin", mock.Anything, mock.Anything)
	sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_UnknownLogin(t *testing.T) {
	profiles := new(profileSourceMock)
	registry := new(registryMock)
	sessions := new(sessionStoreMock)

	profiles.On("Lookup", mock.Anything, "nobody").Return(nil, domain.ErrInvalidUsername)

	uc := signup.New(profiles, registry, sessions, &locatorStub{}, nil)
	_, err := uc.Register(context.Background(), "nobody")

	assert.ErrorIs(t, err, domain.ErrInvalidUsername)
	registry.AssertNotCalled(t, "GetByLogin", mock.Anything, mock.Anything)
	sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_LocationDenied(t *testing.T) {
	profiles := new(profileSourceMock)
	registry := new(registryMock)
	sessions := new(sessionStoreMock)
	locator := &locatorStub{err: domain.ErrLocationDenied}

	profiles.On("Lookup", mock.Anything, "octocat").
		Return(&domain.UserRecord{Login: "octocat"}, nil)
	registry.On("GetByLogin", mock.Anything, "octocat").Return(nil, domain.ErrUserNotFound)

	uc := signup.New(profiles, registry, sessions, locator, nil)
	_, err := uc.Register(context.Background(), "octocat")

	assert.ErrorIs(t, err, domain.ErrLocationDenied)
	// Denial leaves the device unregistered: no record, no session flag.
	registry.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRegister_CreateFailureSkipsSessionFlag(t *testing.T) {
	profiles := new(profileSourceMock)
	registry := new(registryMock)
	sessions := new(sessionStoreMock)

	profiles.On("Lookup", mock.Anything, "octocat").
		Return(&domain.UserRecord{Login: "octocat"}, nil)
	registry.On("GetByLogin", mock.Anything, "octocat").Return(nil, domain.ErrUserNotFound)
	registry.On("Create", mock.Anything, mock.Anything).
		Return(domain.NewError(domain.ErrCodeInternal, "registry unreachable"))

	uc := signup.New(profiles, registry, sessions, &locatorStub{}, nil)
	_, err := uc.Register(context.Background(), "octocat")

	assert.Error(t, err)
	sessions.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
