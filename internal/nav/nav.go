package nav

import (
	"context"
	"errors"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/repository"
)

// Route names one of the three screens.
type Route string

const (
	RouteSignUp  Route = "signup"
	RouteMap     Route = "map"
	RouteProfile Route = "profile"
)

// Entry is a stack frame; Login is set only for the profile route.
type Entry struct {
	Route Route
	Login string
}

// Router decides the initial screen from the session flag and tracks
// the navigation stack afterwards.
type Router struct {
	sessions repository.SessionStore
	stack    []Entry
}

func NewRouter(sessions repository.SessionStore) *Router {
	return &Router{sessions: sessions}
}

// Bootstrap reads the session flag exactly once and seeds the stack:
// an active session lands on the map, anything else on sign-up. Nothing
// renders until this resolves.
func (r *Router) Bootstrap(ctx context.Context) (Route, error) {
	session, err := r.sessions.Current(ctx)
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return "", err
	}

	route := RouteSignUp
	if session.Active() {
		route = RouteMap
	}
	r.stack = []Entry{{Route: route}}
	return route, nil
}

// Current returns the top of the stack.
func (r *Router) Current() Entry {
	if len(r.stack) == 0 {
		return Entry{}
	}
	return r.stack[len(r.stack)-1]
}

// Replace resets the stack root. Sign-out uses this: the map history is
// gone for good.
func (r *Router) Replace(route Route) {
	r.stack = []Entry{{Route: route}}
}

// Push stacks the profile screen with its login parameter.
func (r *Router) Push(route Route, login string) {
	r.stack = append(r.stack, Entry{Route: route, Login: login})
}

// Back pops the top entry and reports whether anything remains beneath
// it. The root entry never pops.
func (r *Router) Back() bool {
	if len(r.stack) <= 1 {
		return false
	}
	r.stack = r.stack[:len(r.stack)-1]
	return true
}
