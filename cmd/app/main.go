package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/gateway/geo"
	"github.com/devconnect/devconnect/gateway/github"
	registryClient "github.com/devconnect/devconnect/gateway/registry"
	"github.com/devconnect/devconnect/internal/config"
	"github.com/devconnect/devconnect/internal/nav"
	"github.com/devconnect/devconnect/pkg/logger"
	boltRepo "github.com/devconnect/devconnect/repository/bolt"
	"github.com/devconnect/devconnect/usecase/profilepage"
	"github.com/devconnect/devconnect/usecase/roster"
	"github.com/devconnect/devconnect/usecase/signup"
)

const (
	alertInvalidUsername = "Invalid Username: please enter a valid GitHub username."
	alertLocationDenied  = "Location permission denied: registration cancelled."
	alertRosterFailed    = "Error: failed to load users."
	alertSessionFailed   = "Error: session storage unavailable."
)

type app struct {
	router  *nav.Router
	signUp  *signup.UseCase
	mapFlow *roster.UseCase
	viewer  *profilepage.Viewer
	timeout contextTimeout
	in      *bufio.Scanner
	out     io.Writer
}

type contextTimeout struct {
	request func() (context.Context, context.CancelFunc)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	sessions, closeSessions, err := boltRepo.OpenSessionStore(cfg.Session.Path)
	if err != nil {
		zapLogger.Fatal("failed to open session store", zap.Error(err))
	}
	defer closeSessions()

	in := bufio.NewScanner(os.Stdin)

	locator := geo.ConsentLocator{
		Ask:   func() bool { return confirm(in, os.Stdout, "Share this device's location?") },
		Inner: geo.NewIPLocator(cfg.Geo.Endpoint, cfg.Geo.Timeout),
	}

	profiles := github.NewClient(cfg.GitHub.BaseURL, cfg.Context.RequestTimeout, zapLogger)
	registry := registryClient.NewClient(cfg.Registry.BaseURL, cfg.Context.RequestTimeout, zapLogger)

	a := &app{
		router:  nav.NewRouter(sessions),
		signUp:  signup.New(profiles, registry, sessions, locator, zapLogger),
		mapFlow: roster.New(registry, sessions, zapLogger),
		viewer:  profilepage.NewViewer("", cfg.Context.RequestTimeout),
		timeout: contextTimeout{request: func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), cfg.Context.RequestTimeout)
		}},
		in:  in,
		out: os.Stdout,
	}

	if err := a.run(); err != nil {
		zapLogger.Fatal("app terminated", zap.Error(err))
	}
}

func (a *app) run() error {
	ctx, cancel := a.timeout.request()
	route, err := a.router.Bootstrap(ctx)
	cancel()
	if err != nil {
		// A broken flag store must not kill the app: treat the device
		// as unregistered and let sign-up rewrite the flag.
		fmt.Fprintln(a.out, alertSessionFailed)
		a.router.Replace(nav.RouteSignUp)
		route = nav.RouteSignUp
	}

	for {
		switch route {
		case nav.RouteSignUp:
			done, err := a.signUpScreen()
			if err != nil {
				return err
			}
			if !done {
				return nil // EOF on stdin
			}
			a.router.Replace(nav.RouteMap)
		case nav.RouteMap:
			next, err := a.mapScreen()
			if err != nil {
				return err
			}
			if next == "" {
				return nil
			}
		case nav.RouteProfile:
			a.profileScreen(a.router.Current().Login)
			a.router.Back()
		}
		route = a.router.Current().Route
	}
}

// signUpScreen prompts until a registration succeeds. It reports false
// when input runs out.
func (a *app) signUpScreen() (bool, error) {
	for {
		fmt.Fprintln(a.out, "Welcome to DevConnect. Enter your GitHub username:")
		if !a.in.Scan() {
			return false, a.in.Err()
		}

		ctx, cancel := a.timeout.request()
		record, err := a.signUp.Register(ctx, a.in.Text())
		cancel()
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrLocationDenied):
				fmt.Fprintln(a.out, alertLocationDenied)
			default:
				fmt.Fprintln(a.out, alertInvalidUsername)
			}
			continue
		}

		fmt.Fprintf(a.out, "Signed in as %s.\n", record.DisplayName())
		return true, nil
	}
}

// mapScreen loads the roster once, then serves overlay commands until
// the user navigates away. It returns the next route, or "" to quit.
func (a *app) mapScreen() (nav.Route, error) {
	ctx, cancel := a.timeout.request()
	records, err := a.mapFlow.Load(ctx)
	cancel()

	board := roster.NewBoard(roster.Markers(records))
	if err != nil {
		fmt.Fprintln(a.out, alertRosterFailed)
	} else {
		a.printMarkers(board.Markers())
	}

	for {
		fmt.Fprint(a.out, "map> ")
		if !a.in.Scan() {
			return "", a.in.Err()
		}
		fields := strings.Fields(a.in.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "open":
			if len(fields) < 2 || !board.Select(fields[1]) {
				fmt.Fprintln(a.out, "No marker with that login.")
				continue
			}
			a.printCard(board.Selected())
		case "close":
			board.Close()
		case "profile":
			login, ok := board.ViewProfile()
			if !ok {
				fmt.Fprintln(a.out, "Open a marker first.")
				continue
			}
			a.router.Push(nav.RouteProfile, login)
			return nav.RouteProfile, nil
		case "signout":
			ctx, cancel := a.timeout.request()
			err := a.mapFlow.SignOut(ctx)
			cancel()
			if err != nil {
				fmt.Fprintln(a.out, alertSessionFailed)
				continue
			}
			a.router.Replace(nav.RouteSignUp)
			return nav.RouteSignUp, nil
		case "quit":
			return "", nil
		default:
			fmt.Fprintln(a.out, "Commands: open <login>, close, profile, signout, quit")
		}
	}
}

func (a *app) profileScreen(login string) {
	fmt.Fprintf(a.out, "-- %s --\n", a.viewer.URL(login))

	ctx, cancel := a.timeout.request()
	defer cancel()

	page, err := a.viewer.Fetch(ctx, login)
	if err != nil {
		fmt.Fprintln(a.out, "Profile page unavailable.")
		return
	}
	a.out.Write(page)
	fmt.Fprintln(a.out)
}

func (a *app) printMarkers(markers []roster.Marker) {
	fmt.Fprintf(a.out, "%d developers on the map:\n", len(markers))
	for _, m := range markers {
		fmt.Fprintf(a.out, "  %-20s (%.4f, %.4f)\n", m.Login, m.Coordinate.Latitude, m.Coordinate.Longitude)
	}
}

func (a *app) printCard(m *roster.Marker) {
	if m == nil {
		return
	}
	fmt.Fprintf(a.out, "%s\n", m.Record.DisplayName())
	if m.Record.Bio != "" {
		fmt.Fprintln(a.out, m.Record.Bio)
	} else {
		fmt.Fprintln(a.out, "(no bio)")
	}
	if m.AvatarURL != "" {
		fmt.Fprintln(a.out, m.AvatarURL)
	}
}

func confirm(in *bufio.Scanner, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	if !in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(in.Text()))
	return answer == "y" || answer == "yes"
}
