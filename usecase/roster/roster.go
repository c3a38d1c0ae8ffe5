package roster

import (
	"context"

	"go.uber.org/zap"

	"github.com/devconnect/devconnect/domain"
	"github.com/devconnect/devconnect/repository"
)

// Registry is the slice of the registry client the map flow needs.
type Registry interface {
	List(ctx context.Context) ([]domain.UserRecord, error)
}

// Marker is one renderable map pin.
type Marker struct {
	Login      string
	Coordinate domain.Coordinate
	AvatarURL  string
	Record     domain.UserRecord
}

type UseCase struct {
	registry Registry
	sessions repository.SessionStore
	logger   *zap.Logger
}

func New(registry Registry, sessions repository.SessionStore, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		registry: registry,
		sessions: sessions,
		logger:   logger,
	}
}

// Load fetches the full roster exactly once per map entry. A failure
// returns an error and an empty set; there is no retry and no partial
// rendering.
func (uc *UseCase) Load(ctx context.Context) ([]domain.UserRecord, error) {
	records, err := uc.registry.List(ctx)
	if err != nil {
		uc.logger.Error("roster load failed", zap.Error(err))
		return nil, err
	}
	uc.logger.Debug("roster loaded", zap.Int("records", len(records)))
	return records, nil
}

// SignOut clears the session flag. Calling it repeatedly is harmless.
func (uc *UseCase) SignOut(ctx context.Context) error {
	return uc.sessions.Clear(ctx)
}

// Markers silently drops records without a coordinate and maps the rest
// to pins.
func Markers(records []domain.UserRecord) []Marker {
	markers := make([]Marker, 0, len(records))
	for _, record := range records {
		if !record.HasLocation() {
			continue
		}
		markers = append(markers, Marker{
			Login:      record.Login,
			Coordinate: *record.Location,
			AvatarURL:  record.AvatarURL,
			Record:     record,
		})
	}
	return markers
}

// Board tracks the marker set and the single open detail overlay.
// Selecting a marker replaces any prior selection.
type Board struct {
	markers  []Marker
	selected *Marker
}

func NewBoard(markers []Marker) *Board {
	return &Board{markers: markers}
}

func (b *Board) Markers() []Marker {
	return b.markers
}

// Select opens the detail overlay for a login, replacing any open one.
// It reports whether a matching marker exists.
func (b *Board) Select(login string) bool {
	for i := range b.markers {
		if b.markers[i].Login == login {
			b.selected = &b.markers[i]
			return true
		}
	}
	return false
}

// Selected returns the marker behind the open overlay, if any.
func (b *Board) Selected() *Marker {
	return b.selected
}

// Close dismisses the overlay without navigating.
func (b *Board) Close() {
	b.selected = nil
}

// ViewProfile returns the selected login for the profile screen and
// clears the selection, mirroring the overlay's "view profile" action.
func (b *Board) ViewProfile() (string, bool) {
	if b.selected == nil {
		return "", false
	}
	login := b.selected.Login
	b.selected = nil
	return login, true
}
