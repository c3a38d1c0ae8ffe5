package domain

import "time"

// Coordinate is a geographic point in floating-point degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UserRecord represents a registered developer. Login is the GitHub
// handle and the unique, immutable key across the registry.
type UserRecord struct {
	Login     string      `json:"login"`
	Name      string      `json:"name,omitempty"`
	AvatarURL string      `json:"avatar_url,omitempty"`
	Bio       string      `json:"bio,omitempty"`
	Location  *Coordinate `json:"location,omitempty"`
	CreatedAt time.Time   `json:"created_at,omitempty"`
}

// DisplayName returns the public name, falling back to the login.
func (u *UserRecord) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}

// HasLocation reports whether the record captured a coordinate at
// registration time. Records without one never become map markers.
func (u *UserRecord) HasLocation() bool {
	return u != nil && u.Location != nil
}
