package domain

import "time"

// Session is the device-local registration flag. Its presence routes the
// app to the map on launch; its absence routes to sign-up.
type Session struct {
	Login     string    `json:"login"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Session) Active() bool {
	return s != nil && s.Login != ""
}
