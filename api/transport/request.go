package transport

import "github.com/devconnect/devconnect/domain"

// UserCreateRequest mirrors the POST /users body.
type UserCreateRequest struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
	Location  *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

// ToRecord converts the request payload into a domain record.
func (r UserCreateRequest) ToRecord() *domain.UserRecord {
	record := &domain.UserRecord{
		Login:     r.Login,
		Name:      r.Name,
		AvatarURL: r.AvatarURL,
		Bio:       r.Bio,
	}
	if r.Location != nil {
		record.Location = &domain.Coordinate{
			Latitude:  r.Location.Latitude,
			Longitude: r.Location.Longitude,
		}
	}
	return record
}
