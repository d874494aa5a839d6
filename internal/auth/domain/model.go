package domain

import (
	"errors"

	intake "github.com/venhawk/venhawk-intake/internal/intake/domain"
)

var ErrNotAuthenticated = errors.New("user not authenticated")

// Identity is the signed-in user as established by the auth middleware.
type Identity struct {
	UID     string `json:"uid"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Profile is the record sent to the backend's user sync endpoint.
func (i Identity) Profile() intake.UserProfile {
	return intake.UserProfile{
		Sub:     i.UID,
		Email:   i.Email,
		Name:    i.Name,
		Picture: i.Picture,
	}
}
