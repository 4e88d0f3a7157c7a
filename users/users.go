package users

import "strings"

// RoleType represents a platform role assigned to the user
type RoleType string

const (
	RoleUser         RoleType = "user"
	RoleTourProvider RoleType = "tour_provider"
	RoleAdmin        RoleType = "admin"
)

// User is the subset of the platform profile the companion reads.
// Returned by the login response and the identity check endpoint.
type User struct {
	ID        string     `json:"id,omitempty"`         // Unique identifier for the user
	Username  string     `json:"username,omitempty"`   // Unique username
	Email     string     `json:"email,omitempty"`      // User's email address
	FirstName string     `json:"first_name,omitempty"` // First name of the user
	LastName  string     `json:"last_name,omitempty"`  // Last name of the user
	FullName  string     `json:"full_name,omitempty"`  // Display name chosen by the user
	AvatarURL string     `json:"avatar_url,omitempty"` // Profile image
	IsActive  *bool      `json:"is_active,omitempty"`  // Deactivated accounts cannot log in
	LastLogin float64    `json:"last_login,omitempty"` // Unix seconds
	Roles     []RoleType `json:"roles,omitempty"`
}

func (u *User) HasRole(role RoleType) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// DisplayName prefers the full name, then first/last, then the username
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	return u.Username
}
