package models

import "time"

// Roles known to the authorizer. Anything other than admin is treated as a
// regular account.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a credential-store record. The password is stored as a bcrypt hash;
// the plaintext never leaves the login/register handlers.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
