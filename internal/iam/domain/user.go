package domain

import "time"

// DefaultRole is assigned to newly registered users.
const DefaultRole = "user"

type User struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	PasswordHash string // argon2 encoded, never leaves the service boundary
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the external representation of a user. It never carries the
// password hash, unconditionally.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile strips the credential hash from a user record.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}
