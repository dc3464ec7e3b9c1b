package domain

import "time"

// User models a registered account. The password hash never leaves the
// service layer; handlers only render the public projection.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is what clients are allowed to see about an account.
type PublicUser struct {
	Email string `json:"email"`
	ID    string `json:"id"`
}

// Public returns the client-facing projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{Email: u.Email, ID: u.ID}
}
