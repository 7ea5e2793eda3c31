package domain

import "time"

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller as seen by services.
type Identity struct {
	UserID   string
	Name     string
	Email    string
	Provider string // "local" or "firebase"
}
