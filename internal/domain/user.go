package domain

import "time"

// User represents an account allowed to sign in to the back office
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser is the storage-level input for creating a user. Password is already hashed.
type NewUser struct {
	Username     string
	PasswordHash string
	IsAdmin      bool
}

// Credentials is the payload of the login and register endpoints
type Credentials struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}
