package domain

import (
	"time"
)

// ContactMessage represents a contact form submission
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewContactMessage is the public submit payload
type NewContactMessage struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Phone   string `json:"phone" validate:"required,min=7,max=20,phone"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}
