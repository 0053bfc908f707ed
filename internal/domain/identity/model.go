package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is a staff account. Permissions gate individual screens and routes
// and travel in the access token.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	UserName       string    `json:"userName"`
	PasswordHash   string    `json:"-"`
	Role           string    `json:"role"`
	Permissions    []string  `json:"permissions"`
	LastModifiedBy *Modifier `json:"lastModifiedBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Modifier records who last changed a user's permissions.
type Modifier struct {
	UserID string    `json:"userId"`
	Name   string    `json:"name"`
	Date   time.Time `json:"date"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	UserName string `json:"userName"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}
