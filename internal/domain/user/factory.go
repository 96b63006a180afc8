package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// New builds a user whose login handle is the email address.
func New(email, passwordHash, fullName, role string) User {
	now := time.Now().UTC()
	email = strings.TrimSpace(email)

	return User{
		ID:           uuid.NewString(),
		Username:     email,
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     strings.TrimSpace(fullName),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
