package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrAccountNotFound is returned when an account does not exist.
	ErrAccountNotFound = errors.New("account not found")
	// ErrUnauthorized is returned when a request carries no valid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when an account asks for analytics of a link it does not own.
	ErrForbidden = errors.New("forbidden")
)

// Account is a user signed in through the identity provider.
type Account struct {
	ID          uuid.UUID
	GoogleID    string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// Identity is the verified profile returned by the identity provider after login.
type Identity struct {
	Subject string
	Email   string
	Name    string
}
