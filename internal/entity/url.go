// Package entity defines the entities and errors used in the application.
// It includes the ShortLink, Visit and Account types that the repositories,
// use cases and delivery layer exchange, along with the domain errors.
package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultTopic is assigned to short links created without a topic.
const DefaultTopic = "general"

var (
	// ErrInvalidURL is returned when a long URL does not start with an http or https scheme.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidAlias is returned when a custom alias is malformed or reserved.
	ErrInvalidAlias = errors.New("invalid alias")
	// ErrAliasConflict is returned when a requested custom alias is already taken.
	ErrAliasConflict = errors.New("custom alias already in use")
	// ErrAliasExists is returned by storage when an insert hits the alias uniqueness constraint.
	ErrAliasExists = errors.New("alias exists")
	// ErrAliasNotFound is returned when no short link exists for an alias.
	ErrAliasNotFound = errors.New("alias not found")
	// ErrTopicNotFound is returned when no short link carries the requested topic.
	ErrTopicNotFound = errors.New("topic not found")
)

// ShortLink binds an alias to a long URL.
type ShortLink struct {
	ID        int64      `json:"id"`         // ID is the unique identifier of the link in the database.
	Alias     string     `json:"alias"`      // Alias is the short key the link is served under.
	LongURL   string     `json:"long_url"`   // LongURL is the destination of the redirect.
	Topic     string     `json:"topic"`      // Topic groups links for topic analytics.
	OwnerID   *uuid.UUID `json:"owner_id"`   // OwnerID references the account that created the link, if any.
	CreatedAt time.Time  `json:"created_at"` // CreatedAt is the timestamp when the link was created.
}

// OwnedBy reports whether the link was created by the given account.
func (l *ShortLink) OwnedBy(accountID uuid.UUID) bool {
	return l.OwnerID != nil && *l.OwnerID == accountID
}
