// Package session issues and verifies the signed session tokens carried in the auth cookie.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrEmptySecret  = errors.New("session secret is empty")
	ErrInvalidToken = errors.New("invalid session token")
)

// Manager signs tokens with HS256. The token subject is the account ID.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}

	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue returns a token for accountID and the moment it expires.
func (m *Manager) Issue(accountID uuid.UUID) (string, time.Time, error) {
	const op = "adapter.session.Manager.Issue"

	now := m.now()
	expiresAt := now.Add(m.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%s: failed to sign token: %w", op, err)
	}

	return token, expiresAt, nil
}

// Verify checks the signature and lifetime of token and returns its account ID.
func (m *Manager) Verify(token string) (uuid.UUID, error) {
	const op = "adapter.session.Manager.Verify"

	var claims jwt.RegisteredClaims

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w: bad subject: %w", op, ErrInvalidToken, err)
	}

	return accountID, nil
}
