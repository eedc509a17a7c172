package auth

import (
	"errors"
	"time"

	pgrepo "github.com/praytyushpande/crewlyx/internal/repo/postgres"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotFound    = errors.New("session not found")
	ErrRefreshNotFound    = errors.New("refresh token not found")
)

type SessionRecord struct {
	SID       string
	UserID    int64
	ExpiresAt time.Time
}

type AccessClaims struct {
	UserID    int64
	SID       string
	ExpiresAt time.Time
}

type AuthResult struct {
	AccessToken   string
	RefreshToken  string
	AccessExpires time.Time
	User          pgrepo.UserRecord
}
