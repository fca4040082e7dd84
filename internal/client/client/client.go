package client

import (
	"context"
	"time"
)

// User is the backend identity together with the profile fields the account
// cache keeps.
type User struct {
	ID       string
	Email    string
	FullName string
	UserType string
}

// Session is an authenticated backend session.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         User
}

// Expired reports whether the access token is past its expiry at now.
// A zero ExpiresAt never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// SignUpParams describes a new account.
type SignUpParams struct {
	Email    string
	Password string
	FullName string
	UserType string
}

// Client is the auth backend contract. Implementations hold the ambient
// session: a successful SignUp, SignInWithPassword or RefreshSession replaces
// it and SignOut clears it.
type Client interface {
	SignUp(ctx context.Context, p SignUpParams) (*Session, error)
	SignInWithPassword(ctx context.Context, email string, password string) (*Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*Session, error)
	SignOut(ctx context.Context) error
	GetUser(ctx context.Context) (*User, error)
	Session() *Session
	Close() error
}
