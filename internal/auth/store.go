// Package auth is the session service: it authenticates a login, keeps the
// resulting session server side, and hands the client a signed token that
// names it.
package auth

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	ErrInvalidCredentials   = errors.New("email and password required")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrLoginInProgress      = errors.New("login already in progress")
	ErrNoSession            = errors.New("no session")
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the logged in user record. It lives until logout.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type SessionStore interface {
	Ping(ctx context.Context) error
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, bool, error)
	Delete(ctx context.Context, id string) error
	// DeleteBefore removes sessions created before t and reports how many.
	DeleteBefore(ctx context.Context, t time.Time) (int, error)
}
