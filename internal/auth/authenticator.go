package auth

import (
	"context"
	"net/mail"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	ModeMock     = "mock"
	ModeAccounts = "accounts"
)

// userNamespace scopes the name-based user ids derived from emails.
var userNamespace = uuid.MustParse("6f1c2b0e-5d0a-4c57-9a0f-3b7e8f0d2a41")

// Authenticator checks credentials and names the user they belong to.
type Authenticator interface {
	Authenticate(ctx context.Context, c Credentials) (User, error)
}

// UserID derives a stable user id from an email address.
func UserID(email string) string {
	return "u_" + uuid.NewSHA1(userNamespace, []byte(normalizeEmail(email))).String()
}

// MockAuthenticator accepts any well formed email with a non-empty password.
// It exists for demos and tests and must not guard anything real.
type MockAuthenticator struct{}

func (MockAuthenticator) Authenticate(_ context.Context, c Credentials) (User, error) {
	email := normalizeEmail(c.Email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return User{}, errors.Wrap(ErrAuthenticationFailed, "malformed email")
	}
	if c.Password == "" {
		return User{}, errors.Wrap(ErrAuthenticationFailed, "empty password")
	}
	return User{ID: UserID(email), Email: email}, nil
}

// AccountsAuthenticator knows a fixed set of demo accounts with bcrypt
// password hashes.
type AccountsAuthenticator struct {
	hashes map[string][]byte
}

// NewAccountsAuthenticator parses "email:bcrypt-hash" pairs.
func NewAccountsAuthenticator(pairs []string) (*AccountsAuthenticator, error) {
	a := &AccountsAuthenticator{hashes: make(map[string][]byte, len(pairs))}
	for _, pair := range pairs {
		email, hash, ok := strings.Cut(pair, ":")
		email = normalizeEmail(email)
		if !ok || email == "" || hash == "" {
			return nil, errors.Errorf("bad account entry %q", pair)
		}
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, errors.Wrapf(err, "account %s", email)
		}
		a.hashes[email] = []byte(hash)
	}
	if len(a.hashes) == 0 {
		return nil, errors.New("accounts authenticator needs at least one account")
	}
	return a, nil
}

func (a *AccountsAuthenticator) Authenticate(_ context.Context, c Credentials) (User, error) {
	email := normalizeEmail(c.Email)
	hash, ok := a.hashes[email]
	if !ok {
		return User{}, ErrAuthenticationFailed
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(c.Password)); err != nil {
		return User{}, ErrAuthenticationFailed
	}
	return User{ID: UserID(email), Email: email}, nil
}

// NewAuthenticator builds the authenticator selected by mode.
func NewAuthenticator(mode string, accounts []string) (Authenticator, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeMock:
		return MockAuthenticator{}, nil
	case ModeAccounts:
		return NewAccountsAuthenticator(accounts)
	default:
		return nil, errors.Errorf("unknown auth mode %q", mode)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
