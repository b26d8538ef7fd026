package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"AslyStore/internal/auth"
	"AslyStore/pkg/kit"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

var (
	ErrSessionEnded    = errors.New("session ended")
	ErrAuthUnavailable = errors.New("auth unavailable")
)

func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// SessionChecker confirms that the session behind a verified token is still
// open.
type SessionChecker interface {
	CheckSession(ctx context.Context, token string) (userID string, err error)
}

// AuthClient asks the auth service about a token via /auth/whoami.
type AuthClient struct {
	BaseURL string
	Client  *http.Client
}

func NewAuthClient(baseURL string) *AuthClient {
	return &AuthClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 2 * time.Second},
	}
}

func (c *AuthClient) CheckSession(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/auth/whoami", nil)
	if err != nil {
		return "", errors.Wrap(err, "build whoami request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", errors.Wrap(ErrAuthUnavailable, err.Error())
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", ErrSessionEnded
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", errors.Wrapf(ErrAuthUnavailable, "status=%d", resp.StatusCode)
	}

	var who struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&who); err != nil {
		return "", errors.Wrap(err, "decode whoami")
	}
	return who.UserID, nil
}

// AuthJWT verifies the bearer token locally, then checks with sessions that
// it has not been logged out.
func AuthJWT(jwt *auth.TokenMaker, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}
			claims, err := jwt.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			uid, err := sessions.CheckSession(r.Context(), tok)
			switch {
			case errors.Is(err, ErrSessionEnded):
				kit.WriteError(w, r, http.StatusUnauthorized, "session ended", nil)
				return
			case err != nil:
				kit.WriteError(w, r, http.StatusServiceUnavailable, "auth unavailable", nil)
				return
			case uid != claims.UserID:
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewReverseProxy forwards to target and answers 502 when it cannot be reached.
func NewReverseProxy(target string, log *zap.Logger) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, errors.Wrapf(err, "parse upstream %q", target)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("upstream %q needs scheme and host", target)
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		if log != nil {
			log.Warn("upstream failed", zap.String("upstream", u.Host), zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusBadGateway, "upstream unavailable", nil)
	}
	return InjectHeaders(p), nil
}

// InjectHeaders replaces any client supplied identity header with the one
// established by AuthJWT.
func InjectHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Header.Del(kit.HeaderUserID)

		if uid, ok := UserIDFromContext(r.Context()); ok && uid != "" {
			r.Header.Set(kit.HeaderUserID, uid)
		}

		next.ServeHTTP(w, r)
	})
}
