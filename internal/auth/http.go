package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"AslyStore/pkg/kit"
)

const readyTimeout = 1 * time.Second

type Server struct {
	Log      *zap.Logger
	Sessions *Manager
	JWT      *TokenMaker
	TokenTTL time.Duration
}

type loginResp struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

type whoamiResp struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req Credentials
	if err := kit.DecodeJSON(w, r, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", map[string]any{"cause": err.Error()})
		return
	}

	sess, err := s.Sessions.Login(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	tok, exp, err := s.JWT.New(sess, s.TokenTTL)
	if err != nil {
		_ = s.Sessions.Logout(r.Context(), sess.ID)
		s.writeError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, loginResp{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		User:        User{ID: sess.UserID, Email: sess.Email},
	})
}

// handleLogout ends the session named by the bearer token. Repeating it is
// harmless.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.claims(w, r)
	if !ok {
		return
	}

	if err := s.Sessions.Logout(r.Context(), claims.SessionID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWhoAmI(w http.ResponseWriter, r *http.Request) {
	claims, ok := s.claims(w, r)
	if !ok {
		return
	}

	sess, err := s.Sessions.Current(r.Context(), claims.SessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	kit.WriteJSON(w, http.StatusOK, whoamiResp{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Email:     sess.Email,
		CreatedAt: sess.CreatedAt,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := s.Sessions.Ping(ctx); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) claims(w http.ResponseWriter, r *http.Request) (Claims, bool) {
	tok, ok := kit.BearerToken(r)
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
		return Claims{}, false
	}

	claims, err := s.JWT.Parse(tok)
	if err != nil {
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
		return Claims{}, false
	}
	return claims, true
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		kit.WriteError(w, r, http.StatusBadRequest, "email/password required", nil)
	case errors.Is(err, ErrAuthenticationFailed):
		kit.WriteError(w, r, http.StatusUnauthorized, "invalid credentials", nil)
	case errors.Is(err, ErrLoginInProgress):
		kit.WriteError(w, r, http.StatusConflict, "login already in progress", nil)
	case errors.Is(err, ErrNoSession):
		kit.WriteError(w, r, http.StatusUnauthorized, "session ended", nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		if s.Log != nil {
			s.Log.Error("auth request failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}
