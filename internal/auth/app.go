package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"AslyStore/pkg/kit"
)

type HTTPDeps struct {
	Log *zap.Logger
	kit.MetricsDeps

	// LoginLimit is the number of login attempts allowed per IP per minute.
	// Zero disables the limit.
	LoginLimit int
}

const limitWindow = 60 * time.Second

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	if s.TokenTTL <= 0 {
		s.TokenTTL = 24 * time.Hour
	}

	r := chi.NewRouter()
	kit.Common(r, deps.Log)
	kit.MountMetrics(r, deps.MetricsDeps)

	loginLimiter := kit.NewIPRateLimiter(deps.LoginLimit, limitWindow)

	r.Route("/auth", func(rr chi.Router) {
		rr.With(loginLimiter.Middleware).Post("/login", s.handleLogin)
		rr.Post("/logout", s.handleLogout)
		rr.Get("/whoami", s.handleWhoAmI)
	})

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", s.handleReady)

	return r
}
