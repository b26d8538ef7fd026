package gateway

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"AslyStore/internal/auth"
	"AslyStore/pkg/kit"
)

type HTTPDeps struct {
	Log *zap.Logger
	kit.MetricsDeps
}

type Deps struct {
	AuthURL    string
	CatalogURL string
	CartURL    string
	JWTSecret  string

	// Sessions defaults to an AuthClient for AuthURL.
	Sessions SessionChecker
}

const (
	readyTimeout      = 2 * time.Second
	readyProbeTimeout = 700 * time.Millisecond
)

var readyClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     30 * time.Second,
	},
}

func NewHandler(deps Deps, httpDeps HTTPDeps) (http.Handler, error) {
	authProxy, err := NewReverseProxy(deps.AuthURL, httpDeps.Log)
	if err != nil {
		return nil, err
	}
	catalogProxy, err := NewReverseProxy(deps.CatalogURL, httpDeps.Log)
	if err != nil {
		return nil, err
	}
	cartProxy, err := NewReverseProxy(deps.CartURL, httpDeps.Log)
	if err != nil {
		return nil, err
	}

	sessions := deps.Sessions
	if sessions == nil {
		sessions = NewAuthClient(deps.AuthURL)
	}
	jwt := auth.NewTokenMaker(deps.JWTSecret)

	r := chi.NewRouter()
	kit.Common(r, httpDeps.Log)
	kit.MountMetrics(r, httpDeps.MetricsDeps)

	r.Get("/healthz", kit.Healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Handle("/auth", authProxy)
	r.Handle("/auth/*", authProxy)

	for _, prefix := range []string{"/products", "/categories", "/collections"} {
		r.Handle(prefix, catalogProxy)
		r.Handle(prefix+"/*", catalogProxy)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(AuthJWT(jwt, sessions))
		pr.Handle("/cart", cartProxy)
		pr.Handle("/cart/*", cartProxy)
	})

	return r, nil
}

// readyz probes every upstream in parallel and reports the first one that
// is not ready.
func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	upstreams := []struct{ name, url string }{
		{"auth", deps.AuthURL},
		{"catalog", deps.CatalogURL},
		{"cart", deps.CartURL},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		for _, u := range upstreams {
			g.Go(func() error {
				if err := checkReady(gctx, u.url+"/readyz"); err != nil {
					return errors.Wrap(err, u.name)
				}
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			if log != nil {
				log.Warn("readyz failed", zap.Error(err))
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", map[string]any{"cause": err.Error()})
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func checkReady(ctx context.Context, url string) error {
	cctx, cancel := context.WithTimeout(ctx, readyProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := readyClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("status=%d", resp.StatusCode)
	}
	return nil
}
