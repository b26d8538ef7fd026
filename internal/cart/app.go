package cart

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"AslyStore/pkg/kit"
)

type HTTPDeps struct {
	Log *zap.Logger
	kit.MetricsDeps
}

func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()
	kit.Common(r, deps.Log)
	kit.MountMetrics(r, deps.MetricsDeps)

	r.Mount("/", s.Routes())
	return r
}
