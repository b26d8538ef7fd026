package kit

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsAuth guards /metrics with a static bearer token. An empty token
// disables the endpoint.
func MetricsAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, ok := BearerToken(r)
			if token == "" || !ok || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				WriteError(w, r, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
	return tok, tok != ""
}

// MetricsDeps is embedded by every service's HTTPDeps.
type MetricsDeps struct {
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

// MountMetrics installs the request metrics middleware and, when enabled, the
// token protected /metrics endpoint. A nil registry turns both off.
func MountMetrics(r interface {
	Use(...func(http.Handler) http.Handler)
	Handle(string, http.Handler)
}, deps MetricsDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.Handle("/metrics", MetricsAuth(deps.MetricsToken)(
		promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}),
	))
}
