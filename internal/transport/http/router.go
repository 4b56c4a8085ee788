package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"faceguard/pkg/platform/middleware/auth"
	"faceguard/pkg/platform/middleware/device"
	"faceguard/pkg/platform/middleware/metadata"
	"faceguard/pkg/platform/middleware/request"
)

// Mount registers a group of routes on r. Domain handlers expose their
// Register methods in this shape.
type Mount func(r chi.Router)

// Config collects everything the router needs besides the handlers.
type Config struct {
	// Public routes are reachable without a bearer token.
	Public []Mount
	// Protected routes sit behind bearer authentication.
	Protected []Mount

	Tokens         auth.TokenResolver
	TrustedProxies []netip.Prefix
	MaxBodyBytes   int64
	RequestMetrics *request.Metrics
	// Gatherer backs GET /metrics. Nil leaves the endpoint unmounted.
	Gatherer prometheus.Gatherer
}

// NewRouter wires all endpoints with middleware. Handlers stay thin and
// delegate to domain services so transport concerns remain isolated.
func NewRouter(cfg Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(metadata.Config{TrustedProxies: cfg.TrustedProxies}).Handler)
	r.Use(device.Device)
	r.Use(request.Logger(logger))
	r.Use(request.Latency(cfg.RequestMetrics))
	r.Use(request.BodyLimit(cfg.MaxBodyBytes))

	for _, mount := range cfg.Public {
		mount(r)
	}

	if cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(cfg.Tokens, logger))
		for _, mount := range cfg.Protected {
			mount(r)
		}
	})

	return r
}
