package app

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/khmer-lookup/internal/config"
	"github.com/heartmarshall/khmer-lookup/internal/transport/middleware"
	"github.com/heartmarshall/khmer-lookup/internal/transport/rest"
	"github.com/heartmarshall/khmer-lookup/internal/transport/ws"
)

// NewRouter registers all routes on a mux and wraps it in the global
// middleware chain. The returned stop func releases the rate limiter.
func NewRouter(cfg *config.Config, p *Pipeline, logger *slog.Logger) (http.Handler, func()) {
	mux := http.NewServeMux()

	health := rest.NewHealthHandler(p.Lexicon, BuildVersion())
	mux.HandleFunc("GET /live", health.Live)
	mux.HandleFunc("GET /ready", health.Ready)
	mux.HandleFunc("GET /health", health.Health)

	maxRunes := cfg.Lookup.MaxSentenceRunes
	lookupHandler := rest.NewLookupHandler(p.Service, maxRunes, logger)
	wsHandler := ws.NewHandler(p.Service, maxRunes, cfg.CORS.Origins(), logger)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
	limit := limiter.Limit(cfg.RateLimit.LookupPerMinute)

	mux.HandleFunc("GET /api/segment", lookupHandler.Segment)
	mux.Handle("GET /api/lookup", limit(http.HandlerFunc(lookupHandler.Lookup)))
	mux.Handle("POST /api/lookup", limit(http.HandlerFunc(lookupHandler.Lookup)))
	mux.Handle("GET /ws/lookup", limit(wsHandler))

	handler := middleware.Chain(
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	)(mux)

	return handler, limiter.Stop
}
