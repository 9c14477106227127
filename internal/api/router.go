package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mmynk/authd/internal/metrics"
	"github.com/mmynk/authd/internal/middleware"
)

// RouterConfig wires the HTTP surface together.
type RouterConfig struct {
	Authenticator  Authenticator
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	AllowedOrigins []string

	// RPCPath and RPCHandler mount an additional Connect service under the
	// path prefix RPCPath (with trailing slash). Optional.
	RPCPath    string
	RPCHandler http.Handler
}

// NewRouter builds the routes and middleware chain.
func NewRouter(cfg RouterConfig) http.Handler {
	h := NewHandler(cfg.Authenticator, cfg.Metrics, cfg.Logger)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogger(cfg.Logger, cfg.Metrics))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/", h.Root)
	r.Get("/healthz", h.Health)
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/google-login", h.GoogleLogin)

	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}
	if cfg.RPCHandler != nil {
		r.Handle(cfg.RPCPath+"*", cfg.RPCHandler)
	}

	return r
}
