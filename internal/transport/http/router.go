// Package httptransport assembles the HTTP surface: middleware chain, trust
// routes, health and metrics endpoints.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trustplane/internal/transport/http/shared"
	"trustplane/internal/trust/handler"
	"trustplane/pkg/platform/middleware/metadata"
	"trustplane/pkg/platform/middleware/request"
	"trustplane/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

// NewRouter builds the full router. The middleware chain runs before every
// route so request id, client metadata, and the request-scoped clock are
// available to all handlers.
func NewRouter(h *handler.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h.Register(r)

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
