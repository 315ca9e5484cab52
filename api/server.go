/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     zerolog request logging carrying the request id
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the browser front-end
  5. User:       X-User-ID header required on /api routes

ROUTE GROUPS:
  /api/profile          Issuer profile
  /api/clients/*        Client management
  /api/entries/*        Work entries, moves, drafts
  /api/periods          Billing period resolver
  /api/invoices/*       Invoice preview
  /api/alerts/*         Closing-day alerts and scheduler history
  /api/dashboard        Summary
  /api/schedule/*       Calendar projections
  /api/snapshot         Document export/import
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware. The user header is trusted as given.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/warp/billing-engine/generic"
)

// UserIDHeader names the user a request acts for.
const UserIDHeader = "X-User-ID"

// DocumentVersionHeader carries the stored document's save count.
const DocumentVersionHeader = "X-Document-Version"

// DefaultAllowedOrigins are used when no CORS origins are configured.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", UserIDHeader},
		ExposedHeaders:   []string{DocumentVersionHeader},
		AllowCredentials: true,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Scenario catalogue needs no user
		r.Get("/scenarios", h.ListScenarios)
		r.Get("/alerts/runs", h.ListAlertRuns)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Get("/profile", h.GetProfile)
			r.Put("/profile", h.PutProfile)

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", h.ListClients)
				r.Post("/", h.CreateClient)
				r.Put("/{id}", h.UpdateClient)
				r.Delete("/{id}", h.DeleteClient)
			})

			r.Route("/entries", func(r chi.Router) {
				r.Get("/", h.ListEntries)
				r.Post("/", h.CreateEntry)
				r.Get("/draft", h.DraftEntry)
				r.Put("/{id}", h.UpdateEntry)
				r.Delete("/{id}", h.DeleteEntry)
				r.Post("/{id}/move", h.MoveEntry)
			})

			r.Get("/periods", h.GetPeriod)
			r.Get("/invoices/preview", h.PreviewInvoice)
			r.Get("/alerts", h.ListAlerts)
			r.Get("/dashboard", h.GetDashboard)
			r.Get("/schedule/{view}", h.GetSchedule)

			r.Get("/snapshot", h.ExportSnapshot)
			r.Put("/snapshot", h.ImportSnapshot)
			r.Delete("/snapshot", h.ResetSnapshot)

			r.Get("/scenarios/current", h.GetCurrentScenario)
			r.Post("/scenarios/load", h.LoadScenario)
		})
	})

	return r
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type userKey struct{}

// requireUser rejects /api requests without a user header.
func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(UserIDHeader)
		if id == "" {
			writeError(w, http.StatusBadRequest, "Missing "+UserIDHeader+" header", nil)
			return
		}
		ctx := context.WithValue(r.Context(), userKey{}, generic.UserID(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(r *http.Request) generic.UserID {
	id, _ := r.Context().Value(userKey{}).(generic.UserID)
	return id
}

// requestLogger logs one line per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
