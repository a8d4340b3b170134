package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/duetlabs/duet/internal/credential"
	"github.com/duetlabs/duet/internal/journal"
	"github.com/duetlabs/duet/internal/session"
	"github.com/duetlabs/duet/internal/sse"
)

// Handler holds API route handlers and their collaborators.
type Handler struct {
	journal     *journal.Service
	resolver    *credential.Resolver
	rotation    *credential.Manager
	credentials *credential.Store
	sessions    *session.Store
	throttle    *session.Throttle
	broker      *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil (no live events).
func NewHandler(
	svc *journal.Service,
	resolver *credential.Resolver,
	rotation *credential.Manager,
	credentials *credential.Store,
	sessions *session.Store,
	throttle *session.Throttle,
	broker *sse.Broker,
) *Handler {
	return &Handler{
		journal:     svc,
		resolver:    resolver,
		rotation:    rotation,
		credentials: credentials,
		sessions:    sessions,
		throttle:    throttle,
		broker:      broker,
	}
}

// NewRouter creates a chi router with all API routes mounted.
//
// /verify-pin and /labels are public. Everything else requires a session;
// entry mutation and credential changes additionally require the author
// role.
func NewRouter(h *Handler, sessions *session.Store) chi.Router {
	r := chi.NewRouter()

	// Public surface.
	r.Post("/verify-pin", h.VerifyPIN)
	r.Get("/labels", h.Labels)

	// Session-gated surface.
	r.Group(func(r chi.Router) {
		r.Use(RequireSession(sessions))

		r.Post("/logout", h.Logout)
		r.Get("/entries", h.ListEntries)
		if h.broker != nil {
			r.Get("/events", h.broker.ServeHTTP)
		}

		// Author-only surface.
		r.Group(func(r chi.Router) {
			r.Use(RequireAuthor)

			r.Post("/add-entry", h.AddEntry)
			r.Put("/entries/{id}", h.UpdateEntry)
			r.Delete("/entries/{id}", h.DeleteEntry)

			r.Post("/change-pin", h.ChangePIN)
			r.Post("/change-label", h.ChangeLabel)
		})
	})

	return r
}
