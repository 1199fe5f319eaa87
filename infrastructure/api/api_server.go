package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/playtaste/playtaste"
	apimiddleware "github.com/playtaste/playtaste/infrastructure/api/middleware"
	v1 "github.com/playtaste/playtaste/infrastructure/api/v1"
)

// APIServer provides an HTTP API backed by a playtaste Client.
type APIServer struct {
	client         *playtaste.Client
	apiKeys        []string
	allowedOrigins []string
	server         *Server
	router         chi.Router
	routerCalled   bool
	logger         *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given playtaste Client.
// apiKeys configures write-protection: mutating endpoints (POST, PUT, PATCH,
// DELETE) require a valid key. Read-only endpoints and the share view
// remain open.
func NewAPIServer(client *playtaste.Client, apiKeys []string) *APIServer {
	return &APIServer{
		client:  client,
		apiKeys: apiKeys,
		logger:  client.Logger(),
	}
}

// WithAllowedOrigins sets the CORS origins allowed to call the API.
// An empty list allows any origin.
func (a *APIServer) WithAllowedOrigins(origins []string) *APIServer {
	a.allowedOrigins = origins
	return a
}

// Router returns the chi router for customization before starting.
// Call this first, add custom middleware with router.Use(), then call MountRoutes().
// If not called, ListenAndServe creates a default router with all standard routes.
func (a *APIServer) Router() chi.Router {
	if a.router != nil {
		return a.router
	}

	a.router = chi.NewRouter()
	a.routerCalled = true
	return a.router
}

// MountRoutes wires up all v1 API routes on the router.
// Call this after adding any custom middleware via Router().Use().
func (a *APIServer) MountRoutes() {
	if a.router == nil {
		a.Router()
	}
	a.mountRoutes(a.router)
}

// mountRoutes wires up all v1 API routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	c := a.client

	requestsRouter := v1.NewRequestsRouter(c)
	seedsRouter := v1.NewSeedsRouter(c)
	gamesRouter := v1.NewGamesRouter(c)
	shareRouter := v1.NewShareRouter(c)
	queueRouter := v1.NewQueueRouter(c)

	origins := a.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		// Open routes: catalog search, queue inspection, and the
		// share-token view need no caller identity.
		r.Mount("/games", gamesRouter.Routes())
		r.Mount("/queue", queueRouter.Routes())
		r.Mount("/share", shareRouter.Routes())

		// Identity routes: everything here is scoped to the caller.
		// Mutating methods additionally require a valid API key.
		r.Group(func(r chi.Router) {
			r.Use(apimiddleware.WriteProtectAuth(a.apiKeys))
			r.Use(apimiddleware.RequireUser)
			r.Mount("/requests", requestsRouter.Routes())
			r.Mount("/seeds", seedsRouter.Routes())
		})
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = &server

	if a.routerCalled && a.router != nil {
		server.Router().Mount("/", a.router)
	} else {
		a.mountRoutes(server.Router())
	}

	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the router as an http.Handler for use with custom servers.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.Router()
		a.MountRoutes()
	}
	return a.router
}
