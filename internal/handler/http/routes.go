package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// compressionLevel is the gzip level used for JSON responses.
const compressionLevel = 5

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(h.withTraceID)
	router.Use(h.withLogging)
	router.Use(middleware.Recoverer)
	if h.cfg.RequestTimeout > 0 {
		router.Use(middleware.Timeout(h.cfg.RequestTimeout))
	}
	router.Use(middleware.Compress(compressionLevel, "application/json"))
	router.Use(h.cors().Handler)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/health", h.health)
		r.Get("/api/version/", h.getServerVersion)
		r.Post("/api/auth/login", h.login)
		r.Post("/api/auth/verify-token", h.verifyToken)
	})

	// authorized routes; the permission middleware decides by role
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(h.permission)

		r.Get("/api/auth/me", h.me)

		r.Get("/api/users", h.listUsers)
		r.Post("/api/users", h.createUser)
		r.Delete("/api/users/{userID}", h.deleteUser)
		r.Put("/api/users/{userID}/password", h.changePassword)

		r.Get("/api/accounts", h.listAccounts)
		r.Post("/api/accounts", h.createAccount)
		r.Post("/api/accounts/import", h.importAccount)
		r.Post("/api/accounts/secret", h.generateSecret)
		r.Get("/api/accounts/{accountID}", h.getAccount)
		r.Put("/api/accounts/{accountID}", h.updateAccount)
		r.Delete("/api/accounts/{accountID}", h.deleteAccount)
		r.Get("/api/accounts/{accountID}/code", h.getCode)
		r.Get("/api/accounts/{accountID}/secret", h.revealSecret)
		r.Put("/api/accounts/{accountID}/remark", h.updateRemark)
		r.Post("/api/accounts/{accountID}/share", h.shareAccount)
		r.Delete("/api/accounts/{accountID}/share/{userID}", h.unshareAccount)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}

func (h *Handler) cors() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: h.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", traceIDHeader},
		ExposedHeaders: []string{"Authorization", traceIDHeader},
	})
}
