package http

import (
	"net/http"

	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/utils"
)

// auth is an HTTP middleware that enforces JWT-based authentication.
//
// The bearer token from the "Authorization" header is verified with
// [service.AuthService.VerifyToken], which also re-reads the user so that a
// deleted user is locked out and a role change takes effect at once. The
// resulting viewer is stored in the request context with [utils.WithViewer].
func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, r, ErrEmptyAuthorizationHeader)
			return
		}

		tokenString, err := utils.ParseBearerToken(authHeader)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := r.Context()
		user, err := h.services.AuthService.VerifyToken(ctx, tokenString)
		if err != nil {
			writeError(w, r, err)
			return
		}

		userLog := logger.FromRequest(r).With().Int64("user_id", user.UserID).Logger()
		ctx = utils.WithViewer(userLog.WithContext(ctx), user.Viewer())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// permission checks the caller's role against the route table of
// [service.PermissionService]. It must run after auth.
func (h *Handler) permission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, ok := utils.GetViewerFromContext(r.Context())
		if !ok {
			writeError(w, r, ErrEmptyAuthorizationHeader)
			return
		}

		allowed, err := h.services.PermissionService.Enforce(viewer.Role, r.URL.Path, r.Method)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !allowed {
			logger.FromRequest(r).Warn().
				Int64("user_id", viewer.UserID).
				Str("role", string(viewer.Role)).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("route denied by role")
			writeError(w, r, ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
