// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys,
// HTTP response writing, HTTP client initialization, JWT token generation
// and validation, and ID generation.
package utils

import (
	"context"

	"github.com/MKhiriev/go-otp-keeper/models"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// ViewerCtxKey is the key used to store the authenticated [models.Viewer]
// in the context.
var ViewerCtxKey = contextKey("viewer")

// WithViewer returns a copy of ctx carrying the authenticated viewer.
func WithViewer(ctx context.Context, viewer models.Viewer) context.Context {
	return context.WithValue(ctx, ViewerCtxKey, viewer)
}

// GetViewerFromContext retrieves the authenticated viewer from the context.
//
// Returns the viewer and an ok flag:
//   - ok == true  — value is found and has the correct type
//   - ok == false — value is missing or has an unexpected type
func GetViewerFromContext(ctx context.Context) (models.Viewer, bool) {
	viewer, ok := ctx.Value(ViewerCtxKey).(models.Viewer)
	return viewer, ok
}

// GetUserIDFromContext retrieves the authenticated user's ID from the context.
//
// Example usage:
//
//	userID, ok := utils.GetUserIDFromContext(ctx)
//	if !ok {
//	    // handle missing user in context
//	}
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	viewer, ok := GetViewerFromContext(ctx)
	return viewer.UserID, ok
}
