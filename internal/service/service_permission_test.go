package service

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/models"
)

func TestPermissionService_Enforce(t *testing.T) {
	svc, err := NewPermissionService(logger.Nop())
	require.NoError(t, err)

	tests := []struct {
		role   models.Role
		path   string
		method string
		want   bool
	}{
		{models.RoleUser, "/api/accounts", http.MethodGet, true},
		{models.RoleUser, "/api/accounts/0192f7c4-aaaa", http.MethodGet, true},
		{models.RoleUser, "/api/accounts/0192f7c4-aaaa", http.MethodPut, true},
		{models.RoleUser, "/api/accounts/0192f7c4-aaaa/code", http.MethodGet, true},
		{models.RoleUser, "/api/accounts/0192f7c4-aaaa/share/4", http.MethodDelete, true},
		{models.RoleUser, "/api/auth/me", http.MethodGet, true},
		{models.RoleUser, "/api/accounts", http.MethodPost, false},
		{models.RoleUser, "/api/accounts/import", http.MethodPost, false},
		{models.RoleUser, "/api/users", http.MethodGet, false},
		{models.RoleUser, "/api/users/2", http.MethodDelete, false},
		{models.RoleUser, "/api/accounts/0192f7c4-aaaa/code", http.MethodPost, false},

		{models.RoleAdmin, "/api/accounts", http.MethodPost, true},
		{models.RoleAdmin, "/api/accounts", http.MethodGet, true},
		{models.RoleAdmin, "/api/accounts/secret", http.MethodPost, true},
		{models.RoleAdmin, "/api/users", http.MethodPost, true},
		{models.RoleAdmin, "/api/users/2/password", http.MethodPut, true},
		{models.RoleAdmin, "/api/users/2", http.MethodPatch, false},

		{"", "/api/accounts", http.MethodGet, false},
		{"root", "/api/accounts", http.MethodGet, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+" "+tt.method+" "+tt.path, func(t *testing.T) {
			got, err := svc.Enforce(tt.role, tt.path, tt.method)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
