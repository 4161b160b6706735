// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MKhiriev/go-otp-keeper/internal/config"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "signed.jwt.token"

func newTestAdapter(t *testing.T, handler http.Handler) ServerAdapter {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	a, err := NewHTTPServerAdapter(config.ClientAdapter{
		HTTPAddress:    srv.URL,
		RequestTimeout: 5 * time.Second,
	}, logger.Nop())
	require.NoError(t, err)

	return a
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func requireBearer(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
}

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{name: "host and port", raw: "localhost:8080", want: "http://localhost:8080"},
		{name: "https kept", raw: "https://otp.example.com/", want: "https://otp.example.com"},
		{name: "surrounding spaces", raw: "  http://127.0.0.1:9000  ", want: "http://127.0.0.1:9000"},
		{name: "empty", raw: "   ", wantErr: ErrEmptyAddress},
		{name: "no host", raw: "http://", wantErr: ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeBaseURL(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewHTTPServerAdapter_InvalidAddress(t *testing.T) {
	_, err := NewHTTPServerAdapter(config.ClientAdapter{RequestTimeout: time.Second}, logger.Nop())
	assert.ErrorIs(t, err, ErrEmptyAddress)
}

func TestLogin_StoresBearerToken(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)

		var creds models.User
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "alice", creds.Login)
		assert.Equal(t, "secret-pw", creds.Password)

		w.Header().Set("Authorization", "Bearer "+testToken)
		writeJSON(t, w, http.StatusOK, models.LoginResponse{
			Token: testToken,
			User:  models.User{UserID: 7, Login: "alice", Role: models.RoleUser},
		})
	}))

	user, err := a.Login(context.Background(), models.User{Login: "alice", Password: "secret-pw"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.UserID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, testToken, a.Token())
}

func TestLogin_FallsBackToBodyToken(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.LoginResponse{Token: testToken, User: models.User{UserID: 1}})
	}))

	_, err := a.Login(context.Background(), models.User{Login: "alice", Password: "secret-pw"})
	require.NoError(t, err)
	assert.Equal(t, testToken, a.Token())
}

func TestLogin_WrongPassword(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, models.ErrorResponse{Error: "wrong login or password"})
	}))

	_, err := a.Login(context.Background(), models.User{Login: "alice", Password: "nope"})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Contains(t, err.Error(), "wrong login or password")
	assert.Empty(t, a.Token())
}

func TestAuthedCalls_RequireToken(t *testing.T) {
	called := false
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	ctx := context.Background()

	_, err := a.Me(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = a.ListAccounts(ctx)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = a.GetCode(ctx, "acc")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = a.RevealSecret(ctx, "acc")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = a.UpdateRemark(ctx, "acc", "x")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	assert.False(t, called)
}

func TestMe(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		assert.Equal(t, "/api/auth/me", r.URL.Path)
		writeJSON(t, w, http.StatusOK, models.User{UserID: 3, Login: "bob", Role: models.RoleAdmin})
	}))
	a.SetToken("  " + testToken + "\n")

	user, err := a.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Login)
	assert.True(t, user.IsAdmin())
}

func TestListAccounts(t *testing.T) {
	want := []models.AccountView{
		{ID: "a1", Name: "alice@example.com", Issuer: "Example", IsOwner: true, Code: models.Code{Code: "996554", RemainingSeconds: 30, Period: 30, Digits: 6}},
		{ID: "a2", Name: "ops", Remark: "shared by admin", Code: models.Code{Code: "123456", RemainingSeconds: 12, Period: 30, Digits: 6}},
	}

	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/accounts", r.URL.Path)
		writeJSON(t, w, http.StatusOK, want)
	}))
	a.SetToken(testToken)

	got, err := a.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, want[0].ID, got[0].ID)
	assert.Equal(t, want[0].Code, got[0].Code)
	assert.Equal(t, "shared by admin", got[1].Remark)
}

func TestGetCode(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		assert.Equal(t, "/api/accounts/acc-1/code", r.URL.Path)
		writeJSON(t, w, http.StatusOK, models.Code{Code: "996554", RemainingSeconds: 30, Period: 30, Digits: 6})
	}))
	a.SetToken(testToken)

	code, err := a.GetCode(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "996554", code.Code)
	assert.Equal(t, 30, code.RemainingSeconds)
}

func TestGetCode_NotAvailable(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusNotFound, models.ErrorResponse{Error: "account is not available"})
	}))
	a.SetToken(testToken)

	_, err := a.GetCode(context.Background(), "acc-1")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "account is not available")
}

func TestRevealSecret(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		assert.Equal(t, "/api/accounts/acc-1/secret", r.URL.Path)
		writeJSON(t, w, http.StatusOK, models.SecretView{ID: "acc-1", Secret: "JBSWY3DPEHPK3PXP"})
	}))
	a.SetToken(testToken)

	secret, err := a.RevealSecret(context.Background(), "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", secret.Secret)
}

func TestUpdateRemark(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requireBearer(t, r)
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/accounts/acc-1/remark", r.URL.Path)

		var body models.RemarkRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "backup phone", body.Remark)

		writeJSON(t, w, http.StatusOK, models.AccountView{ID: "acc-1", Remark: body.Remark})
	}))
	a.SetToken(testToken)

	view, err := a.UpdateRemark(context.Background(), "acc-1", "backup phone")
	require.NoError(t, err)
	assert.Equal(t, "backup phone", view.Remark)
}

func TestGetServerVersion(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/version/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("v1.2.3\n"))
	}))

	version, err := a.GetServerVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "v1.2.3", version)
}

func TestMapHTTPError_Statuses(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusInternalServerError, ErrInternalServerError},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			a.SetToken(testToken)

			_, err := a.ListAccounts(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMapHTTPError_UnmappedStatus(t *testing.T) {
	a := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	a.SetToken(testToken)

	_, err := a.ListAccounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 503")
	assert.Contains(t, err.Error(), http.StatusText(http.StatusServiceUnavailable))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "account is not available", errorMessage([]byte(`{"error":"account is not available"}`)))
	assert.Equal(t, "plain failure", errorMessage([]byte(" plain failure\n")))
	assert.Equal(t, "", errorMessage(nil))
}
