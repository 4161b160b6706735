package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-otp-keeper/internal/access"
	"github.com/MKhiriev/go-otp-keeper/internal/app"
	"github.com/MKhiriev/go-otp-keeper/internal/config"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/mock"
	"github.com/MKhiriev/go-otp-keeper/internal/service"
	"github.com/MKhiriev/go-otp-keeper/internal/store"
	"github.com/MKhiriev/go-otp-keeper/internal/validators"
	"github.com/MKhiriev/go-otp-keeper/models"
)

// ── helpers ──────────────────────────────────────────────────────────────────

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

var (
	adminUser = models.User{UserID: 1, Login: "admin", Role: models.RoleAdmin}
	plainUser = models.User{UserID: 2, Login: "bob", Role: models.RoleUser}
)

type testEnv struct {
	router   http.Handler
	auth     *mock.MockAuthService
	users    *mock.MockUserService
	accounts *mock.MockAccountService
	appInfo  *mock.MockAppInfoService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	permissions, err := service.NewPermissionService(logger.Nop())
	require.NoError(t, err)

	env := &testEnv{
		auth:     mock.NewMockAuthService(ctrl),
		users:    mock.NewMockUserService(ctrl),
		accounts: mock.NewMockAccountService(ctrl),
		appInfo:  mock.NewMockAppInfoService(ctrl),
	}
	services := &service.Services{
		AuthService:       env.auth,
		UserService:       env.users,
		AccountService:    env.accounts,
		PermissionService: permissions,
		AppInfoService:    env.appInfo,
	}
	env.router = NewHandler(services, config.Server{RequestTimeout: 5 * time.Second}, logger.Nop()).Init()

	env.auth.EXPECT().VerifyToken(gomock.Any(), adminToken).Return(adminUser, nil).AnyTimes()
	env.auth.EXPECT().VerifyToken(gomock.Any(), userToken).Return(plainUser, nil).AnyTimes()

	return env
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

// ── public routes ────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodGet, "/api/health", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(traceIDHeader))
}

func TestTraceIDIsEchoed(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(traceIDHeader, "trace-42")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, "trace-42", rr.Header().Get(traceIDHeader))
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	env.appInfo.EXPECT().GetAppVersion(gomock.Any()).Return("1.2.3")

	rr := env.do(http.MethodGet, "/api/version/", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1.2.3", rr.Body.String())
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.auth.EXPECT().Login(gomock.Any(), "admin", "change-me").Return(adminUser, nil)
	env.auth.EXPECT().CreateToken(gomock.Any(), adminUser).Return(models.Token{SignedString: "signed.jwt"}, nil)

	rr := env.do(http.MethodPost, "/api/auth/login", "", `{"login":"admin","password":"change-me"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Bearer signed.jwt", rr.Header().Get("Authorization"))

	var body models.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "signed.jwt", body.Token)
	assert.Equal(t, adminUser.UserID, body.User.UserID)
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t)
	env.auth.EXPECT().Login(gomock.Any(), "admin", "nope").Return(models.User{}, service.ErrWrongPassword)

	rr := env.do(http.MethodPost, "/api/auth/login", "", `{"login":"admin","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "invalid login/password", decodeError(t, rr).Error)

	rr = env.do(http.MethodPost, "/api/auth/login", "", `{"login":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestVerifyToken(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPost, "/api/auth/verify-token", "", `{"token":"user-token"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	var body models.VerifyTokenResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, plainUser.Login, body.User.Login)
}

// ── authentication & permissions ─────────────────────────────────────────────

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)
	env.auth.EXPECT().VerifyToken(gomock.Any(), "stale").Return(models.User{}, service.ErrTokenIsExpiredOrInvalid)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc"},
		{"missing token", "Bearer"},
		{"rejected token", "Bearer stale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			env.router.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestMe(t *testing.T) {
	env := newTestEnv(t)
	env.users.EXPECT().GetUser(gomock.Any(), plainUser.UserID).Return(plainUser, nil)

	rr := env.do(http.MethodGet, "/api/auth/me", userToken, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"login":"bob"`)
}

func TestPermissionMiddleware_UserCannotUseAdminRoutes(t *testing.T) {
	env := newTestEnv(t)

	for _, route := range []struct{ method, path, body string }{
		{http.MethodPost, "/api/accounts", `{"name":"x","secret":"JBSWY3DPEHPK3PXP"}`},
		{http.MethodPost, "/api/accounts/import", `{"uri":"otpauth://totp/x?secret=JBSWY3DPEHPK3PXP"}`},
		{http.MethodPost, "/api/accounts/secret", `{"name":"x"}`},
		{http.MethodGet, "/api/users", ""},
		{http.MethodDelete, "/api/users/3", ""},
	} {
		rr := env.do(route.method, route.path, userToken, route.body)
		assert.Equal(t, http.StatusForbidden, rr.Code, route.method+" "+route.path)
	}
}

func TestUnknownMethodIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodPatch, "/api/accounts", adminToken, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// ── users ────────────────────────────────────────────────────────────────────

func TestUsers(t *testing.T) {
	env := newTestEnv(t)
	adminViewer := adminUser.Viewer()

	env.users.EXPECT().CreateUser(gomock.Any(), models.User{Login: "carol", Password: "secret1", Role: models.RoleUser}).
		Return(models.User{UserID: 3, Login: "carol", Role: models.RoleUser}, nil)
	rr := env.do(http.MethodPost, "/api/users", adminToken, `{"login":"carol","password":"secret1","role":"user"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NotContains(t, rr.Body.String(), "secret1")

	env.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(models.User{}, fmt.Errorf("wrapped: %w", store.ErrLoginAlreadyExists))
	rr = env.do(http.MethodPost, "/api/users", adminToken, `{"login":"carol","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	env.users.EXPECT().ChangePassword(gomock.Any(), adminViewer, models.ChangePasswordRequest{UserID: 3, NewPassword: "another1"}).Return(nil)
	rr = env.do(http.MethodPut, "/api/users/3/password", adminToken, `{"new_password":"another1"}`)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	env.users.EXPECT().DeleteUser(gomock.Any(), adminViewer, adminUser.UserID).Return(service.ErrCannotDeleteSelf)
	rr = env.do(http.MethodDelete, "/api/users/1", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(http.MethodDelete, "/api/users/abc", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// ── accounts ─────────────────────────────────────────────────────────────────

func TestListAccounts(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.EXPECT().ListAccounts(gomock.Any(), plainUser.Viewer()).Return([]models.AccountView{{
		ID:     "acc-1",
		Name:   "alice",
		Remark: "theirs",
		Code:   models.Code{Code: "996554", RemainingSeconds: 30, Period: 30, Digits: 6},
	}}, nil)

	rr := env.do(http.MethodGet, "/api/accounts", userToken, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"996554"`)
	assert.NotContains(t, rr.Body.String(), "secret")
}

func TestCreateAccount(t *testing.T) {
	env := newTestEnv(t)
	req := models.CreateAccountRequest{Name: "GitHub", Secret: "JBSWY3DPEHPK3PXP"}
	env.accounts.EXPECT().CreateAccount(gomock.Any(), adminUser.Viewer(), req).Return(models.AccountView{ID: "acc-9"}, nil)

	rr := env.do(http.MethodPost, "/api/accounts", adminToken, `{"name":"GitHub","secret":"JBSWY3DPEHPK3PXP"}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":"acc-9"`)
}

func TestCreateAccount_ValidationFields(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.EXPECT().CreateAccount(gomock.Any(), gomock.Any(), gomock.Any()).Return(models.AccountView{},
		fmt.Errorf("error validating account: %w", validators.ValidationError{"secret": "secret must be a non-empty base32 key"}))

	rr := env.do(http.MethodPost, "/api/accounts", adminToken, `{"name":"GitHub","secret":"1"}`)

	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, validators.ErrInvalidInput.Error(), body.Error)
	assert.Equal(t, "secret must be a non-empty base32 key", body.Fields["secret"])
}

func TestAccountErrorsAreUniform(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"denied", &access.DeniedError{Operation: access.OpRead, UserID: 2, AccountID: "acc-1"}, http.StatusNotFound, app.MsgAccountNotAvailable},
		{"missing", fmt.Errorf("error loading account acc-1: %w", store.ErrAccountNotFound), http.StatusNotFound, app.MsgAccountNotAvailable},
		{"storage failure", store.ErrExecutingQuery, http.StatusInternalServerError, app.MsgInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.accounts.EXPECT().GetAccount(gomock.Any(), plainUser.Viewer(), "acc-1").Return(models.AccountView{}, tt.err)

			rr := env.do(http.MethodGet, "/api/accounts/acc-1", userToken, "")

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantMsg, decodeError(t, rr).Error)
		})
	}
}

func TestRevealSecret(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.EXPECT().RevealSecret(gomock.Any(), plainUser.Viewer(), "acc-1").Return(models.SecretView{
		ID: "acc-1", Secret: "JBSWY3DPEHPK3PXP", URI: "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP",
	}, nil)

	rr := env.do(http.MethodGet, "/api/accounts/acc-1/secret", userToken, "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.Contains(t, rr.Body.String(), `"secret":"JBSWY3DPEHPK3PXP"`)
}

func TestUpdateRemark(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.EXPECT().UpdateRemark(gomock.Any(), plainUser.Viewer(), "acc-1", models.RemarkRequest{Remark: "pinned"}).
		Return(models.AccountView{ID: "acc-1", Remark: "pinned"}, nil)

	rr := env.do(http.MethodPut, "/api/accounts/acc-1/remark", userToken, `{"remark":"pinned"}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"remark":"pinned"`)
}

func TestShareAccount_ErrorMapping(t *testing.T) {
	denied := func(reason error) error {
		return &access.DeniedError{Operation: access.OpShare, UserID: 1, AccountID: "acc-1", Reason: reason}
	}

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"already shared", denied(access.ErrAlreadyShared), http.StatusConflict},
		{"lost race", fmt.Errorf("%w: %w", access.ErrAlreadyShared, store.ErrShareAlreadyExists), http.StatusConflict},
		{"owner as target", denied(access.ErrShareTargetIsOwner), http.StatusBadRequest},
		{"admin as target", denied(access.ErrShareTargetIsAdmin), http.StatusBadRequest},
		{"not the owner", denied(nil), http.StatusNotFound},
		{"unknown target", service.ErrShareTargetNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.accounts.EXPECT().ShareAccount(gomock.Any(), adminUser.Viewer(), "acc-1", models.ShareRequest{UserID: 4}).
				Return(models.AccountView{}, tt.err)

			rr := env.do(http.MethodPost, "/api/accounts/acc-1/share", adminToken, `{"user_id":4}`)

			assert.Equal(t, tt.wantStatus, rr.Code)
		})
	}
}

func TestUnshareAccount(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.EXPECT().UnshareAccount(gomock.Any(), adminUser.Viewer(), "acc-1", int64(2)).
		Return(models.AccountView{ID: "acc-1", IsOwner: true}, nil)

	rr := env.do(http.MethodDelete, "/api/accounts/acc-1/share/2", adminToken, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(http.MethodDelete, "/api/accounts/acc-1/share/zero", adminToken, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	env.accounts.EXPECT().DeleteAccount(gomock.Any(), plainUser.Viewer(), "acc-1").Return(nil)

	rr := env.do(http.MethodDelete, "/api/accounts/acc-1", userToken, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

// ── status mapping ───────────────────────────────────────────────────────────

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrInvalidTOTPSecret, http.StatusBadRequest},
		{service.ErrUnsupportedParameter, http.StatusBadRequest},
		{service.ErrAdminOnly, http.StatusForbidden},
		{service.ErrUserNotFound, http.StatusNotFound},
		{service.ErrTokenIsExpiredOrInvalid, http.StatusUnauthorized},
		{store.ErrShareNotFound, http.StatusNotFound},
		{store.ErrBeginningTransaction, http.StatusInternalServerError},
		{fmt.Errorf("anything"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			got, _ := statusFromError(tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}
