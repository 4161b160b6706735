package adapter

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/MKhiriev/go-otp-keeper/internal/config"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/utils"
	"github.com/MKhiriev/go-otp-keeper/models"
	"github.com/go-resty/resty/v2"
)

type httpServerAdapter struct {
	client *utils.HTTPClient

	mu    sync.RWMutex
	token string

	logger *logger.Logger
}

// NewHTTPServerAdapter constructs an HTTP/REST implementation of [ServerAdapter].
// The base URL is taken from adapterCfg.HTTPAddress; a missing scheme
// defaults to http. Every request is bounded by adapterCfg.RequestTimeout.
func NewHTTPServerAdapter(adapterCfg config.ClientAdapter, logger *logger.Logger) (ServerAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	return &httpServerAdapter{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyAddress
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", ErrInvalidAddress
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [ServerAdapter].
func (h *httpServerAdapter) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [ServerAdapter].
func (h *httpServerAdapter) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// Login implements [ServerAdapter]. It POSTs the credentials to
// /api/auth/login and stores the bearer token from the Authorization header,
// falling back to the token in the response body.
func (h *httpServerAdapter) Login(ctx context.Context, credentials models.User) (models.User, error) {
	var loginResp models.LoginResponse

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(models.User{Login: credentials.Login, Password: credentials.Password}).
		SetResult(&loginResp).
		Post("/api/auth/login")
	if err != nil {
		return models.User{}, fmt.Errorf("login request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.User{}, err
	}

	token, err := utils.ParseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		if loginResp.Token == "" {
			return models.User{}, fmt.Errorf("login parse bearer token: %w", err)
		}
		token = loginResp.Token
	}

	h.SetToken(token)
	h.logger.Debug().Int64("user_id", loginResp.User.UserID).Msg("logged in")

	return loginResp.User, nil
}

// Me implements [ServerAdapter].
func (h *httpServerAdapter) Me(ctx context.Context) (models.User, error) {
	var user models.User

	req, err := h.authedRequest(ctx)
	if err != nil {
		return models.User{}, err
	}

	resp, err := req.SetResult(&user).Get("/api/auth/me")
	if err != nil {
		return models.User{}, fmt.Errorf("me request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// ListAccounts implements [ServerAdapter].
func (h *httpServerAdapter) ListAccounts(ctx context.Context) ([]models.AccountView, error) {
	var accounts []models.AccountView

	req, err := h.authedRequest(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := req.SetResult(&accounts).Get("/api/accounts")
	if err != nil {
		return nil, fmt.Errorf("list accounts request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	return accounts, nil
}

// GetCode implements [ServerAdapter].
func (h *httpServerAdapter) GetCode(ctx context.Context, accountID string) (models.Code, error) {
	var code models.Code

	req, err := h.authedRequest(ctx)
	if err != nil {
		return models.Code{}, err
	}

	resp, err := req.
		SetPathParam("accountID", accountID).
		SetResult(&code).
		Get("/api/accounts/{accountID}/code")
	if err != nil {
		return models.Code{}, fmt.Errorf("get code request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.Code{}, err
	}

	return code, nil
}

// RevealSecret implements [ServerAdapter].
func (h *httpServerAdapter) RevealSecret(ctx context.Context, accountID string) (models.SecretView, error) {
	var secret models.SecretView

	req, err := h.authedRequest(ctx)
	if err != nil {
		return models.SecretView{}, err
	}

	resp, err := req.
		SetPathParam("accountID", accountID).
		SetResult(&secret).
		Get("/api/accounts/{accountID}/secret")
	if err != nil {
		return models.SecretView{}, fmt.Errorf("reveal secret request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.SecretView{}, err
	}

	return secret, nil
}

// UpdateRemark implements [ServerAdapter].
func (h *httpServerAdapter) UpdateRemark(ctx context.Context, accountID, remark string) (models.AccountView, error) {
	var account models.AccountView

	req, err := h.authedRequest(ctx)
	if err != nil {
		return models.AccountView{}, err
	}

	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetPathParam("accountID", accountID).
		SetBody(models.RemarkRequest{Remark: remark}).
		SetResult(&account).
		Put("/api/accounts/{accountID}/remark")
	if err != nil {
		return models.AccountView{}, fmt.Errorf("update remark request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.AccountView{}, err
	}

	return account, nil
}

// GetServerVersion implements [ServerAdapter]. The endpoint answers with
// plain text.
func (h *httpServerAdapter) GetServerVersion(ctx context.Context) (string, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "text/plain").
		Get("/api/version/")
	if err != nil {
		return "", fmt.Errorf("get server version request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}

	return strings.TrimSpace(resp.String()), nil
}

func (h *httpServerAdapter) authedRequest(ctx context.Context) (*resty.Request, error) {
	token := h.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}

	return h.client.R().
		SetContext(ctx).
		SetAuthToken(token), nil
}
