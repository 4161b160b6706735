package service

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

import (
	"context"

	"github.com/MKhiriev/go-otp-keeper/models"
)

// AuthService authenticates users and issues and verifies their tokens.
type AuthService interface {
	// Login checks the credentials and returns the stored user.
	Login(ctx context.Context, login, password string) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
	// VerifyToken parses the token and returns the user it was issued for,
	// failing if that user no longer exists.
	VerifyToken(ctx context.Context, tokenString string) (models.User, error)
}

// UserService manages user records. Every returned user has its password
// fields cleared.
type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, userID int64) (models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	ChangePassword(ctx context.Context, viewer models.Viewer, req models.ChangePasswordRequest) error
	DeleteUser(ctx context.Context, viewer models.Viewer, userID int64) error
	// BootstrapAdmin creates the administrator account if no user with that
	// login exists yet.
	BootstrapAdmin(ctx context.Context, login, password string) error
}

// AccountService exposes every account operation on behalf of a viewer.
// Access is decided by the account access policy; an account the viewer may
// not see is reported the same way as a missing one.
type AccountService interface {
	ListAccounts(ctx context.Context, viewer models.Viewer) ([]models.AccountView, error)
	GetAccount(ctx context.Context, viewer models.Viewer, accountID string) (models.AccountView, error)
	GetCode(ctx context.Context, viewer models.Viewer, accountID string) (models.Code, error)
	RevealSecret(ctx context.Context, viewer models.Viewer, accountID string) (models.SecretView, error)

	CreateAccount(ctx context.Context, viewer models.Viewer, req models.CreateAccountRequest) (models.AccountView, error)
	ImportAccount(ctx context.Context, viewer models.Viewer, req models.ImportAccountRequest) (models.AccountView, error)
	GenerateSecret(ctx context.Context, viewer models.Viewer, req models.GenerateSecretRequest) (models.ProvisioningKey, error)

	UpdateAccount(ctx context.Context, viewer models.Viewer, accountID string, req models.UpdateAccountRequest) (models.AccountView, error)
	UpdateRemark(ctx context.Context, viewer models.Viewer, accountID string, req models.RemarkRequest) (models.AccountView, error)
	DeleteAccount(ctx context.Context, viewer models.Viewer, accountID string) error

	ShareAccount(ctx context.Context, viewer models.Viewer, accountID string, req models.ShareRequest) (models.AccountView, error)
	UnshareAccount(ctx context.Context, viewer models.Viewer, accountID string, userID int64) (models.AccountView, error)
}

// PermissionService decides whether a role may call an API route.
type PermissionService interface {
	Enforce(role models.Role, path, method string) (bool, error)
}

// AppInfoService reports static information about the running server.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
}

// IDGenerator issues new account identifiers.
type IDGenerator interface {
	Generate() string
}
