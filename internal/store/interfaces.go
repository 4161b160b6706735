package store

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

import (
	"context"
	"time"

	"github.com/MKhiriev/go-otp-keeper/models"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
	FindUserByID(ctx context.Context, userID int64) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdatePasswordHash(ctx context.Context, userID int64, passwordHash string) error
	DeleteUser(ctx context.Context, userID int64) error
}

// AccountRepository persists accounts, their share grants and per-viewer
// remarks. Every multi-row change is atomic.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account models.Account) error
	GetAccount(ctx context.Context, accountID string) (models.Account, error)
	ListAccountsForUser(ctx context.Context, userID int64) ([]models.Account, error)
	UpdateAccount(ctx context.Context, update models.AccountUpdate) error
	DeleteAccount(ctx context.Context, accountID string) error
	AddShare(ctx context.Context, accountID string, userID int64, at time.Time) error
	RemoveShare(ctx context.Context, accountID string, userID int64, at time.Time) error
}
