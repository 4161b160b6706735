// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"

	"github.com/MKhiriev/go-otp-keeper/models"
)

// ServerAdapter is the client-side view of the server API.
//
// After a successful Login the adapter keeps the bearer token and attaches it
// to every authenticated call. Non-2xx responses are returned as errors that
// wrap one of the package sentinels (ErrNotFound, ErrUnauthorized, ...).
type ServerAdapter interface {
	SetToken(token string)
	Token() string

	// Login exchanges credentials for a token and returns the logged in user.
	Login(ctx context.Context, credentials models.User) (models.User, error)
	// Me returns the user the current token belongs to.
	Me(ctx context.Context) (models.User, error)

	// ListAccounts returns every account visible to the current user with a
	// freshly computed code.
	ListAccounts(ctx context.Context) ([]models.AccountView, error)
	GetCode(ctx context.Context, accountID string) (models.Code, error)
	RevealSecret(ctx context.Context, accountID string) (models.SecretView, error)
	UpdateRemark(ctx context.Context, accountID, remark string) (models.AccountView, error)

	GetServerVersion(ctx context.Context) (string, error)
}
