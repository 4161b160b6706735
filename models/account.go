// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// Account is a stored third-party credential whose codes users can view.
//
// ID is fixed at construction and is the only identifier of the account.
// OwnerID never changes. SharedWith never contains OwnerID and holds no
// duplicates. RemarksByViewer maps a viewer ID to that viewer's private label.
type Account struct {
	ID              string           `json:"id"`
	OwnerID         int64            `json:"owner_id"`
	Name            string           `json:"name"`
	Issuer          string           `json:"issuer"`
	Secret          string           `json:"-"`
	SharedWith      []int64          `json:"shared_with,omitempty"`
	RemarksByViewer map[int64]string `json:"-"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// TableName returns the name of the database table
// associated with the Account model.
func (a Account) TableName() string {
	return "accounts"
}

// Code is a freshly computed one-time code. It is never persisted.
type Code struct {
	Code             string `json:"code"`
	RemainingSeconds int    `json:"remaining_seconds"`
	Period           int    `json:"period"`
	Digits           int    `json:"digits"`
}

// AccountView is what a viewer sees in the account list: labels, the live
// code and their own remark. The secret is never part of it. SharedWith is
// only filled for the owner.
type AccountView struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Issuer     string    `json:"issuer"`
	OwnerID    int64     `json:"owner_id"`
	IsOwner    bool      `json:"is_owner"`
	SharedWith []int64   `json:"shared_with,omitempty"`
	Remark     string    `json:"remark"`
	Code       Code      `json:"totp"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SecretView is returned by the reveal operation.
type SecretView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Secret string `json:"secret"`
	URI    string `json:"uri"`
	Code   Code   `json:"totp"`
}

// ProvisioningKey is the content of an otpauth:// URI.
type ProvisioningKey struct {
	Issuer string `json:"issuer"`
	Name   string `json:"name"`
	Secret string `json:"secret"`
	Digits int    `json:"digits"`
	Period int    `json:"period"`
	URI    string `json:"uri,omitempty"`
}

// CreateAccountRequest is the body of the create operation.
type CreateAccountRequest struct {
	Name   string `json:"name" validate:"required,max=255"`
	Issuer string `json:"issuer" validate:"max=255"`
	Secret string `json:"secret" validate:"required,totp_secret"`
	Remark string `json:"remark" validate:"max=1024"`
}

// ImportAccountRequest creates an account from an otpauth:// URI.
type ImportAccountRequest struct {
	URI    string `json:"uri" validate:"required,otpauth_uri"`
	Remark string `json:"remark" validate:"max=1024"`
}

// GenerateSecretRequest asks for a random secret for a new account.
type GenerateSecretRequest struct {
	Name   string `json:"name" validate:"required,max=255"`
	Issuer string `json:"issuer" validate:"max=255"`
}

// UpdateAccountRequest changes core fields and/or the caller's own remark.
// Only non-nil fields are applied. The whole request is applied atomically.
type UpdateAccountRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	Issuer *string `json:"issuer,omitempty" validate:"omitnil,max=255"`
	Secret *string `json:"secret,omitempty" validate:"omitnil,totp_secret"`
	Remark *string `json:"remark,omitempty" validate:"omitnil,max=1024"`
}

// ChangesCore reports whether the request touches owner-only fields.
func (r UpdateAccountRequest) ChangesCore() bool {
	return r.Name != nil || r.Issuer != nil || r.Secret != nil
}

// RemarkRequest is the body of the own-remark update.
type RemarkRequest struct {
	Remark string `json:"remark" validate:"max=1024"`
}

// ShareRequest is the body of the share operation.
type ShareRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// AccountUpdate is an update ready to be persisted: the validated request
// bound to the account and the viewer whose remark it may change.
type AccountUpdate struct {
	AccountID string
	ViewerID  int64
	Name      *string
	Issuer    *string
	Secret    *string
	Remark    *string
	UpdatedAt time.Time
}

// ChangesCore reports whether the update touches owner-only fields.
func (u AccountUpdate) ChangesCore() bool {
	return u.Name != nil || u.Issuer != nil || u.Secret != nil
}
