// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// OTP keeper server handlers.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP error bodies when the wrapped error text must not reach the caller.
package app

const (
	// MsgAccountNotAvailable answers every read or write of an account the
	// caller may not touch, and of accounts that do not exist. The two cases
	// are indistinguishable from outside.
	MsgAccountNotAvailable = "account is not available"

	// MsgInvalidLoginPassword is returned when the supplied login/password
	// combination does not match any existing user record.
	MsgInvalidLoginPassword = "invalid login/password"

	// MsgInternalServerError is returned when an unexpected server-side
	// failure occurs that the client cannot resolve.
	MsgInternalServerError = "internal server error"

	// MsgTokenIsExpiredOrInvalid is returned when a JWT bearer token is
	// either expired or cannot be verified (e.g. wrong signature).
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgInvalidDataProvided is returned when the request body cannot be
	// decoded.
	MsgInvalidDataProvided = "invalid data provided"

	// MsgForbidden is returned when the caller's role may not use a route.
	MsgForbidden = "forbidden"

	// MsgLoginAlreadyExists is returned when a user is created with a login
	// that is already in use.
	MsgLoginAlreadyExists = "login already exists"
)
