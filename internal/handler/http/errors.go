// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrEmptyAuthorizationHeader is returned by the auth middleware when the
	// incoming request does not include an "Authorization" header at all.
	ErrEmptyAuthorizationHeader = errors.New("empty `Authorization` header")

	// ErrInvalidJSON is returned when a request body cannot be decoded.
	ErrInvalidJSON = errors.New("invalid JSON was passed")

	// ErrInvalidPathParameter is returned when a numeric path segment does
	// not parse.
	ErrInvalidPathParameter = errors.New("invalid path parameter")

	// ErrForbidden is returned by the permission middleware when the caller's
	// role may not use the route.
	ErrForbidden = errors.New("forbidden")
)
