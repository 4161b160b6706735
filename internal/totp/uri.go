// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package totp

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/MKhiriev/go-otp-keeper/models"
)

const (
	uriScheme = "otpauth"
	uriType   = "totp"
)

// BuildURI returns an otpauth://totp/ provisioning URI in the form
//
//	otpauth://totp/{issuer}:{name}?secret={secret}&issuer={issuer}&digits={digits}&period={period}
//
// Issuer and name are percent-encoded, including any ':' they contain, so
// that the label separator stays unambiguous.
func BuildURI(issuer, name, secret string, digits, period int) string {
	label := escapeLabel(name)
	if issuer != "" {
		label = escapeLabel(issuer) + ":" + label
	}

	var b strings.Builder
	b.WriteString(uriScheme + "://" + uriType + "/")
	b.WriteString(label)
	b.WriteString("?secret=" + url.QueryEscape(secret))
	if issuer != "" {
		b.WriteString("&issuer=" + url.QueryEscape(issuer))
	}
	b.WriteString("&digits=" + strconv.Itoa(digits))
	b.WriteString("&period=" + strconv.Itoa(period))

	return b.String()
}

// ParseURI extracts the provisioning data from an otpauth://totp/ URI.
//
// The label before the first ':' is taken as the issuer and the remainder as
// the account name; without a ':' the whole label is the name. An issuer
// query parameter overrides the label issuer. A missing name falls back to
// the issuer. The secret is mandatory and is returned normalized.
func ParseURI(raw string) (models.ProvisioningKey, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return models.ProvisioningKey{}, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}
	if !strings.EqualFold(u.Scheme, uriScheme) || !strings.EqualFold(u.Host, uriType) {
		return models.ProvisioningKey{}, fmt.Errorf("%w: expected %s://%s/", ErrInvalidURI, uriScheme, uriType)
	}

	issuer, name, err := splitLabel(u.EscapedPath())
	if err != nil {
		return models.ProvisioningKey{}, err
	}

	query := u.Query()
	if queryIssuer := query.Get("issuer"); queryIssuer != "" {
		issuer = queryIssuer
	}
	if name == "" {
		name = issuer
	}
	if name == "" {
		return models.ProvisioningKey{}, fmt.Errorf("%w: account name is missing", ErrInvalidURI)
	}

	rawSecret := query.Get("secret")
	if rawSecret == "" {
		return models.ProvisioningKey{}, ErrMissingSecret
	}
	secret, err := Normalize(rawSecret)
	if err != nil {
		return models.ProvisioningKey{}, err
	}

	if algorithm := query.Get("algorithm"); algorithm != "" && !strings.EqualFold(algorithm, "SHA1") {
		return models.ProvisioningKey{}, fmt.Errorf("%w: unsupported algorithm %q", ErrInvalidURI, algorithm)
	}

	digits, err := intParam(query, "digits", DefaultDigits)
	if err != nil {
		return models.ProvisioningKey{}, err
	}
	period, err := intParam(query, "period", DefaultPeriod)
	if err != nil {
		return models.ProvisioningKey{}, err
	}
	if err = validateParams(digits, period); err != nil {
		return models.ProvisioningKey{}, fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	return models.ProvisioningKey{
		Issuer: issuer,
		Name:   name,
		Secret: secret,
		Digits: digits,
		Period: period,
	}, nil
}

func splitLabel(escapedPath string) (issuer, name string, err error) {
	label := strings.TrimPrefix(escapedPath, "/")

	sep, sepLen := strings.Index(label, ":"), 1
	if sep < 0 {
		// some generators encode the separator itself
		sep, sepLen = strings.Index(strings.ToUpper(label), "%3A"), 3
	}

	rawIssuer, rawName := "", label
	if sep >= 0 {
		rawIssuer, rawName = label[:sep], label[sep+sepLen:]
	}

	if issuer, err = url.PathUnescape(rawIssuer); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}
	if name, err = url.PathUnescape(rawName); err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrInvalidURI, err)
	}

	return strings.TrimSpace(issuer), strings.TrimSpace(name), nil
}

func intParam(query url.Values, key string, fallback int) (int, error) {
	value := query.Get(key)
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidURI, key)
	}
	return n, nil
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(url.PathEscape(s), ":", "%3A")
}
