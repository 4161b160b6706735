// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MKhiriev/go-otp-keeper/models"
)

const (
	// DefaultDigits is the code length used by virtually every authenticator app.
	DefaultDigits = 6
	// DefaultPeriod is the time step in seconds.
	DefaultPeriod = 30

	maxDigits = 10
)

// Generate computes the code for secret at the given unix time.
//
// The time step at/period is encoded as an 8-byte big-endian counter and
// authenticated with HMAC-SHA1 keyed by the decoded secret. The digest is
// reduced with the RFC 4226 dynamic truncation and the result is rendered as
// a zero-padded decimal string of exactly digits characters. A secret that
// decodes to zero bytes is used as an empty HMAC key.
func Generate(secret string, at int64, digits, period int) (string, error) {
	if err := validateParams(digits, period); err != nil {
		return "", err
	}
	if at < 0 {
		return "", ErrNegativeTime
	}

	key, err := Decode(secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}

	counter := counterBytes(uint64(at) / uint64(period))

	mac := hmac.New(sha1.New, key)
	mac.Write(counter[:])
	sum := mac.Sum(nil)

	code := uint64(truncate(sum)) % pow10(digits)

	return leftPad(strconv.FormatUint(code, 10), digits), nil
}

// RemainingSeconds reports how many seconds the code for at stays valid.
// The result is always within [1, period].
func RemainingSeconds(at int64, period int) int {
	if period <= 0 {
		period = DefaultPeriod
	}
	p := int64(period)
	elapsed := ((at % p) + p) % p
	return int(p - elapsed)
}

// counterBytes encodes the time step as an unsigned 64-bit big-endian value.
// Time steps beyond 2^31 must keep their high bytes.
func counterBytes(step uint64) [8]byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], step)
	return buf
}

// truncate is the RFC 4226 dynamic truncation of a 20-byte HMAC-SHA1 digest.
func truncate(sum []byte) uint32 {
	offset := sum[len(sum)-1] & 0x0F
	return uint32(sum[offset]&0x7F)<<24 |
		uint32(sum[offset+1])<<16 |
		uint32(sum[offset+2])<<8 |
		uint32(sum[offset+3])
}

func pow10(n int) uint64 {
	result := uint64(1)
	for range n {
		result *= 10
	}
	return result
}

func leftPad(code string, digits int) string {
	if len(code) >= digits {
		return code
	}
	return strings.Repeat("0", digits-len(code)) + code
}

func validateParams(digits, period int) error {
	if digits < 1 || digits > maxDigits {
		return ErrInvalidDigits
	}
	if period < 1 {
		return ErrInvalidPeriod
	}
	return nil
}

// Generator produces codes with a fixed digit count and period.
type Generator struct {
	digits int
	period int
}

// NewGenerator returns a Generator. Zero values fall back to DefaultDigits
// and DefaultPeriod.
func NewGenerator(digits, period int) (*Generator, error) {
	if digits == 0 {
		digits = DefaultDigits
	}
	if period == 0 {
		period = DefaultPeriod
	}
	if err := validateParams(digits, period); err != nil {
		return nil, err
	}

	return &Generator{digits: digits, period: period}, nil
}

// Digits returns the configured code length.
func (g *Generator) Digits() int { return g.digits }

// Period returns the configured time step in seconds.
func (g *Generator) Period() int { return g.period }

// Code returns the code for secret at the given moment along with its
// remaining validity.
func (g *Generator) Code(secret string, at time.Time) (models.Code, error) {
	unix := at.Unix()

	code, err := Generate(secret, unix, g.digits, g.period)
	if err != nil {
		return models.Code{}, err
	}

	return models.Code{
		Code:             code,
		RemainingSeconds: RemainingSeconds(unix, g.period),
		Period:           g.period,
		Digits:           g.digits,
	}, nil
}

// URI builds the provisioning URI for an account using the generator settings.
func (g *Generator) URI(issuer, name, secret string) string {
	return BuildURI(issuer, name, secret, g.digits, g.period)
}
