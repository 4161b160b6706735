// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package totp

import (
	"fmt"
	"strings"
	"unicode"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

// Decode converts a Base32 secret into raw key bytes.
//
// Decoding is tolerant of the way secrets are usually typed or pasted:
// whitespace and '=' padding are ignored and letters are case-insensitive.
// Every remaining character must belong to the alphabet A-Z2-7, otherwise
// ErrInvalidEncoding is returned. Bits that do not complete a whole byte at
// the end of the input are dropped, so the output is floor(n*5/8) bytes long
// for n significant characters.
func Decode(input string) ([]byte, error) {
	normalized := clean(input)

	out := make([]byte, 0, len(normalized)*5/8)
	var buffer uint32
	var bits uint

	for i, r := range normalized {
		idx := strings.IndexRune(alphabet, r)
		if idx < 0 {
			return nil, fmt.Errorf("%w: character %q at position %d", ErrInvalidEncoding, r, i)
		}

		buffer = buffer<<5 | uint32(idx)
		bits += 5
		if bits >= 8 {
			bits -= 8
			out = append(out, byte(buffer>>bits))
			buffer &= 1<<bits - 1
		}
	}

	return out, nil
}

// Normalize returns the canonical stored form of a secret: uppercase, with
// whitespace and padding removed. The secret must decode to at least one byte.
func Normalize(input string) (string, error) {
	normalized := clean(input)

	key, err := Decode(normalized)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSecret, err)
	}
	if len(key) == 0 {
		return "", fmt.Errorf("%w: %w", ErrInvalidSecret, ErrEmptySecret)
	}

	return normalized, nil
}

func clean(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '=' {
			return -1
		}
		return unicode.ToUpper(r)
	}, input)
}
