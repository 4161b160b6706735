// Package totp implements time-based one-time passwords (RFC 6238) on top of
// the HOTP truncation of RFC 4226, together with the tolerant Base32 secret
// codec and the otpauth:// provisioning URI format.
//
// Only one variant is supported: HMAC-SHA1 with a configurable number of
// digits (default 6) and period (default 30 seconds). The counter is always
// encoded as an unsigned 64-bit big-endian integer.
//
// Both the server and the terminal client compute codes and countdowns
// through this package; there is no second implementation.
package totp
