// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

const minAdminPasswordLength = 6

// validate checks that the final merged [StructuredConfig] satisfies all
// server invariants before it is used at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.App.TokenSignKey == "" || cfg.App.TokenIssuer == "" || cfg.App.TokenDuration <= 0 {
		return fmt.Errorf("%w: token sign key, issuer and duration are required", ErrInvalidAppConfigs)
	}
	if cfg.App.AdminPassword != "" && len(cfg.App.AdminPassword) < minAdminPasswordLength {
		return fmt.Errorf("%w: admin password must have at least %d characters", ErrInvalidAppConfigs, minAdminPasswordLength)
	}

	if cfg.TOTP.Digits < 6 || cfg.TOTP.Digits > 10 {
		return fmt.Errorf("%w: digits must be between 6 and 10", ErrInvalidTOTPConfigs)
	}
	if cfg.TOTP.Period < time.Second || cfg.TOTP.Period%time.Second != 0 {
		return fmt.Errorf("%w: period must be a whole number of seconds", ErrInvalidTOTPConfigs)
	}

	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: dsn is required", ErrInvalidStorageConfigs)
	}
	if cfg.Storage.DB.Driver != DriverPostgres && cfg.Storage.DB.Driver != DriverSQLite {
		return fmt.Errorf("%w: unknown driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return fmt.Errorf("%w: http address and request timeout are required", ErrInvalidServerConfigs)
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.RefreshInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
