package service

import (
	"fmt"

	"github.com/MKhiriev/go-otp-keeper/internal/clock"
	"github.com/MKhiriev/go-otp-keeper/internal/config"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/store"
	"github.com/MKhiriev/go-otp-keeper/internal/totp"
	"github.com/MKhiriev/go-otp-keeper/internal/utils"
	"github.com/MKhiriev/go-otp-keeper/internal/validators"
)

type Services struct {
	AuthService       AuthService
	UserService       UserService
	AccountService    AccountService
	PermissionService PermissionService
	AppInfoService    AppInfoService
}

func NewServices(repositories *store.Repositories, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	validator, err := validators.NewStructValidator()
	if err != nil {
		return nil, fmt.Errorf("error creating validator: %w", err)
	}

	generator, err := totp.NewGenerator(cfg.TOTP.Digits, int(cfg.TOTP.Period.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("error creating code generator: %w", err)
	}

	permissions, err := NewPermissionService(logger)
	if err != nil {
		return nil, err
	}

	appInfo, err := NewAppInfoService(cfg.App, logger)
	if err != nil {
		return nil, err
	}

	clk := clock.New()
	accounts := NewAccountService(
		repositories.AccountRepository,
		repositories.UserRepository,
		generator,
		clk,
		utils.NewUUIDGenerator(),
		logger,
	)

	return &Services{
		AuthService:       NewAuthService(repositories.UserRepository, cfg.App, logger),
		UserService:       NewUserService(repositories.UserRepository, validator, clk, logger),
		AccountService:    NewAccountValidationService(validator).Wrap(accounts),
		PermissionService: permissions,
		AppInfoService:    appInfo,
	}, nil
}
