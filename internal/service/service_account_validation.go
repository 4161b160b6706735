package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-otp-keeper/internal/validators"
	"github.com/MKhiriev/go-otp-keeper/models"
)

// AccountServiceWrapper defines middleware composition for AccountService.
// Implementations wrap an existing AccountService to add behavior such as
// logging or validating.
type AccountServiceWrapper interface {
	Wrap(AccountService) AccountService // returns a decorated AccountService applying additional behavior
}

// AccountValidationService validates request bodies before handing them to
// the wrapped AccountService. Reads pass straight through.
type AccountValidationService struct {
	inner     AccountService
	validator validators.Validator
}

func NewAccountValidationService(validator validators.Validator) AccountServiceWrapper {
	return &AccountValidationService{
		validator: validator,
	}
}

func (v *AccountValidationService) Wrap(inner AccountService) AccountService {
	v.inner = inner
	return v
}

func (v *AccountValidationService) ListAccounts(ctx context.Context, viewer models.Viewer) ([]models.AccountView, error) {
	return v.inner.ListAccounts(ctx, viewer)
}

func (v *AccountValidationService) GetAccount(ctx context.Context, viewer models.Viewer, accountID string) (models.AccountView, error) {
	return v.inner.GetAccount(ctx, viewer, accountID)
}

func (v *AccountValidationService) GetCode(ctx context.Context, viewer models.Viewer, accountID string) (models.Code, error) {
	return v.inner.GetCode(ctx, viewer, accountID)
}

func (v *AccountValidationService) RevealSecret(ctx context.Context, viewer models.Viewer, accountID string) (models.SecretView, error) {
	return v.inner.RevealSecret(ctx, viewer, accountID)
}

func (v *AccountValidationService) CreateAccount(ctx context.Context, viewer models.Viewer, req models.CreateAccountRequest) (models.AccountView, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.AccountView{}, fmt.Errorf("error validating account: %w", err)
	}
	return v.inner.CreateAccount(ctx, viewer, req)
}

func (v *AccountValidationService) ImportAccount(ctx context.Context, viewer models.Viewer, req models.ImportAccountRequest) (models.AccountView, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.AccountView{}, fmt.Errorf("error validating import: %w", err)
	}
	return v.inner.ImportAccount(ctx, viewer, req)
}

func (v *AccountValidationService) GenerateSecret(ctx context.Context, viewer models.Viewer, req models.GenerateSecretRequest) (models.ProvisioningKey, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.ProvisioningKey{}, fmt.Errorf("error validating secret request: %w", err)
	}
	return v.inner.GenerateSecret(ctx, viewer, req)
}

func (v *AccountValidationService) UpdateAccount(ctx context.Context, viewer models.Viewer, accountID string, req models.UpdateAccountRequest) (models.AccountView, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.AccountView{}, fmt.Errorf("error validating account update: %w", err)
	}
	return v.inner.UpdateAccount(ctx, viewer, accountID, req)
}

func (v *AccountValidationService) UpdateRemark(ctx context.Context, viewer models.Viewer, accountID string, req models.RemarkRequest) (models.AccountView, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.AccountView{}, fmt.Errorf("error validating remark: %w", err)
	}
	return v.inner.UpdateRemark(ctx, viewer, accountID, req)
}

func (v *AccountValidationService) DeleteAccount(ctx context.Context, viewer models.Viewer, accountID string) error {
	return v.inner.DeleteAccount(ctx, viewer, accountID)
}

func (v *AccountValidationService) ShareAccount(ctx context.Context, viewer models.Viewer, accountID string, req models.ShareRequest) (models.AccountView, error) {
	if err := v.validator.Validate(ctx, req); err != nil {
		return models.AccountView{}, fmt.Errorf("error validating share: %w", err)
	}
	return v.inner.ShareAccount(ctx, viewer, accountID, req)
}

func (v *AccountValidationService) UnshareAccount(ctx context.Context, viewer models.Viewer, accountID string, userID int64) (models.AccountView, error) {
	if userID <= 0 {
		return models.AccountView{}, fmt.Errorf("%w: user id must be positive", ErrInvalidDataProvided)
	}
	return v.inner.UnshareAccount(ctx, viewer, accountID, userID)
}
