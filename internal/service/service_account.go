// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/MKhiriev/go-otp-keeper/internal/access"
	"github.com/MKhiriev/go-otp-keeper/internal/clock"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/store"
	"github.com/MKhiriev/go-otp-keeper/internal/totp"
	"github.com/MKhiriev/go-otp-keeper/models"
)

// accountService is the concrete implementation of [AccountService].
//
// Every operation loads the account first and asks the access policy before
// touching it. Codes are always computed from the clock at call time.
type accountService struct {
	accountRepository store.AccountRepository
	userRepository    store.UserRepository

	policy    *access.Policy
	generator *totp.Generator
	clock     clock.Clock
	ids       IDGenerator

	logger *logger.Logger
}

// NewAccountService constructs an [AccountService].
func NewAccountService(
	accountRepository store.AccountRepository,
	userRepository store.UserRepository,
	generator *totp.Generator,
	clk clock.Clock,
	ids IDGenerator,
	logger *logger.Logger,
) AccountService {
	return &accountService{
		accountRepository: accountRepository,
		userRepository:    userRepository,
		policy:            access.NewPolicy(),
		generator:         generator,
		clock:             clk,
		ids:               ids,
		logger:            logger,
	}
}

// ── reads ────────────────────────────────────────────────────────────────────

func (s *accountService) ListAccounts(ctx context.Context, viewer models.Viewer) ([]models.AccountView, error) {
	accounts, err := s.accountRepository.ListAccountsForUser(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("error listing accounts: %w", err)
	}

	now := s.clock.Now()
	views := make([]models.AccountView, 0, len(accounts))
	for _, account := range s.policy.Visible(viewer, accounts) {
		view, err := s.view(viewer, account, now)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *accountService) GetAccount(ctx context.Context, viewer models.Viewer, accountID string) (models.AccountView, error) {
	account, err := s.load(ctx, viewer, accountID, s.policy.AuthorizeRead)
	if err != nil {
		return models.AccountView{}, err
	}

	return s.view(viewer, account, s.clock.Now())
}

func (s *accountService) GetCode(ctx context.Context, viewer models.Viewer, accountID string) (models.Code, error) {
	account, err := s.load(ctx, viewer, accountID, s.policy.AuthorizeRead)
	if err != nil {
		return models.Code{}, err
	}

	return s.code(account, s.clock.Now())
}

// RevealSecret returns the stored secret with its otpauth URI. Every reveal
// is logged.
func (s *accountService) RevealSecret(ctx context.Context, viewer models.Viewer, accountID string) (models.SecretView, error) {
	account, err := s.load(ctx, viewer, accountID, s.policy.AuthorizeRevealSecret)
	if err != nil {
		return models.SecretView{}, err
	}

	code, err := s.code(account, s.clock.Now())
	if err != nil {
		return models.SecretView{}, err
	}

	logger.FromContext(ctx).Info().
		Str("func", "*accountService.RevealSecret").
		Str("account_id", account.ID).
		Int64("user_id", viewer.UserID).
		Msg("secret revealed")

	return models.SecretView{
		ID:     account.ID,
		Name:   account.Name,
		Issuer: account.Issuer,
		Secret: account.Secret,
		URI:    s.generator.URI(account.Issuer, account.Name, account.Secret),
		Code:   code,
	}, nil
}

// ── creation ─────────────────────────────────────────────────────────────────

func (s *accountService) CreateAccount(ctx context.Context, viewer models.Viewer, req models.CreateAccountRequest) (models.AccountView, error) {
	if !viewer.IsAdmin() {
		return models.AccountView{}, ErrAdminOnly
	}

	secret, err := totp.Normalize(req.Secret)
	if err != nil {
		return models.AccountView{}, fmt.Errorf("%w: %w", ErrInvalidTOTPSecret, err)
	}

	return s.create(ctx, viewer, req.Name, req.Issuer, secret, req.Remark)
}

// ImportAccount creates an account from an otpauth:// URI. The URI must use
// the digits and period the server generates codes with.
func (s *accountService) ImportAccount(ctx context.Context, viewer models.Viewer, req models.ImportAccountRequest) (models.AccountView, error) {
	if !viewer.IsAdmin() {
		return models.AccountView{}, ErrAdminOnly
	}

	key, err := totp.ParseURI(req.URI)
	if err != nil {
		return models.AccountView{}, fmt.Errorf("%w: %w", ErrInvalidOTPAuthURI, err)
	}
	if key.Digits != s.generator.Digits() || key.Period != s.generator.Period() {
		return models.AccountView{}, fmt.Errorf("%w: digits=%d period=%d, server uses digits=%d period=%d",
			ErrUnsupportedParameter, key.Digits, key.Period, s.generator.Digits(), s.generator.Period())
	}

	return s.create(ctx, viewer, key.Name, key.Issuer, key.Secret, req.Remark)
}

func (s *accountService) GenerateSecret(ctx context.Context, viewer models.Viewer, req models.GenerateSecretRequest) (models.ProvisioningKey, error) {
	if !viewer.IsAdmin() {
		return models.ProvisioningKey{}, ErrAdminOnly
	}

	name, issuer := strings.TrimSpace(req.Name), strings.TrimSpace(req.Issuer)
	secret, err := s.generator.NewSecret(issuer, name)
	if err != nil {
		return models.ProvisioningKey{}, fmt.Errorf("error generating secret: %w", err)
	}

	return models.ProvisioningKey{
		Issuer: issuer,
		Name:   name,
		Secret: secret,
		Digits: s.generator.Digits(),
		Period: s.generator.Period(),
		URI:    s.generator.URI(issuer, name, secret),
	}, nil
}

func (s *accountService) create(ctx context.Context, viewer models.Viewer, name, issuer, secret, remark string) (models.AccountView, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return models.AccountView{}, fmt.Errorf("%w: account name is empty", ErrInvalidDataProvided)
	}

	now := s.clock.Now().UTC()
	account := models.Account{
		ID:              s.ids.Generate(),
		OwnerID:         viewer.UserID,
		Name:            name,
		Issuer:          strings.TrimSpace(issuer),
		Secret:          secret,
		SharedWith:      []int64{},
		RemarksByViewer: map[int64]string{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if remark = strings.TrimSpace(remark); remark != "" {
		account.RemarksByViewer[viewer.UserID] = remark
	}

	if err := s.accountRepository.CreateAccount(ctx, account); err != nil {
		log.Err(err).Str("func", "*accountService.create").Int64("owner_id", viewer.UserID).Msg("account creation failed")
		return models.AccountView{}, fmt.Errorf("error creating account: %w", err)
	}

	return s.view(viewer, account, now)
}

// ── changes ──────────────────────────────────────────────────────────────────

// UpdateAccount applies core-field changes (owner only) and the caller's
// remark in one transaction. Nothing is written if any part is denied.
func (s *accountService) UpdateAccount(ctx context.Context, viewer models.Viewer, accountID string, req models.UpdateAccountRequest) (models.AccountView, error) {
	if !req.ChangesCore() && req.Remark == nil {
		return models.AccountView{}, fmt.Errorf("%w: nothing to update", ErrInvalidDataProvided)
	}

	authorize := s.policy.AuthorizeModifyOwnRemark
	if req.ChangesCore() {
		authorize = s.policy.AuthorizeModifyCore
	}
	account, err := s.load(ctx, viewer, accountID, authorize)
	if err != nil {
		return models.AccountView{}, err
	}

	update := models.AccountUpdate{
		AccountID: account.ID,
		ViewerID:  viewer.UserID,
		UpdatedAt: s.clock.Now().UTC(),
	}
	if req.Issuer != nil {
		update.Issuer = lo.ToPtr(strings.TrimSpace(*req.Issuer))
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return models.AccountView{}, fmt.Errorf("%w: account name is empty", ErrInvalidDataProvided)
		}
		update.Name = &name
	}
	if req.Secret != nil {
		secret, err := totp.Normalize(*req.Secret)
		if err != nil {
			return models.AccountView{}, fmt.Errorf("%w: %w", ErrInvalidTOTPSecret, err)
		}
		update.Secret = &secret
	}
	if req.Remark != nil {
		update.Remark = lo.ToPtr(strings.TrimSpace(*req.Remark))
	}

	return s.apply(ctx, viewer, update)
}

func (s *accountService) UpdateRemark(ctx context.Context, viewer models.Viewer, accountID string, req models.RemarkRequest) (models.AccountView, error) {
	account, err := s.load(ctx, viewer, accountID, s.policy.AuthorizeModifyOwnRemark)
	if err != nil {
		return models.AccountView{}, err
	}

	return s.apply(ctx, viewer, models.AccountUpdate{
		AccountID: account.ID,
		ViewerID:  viewer.UserID,
		Remark:    lo.ToPtr(strings.TrimSpace(req.Remark)),
		UpdatedAt: s.clock.Now().UTC(),
	})
}

func (s *accountService) apply(ctx context.Context, viewer models.Viewer, update models.AccountUpdate) (models.AccountView, error) {
	if err := s.accountRepository.UpdateAccount(ctx, update); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*accountService.apply").Str("account_id", update.AccountID).Msg("account update failed")
		return models.AccountView{}, fmt.Errorf("error updating account: %w", err)
	}

	return s.reload(ctx, viewer, update.AccountID)
}

// DeleteAccount removes the account with every share grant and remark.
func (s *accountService) DeleteAccount(ctx context.Context, viewer models.Viewer, accountID string) error {
	account, err := s.load(ctx, viewer, accountID, s.policy.AuthorizeDelete)
	if err != nil {
		return err
	}

	if err = s.accountRepository.DeleteAccount(ctx, account.ID); err != nil {
		return fmt.Errorf("error deleting account: %w", err)
	}

	return nil
}

// ── sharing ──────────────────────────────────────────────────────────────────

// ShareAccount grants another user read access. The owner check runs before
// the target is looked up so that non-owners learn nothing about other users.
func (s *accountService) ShareAccount(ctx context.Context, viewer models.Viewer, accountID string, req models.ShareRequest) (models.AccountView, error) {
	log := logger.FromContext(ctx)

	account, err := s.load(ctx, viewer, accountID, func(viewer models.Viewer, account models.Account) error {
		return s.policy.AuthorizeShare(viewer, account, models.User{UserID: req.UserID})
	})
	if err != nil {
		return models.AccountView{}, err
	}

	target, err := s.userRepository.FindUserByID(ctx, req.UserID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.AccountView{}, ErrShareTargetNotFound
	}
	if err != nil {
		return models.AccountView{}, fmt.Errorf("error finding share target: %w", err)
	}

	if err = s.policy.AuthorizeShare(viewer, account, target); err != nil {
		log.Warn().Err(err).Str("func", "*accountService.ShareAccount").Msg("share rejected")
		return models.AccountView{}, err
	}

	err = s.accountRepository.AddShare(ctx, account.ID, target.UserID, s.clock.Now().UTC())
	if errors.Is(err, store.ErrShareAlreadyExists) {
		// lost a race with a concurrent grant for the same user
		return models.AccountView{}, fmt.Errorf("%w: %w", access.ErrAlreadyShared, err)
	}
	if err != nil {
		return models.AccountView{}, fmt.Errorf("error sharing account: %w", err)
	}

	log.Info().Str("func", "*accountService.ShareAccount").Str("account_id", account.ID).Int64("user_id", target.UserID).Msg("account shared")
	return s.reload(ctx, viewer, account.ID)
}

// UnshareAccount revokes a grant. The former viewer's remark goes with it.
func (s *accountService) UnshareAccount(ctx context.Context, viewer models.Viewer, accountID string, userID int64) (models.AccountView, error) {
	account, err := s.load(ctx, viewer, accountID, s.policy.AuthorizeUnshare)
	if err != nil {
		return models.AccountView{}, err
	}

	if err = s.accountRepository.RemoveShare(ctx, account.ID, userID, s.clock.Now().UTC()); err != nil {
		return models.AccountView{}, fmt.Errorf("error unsharing account: %w", err)
	}

	return s.reload(ctx, viewer, account.ID)
}

// ── helpers ──────────────────────────────────────────────────────────────────

type authorizeFunc func(viewer models.Viewer, account models.Account) error

// load fetches the account and runs authorize on it. A denial is logged with
// the failing operation; callers see it as an error matching
// access.ErrAccessDenied.
func (s *accountService) load(ctx context.Context, viewer models.Viewer, accountID string, authorize authorizeFunc) (models.Account, error) {
	log := logger.FromContext(ctx)

	account, err := s.accountRepository.GetAccount(ctx, accountID)
	if err != nil {
		if !errors.Is(err, store.ErrAccountNotFound) {
			log.Err(err).Str("func", "*accountService.load").Str("account_id", accountID).Msg("failed to load account")
		}
		return models.Account{}, fmt.Errorf("error loading account %s: %w", accountID, err)
	}

	if err = authorize(viewer, account); err != nil {
		log.Warn().Err(err).Str("func", "*accountService.load").Str("account_id", accountID).Int64("user_id", viewer.UserID).Msg("access denied")
		return models.Account{}, err
	}

	return account, nil
}

func (s *accountService) reload(ctx context.Context, viewer models.Viewer, accountID string) (models.AccountView, error) {
	account, err := s.accountRepository.GetAccount(ctx, accountID)
	if err != nil {
		return models.AccountView{}, fmt.Errorf("error loading account %s: %w", accountID, err)
	}

	return s.view(viewer, account, s.clock.Now())
}

func (s *accountService) code(account models.Account, now time.Time) (models.Code, error) {
	code, err := s.generator.Code(account.Secret, now)
	if err != nil {
		return models.Code{}, fmt.Errorf("error generating code for account %s: %w", account.ID, err)
	}
	return code, nil
}

// view builds what viewer sees of account: no secret, only their own remark,
// and the share list only when they own it.
func (s *accountService) view(viewer models.Viewer, account models.Account, now time.Time) (models.AccountView, error) {
	code, err := s.code(account, now)
	if err != nil {
		return models.AccountView{}, err
	}

	isOwner := viewer.UserID == account.OwnerID
	view := models.AccountView{
		ID:        account.ID,
		Name:      account.Name,
		Issuer:    account.Issuer,
		OwnerID:   account.OwnerID,
		IsOwner:   isOwner,
		Remark:    access.EffectiveRemark(account, viewer),
		Code:      code,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
	if isOwner {
		view.SharedWith = access.NormalizeSharedWith(account.OwnerID, account.SharedWith)
	}

	return view, nil
}
