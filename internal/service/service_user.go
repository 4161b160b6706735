package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-otp-keeper/internal/clock"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/store"
	"github.com/MKhiriev/go-otp-keeper/internal/validators"
	"github.com/MKhiriev/go-otp-keeper/models"
)

type userService struct {
	userRepository store.UserRepository
	validator      validators.Validator
	clock          clock.Clock

	logger *logger.Logger
}

// NewUserService constructs a [UserService].
func NewUserService(userRepository store.UserRepository, validator validators.Validator, clk clock.Clock, logger *logger.Logger) UserService {
	return &userService{
		userRepository: userRepository,
		validator:      validator,
		clock:          clk,
		logger:         logger,
	}
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepository.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	return lo.Map(users, func(user models.User, _ int) models.User {
		return user.Public()
	}), nil
}

func (s *userService) GetUser(ctx context.Context, userID int64) (models.User, error) {
	user, err := s.userRepository.FindUserByID(ctx, userID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("error finding user: %w", err)
	}

	return user.Public(), nil
}

// CreateUser validates the user, hashes the password and stores it. An empty
// role becomes [models.RoleUser].
func (s *userService) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if err := s.validator.Validate(ctx, user); err != nil {
		return models.User{}, err
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	hash, err := hashPassword(user.Password)
	if err != nil {
		return models.User{}, err
	}
	user.Password = ""
	user.PasswordHash = hash
	user.CreatedAt = s.clock.Now().UTC()

	created, err := s.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("func", "*userService.CreateUser").Str("login", user.Login).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	log.Info().Str("func", "*userService.CreateUser").Int64("user_id", created.UserID).Str("role", string(created.Role)).Msg("user created")
	return created.Public(), nil
}

// ChangePassword sets a new password. Changing one's own password requires
// the current one; an administrator may reset anyone else's.
func (s *userService) ChangePassword(ctx context.Context, viewer models.Viewer, req models.ChangePasswordRequest) error {
	if err := s.validator.Validate(ctx, req); err != nil {
		return err
	}

	self := viewer.UserID == req.UserID
	if !self && !viewer.IsAdmin() {
		return ErrAdminOnly
	}

	user, err := s.userRepository.FindUserByID(ctx, req.UserID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("error finding user: %w", err)
	}

	if self {
		if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return ErrWrongPassword
		}
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err = s.userRepository.UpdatePasswordHash(ctx, req.UserID, hash); err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("error updating password: %w", err)
	}

	logger.FromContext(ctx).Info().Str("func", "*userService.ChangePassword").Int64("user_id", req.UserID).Int64("by", viewer.UserID).Msg("password changed")
	return nil
}

// DeleteUser removes a user with all accounts they own and every share they
// hold. An administrator cannot remove themselves.
func (s *userService) DeleteUser(ctx context.Context, viewer models.Viewer, userID int64) error {
	if !viewer.IsAdmin() {
		return ErrAdminOnly
	}
	if viewer.UserID == userID {
		return ErrCannotDeleteSelf
	}

	if err := s.userRepository.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, store.ErrNoUserWasFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("error deleting user: %w", err)
	}

	return nil
}

func (s *userService) BootstrapAdmin(ctx context.Context, login, password string) error {
	log := logger.FromContext(ctx)

	_, err := s.userRepository.FindUserByLogin(ctx, login)
	if err == nil {
		log.Debug().Str("func", "*userService.BootstrapAdmin").Str("login", login).Msg("administrator already exists")
		return nil
	}
	if !errors.Is(err, store.ErrNoUserWasFound) {
		return fmt.Errorf("error looking up administrator: %w", err)
	}

	_, err = s.CreateUser(ctx, models.User{Login: login, Password: password, Role: models.RoleAdmin})
	if errors.Is(err, store.ErrLoginAlreadyExists) {
		// another instance created it in the meantime
		return nil
	}
	if err != nil {
		return fmt.Errorf("error creating administrator: %w", err)
	}

	log.Info().Str("func", "*userService.BootstrapAdmin").Str("login", login).Msg("administrator created")
	return nil
}
