package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/MKhiriev/go-otp-keeper/internal/clock"
	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/internal/mock"
	"github.com/MKhiriev/go-otp-keeper/internal/store"
	"github.com/MKhiriev/go-otp-keeper/internal/validators"
	"github.com/MKhiriev/go-otp-keeper/models"
)

func newUserService(t *testing.T) (UserService, *mock.MockUserRepository) {
	t.Helper()
	ctrl := gomock.NewController(t)
	users := mock.NewMockUserRepository(ctrl)

	validator, err := validators.NewStructValidator()
	require.NoError(t, err)

	return NewUserService(users, validator, clock.NewFixed(30), logger.Nop()), users
}

func TestUserService_CreateUser(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()

	users.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, user models.User) (models.User, error) {
			assert.Empty(t, user.Password, "plaintext must not reach the repository")
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))
			assert.Equal(t, models.RoleUser, user.Role, "empty role defaults to user")
			assert.Equal(t, testNow, user.CreatedAt)
			user.UserID = 10
			return user, nil
		},
	)

	created, err := svc.CreateUser(ctx, models.User{Login: "bob", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, int64(10), created.UserID)
	assert.Empty(t, created.PasswordHash)
}

func TestUserService_CreateUser_Invalid(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, models.User{Login: "bo", Password: "123"})
	require.ErrorIs(t, err, validators.ErrInvalidInput)

	var fields validators.ValidationError
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "login")
	assert.Contains(t, fields, "password")

	_, err = svc.CreateUser(ctx, models.User{Login: "bob", Password: "hunter22", Role: "root"})
	assert.ErrorIs(t, err, validators.ErrInvalidInput)
}

func TestUserService_CreateUser_Duplicate(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()

	users.EXPECT().CreateUser(ctx, gomock.Any()).Return(models.User{}, store.ErrLoginAlreadyExists)

	_, err := svc.CreateUser(ctx, models.User{Login: "bob", Password: "hunter22"})
	assert.ErrorIs(t, err, store.ErrLoginAlreadyExists)
}

func TestUserService_GetUser(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()

	users.EXPECT().FindUserByID(ctx, int64(5)).Return(models.User{}, store.ErrNoUserWasFound)
	_, err := svc.GetUser(ctx, 5)
	assert.ErrorIs(t, err, ErrUserNotFound)

	users.EXPECT().FindUserByID(ctx, int64(6)).Return(models.User{UserID: 6, PasswordHash: "x"}, nil)
	user, err := svc.GetUser(ctx, 6)
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
}

func TestUserService_ListUsers_StripsHashes(t *testing.T) {
	svc, users := newUserService(t)
	ctx := context.Background()

	users.EXPECT().ListUsers(ctx).Return([]models.User{
		{UserID: 1, Login: "admin", PasswordHash: "h1", Role: models.RoleAdmin},
		{UserID: 2, Login: "bob", PasswordHash: "h2", Role: models.RoleUser},
	}, nil)

	list, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, u := range list {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	bob := storedUser(t, 2, "bob", "hunter22", models.RoleUser)

	t.Run("own password with current one", func(t *testing.T) {
		svc, users := newUserService(t)
		users.EXPECT().FindUserByID(ctx, int64(2)).Return(bob, nil)
		users.EXPECT().UpdatePasswordHash(ctx, int64(2), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ int64, hash string) error {
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct-horse")))
				return nil
			},
		)

		err := svc.ChangePassword(ctx, models.Viewer{UserID: 2, Role: models.RoleUser}, models.ChangePasswordRequest{
			UserID: 2, CurrentPassword: "hunter22", NewPassword: "correct-horse",
		})
		require.NoError(t, err)
	})

	t.Run("own password with wrong current one", func(t *testing.T) {
		svc, users := newUserService(t)
		users.EXPECT().FindUserByID(ctx, int64(2)).Return(bob, nil)

		err := svc.ChangePassword(ctx, models.Viewer{UserID: 2, Role: models.RoleUser}, models.ChangePasswordRequest{
			UserID: 2, CurrentPassword: "nope", NewPassword: "correct-horse",
		})
		assert.ErrorIs(t, err, ErrWrongPassword)
	})

	t.Run("administrator resets someone else", func(t *testing.T) {
		svc, users := newUserService(t)
		users.EXPECT().FindUserByID(ctx, int64(2)).Return(bob, nil)
		users.EXPECT().UpdatePasswordHash(ctx, int64(2), gomock.Any()).Return(nil)

		err := svc.ChangePassword(ctx, models.Viewer{UserID: 1, Role: models.RoleAdmin}, models.ChangePasswordRequest{
			UserID: 2, NewPassword: "correct-horse",
		})
		require.NoError(t, err)
	})

	t.Run("user cannot touch someone else", func(t *testing.T) {
		svc, _ := newUserService(t)

		err := svc.ChangePassword(ctx, models.Viewer{UserID: 3, Role: models.RoleUser}, models.ChangePasswordRequest{
			UserID: 2, NewPassword: "correct-horse",
		})
		assert.ErrorIs(t, err, ErrAdminOnly)
	})

	t.Run("too short", func(t *testing.T) {
		svc, _ := newUserService(t)

		err := svc.ChangePassword(ctx, models.Viewer{UserID: 2, Role: models.RoleUser}, models.ChangePasswordRequest{
			UserID: 2, CurrentPassword: "hunter22", NewPassword: "abc",
		})
		assert.ErrorIs(t, err, validators.ErrInvalidInput)
	})
}

func TestUserService_DeleteUser(t *testing.T) {
	ctx := context.Background()
	admin := models.Viewer{UserID: 1, Role: models.RoleAdmin}

	svc, users := newUserService(t)

	assert.ErrorIs(t, svc.DeleteUser(ctx, models.Viewer{UserID: 2, Role: models.RoleUser}, 3), ErrAdminOnly)
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin, 1), ErrCannotDeleteSelf)

	users.EXPECT().DeleteUser(ctx, int64(9)).Return(store.ErrNoUserWasFound)
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin, 9), ErrUserNotFound)

	users.EXPECT().DeleteUser(ctx, int64(2)).Return(nil)
	assert.NoError(t, svc.DeleteUser(ctx, admin, 2))
}

func TestUserService_BootstrapAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates missing administrator", func(t *testing.T) {
		svc, users := newUserService(t)
		users.EXPECT().FindUserByLogin(ctx, "admin").Return(models.User{}, store.ErrNoUserWasFound)
		users.EXPECT().CreateUser(ctx, gomock.Any()).DoAndReturn(
			func(_ context.Context, user models.User) (models.User, error) {
				assert.Equal(t, models.RoleAdmin, user.Role)
				user.UserID = 1
				return user, nil
			},
		)

		require.NoError(t, svc.BootstrapAdmin(ctx, "admin", "change-me"))
	})

	t.Run("existing administrator is left alone", func(t *testing.T) {
		svc, users := newUserService(t)
		users.EXPECT().FindUserByLogin(ctx, "admin").Return(models.User{UserID: 1}, nil)

		require.NoError(t, svc.BootstrapAdmin(ctx, "admin", "change-me"))
	})

	t.Run("concurrent creation is tolerated", func(t *testing.T) {
		svc, users := newUserService(t)
		users.EXPECT().FindUserByLogin(ctx, "admin").Return(models.User{}, store.ErrNoUserWasFound)
		users.EXPECT().CreateUser(ctx, gomock.Any()).Return(models.User{}, store.ErrLoginAlreadyExists)

		require.NoError(t, svc.BootstrapAdmin(ctx, "admin", "change-me"))
	})
}
