package access

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-otp-keeper/models"
)

var (
	owner    = models.Viewer{UserID: 1, Role: models.RoleAdmin}
	shared   = models.Viewer{UserID: 2, Role: models.RoleUser}
	stranger = models.Viewer{UserID: 3, Role: models.RoleUser}
	admin    = models.Viewer{UserID: 4, Role: models.RoleAdmin}
)

func testAccount() models.Account {
	return models.Account{
		ID:         "0190a6e4-0000-7000-8000-000000000001",
		OwnerID:    owner.UserID,
		Name:       "alice",
		Issuer:     "GitHub",
		Secret:     "JBSWY3DPEHPK3PXP",
		SharedWith: []int64{shared.UserID},
		RemarksByViewer: map[int64]string{
			owner.UserID:  "main",
			shared.UserID: "borrowed",
		},
	}
}

// ── predicate matrix ─────────────────────────────────────────────────────────

func TestPolicy_Predicates(t *testing.T) {
	p := NewPolicy()
	account := testAccount()

	tests := []struct {
		name   string
		viewer models.Viewer
		read   bool
		reveal bool
		core   bool
		remark bool
		delete bool
		unshar bool
	}{
		{name: "owner", viewer: owner, read: true, reveal: true, core: true, remark: true, delete: true, unshar: true},
		{name: "shared viewer", viewer: shared, read: true, reveal: true, remark: true},
		{name: "stranger", viewer: stranger},
		{name: "admin without grant", viewer: admin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.read, p.CanRead(tt.viewer, account))
			assert.Equal(t, tt.reveal, p.CanRevealSecret(tt.viewer, account))
			assert.Equal(t, tt.core, p.CanModifyCore(tt.viewer, account))
			assert.Equal(t, tt.remark, p.CanModifyOwnRemark(tt.viewer, account))
			assert.Equal(t, tt.delete, p.CanDelete(tt.viewer, account))
			assert.Equal(t, tt.unshar, p.CanUnshare(tt.viewer, account))
		})
	}
}

func TestPolicy_Authorize(t *testing.T) {
	p := NewPolicy()
	account := testAccount()

	require.NoError(t, p.AuthorizeRead(shared, account))
	require.NoError(t, p.AuthorizeRevealSecret(shared, account))
	require.NoError(t, p.AuthorizeModifyOwnRemark(shared, account))
	require.NoError(t, p.AuthorizeModifyCore(owner, account))
	require.NoError(t, p.AuthorizeDelete(owner, account))
	require.NoError(t, p.AuthorizeUnshare(owner, account))

	checks := map[string]error{
		OpRead:         p.AuthorizeRead(stranger, account),
		OpRevealSecret: p.AuthorizeRevealSecret(stranger, account),
		OpModifyRemark: p.AuthorizeModifyOwnRemark(stranger, account),
		OpModifyCore:   p.AuthorizeModifyCore(shared, account),
		OpDelete:       p.AuthorizeDelete(shared, account),
		OpUnshare:      p.AuthorizeUnshare(shared, account),
	}
	for op, err := range checks {
		require.Error(t, err, op)
		assert.ErrorIs(t, err, ErrAccessDenied, op)

		var denied *DeniedError
		require.True(t, errors.As(err, &denied), op)
		assert.Equal(t, op, denied.Operation)
		assert.Equal(t, account.ID, denied.AccountID)
	}
}

// ── share rules ──────────────────────────────────────────────────────────────

func TestPolicy_Share(t *testing.T) {
	p := NewPolicy()
	account := testAccount()

	tests := []struct {
		name       string
		viewer     models.Viewer
		target     models.User
		allowed    bool
		wantReason error
	}{
		{name: "owner shares with new user", viewer: owner, target: models.User{UserID: stranger.UserID, Role: models.RoleUser}, allowed: true},
		{name: "non-owner cannot share", viewer: shared, target: models.User{UserID: stranger.UserID, Role: models.RoleUser}},
		{name: "stranger cannot share", viewer: stranger, target: models.User{UserID: 5, Role: models.RoleUser}},
		{name: "not with the owner", viewer: owner, target: models.User{UserID: owner.UserID, Role: models.RoleAdmin}, wantReason: ErrShareTargetIsOwner},
		{name: "not twice", viewer: owner, target: models.User{UserID: shared.UserID, Role: models.RoleUser}, wantReason: ErrAlreadyShared},
		{name: "not with an admin", viewer: owner, target: models.User{UserID: admin.UserID, Role: models.RoleAdmin}, wantReason: ErrShareTargetIsAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, p.CanShare(tt.viewer, account, tt.target))

			err := p.AuthorizeShare(tt.viewer, account, tt.target)
			if tt.allowed {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAccessDenied)
			if tt.wantReason != nil {
				assert.ErrorIs(t, err, tt.wantReason)
			} else {
				assert.NotErrorIs(t, err, ErrAlreadyShared)
				assert.NotErrorIs(t, err, ErrShareTargetIsAdmin)
			}
		})
	}
}

// TestPolicy_NonOwnerLearnsNothingAboutTarget checks that a viewer who may
// not share gets the same denial whether or not the target is already shared.
func TestPolicy_NonOwnerLearnsNothingAboutTarget(t *testing.T) {
	p := NewPolicy()
	account := testAccount()

	errExisting := p.AuthorizeShare(shared, account, models.User{UserID: shared.UserID, Role: models.RoleUser})
	errNew := p.AuthorizeShare(shared, account, models.User{UserID: 9, Role: models.RoleUser})

	assert.NotErrorIs(t, errExisting, ErrAlreadyShared)
	assert.Nil(t, errors.Unwrap(errExisting))
	assert.Nil(t, errors.Unwrap(errNew))
}

// ── remarks & helpers ────────────────────────────────────────────────────────

func TestEffectiveRemark(t *testing.T) {
	account := testAccount()

	assert.Equal(t, "main", EffectiveRemark(account, owner))
	assert.Equal(t, "borrowed", EffectiveRemark(account, shared))
	assert.Equal(t, "", EffectiveRemark(account, stranger))
	assert.Equal(t, "", EffectiveRemark(models.Account{}, owner))
}

func TestPolicy_Visible(t *testing.T) {
	p := NewPolicy()
	mine := testAccount()
	other := models.Account{ID: "other", OwnerID: 7}

	assert.Equal(t, []models.Account{mine}, p.Visible(shared, []models.Account{mine, other}))
	assert.Empty(t, p.Visible(stranger, []models.Account{mine, other}))
}

func TestNormalizeSharedWith(t *testing.T) {
	assert.Equal(t, []int64{2, 3}, NormalizeSharedWith(1, []int64{2, 1, 3, 2, 1}))
	assert.Empty(t, NormalizeSharedWith(1, nil))
}
