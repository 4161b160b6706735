// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package access

import (
	"github.com/samber/lo"

	"github.com/MKhiriev/go-otp-keeper/models"
)

const (
	OpRead         = "read"
	OpRevealSecret = "reveal the secret of"
	OpModifyCore   = "modify"
	OpModifyRemark = "change the remark on"
	OpDelete       = "delete"
	OpShare        = "share"
	OpUnshare      = "unshare"
)

// Policy evaluates access rules for accounts. The zero value is ready to use.
type Policy struct{}

// NewPolicy returns a Policy.
func NewPolicy() *Policy {
	return &Policy{}
}

func (p *Policy) CanRead(viewer models.Viewer, account models.Account) bool {
	return isOwner(viewer, account) || isSharedWith(viewer.UserID, account)
}

func (p *Policy) CanRevealSecret(viewer models.Viewer, account models.Account) bool {
	return p.CanRead(viewer, account)
}

func (p *Policy) CanModifyCore(viewer models.Viewer, account models.Account) bool {
	return isOwner(viewer, account)
}

func (p *Policy) CanModifyOwnRemark(viewer models.Viewer, account models.Account) bool {
	return p.CanRead(viewer, account)
}

func (p *Policy) CanDelete(viewer models.Viewer, account models.Account) bool {
	return isOwner(viewer, account)
}

// CanShare reports whether viewer may grant target access to account.
// Only the owner may share, never with themselves, never twice with the same
// user and never with an administrator.
func (p *Policy) CanShare(viewer models.Viewer, account models.Account, target models.User) bool {
	return p.shareReason(viewer, account, target) == nil
}

func (p *Policy) CanUnshare(viewer models.Viewer, account models.Account) bool {
	return isOwner(viewer, account)
}

// authorize returns nil when allowed is true and a *DeniedError for op
// otherwise.
func (p *Policy) authorize(allowed bool, op string, viewer models.Viewer, account models.Account) error {
	if allowed {
		return nil
	}
	return &DeniedError{Operation: op, UserID: viewer.UserID, AccountID: account.ID}
}

func (p *Policy) AuthorizeRead(viewer models.Viewer, account models.Account) error {
	return p.authorize(p.CanRead(viewer, account), OpRead, viewer, account)
}

func (p *Policy) AuthorizeRevealSecret(viewer models.Viewer, account models.Account) error {
	return p.authorize(p.CanRevealSecret(viewer, account), OpRevealSecret, viewer, account)
}

func (p *Policy) AuthorizeModifyCore(viewer models.Viewer, account models.Account) error {
	return p.authorize(p.CanModifyCore(viewer, account), OpModifyCore, viewer, account)
}

func (p *Policy) AuthorizeModifyOwnRemark(viewer models.Viewer, account models.Account) error {
	return p.authorize(p.CanModifyOwnRemark(viewer, account), OpModifyRemark, viewer, account)
}

func (p *Policy) AuthorizeDelete(viewer models.Viewer, account models.Account) error {
	return p.authorize(p.CanDelete(viewer, account), OpDelete, viewer, account)
}

func (p *Policy) AuthorizeUnshare(viewer models.Viewer, account models.Account) error {
	return p.authorize(p.CanUnshare(viewer, account), OpUnshare, viewer, account)
}

// AuthorizeShare is CanShare returning the rule that failed. A non-owner
// gets a plain denial; the owner gets a denial that also matches
// ErrShareTargetIsOwner, ErrAlreadyShared or ErrShareTargetIsAdmin.
func (p *Policy) AuthorizeShare(viewer models.Viewer, account models.Account, target models.User) error {
	reason := p.shareReason(viewer, account, target)
	if reason == nil {
		return nil
	}

	denied := &DeniedError{Operation: OpShare, UserID: viewer.UserID, AccountID: account.ID}
	if reason != ErrAccessDenied {
		denied.Reason = reason
	}
	return denied
}

func (p *Policy) shareReason(viewer models.Viewer, account models.Account, target models.User) error {
	switch {
	case !isOwner(viewer, account):
		return ErrAccessDenied
	case target.UserID == account.OwnerID:
		return ErrShareTargetIsOwner
	case isSharedWith(target.UserID, account):
		return ErrAlreadyShared
	case target.IsAdmin():
		return ErrShareTargetIsAdmin
	default:
		return nil
	}
}

// EffectiveRemark returns the remark viewer attached to account, or "".
func EffectiveRemark(account models.Account, viewer models.Viewer) string {
	return account.RemarksByViewer[viewer.UserID]
}

// Visible narrows accounts down to those viewer may read.
func (p *Policy) Visible(viewer models.Viewer, accounts []models.Account) []models.Account {
	return lo.Filter(accounts, func(account models.Account, _ int) bool {
		return p.CanRead(viewer, account)
	})
}

// NormalizeSharedWith removes duplicates and the owner from a share list.
func NormalizeSharedWith(ownerID int64, sharedWith []int64) []int64 {
	return lo.Without(lo.Uniq(sharedWith), ownerID)
}

func isOwner(viewer models.Viewer, account models.Account) bool {
	return viewer.UserID == account.OwnerID
}

func isSharedWith(userID int64, account models.Account) bool {
	return lo.Contains(account.SharedWith, userID)
}
