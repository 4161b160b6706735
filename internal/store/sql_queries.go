// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-otp-keeper/models"
)

const (
	usersTable    = "users"
	accountsTable = "accounts"
	sharesTable   = "account_shares"
	remarksTable  = "account_remarks"
)

var (
	userColumns    = []string{"user_id", "login", "password_hash", "role", "created_at"}
	accountColumns = []string{"id", "owner_id", "name", "issuer", "secret", "created_at", "updated_at"}
)

// subquery returns the builder for selects embedded with sq.Expr. They keep
// '?' placeholders so the outer statement numbers every argument once.
func subquery() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// ── users ────────────────────────────────────────────────────────────────────

func buildCreateUserQuery(b sq.StatementBuilderType, user models.User) (string, []any, error) {
	return b.Insert(usersTable).
		Columns("login", "password_hash", "role", "created_at").
		Values(user.Login, user.PasswordHash, string(user.Role), user.CreatedAt).
		Suffix("RETURNING user_id, login, password_hash, role, created_at").
		ToSql()
}

func buildFindUserQuery(b sq.StatementBuilderType, where sq.Eq) (string, []any, error) {
	return b.Select(userColumns...).From(usersTable).Where(where).ToSql()
}

func buildListUsersQuery(b sq.StatementBuilderType) (string, []any, error) {
	return b.Select(userColumns...).From(usersTable).OrderBy("user_id").ToSql()
}

func buildUpdatePasswordQuery(b sq.StatementBuilderType, userID int64, passwordHash string) (string, []any, error) {
	return b.Update(usersTable).
		Set("password_hash", passwordHash).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
}

// buildDeleteUserQueries returns the statements that remove a user together
// with every account they own and every grant or remark that mentions them,
// children first.
func buildDeleteUserQueries(b sq.StatementBuilderType, userID int64) []sq.Sqlizer {
	owned := subquery().Select("id").From(accountsTable).Where(sq.Eq{"owner_id": userID})

	return []sq.Sqlizer{
		b.Delete(remarksTable).Where(sq.Or{sq.Eq{"user_id": userID}, sq.Expr("account_id IN (?)", owned)}),
		b.Delete(sharesTable).Where(sq.Or{sq.Eq{"user_id": userID}, sq.Expr("account_id IN (?)", owned)}),
		b.Delete(accountsTable).Where(sq.Eq{"owner_id": userID}),
		b.Delete(usersTable).Where(sq.Eq{"user_id": userID}),
	}
}

// ── accounts ─────────────────────────────────────────────────────────────────

func buildInsertAccountQuery(b sq.StatementBuilderType, account models.Account) (string, []any, error) {
	return b.Insert(accountsTable).
		Columns(accountColumns...).
		Values(account.ID, account.OwnerID, account.Name, account.Issuer, account.Secret, account.CreatedAt, account.UpdatedAt).
		ToSql()
}

func buildSelectAccountQuery(b sq.StatementBuilderType, accountID string) (string, []any, error) {
	return b.Select(accountColumns...).From(accountsTable).Where(sq.Eq{"id": accountID}).ToSql()
}

// buildListAccountsForUserQuery selects accounts owned by or shared with userID.
func buildListAccountsForUserQuery(b sq.StatementBuilderType, userID int64) (string, []any, error) {
	sharedWith := subquery().Select("account_id").From(sharesTable).Where(sq.Eq{"user_id": userID})

	return b.Select(accountColumns...).
		From(accountsTable).
		Where(sq.Or{
			sq.Eq{"owner_id": userID},
			sq.Expr("id IN (?)", sharedWith),
		}).
		OrderBy("created_at", "id").
		ToSql()
}

func buildSelectSharesQuery(b sq.StatementBuilderType, accountIDs []string) (string, []any, error) {
	return b.Select("account_id", "user_id").
		From(sharesTable).
		Where(sq.Eq{"account_id": accountIDs}).
		OrderBy("created_at", "user_id").
		ToSql()
}

func buildSelectRemarksQuery(b sq.StatementBuilderType, accountIDs []string) (string, []any, error) {
	return b.Select("account_id", "user_id", "remark").
		From(remarksTable).
		Where(sq.Eq{"account_id": accountIDs}).
		ToSql()
}

// buildUpdateAccountQuery sets only the core fields present in update.
func buildUpdateAccountQuery(b sq.StatementBuilderType, update models.AccountUpdate) (string, []any, error) {
	set := map[string]any{"updated_at": update.UpdatedAt}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Issuer != nil {
		set["issuer"] = *update.Issuer
	}
	if update.Secret != nil {
		set["secret"] = *update.Secret
	}

	return b.Update(accountsTable).SetMap(set).Where(sq.Eq{"id": update.AccountID}).ToSql()
}

func buildTouchAccountQuery(b sq.StatementBuilderType, accountID string, at time.Time) (string, []any, error) {
	return b.Update(accountsTable).Set("updated_at", at).Where(sq.Eq{"id": accountID}).ToSql()
}

func buildUpsertRemarkQuery(b sq.StatementBuilderType, accountID string, userID int64, remark string) (string, []any, error) {
	return b.Insert(remarksTable).
		Columns("account_id", "user_id", "remark").
		Values(accountID, userID, remark).
		Suffix("ON CONFLICT (account_id, user_id) DO UPDATE SET remark = excluded.remark").
		ToSql()
}

// buildUpsertViewerRemarkQuery writes a remark only while userID still owns
// the account or holds a grant for it. No row is written otherwise.
func buildUpsertViewerRemarkQuery(b sq.StatementBuilderType, accountID string, userID int64, remark string) (string, []any, error) {
	viewer := subquery().Select("a.id", "u.user_id").
		Column("?", remark).
		From(accountsTable+" a").
		Join(usersTable+" u ON u.user_id = ?", userID).
		Where(sq.Eq{"a.id": accountID}).
		Where(sq.Or{
			sq.Expr("a.owner_id = u.user_id"),
			sq.Expr("EXISTS (SELECT 1 FROM " + sharesTable + " s WHERE s.account_id = a.id AND s.user_id = u.user_id)"),
		})

	return b.Insert(remarksTable).
		Columns("account_id", "user_id", "remark").
		Select(viewer).
		Suffix("ON CONFLICT (account_id, user_id) DO UPDATE SET remark = excluded.remark").
		ToSql()
}

func buildDeleteRemarkQuery(b sq.StatementBuilderType, accountID string, userID int64) (string, []any, error) {
	return b.Delete(remarksTable).Where(sq.Eq{"account_id": accountID, "user_id": userID}).ToSql()
}

func buildInsertShareQuery(b sq.StatementBuilderType, accountID string, userID int64, at time.Time) (string, []any, error) {
	return b.Insert(sharesTable).
		Columns("account_id", "user_id", "created_at").
		Values(accountID, userID, at).
		ToSql()
}

func buildDeleteShareQuery(b sq.StatementBuilderType, accountID string, userID int64) (string, []any, error) {
	return b.Delete(sharesTable).Where(sq.Eq{"account_id": accountID, "user_id": userID}).ToSql()
}

// buildDeleteAccountQueries removes an account and everything hanging off
// it, children first. The last statement deletes the account row itself.
func buildDeleteAccountQueries(b sq.StatementBuilderType, accountID string) []sq.Sqlizer {
	return []sq.Sqlizer{
		b.Delete(remarksTable).Where(sq.Eq{"account_id": accountID}),
		b.Delete(sharesTable).Where(sq.Eq{"account_id": accountID}),
		b.Delete(accountsTable).Where(sq.Eq{"id": accountID}),
	}
}

// ── execution helpers ────────────────────────────────────────────────────────

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// exec runs a built statement and returns the number of affected rows.
func exec(ctx context.Context, ex execer, query string, args []any, buildErr error) (int64, error) {
	if buildErr != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, buildErr)
	}

	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return affected, nil
}

func execSqlizer(ctx context.Context, ex execer, q sq.Sqlizer) (int64, error) {
	query, args, err := q.ToSql()
	return exec(ctx, ex, query, args, err)
}
