// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-otp-keeper/internal/logger"
	"github.com/MKhiriev/go-otp-keeper/models"
)

// accountRepository is the SQL implementation of [AccountRepository].
//
// Share grants and remarks live in their own tables keyed by
// (account_id, user_id), so concurrent grants for different users never
// overwrite each other and a duplicate grant is rejected by the primary key.
type accountRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewAccountRepository constructs an [AccountRepository] backed by db.
func NewAccountRepository(db *DB, logger *logger.Logger) AccountRepository {
	logger.Debug().Msg("creating account repository")
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

// CreateAccount inserts the account with its initial grants and remarks in
// one transaction.
func (r *accountRepository) CreateAccount(ctx context.Context, account models.Account) error {
	log := logger.FromContext(ctx)
	b := r.db.builder()

	return r.db.inTx(ctx, "*accountRepository.CreateAccount", func(tx *sql.Tx) error {
		query, args, err := buildInsertAccountQuery(b, account)
		if _, err = exec(ctx, tx, query, args, err); err != nil {
			log.Err(err).Str("func", "*accountRepository.CreateAccount").Str("account_id", account.ID).Msg("failed to insert account")
			return err
		}

		for _, userID := range account.SharedWith {
			query, args, err = buildInsertShareQuery(b, account.ID, userID, account.CreatedAt)
			if _, err = exec(ctx, tx, query, args, err); err != nil {
				log.Err(err).Str("func", "*accountRepository.CreateAccount").Int64("user_id", userID).Msg("failed to insert share")
				return err
			}
		}

		for userID, remark := range account.RemarksByViewer {
			if remark == "" {
				continue
			}
			query, args, err = buildUpsertRemarkQuery(b, account.ID, userID, remark)
			if _, err = exec(ctx, tx, query, args, err); err != nil {
				log.Err(err).Str("func", "*accountRepository.CreateAccount").Int64("user_id", userID).Msg("failed to insert remark")
				return err
			}
		}

		log.Info().Str("func", "*accountRepository.CreateAccount").Str("account_id", account.ID).Int64("owner_id", account.OwnerID).Msg("account created")
		return nil
	})
}

// GetAccount loads one account with its grants and remarks.
// Returns [ErrAccountNotFound] when there is none.
func (r *accountRepository) GetAccount(ctx context.Context, accountID string) (models.Account, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectAccountQuery(r.db.builder(), accountID)
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	account, err := scanAccount(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.GetAccount").Str("account_id", accountID).Msg("failed to get account")
		return models.Account{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	accounts := []models.Account{account}
	if err = r.attachSharesAndRemarks(ctx, accounts); err != nil {
		return models.Account{}, err
	}

	return accounts[0], nil
}

// ListAccountsForUser returns every account owned by or shared with userID,
// oldest first.
func (r *accountRepository) ListAccountsForUser(ctx context.Context, userID int64) ([]models.Account, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListAccountsForUserQuery(r.db.builder(), userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.ListAccountsForUser").Int64("user_id", userID).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			log.Err(err).Str("func", "*accountRepository.ListAccountsForUser").Msg("failed to scan account row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		accounts = append(accounts, account)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	rows.Close()

	if err = r.attachSharesAndRemarks(ctx, accounts); err != nil {
		return nil, err
	}

	log.Debug().Str("func", "*accountRepository.ListAccountsForUser").Int64("user_id", userID).Int("count", len(accounts)).Msg("accounts listed")
	return accounts, nil
}

// UpdateAccount applies the core-field changes and the viewer's remark in one
// transaction. An empty remark removes the viewer's remark row.
func (r *accountRepository) UpdateAccount(ctx context.Context, update models.AccountUpdate) error {
	log := logger.FromContext(ctx)
	b := r.db.builder()

	return r.db.inTx(ctx, "*accountRepository.UpdateAccount", func(tx *sql.Tx) error {
		var query string
		var args []any
		var err error
		if update.ChangesCore() {
			query, args, err = buildUpdateAccountQuery(b, update)
		} else {
			query, args, err = buildTouchAccountQuery(b, update.AccountID, update.UpdatedAt)
		}

		affected, err := exec(ctx, tx, query, args, err)
		if err != nil {
			log.Err(err).Str("func", "*accountRepository.UpdateAccount").Str("account_id", update.AccountID).Msg("failed to update account")
			return err
		}
		if affected == 0 {
			return ErrAccountNotFound
		}

		if update.Remark != nil {
			if *update.Remark == "" {
				query, args, err = buildDeleteRemarkQuery(b, update.AccountID, update.ViewerID)
			} else {
				query, args, err = buildUpsertViewerRemarkQuery(b, update.AccountID, update.ViewerID, *update.Remark)
			}
			affected, err = exec(ctx, tx, query, args, err)
			if err != nil {
				log.Err(err).Str("func", "*accountRepository.UpdateAccount").Str("account_id", update.AccountID).Msg("failed to save remark")
				return err
			}
			if affected == 0 && *update.Remark != "" {
				log.Warn().Str("func", "*accountRepository.UpdateAccount").Str("account_id", update.AccountID).Int64("user_id", update.ViewerID).Msg("viewer lost access before remark was saved")
				return ErrAccountNotFound
			}
		}

		return nil
	})
}

// DeleteAccount removes the account with all its grants and remarks.
func (r *accountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	log := logger.FromContext(ctx)

	return r.db.inTx(ctx, "*accountRepository.DeleteAccount", func(tx *sql.Tx) error {
		var affected int64
		for _, statement := range buildDeleteAccountQueries(r.db.builder(), accountID) {
			n, err := execSqlizer(ctx, tx, statement)
			if err != nil {
				log.Err(err).Str("func", "*accountRepository.DeleteAccount").Str("account_id", accountID).Msg("failed to delete account")
				return err
			}
			affected = n
		}

		if affected == 0 {
			return ErrAccountNotFound
		}

		log.Info().Str("func", "*accountRepository.DeleteAccount").Str("account_id", accountID).Msg("account deleted")
		return nil
	})
}

// AddShare grants userID access to the account.
// Returns [ErrShareAlreadyExists] when the grant is already present.
func (r *accountRepository) AddShare(ctx context.Context, accountID string, userID int64, at time.Time) error {
	log := logger.FromContext(ctx)
	b := r.db.builder()

	return r.db.inTx(ctx, "*accountRepository.AddShare", func(tx *sql.Tx) error {
		query, args, err := buildInsertShareQuery(b, accountID, userID, at)
		if _, err = exec(ctx, tx, query, args, err); err != nil {
			if r.db.errorClassificator.IsUniqueViolation(err) {
				log.Warn().Str("func", "*accountRepository.AddShare").Str("account_id", accountID).Int64("user_id", userID).Msg("share already exists")
				return ErrShareAlreadyExists
			}
			log.Err(err).Str("func", "*accountRepository.AddShare").Str("account_id", accountID).Msg("failed to insert share")
			return err
		}

		query, args, err = buildTouchAccountQuery(b, accountID, at)
		affected, err := exec(ctx, tx, query, args, err)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAccountNotFound
		}

		return nil
	})
}

// RemoveShare revokes userID's access and drops their remark.
// Returns [ErrShareNotFound] when there was no grant.
func (r *accountRepository) RemoveShare(ctx context.Context, accountID string, userID int64, at time.Time) error {
	log := logger.FromContext(ctx)
	b := r.db.builder()

	return r.db.inTx(ctx, "*accountRepository.RemoveShare", func(tx *sql.Tx) error {
		query, args, err := buildDeleteShareQuery(b, accountID, userID)
		affected, err := exec(ctx, tx, query, args, err)
		if err != nil {
			log.Err(err).Str("func", "*accountRepository.RemoveShare").Str("account_id", accountID).Msg("failed to delete share")
			return err
		}
		if affected == 0 {
			return ErrShareNotFound
		}

		query, args, err = buildDeleteRemarkQuery(b, accountID, userID)
		if _, err = exec(ctx, tx, query, args, err); err != nil {
			return err
		}

		query, args, err = buildTouchAccountQuery(b, accountID, at)
		_, err = exec(ctx, tx, query, args, err)
		return err
	})
}

// attachSharesAndRemarks fills SharedWith and RemarksByViewer of accounts in
// place with two batched queries.
func (r *accountRepository) attachSharesAndRemarks(ctx context.Context, accounts []models.Account) error {
	if len(accounts) == 0 {
		return nil
	}
	log := logger.FromContext(ctx)

	ids := make([]string, len(accounts))
	index := make(map[string]int, len(accounts))
	for i := range accounts {
		ids[i] = accounts[i].ID
		index[accounts[i].ID] = i
		accounts[i].SharedWith = []int64{}
		accounts[i].RemarksByViewer = map[int64]string{}
	}

	query, args, err := buildSelectSharesQuery(r.db.builder(), ids)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	err = r.forEachRow(ctx, query, args, func(rows *sql.Rows) error {
		var accountID string
		var userID int64
		if err := rows.Scan(&accountID, &userID); err != nil {
			return err
		}
		i := index[accountID]
		accounts[i].SharedWith = append(accounts[i].SharedWith, userID)
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.attachSharesAndRemarks").Msg("failed to load shares")
		return err
	}

	query, args, err = buildSelectRemarksQuery(r.db.builder(), ids)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	err = r.forEachRow(ctx, query, args, func(rows *sql.Rows) error {
		var accountID, remark string
		var userID int64
		if err := rows.Scan(&accountID, &userID, &remark); err != nil {
			return err
		}
		accounts[index[accountID]].RemarksByViewer[userID] = remark
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", "*accountRepository.attachSharesAndRemarks").Msg("failed to load remarks")
		return err
	}

	return nil
}

func (r *accountRepository) forEachRow(ctx context.Context, query string, args []any, fn func(rows *sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err = fn(rows); err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
	}
	if err = rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return nil
}

func scanAccount(row rowScanner) (models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.OwnerID,
		&account.Name,
		&account.Issuer,
		&account.Secret,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	return account, err
}
