package repository

import (
	"context"
	"errors"
	"time"

	"go-gin-ticket-booking/internal/model"
	apperrors "go-gin-ticket-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountsPrimaryKey = "accounts_pkey"

type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) (*model.Account, error)
	FindByUserID(ctx context.Context, userID int) (*model.Account, error)
	// Refill 增加餘額
	Refill(ctx context.Context, userID int, amount decimal.Decimal) (*model.Account, error)
	// Charge 扣款，餘額不足時回傳 ErrInsufficientBalance 且不修改餘額
	Charge(ctx context.Context, userID int, amount decimal.Decimal) (*model.Account, error)
	Delete(ctx context.Context, userID int) (bool, error)
}

type AccountRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) AccountRepository {
	return &AccountRepositoryImpl{
		pool: pool,
	}
}

func (r *AccountRepositoryImpl) Create(ctx context.Context, account *model.Account) (*model.Account, error) {
	query := `
		INSERT INTO accounts (user_id, balance)
		VALUES ($1, $2)
		RETURNING user_id, balance, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, account.UserID, account.Balance).Scan(
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, accountsPrimaryKey) {
			return nil, apperrors.ErrAccountExists
		}
		return nil, err
	}

	return account, nil
}

func (r *AccountRepositoryImpl) FindByUserID(ctx context.Context, userID int) (*model.Account, error) {
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`
	return scanAccount(r.pool.QueryRow(ctx, query, userID))
}

func (r *AccountRepositoryImpl) findByUserIDWithLock(ctx context.Context, tx pgx.Tx, userID int) (*model.Account, error) {
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM accounts
		WHERE user_id = $1
		FOR UPDATE
	`
	return scanAccount(tx.QueryRow(ctx, query, userID))
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *AccountRepositoryImpl) Refill(ctx context.Context, userID int, amount decimal.Decimal) (*model.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $1, updated_at = $2
		WHERE user_id = $3
		RETURNING user_id, balance, created_at, updated_at
	`
	return scanAccount(r.pool.QueryRow(ctx, query, amount, time.Now().UTC(), userID))
}

func (r *AccountRepositoryImpl) Charge(ctx context.Context, userID int, amount decimal.Decimal) (*model.Account, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 1. 鎖定帳戶列，避免同時扣款
	account, err := r.findByUserIDWithLock(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	// 2. 檢查餘額
	if amount.GreaterThan(account.Balance) {
		return nil, apperrors.ErrInsufficientBalance
	}

	// 3. 扣款 (WHERE balance >= $1 為最後防線)
	query := `
		UPDATE accounts
		SET balance = balance - $1, updated_at = $2
		WHERE user_id = $3 AND balance >= $1
		RETURNING user_id, balance, created_at, updated_at
	`
	charged, err := scanAccount(tx.QueryRow(ctx, query, amount, time.Now().UTC(), userID))
	if err != nil {
		if errors.Is(err, apperrors.ErrAccountNotFound) {
			return nil, apperrors.ErrInsufficientBalance
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return charged, nil
}

func (r *AccountRepositoryImpl) Delete(ctx context.Context, userID int) (bool, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE user_id = $1`, userID)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}
