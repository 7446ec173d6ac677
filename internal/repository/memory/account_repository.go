package memory

import (
	"context"
	"sync"
	"time"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/repository"
	apperrors "go-gin-ticket-booking/pkg/app_errors"

	"github.com/shopspring/decimal"
)

// AccountRepository 帳戶以 user id 為 key，不需要 id 產生器
type AccountRepository struct {
	writeMu sync.Mutex
	table   *Table[model.Account]
}

func NewAccountRepository() repository.AccountRepository {
	return &AccountRepository{table: NewTable[model.Account]()}
}

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) (*model.Account, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if _, ok := r.table.Get(account.UserID); ok {
		return nil, apperrors.ErrAccountExists
	}

	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.table.Put(account.UserID, *account)

	created := *account
	return &created, nil
}

func (r *AccountRepository) FindByUserID(ctx context.Context, userID int) (*model.Account, error) {
	account, ok := r.table.Get(userID)
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}
	return &account, nil
}

func (r *AccountRepository) Refill(ctx context.Context, userID int, amount decimal.Decimal) (*model.Account, error) {
	return r.adjust(userID, func(balance decimal.Decimal) (decimal.Decimal, error) {
		return balance.Add(amount), nil
	})
}

func (r *AccountRepository) Charge(ctx context.Context, userID int, amount decimal.Decimal) (*model.Account, error) {
	return r.adjust(userID, func(balance decimal.Decimal) (decimal.Decimal, error) {
		if amount.GreaterThan(balance) {
			return balance, apperrors.ErrInsufficientBalance
		}
		return balance.Sub(amount), nil
	})
}

// adjust 在鎖內完成讀取 -> 計算 -> 寫回；fn 回傳錯誤時不寫回
func (r *AccountRepository) adjust(userID int, fn func(decimal.Decimal) (decimal.Decimal, error)) (*model.Account, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	account, ok := r.table.Get(userID)
	if !ok {
		return nil, apperrors.ErrAccountNotFound
	}

	balance, err := fn(account.Balance)
	if err != nil {
		return nil, err
	}

	account.Balance = model.RoundMoney(balance)
	account.UpdatedAt = time.Now().UTC()
	r.table.Put(userID, account)

	return &account, nil
}

func (r *AccountRepository) Delete(ctx context.Context, userID int) (bool, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.table.Remove(userID), nil
}
