package memory_test

import (
	"context"
	"sync"
	"testing"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/repository/memory"
	apperrors "go-gin-ticket-booking/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Failed - create twice", func(t *testing.T) {
		repo := memory.NewAccountRepository()
		_, err := repo.Create(ctx, &model.Account{UserID: 1})
		require.NoError(t, err)
		_, err = repo.Create(ctx, &model.Account{UserID: 1})
		assert.ErrorIs(t, err, apperrors.ErrAccountExists)
	})

	t.Run("RefillAndCharge", func(t *testing.T) {
		repo := memory.NewAccountRepository()
		_, err := repo.Create(ctx, &model.Account{UserID: 1})
		require.NoError(t, err)

		acc, err := repo.Refill(ctx, 1, decimal.RequireFromString("10.50"))
		require.NoError(t, err)
		assert.Equal(t, "10.50", model.FormatMoney(acc.Balance))

		acc, err = repo.Charge(ctx, 1, decimal.RequireFromString("0.25"))
		require.NoError(t, err)
		assert.Equal(t, "10.25", model.FormatMoney(acc.Balance))
	})

	t.Run("Failed - insufficient balance keeps balance", func(t *testing.T) {
		repo := memory.NewAccountRepository()
		_, err := repo.Create(ctx, &model.Account{UserID: 1, Balance: decimal.NewFromInt(5)})
		require.NoError(t, err)

		_, err = repo.Charge(ctx, 1, decimal.RequireFromString("5.01"))
		assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)

		acc, err := repo.FindByUserID(ctx, 1)
		require.NoError(t, err)
		assert.True(t, acc.Balance.Equal(decimal.NewFromInt(5)))
	})

	t.Run("ConcurrentChargesNeverOverdraw", func(t *testing.T) {
		repo := memory.NewAccountRepository()
		_, err := repo.Create(ctx, &model.Account{UserID: 1, Balance: decimal.NewFromInt(10)})
		require.NoError(t, err)

		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := repo.Charge(ctx, 1, decimal.NewFromInt(1)); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		acc, err := repo.FindByUserID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 10, succeeded)
		assert.True(t, acc.Balance.IsZero())
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := memory.NewAccountRepository()
		_, err := repo.Refill(ctx, 7, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

		deleted, err := repo.Delete(ctx, 7)
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}
