package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/testutil"
	apperrors "go-gin-ticket-booking/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	pool := testutil.SetupPostgres(t)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	t.Run("Create and find", func(t *testing.T) {
		testutil.TruncatePostgres(t, pool)

		user, err := repo.Create(ctx, &model.User{Name: "Alice", Email: "a@x.io"})
		require.NoError(t, err)
		assert.Equal(t, 1, user.ID)

		byEmail, err := repo.FindByEmail(ctx, "a@x.io")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		_, err = repo.FindByID(ctx, 99)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("Failed - ErrDuplicateEmail", func(t *testing.T) {
		testutil.TruncatePostgres(t, pool)

		_, err := repo.Create(ctx, &model.User{Name: "Alice", Email: "a@x.io"})
		require.NoError(t, err)
		_, err = repo.Create(ctx, &model.User{Name: "Bob", Email: "a@x.io"})
		assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)

		bob, err := repo.Create(ctx, &model.User{Name: "Bob", Email: "b@x.io"})
		require.NoError(t, err)
		email := "a@x.io"
		_, err = repo.Update(ctx, bob.ID, model.UpdateUserParams{Email: &email})
		assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	})

	t.Run("Soft delete frees email and keeps ids", func(t *testing.T) {
		testutil.TruncatePostgres(t, pool)

		user, err := repo.Create(ctx, &model.User{Name: "Alice", Email: "a@x.io"})
		require.NoError(t, err)
		deleted, err := repo.Delete(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		again, err := repo.Create(ctx, &model.User{Name: "Alice", Email: "a@x.io"})
		require.NoError(t, err)
		assert.Equal(t, 2, again.ID)
	})

	t.Run("ListByName pages by id", func(t *testing.T) {
		testutil.TruncatePostgres(t, pool)

		for _, email := range []string{"1@x.io", "2@x.io", "3@x.io"} {
			_, err := repo.Create(ctx, &model.User{Name: "Sam", Email: email})
			require.NoError(t, err)
		}
		users, err := repo.ListByName(ctx, "Sam", pagination.New(2, 2))
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "3@x.io", users[0].Email)
	})
}

func TestEventRepository(t *testing.T) {
	pool := testutil.SetupPostgres(t)
	repo := NewEventRepository(pool)
	ctx := context.Background()
	date := time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC)

	event, err := repo.Create(ctx, &model.Event{Title: "Concert", Date: date, TicketPrice: decimal.RequireFromString("12.50")})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(event.TicketPrice))

	forDay, err := repo.ListForDay(ctx, date.Add(20*time.Hour), pagination.New(10, 1))
	require.NoError(t, err)
	assert.Len(t, forDay, 1)

	price := decimal.RequireFromString("15")
	updated, err := repo.Update(ctx, event.ID, model.UpdateEventParams{TicketPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, "Concert", updated.Title)
	assert.True(t, price.Equal(updated.TicketPrice))

	deleted, err := repo.Delete(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.FindByID(ctx, event.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestTicketAndAccountRepository(t *testing.T) {
	pool := testutil.SetupPostgres(t)
	ctx := context.Background()

	user, err := NewUserRepository(pool).Create(ctx, &model.User{Name: "Alice", Email: "a@x.io"})
	require.NoError(t, err)
	event, err := NewEventRepository(pool).Create(ctx, &model.Event{Title: "Concert", Date: time.Now().UTC()})
	require.NoError(t, err)

	t.Run("Tickets", func(t *testing.T) {
		tickets := NewTicketRepository(pool)
		ticket, err := tickets.Create(ctx, &model.Ticket{UserID: user.ID, EventID: event.ID, Category: model.CategoryBar, Place: 4})
		require.NoError(t, err)

		byUser, err := tickets.ListByUserID(ctx, user.ID, pagination.New(10, 1))
		require.NoError(t, err)
		assert.Len(t, byUser, 1)

		deleted, err := tickets.Delete(ctx, ticket.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
		_, err = tickets.FindByID(ctx, ticket.ID)
		assert.ErrorIs(t, err, apperrors.ErrTicketNotFound)
	})

	t.Run("Accounts", func(t *testing.T) {
		accounts := NewAccountRepository(pool)
		_, err := accounts.Create(ctx, &model.Account{UserID: user.ID, Balance: decimal.Zero})
		require.NoError(t, err)
		_, err = accounts.Create(ctx, &model.Account{UserID: user.ID, Balance: decimal.Zero})
		assert.ErrorIs(t, err, apperrors.ErrAccountExists)

		_, err = accounts.Refill(ctx, user.ID, decimal.NewFromInt(100))
		require.NoError(t, err)

		// 20 筆同時扣 10，只有 10 筆能成功
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := accounts.Charge(ctx, user.ID, decimal.NewFromInt(10)); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 10, succeeded)

		account, err := accounts.FindByUserID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, account.Balance.IsZero())
	})
}
