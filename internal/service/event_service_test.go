package service

import (
	"context"
	"testing"
	"time"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/repository"
	"go-gin-ticket-booking/internal/repository/memory"
	apperrors "go-gin-ticket-booking/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEventService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - price rounded half up", func(t *testing.T) {
		s := NewEventService(memory.NewEventRepository(nil), nil)
		event, err := s.Create(ctx, &model.Event{
			Title:       "Concert",
			Date:        time.Date(2030, 5, 1, 18, 30, 0, 0, time.UTC),
			TicketPrice: decimal.RequireFromString("10.125"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, event.ID)
		assert.True(t, decimal.RequireFromString("10.13").Equal(event.TicketPrice))
		assert.Equal(t, day("2030-05-01"), event.Date)
	})

	t.Run("Failed - negative price", func(t *testing.T) {
		s := NewEventService(memory.NewEventRepository(nil), nil)
		_, err := s.Create(ctx, &model.Event{Title: "x", Date: day("2030-05-01"), TicketPrice: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestEventService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - partial", func(t *testing.T) {
		s := NewEventService(memory.NewEventRepository(nil), nil)
		e, err := s.Create(ctx, &model.Event{Title: "Concert", Date: day("2030-05-01"), TicketPrice: decimal.NewFromInt(10)})
		require.NoError(t, err)

		price := decimal.RequireFromString("7.499")
		updated, err := s.Update(ctx, e.ID, model.UpdateEventParams{TicketPrice: &price})
		require.NoError(t, err)
		assert.Equal(t, "Concert", updated.Title)
		assert.Equal(t, day("2030-05-01"), updated.Date)
		assert.True(t, decimal.RequireFromString("7.50").Equal(updated.TicketPrice))
	})

	t.Run("Empty title ignored", func(t *testing.T) {
		s := NewEventService(memory.NewEventRepository(nil), nil)
		e, err := s.Create(ctx, &model.Event{Title: "Concert", Date: day("2030-05-01")})
		require.NoError(t, err)

		empty := ""
		updated, err := s.Update(ctx, e.ID, model.UpdateEventParams{Title: &empty})
		require.NoError(t, err)
		assert.Equal(t, "Concert", updated.Title)
	})

	t.Run("NotFound", func(t *testing.T) {
		s := NewEventService(memory.NewEventRepository(nil), nil)
		title := "x"
		_, err := s.Update(ctx, 3, model.UpdateEventParams{Title: &title})
		assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
	})
}

func TestEventService_CacheReadThroughAndInvalidate(t *testing.T) {
	ctx := context.Background()
	fc := newFakeEventCache()
	s := NewEventService(memory.NewEventRepository(nil), fc)

	e, err := s.Create(ctx, &model.Event{Title: "Concert", Date: day("2030-05-01")})
	require.NoError(t, err)

	_, err = s.GetByID(ctx, e.ID) // miss -> 回填
	require.NoError(t, err)
	_, err = s.GetByID(ctx, e.ID) // hit
	require.NoError(t, err)
	assert.Equal(t, 1, fc.hits)

	title := "Opera"
	_, err = s.Update(ctx, e.ID, model.UpdateEventParams{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, []int{e.ID}, fc.invalidated)

	got, err := s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Opera", got.Title)

	deleted, err := s.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = s.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

// interleavingEventRepo 在下一次 FindByID 讀完後執行 onRead 一次
type interleavingEventRepo struct {
	repository.EventRepository
	onRead func()
}

func (r *interleavingEventRepo) FindByID(ctx context.Context, id int) (*model.Event, error) {
	event, err := r.EventRepository.FindByID(ctx, id)
	if hook := r.onRead; hook != nil {
		r.onRead = nil
		hook()
	}
	return event, err
}

func TestEventService_UpdateDuringCacheMiss(t *testing.T) {
	ctx := context.Background()
	fc := newFakeEventCache()
	repo := &interleavingEventRepo{EventRepository: memory.NewEventRepository(nil)}
	s := NewEventService(repo, fc)

	e, err := s.Create(ctx, &model.Event{Title: "T", Date: day("2030-05-01")})
	require.NoError(t, err)

	title := "NEW"
	repo.onRead = func() {
		_, err := s.Update(ctx, e.ID, model.UpdateEventParams{Title: &title})
		require.NoError(t, err)
	}

	_, err = s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fc.skipped)
	assert.Empty(t, fc.items)

	got, err := s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "NEW", got.Title)

	got, err = s.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "NEW", got.Title)
	assert.Equal(t, 1, fc.hits)
}

func TestEventService_Lists(t *testing.T) {
	ctx := context.Background()
	s := NewEventService(memory.NewEventRepository(nil), nil)
	for _, e := range []model.Event{
		{Title: "Concert", Date: day("2030-05-01")},
		{Title: "Opera", Date: day("2030-05-01")},
		{Title: "Concert", Date: day("2030-05-02")},
	} {
		_, err := s.Create(ctx, &e)
		require.NoError(t, err)
	}

	byTitle, err := s.ListByTitle(ctx, "Concert", pagination.New(10, 1))
	require.NoError(t, err)
	assert.Len(t, byTitle, 2)

	byDay, err := s.ListForDay(ctx, time.Date(2030, 5, 1, 23, 0, 0, 0, time.UTC), pagination.New(10, 1))
	require.NoError(t, err)
	assert.Len(t, byDay, 2)

	none, err := s.ListByTitle(ctx, "Conc", pagination.New(10, 1))
	require.NoError(t, err)
	assert.Empty(t, none)
}
