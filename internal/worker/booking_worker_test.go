package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/queue"
	"go-gin-ticket-booking/internal/repository/memory"
	"go-gin-ticket-booking/internal/service"
	"go-gin-ticket-booking/internal/service/mocks"
	apperrors "go-gin-ticket-booking/pkg/app_errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// chanQueue 由測試直接餵 Delivery 的隊列
type chanQueue struct {
	ch chan queue.Delivery
}

func (q *chanQueue) PublishBooking(ctx context.Context, req *model.BookTicketRequest) error {
	return errors.New("not supported")
}

func (q *chanQueue) SubscribeBookings(ctx context.Context) (<-chan queue.Delivery, error) {
	return q.ch, nil
}

// outcome 記錄 worker 對訊息的處置："ack"、"drop" 或 "requeue"
func newRecordedDelivery(req *model.BookTicketRequest, outcome chan<- string) queue.Delivery {
	return queue.Delivery{
		Data: req,
		Ack:  func() { outcome <- "ack" },
		Nack: func(requeue bool) {
			if requeue {
				outcome <- "requeue"
				return
			}
			outcome <- "drop"
		},
	}
}

func TestBookingWorker_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		outcome string
	}{
		{name: "Success", err: nil, outcome: "ack"},
		{name: "NotFound", err: apperrors.ErrEventNotFound, outcome: "drop"},
		{name: "InvalidInput", err: apperrors.ErrInvalidInput, outcome: "drop"},
		{name: "Transient", err: errors.New("connection reset"), outcome: "requeue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			mockSvc := mocks.NewTicketServiceMock()
			if tt.err == nil {
				mockSvc.On("Book", mock.Anything, 1, 2, model.CategoryStandard, 3).
					Return(&model.Ticket{ID: 10}, nil).Once()
			} else {
				mockSvc.On("Book", mock.Anything, 1, 2, model.CategoryStandard, 3).
					Return(nil, tt.err).Once()
			}

			q := &chanQueue{ch: make(chan queue.Delivery, 1)}
			w := NewBookingWorker(mockSvc, q)
			require.NoError(t, w.Start(ctx))

			outcome := make(chan string, 1)
			q.ch <- newRecordedDelivery(&model.BookTicketRequest{
				RequestID: "req-1", UserID: 1, EventID: 2, Category: model.CategoryStandard, Place: 3,
			}, outcome)

			select {
			case got := <-outcome:
				assert.Equal(t, tt.outcome, got)
			case <-ctx.Done():
				t.Fatal("worker did not handle the message in time")
			}

			close(q.ch)
			w.Wait()
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestBookingWorker_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	userRepo := memory.NewUserRepository(nil)
	eventRepo := memory.NewEventRepository(nil)
	ticketRepo := memory.NewTicketRepository(nil)
	q := queue.NewMemoryBookingQueue(10)

	users := service.NewUserService(userRepo)
	events := service.NewEventService(eventRepo, nil)
	tickets := service.NewTicketService(ticketRepo, userRepo, eventRepo, q)

	user, err := users.Create(ctx, &model.User{Name: "Alice", Email: "a@x.io"})
	require.NoError(t, err)
	event, err := events.Create(ctx, &model.Event{Title: "Concert", Date: time.Now()})
	require.NoError(t, err)

	w := NewBookingWorker(tickets, q)
	require.NoError(t, w.Start(ctx))

	_, err = tickets.BookAsync(ctx, model.BookTicketRequest{
		UserID: user.ID, EventID: event.ID, Category: model.CategoryPremium, Place: 7,
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		booked, err := tickets.ListByUser(ctx, user.ID, pagination.New(10, 1))
		return err == nil && len(booked) == 1 && booked[0].Place == 7
	}, time.Second, 10*time.Millisecond)

	cancel()
	w.Wait()
}
