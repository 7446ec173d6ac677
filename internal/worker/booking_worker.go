package worker

import (
	"context"
	"errors"
	"sync"

	"go-gin-ticket-booking/internal/queue"
	"go-gin-ticket-booking/internal/service"
	apperrors "go-gin-ticket-booking/pkg/app_errors"
	"go-gin-ticket-booking/pkg/logger"

	"go.uber.org/zap"
)

type BookingWorker interface {
	// 訂閱訂票隊列並在背景處理，ctx 結束時停止
	Start(ctx context.Context) error
	// Wait 等待背景處理結束
	Wait()
}

type BookingWorkerImpl struct {
	service service.TicketService
	queue   queue.BookingQueue
	wg      sync.WaitGroup
}

func NewBookingWorker(service service.TicketService, queue queue.BookingQueue) BookingWorker {
	return &BookingWorkerImpl{
		service: service,
		queue:   queue,
	}
}

func (w *BookingWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeBookings(ctx)
	if err != nil {
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for msg := range msgs {
			w.handle(ctx, msg)
		}
	}()
	return nil
}

func (w *BookingWorkerImpl) Wait() {
	w.wg.Wait()
}

func (w *BookingWorkerImpl) handle(ctx context.Context, msg queue.Delivery) {
	log := logger.WithComponent("worker")
	req := msg.Data
	if req == nil {
		msg.Nack(false)
		return
	}

	log = log.With(zap.String("request_id", req.RequestID), zap.Int("user_id", req.UserID), zap.Int("event_id", req.EventID))

	ticket, err := w.service.Book(ctx, req.UserID, req.EventID, req.Category, req.Place)
	switch {
	case err == nil:
		log.Info("booking processed", zap.Int("ticket_id", ticket.ID))
		msg.Ack()
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrInvalidInput):
		// 重試也不會成功，直接丟棄
		log.Warn("booking rejected", zap.Error(err))
		msg.Nack(false)
	default:
		// 例如資料庫暫時連不上，交給隊列重送
		log.Error("booking failed, will retry", zap.Error(err))
		msg.Nack(true)
	}
}
