package queue

import (
	"context"

	"go-gin-ticket-booking/internal/model"
)

type Delivery struct {
	Data *model.BookTicketRequest
	Ack  func()
	Nack func(requeue bool)
}

type BookingQueue interface {
	// 發送訂票請求到隊列
	PublishBooking(ctx context.Context, req *model.BookTicketRequest) error
	// 訂閱訂票隊列，ctx 結束時 channel 會被關閉
	SubscribeBookings(ctx context.Context) (<-chan Delivery, error)
}

type MemoryBookingQueueImpl struct {
	// 使用 Go channel 來模擬 MQ 隊列
	ch chan *model.BookTicketRequest
}

func NewMemoryBookingQueue(bufferSize int) BookingQueue {
	return &MemoryBookingQueueImpl{
		ch: make(chan *model.BookTicketRequest, bufferSize),
	}
}

func (q *MemoryBookingQueueImpl) PublishBooking(ctx context.Context, req *model.BookTicketRequest) error {
	select {
	case q.ch <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryBookingQueueImpl) SubscribeBookings(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case req, ok := <-q.ch:
				if !ok {
					return
				}

				delivery := Delivery{
					Data: req,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							// 另開 goroutine 放回，避免 buffer 滿時卡住 worker
							go func() {
								select {
								case q.ch <- req:
								case <-ctx.Done():
								}
							}()
						}
					},
				}

				select {
				case out <- delivery:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
