package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const rabbitPrefetch = 50

// RabbitMQBookingQueueImpl 使用 durable queue + 手動 ack；訊息以 persistent 模式發送
type RabbitMQBookingQueueImpl struct {
	conn      *amqp.Connection
	queueName string

	// publish 共用一個 channel，consume 另開 channel
	mu        sync.Mutex
	publishCh *amqp.Channel
}

func NewRabbitMQBookingQueue(url, queueName string) (*RabbitMQBookingQueueImpl, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("channel open: %w", err)
	}

	if _, err := declareBookingQueue(ch, queueName); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &RabbitMQBookingQueueImpl{
		conn:      conn,
		queueName: queueName,
		publishCh: ch,
	}, nil
}

func declareBookingQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}

func (q *RabbitMQBookingQueueImpl) PublishBooking(ctx context.Context, req *model.BookTicketRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    req.RequestID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err := q.publishCh.PublishWithContext(ctx,
		"",          // default exchange
		q.queueName, // routing key = queue name
		false,       // mandatory
		false,       // immediate
		pub,
	); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (q *RabbitMQBookingQueueImpl) SubscribeBookings(ctx context.Context) (<-chan Delivery, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("channel open: %w", err)
	}

	if err := ch.Qos(rabbitPrefetch, 0, false); err != nil {
		logger.WithComponent("mq").Warn("set QoS failed", zap.Error(err))
	}

	if _, err := declareBookingQueue(ch, q.queueName); err != nil {
		_ = ch.Close()
		return nil, err
	}

	msgs, err := ch.Consume(q.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("queue consume: %w", err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		defer func() { _ = ch.Close() }()

		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-msgs:
				if !ok {
					logger.WithComponent("mq").Warn("deliveries channel closed")
					return
				}
				delivery := newRabbitDelivery(d)
				if delivery == nil {
					continue
				}
				select {
				case out <- *delivery:
				case <-ctx.Done():
					_ = d.Nack(false, true)
					return
				}
			}
		}
	}()

	return out, nil
}

// newRabbitDelivery 無法解析的訊息直接 reject，不重新排隊以免無限循環
func newRabbitDelivery(d amqp.Delivery) *Delivery {
	log := logger.WithComponent("mq").With(zap.String("message_id", d.MessageId))

	var req model.BookTicketRequest
	if err := json.Unmarshal(d.Body, &req); err != nil {
		log.Warn("unmarshal booking failed", zap.Error(err))
		_ = d.Nack(false, false)
		return nil
	}

	return &Delivery{
		Data: &req,
		Ack: func() {
			if err := d.Ack(false); err != nil {
				log.Error("ack failed", zap.Error(err))
			}
		},
		Nack: func(requeue bool) {
			if err := d.Nack(false, requeue); err != nil {
				log.Error("nack failed", zap.Error(err))
			}
		},
	}
}

func (q *RabbitMQBookingQueueImpl) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	_ = q.publishCh.Close()
	return q.conn.Close()
}
