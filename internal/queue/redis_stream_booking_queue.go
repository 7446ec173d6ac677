package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	StreamKey          = "bookings:stream"
	ConsumerGroupName  = "booking-workers"
	ConsumerNamePrefix = "worker"

	bookingField  = "booking"
	readBatchSize = 10
)

// RedisStreamBookingQueueConfig 可注入的逾時與重試設定；nil 或零值時使用預設。
type RedisStreamBookingQueueConfig struct {
	StreamKey          string        // 預設 StreamKey，測試可改用獨立 stream
	ClaimMinIdleTime   time.Duration // PEL 中超過此時間才被 XAUTOCLAIM 領取
	MaxRetryCount      int           // 超過此次數視為毒藥消息並丟棄
	ReadGroupBlockTime time.Duration // XReadGroup 阻塞時間
}

// withDefaults 零值欄位補上預設
func (c RedisStreamBookingQueueConfig) withDefaults() RedisStreamBookingQueueConfig {
	if c.StreamKey == "" {
		c.StreamKey = StreamKey
	}
	if c.ClaimMinIdleTime <= 0 {
		c.ClaimMinIdleTime = 5 * time.Second
	}
	if c.MaxRetryCount <= 0 {
		c.MaxRetryCount = 5
	}
	if c.ReadGroupBlockTime <= 0 {
		c.ReadGroupBlockTime = 2 * time.Second
	}
	return c
}

// RedisStreamBookingQueueImpl 以 consumer group 消費 stream；未 ack 的訊息由 XAUTOCLAIM 重新投遞
type RedisStreamBookingQueueImpl struct {
	client       *redis.Client
	streamKey    string
	groupName    string
	consumerName string
	cfg          RedisStreamBookingQueueConfig
}

// NewRedisStreamBookingQueue consumerID 為空時產生 uuid；config 可為 nil
func NewRedisStreamBookingQueue(client *redis.Client, consumerID string, config *RedisStreamBookingQueueConfig) (BookingQueue, error) {
	if consumerID == "" {
		consumerID = uuid.New().String()
	}
	var cfg RedisStreamBookingQueueConfig
	if config != nil {
		cfg = *config
	}
	cfg = cfg.withDefaults()

	q := &RedisStreamBookingQueueImpl{
		client:       client,
		streamKey:    cfg.StreamKey,
		groupName:    ConsumerGroupName,
		consumerName: ConsumerNamePrefix + ":" + consumerID,
		cfg:          cfg,
	}
	if err := q.ensureConsumerGroup(context.Background()); err != nil {
		return nil, fmt.Errorf("ensure consumer group: %w", err)
	}
	return q, nil
}

func (q *RedisStreamBookingQueueImpl) ensureConsumerGroup(ctx context.Context) error {
	err := q.client.XGroupCreateMkStream(ctx, q.streamKey, q.groupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (q *RedisStreamBookingQueueImpl) PublishBooking(ctx context.Context, req *model.BookTicketRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	_, err = q.client.XAdd(ctx, &redis.XAddArgs{
		Stream: q.streamKey,
		ID:     "*",
		Values: map[string]interface{}{bookingField: string(body)},
	}).Result()
	if err != nil {
		return fmt.Errorf("xadd: %w", err)
	}
	return nil
}

func (q *RedisStreamBookingQueueImpl) SubscribeBookings(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			q.readNew(ctx, out)
		}
	}()
	go func() {
		defer wg.Done()
		q.reclaimIdle(ctx, out)
	}()
	go func() {
		wg.Wait()
		close(out)
	}()
	return out, nil
}

// readNew 只讀從未投遞過的訊息 (">")；已投遞未 ack 的留給 reclaimIdle
func (q *RedisStreamBookingQueueImpl) readNew(ctx context.Context, out chan<- Delivery) {
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: q.consumerName,
		Streams:  []string{q.streamKey, ">"},
		Count:    readBatchSize,
		Block:    q.cfg.ReadGroupBlockTime,
	}).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return
	case err != nil:
		if ctx.Err() == nil {
			logger.WithComponent("mq").Error("XReadGroup failed", zap.String("stream", q.streamKey), zap.Error(err))
			sleepCtx(ctx, time.Second)
		}
		return
	}

	for _, stream := range streams {
		if stream.Stream == q.streamKey {
			q.dispatch(ctx, out, stream.Messages, false)
		}
	}
}

// reclaimIdle 每隔 ClaimMinIdleTime 用 XAUTOCLAIM 領回閒置過久的訊息重新投遞
func (q *RedisStreamBookingQueueImpl) reclaimIdle(ctx context.Context, out chan<- Delivery) {
	ticker := time.NewTicker(q.cfg.ClaimMinIdleTime)
	defer ticker.Stop()

	cursor := "0-0"
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		claimed, next, err := q.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   q.streamKey,
			Group:    q.groupName,
			Consumer: q.consumerName,
			MinIdle:  q.cfg.ClaimMinIdleTime,
			Start:    cursor,
			Count:    readBatchSize,
		}).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			if ctx.Err() == nil {
				logger.WithComponent("mq").Error("XAutoClaim failed", zap.String("stream", q.streamKey), zap.Error(err))
			}
			continue
		}

		// 掃完一輪後 next 會回到 0-0
		cursor = next
		if cursor == "" {
			cursor = "0-0"
		}
		if !q.dispatch(ctx, out, claimed, true) {
			return
		}
	}
}

// dispatch 逐筆轉成 Delivery 送出；ctx 結束時回傳 false
func (q *RedisStreamBookingQueueImpl) dispatch(ctx context.Context, out chan<- Delivery, msgs []redis.XMessage, reclaimed bool) bool {
	for _, msg := range msgs {
		if reclaimed && q.exceededRetries(ctx, msg.ID) {
			continue
		}
		d, ok := q.toDelivery(ctx, msg)
		if !ok {
			continue
		}
		select {
		case out <- d:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// exceededRetries 投遞次數達上限的毒藥訊息直接 ack 掉，不再重試
func (q *RedisStreamBookingQueueImpl) exceededRetries(ctx context.Context, messageID string) bool {
	log := logger.WithComponent("mq").With(zap.String("message_id", messageID))

	pending, err := q.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: q.streamKey,
		Group:  q.groupName,
		Start:  messageID,
		End:    messageID,
		Count:  1,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Warn("XPendingExt failed, delivering anyway", zap.Error(err))
		return false
	}
	if len(pending) == 0 || int(pending[0].RetryCount) < q.cfg.MaxRetryCount {
		return false
	}

	log.Warn("discard booking after too many deliveries",
		zap.Int64("deliveries", pending[0].RetryCount),
		zap.Int("max_retries", q.cfg.MaxRetryCount),
	)
	q.ack(ctx, messageID)
	return true
}

// toDelivery 解析失敗的訊息直接 ack 丟棄
func (q *RedisStreamBookingQueueImpl) toDelivery(ctx context.Context, msg redis.XMessage) (Delivery, bool) {
	log := logger.WithComponent("mq").With(zap.String("message_id", msg.ID))

	raw, ok := msg.Values[bookingField].(string)
	if !ok {
		log.Warn("booking field missing, dropping message")
		q.ack(ctx, msg.ID)
		return Delivery{}, false
	}
	var req model.BookTicketRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		log.Warn("unmarshal booking failed, dropping message", zap.Error(err))
		q.ack(ctx, msg.ID)
		return Delivery{}, false
	}

	id := msg.ID
	return Delivery{
		Data: &req,
		Ack:  func() { q.ack(ctx, id) },
		Nack: func(requeue bool) {
			if !requeue {
				q.ack(ctx, id)
				return
			}
			// 不 ack：留在 PEL，閒置超過 ClaimMinIdleTime 後由 reclaimIdle 重新投遞
			log.Info("booking nacked, waiting for reclaim", zap.Duration("claim_min_idle", q.cfg.ClaimMinIdleTime))
		},
	}, true
}

func (q *RedisStreamBookingQueueImpl) ack(ctx context.Context, messageID string) {
	if err := q.client.XAck(ctx, q.streamKey, q.groupName, messageID).Err(); err != nil {
		logger.WithComponent("mq").Error("XAck failed", zap.String("message_id", messageID), zap.Error(err))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
