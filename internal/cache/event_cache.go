package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go-gin-ticket-booking/internal/model"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// EventCache 以版本號保護回填：Invalidate 會遞增版本，
// 讀取端先取 Version 再查資料庫，Fill 只在版本未變時寫入。
type EventCache interface {
	// 讀取：未命中時 found 為 false
	Get(ctx context.Context, eventID int) (event *model.Event, found bool, err error)
	// 目前版本，查資料庫前取得
	Version(ctx context.Context, eventID int) (int64, error)
	// 回填：版本與 version 相同才覆寫整筆並重設 TTL，written 表示是否寫入
	Fill(ctx context.Context, event *model.Event, version int64) (written bool, err error)
	// 失效：活動更新或刪除後呼叫
	Invalidate(ctx context.Context, eventID int) error
}

// fillScript KEYS[1]=info KEYS[2]=version ARGV[1]=期望版本 ARGV[2]=ttl(ms) ARGV[3..]=欄位
var fillScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
if tonumber(ARGV[2]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 1
`)

type RedisEventCacheImpl struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisEventCache(client *redis.Client, ttl time.Duration) EventCache {
	return &RedisEventCacheImpl{
		client: client,
		ttl:    ttl,
	}
}

// 活動 key
func (c *RedisEventCacheImpl) getInfoKey(eventID int) string {
	return fmt.Sprintf("event:%d:info", eventID)
}

// 版本 key
func (c *RedisEventCacheImpl) getVersionKey(eventID int) string {
	return fmt.Sprintf("event:%d:version", eventID)
}

func (c *RedisEventCacheImpl) Get(ctx context.Context, eventID int) (*model.Event, bool, error) {
	result, err := c.client.HGetAll(ctx, c.getInfoKey(eventID)).Result()
	if err != nil {
		return nil, false, err
	}

	// 檢查 key 是否存在
	if len(result) == 0 {
		return nil, false, nil
	}

	event, err := decodeEvent(eventID, result)
	if err != nil {
		// 內容損毀時當作未命中，交給呼叫端重新載入
		_ = c.Invalidate(ctx, eventID)
		return nil, false, nil
	}
	return event, true, nil
}

func (c *RedisEventCacheImpl) Version(ctx context.Context, eventID int) (int64, error) {
	version, err := c.client.Get(ctx, c.getVersionKey(eventID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return version, err
}

func (c *RedisEventCacheImpl) Fill(ctx context.Context, event *model.Event, version int64) (bool, error) {
	keys := []string{c.getInfoKey(event.ID), c.getVersionKey(event.ID)}
	args := []interface{}{
		strconv.FormatInt(version, 10),
		c.ttl.Milliseconds(),
		"title", event.Title,
		"date", event.Date.Format(model.DateLayout),
		"ticket_price", event.TicketPrice.String(),
		"created_at", event.CreatedAt.Format(time.RFC3339Nano),
		"updated_at", event.UpdatedAt.Format(time.RFC3339Nano),
	}

	written, err := fillScript.Run(ctx, c.client, keys, args...).Int()
	if err != nil {
		return false, err
	}
	return written == 1, nil
}

// Invalidate 先遞增版本再刪資料，進行中的回填會被擋下
func (c *RedisEventCacheImpl) Invalidate(ctx context.Context, eventID int) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.getVersionKey(eventID))
		pipe.Del(ctx, c.getInfoKey(eventID))
		return nil
	})
	return err
}

func decodeEvent(eventID int, fields map[string]string) (*model.Event, error) {
	date, err := time.Parse(model.DateLayout, fields["date"])
	if err != nil {
		return nil, fmt.Errorf("invalid date: %w", err)
	}

	price, err := decimal.NewFromString(fields["ticket_price"])
	if err != nil {
		return nil, fmt.Errorf("invalid ticket_price: %w", err)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}

	return &model.Event{
		ID:          eventID,
		Title:       fields["title"],
		Date:        date,
		TicketPrice: price,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// NoopEventCache 未啟用快取時使用，永遠未命中
type NoopEventCache struct{}

func NewNoopEventCache() EventCache {
	return NoopEventCache{}
}

func (NoopEventCache) Get(ctx context.Context, eventID int) (*model.Event, bool, error) {
	return nil, false, nil
}

func (NoopEventCache) Version(ctx context.Context, eventID int) (int64, error) {
	return 0, nil
}

func (NoopEventCache) Fill(ctx context.Context, event *model.Event, version int64) (bool, error) {
	return false, nil
}

func (NoopEventCache) Invalidate(ctx context.Context, eventID int) error {
	return nil
}
