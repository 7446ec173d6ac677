// Package testutil 連接測試用 Postgres / Redis；服務不存在時跳過測試。
package testutil

import (
	"context"
	"testing"

	"go-gin-ticket-booking/config"
	"go-gin-ticket-booking/internal/database"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// SetupPostgres 連接測試 DB、套用 schema 並清空資料表
func SetupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	cfg := config.LoadTestConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(pool.Close)

	ctx := context.Background()
	if err := database.Migrate(ctx, pool); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	TruncatePostgres(t, pool)
	return pool
}

// TruncatePostgres 清空所有測試資料並重設序號，保留 schema
func TruncatePostgres(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), "TRUNCATE accounts, tickets, events, users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SetupRedis 僅初始化 Redis，用於 cache 與 queue 整合測試
func SetupRedis(t *testing.T) *redis.Client {
	t.Helper()
	cfg := config.LoadTestConfig()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		t.Skipf("test redis unavailable: %v", err)
	}
	if err := rdb.FlushDB(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		t.Fatalf("Failed to flush test redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}
