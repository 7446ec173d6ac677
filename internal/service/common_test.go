package service

import (
	"context"
	"errors"
	"sync"

	"go-gin-ticket-booking/internal/model"
)

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// fakeEventCache 記憶體版快取，記錄呼叫次數
type fakeEventCache struct {
	mu          sync.Mutex
	items       map[int]model.Event
	versions    map[int]int64
	hits        int
	skipped     int
	invalidated []int
}

func newFakeEventCache() *fakeEventCache {
	return &fakeEventCache{items: make(map[int]model.Event), versions: make(map[int]int64)}
}

func (c *fakeEventCache) Get(ctx context.Context, id int) (*model.Event, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.items[id]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	return &e, true, nil
}

func (c *fakeEventCache) Version(ctx context.Context, id int) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[id], nil
}

func (c *fakeEventCache) Fill(ctx context.Context, event *model.Event, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[event.ID] != version {
		c.skipped++
		return false, nil
	}
	c.items[event.ID] = *event
	return true, nil
}

func (c *fakeEventCache) Invalidate(ctx context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[id]++
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}
