// Package memory 以 map 實作 repository 介面，作為不需要資料庫時的儲存後端。
package memory

import (
	"sort"
	"sync"
)

// Table 以 id 為 key 的 map，value 以值保存，呼叫端拿到的都是副本
type Table[T any] struct {
	mu   sync.RWMutex
	rows map[int]T
}

func NewTable[T any]() *Table[T] {
	return &Table[T]{rows: make(map[int]T)}
}

// Put 新增或覆寫
func (t *Table[T]) Put(id int, v T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id] = v
}

func (t *Table[T]) Get(id int) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.rows[id]
	return v, ok
}

// All 依 id 由小到大回傳所有資料，分頁結果才會穩定
func (t *Table[T]) All() []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]int, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.rows[id])
	}
	return out
}

// Remove 有資料被刪除時回傳 true
func (t *Table[T]) Remove(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	return true
}

func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// pointers 把值複製成指標 slice，與 pgx 版本的回傳型別一致
func pointers[T any](values []T) []*T {
	out := make([]*T, len(values))
	for i := range values {
		v := values[i]
		out[i] = &v
	}
	return out
}
