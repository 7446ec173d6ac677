// Package idgen 提供記憶體儲存用的遞增 id 產生器
package idgen

import "sync/atomic"

// Sequence 從 1 開始嚴格遞增，刪除資料後也不會重複使用
type Sequence struct {
	last atomic.Int64
}

func NewSequence() *Sequence {
	return &Sequence{}
}

// Next 回傳下一個 id，可同時被多個 goroutine 呼叫
func (s *Sequence) Next() int {
	return int(s.last.Add(1))
}

// Current 回傳最後發出的 id，尚未發出時為 0
func (s *Sequence) Current() int {
	return int(s.last.Load())
}
