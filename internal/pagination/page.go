// Package pagination 實作「過濾 -> 略過 -> 取固定筆數」的分頁規則。
// 頁碼從 1 開始；PageNum < 1 或 PageSize < 1 一律視為無效輸入。
package pagination

import (
	"math"

	apperrors "go-gin-ticket-booking/pkg/app_errors"
)

// MaxPageSize 單頁上限
const MaxPageSize = 1000

type Page struct {
	Size int `form:"page_size,default=10"`
	Num  int `form:"page_num,default=1"`
}

func New(size, num int) Page {
	return Page{Size: size, Num: num}
}

// Validate 另外擋下 Offset 會溢位的頁碼
func (p Page) Validate() error {
	if p.Size < 1 || p.Num < 1 || p.Size > MaxPageSize {
		return apperrors.ErrInvalidInput
	}
	if p.Num-1 > math.MaxInt/p.Size {
		return apperrors.ErrInvalidInput
	}
	return nil
}

// Offset 需要略過的筆數
func (p Page) Offset() int {
	return p.Size * (p.Num - 1)
}

func (p Page) Limit() int {
	return p.Size
}

// Apply 依序過濾 items，略過前 Offset 筆符合者，最多回傳 Size 筆。
// match 為 nil 時視為全部符合。沒有符合資料時回傳空 slice 而非錯誤。
func Apply[T any](items []T, match func(T) bool, p Page) ([]T, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	skip := p.Offset()
	out := make([]T, 0, min(p.Size, len(items)))
	for _, item := range items {
		if match != nil && !match(item) {
			continue
		}
		if skip > 0 {
			skip--
			continue
		}
		out = append(out, item)
		if len(out) == p.Size {
			break
		}
	}
	return out, nil
}
