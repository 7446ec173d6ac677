package model

import (
	"fmt"
	"time"
)

// Category 票券類別
type Category string

const (
	CategoryStandard Category = "STANDARD"
	CategoryPremium  Category = "PREMIUM"
	CategoryBar      Category = "BAR"
)

// IsValid 驗證類別是否有效
func (c Category) IsValid() bool {
	switch c {
	case CategoryStandard, CategoryPremium, CategoryBar:
		return true
	}
	return false
}

// Ticket 票券模型：建立後不可修改，只能取消(刪除)
type Ticket struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	EventID   int       `json:"event_id" db:"event_id"`
	Category  Category  `json:"category" db:"category"`
	Place     int       `json:"place" db:"place"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BookTicketRequest 訂票請求，同步 API 與 MQ 訊息共用
type BookTicketRequest struct {
	RequestID string   `json:"request_id,omitempty"`
	UserID    int      `json:"user_id" binding:"required"`
	EventID   int      `json:"event_id" binding:"required"`
	Category  Category `json:"category" binding:"required"`
	Place     int      `json:"place" binding:"required"`
}

func (t *Ticket) String() string {
	return fmt.Sprintf("Ticket #%d: user %d, event %d, %s, place %d",
		t.ID, t.UserID, t.EventID, t.Category, t.Place)
}
