package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

type Event struct {
	ID          int             `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Date        time.Time       `json:"date" db:"date"`
	TicketPrice decimal.Decimal `json:"ticket_price" db:"ticket_price"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

type UpdateEventParams struct {
	Title       *string
	Date        *time.Time
	TicketPrice *decimal.Decimal
}

func (p UpdateEventParams) IsEmpty() bool {
	return p.Title == nil && p.Date == nil && p.TicketPrice == nil
}

// SameDay 比較兩個時間是否為同一個日曆日 (UTC)
func SameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}

// DateOf 取 UTC 當天零點
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (e *Event) String() string {
	return fmt.Sprintf("Event #%d: %s on %s, price %s",
		e.ID, e.Title, e.Date.Format(DateLayout), FormatMoney(e.TicketPrice))
}

type eventAlias Event

// MarshalJSON 日期輸出為 YYYY-MM-DD，票價固定兩位小數
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		*eventAlias
		Date        string `json:"date"`
		TicketPrice string `json:"ticket_price"`
	}{
		eventAlias:  (*eventAlias)(&e),
		Date:        e.Date.Format(DateLayout),
		TicketPrice: FormatMoney(e.TicketPrice),
	})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	aux := struct {
		*eventAlias
		Date        string          `json:"date"`
		TicketPrice decimal.Decimal `json:"ticket_price"`
	}{eventAlias: (*eventAlias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	e.TicketPrice = aux.TicketPrice
	if aux.Date == "" {
		e.Date = time.Time{}
		return nil
	}
	date, err := time.Parse(DateLayout, aux.Date)
	if err != nil {
		return fmt.Errorf("invalid date: %w", err)
	}
	e.Date = date
	return nil
}
