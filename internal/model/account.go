package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account 使用者帳戶，與 User 一對一，以 user id 為主鍵
type Account struct {
	UserID    int             `json:"user_id" db:"user_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

func (a *Account) String() string {
	return fmt.Sprintf("Account of user %d: balance %s", a.UserID, FormatMoney(a.Balance))
}

type accountAlias Account

// MarshalJSON 餘額固定兩位小數
func (a Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		*accountAlias
		Balance string `json:"balance"`
	}{
		accountAlias: (*accountAlias)(&a),
		Balance:      FormatMoney(a.Balance),
	})
}
