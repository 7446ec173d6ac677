package model

import (
	"fmt"
	"time"
)

// User 使用者模型，email 在所有未刪除的使用者中唯一
type User struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateUserParams nil 代表「未提供」，不會覆寫現有欄位
type UpdateUserParams struct {
	Name  *string
	Email *string
}

func (p UpdateUserParams) IsEmpty() bool {
	return p.Name == nil && p.Email == nil
}

func (u *User) String() string {
	return fmt.Sprintf("User #%d: %s <%s>", u.ID, u.Name, u.Email)
}
