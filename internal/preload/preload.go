// Package preload 從 YAML 檔匯入初始資料，所有資料都經過一般的建立流程。
//
// 檔案格式：
//
//	users:
//	  - name: Alice
//	    email: alice@example.com
//	events:
//	  - title: Concert
//	    date: 2030-05-01
//	    ticket_price: "25.00"
//	tickets:
//	  - user: alice@example.com   # 以 email 指定使用者
//	    event: Concert            # 以標題指定活動 (取 id 最小者)
//	    category: PREMIUM
//	    place: 12
//	accounts:
//	  - user: alice@example.com
//	    balance: "100.00"
package preload

import (
	"context"
	"fmt"
	"os"
	"time"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/service"
	apperrors "go-gin-ticket-booking/pkg/app_errors"
	"go-gin-ticket-booking/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type File struct {
	Users    []UserEntry    `yaml:"users"`
	Events   []EventEntry   `yaml:"events"`
	Tickets  []TicketEntry  `yaml:"tickets"`
	Accounts []AccountEntry `yaml:"accounts"`
}

type UserEntry struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
}

type EventEntry struct {
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	TicketPrice string `yaml:"ticket_price"`
}

type TicketEntry struct {
	User     string         `yaml:"user"`
	Event    string         `yaml:"event"`
	Category model.Category `yaml:"category"`
	Place    int            `yaml:"place"`
}

type AccountEntry struct {
	User    string `yaml:"user"`
	Balance string `yaml:"balance"`
}

type Services struct {
	Users    service.UserService
	Events   service.EventService
	Tickets  service.TicketService
	Accounts service.AccountService // 可為 nil，此時忽略 accounts 區塊
}

// Summary 各類資料實際建立的筆數
type Summary struct {
	Users    int
	Events   int
	Tickets  int
	Accounts int
}

func LoadFile(ctx context.Context, path string, svc Services) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preload file %s: %w", path, err)
	}
	return Load(ctx, data, svc)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse preload YAML: %w", err)
	}
	return &f, nil
}

// Load 依 users -> events -> tickets -> accounts 順序匯入；遇到第一個錯誤即停止
func Load(ctx context.Context, data []byte, svc Services) (*Summary, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}

	log := logger.WithComponent("preload")
	summary := &Summary{}

	for i, u := range f.Users {
		if _, err := svc.Users.Create(ctx, &model.User{Name: u.Name, Email: u.Email}); err != nil {
			return summary, fmt.Errorf("users[%d] %s: %w", i, u.Email, err)
		}
		summary.Users++
	}

	for i, e := range f.Events {
		event, err := e.toModel()
		if err != nil {
			return summary, fmt.Errorf("events[%d] %s: %w", i, e.Title, err)
		}
		if _, err := svc.Events.Create(ctx, event); err != nil {
			return summary, fmt.Errorf("events[%d] %s: %w", i, e.Title, err)
		}
		summary.Events++
	}

	for i, t := range f.Tickets {
		if err := bookTicket(ctx, svc, t); err != nil {
			return summary, fmt.Errorf("tickets[%d]: %w", i, err)
		}
		summary.Tickets++
	}

	if svc.Accounts != nil {
		for i, a := range f.Accounts {
			if err := openAccount(ctx, svc, a); err != nil {
				return summary, fmt.Errorf("accounts[%d] %s: %w", i, a.User, err)
			}
			summary.Accounts++
		}
	} else if len(f.Accounts) > 0 {
		log.Warn("accounts section ignored", zap.Int("count", len(f.Accounts)))
	}

	log.Info("preload finished",
		zap.Int("users", summary.Users),
		zap.Int("events", summary.Events),
		zap.Int("tickets", summary.Tickets),
		zap.Int("accounts", summary.Accounts),
	)
	return summary, nil
}

func (e EventEntry) toModel() (*model.Event, error) {
	date, err := time.Parse(model.DateLayout, e.Date)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", e.Date, apperrors.ErrInvalidInput)
	}
	price := decimal.Zero
	if e.TicketPrice != "" {
		price, err = decimal.NewFromString(e.TicketPrice)
		if err != nil {
			return nil, fmt.Errorf("ticket_price %q: %w", e.TicketPrice, apperrors.ErrInvalidInput)
		}
	}
	return &model.Event{Title: e.Title, Date: date, TicketPrice: price}, nil
}

func bookTicket(ctx context.Context, svc Services, t TicketEntry) error {
	user, err := svc.Users.GetByEmail(ctx, t.User)
	if err != nil {
		return fmt.Errorf("user %s: %w", t.User, err)
	}
	events, err := svc.Events.ListByTitle(ctx, t.Event, pagination.New(1, 1))
	if err != nil {
		return fmt.Errorf("event %s: %w", t.Event, err)
	}
	if len(events) == 0 {
		return fmt.Errorf("event %s: %w", t.Event, apperrors.ErrEventNotFound)
	}
	_, err = svc.Tickets.Book(ctx, user.ID, events[0].ID, t.Category, t.Place)
	return err
}

func openAccount(ctx context.Context, svc Services, a AccountEntry) error {
	user, err := svc.Users.GetByEmail(ctx, a.User)
	if err != nil {
		return err
	}
	if _, err := svc.Accounts.Create(ctx, user.ID); err != nil {
		return err
	}
	if a.Balance == "" {
		return nil
	}
	balance, err := decimal.NewFromString(a.Balance)
	if err != nil {
		return fmt.Errorf("balance %q: %w", a.Balance, apperrors.ErrInvalidInput)
	}
	if balance.IsZero() {
		return nil
	}
	_, err = svc.Accounts.Refill(ctx, user.ID, balance)
	return err
}
