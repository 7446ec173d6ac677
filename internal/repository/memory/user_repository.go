package memory

import (
	"context"
	"sync"
	"time"

	"go-gin-ticket-booking/internal/idgen"
	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/repository"
	apperrors "go-gin-ticket-booking/pkg/app_errors"
)

type UserRepository struct {
	// writeMu 讓「檢查 email -> 寫入」成為單一步驟，效果等同資料庫的 unique index
	writeMu sync.Mutex
	table   *Table[model.User]
	ids     *idgen.Sequence
}

func NewUserRepository(ids *idgen.Sequence) repository.UserRepository {
	if ids == nil {
		ids = idgen.NewSequence()
	}
	return &UserRepository{
		table: NewTable[model.User](),
		ids:   ids,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) (*model.User, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if r.emailTaken(user.Email, 0) {
		return nil, apperrors.ErrDuplicateEmail
	}

	now := time.Now().UTC()
	user.ID = r.ids.Next()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.table.Put(user.ID, *user)

	created := *user
	return &created, nil
}

func (r *UserRepository) List(ctx context.Context, page pagination.Page) ([]*model.User, error) {
	users, err := pagination.Apply(r.table.All(), nil, page)
	if err != nil {
		return nil, err
	}
	return pointers(users), nil
}

func (r *UserRepository) ListByName(ctx context.Context, name string, page pagination.Page) ([]*model.User, error) {
	users, err := pagination.Apply(r.table.All(), func(u model.User) bool {
		return u.Name == name
	}, page)
	if err != nil {
		return nil, err
	}
	return pointers(users), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int) (*model.User, error) {
	user, ok := r.table.Get(id)
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range r.table.All() {
		if user.Email == email {
			return &user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *UserRepository) Update(ctx context.Context, id int, params model.UpdateUserParams) (*model.User, error) {
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	user, ok := r.table.Get(id)
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}

	// 先驗證再修改，失敗時不留下部分寫入
	if params.Email != nil && *params.Email != user.Email && r.emailTaken(*params.Email, id) {
		return nil, apperrors.ErrDuplicateEmail
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	user.UpdatedAt = time.Now().UTC()
	r.table.Put(id, user)

	return &user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id int) (bool, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.table.Remove(id), nil
}

// emailTaken 呼叫端須持有 writeMu
func (r *UserRepository) emailTaken(email string, excludingID int) bool {
	for _, user := range r.table.All() {
		if user.Email == email && user.ID != excludingID {
			return true
		}
	}
	return false
}
