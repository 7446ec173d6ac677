package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/repository"
	apperrors "go-gin-ticket-booking/pkg/app_errors"
)

type UserService interface {
	Create(ctx context.Context, user *model.User) (*model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// ListByName 名稱完全相符 (非子字串)；name 為空時列出全部
	ListByName(ctx context.Context, name string, page pagination.Page) ([]*model.User, error)
	Update(ctx context.Context, id int, params model.UpdateUserParams) (*model.User, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type UserServiceImpl struct {
	repo repository.UserRepository

	// writeMu 包住「email 唯一性檢查 + 寫入」，避免兩個同時建立的請求都通過檢查
	writeMu sync.Mutex
}

func NewUserService(repo repository.UserRepository) UserService {
	return &UserServiceImpl{repo: repo}
}

func (s *UserServiceImpl) Create(ctx context.Context, user *model.User) (*model.User, error) {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)
	if user.Name == "" || user.Email == "" {
		return nil, apperrors.ErrInvalidInput
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	unique, err := s.isEmailUnique(ctx, user.Email, 0)
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, apperrors.ErrDuplicateEmail
	}

	user.ID = 0
	return s.repo.Create(ctx, user)
}

func (s *UserServiceImpl) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserServiceImpl) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.repo.FindByEmail(ctx, strings.TrimSpace(email))
}

func (s *UserServiceImpl) ListByName(ctx context.Context, name string, page pagination.Page) ([]*model.User, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if name == "" {
		return s.repo.List(ctx, page)
	}
	return s.repo.ListByName(ctx, name, page)
}

func (s *UserServiceImpl) Update(ctx context.Context, id int, params model.UpdateUserParams) (*model.User, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	effective := effectiveUserUpdate(existing, params)
	if effective.Email != nil {
		unique, err := s.isEmailUnique(ctx, *effective.Email, id)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, apperrors.ErrDuplicateEmail
		}
	}

	// 沒有實際變更的欄位，原樣回傳
	if effective.IsEmpty() {
		return existing, nil
	}

	return s.repo.Update(ctx, id, effective)
}

func (s *UserServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.repo.Delete(ctx, id)
}

// isEmailUnique 檢查是否有其他未刪除的使用者使用此 email；excludingID 為正在更新的使用者
func (s *UserServiceImpl) isEmailUnique(ctx context.Context, email string, excludingID int) (bool, error) {
	found, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return true, nil
		}
		return false, err
	}
	return found.ID == excludingID, nil
}

// effectiveUserUpdate 只保留會改變資料的欄位：空字串視為未提供，email 相同視為未變更
func effectiveUserUpdate(existing *model.User, params model.UpdateUserParams) model.UpdateUserParams {
	var out model.UpdateUserParams

	if params.Name != nil {
		if name := strings.TrimSpace(*params.Name); name != "" && name != existing.Name {
			out.Name = &name
		}
	}

	if params.Email != nil {
		if email := strings.TrimSpace(*params.Email); email != "" && email != existing.Email {
			out.Email = &email
		}
	}

	return out
}
