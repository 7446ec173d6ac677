package service

import (
	"context"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/repository"
	apperrors "go-gin-ticket-booking/pkg/app_errors"

	"github.com/shopspring/decimal"
)

type AccountService interface {
	// Create 為既有使用者開戶，每位使用者只能有一個帳戶
	Create(ctx context.Context, userID int) (*model.Account, error)
	GetByUserID(ctx context.Context, userID int) (*model.Account, error)
	Refill(ctx context.Context, userID int, amount decimal.Decimal) (*model.Account, error)
	Charge(ctx context.Context, userID int, amount decimal.Decimal) (*model.Account, error)
	Delete(ctx context.Context, userID int) (bool, error)
}

type AccountServiceImpl struct {
	repo     repository.AccountRepository
	userRepo repository.UserRepository
}

func NewAccountService(repo repository.AccountRepository, userRepo repository.UserRepository) AccountService {
	return &AccountServiceImpl{repo: repo, userRepo: userRepo}
}

func (s *AccountServiceImpl) Create(ctx context.Context, userID int) (*model.Account, error) {
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, &model.Account{UserID: userID, Balance: decimal.Zero})
}

func (s *AccountServiceImpl) GetByUserID(ctx context.Context, userID int) (*model.Account, error) {
	return s.repo.FindByUserID(ctx, userID)
}

func (s *AccountServiceImpl) Refill(ctx context.Context, userID int, amount decimal.Decimal) (*model.Account, error) {
	amount, err := normalizeAmount(amount)
	if err != nil {
		return nil, err
	}
	return s.repo.Refill(ctx, userID, amount)
}

func (s *AccountServiceImpl) Charge(ctx context.Context, userID int, amount decimal.Decimal) (*model.Account, error) {
	amount, err := normalizeAmount(amount)
	if err != nil {
		return nil, err
	}
	return s.repo.Charge(ctx, userID, amount)
}

func (s *AccountServiceImpl) Delete(ctx context.Context, userID int) (bool, error) {
	return s.repo.Delete(ctx, userID)
}

// normalizeAmount 金額四捨五入到兩位後必須大於零
func normalizeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	amount = model.RoundMoney(amount)
	if !amount.IsPositive() {
		return decimal.Zero, apperrors.ErrInvalidInput
	}
	return amount, nil
}
