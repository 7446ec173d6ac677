package service

import (
	"context"
	"errors"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/queue"
	"go-gin-ticket-booking/internal/repository"
	apperrors "go-gin-ticket-booking/pkg/app_errors"
	"go-gin-ticket-booking/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TicketService interface {
	// Book 同步訂票。不檢查同一活動的座位是否已被訂走，重複的訂票會產生兩張票
	Book(ctx context.Context, userID, eventID int, category model.Category, place int) (*model.Ticket, error)
	// BookAsync 驗證後送進隊列，由 worker 呼叫 Book 完成；回傳 request id
	BookAsync(ctx context.Context, req model.BookTicketRequest) (string, error)
	GetByID(ctx context.Context, id int) (*model.Ticket, error)
	ListByUser(ctx context.Context, userID int, page pagination.Page) ([]*model.Ticket, error)
	ListByEvent(ctx context.Context, eventID int, page pagination.Page) ([]*model.Ticket, error)
	List(ctx context.Context, page pagination.Page) ([]*model.Ticket, error)
	Cancel(ctx context.Context, id int) (bool, error)
}

type TicketServiceImpl struct {
	repo         repository.TicketRepository
	userRepo     repository.UserRepository
	eventRepo    repository.EventRepository
	bookingQueue queue.BookingQueue
}

func NewTicketService(
	repo repository.TicketRepository,
	userRepo repository.UserRepository,
	eventRepo repository.EventRepository,
	bookingQueue queue.BookingQueue,
) TicketService {
	return &TicketServiceImpl{
		repo:         repo,
		userRepo:     userRepo,
		eventRepo:    eventRepo,
		bookingQueue: bookingQueue,
	}
}

func validateBooking(category model.Category, place int) error {
	if !category.IsValid() || place < 1 {
		return apperrors.ErrInvalidInput
	}
	return nil
}

func (s *TicketServiceImpl) Book(ctx context.Context, userID, eventID int, category model.Category, place int) (*model.Ticket, error) {
	if err := validateBooking(category, place); err != nil {
		return nil, err
	}

	// 1. 確認使用者與活動存在
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.eventRepo.FindByID(ctx, eventID); err != nil {
		return nil, err
	}

	// 2. 建立票券
	ticket, err := s.repo.Create(ctx, &model.Ticket{
		UserID:   userID,
		EventID:  eventID,
		Category: category,
		Place:    place,
	})
	if err != nil {
		return nil, err
	}

	logger.WithComponent("service").Info("ticket booked",
		zap.Int("ticket_id", ticket.ID),
		zap.Int("user_id", userID),
		zap.Int("event_id", eventID),
	)
	return ticket, nil
}

func (s *TicketServiceImpl) BookAsync(ctx context.Context, req model.BookTicketRequest) (string, error) {
	if err := validateBooking(req.Category, req.Place); err != nil {
		return "", err
	}
	if s.bookingQueue == nil {
		return "", apperrors.ErrInternalServerError
	}

	req.RequestID = uuid.New().String()
	if err := s.bookingQueue.PublishBooking(ctx, &req); err != nil {
		logger.WithComponent("service").Error("failed to publish booking", zap.String("request_id", req.RequestID), zap.Error(err))
		return "", errors.Join(apperrors.ErrInternalServerError, err)
	}
	return req.RequestID, nil
}

func (s *TicketServiceImpl) GetByID(ctx context.Context, id int) (*model.Ticket, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *TicketServiceImpl) ListByUser(ctx context.Context, userID int, page pagination.Page) ([]*model.Ticket, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListByUserID(ctx, userID, page)
}

func (s *TicketServiceImpl) ListByEvent(ctx context.Context, eventID int, page pagination.Page) ([]*model.Ticket, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListByEventID(ctx, eventID, page)
}

func (s *TicketServiceImpl) List(ctx context.Context, page pagination.Page) ([]*model.Ticket, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, page)
}

func (s *TicketServiceImpl) Cancel(ctx context.Context, id int) (bool, error) {
	return s.repo.Delete(ctx, id)
}
