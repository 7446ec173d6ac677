package service

import (
	"context"
	"strings"
	"time"

	"go-gin-ticket-booking/internal/cache"
	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/repository"
	apperrors "go-gin-ticket-booking/pkg/app_errors"
	"go-gin-ticket-booking/pkg/logger"

	"go.uber.org/zap"
)

type EventService interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	// GetByID 先查 Redis 快取，未命中再查 repository 並回填 (期間被更新則不回填)
	GetByID(ctx context.Context, id int) (*model.Event, error)
	ListByTitle(ctx context.Context, title string, page pagination.Page) ([]*model.Event, error)
	ListForDay(ctx context.Context, day time.Time, page pagination.Page) ([]*model.Event, error)
	List(ctx context.Context, page pagination.Page) ([]*model.Event, error)
	Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type EventServiceImpl struct {
	repo  repository.EventRepository
	cache cache.EventCache
}

func NewEventService(repo repository.EventRepository, eventCache cache.EventCache) EventService {
	if eventCache == nil {
		eventCache = cache.NewNoopEventCache()
	}
	return &EventServiceImpl{repo: repo, cache: eventCache}
}

func (s *EventServiceImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	event.Title = strings.TrimSpace(event.Title)
	if event.Title == "" || event.TicketPrice.IsNegative() {
		return nil, apperrors.ErrInvalidInput
	}

	event.ID = 0
	event.Date = model.DateOf(event.Date)
	event.TicketPrice = model.RoundMoney(event.TicketPrice)
	return s.repo.Create(ctx, event)
}

func (s *EventServiceImpl) GetByID(ctx context.Context, id int) (*model.Event, error) {
	log := logger.WithComponent("cache").With(zap.Int("event_id", id))

	cached, found, err := s.cache.Get(ctx, id)
	if err != nil {
		log.Warn("event cache get failed", zap.Error(err))
	} else if found {
		return cached, nil
	}

	// 版本要在查資料庫前取得，期間若有更新則放棄回填
	version, versionErr := s.cache.Version(ctx, id)

	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if versionErr != nil {
		log.Warn("event cache version failed", zap.Error(versionErr))
		return event, nil
	}
	if written, err := s.cache.Fill(ctx, event, version); err != nil {
		log.Warn("event cache fill failed", zap.Error(err))
	} else if !written {
		log.Debug("event cache fill skipped, event changed during read")
	}
	return event, nil
}

func (s *EventServiceImpl) ListByTitle(ctx context.Context, title string, page pagination.Page) ([]*model.Event, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListByTitle(ctx, title, page)
}

func (s *EventServiceImpl) ListForDay(ctx context.Context, day time.Time, page pagination.Page) ([]*model.Event, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListForDay(ctx, day, page)
}

func (s *EventServiceImpl) List(ctx context.Context, page pagination.Page) ([]*model.Event, error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, page)
}

func (s *EventServiceImpl) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	effective, err := effectiveEventUpdate(params)
	if err != nil {
		return nil, err
	}
	if effective.IsEmpty() {
		return existing, nil
	}

	updated, err := s.repo.Update(ctx, id, effective)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	return updated, nil
}

func (s *EventServiceImpl) Delete(ctx context.Context, id int) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	s.invalidate(ctx, id)
	return deleted, nil
}

func (s *EventServiceImpl) invalidate(ctx context.Context, id int) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.WithComponent("cache").Warn("event cache invalidate failed", zap.Int("event_id", id), zap.Error(err))
	}
}

// effectiveEventUpdate 空標題視為未提供；價格四捨五入到兩位，負數為無效輸入
func effectiveEventUpdate(params model.UpdateEventParams) (model.UpdateEventParams, error) {
	var out model.UpdateEventParams

	if params.Title != nil {
		if title := strings.TrimSpace(*params.Title); title != "" {
			out.Title = &title
		}
	}

	if params.Date != nil {
		date := model.DateOf(*params.Date)
		out.Date = &date
	}

	if params.TicketPrice != nil {
		if params.TicketPrice.IsNegative() {
			return model.UpdateEventParams{}, apperrors.ErrInvalidInput
		}
		price := model.RoundMoney(*params.TicketPrice)
		out.TicketPrice = &price
	}

	return out, nil
}
