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

type EventRepository struct {
	writeMu sync.Mutex
	table   *Table[model.Event]
	ids     *idgen.Sequence
}

func NewEventRepository(ids *idgen.Sequence) repository.EventRepository {
	if ids == nil {
		ids = idgen.NewSequence()
	}
	return &EventRepository{
		table: NewTable[model.Event](),
		ids:   ids,
	}
}

func (r *EventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	now := time.Now().UTC()
	event.ID = r.ids.Next()
	event.Date = model.DateOf(event.Date)
	event.CreatedAt = now
	event.UpdatedAt = now
	r.table.Put(event.ID, *event)

	created := *event
	return &created, nil
}

func (r *EventRepository) List(ctx context.Context, page pagination.Page) ([]*model.Event, error) {
	return r.filter(nil, page)
}

func (r *EventRepository) ListByTitle(ctx context.Context, title string, page pagination.Page) ([]*model.Event, error) {
	return r.filter(func(e model.Event) bool { return e.Title == title }, page)
}

func (r *EventRepository) ListForDay(ctx context.Context, day time.Time, page pagination.Page) ([]*model.Event, error) {
	return r.filter(func(e model.Event) bool { return model.SameDay(e.Date, day) }, page)
}

func (r *EventRepository) filter(match func(model.Event) bool, page pagination.Page) ([]*model.Event, error) {
	events, err := pagination.Apply(r.table.All(), match, page)
	if err != nil {
		return nil, err
	}
	return pointers(events), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id int) (*model.Event, error) {
	event, ok := r.table.Get(id)
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return &event, nil
}

func (r *EventRepository) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error) {
	if params.IsEmpty() {
		return nil, apperrors.ErrInvalidInput
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	event, ok := r.table.Get(id)
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}

	if params.Title != nil {
		event.Title = *params.Title
	}
	if params.Date != nil {
		event.Date = model.DateOf(*params.Date)
	}
	if params.TicketPrice != nil {
		event.TicketPrice = *params.TicketPrice
	}
	event.UpdatedAt = time.Now().UTC()
	r.table.Put(id, event)

	return &event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int) (bool, error) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	return r.table.Remove(id), nil
}
