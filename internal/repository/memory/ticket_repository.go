package memory

import (
	"context"
	"time"

	"go-gin-ticket-booking/internal/idgen"
	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	"go-gin-ticket-booking/internal/repository"
	apperrors "go-gin-ticket-booking/pkg/app_errors"
)

type TicketRepository struct {
	table *Table[model.Ticket]
	ids   *idgen.Sequence
}

func NewTicketRepository(ids *idgen.Sequence) repository.TicketRepository {
	if ids == nil {
		ids = idgen.NewSequence()
	}
	return &TicketRepository{
		table: NewTable[model.Ticket](),
		ids:   ids,
	}
}

func (r *TicketRepository) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	ticket.ID = r.ids.Next()
	ticket.CreatedAt = time.Now().UTC()
	r.table.Put(ticket.ID, *ticket)

	created := *ticket
	return &created, nil
}

func (r *TicketRepository) List(ctx context.Context, page pagination.Page) ([]*model.Ticket, error) {
	return r.filter(nil, page)
}

func (r *TicketRepository) ListByUserID(ctx context.Context, userID int, page pagination.Page) ([]*model.Ticket, error) {
	return r.filter(func(t model.Ticket) bool { return t.UserID == userID }, page)
}

func (r *TicketRepository) ListByEventID(ctx context.Context, eventID int, page pagination.Page) ([]*model.Ticket, error) {
	return r.filter(func(t model.Ticket) bool { return t.EventID == eventID }, page)
}

func (r *TicketRepository) filter(match func(model.Ticket) bool, page pagination.Page) ([]*model.Ticket, error) {
	tickets, err := pagination.Apply(r.table.All(), match, page)
	if err != nil {
		return nil, err
	}
	return pointers(tickets), nil
}

func (r *TicketRepository) FindByID(ctx context.Context, id int) (*model.Ticket, error) {
	ticket, ok := r.table.Get(id)
	if !ok {
		return nil, apperrors.ErrTicketNotFound
	}
	return &ticket, nil
}

func (r *TicketRepository) Delete(ctx context.Context, id int) (bool, error) {
	return r.table.Remove(id), nil
}
