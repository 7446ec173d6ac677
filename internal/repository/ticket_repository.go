package repository

import (
	"context"
	"errors"
	"time"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	apperrors "go-gin-ticket-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)
	List(ctx context.Context, page pagination.Page) ([]*model.Ticket, error)
	ListByUserID(ctx context.Context, userID int, page pagination.Page) ([]*model.Ticket, error)
	ListByEventID(ctx context.Context, eventID int, page pagination.Page) ([]*model.Ticket, error)
	FindByID(ctx context.Context, id int) (*model.Ticket, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (user_id, event_id, category, place)
		VALUES ($1, $2, $3, $4)
		RETURNING id, user_id, event_id, category, place, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		ticket.UserID, ticket.EventID, ticket.Category, ticket.Place,
	).Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.EventID,
		&ticket.Category,
		&ticket.Place,
		&ticket.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) List(ctx context.Context, page pagination.Page) ([]*model.Ticket, error) {
	query := `
		SELECT id, user_id, event_id, category, place, created_at
		FROM tickets
		WHERE deleted_at IS NULL
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	return r.queryTickets(ctx, query, page.Limit(), page.Offset())
}

func (r *TicketRepositoryImpl) ListByUserID(ctx context.Context, userID int, page pagination.Page) ([]*model.Ticket, error) {
	query := `
		SELECT id, user_id, event_id, category, place, created_at
		FROM tickets
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	return r.queryTickets(ctx, query, userID, page.Limit(), page.Offset())
}

func (r *TicketRepositoryImpl) ListByEventID(ctx context.Context, eventID int, page pagination.Page) ([]*model.Ticket, error) {
	query := `
		SELECT id, user_id, event_id, category, place, created_at
		FROM tickets
		WHERE event_id = $1 AND deleted_at IS NULL
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	return r.queryTickets(ctx, query, eventID, page.Limit(), page.Offset())
}

func (r *TicketRepositoryImpl) queryTickets(ctx context.Context, query string, args ...interface{}) ([]*model.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)

	for rows.Next() {
		var ticket model.Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.UserID,
			&ticket.EventID,
			&ticket.Category,
			&ticket.Place,
			&ticket.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Ticket, error) {
	query := `
		SELECT id, user_id, event_id, category, place, created_at
		FROM tickets
		WHERE id = $1 AND deleted_at IS NULL
	`

	var ticket model.Ticket
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.EventID,
		&ticket.Category,
		&ticket.Place,
		&ticket.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return &ticket, nil
}

func (r *TicketRepositoryImpl) Delete(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE tickets
		SET deleted_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}
