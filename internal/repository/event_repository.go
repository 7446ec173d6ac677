package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-gin-ticket-booking/internal/model"
	"go-gin-ticket-booking/internal/pagination"
	apperrors "go-gin-ticket-booking/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventRepository interface {
	Create(ctx context.Context, event *model.Event) (*model.Event, error)
	List(ctx context.Context, page pagination.Page) ([]*model.Event, error)
	ListByTitle(ctx context.Context, title string, page pagination.Page) ([]*model.Event, error)
	ListForDay(ctx context.Context, day time.Time, page pagination.Page) ([]*model.Event, error)
	FindByID(ctx context.Context, id int) (*model.Event, error)
	Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type EventRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &EventRepositoryImpl{
		pool: pool,
	}
}

func (r *EventRepositoryImpl) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	query := `
		INSERT INTO events (title, date, ticket_price)
		VALUES ($1, $2, $3)
		RETURNING id, title, date, ticket_price, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		event.Title, event.Date, event.TicketPrice,
	).Scan(
		&event.ID,
		&event.Title,
		&event.Date,
		&event.TicketPrice,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepositoryImpl) List(ctx context.Context, page pagination.Page) ([]*model.Event, error) {
	query := `
		SELECT id, title, date, ticket_price, created_at, updated_at
		FROM events
		WHERE deleted_at IS NULL
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	return r.queryEvents(ctx, query, page.Limit(), page.Offset())
}

func (r *EventRepositoryImpl) ListByTitle(ctx context.Context, title string, page pagination.Page) ([]*model.Event, error) {
	query := `
		SELECT id, title, date, ticket_price, created_at, updated_at
		FROM events
		WHERE title = $1 AND deleted_at IS NULL
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	return r.queryEvents(ctx, query, title, page.Limit(), page.Offset())
}

func (r *EventRepositoryImpl) ListForDay(ctx context.Context, day time.Time, page pagination.Page) ([]*model.Event, error) {
	query := `
		SELECT id, title, date, ticket_price, created_at, updated_at
		FROM events
		WHERE date = $1 AND deleted_at IS NULL
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	return r.queryEvents(ctx, query, model.DateOf(day), page.Limit(), page.Offset())
}

func (r *EventRepositoryImpl) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*model.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*model.Event, 0)
	for rows.Next() {
		var event model.Event
		err := rows.Scan(
			&event.ID,
			&event.Title,
			&event.Date,
			&event.TicketPrice,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Event, error) {
	query := `
		SELECT id, title, date, ticket_price, created_at, updated_at
		FROM events
		WHERE id = $1 AND deleted_at IS NULL
	`

	var event model.Event
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Title,
		&event.Date,
		&event.TicketPrice,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) Update(ctx context.Context, id int, params model.UpdateEventParams) (*model.Event, error) {
	sets := []string{}
	args := []interface{}{}
	argPos := 1

	if params.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argPos))
		args = append(args, *params.Title)
		argPos++
	}

	if params.Date != nil {
		sets = append(sets, fmt.Sprintf("date = $%d", argPos))
		args = append(args, model.DateOf(*params.Date))
		argPos++
	}

	if params.TicketPrice != nil {
		sets = append(sets, fmt.Sprintf("ticket_price = $%d", argPos))
		args = append(args, *params.TicketPrice)
		argPos++
	}

	if len(sets) == 0 {
		return nil, apperrors.ErrInvalidInput
	}

	// add updated_at
	sets = append(sets, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now().UTC())
	argPos++

	// add id
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE events
		SET %s
		WHERE id = $%d AND deleted_at IS NULL
		RETURNING id, title, date, ticket_price, created_at, updated_at
	`, strings.Join(sets, ", "), argPos)

	var event model.Event

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&event.ID,
		&event.Title,
		&event.Date,
		&event.TicketPrice,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

func (r *EventRepositoryImpl) Delete(ctx context.Context, id int) (bool, error) {
	query := `
		UPDATE events
		SET deleted_at = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`

	now := time.Now().UTC()
	result, err := r.pool.Exec(ctx, query, now, now, id)
	if err != nil {
		return false, err
	}

	return result.RowsAffected() > 0, nil
}
