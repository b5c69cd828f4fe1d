package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventboard/server/internal/domain/events"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

const eventColumns = `id, title, date, description, venue, location, image_url, ticket_url, updated_at`

func (r *EventRepository) List(ctx context.Context) (_ []events.Event, err error) {
	defer observe("list_events")(&err)

	rows, err := r.queryer().Query(ctx, `
SELECT `+eventColumns+`
  FROM events
 ORDER BY date ASC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0)
	for rows.Next() {
		event, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan event: %w", scanErr)
		}
		items = append(items, *event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list events rows: %w", err)
	}
	return items, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (_ *events.Event, err error) {
	defer observe("get_event")(&err)

	row := r.queryer().QueryRow(ctx, `
SELECT `+eventColumns+`
  FROM events
 WHERE id = $1
`, id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("get event %d: %w", id, err)
	}
	return event, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (_ *events.Event, err error) {
	defer observe("create_event")(&err)

	row := r.queryer().QueryRow(ctx, `
INSERT INTO events (title, date, description, venue, location, image_url, ticket_url, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING `+eventColumns+`
`,
		params.Title,
		params.Date,
		params.Description,
		params.Venue,
		params.Location,
		params.ImageURL,
		params.TicketURL,
		params.UpdatedAt,
	)
	event, err := scanEvent(row)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// Update writes the set fields in one statement, so a missing row is reported
// without anything having been written. A set field with no value writes NULL.
func (r *EventRepository) Update(ctx context.Context, params events.UpdateParams) (_ *events.Event, err error) {
	defer observe("update_event")(&err)

	row := r.queryer().QueryRow(ctx, `
UPDATE events
   SET title = CASE WHEN $2 THEN $3 ELSE title END,
       date = CASE WHEN $4 THEN $5 ELSE date END,
       description = CASE WHEN $6 THEN $7 ELSE description END,
       venue = CASE WHEN $8 THEN $9 ELSE venue END,
       location = CASE WHEN $10 THEN $11 ELSE location END,
       image_url = CASE WHEN $12 THEN $13 ELSE image_url END,
       ticket_url = CASE WHEN $14 THEN $15 ELSE ticket_url END,
       updated_at = $16
 WHERE id = $1
RETURNING `+eventColumns+`
`,
		params.ID,
		params.Title.Set, params.Title.Value,
		params.Date.Set, params.Date.Value,
		params.Description.Set, params.Description.Value,
		params.Venue.Set, params.Venue.Value,
		params.Location.Set, params.Location.Value,
		params.ImageURL.Set, params.ImageURL.Value,
		params.TicketURL.Set, params.TicketURL.Value,
		params.UpdatedAt,
	)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, fmt.Errorf("update event %d: %w", params.ID, err)
	}
	return event, nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) (err error) {
	defer observe("delete_event")(&err)

	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var event events.Event
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Date,
		&event.Description,
		&event.Venue,
		&event.Location,
		&event.ImageURL,
		&event.TicketURL,
		&event.UpdatedAt,
	); err != nil {
		return nil, err
	}
	event.Date = event.Date.UTC()
	event.UpdatedAt = event.UpdatedAt.UTC()
	return &event, nil
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}
