package events

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("event not found")

type Event struct {
	ID          int64
	Title       string
	Date        time.Time
	Description *string
	Venue       *string
	Location    *string
	ImageURL    *string
	TicketURL   *string
	UpdatedAt   time.Time
}

// CreateParams carries the columns of a new row. A nil Title is passed to the
// store unchanged and rejected by its NOT NULL constraint.
type CreateParams struct {
	Title       *string
	Date        time.Time
	Description *string
	Venue       *string
	Location    *string
	ImageURL    *string
	TicketURL   *string
	UpdatedAt   time.Time
}

// UpdateParams holds a partial update. Unset fields keep their stored value;
// set fields overwrite it, with a nil Value writing NULL.
type UpdateParams struct {
	ID          int64
	Title       Field[string]
	Date        Field[time.Time]
	Description Field[string]
	Venue       Field[string]
	Location    Field[string]
	ImageURL    Field[string]
	TicketURL   Field[string]
	UpdatedAt   time.Time
}

type Repository interface {
	List(ctx context.Context) ([]Event, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, params CreateParams) (*Event, error)
	Update(ctx context.Context, params UpdateParams) (*Event, error)
	Delete(ctx context.Context, id int64) error
}
