package events

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Input is the client-supplied event payload.
type Input struct {
	Title       Field[string]
	Date        Field[string]
	Description Field[string]
	Venue       Field[string]
	Location    Field[string]
	ImageURL    Field[string]
	TicketURL   Field[string]
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in Input) (*Event, error) {
	if in.Date.Value == nil {
		return nil, fmt.Errorf("%w: missing", ErrInvalidDate)
	}
	date, err := ParseDate(*in.Date.Value)
	if err != nil {
		return nil, err
	}

	return s.repo.Create(ctx, CreateParams{
		Title:       in.Title.Value,
		Date:        date,
		Description: in.Description.Value,
		Venue:       in.Venue.Value,
		Location:    in.Location.Value,
		ImageURL:    in.ImageURL.Value,
		TicketURL:   in.TicketURL.Value,
		UpdatedAt:   s.now().UTC(),
	})
}

// Update overwrites every field the client sent, null included. A null or
// blank date leaves the stored date unchanged.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Event, error) {
	params := UpdateParams{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Venue:       in.Venue,
		Location:    in.Location,
		ImageURL:    in.ImageURL,
		TicketURL:   in.TicketURL,
		UpdatedAt:   s.now().UTC(),
	}
	if in.Date.Value != nil && strings.TrimSpace(*in.Date.Value) != "" {
		date, err := ParseDate(*in.Date.Value)
		if err != nil {
			return nil, err
		}
		params.Date = Some(date)
	}
	return s.repo.Update(ctx, params)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
