package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/eventboard/server/internal/api/problem"
	"github.com/eventboard/server/internal/audit"
	"github.com/eventboard/server/internal/domain/events"
)

// EventService is the part of events.Service the handlers depend on.
type EventService interface {
	List(ctx context.Context) ([]events.Event, error)
	Get(ctx context.Context, id int64) (*events.Event, error)
	Create(ctx context.Context, in events.Input) (*events.Event, error)
	Update(ctx context.Context, id int64, in events.Input) (*events.Event, error)
	Delete(ctx context.Context, id int64) error
}

type EventsHandler struct {
	Service EventService
	Audit   *audit.Logger
}

func NewEventsHandler(service EventService) *EventsHandler {
	return &EventsHandler{Service: service}
}

// eventRequest keeps absent, null and present keys apart so updates can clear
// nullable columns.
type eventRequest struct {
	Title       events.Field[string] `json:"title"`
	Date        events.Field[string] `json:"date"`
	Description events.Field[string] `json:"description"`
	Venue       events.Field[string] `json:"venue"`
	Location    events.Field[string] `json:"location"`
	ImageURL    events.Field[string] `json:"imageUrl"`
	TicketURL   events.Field[string] `json:"ticketUrl"`
}

func (req eventRequest) input() events.Input {
	return events.Input{
		Title:       req.Title,
		Date:        req.Date,
		Description: req.Description,
		Venue:       req.Venue,
		Location:    req.Location,
		ImageURL:    req.ImageURL,
		TicketURL:   req.TicketURL,
	}
}

type eventResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description *string   `json:"description"`
	Venue       *string   `json:"venue"`
	Location    *string   `json:"location"`
	ImageURL    *string   `json:"imageUrl"`
	TicketURL   *string   `json:"ticketUrl"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toEventResponse(event events.Event) eventResponse {
	return eventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Date:        event.Date.UTC(),
		Description: event.Description,
		Venue:       event.Venue,
		Location:    event.Location,
		ImageURL:    event.ImageURL,
		TicketURL:   event.TicketURL,
		UpdatedAt:   event.UpdatedAt.UTC(),
	}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	const failure = "Internal server error while getting events"
	if h == nil || h.Service == nil {
		problem.Write(w, r, problem.InternalError, errors.New("events service not configured"), problem.WithMessage(failure))
		return
	}

	items, err := h.Service.List(r.Context())
	if err != nil {
		problem.Write(w, r, problem.InternalError, err, problem.WithMessage(failure))
		return
	}

	out := make([]eventResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toEventResponse(item))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	const failure = "Internal server error while getting event"
	if h == nil || h.Service == nil {
		problem.Write(w, r, problem.InternalError, errors.New("events service not configured"), problem.WithMessage(failure))
		return
	}

	id, ok := eventID(w, r)
	if !ok {
		return
	}

	event, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeEventError(w, r, err, failure)
		return
	}
	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	const failure = "Internal server error while creating event"
	if h == nil || h.Service == nil {
		problem.Write(w, r, problem.InternalError, errors.New("events service not configured"), problem.WithMessage(failure))
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, problem.InternalError, err, problem.WithMessage(failure))
		return
	}

	event, err := h.Service.Create(r.Context(), req.input())
	if err != nil {
		problem.Write(w, r, problem.InternalError, err, problem.WithMessage(failure))
		return
	}
	h.Audit.LogFromRequest(r, "event.create", "event", strconv.FormatInt(event.ID, 10), audit.StatusSuccess, nil)
	writeJSON(w, http.StatusCreated, toEventResponse(*event))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	const failure = "Internal server error while updating event"
	if h == nil || h.Service == nil {
		problem.Write(w, r, problem.InternalError, errors.New("events service not configured"), problem.WithMessage(failure))
		return
	}

	id, ok := eventID(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		problem.Write(w, r, problem.InternalError, err, problem.WithMessage(failure))
		return
	}

	event, err := h.Service.Update(r.Context(), id, req.input())
	if err != nil {
		writeEventError(w, r, err, failure)
		return
	}
	h.Audit.LogFromRequest(r, "event.update", "event", strconv.FormatInt(id, 10), audit.StatusSuccess, nil)
	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const failure = "Internal server error while deleting event"
	if h == nil || h.Service == nil {
		problem.Write(w, r, problem.InternalError, errors.New("events service not configured"), problem.WithMessage(failure))
		return
	}

	id, ok := eventID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeEventError(w, r, err, failure)
		return
	}
	h.Audit.LogFromRequest(r, "event.delete", "event", strconv.FormatInt(id, 10), audit.StatusSuccess, nil)
	w.WriteHeader(http.StatusNoContent)
}

// eventID parses the {id} path segment. Ids that are not positive integers
// cannot name a stored event and are answered with 404.
func eventID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := pathParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		problem.Write(w, r, problem.NotFound, nil)
		return 0, false
	}
	return id, true
}

func writeEventError(w http.ResponseWriter, r *http.Request, err error, failure string) {
	if errors.Is(err, events.ErrNotFound) {
		problem.Write(w, r, problem.NotFound, err)
		return
	}
	problem.Write(w, r, problem.InternalError, err, problem.WithMessage(failure))
}
