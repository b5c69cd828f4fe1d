package problem

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

const typeBase = "https://eventboard.dev/problems/"

type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Message  string `json:"message"`
	Instance string `json:"instance,omitempty"`
}

// Kind is one entry of the API error taxonomy.
type Kind struct {
	Type    string
	Title   string
	Status  int
	Message string
}

var (
	BadRequest = Kind{
		Type:    typeBase + "bad-request",
		Title:   "Bad Request",
		Status:  http.StatusBadRequest,
		Message: "Username and password are required",
	}
	InvalidCredentials = Kind{
		Type:    typeBase + "invalid-credentials",
		Title:   "Invalid Credentials",
		Status:  http.StatusBadRequest,
		Message: "Invalid credentials",
	}
	InvalidToken = Kind{
		Type:    typeBase + "invalid-token",
		Title:   "Unauthorized",
		Status:  http.StatusUnauthorized,
		Message: "Invalid token",
	}
	NotFound = Kind{
		Type:    typeBase + "not-found",
		Title:   "Not Found",
		Status:  http.StatusNotFound,
		Message: "Event not found",
	}
	MethodNotAllowed = Kind{
		Type:    typeBase + "method-not-allowed",
		Title:   "Method Not Allowed",
		Status:  http.StatusMethodNotAllowed,
		Message: "Method not allowed",
	}
	InternalError = Kind{
		Type:    typeBase + "internal-error",
		Title:   "Internal Server Error",
		Status:  http.StatusInternalServerError,
		Message: "Internal server error",
	}
)

type Option func(*ProblemDetails)

func WithMessage(message string) Option {
	return func(p *ProblemDetails) {
		p.Message = message
	}
}

// Write renders kind as a problem document and logs err with the request
// logger. err never reaches the response body.
func Write(w http.ResponseWriter, r *http.Request, kind Kind, err error, opts ...Option) {
	problem := ProblemDetails{
		Type:    kind.Type,
		Title:   kind.Title,
		Status:  kind.Status,
		Message: kind.Message,
	}

	for _, opt := range opts {
		opt(&problem)
	}

	if r != nil {
		problem.Instance = r.URL.Path

		logger := zerolog.Ctx(r.Context())
		var event *zerolog.Event
		switch {
		case kind.Status >= 500:
			event = logger.Error()
		case kind.Status >= 400:
			event = logger.Warn()
		default:
			event = logger.Debug()
		}
		if err != nil {
			event = event.Err(err)
		}
		event.
			Int("status", kind.Status).
			Str("type", kind.Type).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(problem.Message)
	}

	WriteProblem(w, problem)
}

func WriteProblem(w http.ResponseWriter, problem ProblemDetails) {
	payload, err := json.Marshal(problem)
	if err != nil {
		fallback := fmt.Sprintf("{\"type\":\"about:blank\",\"title\":\"%s\",\"status\":500}", http.StatusText(http.StatusInternalServerError))
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(fallback))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(problem.Status)
	_, _ = w.Write(payload)
}
