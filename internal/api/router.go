package api

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/eventboard/server/internal/api/handlers"
	"github.com/eventboard/server/internal/api/middleware"
	"github.com/eventboard/server/internal/api/problem"
	"github.com/eventboard/server/internal/audit"
	"github.com/eventboard/server/internal/config"
	"github.com/eventboard/server/internal/metrics"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Config config.Config
	Logger zerolog.Logger
	Events handlers.EventService
	Auth   handlers.Authenticator
	Tokens middleware.TokenValidator
	Health *handlers.HealthChecker
}

// NewRouter returns the fully wrapped HTTP handler. Only the event mutation
// routes sit behind the bearer token guard.
func NewRouter(deps Dependencies) http.Handler {
	auditLog := audit.NewLogger(deps.Logger)
	eventsHandler := handlers.NewEventsHandler(deps.Events)
	eventsHandler.Audit = auditLog
	authHandler := handlers.NewAuthHandler(deps.Auth)
	authHandler.Audit = auditLog
	requireToken := middleware.BearerAuth(deps.Tokens)

	mux := http.NewServeMux()
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, problem.NotFound, nil, problem.WithMessage("Not found"))
	}))
	mux.Handle("/healthz", methodMux(map[string]http.Handler{
		http.MethodGet: http.HandlerFunc(handlers.Healthz),
	}))
	if deps.Health != nil {
		ready := methodMux(map[string]http.Handler{http.MethodGet: deps.Health.Health()})
		mux.Handle("/readyz", ready)
		mux.Handle("/health", ready)
	}
	mux.Handle("/metrics", methodMux(map[string]http.Handler{
		http.MethodGet: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
	}))

	mux.Handle("/api/auth/login", methodMux(map[string]http.Handler{
		http.MethodPost: http.HandlerFunc(authHandler.Login),
	}))
	mux.Handle("/api/events", methodMux(map[string]http.Handler{
		http.MethodGet:  http.HandlerFunc(eventsHandler.List),
		http.MethodPost: requireToken(http.HandlerFunc(eventsHandler.Create)),
	}))
	mux.Handle("/api/events/{id}", methodMux(map[string]http.Handler{
		http.MethodGet:    http.HandlerFunc(eventsHandler.Get),
		http.MethodPut:    requireToken(http.HandlerFunc(eventsHandler.Update)),
		http.MethodDelete: requireToken(http.HandlerFunc(eventsHandler.Delete)),
	}))

	logger := deps.Logger
	var handler http.Handler = mux
	handler = middleware.RequestSize(middleware.DefaultMaxBodySize)(handler)
	handler = middleware.CORS(deps.Config.CORS, logger)(handler)
	handler = middleware.SecurityHeaders(deps.Config.CORS.Mode != config.ModeDev)(handler)
	handler = middleware.Recovery(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.CorrelationID(logger)(handler)
	handler = middleware.Tracing(handler)
	handler = metrics.HTTPMiddleware(handler)
	return handler
}

func methodMux(handlers map[string]http.Handler) http.Handler {
	allow := allowedMethods(handlers)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if handler, ok := handlers[r.Method]; ok {
			handler.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allow)
		problem.Write(w, r, problem.MethodNotAllowed, errors.New("method "+r.Method+" not allowed"))
	})
}

func allowedMethods(handlers map[string]http.Handler) string {
	methods := make([]string, 0, len(handlers))
	for method := range handlers {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}
