package audit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventboard/server/internal/api/middleware"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is one audit record for a state-changing or security-relevant action.
type Entry struct {
	Timestamp    time.Time
	Action       string
	UserID       string
	ResourceType string
	ResourceID   string
	IPAddress    string
	RequestID    string
	Status       string
	Details      map[string]string
}

// Logger writes audit entries as structured zerolog events. A nil *Logger
// discards entries.
type Logger struct {
	logger zerolog.Logger
	now    func() time.Time
}

func NewLogger(base zerolog.Logger) *Logger {
	return &Logger{
		logger: base.With().Str("component", "audit").Logger(),
		now:    time.Now,
	}
}

func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}

	evt := l.logger.Info().
		Time("audit_time", entry.Timestamp).
		Str("action", entry.Action).
		Str("status", entry.Status)
	if entry.UserID != "" {
		evt = evt.Str("user_id", entry.UserID)
	}
	if entry.ResourceType != "" {
		evt = evt.Str("resource_type", entry.ResourceType)
	}
	if entry.ResourceID != "" {
		evt = evt.Str("resource_id", entry.ResourceID)
	}
	if entry.IPAddress != "" {
		evt = evt.Str("ip_address", entry.IPAddress)
	}
	if entry.RequestID != "" {
		evt = evt.Str("request_id", entry.RequestID)
	}
	if len(entry.Details) > 0 {
		dict := zerolog.Dict()
		for k, v := range entry.Details {
			dict = dict.Str(k, v)
		}
		evt = evt.Dict("details", dict)
	}
	evt.Msg("audit")
}

// LogFromRequest records an action taken by the caller of r. The user id
// comes from the bearer token claims when the route is guarded.
func (l *Logger) LogFromRequest(r *http.Request, action, resourceType, resourceID, status string, details map[string]string) {
	if l == nil || r == nil {
		return
	}
	l.Log(Entry{
		Action:       action,
		UserID:       middleware.UserID(r),
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    clientIP(r),
		RequestID:    middleware.GetRequestID(r.Context()),
		Status:       status,
		Details:      details,
	})
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
