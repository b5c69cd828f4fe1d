package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/eventboard/server/internal/metrics"
)

type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

type CheckResult struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MigrationStatus reports the applied schema version.
type MigrationStatus interface {
	MigrationStatus(ctx context.Context) (version int64, dirty bool, err error)
}

type HealthChecker struct {
	db         Pinger
	migrations MigrationStatus
	version    string
	gitCommit  string
}

func NewHealthChecker(db Pinger, migrations MigrationStatus, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		db:         db,
		migrations: migrations,
		version:    version,
		gitCommit:  gitCommit,
	}
}

// Healthz is a liveness probe; it never touches dependencies.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Health reports readiness. Any failing check turns the response into 503.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Context().Err() != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := map[string]CheckResult{
			"database":   h.checkDatabase(ctx),
			"migrations": h.checkMigrations(ctx),
		}

		status := "healthy"
		code := http.StatusOK
		for name, check := range checks {
			value := 2.0
			if check.Status == "fail" {
				value = 0
				status = "unhealthy"
				code = http.StatusServiceUnavailable
			}
			metrics.HealthCheckStatus.WithLabelValues(name).Set(value)
			metrics.HealthCheckLatency.WithLabelValues(name).Set(float64(check.LatencyMs))
		}

		writeJSON(w, code, HealthCheck{
			Status:    status,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) CheckResult {
	if h.db == nil {
		return CheckResult{Status: "fail", Message: "database not configured"}
	}

	dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(dbCtx)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		message := "database ping failed"
		if dbCtx.Err() == context.DeadlineExceeded {
			message = "database ping timed out"
		}
		return CheckResult{Status: "fail", Message: message, LatencyMs: latency}
	}
	return CheckResult{Status: "pass", LatencyMs: latency}
}

func (h *HealthChecker) checkMigrations(ctx context.Context) CheckResult {
	if h.migrations == nil {
		return CheckResult{Status: "fail", Message: "migration status unavailable"}
	}

	start := time.Now()
	version, dirty, err := h.migrations.MigrationStatus(ctx)
	latency := time.Since(start).Milliseconds()
	switch {
	case err != nil:
		return CheckResult{Status: "fail", Message: "could not read schema_migrations", LatencyMs: latency}
	case dirty:
		return CheckResult{Status: "fail", Message: "schema is dirty at version " + formatVersion(version), LatencyMs: latency}
	case version == 0:
		return CheckResult{Status: "fail", Message: "no migrations applied", LatencyMs: latency}
	}
	return CheckResult{Status: "pass", Message: "schema at version " + formatVersion(version), LatencyMs: latency}
}

func formatVersion(v int64) string {
	return strconv.FormatInt(v, 10)
}
