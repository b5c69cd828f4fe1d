package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login and token outcomes.
const (
	LoginSuccess            = "success"
	LoginInvalidRequest     = "invalid_request"
	LoginInvalidCredentials = "invalid_credentials"
	LoginError              = "error"
)

var (
	LoginAttempts = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_login_attempts_total",
			Help:      "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	TokenRejections = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_token_rejections_total",
			Help:      "Total number of requests rejected by the bearer token guard",
		},
		[]string{"reason"}, // reason: missing|invalid
	)
)
