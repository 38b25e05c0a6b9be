package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campusauth",
		Subsystem: "session",
		Name:      "created_total",
		Help:      "Sessions created, by context partition.",
	}, []string{"context"})

	sessionsValidated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "campusauth",
		Subsystem: "session",
		Name:      "validations_total",
		Help:      "Session validations, by outcome (valid, expired, not_found).",
	}, []string{"outcome"})

	sessionsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "campusauth",
		Subsystem: "session",
		Name:      "swept_total",
		Help:      "Expired sessions deactivated by the background sweeper.",
	})
)
