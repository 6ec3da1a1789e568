package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ValidationsTotal counts ticket validation attempts by outcome
	// (success, already_validated, invalid_code, unauthorized, rate_limited, error).
	ValidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tiketbus",
			Name:      "validations_total",
			Help:      "Ticket validation attempts by outcome",
		},
		[]string{"outcome"},
	)

	TicketsIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tiketbus",
			Name:      "tickets_issued_total",
			Help:      "Tickets created from payment confirmations",
		},
	)

	ConfirmationsDuplicateTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tiketbus",
			Name:      "confirmations_duplicate_total",
			Help:      "Payment confirmations answered from the idempotency check",
		},
	)

	AuthCacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tiketbus",
			Name:      "auth_cache_hits_total",
			Help:      "Operator authorization cache hits",
		},
	)

	AuthCacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tiketbus",
			Name:      "auth_cache_misses_total",
			Help:      "Operator authorization cache misses or expiries",
		},
	)

	AuditQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tiketbus",
			Name:      "audit_queue_depth",
			Help:      "Audit events waiting for a batch flush",
		},
	)

	AuditEventsWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tiketbus",
			Name:      "audit_events_written_total",
			Help:      "Audit events persisted",
		},
	)

	AuditEventsDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tiketbus",
			Name:      "audit_events_dropped_total",
			Help:      "Audit events dropped after a failed batch insert",
		},
	)

	TransferQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tiketbus",
			Name:      "transfer_queue_depth",
			Help:      "Commission transfers waiting for a batch flush",
		},
	)

	TransferRetriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tiketbus",
			Name:      "transfer_retries_total",
			Help:      "Commission transfers re-enqueued after a failed batch",
		},
	)

	TransferPermanentFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tiketbus",
			Name:      "transfer_permanent_failures_total",
			Help:      "Commission transfers dropped past the retry budget",
		},
	)

	// CircuitBreakerState is 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tiketbus",
			Name:      "payment_breaker_state",
			Help:      "Payment provider circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tiketbus",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the sliding-window limiter",
		},
	)
)
