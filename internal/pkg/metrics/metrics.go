// Package metrics defines and registers all custom Prometheus metrics for the
// registrar service. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "registrar"

// ── Registration pipeline ─────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts by outcome.
// Label:
//   - outcome: "success" or the error kind (e.g. "DuplicateAccount", "PublicationFailed")
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, labelled by outcome.",
	},
	[]string{"outcome"},
)

// StageDuration measures how long each pipeline stage takes.
// Labels:
//   - stage: account_creation, token_issuance, content_publication, ledger_commit
//   - result: "ok" or "error"
var StageDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "pipeline_stage_duration_seconds",
		Help:      "Duration of each registration pipeline stage.",
		Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	},
	[]string{"stage", "result"},
)

// UnlinkedAccountsTotal counts accounts left without a ledger reference
// because publication or ledger commit failed.
// Label:
//   - stage: the stage that failed
var UnlinkedAccountsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unlinked_accounts_total",
		Help:      "Accounts persisted without ledger linkage, by failed stage.",
	},
	[]string{"stage"},
)

// RelinksTotal counts operator-triggered relink attempts.
// Label:
//   - outcome: "linked", "already_linked" or the error kind
var RelinksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relinks_total",
		Help:      "Total number of relink attempts, labelled by outcome.",
	},
	[]string{"outcome"},
)

// ── Authentication ────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or the error kind
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// TokenRejectionsTotal counts bearer tokens refused by the auth middleware.
// Label:
//   - reason: MissingToken, MalformedToken, InvalidSignature, TokenExpired
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of rejected bearer tokens, by reason.",
	},
	[]string{"reason"},
)

// RateLimitedTotal counts requests refused by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)

// RelinkQueueDepth tracks pending relink jobs per dispatcher worker.
// Label:
//   - worker_id: numeric worker index
var RelinkQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "relink_queue_depth",
		Help:      "Current number of relink jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
