// ABOUTME: Prometheus counters for reward awards, reversals, ledger failures, and cache traffic.
// ABOUTME: Registered on the default registry and served by the HTTP API at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Rewards ────────────────────────────────────────────────────────────────

// WorkoutsAwarded counts workouts that went through achievement evaluation.
var WorkoutsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tribe",
	Name:      "workouts_awarded_total",
	Help:      "Workouts evaluated for XP, points, and badges.",
}, []string{"kind"})

// XPAwarded sums XP granted by workouts, badges, and quests.
var XPAwarded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tribe",
	Name:      "xp_awarded_total",
	Help:      "Total XP granted.",
})

// BadgesUnlocked counts badge unlocks by badge ID.
var BadgesUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tribe",
	Name:      "badges_unlocked_total",
	Help:      "Badge unlocks.",
}, []string{"badge"})

// QuestsCompleted counts finished quests by kind (daily, onboarding).
var QuestsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tribe",
	Name:      "quests_completed_total",
	Help:      "Quests completed.",
}, []string{"kind"})

// ─── Reversals ──────────────────────────────────────────────────────────────

// Reversals counts processed log deletions.
var Reversals = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tribe",
	Name:      "reversals_total",
	Help:      "Log deletions reverted.",
})

// BadgesRevoked counts badges taken back by reversal.
var BadgesRevoked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tribe",
	Name:      "badges_revoked_total",
	Help:      "Badges revoked after a log deletion.",
}, []string{"badge"})

// ─── Ledger ─────────────────────────────────────────────────────────────────

// LedgerFailures counts swallowed ledger append errors.
var LedgerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tribe",
	Name:      "ledger_failures_total",
	Help:      "Ledger appends that failed and were skipped.",
}, []string{"ledger"})

// ─── Cache ──────────────────────────────────────────────────────────────────

// CacheRequests counts cache lookups by tier and result.
var CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "tribe",
	Name:      "cache_requests_total",
	Help:      "Cache lookups by tier (memory, backend) and result (hit, miss).",
}, []string{"tier", "result"})

// TeamStatsDegraded counts team stats served from the static fallback.
var TeamStatsDegraded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "tribe",
	Name:      "team_stats_degraded_total",
	Help:      "Team stats requests answered with placeholder values.",
})
