// Package metrics defines and registers all custom Prometheus metrics for
// the fishpond API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init via
// promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fishpond"

// ── Game metrics ──────────────────────────────────────────────────────────────

// FeedsTotal counts feed attempts.
// Label:
//   - result: "success", "quota_exhausted", "fish_dead", or "error"
var FeedsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feeds_total",
		Help:      "Total number of feed attempts, by result.",
	},
	[]string{"result"},
)

// FishAddedTotal counts fish added to tanks.
// Label:
//   - fish_type: catalog species (e.g. "qingjiang")
var FishAddedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fish_added_total",
		Help:      "Total number of fish added, by species.",
	},
	[]string{"fish_type"},
)

// HarvestsTotal counts successful harvests (coupons minted).
// Label:
//   - fish_type: catalog species of the harvested fish
var HarvestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "harvests_total",
		Help:      "Total number of successful harvests, by species.",
	},
	[]string{"fish_type"},
)

// ── Coupon metrics ────────────────────────────────────────────────────────────

// RedemptionsTotal counts staff redemption attempts.
// Label:
//   - result: "success", "already_used", "expired", "not_found",
//     "unauthorized", or "error"
var RedemptionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redemptions_total",
		Help:      "Total number of coupon redemption attempts, by result.",
	},
	[]string{"result"},
)

// RedeemedValueTotal accumulates the monetary value of redeemed coupons.
var RedeemedValueTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "redeemed_value_total",
		Help:      "Cumulative currency value of successfully redeemed coupons.",
	},
)
