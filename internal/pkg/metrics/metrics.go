// Package metrics defines the custom Prometheus metrics of the sweet shop
// API. Every metric is registered with the default registry on package
// init through promauto, which is the registry the /metrics endpoint serves.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sweetshop"

// ── Inventory metrics ─────────────────────────────────────────────────────────

// PurchasesTotal counts purchase attempts.
// Label:
//   - result: "success", "out_of_stock", "not_found" or "error"
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_total",
		Help:      "Total number of purchase attempts, by result.",
	},
	[]string{"result"},
)

// RestocksTotal counts successful restocks.
var RestocksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "restocks_total",
		Help:      "Total number of successful restock operations.",
	},
)

// RestockUnitsTotal sums the units added by successful restocks.
var RestockUnitsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "restock_units_total",
		Help:      "Total number of units added to inventory by restocks.",
	},
)

// SweetsCreatedTotal counts created sweets.
// Label:
//   - category: the sweet's category, e.g. "Chocolate"
var SweetsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweets_created_total",
		Help:      "Total number of sweets created, by category.",
	},
	[]string{"category"},
)

var SweetsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweets_deleted_total",
		Help:      "Total number of sweets deleted.",
	},
)

// ListCacheLookupsTotal counts inventory list cache lookups.
// Label:
//   - result: "hit", "miss" or "error"
var ListCacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "list_cache_lookups_total",
		Help:      "Total number of inventory list cache lookups, labelled by result.",
	},
	[]string{"result"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts register and login attempts that reached the
// credential store.
// Labels:
//   - op: "register" or "login"
//   - result: "success", "conflict" or "rejected"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"op", "result"},
)
