package keeper

import (
	"sync"

	"github.com/cosmos/cosmos-sdk/telemetry"
	"github.com/hashicorp/go-metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/paw-chain/leasepay/x/escrow/types"
)

// EscrowMetrics holds all Prometheus metrics for the escrow module
type EscrowMetrics struct {
	// Funding
	Deposited       *prometheus.CounterVec
	DepositFailures *prometheus.CounterVec

	// Lifecycle
	AccountsClosed *prometheus.CounterVec

	// Settlement
	Withdrawn          *prometheus.CounterVec
	Settlements        prometheus.Counter
	SettlementFailures prometheus.Counter
	GrantsPruned       prometheus.Counter
}

var (
	escrowMetricsOnce sync.Once
	escrowMetrics     *EscrowMetrics
)

// NewEscrowMetrics creates and registers escrow metrics (singleton pattern)
func NewEscrowMetrics() *EscrowMetrics {
	escrowMetricsOnce.Do(func() {
		escrowMetrics = &EscrowMetrics{
			Deposited: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "leasepay",
					Subsystem: "escrow",
					Name:      "deposited_total",
					Help:      "Total value deposited into escrow, by scope and source",
				},
				[]string{"scope", "source"},
			),
			DepositFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "leasepay",
					Subsystem: "escrow",
					Name:      "deposit_failures_total",
					Help:      "Deposits rejected during resolution or transfer",
				},
				[]string{"scope"},
			),
			AccountsClosed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "leasepay",
					Subsystem: "escrow",
					Name:      "accounts_closed_total",
					Help:      "Escrow accounts leaving the open state, by scope and final state",
				},
				[]string{"scope", "state"},
			),
			Withdrawn: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "leasepay",
					Subsystem: "escrow",
					Name:      "withdrawn_total",
					Help:      "Total value paid out to payment recipients",
				},
				[]string{"scope"},
			),
			Settlements: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "leasepay",
					Subsystem: "escrow",
					Name:      "settlements_total",
					Help:      "Accounts that paid at least one payment during settlement",
				},
			),
			SettlementFailures: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "leasepay",
					Subsystem: "escrow",
					Name:      "settlement_failures_total",
					Help:      "Account settlements rolled back after an error",
				},
			),
			GrantsPruned: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "leasepay",
					Subsystem: "escrow",
					Name:      "grants_pruned_total",
					Help:      "Expired or exhausted deposit grants removed at end block",
				},
			),
		}
	})
	return escrowMetrics
}

func emitOverdrawnTelemetry(scope types.Scope) {
	telemetry.IncrCounterWithLabels(
		[]string{types.ModuleName, "account_overdrawn"},
		1,
		[]metrics.Label{
			telemetry.NewLabel("scope", scope.String()),
		},
	)
}
