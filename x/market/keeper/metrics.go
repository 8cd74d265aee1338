package keeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MarketMetrics holds all Prometheus metrics for the market module
type MarketMetrics struct {
	DeploymentsCreated prometheus.Counter
	BidsCreated        prometheus.Counter
	BidsLost           prometheus.Counter
	LeasesCreated      prometheus.Counter
	LeasesClosed       *prometheus.CounterVec
}

var (
	marketMetricsOnce sync.Once
	marketMetrics     *MarketMetrics
)

// NewMarketMetrics creates and registers market metrics (singleton pattern)
func NewMarketMetrics() *MarketMetrics {
	marketMetricsOnce.Do(func() {
		marketMetrics = &MarketMetrics{
			DeploymentsCreated: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "leasepay",
				Subsystem: "market",
				Name:      "deployments_created_total",
				Help:      "Deployments created",
			}),
			BidsCreated: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "leasepay",
				Subsystem: "market",
				Name:      "bids_created_total",
				Help:      "Bids placed on orders",
			}),
			BidsLost: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "leasepay",
				Subsystem: "market",
				Name:      "bids_lost_total",
				Help:      "Bids that lost to another provider's bid",
			}),
			LeasesCreated: promauto.NewCounter(prometheus.CounterOpts{
				Namespace: "leasepay",
				Subsystem: "market",
				Name:      "leases_created_total",
				Help:      "Leases created from winning bids",
			}),
			LeasesClosed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "leasepay",
					Subsystem: "market",
					Name:      "leases_closed_total",
					Help:      "Leases closed, by reason",
				},
				[]string{"reason"},
			),
		}
	})
	return marketMetrics
}
