package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pool metrics
	PoolCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poolengine_pool_count",
		Help: "Total number of registered pools",
	})

	PoolsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poolengine_pools_created_total",
		Help: "Total number of pools created",
	})

	// Swap metrics
	SwapRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolengine_swap_requests_total",
			Help: "Total number of swap requests",
		},
		[]string{"status"},
	)

	SwapDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "poolengine_swap_duration_seconds",
		Help:    "Swap execution duration in seconds",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})

	// Quote metrics
	QuoteRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolengine_quote_requests_total",
			Help: "Total number of quote requests",
		},
		[]string{"status"},
	)

	// Liquidity metrics
	LiquidityOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolengine_liquidity_ops_total",
			Help: "Total number of liquidity operations",
		},
		[]string{"op", "status"},
	)

	LiquidityOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poolengine_liquidity_op_duration_seconds",
			Help:    "Liquidity operation duration in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		},
		[]string{"op"},
	)

	// Guard metrics
	ReentrancyRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poolengine_reentrancy_rejections_total",
		Help: "Total number of mutating calls rejected by the reentrancy guard",
	})

	// Persistence metrics
	SnapshotSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolengine_snapshot_saves_total",
			Help: "Total number of pool snapshot batch saves",
		},
		[]string{"status"},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poolengine_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poolengine_http_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
