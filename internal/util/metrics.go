package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SalesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_created_total",
		Help: "Total number of sales committed",
	})

	SalesDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sales_deleted_total",
		Help: "Total number of sales deleted with stock restored",
	})

	SalesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_failed_total",
		Help: "Total number of sale transactions rolled back",
	}, []string{"reason"})

	SaleTransactionLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sale_transaction_latency_seconds",
		Help:    "Latency of sale create/delete transactions",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	StockUnitsSoldTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_units_sold_total",
		Help: "Total number of product units decremented by sales",
	})

	StockCacheRefreshFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_cache_refresh_failed_total",
		Help: "Total number of failed stock cache updates",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
