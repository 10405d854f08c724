package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	FetchOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_fetch_operations_total",
			Help: "Read operations issued by the fetch orchestrator",
		},
		[]string{"op", "outcome"}, // ok|error|dedup_join|stale_drop|rejected
	)
	ChannelEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_channel_events_total",
			Help: "Push channel events by handling result",
		},
		[]string{"event", "result"}, // applied|dropped|invalid
	)
)

var (
	StoreOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_store_operations_total",
			Help: "Order store operations",
		},
		[]string{"op"}, // replace|patch|patch_unknown|append
	)
	StoreSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_order_store_size",
			Help: "Number of orders currently held by the client",
		},
	)
	GeoDetections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_geo_detections_total",
			Help: "Location pipeline runs by result",
		},
		[]string{"result"}, // ok|fallback|error|ignored
	)
)

var registerOnce sync.Once

// MustRegister — регистрация всех метрик; повторный вызов безопасен.
func MustRegister() {
	registerOnce.Do(func() {
		prometheus.MustRegister(FetchOps, ChannelEvents, StoreOps, StoreSize, GeoDetections)
	})
}
