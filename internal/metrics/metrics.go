package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification outcomes.
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusFiltered = "filtered"
	StatusIgnored  = "ignored"
	StatusSkipped  = "skipped"
)

var (
	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_notifier_events_total",
		Help: "Total number of shop events received, labelled by classified kind.",
	}, []string{"kind"})

	Notifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_notifier_notifications_total",
		Help: "Total number of notification outcomes, labelled by status.",
	}, []string{"status"})

	DispatchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_notifier_dispatch_duration_seconds",
		Help:    "Latency of chat webhook deliveries.",
		Buckets: prometheus.DefBuckets,
	})
)
