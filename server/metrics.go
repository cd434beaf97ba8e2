package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	subscriptions   *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		subscriptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "landing_subscriptions_total",
			Help: "Subscribe requests by result",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "landing_http_requests_total",
			Help: "API requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "landing_http_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(m.subscriptions, m.requests, m.requestDuration)
	return m
}
