// Package metrics holds the prometheus collectors of the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cbrbot_updates_total",
		Help: "Telegram updates received, labeled by outcome",
	}, []string{"outcome"})

	EventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cbrbot_event_duration_seconds",
		Help:    "Time spent handling one user event, including rate fetches",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"action"})

	ConversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cbrbot_conversions_total",
		Help: "Amount conversions requested by users, labeled by result",
	}, []string{"result"})

	RateFetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cbrbot_rate_fetches_total",
		Help: "Rate provider calls, labeled by result",
	}, []string{"result"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cbrbot_active_sessions",
		Help: "Conversation sessions currently held in memory",
	})
)
