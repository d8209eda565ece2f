// Package metrics exposes Prometheus instruments for game activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the game-level Prometheus instruments, labelled by game.
type Metrics struct {
	Plays     *prometheus.CounterVec
	Wins      *prometheus.CounterVec
	Losses    *prometheus.CounterVec
	BetAmount *prometheus.HistogramVec
	Latency   *prometheus.HistogramVec
}

// New creates and registers the metric instruments on the given
// registerer.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Plays: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "game_plays_total",
			Help:      "Total number of game plays",
		}, []string{"game"}),
		Wins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "game_wins_total",
			Help:      "Total number of game wins",
		}, []string{"game"}),
		Losses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "game_losses_total",
			Help:      "Total number of game losses",
		}, []string{"game"}),
		BetAmount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bet_amount",
			Help:      "Distribution of bet amounts",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"game"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "game_latency_seconds",
			Help:      "Game action processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}, []string{"game"}),
	}

	reg.MustRegister(m.Plays, m.Wins, m.Losses, m.BetAmount, m.Latency)
	return m
}

// ObservePlay records one play of a game with its bet and latency.
func (m *Metrics) ObservePlay(game string, bet int64, win bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.Plays.WithLabelValues(game).Inc()
	m.BetAmount.WithLabelValues(game).Observe(float64(bet))
	m.Latency.WithLabelValues(game).Observe(duration.Seconds())
	if win {
		m.Wins.WithLabelValues(game).Inc()
	} else {
		m.Losses.WithLabelValues(game).Inc()
	}
}
