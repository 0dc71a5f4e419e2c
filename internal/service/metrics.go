package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	GamesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_games_started_total",
			Help: "Games started, by variant and mode",
		},
		[]string{"variant", "mode"},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_games_finished_total",
			Help: "Games finished, by variant, mode and outcome",
		},
		[]string{"variant", "mode", "outcome"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "minesweeper_active_sessions",
			Help: "Solo sessions held in memory",
		},
	)
	ActiveRooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "minesweeper_active_rooms",
			Help: "Multiplayer rooms held by the hub",
		},
	)
	ResultSubmitFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minesweeper_result_submit_failures_total",
			Help: "Leaderboard submissions that failed after retries",
		},
		[]string{"variant"},
	)
)

func init() {
	prometheus.MustRegister(GamesStarted)
	prometheus.MustRegister(GamesFinished)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(ActiveRooms)
	prometheus.MustRegister(ResultSubmitFailures)
}

func OutcomeLabel(won bool) string {
	if won {
		return "won"
	}
	return "lost"
}
