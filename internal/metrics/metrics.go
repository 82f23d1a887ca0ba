package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	TeamsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "teams_created_total",
			Help: "Total number of teams created",
		},
	)

	MembershipChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "team_membership_changes_total",
			Help: "Total number of team membership additions and removals",
		},
		[]string{"op"}, // op: add, remove
	)

	TasksCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tasks_created_total",
			Help: "Total number of tasks created",
		},
	)

	CommentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comments_created_total",
			Help: "Total number of comments created",
		},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementTeamsCreated() {
	TeamsCreated.Inc()
}

func IncrementMembershipChange(op string) {
	MembershipChanges.WithLabelValues(op).Inc()
}

func IncrementTasksCreated() {
	TasksCreated.Inc()
}

func IncrementCommentsCreated() {
	CommentsCreated.Inc()
}
