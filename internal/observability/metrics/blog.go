package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Total number of posts created",
		},
	)

	PostsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_deleted_total",
			Help: "Total number of posts deleted",
		},
	)

	CommentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comments_created_total",
			Help: "Total number of comments created",
		},
	)

	CommentsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "comments_deleted_total",
			Help: "Total number of comments deleted",
		},
	)

	AuthorizationDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_denied_total",
			Help: "Total number of denied authorization checks",
		},
		[]string{"resource", "action"},
	)

	NotificationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications created",
		},
	)

	NotificationsCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_cleanup_deleted_total",
			Help: "Total number of old notifications deleted during cleanup",
		},
	)
)
