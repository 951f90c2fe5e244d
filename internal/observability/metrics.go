// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makerboards_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// SignupsTotal counts accounts created through the signup form.
	SignupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "makerboards_signups_total",
		Help: "Total number of accounts created through signup",
	})

	// LoginsTotal counts login attempts by result ("success" or "failure").
	LoginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makerboards_logins_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})

	// PasswordChangesTotal counts password updates by flow ("change" or "reset").
	PasswordChangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makerboards_password_changes_total",
		Help: "Total number of password updates by flow",
	}, []string{"flow"})

	// PasswordResetEmailsTotal counts reset emails by result ("sent" or "failed").
	PasswordResetEmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makerboards_password_reset_emails_total",
		Help: "Total number of password reset emails by result",
	}, []string{"result"})

	// TopicsCreatedTotal counts topics opened, labelled by board.
	TopicsCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makerboards_topics_created_total",
		Help: "Total number of topics created",
	}, []string{"board_id"})

	// RateLimitRejectionsTotal counts requests rejected by the Redis rate limiter.
	RateLimitRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "makerboards_rate_limit_rejections_total",
		Help: "Total number of requests rejected by rate limiting",
	}, []string{"resource"})
)
