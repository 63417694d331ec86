// Package jobs runs the console's background work: periodic
// re-verification of the cached session and warming of the dashboard
// statistics cache.
package jobs

import (
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskVerifySession re-checks the cached API token against the server.
	TaskVerifySession = "auth:verify_session"
	// TaskStatsWarmup refreshes the dashboard statistics cache.
	TaskStatsWarmup = "stats:warmup"
)

// NewVerifySessionTask constructs the session verification task.
func NewVerifySessionTask() *asynq.Task {
	return asynq.NewTask(TaskVerifySession, nil)
}

// NewStatsWarmupTask constructs the stats warmup task.
func NewStatsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskStatsWarmup, nil)
}
