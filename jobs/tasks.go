package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskForecastWarmup pre-populates the forecast cache for both sides.
	TaskForecastWarmup = "forecast:warmup"
	// TaskOverdueDigest recomputes overdue totals and refreshes the gauge.
	TaskOverdueDigest = "obligation:overdue_digest"
)

// ForecastWarmupPayload configures a forecast warmup run. Zero MonthsAhead
// warms the default horizon.
type ForecastWarmupPayload struct {
	MonthsAhead int `json:"months_ahead"`
}

// NewForecastWarmupTask constructs an Asynq task.
func NewForecastWarmupTask(payload ForecastWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskForecastWarmup, data), nil
}

// OverdueDigestPayload configures an overdue digest run.
type OverdueDigestPayload struct {
	// Side restricts the digest to one ledger side when non-empty.
	Side string `json:"side,omitempty"`
}

// NewOverdueDigestTask constructs an Asynq task.
func NewOverdueDigestTask(payload OverdueDigestPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOverdueDigest, data), nil
}
