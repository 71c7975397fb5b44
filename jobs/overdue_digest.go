package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ledgerline/ledgerline/internal/jobs"
	"github.com/ledgerline/ledgerline/internal/obligation"
)

// OverdueDigestJob recomputes overdue counts and totals per ledger side and
// publishes them to the overdue gauge. It exists so dashboards track overdue
// drift without waiting for interactive traffic.
type OverdueDigestJob struct {
	Obligations *obligation.Service
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
	clock       func() time.Time
}

// NewOverdueDigestJob wires dependencies for the digest handler.
func NewOverdueDigestJob(obligations *obligation.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueDigestJob {
	return &OverdueDigestJob{
		Obligations: obligations,
		Logger:      logger,
		Metrics:     metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes overdue digest tasks.
func (j *OverdueDigestJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Obligations == nil {
		return errors.New("overdue digest: handler not configured")
	}
	var payload OverdueDigestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	sides := []obligation.Side{obligation.SidePayable, obligation.SideReceivable}
	if payload.Side != "" {
		switch obligation.Side(strings.ToUpper(payload.Side)) {
		case obligation.SidePayable:
			sides = []obligation.Side{obligation.SidePayable}
		case obligation.SideReceivable:
			sides = []obligation.Side{obligation.SideReceivable}
		default:
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskOverdueDigest)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	start := j.now()
	for _, side := range sides {
		summary, err := j.Obligations.Summarize(ctx, side)
		if err != nil {
			resultErr = err
			j.logger().Error("overdue digest", slog.String("side", string(side)), slog.Any("error", err))
			return resultErr
		}
		j.metrics().SetOverdue(string(side), summary.CountOverdue)
		j.logger().Info("overdue digest",
			slog.String("side", string(side)),
			slog.Int("count", summary.CountOverdue),
			slog.String("total", summary.TotalOverdue.String()),
		)
	}

	j.logger().Info("completed overdue digest", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *OverdueDigestJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *OverdueDigestJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *OverdueDigestJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
