package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/ledgerline/ledgerline/internal/jobs"
	"github.com/ledgerline/ledgerline/internal/obligation"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ForecastWarmupJob pre-populates the forecast cache for both ledger sides
// so the first interactive request after a mutation burst hits warm keys.
type ForecastWarmupJob struct {
	Obligations *obligation.Service
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
	clock       func() time.Time
}

// NewForecastWarmupJob wires dependencies for the warmup handler.
func NewForecastWarmupJob(obligations *obligation.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *ForecastWarmupJob {
	return &ForecastWarmupJob{
		Obligations: obligations,
		Logger:      logger,
		Metrics:     metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes forecast warmup tasks.
func (j *ForecastWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Obligations == nil {
		return errors.New("forecast warmup: handler not configured")
	}
	var payload ForecastWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.MonthsAhead <= 0 {
		payload.MonthsAhead = obligation.DefaultHorizonMonths
	}

	tracker := j.metrics().Track(TaskForecastWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.Int("months_ahead", payload.MonthsAhead))
	logger.Info("starting forecast warmup")

	start := j.now()
	for _, side := range []obligation.Side{obligation.SidePayable, obligation.SideReceivable} {
		if err := j.warmSide(ctx, side, payload.MonthsAhead); err != nil {
			resultErr = err
			logger.Error("warm forecast", slog.String("side", string(side)), slog.Any("error", err))
			return resultErr
		}
	}

	logger.Info("completed forecast warmup", slog.Duration("duration", time.Since(start)))
	return resultErr
}

func (j *ForecastWarmupJob) warmSide(ctx context.Context, side obligation.Side, monthsAhead int) error {
	// Tighten each side with a timeout to avoid long-running jobs.
	sideCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	if _, err := j.Obligations.Analyze(sideCtx, side, monthsAhead, obligation.ForecastFilter{}); err != nil {
		return err
	}
	for _, costType := range []obligation.CostType{obligation.CostTypeFixed, obligation.CostTypeVariable} {
		if _, err := j.Obligations.Analyze(sideCtx, side, monthsAhead, obligation.ForecastFilter{CostType: costType}); err != nil {
			return err
		}
	}
	return nil
}

func (j *ForecastWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ForecastWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *ForecastWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
