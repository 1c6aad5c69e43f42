package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/fueldesk/fueldesk/internal/billing"
	jobmetrics "github.com/fueldesk/fueldesk/internal/jobs"
	"github.com/fueldesk/fueldesk/internal/shared"
)

const warmupLockTTL = 15 * time.Minute

// LedgerBuilder is the slice of the billing service the warmup job needs.
type LedgerBuilder interface {
	BuildLedger(ctx context.Context, month, year int) ([]billing.BillSummaryRow, error)
}

// LedgerWarmupHandler rebuilds the bill summary ledger for a period so the
// redis cache is populated before users ask for it.
type LedgerWarmupHandler struct {
	builder LedgerBuilder
	redis   *redis.Client
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	now     func() time.Time
}

// NewLedgerWarmupHandler constructs the warmup handler. The redis client is
// optional; without it runs are not deduplicated across workers.
func NewLedgerWarmupHandler(builder LedgerBuilder, rdb *redis.Client, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerWarmupHandler {
	return &LedgerWarmupHandler{
		builder: builder,
		redis:   rdb,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

// Handle processes TaskLedgerWarmup tasks.
func (h *LedgerWarmupHandler) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := h.metrics.Track("ledger_warmup")

	var payload LedgerWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}
	period := shared.Period{Month: payload.Month, Year: payload.Year}
	if payload.Month == 0 {
		period = shared.CurrentPeriod(h.now()).Previous()
	}
	if err := period.Validate(); err != nil {
		_ = tracker.End(err)
		return asynq.SkipRetry
	}

	if h.redis != nil {
		ok, err := h.redis.SetNX(ctx, shared.LedgerWarmupLockKey(period), "1", warmupLockTTL).Result()
		if err != nil {
			h.logger.Warn("ledger warmup lock", slog.Any("error", err))
		} else if !ok {
			h.logger.Info("ledger warmup already running", slog.String("period", period.String()))
			return tracker.End(nil)
		}
		defer h.redis.Del(context.WithoutCancel(ctx), shared.LedgerWarmupLockKey(period))
	}

	rows, err := h.builder.BuildLedger(ctx, period.Month, period.Year)
	if err != nil {
		h.logger.Error("ledger warmup failed",
			slog.String("period", period.String()),
			slog.Any("error", err))
		return tracker.End(err)
	}
	h.logger.Info("ledger warmup done",
		slog.String("period", period.String()),
		slog.Int("organizations", len(rows)))
	return tracker.End(nil)
}
