package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/fueldesk/fueldesk/internal/billing"
	"github.com/fueldesk/fueldesk/internal/shared"
)

type recordingBuilder struct {
	months []int
	years  []int
	err    error
}

func (b *recordingBuilder) BuildLedger(_ context.Context, month, year int) ([]billing.BillSummaryRow, error) {
	b.months = append(b.months, month)
	b.years = append(b.years, year)
	return nil, b.err
}

func warmupTask(t *testing.T, payload LedgerWarmupPayload) *asynq.Task {
	t.Helper()
	task, err := NewLedgerWarmupTask(payload)
	if err != nil {
		t.Fatalf("NewLedgerWarmupTask() error = %v", err)
	}
	return task
}

func newWarmupHandler(builder *recordingBuilder, rdb *redis.Client) *LedgerWarmupHandler {
	h := NewLedgerWarmupHandler(builder, rdb, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	h.now = func() time.Time { return time.Date(2024, 4, 10, 8, 0, 0, 0, time.UTC) }
	return h
}

func TestLedgerWarmupExplicitPeriod(t *testing.T) {
	builder := &recordingBuilder{}
	h := newWarmupHandler(builder, nil)

	if err := h.Handle(context.Background(), warmupTask(t, LedgerWarmupPayload{Month: 2, Year: 2024})); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(builder.months) != 1 || builder.months[0] != 2 || builder.years[0] != 2024 {
		t.Fatalf("built %v/%v", builder.months, builder.years)
	}
}

func TestLedgerWarmupDefaultsToPreviousMonth(t *testing.T) {
	builder := &recordingBuilder{}
	h := newWarmupHandler(builder, nil)

	if err := h.Handle(context.Background(), warmupTask(t, LedgerWarmupPayload{})); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(builder.months) != 1 || builder.months[0] != 3 || builder.years[0] != 2024 {
		t.Fatalf("built %v/%v, want march 2024", builder.months, builder.years)
	}
}

func TestLedgerWarmupSkipsWhenLockHeld(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	period := shared.Period{Month: 2, Year: 2024}
	if err := mr.Set(shared.LedgerWarmupLockKey(period), "1"); err != nil {
		t.Fatalf("seed lock: %v", err)
	}

	builder := &recordingBuilder{}
	h := newWarmupHandler(builder, rdb)
	if err := h.Handle(context.Background(), warmupTask(t, LedgerWarmupPayload{Month: 2, Year: 2024})); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(builder.months) != 0 {
		t.Fatalf("expected skipped run, built %v", builder.months)
	}
}

func TestLedgerWarmupReleasesLock(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	builder := &recordingBuilder{}
	h := newWarmupHandler(builder, rdb)
	if err := h.Handle(context.Background(), warmupTask(t, LedgerWarmupPayload{Month: 2, Year: 2024})); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if mr.Exists(shared.LedgerWarmupLockKey(shared.Period{Month: 2, Year: 2024})) {
		t.Fatalf("lock not released")
	}
}

func TestLedgerWarmupPropagatesBuildError(t *testing.T) {
	builder := &recordingBuilder{err: errors.New("db down")}
	h := newWarmupHandler(builder, nil)
	if err := h.Handle(context.Background(), warmupTask(t, LedgerWarmupPayload{Month: 2, Year: 2024})); err == nil {
		t.Fatal("expected error")
	}
}

func TestLedgerWarmupRejectsMalformedPayload(t *testing.T) {
	builder := &recordingBuilder{}
	h := newWarmupHandler(builder, nil)
	task := asynq.NewTask(TaskLedgerWarmup, []byte("{not json"))
	err := h.Handle(context.Background(), task)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("error = %v, want SkipRetry", err)
	}
	if len(builder.months) != 0 {
		t.Fatalf("expected no build, got %v", builder.months)
	}
}
