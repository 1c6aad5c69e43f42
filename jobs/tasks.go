// Package jobs contains background task definitions and the asynq worker.
package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerWarmup rebuilds the monthly bill summary ledger so the first
	// request of the day hits a warm cache.
	TaskLedgerWarmup = "billing:ledger_warmup"
)

// LedgerWarmupPayload selects the period to warm. A zero month means the
// period preceding the current one at execution time.
type LedgerWarmupPayload struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// NewLedgerWarmupTask constructs an asynq task for the given period.
func NewLedgerWarmupTask(payload LedgerWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerWarmup, data), nil
}

// EnqueueLedgerWarmup enqueues a ledger warmup for the given period.
func (c *Client) EnqueueLedgerWarmup(ctx context.Context, payload LedgerWarmupPayload) (*asynq.TaskInfo, error) {
	task, err := NewLedgerWarmupTask(payload)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}
