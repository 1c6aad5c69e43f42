package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LedgerCache stores built ledger rows in redis so the cross-organization
// batch is computed once per period. The worker warms it on the first of
// each month; cache misses fall through to a live build.
type LedgerCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLedgerCache constructs a LedgerCache.
func NewLedgerCache(client *redis.Client, ttl time.Duration) *LedgerCache {
	return &LedgerCache{client: client, ttl: ttl}
}

func ledgerKey(month, year int) string {
	return fmt.Sprintf("billing:ledger:%04d-%02d", year, month)
}

// Get returns the cached rows for the period, if present and decodable.
func (c *LedgerCache) Get(ctx context.Context, month, year int) ([]BillSummaryRow, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, ledgerKey(month, year)).Bytes()
	if err != nil {
		return nil, false
	}
	var rows []BillSummaryRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

// Set stores the rows for the period. Failures are ignored; the cache is an
// optimisation, never a source of truth.
func (c *LedgerCache) Set(ctx context.Context, month, year int, rows []BillSummaryRow) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(rows)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, ledgerKey(month, year), data, c.ttl).Err()
}
