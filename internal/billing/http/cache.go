package http

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fueldesk/fueldesk/internal/billing"
)

const reportCacheTTL = 5 * time.Minute

var reportCache = newResponseCache(reportCacheTTL)

type cacheItem struct {
	value   billing.ConsumptionReport
	expires time.Time
}

// responseCache keeps recently built consumption reports in-process so a
// burst of invoice downloads for the same organization/period aggregates
// only once. Entries expire; it is never a source of truth.
type responseCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]cacheItem
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:   ttl,
		items: make(map[string]cacheItem),
	}
}

func (c *responseCache) Get(key string) (billing.ConsumptionReport, bool) {
	if c == nil {
		return billing.ConsumptionReport{}, false
	}
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return billing.ConsumptionReport{}, false
	}
	if time.Now().After(item.expires) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return billing.ConsumptionReport{}, false
	}
	return item.value, true
}

func (c *responseCache) Set(key string, value billing.ConsumptionReport) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items[key] = cacheItem{value: value, expires: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *responseCache) Bust() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.items = make(map[string]cacheItem)
	c.mu.Unlock()
}

// InvalidateOrg drops every cached period for one organization.
func (c *responseCache) InvalidateOrg(orgID int64) {
	if c == nil {
		return
	}
	prefix := fmt.Sprintf("billing:report:%d|", orgID)
	c.mu.Lock()
	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
	c.mu.Unlock()
}

func reportCacheKey(orgID int64, month, year int) string {
	return fmt.Sprintf("billing:report:%d|%04d-%02d", orgID, year, month)
}

// InvalidateReports drops the cached consumption reports for one
// organization. Order intake calls this so a freshly recorded order shows
// up in the next invoice download instead of after TTL expiry.
func InvalidateReports(orgID int64) {
	reportCache.InvalidateOrg(orgID)
}

func bustReportCache() {
	reportCache.Bust()
}
