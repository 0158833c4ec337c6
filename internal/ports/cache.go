package ports

import (
	"context"
	"time"
)

// Cache is a small key-value store for derived, recomputable values.
// A zero ttl keeps the entry until it is overwritten or deleted.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Report cache keys. Writers that change counted data drop them after
// commit so the next report recomputes.
const (
	CacheKeyStatusCounts     = "report:status_counts"
	CacheKeyPriorityCounts   = "report:priority_counts"
	CacheKeyAssignmentCounts = "report:assignment_counts"
	CacheKeyKBCategoryCounts = "report:kb_category_counts"
)

func ReportCacheKeys() []string {
	return []string{CacheKeyStatusCounts, CacheKeyPriorityCounts, CacheKeyAssignmentCounts, CacheKeyKBCategoryCounts}
}
