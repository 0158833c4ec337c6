package report

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/domain/ticket"
	"helpdesk/internal/errs"
	"helpdesk/internal/ports"
)

const DefaultCacheTTL = 60 * time.Second

type Options struct {
	CacheTTL        time.Duration
	UnassignedLabel string
}

// Bucket is one labelled count in a report.
type Bucket struct {
	Label string `json:"label" yaml:"label"`
	Count int64  `json:"count" yaml:"count"`
}

type Snapshot struct {
	Status     []Bucket `json:"status" yaml:"status"`
	Priority   []Bucket `json:"priority" yaml:"priority"`
	Assignment []Bucket `json:"assignment" yaml:"assignment"`
	KBCategory []Bucket `json:"kb_category" yaml:"kb_category"`
}

// Service computes aggregate counts. Results are cached for CacheTTL;
// writers drop the keys after commit.
type Service struct {
	tickets   ports.TicketReadRepository
	knowledge ports.KnowledgeRepository
	cache     ports.Cache
	opts      Options
}

// NewService wires reports. cache is optional.
func NewService(tickets ports.TicketReadRepository, knowledge ports.KnowledgeRepository, cache ports.Cache, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if strings.TrimSpace(opts.UnassignedLabel) == "" {
		opts.UnassignedLabel = ticket.DefaultUnassignedLabel
	}
	return &Service{tickets: tickets, knowledge: knowledge, cache: cache, opts: opts}
}

func (s *Service) StatusCounts(ctx context.Context) ([]Bucket, error) {
	return s.cached(ctx, ports.CacheKeyStatusCounts, func(ctx context.Context) ([]ports.CountRow, error) {
		return s.tickets.CountTicketsByStatus(ctx)
	}, "")
}

func (s *Service) PriorityCounts(ctx context.Context) ([]Bucket, error) {
	return s.cached(ctx, ports.CacheKeyPriorityCounts, func(ctx context.Context) ([]ports.CountRow, error) {
		return s.tickets.CountTicketsByPriority(ctx)
	}, "")
}

// AssignmentCounts reports unassigned tickets under the configured label.
func (s *Service) AssignmentCounts(ctx context.Context) ([]Bucket, error) {
	return s.cached(ctx, ports.CacheKeyAssignmentCounts, func(ctx context.Context) ([]ports.CountRow, error) {
		return s.tickets.CountTicketsByAssignee(ctx)
	}, s.opts.UnassignedLabel)
}

func (s *Service) KBCategoryCounts(ctx context.Context) ([]Bucket, error) {
	return s.cached(ctx, ports.CacheKeyKBCategoryCounts, func(ctx context.Context) ([]ports.CountRow, error) {
		return s.knowledge.CountArticlesByCategory(ctx)
	}, "")
}

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	var (
		out Snapshot
		err error
	)
	if out.Status, err = s.StatusCounts(ctx); err != nil {
		return Snapshot{}, err
	}
	if out.Priority, err = s.PriorityCounts(ctx); err != nil {
		return Snapshot{}, err
	}
	if out.Assignment, err = s.AssignmentCounts(ctx); err != nil {
		return Snapshot{}, err
	}
	if out.KBCategory, err = s.KBCategoryCounts(ctx); err != nil {
		return Snapshot{}, err
	}
	return out, nil
}

func (s *Service) cached(
	ctx context.Context,
	key string,
	load func(ctx context.Context) ([]ports.CountRow, error),
	nullLabel string,
) ([]Bucket, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if s.tickets == nil || s.knowledge == nil {
		return nil, errors.New("report repositories are required")
	}
	logCtx := logging.WithAttrs(logging.WithComponent(ctx, "usecase.report"), slog.String("cache_key", key))

	if buckets, ok := s.readCache(logCtx, key); ok {
		return buckets, nil
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, errs.Wrapf(err, "compute %s", key)
	}
	buckets := make([]Bucket, 0, len(rows))
	for _, row := range rows {
		label := nullLabel
		if row.Key != nil {
			label = *row.Key
		}
		buckets = append(buckets, Bucket{Label: label, Count: row.Count})
	}

	s.writeCache(logCtx, key, buckets)
	return buckets, nil
}

func (s *Service) readCache(ctx context.Context, key string) ([]Bucket, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, found, err := s.cache.Get(ctx, key)
	if err != nil {
		logging.Warn(ctx, "read report cache failed", slog.Any("err", errs.Loggable(err)))
		return nil, false
	}
	if !found {
		return nil, false
	}

	var buckets []Bucket
	if err := json.Unmarshal([]byte(raw), &buckets); err != nil {
		logging.Warn(ctx, "discarding malformed report cache entry", slog.Any("err", errs.Loggable(err)))
		return nil, false
	}
	return buckets, true
}

// writeCache is best-effort; the computed value is returned either way.
func (s *Service) writeCache(ctx context.Context, key string, buckets []Bucket) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(buckets)
	if err != nil {
		logging.Warn(ctx, "encode report cache failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.opts.CacheTTL); err != nil {
		logging.Warn(ctx, "write report cache failed", slog.Any("err", errs.Loggable(err)))
	}
}
