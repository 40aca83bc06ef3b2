package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/query-desk/internal/events"
	"github.com/spec-kit/query-desk/internal/repository"
)

// ReportCache is the subset of the Redis wrapper the report views need.
// A nil cache disables caching entirely.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
}

const (
	cacheKeyStatusAll   = "reports:status:all"
	cacheKeyPriorityAll = "reports:priority:all"
	cacheKeyDailyAll    = "reports:daily:all"
)

// ReportService serves the derived read views behind the dashboards:
// status/priority breakdowns and the per-day submission trend. System-wide
// views are cached in Redis and invalidated on every ledger write.
type ReportService struct {
	queries repository.QueryRepository
	cache   ReportCache
	ttl     time.Duration
	logger  *zap.Logger
}

// NewReportService constructs the service.
func NewReportService(queries repository.QueryRepository, cache ReportCache, ttl time.Duration, logger *zap.Logger) *ReportService {
	return &ReportService{queries: queries, cache: cache, ttl: ttl, logger: logger}
}

// RegisterInvalidation subscribes cache invalidation to ledger writes.
func (s *ReportService) RegisterInvalidation(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	handler := func(ctx context.Context, _ events.Event) error {
		s.invalidate(ctx)
		return nil
	}
	dispatcher.Subscribe(events.EventQuerySubmitted, handler)
	dispatcher.Subscribe(events.EventQueryStatusChanged, handler)
	dispatcher.Subscribe(events.EventQueryAssigned, handler)
}

// StatusCounts returns the system-wide status breakdown.
func (s *ReportService) StatusCounts(ctx context.Context) ([]repository.StatusCount, error) {
	var cached []repository.StatusCount
	if s.fromCache(ctx, cacheKeyStatusAll, &cached) {
		return cached, nil
	}
	counts, err := s.queries.StatusCounts(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, cacheKeyStatusAll, counts)
	return counts, nil
}

// StatusCountsForClient returns the breakdown for one client's own rows.
// Per-client views are cheap and personal, so they skip the shared cache.
func (s *ReportService) StatusCountsForClient(ctx context.Context, clientName string) ([]repository.StatusCount, error) {
	return s.queries.StatusCounts(ctx, &clientName)
}

// PriorityCounts returns the system-wide priority breakdown.
func (s *ReportService) PriorityCounts(ctx context.Context) ([]repository.PriorityCount, error) {
	var cached []repository.PriorityCount
	if s.fromCache(ctx, cacheKeyPriorityAll, &cached) {
		return cached, nil
	}
	counts, err := s.queries.PriorityCounts(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, cacheKeyPriorityAll, counts)
	return counts, nil
}

// DailyCounts returns submissions bucketed by calendar day of creation.
func (s *ReportService) DailyCounts(ctx context.Context) ([]repository.DailyCount, error) {
	var cached []repository.DailyCount
	if s.fromCache(ctx, cacheKeyDailyAll, &cached) {
		return cached, nil
	}
	counts, err := s.queries.DailyCounts(ctx, nil)
	if err != nil {
		return nil, err
	}
	s.toCache(ctx, cacheKeyDailyAll, counts)
	return counts, nil
}

func (s *ReportService) fromCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("discarding malformed cached report", zap.String("key", key), zap.Error(err))
		s.cache.Delete(ctx, key)
		return false
	}
	return true
}

func (s *ReportService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.cache.Set(ctx, key, raw, s.ttl)
}

func (s *ReportService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(ctx, cacheKeyStatusAll, cacheKeyPriorityAll, cacheKeyDailyAll)
}
