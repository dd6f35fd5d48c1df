package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/roma-barocca-planner/app/observability/metrics"
	"github.com/FACorreiaa/roma-barocca-planner/internal/types"
)

var _ Repository = (*CacheRepository)(nil)

// Repository stores live sessions.
type Repository interface {
	Save(ctx context.Context, s *Session)
	Get(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count() int
}

// CacheRepository keeps sessions in memory. Every read extends the session
// lifetime by ttl; idle sessions are evicted.
type CacheRepository struct {
	cache   *cache.Cache
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.AppMetrics
}

func NewCacheRepository(ttl, cleanupInterval time.Duration, appMetrics *metrics.AppMetrics, logger *slog.Logger) *CacheRepository {
	r := &CacheRepository{
		cache:   cache.New(ttl, cleanupInterval),
		ttl:     ttl,
		logger:  logger,
		metrics: appMetrics,
	}
	r.cache.OnEvicted(func(key string, _ interface{}) {
		r.logger.Debug("Session evicted", slog.String("session_id", key))
		r.activeSessions(context.Background(), -1)
	})
	return r
}

func (r *CacheRepository) activeSessions(ctx context.Context, delta int64) {
	if r.metrics == nil {
		return
	}
	r.metrics.ActiveSessions.Add(ctx, delta)
}

func (r *CacheRepository) Save(ctx context.Context, s *Session) {
	key := s.id.String()
	if err := r.cache.Add(key, s, r.ttl); err == nil {
		r.activeSessions(ctx, 1)
		return
	}
	r.cache.Set(key, s, r.ttl)
}

func (r *CacheRepository) Get(_ context.Context, id uuid.UUID) (*Session, error) {
	key := id.String()
	v, found := r.cache.Get(key)
	if !found {
		return nil, types.ErrSessionNotFound
	}
	s := v.(*Session)
	// Replace fails once the key is gone, so a concurrent Delete is never undone.
	if err := r.cache.Replace(key, s, r.ttl); err != nil {
		return nil, types.ErrSessionNotFound
	}
	return s, nil
}

func (r *CacheRepository) Delete(_ context.Context, id uuid.UUID) error {
	key := id.String()
	if _, found := r.cache.Get(key); !found {
		return types.ErrSessionNotFound
	}
	r.cache.Delete(key)
	return nil
}

func (r *CacheRepository) Count() int {
	return r.cache.ItemCount()
}
