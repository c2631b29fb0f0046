package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/petcare-api/internal/model"
	"github.com/jwalitptl/petcare-api/internal/repository"
)

// Service is a read-through cache over the store and service catalogs.
// Scheduling hits these lookups on every booking, and calendars change
// rarely, so short-TTL caching keeps the hot path off the database.
// NotFound results are not cached.
type Service struct {
	stores   repository.StoreRepository
	services repository.ServiceRepository
	cache    *cache.Cache
}

type Config struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		TTL:             5 * time.Minute,
		CleanupInterval: 15 * time.Minute,
	}
}

func NewService(stores repository.StoreRepository, services repository.ServiceRepository, cfg Config) *Service {
	return &Service{
		stores:   stores,
		services: services,
		cache:    cache.New(cfg.TTL, cfg.CleanupInterval),
	}
}

func (s *Service) Store(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	key := "store:" + id.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.Store), nil
	}

	store, err := s.stores.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, store)
	return store, nil
}

func (s *Service) Service(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	key := "service:" + id.String()
	if cached, found := s.cache.Get(key); found {
		return cached.(*model.Service), nil
	}

	svc, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, svc)
	return svc, nil
}

// Invalidate drops a cached entry after an external catalog update.
func (s *Service) Invalidate(kind string, id uuid.UUID) {
	s.cache.Delete(kind + ":" + id.String())
}
