package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/salmaanit26/Query-Management-System/internal/models"
	appErrors "github.com/salmaanit26/Query-Management-System/pkg/errors"
)

type userReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type venueReader interface {
	FindByID(ctx context.Context, id string) (*models.Venue, error)
}

// IdentityConfig sizes the lookup caches.
type IdentityConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// IdentityService resolves users and venues owned by external collaborators.
// Found records are kept in per-instance TTL caches. Misses are never cached.
type IdentityService struct {
	users  userReader
	venues venueReader
	logger *zap.Logger

	userCache  *expirable.LRU[string, models.User]
	venueCache *expirable.LRU[string, models.Venue]
}

// NewIdentityService constructs the lookup service.
func NewIdentityService(users userReader, venues venueReader, cfg IdentityConfig, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 512
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	return &IdentityService{
		users:      users,
		venues:     venues,
		logger:     logger,
		userCache:  expirable.NewLRU[string, models.User](cfg.CacheSize, nil, cfg.CacheTTL),
		venueCache: expirable.NewLRU[string, models.Venue](cfg.CacheSize, nil, cfg.CacheTTL),
	}
}

// User returns the user or NOT_FOUND.
func (s *IdentityService) User(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	if cached, ok := s.userCache.Get(id); ok {
		user := cached
		return &user, nil
	}
	return s.loadUser(ctx, id)
}

// Worker returns the user when it exists and holds the WORKER role. The role
// is always read from the store so a demoted worker cannot be assigned from a
// stale cache entry.
func (s *IdentityService) Worker(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	user, err := s.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsWorker() {
		return nil, appErrors.Clone(appErrors.ErrInvalidRole, fmt.Sprintf("user %s is not a worker", id))
	}
	return user, nil
}

func (s *IdentityService) loadUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("user %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	s.userCache.Add(id, *user)
	return user, nil
}

// Venue returns the venue or NOT_FOUND.
func (s *IdentityService) Venue(ctx context.Context, id string) (*models.Venue, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "venue not found")
	}
	if cached, ok := s.venueCache.Get(id); ok {
		venue := cached
		return &venue, nil
	}
	venue, err := s.venues.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("venue %s not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load venue")
	}
	s.venueCache.Add(id, *venue)
	return venue, nil
}

