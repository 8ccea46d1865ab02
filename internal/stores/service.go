package stores

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchday/dispatchday-backend/pkg/config"
	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/security"
)

const apiKeyCacheTTL = 5 * time.Minute

type storeRepository interface {
	Create(ctx context.Context, store *models.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
	List(ctx context.Context) ([]models.Store, error)
	Update(ctx context.Context, store *models.Store) error
}

// apiKeyCache holds digests of recently verified keys so storefront requests
// skip the Argon2id derivation on the hot path.
type apiKeyCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// Service exposes store operations.
type Service interface {
	Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, string, error)
	GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error)
	List(ctx context.Context) ([]StoreDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateStoreInput) (*StoreDTO, error)
	RotateAPIKey(ctx context.Context, id uuid.UUID) (string, error)
	AuthenticateAPIKey(ctx context.Context, storeID uuid.UUID, key string) error
}

type service struct {
	repo      storeRepository
	cache     apiKeyCache
	apiKeyCfg config.APIKeyConfig
}

// NewService builds a store service. The cache is optional; without it every
// storefront request pays a full hash verification.
func NewService(repo storeRepository, cache apiKeyCache, apiKeyCfg config.APIKeyConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("store repository required")
	}
	return &service{repo: repo, cache: cache, apiKeyCfg: apiKeyCfg}, nil
}

func (s *service) Create(ctx context.Context, input CreateStoreInput) (*StoreDTO, string, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "store name is required")
	}
	timezone, err := normalizeTimezone(input.Timezone)
	if err != nil {
		return nil, "", err
	}

	rawKey, err := security.GenerateAPIKey()
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate api key")
	}
	hash, err := security.HashAPIKey(rawKey, s.apiKeyCfg)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash api key")
	}

	store := &models.Store{
		Name:       name,
		Timezone:   timezone,
		APIKeyHash: hash,
		Active:     true,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create store")
	}
	return FromModel(store), rawKey, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*StoreDTO, error) {
	store, err := s.loadStore(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(store), nil
}

func (s *service) List(ctx context.Context) ([]StoreDTO, error) {
	stores, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores")
	}
	dtos := make([]StoreDTO, 0, len(stores))
	for i := range stores {
		dtos = append(dtos, *FromModel(&stores[i]))
	}
	return dtos, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateStoreInput) (*StoreDTO, error) {
	store, err := s.loadStore(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "store name cannot be empty")
		}
		store.Name = name
	}
	if input.Timezone != nil {
		timezone, err := normalizeTimezone(*input.Timezone)
		if err != nil {
			return nil, err
		}
		store.Timezone = timezone
	}
	if input.Active != nil {
		store.Active = *input.Active
	}

	if err := s.repo.Update(ctx, store); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update store")
	}
	if input.Active != nil && !*input.Active {
		s.evictAPIKeyCache(ctx, store.ID)
	}
	return FromModel(store), nil
}

func (s *service) RotateAPIKey(ctx context.Context, id uuid.UUID) (string, error) {
	store, err := s.loadStore(ctx, id)
	if err != nil {
		return "", err
	}

	rawKey, err := security.GenerateAPIKey()
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate api key")
	}
	hash, err := security.HashAPIKey(rawKey, s.apiKeyCfg)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash api key")
	}

	store.APIKeyHash = hash
	if err := s.repo.Update(ctx, store); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate api key")
	}
	s.evictAPIKeyCache(ctx, store.ID)
	return rawKey, nil
}

func (s *service) AuthenticateAPIKey(ctx context.Context, storeID uuid.UUID, key string) error {
	if key == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing api key")
	}

	if s.cacheMatches(ctx, storeID, key) {
		return nil
	}

	store, err := s.repo.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid api key")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	if !store.Active {
		return pkgerrors.New(pkgerrors.CodeForbidden, "store is inactive")
	}

	ok, err := security.VerifyAPIKey(key, store.APIKeyHash)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify api key")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid api key")
	}

	s.storeAPIKeyCache(ctx, storeID, key)
	return nil
}

func (s *service) loadStore(ctx context.Context, id uuid.UUID) (*models.Store, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}
	return store, nil
}

func (s *service) cacheMatches(ctx context.Context, storeID uuid.UUID, key string) bool {
	if s.cache == nil {
		return false
	}
	stored, err := s.cache.Get(ctx, s.apiKeyCacheKey(storeID))
	if err != nil || stored == "" {
		return false
	}
	digest := digestAPIKey(key)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(digest)) == 1
}

func (s *service) storeAPIKeyCache(ctx context.Context, storeID uuid.UUID, key string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, s.apiKeyCacheKey(storeID), digestAPIKey(key), apiKeyCacheTTL)
}

func (s *service) evictAPIKeyCache(ctx context.Context, storeID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.apiKeyCacheKey(storeID))
}

func (s *service) apiKeyCacheKey(storeID uuid.UUID) string {
	return s.cache.CacheKey("apikey", storeID.String())
}

func digestAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

func normalizeTimezone(value string) (string, error) {
	timezone := strings.TrimSpace(value)
	if timezone == "" {
		return "UTC", nil
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid timezone")
	}
	return timezone, nil
}
