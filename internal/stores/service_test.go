package stores

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchday/dispatchday-backend/pkg/config"
	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/security"
)

type stubStoreRepo struct {
	store   *models.Store
	stores  []models.Store
	err     error
	updated *models.Store
	created *models.Store
}

func (s *stubStoreRepo) Create(_ context.Context, store *models.Store) error {
	if s.err != nil {
		return s.err
	}
	store.ID = uuid.New()
	s.created = store
	return nil
}

func (s *stubStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.store == nil || s.store.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	cpy := *s.store
	return &cpy, nil
}

func (s *stubStoreRepo) List(_ context.Context) ([]models.Store, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stores, nil
}

func (s *stubStoreRepo) Update(_ context.Context, store *models.Store) error {
	if s.err != nil {
		return s.err
	}
	s.updated = store
	s.store = store
	return nil
}

type stubCache struct {
	data map[string]string
}

func newStubCache() *stubCache {
	return &stubCache{data: make(map[string]string)}
}

func (c *stubCache) Get(_ context.Context, key string) (string, error) {
	return c.data[key], nil
}

func (c *stubCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	str, _ := value.(string)
	c.data[key] = str
	return nil
}

func (c *stubCache) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.data, key)
	}
	return nil
}

func (c *stubCache) CacheKey(parts ...string) string {
	return "cache:" + strings.Join(parts, ":")
}

func testKeyConfig() config.APIKeyConfig {
	return config.APIKeyConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func baseStore(t *testing.T, rawKey string) *models.Store {
	t.Helper()
	hash, err := security.HashAPIKey(rawKey, testKeyConfig())
	if err != nil {
		t.Fatalf("hash api key: %v", err)
	}
	return &models.Store{
		ID:         uuid.New(),
		Name:       "Corner Bakery",
		Timezone:   "America/Chicago",
		APIKeyHash: hash,
		Active:     true,
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil, nil, testKeyConfig()); err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestCreateStoreReturnsRawKeyOnce(t *testing.T) {
	repo := &stubStoreRepo{}
	svc, err := NewService(repo, nil, testKeyConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, rawKey, err := svc.Create(context.Background(), CreateStoreInput{Name: " Corner Bakery ", Timezone: "America/Chicago"})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if dto.Name != "Corner Bakery" {
		t.Fatalf("name = %q, want trimmed", dto.Name)
	}
	if !dto.Active {
		t.Fatal("new stores should start active")
	}
	if !strings.HasPrefix(rawKey, security.APIKeyPrefix) {
		t.Fatalf("raw key %q missing prefix", rawKey)
	}
	if repo.created == nil || repo.created.APIKeyHash == "" {
		t.Fatal("expected hash persisted")
	}
	if strings.Contains(repo.created.APIKeyHash, rawKey) {
		t.Fatal("raw key must not be stored")
	}
}

func TestCreateStoreValidation(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{}, nil, testKeyConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, _, err := svc.Create(context.Background(), CreateStoreInput{Name: "  "}); err == nil {
		t.Fatal("expected error for blank name")
	}
	if _, _, err := svc.Create(context.Background(), CreateStoreInput{Name: "Shop", Timezone: "Not/AZone"}); err == nil {
		t.Fatal("expected error for bad timezone")
	}
}

func TestUpdateStoreDeactivationEvictsCache(t *testing.T) {
	rawKey := "ddk_test-key"
	store := baseStore(t, rawKey)
	repo := &stubStoreRepo{store: store}
	cache := newStubCache()
	svc, err := NewService(repo, cache, testKeyConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.AuthenticateAPIKey(context.Background(), store.ID, rawKey); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if len(cache.data) == 0 {
		t.Fatal("expected verified key cached")
	}

	active := false
	if _, err := svc.Update(context.Background(), store.ID, UpdateStoreInput{Active: &active}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(cache.data) != 0 {
		t.Fatal("expected cache evicted on deactivation")
	}
}

func TestAuthenticateAPIKey(t *testing.T) {
	rawKey := "ddk_auth-key"
	store := baseStore(t, rawKey)
	repo := &stubStoreRepo{store: store}
	svc, err := NewService(repo, newStubCache(), testKeyConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if err := svc.AuthenticateAPIKey(context.Background(), store.ID, rawKey); err != nil {
		t.Fatalf("expected valid key to authenticate: %v", err)
	}
	// second call should hit the cache path
	if err := svc.AuthenticateAPIKey(context.Background(), store.ID, rawKey); err != nil {
		t.Fatalf("cached authenticate: %v", err)
	}

	err = svc.AuthenticateAPIKey(context.Background(), store.ID, "ddk_wrong")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	err = svc.AuthenticateAPIKey(context.Background(), uuid.New(), rawKey)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized for unknown store, got %v", err)
	}
}

func TestAuthenticateAPIKeyInactiveStore(t *testing.T) {
	rawKey := "ddk_inactive"
	store := baseStore(t, rawKey)
	store.Active = false
	svc, err := NewService(&stubStoreRepo{store: store}, nil, testKeyConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	authErr := svc.AuthenticateAPIKey(context.Background(), store.ID, rawKey)
	if typed := pkgerrors.As(authErr); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", authErr)
	}
}

func TestRotateAPIKeyReplacesHash(t *testing.T) {
	rawKey := "ddk_old-key"
	store := baseStore(t, rawKey)
	oldHash := store.APIKeyHash
	repo := &stubStoreRepo{store: store}
	svc, err := NewService(repo, nil, testKeyConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	newKey, err := svc.RotateAPIKey(context.Background(), store.ID)
	if err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if newKey == rawKey {
		t.Fatal("expected fresh key")
	}
	if repo.updated == nil || repo.updated.APIKeyHash == oldHash {
		t.Fatal("expected hash replaced")
	}

	if err := svc.AuthenticateAPIKey(context.Background(), store.ID, newKey); err != nil {
		t.Fatalf("new key should authenticate: %v", err)
	}
	authErr := svc.AuthenticateAPIKey(context.Background(), store.ID, rawKey)
	if typed := pkgerrors.As(authErr); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("old key should fail, got %v", authErr)
	}
}

func TestGetByIDErrors(t *testing.T) {
	svc, err := NewService(&stubStoreRepo{err: errors.New("boom")}, nil, testKeyConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, gotErr := svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", gotErr)
	}

	svc, err = NewService(&stubStoreRepo{}, nil, testKeyConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, gotErr = svc.GetByID(context.Background(), uuid.New())
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", gotErr)
	}
}
