package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dispatchday/dispatchday-backend/internal/checkout"
	"github.com/dispatchday/dispatchday-backend/internal/deliveries"
	"github.com/dispatchday/dispatchday-backend/internal/fields"
	"github.com/dispatchday/dispatchday-backend/internal/notifications"
	"github.com/dispatchday/dispatchday-backend/internal/schedules"
	"github.com/dispatchday/dispatchday-backend/internal/stores"
	pkgAuth "github.com/dispatchday/dispatchday-backend/pkg/auth"
	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/config"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
	"github.com/dispatchday/dispatchday-backend/pkg/redis"
)

type stubStoreService struct {
	apiKeyErr error
}

func (stubStoreService) Create(ctx context.Context, input stores.CreateStoreInput) (*stores.StoreDTO, string, error) {
	return &stores.StoreDTO{ID: uuid.New(), Name: input.Name}, "dd_live_stub", nil
}

func (stubStoreService) GetByID(ctx context.Context, id uuid.UUID) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{ID: id, Name: "Stub Store", Active: true}, nil
}

func (stubStoreService) List(ctx context.Context) ([]stores.StoreDTO, error) {
	return []stores.StoreDTO{}, nil
}

func (stubStoreService) Update(ctx context.Context, id uuid.UUID, input stores.UpdateStoreInput) (*stores.StoreDTO, error) {
	return &stores.StoreDTO{ID: id}, nil
}

func (stubStoreService) RotateAPIKey(ctx context.Context, id uuid.UUID) (string, error) {
	return "dd_live_rotated", nil
}

func (s stubStoreService) AuthenticateAPIKey(ctx context.Context, storeID uuid.UUID, key string) error {
	return s.apiKeyErr
}

type stubScheduleService struct{}

func (stubScheduleService) Get(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*schedules.ScheduleDTO, error) {
	return &schedules.ScheduleDTO{}, nil
}

func (stubScheduleService) Upsert(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod, input schedules.UpsertScheduleInput) (*schedules.ScheduleDTO, error) {
	return &schedules.ScheduleDTO{}, nil
}

type stubFieldService struct{}

func (stubFieldService) List(ctx context.Context, storeID uuid.UUID) ([]fields.FieldDTO, error) {
	return []fields.FieldDTO{}, nil
}

func (stubFieldService) Create(ctx context.Context, storeID uuid.UUID, input fields.CreateFieldInput) (*fields.FieldDTO, error) {
	return &fields.FieldDTO{}, nil
}

func (stubFieldService) Update(ctx context.Context, storeID, fieldID uuid.UUID, input fields.UpdateFieldInput) (*fields.FieldDTO, error) {
	return &fields.FieldDTO{}, nil
}

func (stubFieldService) Delete(ctx context.Context, storeID, fieldID uuid.UUID) error {
	return nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) ResolveFields(ctx context.Context, storeID uuid.UUID, cart checkout.CartSnapshot) (*checkout.FieldsResult, error) {
	return &checkout.FieldsResult{Fields: []fields.FieldDTO{}}, nil
}

func (stubCheckoutService) ResolveDates(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*checkout.DatesResult, error) {
	return &checkout.DatesResult{
		Method:        method,
		EligibleDates: []availability.Date{availability.NewDate(2025, time.March, 12)},
	}, nil
}

func (stubCheckoutService) ValidateSubmission(ctx context.Context, storeID uuid.UUID, input checkout.SubmissionInput) error {
	return nil
}

type stubDeliveryService struct{}

func (stubDeliveryService) Create(ctx context.Context, storeID uuid.UUID, input deliveries.CreateDeliveryInput) (*deliveries.DeliveryDTO, error) {
	return &deliveries.DeliveryDTO{ID: uuid.New(), StoreID: storeID}, nil
}

func (stubDeliveryService) Get(ctx context.Context, id uuid.UUID) (*deliveries.DeliveryDTO, error) {
	return &deliveries.DeliveryDTO{ID: id}, nil
}

func (stubDeliveryService) List(ctx context.Context, params deliveries.ListParams) (*deliveries.ListResult, error) {
	return &deliveries.ListResult{Items: []deliveries.DeliveryDTO{}}, nil
}

func (stubDeliveryService) Calendar(ctx context.Context, storeID uuid.UUID, from, to availability.Date) ([]deliveries.CalendarDay, error) {
	return []deliveries.CalendarDay{}, nil
}

func (stubDeliveryService) Summary(ctx context.Context, storeID uuid.UUID) (*deliveries.SummaryResult, error) {
	return &deliveries.SummaryResult{}, nil
}

func (stubDeliveryService) UpdateStatus(ctx context.Context, id uuid.UUID, input deliveries.UpdateStatusInput) (*deliveries.DeliveryDTO, error) {
	return &deliveries.DeliveryDTO{ID: id, Status: input.Status}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) Notify(ctx context.Context, storeID uuid.UUID, ntype enums.NotificationType, title, message string, link *string) error {
	return nil
}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, storeID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, storeID uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "dispatchday-test",
			ExpirationMinutes: 15,
		},
	}
}

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubStoreService{},
		stubScheduleService{},
		stubFieldService{},
		stubCheckoutService{},
		stubDeliveryService{},
		stubNotificationsService{},
	)
}

func mintToken(t *testing.T, cfg *config.Config, role enums.ActorRole, storeIDs ...uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Role:     role,
		StoreIDs: storeIDs,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get("X-DD-Env") != "test" {
		t.Fatalf("expected env header, got %q", rec.Header().Get("X-DD-Env"))
	}
}

func TestStorefrontRequiresAPIKey(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/dates", strings.NewReader(`{"method":"delivery"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestStorefrontCheckoutDates(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/dates", strings.NewReader(`{"method":"delivery"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-DD-Store-Id", uuid.NewString())
	req.Header.Set("X-DD-API-Key", "dd_live_stub")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "2025-03-12") {
		t.Fatalf("expected eligible date in body, got %s", rec.Body.String())
	}
}

func TestAdminRequiresJWT(t *testing.T) {
	router := newTestRouter(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stores/"+uuid.NewString(), nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestAdminStoreScope(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	owned := uuid.New()
	foreign := uuid.New()
	token := mintToken(t, cfg, enums.ActorRoleMerchant, owned)

	blocked := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stores/"+foreign.String(), nil)
	blocked.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, blocked)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign store got %d", rec.Code)
	}

	allowed := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stores/"+owned.String(), nil)
	allowed.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, allowed)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for owned store got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestListStoresRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	merchant := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stores", nil)
	merchant.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorRoleMerchant, uuid.New()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, merchant)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for merchant got %d", rec.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stores", nil)
	admin.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorRoleAdmin))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, admin)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAdminDeliverySummary(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	storeID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stores/"+storeID.String()+"/deliveries/summary", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, cfg, enums.ActorRoleMerchant, storeID))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
}
