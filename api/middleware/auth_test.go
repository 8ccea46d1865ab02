package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgAuth "github.com/dispatchday/dispatchday-backend/pkg/auth"
	"github.com/dispatchday/dispatchday-backend/pkg/config"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
)

func middlewareJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "middleware-secret",
		Issuer:            "dispatchday-test",
		ExpirationMinutes: 15,
	}
}

func contextWithClaims(ctx context.Context, claims *pkgAuth.AccessTokenClaims) context.Context {
	return context.WithValue(ctx, ctxClaims, claims)
}

func contextWithRouteContext(ctx context.Context, rc *chi.Context) context.Context {
	return context.WithValue(ctx, chi.RouteCtxKey, rc)
}

func TestAuthSeedsContext(t *testing.T) {
	cfg := middlewareJWTConfig()
	userID := uuid.New()
	storeID := uuid.New()

	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   userID,
		Role:     enums.ActorRoleMerchant,
		StoreIDs: []uuid.UUID{storeID},
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	var gotUserID, gotRole string
	var gotClaims *pkgAuth.AccessTokenClaims
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotClaims = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stores", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotUserID != userID.String() {
		t.Fatalf("user id = %q, want %q", gotUserID, userID)
	}
	if gotRole != string(enums.ActorRoleMerchant) {
		t.Fatalf("role = %q, want merchant", gotRole)
	}
	if gotClaims == nil || !gotClaims.CanAccessStore(storeID) {
		t.Fatal("expected claims with store access in context")
	}
}

func TestAuthRejectsMissingAndBadTokens(t *testing.T) {
	cfg := middlewareJWTConfig()
	handler := Auth(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stores", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/stores", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401 got %d", resp.Code)
	}
}

func TestRequireStoreAccess(t *testing.T) {
	owned := uuid.New()
	foreign := uuid.New()
	claims := &pkgAuth.AccessTokenClaims{
		UserID:   uuid.New(),
		Role:     enums.ActorRoleMerchant,
		StoreIDs: []uuid.UUID{owned},
	}

	var seenStoreID string
	handler := RequireStoreAccess(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenStoreID = StoreIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	serve := func(storeID uuid.UUID) *httptest.ResponseRecorder {
		rc := chi.NewRouteContext()
		rc.URLParams.Add("storeId", storeID.String())
		req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/stores/"+storeID.String()+"/fields", nil)
		ctx := req.Context()
		ctx = contextWithClaims(ctx, claims)
		req = req.WithContext(contextWithRouteContext(ctx, rc))
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp
	}

	if resp := serve(owned); resp.Code != http.StatusOK {
		t.Fatalf("owned store: expected 200 got %d", resp.Code)
	}
	if seenStoreID != owned.String() {
		t.Fatalf("store id = %q, want %q", seenStoreID, owned)
	}
	if resp := serve(foreign); resp.Code != http.StatusForbidden {
		t.Fatalf("foreign store: expected 403 got %d", resp.Code)
	}
}
