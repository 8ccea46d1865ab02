package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/dispatchday/dispatchday-backend/api/responses"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
)

const (
	headerStoreID = "X-DD-Store-Id"
	headerAPIKey  = "X-DD-API-Key"
)

// StoreAuthenticator verifies a storefront API key against a store's stored hash.
type StoreAuthenticator interface {
	AuthenticateAPIKey(ctx context.Context, storeID uuid.UUID, key string) error
}

// APIKeyAuth authenticates storefront requests via the store id and API key
// headers, then scopes the request context to that store.
func APIKeyAuth(authenticator StoreAuthenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if authenticator == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store authenticator unavailable"))
				return
			}

			storeID, err := uuid.Parse(strings.TrimSpace(r.Header.Get(headerStoreID)))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing or invalid store id"))
				return
			}

			key := strings.TrimSpace(r.Header.Get(headerAPIKey))
			if key == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing api key"))
				return
			}

			if err := authenticator.AuthenticateAPIKey(ctx, storeID, key); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = context.WithValue(ctx, ctxStoreID, storeID.String())
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{"store_id": storeID.String()})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
