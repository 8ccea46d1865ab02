package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dispatchday/dispatchday-backend/api/responses"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
)

// RequireStoreAccess parses the {storeId} route param, checks the caller's
// claims against it, and scopes the request context to that store. Admins pass
// for any store; merchants only for stores listed in their token.
func RequireStoreAccess(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims := ClaimsFromContext(ctx)
			if claims == nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
				return
			}

			storeID, err := uuid.Parse(chi.URLParam(r, "storeId"))
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id"))
				return
			}

			if !claims.CanAccessStore(storeID) {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store access denied"))
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

// StoreContext rejects requests that reached a store-scoped handler without a
// resolved store.
func StoreContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if StoreIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "store context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
