package controllers

import (
	"net/http"

	"github.com/dispatchday/dispatchday-backend/api/responses"
	"github.com/dispatchday/dispatchday-backend/api/validators"
	"github.com/dispatchday/dispatchday-backend/internal/stores"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
)

type createStoreBody struct {
	Name     string `json:"name" validate:"required,min=2,max=128"`
	Timezone string `json:"timezone" validate:"omitempty,max=64"`
}

type updateStoreBody struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=128"`
	Timezone *string `json:"timezone,omitempty" validate:"omitempty,max=64"`
	Active   *bool   `json:"active,omitempty"`
}

type storeWithKeyResponse struct {
	Store  *stores.StoreDTO `json:"store"`
	APIKey string           `json:"api_key"`
}

// CreateStore registers a new store and returns its API key. The key is shown
// only once; afterwards it can only be rotated.
func CreateStore(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createStoreBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, rawKey, err := svc.Create(r.Context(), stores.CreateStoreInput{
			Name:     validators.SanitizeString(body.Name, 128),
			Timezone: body.Timezone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, storeWithKeyResponse{Store: dto, APIKey: rawKey})
	}
}

// ListStores returns every store the operator can see.
func ListStores(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": result})
	}
}

// GetStore returns one store.
func GetStore(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.GetByID(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// UpdateStore patches store settings.
func UpdateStore(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateStoreBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Update(r.Context(), storeID, stores.UpdateStoreInput{
			Name:     body.Name,
			Timezone: body.Timezone,
			Active:   body.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// RotateStoreAPIKey replaces the store's API key and returns the new one.
func RotateStoreAPIKey(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rawKey, err := svc.RotateAPIKey(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"api_key": rawKey})
	}
}
