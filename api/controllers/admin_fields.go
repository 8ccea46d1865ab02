package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dispatchday/dispatchday-backend/api/responses"
	"github.com/dispatchday/dispatchday-backend/api/validators"
	"github.com/dispatchday/dispatchday-backend/internal/fields"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
)

type createFieldBody struct {
	Key                string      `json:"key" validate:"required,max=64"`
	Label              string      `json:"label" validate:"required,max=128"`
	Type               string      `json:"type" validate:"required"`
	Required           bool        `json:"required"`
	Position           int         `json:"position" validate:"min=0"`
	Placeholder        *string     `json:"placeholder,omitempty" validate:"omitempty,max=256"`
	Options            []string    `json:"options,omitempty" validate:"max=50"`
	VisibilityMode     string      `json:"visibility_mode" validate:"required"`
	VisibilityPolarity string      `json:"visibility_polarity" validate:"required"`
	VisibilityTargets  []uuid.UUID `json:"visibility_targets,omitempty" validate:"max=100"`
}

type updateFieldBody struct {
	Label              *string      `json:"label,omitempty" validate:"omitempty,max=128"`
	Required           *bool        `json:"required,omitempty"`
	Position           *int         `json:"position,omitempty" validate:"omitempty,min=0"`
	Placeholder        *string      `json:"placeholder,omitempty" validate:"omitempty,max=256"`
	Options            *[]string    `json:"options,omitempty" validate:"omitempty,max=50"`
	VisibilityMode     *string      `json:"visibility_mode,omitempty"`
	VisibilityPolarity *string      `json:"visibility_polarity,omitempty"`
	VisibilityTargets  *[]uuid.UUID `json:"visibility_targets,omitempty" validate:"omitempty,max=100"`
}

func fieldIDFromRequest(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "fieldId"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid field id")
	}
	return id, nil
}

// ListFields returns the store's checkout fields in display order.
func ListFields(svc fields.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": result})
	}
}

// CreateField adds a checkout field to the store.
func CreateField(svc fields.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createFieldBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fieldType, err := enums.ParseFieldType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid field type"))
			return
		}

		dto, err := svc.Create(r.Context(), storeID, fields.CreateFieldInput{
			Key:                body.Key,
			Label:              validators.SanitizeString(body.Label, 128),
			Type:               fieldType,
			Required:           body.Required,
			Position:           body.Position,
			Placeholder:        body.Placeholder,
			Options:            body.Options,
			VisibilityMode:     enums.VisibilityMode(body.VisibilityMode),
			VisibilityPolarity: enums.VisibilityPolarity(body.VisibilityPolarity),
			VisibilityTargets:  body.VisibilityTargets,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// UpdateField patches a checkout field. Key and type are immutable.
func UpdateField(svc fields.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fieldID, err := fieldIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateFieldBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := fields.UpdateFieldInput{
			Label:             body.Label,
			Required:          body.Required,
			Position:          body.Position,
			Placeholder:       body.Placeholder,
			Options:           body.Options,
			VisibilityTargets: body.VisibilityTargets,
		}
		if body.VisibilityMode != nil {
			mode := enums.VisibilityMode(*body.VisibilityMode)
			input.VisibilityMode = &mode
		}
		if body.VisibilityPolarity != nil {
			polarity := enums.VisibilityPolarity(*body.VisibilityPolarity)
			input.VisibilityPolarity = &polarity
		}

		dto, err := svc.Update(r.Context(), storeID, fieldID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// DeleteField removes a checkout field.
func DeleteField(svc fields.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		fieldID, err := fieldIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), storeID, fieldID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}
