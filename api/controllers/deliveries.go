package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dispatchday/dispatchday-backend/api/responses"
	"github.com/dispatchday/dispatchday-backend/api/validators"
	"github.com/dispatchday/dispatchday-backend/internal/checkout"
	"github.com/dispatchday/dispatchday-backend/internal/deliveries"
	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
)

type createDeliveryBody struct {
	OrderRef      string                `json:"order_ref" validate:"required,max=64"`
	RecipientName string                `json:"recipient_name" validate:"required,max=128"`
	Method        string                `json:"method" validate:"required,oneof=delivery pickup"`
	ScheduledDate string                `json:"scheduled_date" validate:"required"`
	TimeWindowID  *uuid.UUID            `json:"time_window_id,omitempty"`
	Instructions  *string               `json:"instructions,omitempty"`
	Cart          checkout.CartSnapshot `json:"cart"`
	FieldValues   map[string]string     `json:"field_values"`
}

// CreateDelivery books a delivery for a placed storefront order.
func CreateDelivery(svc deliveries.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createDeliveryBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParseFulfillmentMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment method"))
			return
		}
		date, err := availability.ParseDate(body.ScheduledDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scheduled date"))
			return
		}

		dto, err := svc.Create(r.Context(), storeID, deliveries.CreateDeliveryInput{
			OrderRef:      validators.SanitizeString(body.OrderRef, 64),
			RecipientName: validators.SanitizeString(body.RecipientName, 128),
			Method:        method,
			ScheduledDate: date,
			TimeWindowID:  body.TimeWindowID,
			Instructions:  body.Instructions,
			Cart:          body.Cart,
			FieldValues:   body.FieldValues,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}
