package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dispatchday/dispatchday-backend/api/middleware"
	"github.com/dispatchday/dispatchday-backend/api/responses"
	"github.com/dispatchday/dispatchday-backend/api/validators"
	"github.com/dispatchday/dispatchday-backend/internal/checkout"
	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
)

type checkoutFieldsBody struct {
	Cart checkout.CartSnapshot `json:"cart"`
}

type checkoutDatesBody struct {
	Method string `json:"method" validate:"required,oneof=delivery pickup"`
}

type checkoutValidateBody struct {
	Method        string                `json:"method" validate:"required,oneof=delivery pickup"`
	Cart          checkout.CartSnapshot `json:"cart"`
	ScheduledDate string                `json:"scheduled_date" validate:"required"`
	TimeWindowID  *uuid.UUID            `json:"time_window_id,omitempty"`
	FieldValues   map[string]string     `json:"field_values"`
}

func storeIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.StoreIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "store context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid store id")
	}
	return id, nil
}

// CheckoutFields resolves which checkout fields the storefront should render
// for the submitted cart.
func CheckoutFields(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutFieldsBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ResolveFields(r.Context(), storeID, body.Cart)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CheckoutDates returns the bookable dates and time windows for one method.
func CheckoutDates(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutDatesBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParseFulfillmentMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment method"))
			return
		}

		result, err := svc.ResolveDates(r.Context(), storeID, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CheckoutValidate verifies a full checkout submission without persisting it.
func CheckoutValidate(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutValidateBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ValidateSubmission(r.Context(), storeID, input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"valid": true})
	}
}

func (b checkoutValidateBody) toInput() (checkout.SubmissionInput, error) {
	method, err := enums.ParseFulfillmentMethod(b.Method)
	if err != nil {
		return checkout.SubmissionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment method")
	}
	date, err := availability.ParseDate(b.ScheduledDate)
	if err != nil {
		return checkout.SubmissionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid scheduled date")
	}
	return checkout.SubmissionInput{
		Method:        method,
		Cart:          b.Cart,
		ScheduledDate: date,
		TimeWindowID:  b.TimeWindowID,
		FieldValues:   b.FieldValues,
	}, nil
}
