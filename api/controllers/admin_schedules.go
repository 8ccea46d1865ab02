package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/dispatchday/dispatchday-backend/api/responses"
	"github.com/dispatchday/dispatchday-backend/api/validators"
	"github.com/dispatchday/dispatchday-backend/internal/schedules"
	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
)

type upsertScheduleBody struct {
	MinLeadDays      int                `json:"min_lead_days" validate:"min=0,max=365"`
	MaxFutureDays    int                `json:"max_future_days" validate:"min=0,max=365"`
	DisabledWeekdays []int              `json:"disabled_weekdays" validate:"max=7"`
	CutoffTime       *string            `json:"cutoff_time,omitempty"`
	BlockedDates     []blockedDateBody  `json:"blocked_dates" validate:"max=366,dive"`
	TimeWindows      []timeWindowBody   `json:"time_windows" validate:"max=24,dive"`
}

type blockedDateBody struct {
	Date   string  `json:"date" validate:"required"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=256"`
}

type timeWindowBody struct {
	Label       string          `json:"label" validate:"required,max=64"`
	StartMinute int             `json:"start_minute" validate:"min=0,max=1439"`
	EndMinute   int             `json:"end_minute" validate:"min=1,max=1440"`
	Fee         decimal.Decimal `json:"fee"`
}

func methodFromRequest(r *http.Request) (enums.FulfillmentMethod, error) {
	method, err := enums.ParseFulfillmentMethod(chi.URLParam(r, "method"))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid fulfillment method")
	}
	return method, nil
}

// GetSchedule returns the store's booking window for one method.
func GetSchedule(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := methodFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Get(r.Context(), storeID, method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

// UpsertSchedule replaces the store's booking window for one method.
func UpsertSchedule(svc schedules.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storeID, err := storeIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := methodFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body upsertScheduleBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.Upsert(r.Context(), storeID, method, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dto)
	}
}

func (b upsertScheduleBody) toInput() (schedules.UpsertScheduleInput, error) {
	input := schedules.UpsertScheduleInput{
		MinLeadDays:      b.MinLeadDays,
		MaxFutureDays:    b.MaxFutureDays,
		DisabledWeekdays: b.DisabledWeekdays,
		CutoffTime:       b.CutoffTime,
	}
	for _, blocked := range b.BlockedDates {
		date, err := availability.ParseDate(blocked.Date)
		if err != nil {
			return schedules.UpsertScheduleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid blocked date")
		}
		input.BlockedDates = append(input.BlockedDates, schedules.BlockedDateInput{Date: date, Reason: blocked.Reason})
	}
	for _, window := range b.TimeWindows {
		input.TimeWindows = append(input.TimeWindows, schedules.TimeWindowInput{
			Label:       window.Label,
			StartMinute: window.StartMinute,
			EndMinute:   window.EndMinute,
			Fee:         window.Fee,
		})
	}
	return input, nil
}
