package deliveries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dispatchday/dispatchday-backend/internal/checkout"
	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
)

// DeliveryDTO is the API shape of one scheduled delivery.
type DeliveryDTO struct {
	ID            uuid.UUID               `json:"id"`
	StoreID       uuid.UUID               `json:"store_id"`
	OrderRef      string                  `json:"order_ref"`
	RecipientName string                  `json:"recipient_name"`
	Method        enums.FulfillmentMethod `json:"method"`
	Status        enums.DeliveryStatus    `json:"status"`
	ScheduledDate availability.Date       `json:"scheduled_date"`
	TimeWindow    *TimeWindowDTO          `json:"time_window,omitempty"`
	Instructions  *string                 `json:"instructions,omitempty"`
	FieldValues   map[string]string       `json:"field_values,omitempty"`
	StatusNote    *string                 `json:"status_note,omitempty"`
	DeliveredAt   *time.Time              `json:"delivered_at,omitempty"`
	CanceledAt    *time.Time              `json:"canceled_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// TimeWindowDTO is the slot the delivery was booked into.
type TimeWindowDTO struct {
	ID          uuid.UUID       `json:"id"`
	Label       string          `json:"label"`
	StartMinute int             `json:"start_minute"`
	EndMinute   int             `json:"end_minute"`
	Fee         decimal.Decimal `json:"fee"`
}

// CreateDeliveryInput is the storefront payload recording a scheduled delivery.
type CreateDeliveryInput struct {
	OrderRef      string
	RecipientName string
	Method        enums.FulfillmentMethod
	ScheduledDate availability.Date
	TimeWindowID  *uuid.UUID
	Instructions  *string
	FieldValues   map[string]string
	Cart          checkout.CartSnapshot
}

// ListParams filters the admin delivery list.
type ListParams struct {
	StoreID uuid.UUID
	Status  *enums.DeliveryStatus
	Method  *enums.FulfillmentMethod
	From    *availability.Date
	To      *availability.Date
	Limit   int
	Cursor  string
}

// ListResult wraps returned deliveries and the cursor for the next page.
type ListResult struct {
	Items  []DeliveryDTO `json:"items"`
	Cursor string        `json:"cursor"`
}

// CalendarDay groups the deliveries booked on one date.
type CalendarDay struct {
	Date       availability.Date `json:"date"`
	Deliveries []DeliveryDTO     `json:"deliveries"`
}

// SummaryResult feeds the admin dashboard widget.
type SummaryResult struct {
	Today    int64                          `json:"today"`
	Tomorrow int64                          `json:"tomorrow"`
	Upcoming int64                          `json:"upcoming"`
	ByStatus map[enums.DeliveryStatus]int64 `json:"by_status"`
}

// UpdateStatusInput is an admin-driven status transition.
type UpdateStatusInput struct {
	Status enums.DeliveryStatus
	Note   *string
}

// FromModel maps the persisted delivery into a DTO.
func FromModel(m *models.Delivery) *DeliveryDTO {
	if m == nil {
		return nil
	}

	dto := &DeliveryDTO{
		ID:            m.ID,
		StoreID:       m.StoreID,
		OrderRef:      m.OrderRef,
		RecipientName: m.RecipientName,
		Method:        m.Method,
		Status:        m.Status,
		ScheduledDate: availability.DateOf(m.ScheduledDate),
		Instructions:  m.Instructions,
		FieldValues:   m.FieldValues,
		StatusNote:    m.StatusNote,
		DeliveredAt:   m.DeliveredAt,
		CanceledAt:    m.CanceledAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
	if m.TimeWindow != nil {
		dto.TimeWindow = &TimeWindowDTO{
			ID:          m.TimeWindow.ID,
			Label:       m.TimeWindow.Label,
			StartMinute: m.TimeWindow.StartMinute,
			EndMinute:   m.TimeWindow.EndMinute,
			Fee:         m.TimeWindow.Fee,
		}
	}
	return dto
}
