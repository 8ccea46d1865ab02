package schedules

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
)

// ScheduleDTO is the API shape of one store's booking window.
type ScheduleDTO struct {
	ID               uuid.UUID               `json:"id"`
	StoreID          uuid.UUID               `json:"store_id"`
	Method           enums.FulfillmentMethod `json:"method"`
	MinLeadDays      int                     `json:"min_lead_days"`
	MaxFutureDays    int                     `json:"max_future_days"`
	DisabledWeekdays []int                   `json:"disabled_weekdays"`
	CutoffTime       *string                 `json:"cutoff_time,omitempty"`
	BlockedDates     []BlockedDateDTO        `json:"blocked_dates"`
	TimeWindows      []TimeWindowDTO         `json:"time_windows"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// BlockedDateDTO marks one unbookable date.
type BlockedDateDTO struct {
	ID     uuid.UUID         `json:"id"`
	Date   availability.Date `json:"date"`
	Reason *string           `json:"reason,omitempty"`
}

// TimeWindowDTO is a bookable slot within a day.
type TimeWindowDTO struct {
	ID          uuid.UUID       `json:"id"`
	Label       string          `json:"label"`
	StartMinute int             `json:"start_minute"`
	EndMinute   int             `json:"end_minute"`
	Fee         decimal.Decimal `json:"fee"`
	Position    int             `json:"position"`
}

// UpsertScheduleInput replaces a store's schedule for one method wholesale,
// blocked dates and time windows included.
type UpsertScheduleInput struct {
	MinLeadDays      int
	MaxFutureDays    int
	DisabledWeekdays []int
	CutoffTime       *string
	BlockedDates     []BlockedDateInput
	TimeWindows      []TimeWindowInput
}

type BlockedDateInput struct {
	Date   availability.Date
	Reason *string
}

type TimeWindowInput struct {
	Label       string
	StartMinute int
	EndMinute   int
	Fee         decimal.Decimal
}

// FromModel maps the persisted schedule into a DTO.
func FromModel(m *models.DeliverySchedule) *ScheduleDTO {
	if m == nil {
		return nil
	}

	dto := &ScheduleDTO{
		ID:               m.ID,
		StoreID:          m.StoreID,
		Method:           m.Method,
		MinLeadDays:      m.MinLeadDays,
		MaxFutureDays:    m.MaxFutureDays,
		DisabledWeekdays: make([]int, 0, len(m.DisabledWeekdays)),
		CutoffTime:       m.CutoffTime,
		BlockedDates:     make([]BlockedDateDTO, 0, len(m.BlockedDates)),
		TimeWindows:      make([]TimeWindowDTO, 0, len(m.TimeWindows)),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}

	for _, weekday := range m.DisabledWeekdays {
		dto.DisabledWeekdays = append(dto.DisabledWeekdays, int(weekday))
	}
	for _, blocked := range m.BlockedDates {
		dto.BlockedDates = append(dto.BlockedDates, BlockedDateDTO{
			ID:     blocked.ID,
			Date:   availability.DateOf(blocked.Date),
			Reason: blocked.Reason,
		})
	}
	for _, window := range m.TimeWindows {
		dto.TimeWindows = append(dto.TimeWindows, TimeWindowDTO{
			ID:          window.ID,
			Label:       window.Label,
			StartMinute: window.StartMinute,
			EndMinute:   window.EndMinute,
			Fee:         window.Fee,
			Position:    window.Position,
		})
	}

	return dto
}

// WindowConfig converts a persisted schedule into the pure availability config.
func WindowConfig(m *models.DeliverySchedule) availability.WindowConfig {
	if m == nil {
		return availability.WindowConfig{}
	}

	cfg := availability.WindowConfig{
		MinLeadDays:   m.MinLeadDays,
		MaxFutureDays: m.MaxFutureDays,
	}
	for _, weekday := range m.DisabledWeekdays {
		cfg.DisabledWeekdays = append(cfg.DisabledWeekdays, time.Weekday(weekday))
	}
	for _, blocked := range m.BlockedDates {
		cfg.BlockedDates = append(cfg.BlockedDates, availability.DateOf(blocked.Date))
	}
	if m.CutoffTime != nil {
		if cutoff, err := availability.ParseTimeOfDay(*m.CutoffTime); err == nil {
			cfg.Cutoff = &cutoff
		}
	}
	return cfg
}

func (i UpsertScheduleInput) toModel(storeID uuid.UUID, method enums.FulfillmentMethod) *models.DeliverySchedule {
	schedule := &models.DeliverySchedule{
		StoreID:          storeID,
		Method:           method,
		MinLeadDays:      i.MinLeadDays,
		MaxFutureDays:    i.MaxFutureDays,
		DisabledWeekdays: make(pq.Int64Array, 0, len(i.DisabledWeekdays)),
		CutoffTime:       i.CutoffTime,
	}
	for _, weekday := range i.DisabledWeekdays {
		schedule.DisabledWeekdays = append(schedule.DisabledWeekdays, int64(weekday))
	}
	for _, blocked := range i.BlockedDates {
		schedule.BlockedDates = append(schedule.BlockedDates, models.ScheduleBlockedDate{
			Date:   blocked.Date.Time(),
			Reason: blocked.Reason,
		})
	}
	for position, window := range i.TimeWindows {
		schedule.TimeWindows = append(schedule.TimeWindows, models.ScheduleTimeWindow{
			Label:       window.Label,
			StartMinute: window.StartMinute,
			EndMinute:   window.EndMinute,
			Fee:         window.Fee,
			Position:    position,
		})
	}
	return schedule
}
