package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/dispatchday/dispatchday-backend/pkg/enums"
)

// DeliverySchedule holds a store's booking window for one fulfillment method.
// Weekdays use the time.Weekday numbering (0 = Sunday); CutoffTime is an
// "HH:MM" wall-clock string interpreted in the store's timezone.
type DeliverySchedule struct {
	ID               uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID          uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_schedules_store_method,priority:1"`
	Method           enums.FulfillmentMethod `gorm:"column:method;type:fulfillment_method;not null;uniqueIndex:idx_schedules_store_method,priority:2"`
	MinLeadDays      int                     `gorm:"column:min_lead_days;not null;default:0"`
	MaxFutureDays    int                     `gorm:"column:max_future_days;not null;default:30"`
	DisabledWeekdays pq.Int64Array           `gorm:"column:disabled_weekdays;type:smallint[]"`
	CutoffTime       *string                 `gorm:"column:cutoff_time"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`

	BlockedDates []ScheduleBlockedDate `gorm:"foreignKey:ScheduleID"`
	TimeWindows  []ScheduleTimeWindow  `gorm:"foreignKey:ScheduleID"`
}

// ScheduleBlockedDate marks a specific date as unbookable.
type ScheduleBlockedDate struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ScheduleID uuid.UUID `gorm:"type:uuid;not null;index"`
	Date       time.Time `gorm:"column:date;type:date;not null"`
	Reason     *string   `gorm:"column:reason"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ScheduleTimeWindow is a bookable slot within a day, offsets in minutes
// from midnight. Fee is an optional surcharge for the slot.
type ScheduleTimeWindow struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ScheduleID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Label       string          `gorm:"column:label;not null"`
	StartMinute int             `gorm:"column:start_minute;not null"`
	EndMinute   int             `gorm:"column:end_minute;not null"`
	Fee         decimal.Decimal `gorm:"column:fee;type:numeric(10,2);not null;default:0"`
	Position    int             `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
