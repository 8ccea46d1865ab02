package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/dispatchday/dispatchday-backend/pkg/db/types"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
)

// Delivery is one scheduled delivery or pickup attached to a placed order.
type Delivery struct {
	ID            uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID       uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_deliveries_store_order,priority:1"`
	OrderRef      string                  `gorm:"column:order_ref;not null;uniqueIndex:idx_deliveries_store_order,priority:2"`
	RecipientName string                  `gorm:"column:recipient_name;not null"`
	Method        enums.FulfillmentMethod `gorm:"column:method;type:fulfillment_method;not null"`
	Status        enums.DeliveryStatus    `gorm:"column:status;type:delivery_status;not null;default:'scheduled'"`
	ScheduledDate time.Time               `gorm:"column:scheduled_date;type:date;not null;index"`
	TimeWindowID  *uuid.UUID              `gorm:"column:time_window_id;type:uuid"`
	Instructions  *string                 `gorm:"column:instructions"`
	FieldValues   dbtypes.FieldValueMap   `gorm:"column:field_values;type:jsonb"`
	StatusNote    *string                 `gorm:"column:status_note"`
	DeliveredAt   *time.Time              `gorm:"column:delivered_at;type:timestamptz"`
	CanceledAt    *time.Time              `gorm:"column:canceled_at;type:timestamptz"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime"`

	TimeWindow *ScheduleTimeWindow `gorm:"foreignKey:TimeWindowID"`
}
