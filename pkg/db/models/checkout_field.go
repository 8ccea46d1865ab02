package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	dbtypes "github.com/dispatchday/dispatchday-backend/pkg/db/types"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
)

// CheckoutField is a merchant-defined field rendered during checkout.
// Visibility columns mirror the rule evaluated by pkg/visibility.
type CheckoutField struct {
	ID                 uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID            uuid.UUID                `gorm:"type:uuid;not null;uniqueIndex:idx_fields_store_key,priority:1"`
	Key                string                   `gorm:"column:key;not null;uniqueIndex:idx_fields_store_key,priority:2"`
	Label              string                   `gorm:"column:label;not null"`
	Type               enums.FieldType          `gorm:"column:type;type:checkout_field_type;not null"`
	Required           bool                     `gorm:"column:required;not null;default:false"`
	Position           int                      `gorm:"column:position;not null;default:0"`
	Placeholder        *string                  `gorm:"column:placeholder"`
	Options            pq.StringArray           `gorm:"column:options;type:text[]"`
	VisibilityMode     enums.VisibilityMode     `gorm:"column:visibility_mode;type:visibility_mode;not null;default:'always'"`
	VisibilityPolarity enums.VisibilityPolarity `gorm:"column:visibility_polarity;type:visibility_polarity;not null;default:'show_on_match'"`
	VisibilityTargets  dbtypes.UUIDArray        `gorm:"column:visibility_targets;type:uuid[]"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
