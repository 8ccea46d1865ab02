package models

import (
	"time"

	"github.com/google/uuid"
)

// Store represents a storefront tenant. Its timezone anchors every
// cutoff and lead-time computation for the store's schedules.
type Store struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string    `gorm:"column:name;not null"`
	Timezone   string    `gorm:"column:timezone;not null;default:'UTC'"`
	APIKeyHash string    `gorm:"column:api_key_hash;not null"`
	Active     bool      `gorm:"column:active;not null;default:true"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
