package fields

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	dbtypes "github.com/dispatchday/dispatchday-backend/pkg/db/types"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
)

// FieldDTO is the API shape of a merchant-defined checkout field.
type FieldDTO struct {
	ID                 uuid.UUID                `json:"id"`
	StoreID            uuid.UUID                `json:"store_id"`
	Key                string                   `json:"key"`
	Label              string                   `json:"label"`
	Type               enums.FieldType          `json:"type"`
	Required           bool                     `json:"required"`
	Position           int                      `json:"position"`
	Placeholder        *string                  `json:"placeholder,omitempty"`
	Options            []string                 `json:"options,omitempty"`
	VisibilityMode     enums.VisibilityMode     `json:"visibility_mode"`
	VisibilityPolarity enums.VisibilityPolarity `json:"visibility_polarity"`
	VisibilityTargets  []uuid.UUID              `json:"visibility_targets,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// CreateFieldInput holds creation-time data for a new field.
type CreateFieldInput struct {
	Key                string
	Label              string
	Type               enums.FieldType
	Required           bool
	Position           int
	Placeholder        *string
	Options            []string
	VisibilityMode     enums.VisibilityMode
	VisibilityPolarity enums.VisibilityPolarity
	VisibilityTargets  []uuid.UUID
}

// UpdateFieldInput captures the patchable field attributes. Nil means leave
// unchanged; key and type are immutable after creation.
type UpdateFieldInput struct {
	Label              *string
	Required           *bool
	Position           *int
	Placeholder        *string
	Options            *[]string
	VisibilityMode     *enums.VisibilityMode
	VisibilityPolarity *enums.VisibilityPolarity
	VisibilityTargets  *[]uuid.UUID
}

// FromModel maps the persisted field into a DTO.
func FromModel(m *models.CheckoutField) *FieldDTO {
	if m == nil {
		return nil
	}
	return &FieldDTO{
		ID:                 m.ID,
		StoreID:            m.StoreID,
		Key:                m.Key,
		Label:              m.Label,
		Type:               m.Type,
		Required:           m.Required,
		Position:           m.Position,
		Placeholder:        m.Placeholder,
		Options:            append([]string(nil), m.Options...),
		VisibilityMode:     m.VisibilityMode,
		VisibilityPolarity: m.VisibilityPolarity,
		VisibilityTargets:  append([]uuid.UUID(nil), m.VisibilityTargets...),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (i CreateFieldInput) toModel(storeID uuid.UUID) *models.CheckoutField {
	return &models.CheckoutField{
		StoreID:            storeID,
		Key:                i.Key,
		Label:              i.Label,
		Type:               i.Type,
		Required:           i.Required,
		Position:           i.Position,
		Placeholder:        i.Placeholder,
		Options:            pq.StringArray(i.Options),
		VisibilityMode:     i.VisibilityMode,
		VisibilityPolarity: i.VisibilityPolarity,
		VisibilityTargets:  dbtypes.UUIDArray(i.VisibilityTargets),
	}
}
