package checkout

import (
	"github.com/google/uuid"

	"github.com/dispatchday/dispatchday-backend/internal/fields"
	"github.com/dispatchday/dispatchday-backend/internal/schedules"
	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	"github.com/dispatchday/dispatchday-backend/pkg/visibility"
)

// CartSnapshot carries the cart contents the storefront sends along so
// visibility rules can be evaluated server-side.
type CartSnapshot struct {
	ProductIDs  []uuid.UUID `json:"product_ids"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

func (c CartSnapshot) toEngine() visibility.CartSnapshot {
	return visibility.CartSnapshot{
		ProductIDs:  c.ProductIDs,
		CategoryIDs: c.CategoryIDs,
	}
}

// DatesResult is the storefront's booking window for one method.
type DatesResult struct {
	Method        enums.FulfillmentMethod   `json:"method"`
	EligibleDates []availability.Date       `json:"eligible_dates"`
	Earliest      *availability.Date        `json:"earliest,omitempty"`
	PastCutoff    bool                      `json:"past_cutoff"`
	TimeWindows   []schedules.TimeWindowDTO `json:"time_windows"`
}

// FieldsResult lists the fields visible for the given cart in display order.
type FieldsResult struct {
	Fields []fields.FieldDTO `json:"fields"`
}

// SubmissionInput is a checkout submission to validate before order placement.
type SubmissionInput struct {
	Method        enums.FulfillmentMethod
	Cart          CartSnapshot
	ScheduledDate availability.Date
	TimeWindowID  *uuid.UUID
	FieldValues   map[string]string
}
