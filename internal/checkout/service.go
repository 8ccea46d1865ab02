package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchday/dispatchday-backend/internal/fields"
	"github.com/dispatchday/dispatchday-backend/internal/schedules"
	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	pkgcheckout "github.com/dispatchday/dispatchday-backend/pkg/checkout"
	"github.com/dispatchday/dispatchday-backend/pkg/config"
	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/visibility"
)

type scheduleSource interface {
	FindByStoreAndMethod(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*models.DeliverySchedule, error)
}

type fieldSource interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.CheckoutField, error)
}

type storeSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Store, error)
}

// settingsCache is a short-TTL read-through cache for schedule and field
// config; the admin services evict it on writes.
type settingsCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

// Service resolves checkout configuration and validates submissions.
type Service interface {
	ResolveFields(ctx context.Context, storeID uuid.UUID, cart CartSnapshot) (*FieldsResult, error)
	ResolveDates(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*DatesResult, error)
	ValidateSubmission(ctx context.Context, storeID uuid.UUID, input SubmissionInput) error
}

type service struct {
	schedules scheduleSource
	fields    fieldSource
	stores    storeSource
	cache     settingsCache
	cacheTTL  time.Duration
	now       func() time.Time
}

// NewService builds a checkout service.
func NewService(scheduleSrc scheduleSource, fieldSrc fieldSource, storeSrc storeSource, cache settingsCache, cfg config.CheckoutConfig) (Service, error) {
	if scheduleSrc == nil {
		return nil, fmt.Errorf("schedule source required")
	}
	if fieldSrc == nil {
		return nil, fmt.Errorf("field source required")
	}
	if storeSrc == nil {
		return nil, fmt.Errorf("store source required")
	}
	return &service{
		schedules: scheduleSrc,
		fields:    fieldSrc,
		stores:    storeSrc,
		cache:     cache,
		cacheTTL:  cfg.SettingsCacheTTL,
		now:       time.Now,
	}, nil
}

func (s *service) ResolveFields(ctx context.Context, storeID uuid.UUID, cart CartSnapshot) (*FieldsResult, error) {
	visible, err := s.visibleFields(ctx, storeID, cart)
	if err != nil {
		return nil, err
	}

	result := &FieldsResult{Fields: make([]fields.FieldDTO, 0, len(visible))}
	for i := range visible {
		result.Fields = append(result.Fields, *fields.FromModel(&visible[i]))
	}
	return result, nil
}

func (s *service) ResolveDates(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*DatesResult, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment method")
	}

	schedule, err := s.loadSchedule(ctx, storeID, method)
	if err != nil {
		return nil, err
	}
	now, err := s.storeNow(ctx, storeID)
	if err != nil {
		return nil, err
	}

	cfg := schedules.WindowConfig(schedule)
	earliest, pastCutoff, ok := availability.EarliestEligibleDate(cfg, now)

	baseline := availability.DateOf(now)
	if pastCutoff {
		baseline = baseline.AddDays(1)
	}

	result := &DatesResult{
		Method:        method,
		EligibleDates: availability.EligibleDates(cfg, baseline),
		PastCutoff:    pastCutoff,
		TimeWindows:   schedules.FromModel(schedule).TimeWindows,
	}
	if ok {
		result.Earliest = &earliest
	}
	return result, nil
}

func (s *service) ValidateSubmission(ctx context.Context, storeID uuid.UUID, input SubmissionInput) error {
	if !input.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment method")
	}
	if input.ScheduledDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "scheduled date is required")
	}

	schedule, err := s.loadSchedule(ctx, storeID, input.Method)
	if err != nil {
		return err
	}
	now, err := s.storeNow(ctx, storeID)
	if err != nil {
		return err
	}

	cfg := schedules.WindowConfig(schedule)
	_, pastCutoff, _ := availability.EarliestEligibleDate(cfg, now)
	baseline := availability.DateOf(now)
	if pastCutoff {
		baseline = baseline.AddDays(1)
	}
	if !availability.IsDateEligible(cfg, input.ScheduledDate, baseline) {
		return pkgerrors.New(pkgerrors.CodeValidation, "scheduled date is not available").WithDetails(map[string]any{
			"scheduled_date": input.ScheduledDate.String(),
		})
	}

	if input.TimeWindowID != nil {
		if !scheduleHasWindow(schedule, *input.TimeWindowID) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown time window")
		}
	} else if len(schedule.TimeWindows) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "time window is required")
	}

	visible, err := s.visibleFields(ctx, storeID, input.Cart)
	if err != nil {
		return err
	}
	rules := make([]pkgcheckout.FieldRule, 0, len(visible))
	for _, field := range visible {
		rules = append(rules, pkgcheckout.FieldRule{
			Key:      field.Key,
			Label:    field.Label,
			Required: field.Required,
			Options:  field.Options,
		})
	}
	return pkgcheckout.ViolationError(pkgcheckout.ValidateFieldValues(rules, input.FieldValues))
}

func (s *service) visibleFields(ctx context.Context, storeID uuid.UUID, cart CartSnapshot) ([]models.CheckoutField, error) {
	all, err := s.loadFields(ctx, storeID)
	if err != nil {
		return nil, err
	}

	snapshot := cart.toEngine()
	var visible []models.CheckoutField
	for _, field := range all {
		rule := visibility.RuleConfig{
			Mode:      field.VisibilityMode,
			TargetIDs: field.VisibilityTargets,
			Polarity:  field.VisibilityPolarity,
		}
		if visibility.ShouldShow(rule, snapshot) {
			visible = append(visible, field)
		}
	}
	return visible, nil
}

func (s *service) loadSchedule(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*models.DeliverySchedule, error) {
	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.CacheKey("schedule", storeID.String(), method.String())
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var schedule models.DeliverySchedule
			if err := json.Unmarshal([]byte(cached), &schedule); err == nil {
				return &schedule, nil
			}
		}
	}

	schedule, err := s.schedules.FindByStoreAndMethod(ctx, storeID, method)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no schedule configured for this method")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule")
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if payload, err := json.Marshal(schedule); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(payload), s.cacheTTL)
		}
	}
	return schedule, nil
}

func (s *service) loadFields(ctx context.Context, storeID uuid.UUID) ([]models.CheckoutField, error) {
	var cacheKey string
	if s.cache != nil {
		cacheKey = s.cache.CacheKey("fields", storeID.String())
		if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != "" {
			var fieldRows []models.CheckoutField
			if err := json.Unmarshal([]byte(cached), &fieldRows); err == nil {
				return fieldRows, nil
			}
		}
	}

	fieldRows, err := s.fields.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list fields")
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if payload, err := json.Marshal(fieldRows); err == nil {
			_ = s.cache.Set(ctx, cacheKey, string(payload), s.cacheTTL)
		}
	}
	return fieldRows, nil
}

// storeNow returns the wall-clock now in the store's timezone so cutoff
// comparisons track the merchant's local day.
func (s *service) storeNow(ctx context.Context, storeID uuid.UUID) (time.Time, error) {
	store, err := s.stores.FindByID(ctx, storeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
		}
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store")
	}

	loc, err := time.LoadLocation(store.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return s.now().In(loc), nil
}

func scheduleHasWindow(schedule *models.DeliverySchedule, windowID uuid.UUID) bool {
	for _, window := range schedule.TimeWindows {
		if window.ID == windowID {
			return true
		}
	}
	return false
}
