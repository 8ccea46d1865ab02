package schedules

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
)

const minutesPerDay = 24 * 60

type scheduleRepository interface {
	FindByStoreAndMethod(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*models.DeliverySchedule, error)
	Replace(ctx context.Context, schedule *models.DeliverySchedule) error
}

// settingsCache evicts checkout's cached schedule when merchants change it.
type settingsCache interface {
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// Service exposes schedule operations.
type Service interface {
	Get(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*ScheduleDTO, error)
	Upsert(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod, input UpsertScheduleInput) (*ScheduleDTO, error)
}

type service struct {
	repo  scheduleRepository
	cache settingsCache
}

// NewService builds a schedule service.
func NewService(repo scheduleRepository, cache settingsCache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("schedule repository required")
	}
	return &service{repo: repo, cache: cache}, nil
}

func (s *service) Get(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*ScheduleDTO, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment method")
	}
	schedule, err := s.repo.FindByStoreAndMethod(ctx, storeID, method)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "schedule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load schedule")
	}
	return FromModel(schedule), nil
}

func (s *service) Upsert(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod, input UpsertScheduleInput) (*ScheduleDTO, error) {
	if !method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment method")
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	schedule := input.toModel(storeID, method)
	if err := s.repo.Replace(ctx, schedule); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save schedule")
	}

	if s.cache != nil {
		_ = s.cache.Del(ctx, s.cache.CacheKey("schedule", storeID.String(), method.String()))
	}

	stored, err := s.repo.FindByStoreAndMethod(ctx, storeID, method)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload schedule")
	}
	return FromModel(stored), nil
}

func validateInput(input UpsertScheduleInput) error {
	if input.MinLeadDays < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min_lead_days cannot be negative")
	}
	if input.MaxFutureDays < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max_future_days cannot be negative")
	}

	seenWeekdays := map[int]bool{}
	for _, weekday := range input.DisabledWeekdays {
		if weekday < 0 || weekday > 6 {
			return pkgerrors.New(pkgerrors.CodeValidation, "disabled weekdays must be 0 through 6")
		}
		if seenWeekdays[weekday] {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate disabled weekday")
		}
		seenWeekdays[weekday] = true
	}

	if input.CutoffTime != nil {
		if _, err := availability.ParseTimeOfDay(*input.CutoffTime); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cutoff time")
		}
	}

	seenDates := map[availability.Date]bool{}
	for _, blocked := range input.BlockedDates {
		if blocked.Date.IsZero() {
			return pkgerrors.New(pkgerrors.CodeValidation, "blocked date is required")
		}
		if seenDates[blocked.Date] {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate blocked date")
		}
		seenDates[blocked.Date] = true
	}

	if err := validateTimeWindows(input.TimeWindows); err != nil {
		return err
	}
	return nil
}

func validateTimeWindows(windows []TimeWindowInput) error {
	type span struct {
		start, end int
	}
	spans := make([]span, 0, len(windows))

	for _, window := range windows {
		if strings.TrimSpace(window.Label) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "time window label is required")
		}
		if window.StartMinute < 0 || window.EndMinute > minutesPerDay {
			return pkgerrors.New(pkgerrors.CodeValidation, "time window must fall within the day")
		}
		if window.StartMinute >= window.EndMinute {
			return pkgerrors.New(pkgerrors.CodeValidation, "time window must end after it starts")
		}
		if window.Fee.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "time window fee cannot be negative")
		}
		spans = append(spans, span{start: window.StartMinute, end: window.EndMinute})
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return pkgerrors.New(pkgerrors.CodeValidation, "time windows cannot overlap")
		}
	}
	return nil
}
