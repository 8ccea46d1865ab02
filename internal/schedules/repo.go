package schedules

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
)

// Repository handles schedule persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to schedule operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByStoreAndMethod loads a schedule with its blocked dates and windows.
func (r *Repository) FindByStoreAndMethod(ctx context.Context, storeID uuid.UUID, method enums.FulfillmentMethod) (*models.DeliverySchedule, error) {
	var schedule models.DeliverySchedule
	err := r.db.WithContext(ctx).
		Preload("BlockedDates", func(db *gorm.DB) *gorm.DB {
			return db.Order("date ASC")
		}).
		Preload("TimeWindows", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("store_id = ? AND method = ?", storeID, method).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// FindTimeWindow loads one time window belonging to the given store.
func (r *Repository) FindTimeWindow(ctx context.Context, storeID, windowID uuid.UUID) (*models.ScheduleTimeWindow, error) {
	var window models.ScheduleTimeWindow
	err := r.db.WithContext(ctx).
		Joins("JOIN delivery_schedules ON delivery_schedules.id = schedule_time_windows.schedule_id").
		Where("schedule_time_windows.id = ? AND delivery_schedules.store_id = ?", windowID, storeID).
		First(&window).Error
	if err != nil {
		return nil, err
	}
	return &window, nil
}

// Replace swaps the store's schedule for one method in a single transaction.
// Child rows are rewritten wholesale; PUT semantics.
func (r *Repository) Replace(ctx context.Context, schedule *models.DeliverySchedule) error {
	if schedule == nil {
		return fmt.Errorf("schedule is required")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.DeliverySchedule
		err := tx.Where("store_id = ? AND method = ?", schedule.StoreID, schedule.Method).
			First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tx.Create(schedule).Error
			}
			return err
		}

		if err := tx.Where("schedule_id = ?", existing.ID).Delete(&models.ScheduleBlockedDate{}).Error; err != nil {
			return err
		}
		if err := tx.Where("schedule_id = ?", existing.ID).Delete(&models.ScheduleTimeWindow{}).Error; err != nil {
			return err
		}

		schedule.ID = existing.ID
		schedule.CreatedAt = existing.CreatedAt
		updates := map[string]any{
			"min_lead_days":     schedule.MinLeadDays,
			"max_future_days":   schedule.MaxFutureDays,
			"disabled_weekdays": schedule.DisabledWeekdays,
			"cutoff_time":       schedule.CutoffTime,
		}
		if err := tx.Model(&models.DeliverySchedule{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return err
		}

		for i := range schedule.BlockedDates {
			schedule.BlockedDates[i].ScheduleID = existing.ID
		}
		if len(schedule.BlockedDates) > 0 {
			if err := tx.Create(&schedule.BlockedDates).Error; err != nil {
				return err
			}
		}
		for i := range schedule.TimeWindows {
			schedule.TimeWindows[i].ScheduleID = existing.ID
		}
		if len(schedule.TimeWindows) > 0 {
			if err := tx.Create(&schedule.TimeWindows).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
