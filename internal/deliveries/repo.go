package deliveries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	"github.com/dispatchday/dispatchday-backend/pkg/pagination"
)

// Repository handles delivery persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to delivery operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type listDeliveriesParams struct {
	StoreID uuid.UUID
	Status  *enums.DeliveryStatus
	Method  *enums.FulfillmentMethod
	From    *time.Time
	To      *time.Time
	Limit   int
	Cursor  *pagination.Cursor
}

// Create persists a new delivery row.
func (r *Repository) Create(ctx context.Context, delivery *models.Delivery) error {
	if delivery == nil {
		return fmt.Errorf("delivery is required")
	}
	return r.db.WithContext(ctx).Create(delivery).Error
}

// FindByID loads a delivery with its booked time window.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Preload("TimeWindow").
		Where("id = ?", id).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// FindByOrderRef loads the delivery recorded for one store order.
func (r *Repository) FindByOrderRef(ctx context.Context, storeID uuid.UUID, orderRef string) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.WithContext(ctx).
		Preload("TimeWindow").
		Where("store_id = ? AND order_ref = ?", storeID, orderRef).
		First(&delivery).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

// List pages through a store's deliveries newest first.
func (r *Repository) List(ctx context.Context, params listDeliveriesParams) ([]models.Delivery, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Delivery{}).
		Preload("TimeWindow").
		Where("store_id = ?", params.StoreID)
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Method != nil {
		query = query.Where("method = ?", *params.Method)
	}
	if params.From != nil {
		query = query.Where("scheduled_date >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("scheduled_date <= ?", *params.To)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var deliveries []models.Delivery
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&deliveries).Error; err != nil {
		return nil, nil, err
	}

	if len(deliveries) > normalized {
		next := deliveries[normalized]
		deliveries = deliveries[:normalized]
		return deliveries, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return deliveries, nil, nil
}

// ListRange returns active deliveries inside [from, to] for the calendar feed.
func (r *Repository) ListRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := r.db.WithContext(ctx).
		Preload("TimeWindow").
		Where("store_id = ? AND scheduled_date >= ? AND scheduled_date <= ?", storeID, from, to).
		Order("scheduled_date ASC, created_at ASC").
		Find(&deliveries).Error
	if err != nil {
		return nil, err
	}
	return deliveries, nil
}

// CountByStatus returns per-status delivery counts for one store.
func (r *Repository) CountByStatus(ctx context.Context, storeID uuid.UUID) (map[enums.DeliveryStatus]int64, error) {
	type row struct {
		Status enums.DeliveryStatus
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Delivery{}).
		Select("status, COUNT(*) AS total").
		Where("store_id = ?", storeID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[enums.DeliveryStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// CountScheduledBetween counts non-terminal deliveries inside [from, to].
func (r *Repository) CountScheduledBetween(ctx context.Context, storeID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Delivery{}).
		Where("store_id = ? AND scheduled_date >= ? AND scheduled_date <= ?", storeID, from, to).
		Where("status NOT IN ?", []enums.DeliveryStatus{enums.DeliveryStatusDelivered, enums.DeliveryStatusCanceled}).
		Count(&count).Error
	return count, err
}

// Update saves the provided delivery.
func (r *Repository) Update(ctx context.Context, delivery *models.Delivery) error {
	if delivery == nil {
		return fmt.Errorf("delivery is required")
	}
	return r.db.WithContext(ctx).Save(delivery).Error
}

// ListScheduledOn returns every store's non-terminal deliveries booked for
// the given date. Used by the reminder cron.
func (r *Repository) ListScheduledOn(ctx context.Context, date time.Time) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := r.db.WithContext(ctx).
		Where("scheduled_date = ?", date).
		Where("status NOT IN ?", []enums.DeliveryStatus{enums.DeliveryStatusDelivered, enums.DeliveryStatusCanceled}).
		Order("store_id ASC, created_at ASC").
		Find(&deliveries).Error
	if err != nil {
		return nil, err
	}
	return deliveries, nil
}

// ListOverdueCandidates returns non-terminal deliveries scheduled before the
// given date that have not yet been flagged.
func (r *Repository) ListOverdueCandidates(ctx context.Context, before time.Time) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	err := r.db.WithContext(ctx).
		Where("scheduled_date < ?", before).
		Where("status NOT IN ?", []enums.DeliveryStatus{
			enums.DeliveryStatusDelivered,
			enums.DeliveryStatusCanceled,
			enums.DeliveryStatusOverdue,
		}).
		Order("store_id ASC, scheduled_date ASC").
		Find(&deliveries).Error
	if err != nil {
		return nil, err
	}
	return deliveries, nil
}

// MarkOverdue flips the listed deliveries to overdue in one statement.
func (r *Repository) MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.Delivery{}).
		Where("id IN ?", ids).
		Where("status NOT IN ?", []enums.DeliveryStatus{
			enums.DeliveryStatusDelivered,
			enums.DeliveryStatusCanceled,
			enums.DeliveryStatusOverdue,
		}).
		UpdateColumn("status", enums.DeliveryStatusOverdue)
	return result.RowsAffected, result.Error
}
