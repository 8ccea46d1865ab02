package fields

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
)

// Repository handles checkout field persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to field operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListByStore returns the store's fields in display order.
func (r *Repository) ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.CheckoutField, error) {
	var fields []models.CheckoutField
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("position ASC, created_at ASC").
		Find(&fields).Error
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// FindByID loads one field scoped to the store.
func (r *Repository) FindByID(ctx context.Context, storeID, fieldID uuid.UUID) (*models.CheckoutField, error) {
	var field models.CheckoutField
	err := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", fieldID, storeID).
		First(&field).Error
	if err != nil {
		return nil, err
	}
	return &field, nil
}

// Create persists a new field row.
func (r *Repository) Create(ctx context.Context, field *models.CheckoutField) error {
	if field == nil {
		return fmt.Errorf("field is required")
	}
	return r.db.WithContext(ctx).Create(field).Error
}

// Update saves the provided field.
func (r *Repository) Update(ctx context.Context, field *models.CheckoutField) error {
	if field == nil {
		return fmt.Errorf("field is required")
	}
	return r.db.WithContext(ctx).Save(field).Error
}

// Delete removes a field scoped to the store.
func (r *Repository) Delete(ctx context.Context, storeID, fieldID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND store_id = ?", fieldID, storeID).
		Delete(&models.CheckoutField{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
