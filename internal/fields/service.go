package fields

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	dbtypes "github.com/dispatchday/dispatchday-backend/pkg/db/types"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
)

var fieldKeyPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_]{0,63}$`)

// The scheduled date and time window live as typed columns on the delivery,
// so their keys can never be claimed by merchant-defined fields.
var reservedFieldKeys = map[string]bool{
	"delivery_date":        true,
	"delivery_time_window": true,
}

type fieldRepository interface {
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]models.CheckoutField, error)
	FindByID(ctx context.Context, storeID, fieldID uuid.UUID) (*models.CheckoutField, error)
	Create(ctx context.Context, field *models.CheckoutField) error
	Update(ctx context.Context, field *models.CheckoutField) error
	Delete(ctx context.Context, storeID, fieldID uuid.UUID) error
}

type settingsCache interface {
	Del(ctx context.Context, keys ...string) error
	CacheKey(parts ...string) string
}

// Service exposes checkout field operations.
type Service interface {
	List(ctx context.Context, storeID uuid.UUID) ([]FieldDTO, error)
	Create(ctx context.Context, storeID uuid.UUID, input CreateFieldInput) (*FieldDTO, error)
	Update(ctx context.Context, storeID, fieldID uuid.UUID, input UpdateFieldInput) (*FieldDTO, error)
	Delete(ctx context.Context, storeID, fieldID uuid.UUID) error
}

type service struct {
	repo  fieldRepository
	cache settingsCache
}

// NewService builds a field service.
func NewService(repo fieldRepository, cache settingsCache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("field repository required")
	}
	return &service{repo: repo, cache: cache}, nil
}

func (s *service) List(ctx context.Context, storeID uuid.UUID) ([]FieldDTO, error) {
	fields, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list fields")
	}
	dtos := make([]FieldDTO, 0, len(fields))
	for i := range fields {
		dtos = append(dtos, *FromModel(&fields[i]))
	}
	return dtos, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateFieldInput) (*FieldDTO, error) {
	input.Key = strings.TrimSpace(strings.ToLower(input.Key))
	input.Label = strings.TrimSpace(input.Label)

	if !fieldKeyPattern.MatchString(input.Key) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "field key must be a lowercase slug")
	}
	if reservedFieldKeys[input.Key] {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "field key is reserved")
	}
	if input.Label == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "field label is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid field type")
	}
	if err := validateOptions(input.Type, input.Options); err != nil {
		return nil, err
	}
	if err := validateVisibility(input.VisibilityMode, input.VisibilityPolarity, input.VisibilityTargets); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list fields")
	}
	for _, field := range existing {
		if field.Key == input.Key {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "field key already exists")
		}
	}

	field := input.toModel(storeID)
	if err := s.repo.Create(ctx, field); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create field")
	}
	s.evict(ctx, storeID)
	return FromModel(field), nil
}

func (s *service) Update(ctx context.Context, storeID, fieldID uuid.UUID, input UpdateFieldInput) (*FieldDTO, error) {
	field, err := s.loadField(ctx, storeID, fieldID)
	if err != nil {
		return nil, err
	}

	if input.Label != nil {
		label := strings.TrimSpace(*input.Label)
		if label == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "field label cannot be empty")
		}
		field.Label = label
	}
	if input.Required != nil {
		field.Required = *input.Required
	}
	if input.Position != nil {
		field.Position = *input.Position
	}
	if input.Placeholder != nil {
		field.Placeholder = input.Placeholder
	}
	if input.Options != nil {
		if err := validateOptions(field.Type, *input.Options); err != nil {
			return nil, err
		}
		field.Options = pq.StringArray(*input.Options)
	}

	mode := field.VisibilityMode
	polarity := field.VisibilityPolarity
	targets := []uuid.UUID(field.VisibilityTargets)
	if input.VisibilityMode != nil {
		mode = *input.VisibilityMode
	}
	if input.VisibilityPolarity != nil {
		polarity = *input.VisibilityPolarity
	}
	if input.VisibilityTargets != nil {
		targets = *input.VisibilityTargets
	}
	if err := validateVisibility(mode, polarity, targets); err != nil {
		return nil, err
	}
	field.VisibilityMode = mode
	field.VisibilityPolarity = polarity
	field.VisibilityTargets = dbtypes.UUIDArray(targets)

	if err := s.repo.Update(ctx, field); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update field")
	}
	s.evict(ctx, storeID)
	return FromModel(field), nil
}

func (s *service) Delete(ctx context.Context, storeID, fieldID uuid.UUID) error {
	if err := s.repo.Delete(ctx, storeID, fieldID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "field not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete field")
	}
	s.evict(ctx, storeID)
	return nil
}

func (s *service) loadField(ctx context.Context, storeID, fieldID uuid.UUID) (*models.CheckoutField, error) {
	field, err := s.repo.FindByID(ctx, storeID, fieldID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "field not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load field")
	}
	return field, nil
}

func (s *service) evict(ctx context.Context, storeID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, s.cache.CacheKey("fields", storeID.String()))
}

func validateOptions(fieldType enums.FieldType, options []string) error {
	if fieldType.HasOptions() {
		if len(options) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "options are required for this field type")
		}
		seen := map[string]bool{}
		for _, option := range options {
			trimmed := strings.TrimSpace(option)
			if trimmed == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "options cannot be blank")
			}
			if seen[trimmed] {
				return pkgerrors.New(pkgerrors.CodeValidation, "duplicate option")
			}
			seen[trimmed] = true
		}
		return nil
	}
	if len(options) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "options are not allowed for this field type")
	}
	return nil
}

func validateVisibility(mode enums.VisibilityMode, polarity enums.VisibilityPolarity, targets []uuid.UUID) error {
	if !mode.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid visibility mode")
	}
	if !polarity.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid visibility polarity")
	}
	if mode == enums.VisibilityModeAlways {
		if len(targets) > 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "targets are not allowed for always visibility")
		}
		return nil
	}
	return nil
}
