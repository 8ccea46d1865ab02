package deliveries

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dispatchday/dispatchday-backend/internal/checkout"
	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/db"
	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	dbtypes "github.com/dispatchday/dispatchday-backend/pkg/db/types"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	pkgerrors "github.com/dispatchday/dispatchday-backend/pkg/errors"
	"github.com/dispatchday/dispatchday-backend/pkg/pagination"
)

type deliveryRepository interface {
	Create(ctx context.Context, delivery *models.Delivery) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	FindByOrderRef(ctx context.Context, storeID uuid.UUID, orderRef string) (*models.Delivery, error)
	List(ctx context.Context, params listDeliveriesParams) ([]models.Delivery, *pagination.Cursor, error)
	ListRange(ctx context.Context, storeID uuid.UUID, from, to time.Time) ([]models.Delivery, error)
	CountByStatus(ctx context.Context, storeID uuid.UUID) (map[enums.DeliveryStatus]int64, error)
	CountScheduledBetween(ctx context.Context, storeID uuid.UUID, from, to time.Time) (int64, error)
	Update(ctx context.Context, delivery *models.Delivery) error
}

type submissionValidator interface {
	ValidateSubmission(ctx context.Context, storeID uuid.UUID, input checkout.SubmissionInput) error
}

type notifier interface {
	Notify(ctx context.Context, storeID uuid.UUID, ntype enums.NotificationType, title, message string, link *string) error
}

type windowSource interface {
	FindTimeWindow(ctx context.Context, storeID, windowID uuid.UUID) (*models.ScheduleTimeWindow, error)
}

// Service exposes delivery tracking operations.
type Service interface {
	Create(ctx context.Context, storeID uuid.UUID, input CreateDeliveryInput) (*DeliveryDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*DeliveryDTO, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Calendar(ctx context.Context, storeID uuid.UUID, from, to availability.Date) ([]CalendarDay, error)
	Summary(ctx context.Context, storeID uuid.UUID) (*SummaryResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*DeliveryDTO, error)
}

type service struct {
	repo      deliveryRepository
	validator submissionValidator
	notifier  notifier
	windows   windowSource
	now       func() time.Time
}

// NewService builds a delivery service. The notifier is optional; without it
// status changes are silent.
func NewService(repo deliveryRepository, validator submissionValidator, windows windowSource, notify notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("delivery repository required")
	}
	if validator == nil {
		return nil, fmt.Errorf("submission validator required")
	}
	if windows == nil {
		return nil, fmt.Errorf("window source required")
	}
	return &service{
		repo:      repo,
		validator: validator,
		windows:   windows,
		notifier:  notify,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, storeID uuid.UUID, input CreateDeliveryInput) (*DeliveryDTO, error) {
	orderRef := strings.TrimSpace(input.OrderRef)
	recipient := strings.TrimSpace(input.RecipientName)
	if orderRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order reference is required")
	}
	if recipient == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient name is required")
	}

	if _, err := s.repo.FindByOrderRef(ctx, storeID, orderRef); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "delivery already recorded for this order")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order reference")
	}

	if err := s.validator.ValidateSubmission(ctx, storeID, checkout.SubmissionInput{
		Method:        input.Method,
		Cart:          input.Cart,
		ScheduledDate: input.ScheduledDate,
		TimeWindowID:  input.TimeWindowID,
		FieldValues:   input.FieldValues,
	}); err != nil {
		return nil, err
	}

	delivery := &models.Delivery{
		StoreID:       storeID,
		OrderRef:      orderRef,
		RecipientName: recipient,
		Method:        input.Method,
		Status:        enums.DeliveryStatusScheduled,
		ScheduledDate: input.ScheduledDate.Time(),
		TimeWindowID:  input.TimeWindowID,
		Instructions:  input.Instructions,
		FieldValues:   dbtypes.FieldValueMap(input.FieldValues),
	}
	if err := s.repo.Create(ctx, delivery); err != nil {
		// Two concurrent creates can both pass the order-ref lookup; the
		// loser hits the unique index and must still surface as a conflict.
		if db.IsUniqueViolation(err, "idx_deliveries_store_order") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "delivery already recorded for this order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create delivery")
	}

	// Best effort: the delivery is already persisted, a missing window only
	// leaves the response undecorated.
	if input.TimeWindowID != nil {
		if window, err := s.windows.FindTimeWindow(ctx, storeID, *input.TimeWindowID); err == nil {
			delivery.TimeWindow = window
		}
	}

	s.notify(ctx, storeID, enums.NotificationTypeSystem,
		"New delivery scheduled",
		fmt.Sprintf("Order %s is booked for %s.", orderRef, input.ScheduledDate.String()),
		delivery.ID)

	return FromModel(delivery), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DeliveryDTO, error) {
	delivery, err := s.loadDelivery(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(delivery), nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if params.Status != nil && !params.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
	}
	if params.Method != nil && !params.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid method filter")
	}

	query := listDeliveriesParams{
		StoreID: params.StoreID,
		Status:  params.Status,
		Method:  params.Method,
		Limit:   params.Limit,
	}
	if params.From != nil {
		from := params.From.Time()
		query.From = &from
	}
	if params.To != nil {
		to := params.To.Time()
		query.To = &to
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list deliveries")
	}

	result := &ListResult{Items: make([]DeliveryDTO, 0, len(rows))}
	for i := range rows {
		result.Items = append(result.Items, *FromModel(&rows[i]))
	}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) Calendar(ctx context.Context, storeID uuid.UUID, from, to availability.Date) ([]CalendarDay, error) {
	if from.IsZero() || to.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "calendar range is required")
	}
	if to.Before(from) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "calendar range is inverted")
	}

	rows, err := s.repo.ListRange(ctx, storeID, from.Time(), to.Time())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load calendar range")
	}

	var days []CalendarDay
	for i := range rows {
		dto := *FromModel(&rows[i])
		if len(days) == 0 || days[len(days)-1].Date != dto.ScheduledDate {
			days = append(days, CalendarDay{Date: dto.ScheduledDate})
		}
		last := len(days) - 1
		days[last].Deliveries = append(days[last].Deliveries, dto)
	}
	return days, nil
}

func (s *service) Summary(ctx context.Context, storeID uuid.UUID) (*SummaryResult, error) {
	counts, err := s.repo.CountByStatus(ctx, storeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count deliveries")
	}

	today := availability.DateOf(s.now().UTC())
	tomorrow := today.AddDays(1)

	todayCount, err := s.repo.CountScheduledBetween(ctx, storeID, today.Time(), today.Time())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count today")
	}
	tomorrowCount, err := s.repo.CountScheduledBetween(ctx, storeID, tomorrow.Time(), tomorrow.Time())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tomorrow")
	}
	upcoming, err := s.repo.CountScheduledBetween(ctx, storeID, today.Time(), today.AddDays(30).Time())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count upcoming")
	}

	return &SummaryResult{
		Today:    todayCount,
		Tomorrow: tomorrowCount,
		Upcoming: upcoming,
		ByStatus: counts,
	}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, input UpdateStatusInput) (*DeliveryDTO, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery status")
	}
	if input.Status == enums.DeliveryStatusOverdue {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "overdue is set automatically and cannot be chosen")
	}

	delivery, err := s.loadDelivery(ctx, id)
	if err != nil {
		return nil, err
	}

	if !delivery.Status.CanTransitionTo(input.Status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").WithDetails(map[string]any{
			"from": delivery.Status.String(),
			"to":   input.Status.String(),
		})
	}

	now := s.now().UTC()
	previous := delivery.Status
	delivery.Status = input.Status
	delivery.StatusNote = input.Note
	switch input.Status {
	case enums.DeliveryStatusDelivered:
		delivery.DeliveredAt = &now
	case enums.DeliveryStatusCanceled:
		delivery.CanceledAt = &now
	}

	if err := s.repo.Update(ctx, delivery); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery")
	}

	s.notify(ctx, delivery.StoreID, enums.NotificationTypeDeliveryStatus,
		"Delivery status updated",
		fmt.Sprintf("Order %s moved from %s to %s.", delivery.OrderRef, previous, delivery.Status),
		delivery.ID)

	return FromModel(delivery), nil
}

func (s *service) loadDelivery(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	delivery, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery")
	}
	return delivery, nil
}

// notify is best effort: a failed notification never fails the operation.
func (s *service) notify(ctx context.Context, storeID uuid.UUID, ntype enums.NotificationType, title, message string, deliveryID uuid.UUID) {
	if s.notifier == nil {
		return
	}
	link := "/deliveries/" + deliveryID.String()
	_ = s.notifier.Notify(ctx, storeID, ntype, title, message, &link)
}
