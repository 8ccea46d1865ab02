package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"

	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
)

const (
	defaultReminderLeadDays = 1
	notifyMaxRetries        = 2
	notifyInitialBackoff    = 200 * time.Millisecond
)

type deliveriesReminderRepo interface {
	ListScheduledOn(ctx context.Context, date time.Time) ([]models.Delivery, error)
}

type storeNotifier interface {
	Notify(ctx context.Context, storeID uuid.UUID, ntype enums.NotificationType, title, message string, link *string) error
}

// DeliveryReminderJobParams configures the upcoming-delivery reminder.
type DeliveryReminderJobParams struct {
	Logger   *logger.Logger
	Repo     deliveriesReminderRepo
	Notifier storeNotifier
	LeadDays int
}

// NewDeliveryReminderJob builds the job that notifies each store about
// deliveries booked LeadDays ahead.
func NewDeliveryReminderJob(params DeliveryReminderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	leadDays := params.LeadDays
	if leadDays <= 0 {
		leadDays = defaultReminderLeadDays
	}
	return &deliveryReminderJob{
		logg:     params.Logger,
		repo:     params.Repo,
		notifier: params.Notifier,
		leadDays: leadDays,
		now:      time.Now,
	}, nil
}

type deliveryReminderJob struct {
	logg     *logger.Logger
	repo     deliveriesReminderRepo
	notifier storeNotifier
	leadDays int
	now      func() time.Time
}

func (j *deliveryReminderJob) Name() string { return "delivery-reminder" }

func (j *deliveryReminderJob) Run(ctx context.Context) error {
	target := availability.DateOf(j.now().UTC()).AddDays(j.leadDays)
	deliveries, err := j.repo.ListScheduledOn(ctx, target.Time())
	if err != nil {
		return fmt.Errorf("list scheduled deliveries: %w", err)
	}

	counts := countByStore(deliveries)
	var errs error
	for storeID, count := range counts {
		message := fmt.Sprintf("You have %d deliveries booked for %s.", count, target)
		if count == 1 {
			message = fmt.Sprintf("You have 1 delivery booked for %s.", target)
		}
		link := "/deliveries?date=" + target.String()
		if err := j.notifyWithRetry(ctx, storeID, enums.NotificationTypeDeliveryReminder, "Upcoming deliveries", message, &link); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("store %s: %w", storeID, err))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"target_date": target.String(),
		"deliveries":  len(deliveries),
		"stores":      len(counts),
	})
	j.logg.Info(logCtx, "delivery reminders sent")
	return errs
}

func (j *deliveryReminderJob) notifyWithRetry(ctx context.Context, storeID uuid.UUID, ntype enums.NotificationType, title, message string, link *string) error {
	backoff := retry.WithMaxRetries(notifyMaxRetries, retry.NewExponential(notifyInitialBackoff))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := j.notifier.Notify(ctx, storeID, ntype, title, message, link); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func countByStore(deliveries []models.Delivery) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	for i := range deliveries {
		counts[deliveries[i].StoreID]++
	}
	return counts
}
