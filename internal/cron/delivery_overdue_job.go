package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/dispatchday/dispatchday-backend/pkg/availability"
	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
	"github.com/dispatchday/dispatchday-backend/pkg/logger"
)

type deliveriesOverdueRepo interface {
	ListOverdueCandidates(ctx context.Context, before time.Time) ([]models.Delivery, error)
	MarkOverdue(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// DeliveryOverdueJobParams configures the overdue sweep.
type DeliveryOverdueJobParams struct {
	Logger   *logger.Logger
	Repo     deliveriesOverdueRepo
	Notifier storeNotifier
}

// NewDeliveryOverdueJob builds the job that flags past-date deliveries still
// awaiting fulfillment and alerts their stores.
func NewDeliveryOverdueJob(params DeliveryOverdueJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	return &deliveryOverdueJob{
		logg:     params.Logger,
		repo:     params.Repo,
		notifier: params.Notifier,
		now:      time.Now,
	}, nil
}

type deliveryOverdueJob struct {
	logg     *logger.Logger
	repo     deliveriesOverdueRepo
	notifier storeNotifier
	now      func() time.Time
}

func (j *deliveryOverdueJob) Name() string { return "delivery-overdue" }

func (j *deliveryOverdueJob) Run(ctx context.Context) error {
	today := availability.DateOf(j.now().UTC())
	candidates, err := j.repo.ListOverdueCandidates(ctx, today.Time())
	if err != nil {
		return fmt.Errorf("list overdue candidates: %w", err)
	}
	if len(candidates) == 0 {
		j.logg.Info(ctx, "no overdue deliveries")
		return nil
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for i := range candidates {
		ids = append(ids, candidates[i].ID)
	}
	flagged, err := j.repo.MarkOverdue(ctx, ids)
	if err != nil {
		return fmt.Errorf("mark overdue: %w", err)
	}

	var errs error
	for storeID, count := range countByStore(candidates) {
		message := fmt.Sprintf("%d deliveries are past their scheduled date and need attention.", count)
		if count == 1 {
			message = "1 delivery is past its scheduled date and needs attention."
		}
		link := "/deliveries?status=" + enums.DeliveryStatusOverdue.String()
		if err := j.notifier.Notify(ctx, storeID, enums.NotificationTypeDeliveryOverdue, "Overdue deliveries", message, &link); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("store %s: %w", storeID, err))
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(candidates),
		"flagged":    flagged,
	})
	j.logg.Info(logCtx, "overdue sweep complete")
	return errs
}
