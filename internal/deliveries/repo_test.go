package deliveries

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dispatchday/dispatchday-backend/pkg/db/models"
	dbtypes "github.com/dispatchday/dispatchday-backend/pkg/db/types"
	"github.com/dispatchday/dispatchday-backend/pkg/enums"
)

func setupDeliveriesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	deliveries := `
CREATE TABLE IF NOT EXISTS deliveries (
  id TEXT PRIMARY KEY,
  store_id TEXT NOT NULL,
  order_ref TEXT NOT NULL,
  recipient_name TEXT NOT NULL,
  method TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'scheduled',
  scheduled_date DATETIME NOT NULL,
  time_window_id TEXT,
  instructions TEXT,
  field_values TEXT,
  status_note TEXT,
  delivered_at DATETIME,
  canceled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	timeWindows := `
CREATE TABLE IF NOT EXISTS schedule_time_windows (
  id TEXT PRIMARY KEY,
  schedule_id TEXT NOT NULL,
  label TEXT NOT NULL,
  start_minute INTEGER NOT NULL,
  end_minute INTEGER NOT NULL,
  fee TEXT NOT NULL DEFAULT '0',
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(deliveries).Error)
	require.NoError(t, db.Exec(timeWindows).Error)
	return db
}

func createDelivery(t *testing.T, db *gorm.DB, storeID uuid.UUID, orderRef string, scheduled time.Time, status enums.DeliveryStatus, created time.Time) *models.Delivery {
	t.Helper()

	delivery := &models.Delivery{
		ID:            uuid.New(),
		StoreID:       storeID,
		OrderRef:      orderRef,
		RecipientName: "Recipient",
		Method:        enums.FulfillmentMethodDelivery,
		Status:        status,
		ScheduledDate: scheduled,
		FieldValues:   dbtypes.FieldValueMap{"gate_code": "1234"},
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	require.NoError(t, db.Create(delivery).Error)
	return delivery
}

func TestRepositoryFindByOrderRef(t *testing.T) {
	db := setupDeliveriesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	day := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	created := createDelivery(t, db, storeID, "WC-1042", day, enums.DeliveryStatusScheduled, time.Now().UTC())

	found, err := repo.FindByOrderRef(ctx, storeID, "WC-1042")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "1234", found.FieldValues["gate_code"])

	_, err = repo.FindByOrderRef(ctx, uuid.New(), "WC-1042")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListPaginationAndFilters(t *testing.T) {
	db := setupDeliveriesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	day := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		createDelivery(t, db, storeID, fmt.Sprintf("WC-%d", i), day.AddDate(0, 0, i), enums.DeliveryStatusScheduled, now.Add(time.Duration(i)*time.Minute))
	}
	createDelivery(t, db, uuid.New(), "WC-OTHER", day, enums.DeliveryStatusScheduled, now)

	first, cursor, err := repo.List(ctx, listDeliveriesParams{StoreID: storeID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotNil(t, cursor)
	assert.Equal(t, "WC-2", first[0].OrderRef)
	assert.Equal(t, "WC-1", first[1].OrderRef)

	second, next, err := repo.List(ctx, listDeliveriesParams{StoreID: storeID, Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Nil(t, next)
	assert.Equal(t, "WC-0", second[0].OrderRef)

	status := enums.DeliveryStatusDelivered
	filtered, _, err := repo.List(ctx, listDeliveriesParams{StoreID: storeID, Status: &status, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, filtered)

	from := day.AddDate(0, 0, 2)
	byDate, _, err := repo.List(ctx, listDeliveriesParams{StoreID: storeID, From: &from, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byDate, 1)
	assert.Equal(t, "WC-2", byDate[0].OrderRef)
}

func TestRepositoryListRangeOrdersByDate(t *testing.T) {
	db := setupDeliveriesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	createDelivery(t, db, storeID, "WC-LATE", day.AddDate(0, 0, 2), enums.DeliveryStatusScheduled, now)
	createDelivery(t, db, storeID, "WC-EARLY", day, enums.DeliveryStatusScheduled, now)
	createDelivery(t, db, storeID, "WC-OUT", day.AddDate(0, 0, 9), enums.DeliveryStatusScheduled, now)

	rows, err := repo.ListRange(ctx, storeID, day, day.AddDate(0, 0, 6))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "WC-EARLY", rows[0].OrderRef)
	assert.Equal(t, "WC-LATE", rows[1].OrderRef)
}

func TestRepositoryCounts(t *testing.T) {
	db := setupDeliveriesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	createDelivery(t, db, storeID, "WC-1", day, enums.DeliveryStatusScheduled, now)
	createDelivery(t, db, storeID, "WC-2", day, enums.DeliveryStatusScheduled, now)
	createDelivery(t, db, storeID, "WC-3", day, enums.DeliveryStatusDelivered, now)

	counts, err := repo.CountByStatus(ctx, storeID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[enums.DeliveryStatusScheduled])
	assert.Equal(t, int64(1), counts[enums.DeliveryStatusDelivered])

	active, err := repo.CountScheduledBetween(ctx, storeID, day, day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), active)
}

func TestRepositoryOverdueFlow(t *testing.T) {
	db := setupDeliveriesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	storeID := uuid.New()
	today := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now().UTC()
	stale := createDelivery(t, db, storeID, "WC-STALE", today.AddDate(0, 0, -2), enums.DeliveryStatusScheduled, now)
	createDelivery(t, db, storeID, "WC-DONE", today.AddDate(0, 0, -2), enums.DeliveryStatusDelivered, now)
	createDelivery(t, db, storeID, "WC-TODAY", today, enums.DeliveryStatusScheduled, now)

	candidates, err := repo.ListOverdueCandidates(ctx, today)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "WC-STALE", candidates[0].OrderRef)

	flipped, err := repo.MarkOverdue(ctx, []uuid.UUID{stale.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), flipped)

	reloaded, err := repo.FindByID(ctx, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryStatusOverdue, reloaded.Status)

	again, err := repo.MarkOverdue(ctx, []uuid.UUID{stale.ID})
	require.NoError(t, err)
	assert.Zero(t, again)
}
