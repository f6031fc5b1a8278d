package slot

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"canteen-system/internal/database"
	"canteen-system/internal/logger"
	"canteen-system/internal/models"
)

func setupTestService(t *testing.T) (*Service, *database.DB) {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := database.NewFromURL(ctx, url, logger.New("slot-service-test"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(ctx, "../../../migrations"))

	cleanup := func() {
		for _, table := range []string{"order_status_log", "order_items", "orders", "time_slots"} {
			require.NoError(t, db.Exec(ctx, "DELETE FROM "+table))
		}
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		db.Close()
	})

	return NewService(db, testSlotsConfig()), db
}

func TestGetSlot(t *testing.T) {
	service, db := setupTestService(t)
	ctx := context.Background()

	start := time.Now().UTC().AddDate(0, 0, 1).Truncate(15 * time.Minute)
	slotID := models.SlotID(start, 15*time.Minute)

	t.Run("absent slot gets implicit defaults", func(t *testing.T) {
		slot, err := service.GetSlot(ctx, slotID)
		require.NoError(t, err)
		assert.Equal(t, slotID, slot.ID)
		assert.Zero(t, slot.CurrentOrders)
		assert.Equal(t, 150, slot.Capacity)
		assert.Equal(t, models.SlotAvailable, slot.Status)
	})

	t.Run("materialized slot reflects the ledger", func(t *testing.T) {
		require.NoError(t, db.Exec(ctx, database.EnsureSlotSQL, slotID, start, 150))
		require.NoError(t, db.Exec(ctx, database.UpdateSlotCountSQL, 7, models.SlotAvailable, slotID))

		slot, err := service.GetSlot(ctx, slotID)
		require.NoError(t, err)
		assert.Equal(t, 7, slot.CurrentOrders)
		assert.Equal(t, 150, slot.Capacity)
	})

	t.Run("malformed id is not found", func(t *testing.T) {
		_, err := service.GetSlot(ctx, "lunch-rush")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
