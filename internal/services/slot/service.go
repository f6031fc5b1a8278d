package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"canteen-system/internal/config"
	"canteen-system/internal/database"
	"canteen-system/internal/models"
)

// Service exposes the pickup-slot grid merged with the capacity ledger.
type Service struct {
	db    *database.DB
	slots config.SlotsConfig
}

// NewService creates the slot service.
func NewService(db *database.DB, slots config.SlotsConfig) *Service {
	return &Service{
		db:    db,
		slots: slots,
	}
}

// EnumerateStartTimes lists candidate slot start times from now until the
// end of today's operating window, on the configured interval grid. Slots
// whose start has already passed are excluded.
func EnumerateStartTimes(now time.Time, cfg config.SlotsConfig) []time.Time {
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	now = now.UTC()

	opening := time.Date(now.Year(), now.Month(), now.Day(), cfg.OpeningHour, 0, 0, 0, time.UTC)
	closing := time.Date(now.Year(), now.Month(), now.Day(), cfg.ClosingHour, 0, 0, 0, time.UTC)

	first := opening
	if now.After(opening) {
		// Round up to the next interval boundary.
		first = now.Truncate(interval)
		if first.Before(now) {
			first = first.Add(interval)
		}
	}

	var starts []time.Time
	for t := first; t.Before(closing); t = t.Add(interval) {
		starts = append(starts, t)
	}
	return starts
}

// ListSlots returns today's remaining slots with their ledger state. Slots
// with no row yet are implicitly empty and available.
func (s *Service) ListSlots(ctx context.Context, now time.Time) ([]models.Slot, error) {
	starts := EnumerateStartTimes(now, s.slots)
	if len(starts) == 0 {
		return []models.Slot{}, nil
	}

	interval := time.Duration(s.slots.IntervalMinutes) * time.Minute
	rows, err := s.db.Query(ctx, database.GetSlotsInRangeSQL, starts[0], starts[len(starts)-1].Add(interval))
	if err != nil {
		return nil, fmt.Errorf("failed to query slots: %w", err)
	}
	defer rows.Close()

	known := make(map[string]models.Slot)
	for rows.Next() {
		var slot models.Slot
		if err := rows.Scan(&slot.ID, &slot.StartTime, &slot.Capacity, &slot.CurrentOrders, &slot.Status); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		known[slot.ID] = slot
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slots := make([]models.Slot, 0, len(starts))
	for _, start := range starts {
		id := models.SlotID(start, interval)
		if slot, ok := known[id]; ok {
			slots = append(slots, slot)
			continue
		}
		slots = append(slots, models.Slot{
			ID:            id,
			StartTime:     start,
			Capacity:      s.slots.Capacity,
			CurrentOrders: 0,
			Status:        models.SlotAvailable,
		})
	}
	return slots, nil
}

// GetSlot returns the ledger entry for one slot id. A well-formed id with
// no row yet gets the implicit-empty defaults; an id that is not a slot
// start time is not found.
func (s *Service) GetSlot(ctx context.Context, slotID string) (*models.Slot, error) {
	var slot models.Slot
	err := s.db.QueryRow(ctx, database.GetSlotSQL, slotID).
		Scan(&slot.ID, &slot.StartTime, &slot.Capacity, &slot.CurrentOrders, &slot.Status)
	if err == nil {
		return &slot, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get slot: %w", err)
	}

	start, parseErr := time.Parse(time.RFC3339, slotID)
	if parseErr != nil {
		return nil, fmt.Errorf("slot %s: %w", slotID, models.ErrNotFound)
	}
	return &models.Slot{
		ID:            slotID,
		StartTime:     start,
		Capacity:      s.slots.Capacity,
		CurrentOrders: 0,
		Status:        models.SlotAvailable,
	}, nil
}
