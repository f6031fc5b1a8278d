package models

import "time"

// SlotStatus represents the admission state of a pickup slot.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotFull      SlotStatus = "full"
	SlotClosed    SlotStatus = "closed"
)

// Slot is the capacity ledger entry for one pickup-time window. Slots are
// materialized lazily on first admission; a slot that has no row yet is
// treated as empty and available.
type Slot struct {
	ID            string     `json:"id" db:"id"`
	StartTime     time.Time  `json:"start_time" db:"start_time"`
	Capacity      int        `json:"capacity" db:"capacity"`
	CurrentOrders int        `json:"current_orders" db:"current_orders"`
	Status        SlotStatus `json:"status" db:"status"`
}

// SlotID returns the canonical slot identifier for a start time: the RFC3339
// UTC timestamp of the slot start, quantized to the given interval.
func SlotID(start time.Time, interval time.Duration) string {
	return start.UTC().Truncate(interval).Format(time.RFC3339)
}

// Remaining returns how many more orders the slot can accept.
func (s *Slot) Remaining() int {
	if s.CurrentOrders >= s.Capacity {
		return 0
	}
	return s.Capacity - s.CurrentOrders
}

// Admissible reports whether the slot can accept one more order.
func (s *Slot) Admissible() bool {
	return s.Status == SlotAvailable && s.CurrentOrders < s.Capacity
}
