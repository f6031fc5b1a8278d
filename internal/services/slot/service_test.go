package slot

import (
	"testing"
	"time"

	"canteen-system/internal/config"
)

func testSlotsConfig() config.SlotsConfig {
	return config.SlotsConfig{
		IntervalMinutes: 15,
		Capacity:        150,
		OpeningHour:     8,
		ClosingHour:     20,
	}
}

func TestEnumerateStartTimes(t *testing.T) {
	cfg := testSlotsConfig()

	tests := []struct {
		name      string
		now       time.Time
		wantFirst time.Time
		wantLast  time.Time
		wantCount int
	}{
		{
			name:      "before opening yields full day",
			now:       time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC),
			wantFirst: time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
			wantLast:  time.Date(2026, 3, 2, 19, 45, 0, 0, time.UTC),
			wantCount: 48,
		},
		{
			name:      "mid-day rounds up to next boundary",
			now:       time.Date(2026, 3, 2, 12, 7, 30, 0, time.UTC),
			wantFirst: time.Date(2026, 3, 2, 12, 15, 0, 0, time.UTC),
			wantLast:  time.Date(2026, 3, 2, 19, 45, 0, 0, time.UTC),
			wantCount: 31,
		},
		{
			name:      "exactly on boundary keeps it",
			now:       time.Date(2026, 3, 2, 12, 15, 0, 0, time.UTC),
			wantFirst: time.Date(2026, 3, 2, 12, 15, 0, 0, time.UTC),
			wantLast:  time.Date(2026, 3, 2, 19, 45, 0, 0, time.UTC),
			wantCount: 31,
		},
		{
			name:      "after closing yields nothing",
			now:       time.Date(2026, 3, 2, 20, 30, 0, 0, time.UTC),
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			starts := EnumerateStartTimes(tt.now, cfg)
			if len(starts) != tt.wantCount {
				t.Fatalf("got %d start times, want %d", len(starts), tt.wantCount)
			}
			if tt.wantCount == 0 {
				return
			}
			if !starts[0].Equal(tt.wantFirst) {
				t.Errorf("first start = %v, want %v", starts[0], tt.wantFirst)
			}
			if !starts[len(starts)-1].Equal(tt.wantLast) {
				t.Errorf("last start = %v, want %v", starts[len(starts)-1], tt.wantLast)
			}
		})
	}
}

func TestEnumerateStartTimesGridSpacing(t *testing.T) {
	cfg := testSlotsConfig()
	now := time.Date(2026, 3, 2, 9, 1, 0, 0, time.UTC)

	starts := EnumerateStartTimes(now, cfg)
	if len(starts) < 2 {
		t.Fatalf("expected multiple slots, got %d", len(starts))
	}
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	for i := 1; i < len(starts); i++ {
		if starts[i].Sub(starts[i-1]) != interval {
			t.Errorf("gap between %v and %v is not %v", starts[i-1], starts[i], interval)
		}
	}
	for _, s := range starts {
		if !s.Truncate(interval).Equal(s) {
			t.Errorf("start %v is not on the interval grid", s)
		}
	}
}
