package notification

import (
	"strings"
	"testing"
	"time"

	"canteen-system/internal/models"
)

func TestFormatNotification(t *testing.T) {
	ts := time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		status models.OrderStatus
		want   string
	}{
		{models.StatusPendingApproval, "awaiting payment verification"},
		{models.StatusConfirmed, "payment verified"},
		{models.StatusPreparing, "being prepared"},
		{models.StatusReady, "ready for pickup"},
		{models.StatusCompleted, "picked up"},
		{models.StatusCancelled, "cancelled"},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			line := FormatNotification(&models.StatusNotification{
				OrderNumber:  "ORD_20260302_001",
				CustomerName: "Asel",
				NewStatus:    tt.status,
				Timestamp:    ts,
			})
			if !strings.Contains(line, tt.want) {
				t.Errorf("FormatNotification(%s) = %q, want it to mention %q", tt.status, line, tt.want)
			}
			if !strings.Contains(line, "ORD_20260302_001") {
				t.Errorf("FormatNotification(%s) = %q, missing order number", tt.status, line)
			}
			if !strings.Contains(line, "2026-03-02 12:30:00") {
				t.Errorf("FormatNotification(%s) = %q, missing timestamp", tt.status, line)
			}
		})
	}
}
