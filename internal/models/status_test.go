package models

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    OrderStatus
		to      OrderStatus
		wantErr bool
	}{
		{name: "pending to confirmed", from: StatusPendingApproval, to: StatusConfirmed, wantErr: false},
		{name: "pending to cancelled", from: StatusPendingApproval, to: StatusCancelled, wantErr: false},
		{name: "confirmed to preparing", from: StatusConfirmed, to: StatusPreparing, wantErr: false},
		{name: "confirmed to cancelled", from: StatusConfirmed, to: StatusCancelled, wantErr: false},
		{name: "preparing to ready", from: StatusPreparing, to: StatusReady, wantErr: false},
		{name: "preparing to cancelled", from: StatusPreparing, to: StatusCancelled, wantErr: false},
		{name: "ready to completed", from: StatusReady, to: StatusCompleted, wantErr: false},
		{name: "ready to cancelled rejected", from: StatusReady, to: StatusCancelled, wantErr: true},
		{name: "pending to preparing skips confirmed", from: StatusPendingApproval, to: StatusPreparing, wantErr: true},
		{name: "pending to ready skips two", from: StatusPendingApproval, to: StatusReady, wantErr: true},
		{name: "confirmed back to pending", from: StatusConfirmed, to: StatusPendingApproval, wantErr: true},
		{name: "completed is terminal", from: StatusCompleted, to: StatusCancelled, wantErr: true},
		{name: "cancelled is terminal", from: StatusCancelled, to: StatusConfirmed, wantErr: true},
		{name: "cancelled cannot cancel again", from: StatusCancelled, to: StatusCancelled, wantErr: true},
		{name: "no self transition", from: StatusPreparing, to: StatusPreparing, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanTransition(tt.from, tt.to)
			if (err != nil) != tt.wantErr {
				t.Errorf("CanTransition(%s, %s) error = %v, wantErr %v", tt.from, tt.to, err, tt.wantErr)
			}
			if err != nil && !IsInvalidTransition(err) {
				t.Errorf("CanTransition(%s, %s) returned %T, want *InvalidTransitionError", tt.from, tt.to, err)
			}
		})
	}
}

func TestFullWorkflowPath(t *testing.T) {
	path := []OrderStatus{
		StatusPendingApproval, StatusConfirmed, StatusPreparing, StatusReady, StatusCompleted,
	}
	for i := 1; i < len(path); i++ {
		if err := CanTransition(path[i-1], path[i]); err != nil {
			t.Fatalf("step %s -> %s rejected: %v", path[i-1], path[i], err)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status OrderStatus
		want   bool
	}{
		{StatusPendingApproval, false},
		{StatusConfirmed, false},
		{StatusPreparing, false},
		{StatusReady, false},
		{StatusCompleted, true},
		{StatusCancelled, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"pending_approval", false},
		{"confirmed", false},
		{"preparing", false},
		{"ready", false},
		{"completed", false},
		{"cancelled", false},
		{"delivered", true},
		{"Confirmed", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			status, err := ParseOrderStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseOrderStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && string(status) != tt.input {
				t.Errorf("ParseOrderStatus(%q) = %s", tt.input, status)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("ParseOrderStatus(%q) returned %T, want *ValidationError", tt.input, err)
			}
		})
	}
}

func TestErrorTaxonomy(t *testing.T) {
	if !errors.Is(ErrSlotFull, ErrSlotFull) {
		t.Error("ErrSlotFull should match itself via errors.Is")
	}
	if IsValidation(ErrNotFound) {
		t.Error("ErrNotFound should not be classified as a validation error")
	}
	if IsInvalidTransition(&ValidationError{Field: "status"}) {
		t.Error("ValidationError should not be classified as a transition error")
	}

	te := &InvalidTransitionError{From: StatusReady, To: StatusCancelled}
	want := "invalid transition from ready to cancelled"
	if te.Error() != want {
		t.Errorf("InvalidTransitionError.Error() = %q, want %q", te.Error(), want)
	}
}
