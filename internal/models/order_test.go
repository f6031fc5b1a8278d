package models

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func validCreateOrderRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		CustomerName:   "Asel Nurlanovna",
		CustomerMobile: "+7 701 123 45 67",
		Items: []OrderItem{
			{MenuItemID: "itm-1", Name: "Plov", Quantity: 2, Price: 5.50},
			{MenuItemID: "itm-2", Name: "Green Tea", Quantity: 1, Price: 1.25},
		},
		SlotID:        "2026-03-02T12:15:00Z",
		SlotStartTime: time.Date(2026, 3, 2, 12, 15, 0, 0, time.UTC),
		TransactionID: "txn-9001",
	}
}

func TestCreateOrderRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*CreateOrderRequest)
		wantErr bool
	}{
		{name: "valid request", mutate: func(r *CreateOrderRequest) {}, wantErr: false},
		{name: "missing customer name", mutate: func(r *CreateOrderRequest) { r.CustomerName = "" }, wantErr: true},
		{name: "empty items", mutate: func(r *CreateOrderRequest) { r.Items = nil }, wantErr: true},
		{name: "zero quantity item", mutate: func(r *CreateOrderRequest) { r.Items[0].Quantity = 0 }, wantErr: true},
		{name: "negative price item", mutate: func(r *CreateOrderRequest) { r.Items[0].Price = -1 }, wantErr: true},
		{name: "missing slot id", mutate: func(r *CreateOrderRequest) { r.SlotID = "" }, wantErr: true},
		{name: "missing transaction id", mutate: func(r *CreateOrderRequest) { r.TransactionID = "" }, wantErr: true},
		{name: "mobile too short", mutate: func(r *CreateOrderRequest) { r.CustomerMobile = "12345" }, wantErr: true},
		{name: "mobile with letters", mutate: func(r *CreateOrderRequest) { r.CustomerMobile = "phone1234567890" }, wantErr: true},
		{
			name: "too many items",
			mutate: func(r *CreateOrderRequest) {
				r.Items = nil
				for i := 0; i < maxItemsPerOrder+1; i++ {
					r.Items = append(r.Items, OrderItem{MenuItemID: "itm-1", Name: "Plov", Quantity: 1, Price: 1})
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateOrderRequest()
			tt.mutate(req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("Validate() returned %T, want *ValidationError", err)
			}
		})
	}
}

func TestCreateOrderRequestTotalAmount(t *testing.T) {
	req := &CreateOrderRequest{
		Items: []OrderItem{
			{Name: "Lagman", Quantity: 2, Price: 6.00},
			{Name: "Samsa", Quantity: 3, Price: 1.50},
			{Name: "Compote", Quantity: 1, Price: 1.00},
		},
	}
	if got := req.TotalAmount(); got != 17.50 {
		t.Errorf("TotalAmount() = %v, want 17.50", got)
	}
}

func TestCreateOrderRequestSanitize(t *testing.T) {
	req := validCreateOrderRequest()
	req.CustomerName = "  Asel  "
	req.TransactionID = "<script>alert(1)</script>"
	req.Sanitize()

	if req.CustomerName != "Asel" {
		t.Errorf("CustomerName = %q, want trimmed", req.CustomerName)
	}
	if strings.Contains(req.TransactionID, "<") {
		t.Errorf("TransactionID = %q, want HTML-escaped", req.TransactionID)
	}
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{name: "plain text untouched", input: "hello", maxLength: 10, want: "hello"},
		{name: "whitespace trimmed", input: "  hi  ", maxLength: 10, want: "hi"},
		{name: "html escaped", input: "a<b>c", maxLength: 32, want: "a&lt;b&gt;c"},
		{name: "length capped", input: "abcdefghij", maxLength: 4, want: "abcd"},
		{name: "rune straddling the cap dropped whole", input: strings.Repeat("a", 63) + "é", maxLength: 64, want: strings.Repeat("a", 63)},
		{name: "multi-byte text capped on rune boundary", input: "тапсырыс", maxLength: 5, want: "та"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeText(tt.input, tt.maxLength)
			if got != tt.want {
				t.Errorf("SanitizeText(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("SanitizeText(%q, %d) produced invalid UTF-8", tt.input, tt.maxLength)
			}
		})
	}
}

func TestSlotID(t *testing.T) {
	interval := 15 * time.Minute
	tests := []struct {
		name  string
		start time.Time
		want  string
	}{
		{
			name:  "already aligned",
			start: time.Date(2026, 3, 2, 12, 15, 0, 0, time.UTC),
			want:  "2026-03-02T12:15:00Z",
		},
		{
			name:  "truncated down",
			start: time.Date(2026, 3, 2, 12, 22, 31, 0, time.UTC),
			want:  "2026-03-02T12:15:00Z",
		},
		{
			name:  "non-utc normalized",
			start: time.Date(2026, 3, 2, 18, 15, 0, 0, time.FixedZone("ALMT", 6*3600)),
			want:  "2026-03-02T12:15:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SlotID(tt.start, interval); got != tt.want {
				t.Errorf("SlotID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSlotAdmissible(t *testing.T) {
	tests := []struct {
		name string
		slot Slot
		want bool
	}{
		{name: "empty available slot", slot: Slot{Capacity: 150, CurrentOrders: 0, Status: SlotAvailable}, want: true},
		{name: "one seat left", slot: Slot{Capacity: 150, CurrentOrders: 149, Status: SlotAvailable}, want: true},
		{name: "at capacity", slot: Slot{Capacity: 150, CurrentOrders: 150, Status: SlotAvailable}, want: false},
		{name: "marked full", slot: Slot{Capacity: 150, CurrentOrders: 10, Status: SlotFull}, want: false},
		{name: "closed by admin", slot: Slot{Capacity: 150, CurrentOrders: 0, Status: SlotClosed}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.slot.Admissible(); got != tt.want {
				t.Errorf("Admissible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlotRemaining(t *testing.T) {
	s := Slot{Capacity: 20, CurrentOrders: 18}
	if got := s.Remaining(); got != 2 {
		t.Errorf("Remaining() = %d, want 2", got)
	}
	s.CurrentOrders = 25
	if got := s.Remaining(); got != 0 {
		t.Errorf("Remaining() with overflow = %d, want 0", got)
	}
}
