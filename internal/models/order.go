package models

import (
	"html"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

const (
	maxItemsPerOrder    = 20
	maxTransactionIDLen = 64
	minMobileDigits     = 10
)

var validate = validator.New()

// OrderItem is a line item snapshot carried from the cart at checkout.
// Name and price are frozen at admission time; later menu edits never
// change a placed order.
type OrderItem struct {
	ID         int     `json:"id,omitempty" db:"id"`
	OrderID    string  `json:"order_id,omitempty" db:"order_id"`
	MenuItemID string  `json:"menu_item_id" db:"menu_item_id" validate:"required"`
	Name       string  `json:"name" db:"name" validate:"required,max=100"`
	Quantity   int     `json:"quantity" db:"quantity" validate:"gte=1,lte=50"`
	Price      float64 `json:"price" db:"price" validate:"gt=0"`
}

// Order represents a placed customer order.
type Order struct {
	ID             string      `json:"id" db:"id"`
	Number         string      `json:"order_number" db:"number"`
	UserID         string      `json:"user_id" db:"user_id"`
	UserEmail      string      `json:"user_email" db:"user_email"`
	CustomerName   string      `json:"customer_name" db:"customer_name"`
	CustomerMobile string      `json:"customer_mobile" db:"customer_mobile"`
	Items          []OrderItem `json:"items"`
	TotalAmount    float64     `json:"total_amount" db:"total_amount"`
	Status         OrderStatus `json:"status" db:"status"`
	SlotID         string      `json:"slot_id" db:"slot_id"`
	ScheduledTime  time.Time   `json:"scheduled_time" db:"scheduled_time"`
	TransactionID  string      `json:"transaction_id" db:"transaction_id"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at,omitempty" db:"updated_at"`
}

// StatusLogEntry is one row of the order status audit trail.
type StatusLogEntry struct {
	Status    OrderStatus `json:"status" db:"status"`
	ChangedBy string      `json:"changed_by" db:"changed_by"`
	ChangedAt time.Time   `json:"timestamp" db:"changed_at"`
	Notes     *string     `json:"notes,omitempty" db:"notes"`
}

// CreateOrderRequest is the checkout payload. Prices and names are the
// cart snapshot resolved by the UI; they are deliberately not re-read from
// the menu during admission.
type CreateOrderRequest struct {
	CustomerName   string      `json:"customer_name" validate:"required,max=100"`
	CustomerMobile string      `json:"customer_mobile" validate:"required"`
	Items          []OrderItem `json:"items" validate:"required,min=1,dive"`
	SlotID         string      `json:"slot_id" validate:"required"`
	SlotStartTime  time.Time   `json:"slot_start_time" validate:"required"`
	TransactionID  string      `json:"transaction_id" validate:"required"`
}

// CreateOrderResponse is returned after a successful admission.
type CreateOrderResponse struct {
	OrderID     string  `json:"order_id"`
	OrderNumber string  `json:"order_number"`
	Status      string  `json:"status"`
	TotalAmount float64 `json:"total_amount"`
}

// Validate checks the checkout payload before any store interaction.
func (req *CreateOrderRequest) Validate() error {
	if err := validate.Struct(req); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ValidationError{
				Field:   strings.ToLower(fe.Field()),
				Message: "failed " + fe.Tag() + " constraint",
			}
		}
		return &ValidationError{Message: err.Error()}
	}

	if len(req.Items) > maxItemsPerOrder {
		return &ValidationError{Field: "items", Message: "too many items in one order"}
	}
	if err := validateMobile(req.CustomerMobile); err != nil {
		return err
	}
	return nil
}

// Sanitize normalizes free-text fields in place. The transaction reference
// is customer-typed text shown to admins, so it is escaped and length-capped.
func (req *CreateOrderRequest) Sanitize() {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerMobile = strings.TrimSpace(req.CustomerMobile)
	req.TransactionID = SanitizeText(req.TransactionID, maxTransactionIDLen)
}

// TotalAmount computes the order total from the line-item snapshot. It is
// computed once at admission and stored; it is never recomputed later.
func (req *CreateOrderRequest) TotalAmount() float64 {
	total := 0.0
	for _, item := range req.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// SanitizeText escapes HTML metacharacters and caps the byte length of
// user-supplied free text. The cap never splits a multi-byte rune; the
// result is always valid UTF-8.
func SanitizeText(input string, maxLength int) string {
	sanitized := html.EscapeString(strings.TrimSpace(input))
	if len(sanitized) > maxLength {
		cut := maxLength
		for cut > 0 && !utf8.RuneStart(sanitized[cut]) {
			cut--
		}
		sanitized = sanitized[:cut]
	}
	return sanitized
}

func validateMobile(mobile string) error {
	digits := 0
	for _, r := range mobile {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == ' ' || r == '-':
		default:
			return &ValidationError{Field: "customer_mobile", Message: "contains invalid characters"}
		}
	}
	if digits < minMobileDigits {
		return &ValidationError{Field: "customer_mobile", Message: "must contain at least 10 digits"}
	}
	return nil
}
