package models

import "time"

// ProductCategory groups menu items for display.
type ProductCategory string

const (
	CategoryBreakfast ProductCategory = "breakfast"
	CategoryLunch     ProductCategory = "lunch"
	CategorySnacks    ProductCategory = "snacks"
	CategoryBeverages ProductCategory = "beverages"
)

// MenuItem is read-mostly reference data owned by admin operations. Orders
// snapshot name and price at checkout, so edits here never affect placed
// orders.
type MenuItem struct {
	ID              string          `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Description     string          `json:"description" db:"description"`
	Price           float64         `json:"price" db:"price"`
	Category        ProductCategory `json:"category" db:"category"`
	ImageURL        string          `json:"image_url,omitempty" db:"image_url"`
	IsAvailable     bool            `json:"is_available" db:"is_available"`
	PreparationTime int             `json:"preparation_time" db:"preparation_time"`
	CreatedAt       time.Time       `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at,omitempty" db:"updated_at"`
}

// CreateMenuItemRequest is the admin payload for adding a menu item.
type CreateMenuItemRequest struct {
	Name            string          `json:"name" validate:"required,max=100"`
	Description     string          `json:"description" validate:"max=500"`
	Price           float64         `json:"price" validate:"gt=0"`
	Category        ProductCategory `json:"category" validate:"required,oneof=breakfast lunch snacks beverages"`
	ImageURL        string          `json:"image_url" validate:"omitempty,url"`
	IsAvailable     bool            `json:"is_available"`
	PreparationTime int             `json:"preparation_time" validate:"gte=0,lte=120"`
}

// Validate checks the menu item payload.
func (req *CreateMenuItemRequest) Validate() error {
	if err := validate.Struct(req); err != nil {
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// UpdateMenuItemRequest carries partial menu item updates. Nil fields are
// left untouched.
type UpdateMenuItemRequest struct {
	Name            *string  `json:"name,omitempty"`
	Description     *string  `json:"description,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	IsAvailable     *bool    `json:"is_available,omitempty"`
	PreparationTime *int     `json:"preparation_time,omitempty"`
}

// Validate checks the partial update payload.
func (req *UpdateMenuItemRequest) Validate() error {
	if req.Price != nil && *req.Price <= 0 {
		return &ValidationError{Field: "price", Message: "must be positive"}
	}
	if req.Name != nil && (*req.Name == "" || len(*req.Name) > 100) {
		return &ValidationError{Field: "name", Message: "must be 1-100 characters"}
	}
	if req.PreparationTime != nil && (*req.PreparationTime < 0 || *req.PreparationTime > 120) {
		return &ValidationError{Field: "preparation_time", Message: "must be 0-120 minutes"}
	}
	return nil
}
