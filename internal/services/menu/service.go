package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"canteen-system/internal/database"
	"canteen-system/internal/models"
)

// Service manages the menu reference data. Menu reads and writes are not on
// the admission path; placed orders carry their own price snapshot.
type Service struct {
	db *database.DB
}

// NewService creates the menu service.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// ListAvailable returns the customer-facing menu.
func (s *Service) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	return s.list(ctx, database.ListAvailableMenuItemsSQL)
}

// ListAll returns every menu item including unavailable ones (admin view).
func (s *Service) ListAll(ctx context.Context) ([]models.MenuItem, error) {
	return s.list(ctx, database.ListAllMenuItemsSQL)
}

func (s *Service) list(ctx context.Context, query string) ([]models.MenuItem, error) {
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.Price,
			&item.Category, &item.ImageURL, &item.IsAvailable,
			&item.PreparationTime, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Get returns a single menu item.
func (s *Service) Get(ctx context.Context, id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := s.db.QueryRow(ctx, database.GetMenuItemSQL, id).
		Scan(&item.ID, &item.Name, &item.Description, &item.Price,
			&item.Category, &item.ImageURL, &item.IsAvailable,
			&item.PreparationTime, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("menu item %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}
	return &item, nil
}

// Create adds a new menu item.
func (s *Service) Create(ctx context.Context, req *models.CreateMenuItemRequest) (*models.MenuItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	item := &models.MenuItem{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(req.Name),
		Description:     strings.TrimSpace(req.Description),
		Price:           req.Price,
		Category:        req.Category,
		ImageURL:        req.ImageURL,
		IsAvailable:     req.IsAvailable,
		PreparationTime: req.PreparationTime,
	}

	err := s.db.QueryRow(ctx, database.InsertMenuItemSQL,
		item.ID, item.Name, item.Description, item.Price, item.Category,
		item.ImageURL, item.IsAvailable, item.PreparationTime).Scan(&item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert menu item: %w", err)
	}
	return item, nil
}

// Update applies a partial update. Placed orders keep their snapshot; a
// price change here never touches existing orders.
func (s *Service) Update(ctx context.Context, id string, req *models.UpdateMenuItemRequest) (*models.MenuItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	arg := 1

	addSet := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, arg))
		args = append(args, value)
		arg++
	}

	if req.Name != nil {
		addSet("name", *req.Name)
	}
	if req.Description != nil {
		addSet("description", *req.Description)
	}
	if req.Price != nil {
		addSet("price", *req.Price)
	}
	if req.IsAvailable != nil {
		addSet("is_available", *req.IsAvailable)
	}
	if req.PreparationTime != nil {
		addSet("preparation_time", *req.PreparationTime)
	}

	query := fmt.Sprintf("UPDATE menu_items SET %s WHERE id = $%d", strings.Join(sets, ", "), arg)
	args = append(args, id)

	tag, err := s.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("menu item %s: %w", id, models.ErrNotFound)
	}

	return s.Get(ctx, id)
}

// Seed inserts a starter menu when the table is empty.
func (s *Service) Seed(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count menu items: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	seeds := []models.CreateMenuItemRequest{
		{Name: "Avocado Toast", Description: "Sourdough, smashed avocado, chili flakes", Price: 12, Category: models.CategoryBreakfast, PreparationTime: 10, IsAvailable: true},
		{Name: "Truffle Burger", Description: "Angus beef, truffle mayo, brioche bun", Price: 18, Category: models.CategoryLunch, PreparationTime: 20, IsAvailable: true},
		{Name: "Quinoa Salad", Description: "Kale, quinoa, cherry tomatoes, lemon vinaigrette", Price: 14, Category: models.CategoryLunch, PreparationTime: 10, IsAvailable: true},
		{Name: "Espresso", Description: "Double shot single origin", Price: 3.5, Category: models.CategoryBeverages, PreparationTime: 5, IsAvailable: true},
		{Name: "Matcha Latte", Description: "Ceremonial grade matcha, oat milk", Price: 5.5, Category: models.CategoryBeverages, PreparationTime: 5, IsAvailable: true},
		{Name: "Acai Bowl", Description: "Organic acai, granola, fresh berries", Price: 15, Category: models.CategoryBreakfast, PreparationTime: 12, IsAvailable: true},
	}

	for i := range seeds {
		if _, err := s.Create(ctx, &seeds[i]); err != nil {
			return i, fmt.Errorf("failed to seed menu: %w", err)
		}
	}
	return len(seeds), nil
}
