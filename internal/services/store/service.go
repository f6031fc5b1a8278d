package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"canteen-system/internal/database"
)

// Service manages the single-row store settings: the admin open/closed
// gate consulted by every admission.
type Service struct {
	db *database.DB
}

// NewService creates the store settings service.
func NewService(db *database.DB) *Service {
	return &Service{db: db}
}

// IsOpen reports whether the store currently accepts new admissions.
// A missing settings row means open.
func (s *Service) IsOpen(ctx context.Context) (bool, error) {
	var isOpen bool
	err := s.db.QueryRow(ctx, database.GetStoreOpenSQL).Scan(&isOpen)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read store settings: %w", err)
	}
	return isOpen, nil
}

// SetOpen toggles the gate.
func (s *Service) SetOpen(ctx context.Context, isOpen bool) error {
	if err := s.db.Exec(ctx, database.SetStoreOpenSQL, isOpen); err != nil {
		return fmt.Errorf("failed to update store settings: %w", err)
	}
	return nil
}
