package domain

import (
	"context"
	"errors"
)

type UpsertRequest struct {
	ID        string // empty on insert
	ProductID string
	Title     string
	ImageURL  string
}

type Service interface {
	// List returns active slots in position order.
	List(ctx context.Context) ([]Slot, error)
	// Upsert inserts a slot at the end or updates an existing one.
	Upsert(ctx context.Context, req UpsertRequest) (Slot, error)
	// Reorder rewrites positions to match the given slot ID order.
	Reorder(ctx context.Context, ids []string) error
	Deactivate(ctx context.Context, id string) error
}

var (
	ErrInvalidID    = errors.New("invalid_slot_id")
	ErrNotFound     = errors.New("slot_not_found")
	ErrInvalidSlot  = errors.New("invalid_slot")
	ErrInvalidOrder = errors.New("invalid_slot_order")
)
