package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type MovementRequest struct {
	SessionID   string
	Type        MovementType
	Description string
	Amount      decimal.Decimal
}

type ListMovementsRequest struct {
	SessionID string
	UserID    string
}

type Service interface {
	// Open starts a drawer session. Only one session may be open at a time.
	Open(ctx context.Context, openingAmount decimal.Decimal) (Session, error)
	// Close recomputes the closing amount from recorded movements and
	// marks the session closed.
	Close(ctx context.Context, id string) (Session, error)
	CurrentSession(ctx context.Context) (Session, error)
	// Balance returns opening + inflows - outflows for a session.
	Balance(ctx context.Context, id string) (decimal.Decimal, error)
	RegisterMovement(ctx context.Context, req MovementRequest) (Movement, error)
	ListMovements(ctx context.Context, req ListMovementsRequest) ([]Movement, error)
}

var (
	ErrInvalidID          = errors.New("invalid_session_id")
	ErrSessionNotFound    = errors.New("drawer_session_not_found")
	ErrNoOpenSession      = errors.New("no_open_drawer_session")
	ErrSessionAlreadyOpen = errors.New("drawer_session_already_open")
	ErrSessionClosed      = errors.New("drawer_session_closed")
	ErrInvalidMovement    = errors.New("invalid_movement")
	ErrInvalidAmount      = errors.New("invalid_amount")
)
