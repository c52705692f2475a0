package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	cashdomain "github.com/neoledsrlbolivia/neopos/internal/cashdrawer/domain"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"github.com/neoledsrlbolivia/neopos/internal/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDrawerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&cashdomain.Session{}, &cashdomain.Movement{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Exec(
		`CREATE TABLE IF NOT EXISTS pos_events (
			id INTEGER PRIMARY KEY,
			event_type TEXT NOT NULL,
			payload TEXT,
			dedupe_key TEXT UNIQUE,
			published BOOLEAN NOT NULL DEFAULT false,
			created_at TIMESTAMP NOT NULL
		)`,
	).Error; err != nil {
		t.Fatalf("create pos_events: %v", err)
	}
	return db
}

func newDrawerService(t *testing.T, db *gorm.DB) *ServiceImpl {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return &ServiceImpl{
		db:     db,
		log:    zap.NewNop(),
		genID:  node,
		outbox: events.NewOutbox(db, node),
		clock:  clock.Fixed(time.Date(2026, 8, 30, 8, 0, 0, 0, time.UTC)),
	}
}

func TestOpenRejectsSecondSession(t *testing.T) {
	db := setupDrawerTestDB(t)
	svc := newDrawerService(t, db)

	if _, err := svc.Open(context.Background(), decimal.NewFromInt(100)); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.Open(context.Background(), decimal.NewFromInt(50)); !errors.Is(err, cashdomain.ErrSessionAlreadyOpen) {
		t.Fatalf("expected ErrSessionAlreadyOpen, got %v", err)
	}
}

func TestCloseRecomputesBalance(t *testing.T) {
	db := setupDrawerTestDB(t)
	svc := newDrawerService(t, db)

	session, err := svc.Open(context.Background(), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, err := svc.RegisterMovement(context.Background(), cashdomain.MovementRequest{
		SessionID:   session.ID.String(),
		Type:        cashdomain.MovementIn,
		Description: "Venta en efectivo",
		Amount:      decimal.NewFromFloat(55.50),
	}); err != nil {
		t.Fatalf("register in: %v", err)
	}
	if _, err := svc.RegisterMovement(context.Background(), cashdomain.MovementRequest{
		SessionID:   session.ID.String(),
		Type:        cashdomain.MovementOut,
		Description: "Compra de bolsas",
		Amount:      decimal.NewFromInt(20),
	}); err != nil {
		t.Fatalf("register out: %v", err)
	}

	balance, err := svc.Balance(context.Background(), session.ID.String())
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !balance.Equal(decimal.NewFromFloat(135.50)) {
		t.Fatalf("expected balance 135.50, got %s", balance)
	}

	closed, err := svc.Close(context.Background(), session.ID.String())
	if err != nil {
		t.Fatalf("close: %v", err)
	}
	if !closed.ClosingAmount.Equal(decimal.NewFromFloat(135.50)) {
		t.Fatalf("expected closing 135.50, got %s", closed.ClosingAmount)
	}
	if closed.Status != cashdomain.SessionClosed || closed.ClosedAt == nil {
		t.Fatalf("expected closed session, got %+v", closed)
	}
}

func TestCloseRecordsOutboxEvent(t *testing.T) {
	db := setupDrawerTestDB(t)
	svc := newDrawerService(t, db)

	session, err := svc.Open(context.Background(), decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.Close(context.Background(), session.ID.String()); err != nil {
		t.Fatalf("close: %v", err)
	}

	var count int64
	if err := db.Table("pos_events").Where("event_type = ?", events.TypeDrawerClosed).Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 drawer close event, got %d", count)
	}

	// Closing an already-closed session fails and must not add an event.
	if _, err := svc.Close(context.Background(), session.ID.String()); !errors.Is(err, cashdomain.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if err := db.Table("pos_events").Count(&count).Error; err != nil {
		t.Fatalf("count events: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 event total, got %d", count)
	}
}

func TestMovementsRejectedAfterClose(t *testing.T) {
	db := setupDrawerTestDB(t)
	svc := newDrawerService(t, db)

	session, err := svc.Open(context.Background(), decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := svc.Close(context.Background(), session.ID.String()); err != nil {
		t.Fatalf("close: %v", err)
	}

	_, err = svc.RegisterMovement(context.Background(), cashdomain.MovementRequest{
		SessionID:   session.ID.String(),
		Type:        cashdomain.MovementIn,
		Description: "tarde",
		Amount:      decimal.NewFromInt(5),
	})
	if !errors.Is(err, cashdomain.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}

	if _, err := svc.Close(context.Background(), session.ID.String()); !errors.Is(err, cashdomain.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed on second close, got %v", err)
	}
}

func TestRegisterMovementValidation(t *testing.T) {
	db := setupDrawerTestDB(t)
	svc := newDrawerService(t, db)

	session, err := svc.Open(context.Background(), decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_, err = svc.RegisterMovement(context.Background(), cashdomain.MovementRequest{
		SessionID:   session.ID.String(),
		Type:        "transferencia",
		Description: "x",
		Amount:      decimal.NewFromInt(5),
	})
	if !errors.Is(err, cashdomain.ErrInvalidMovement) {
		t.Fatalf("expected ErrInvalidMovement for unknown type, got %v", err)
	}

	_, err = svc.RegisterMovement(context.Background(), cashdomain.MovementRequest{
		SessionID:   session.ID.String(),
		Type:        cashdomain.MovementIn,
		Description: "negativo",
		Amount:      decimal.NewFromInt(-5),
	})
	if !errors.Is(err, cashdomain.ErrInvalidMovement) {
		t.Fatalf("expected ErrInvalidMovement for non-positive amount, got %v", err)
	}
}

func TestCurrentSession(t *testing.T) {
	db := setupDrawerTestDB(t)
	svc := newDrawerService(t, db)

	if _, err := svc.CurrentSession(context.Background()); !errors.Is(err, cashdomain.ErrNoOpenSession) {
		t.Fatalf("expected ErrNoOpenSession, got %v", err)
	}

	opened, err := svc.Open(context.Background(), decimal.NewFromInt(10))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	current, err := svc.CurrentSession(context.Background())
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if current.ID != opened.ID {
		t.Fatalf("expected session %s, got %s", opened.ID, current.ID)
	}
}
