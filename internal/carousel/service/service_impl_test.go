package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	carouseldomain "github.com/neoledsrlbolivia/neopos/internal/carousel/domain"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newCarouselService(t *testing.T) *ServiceImpl {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&carouseldomain.Slot{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return &ServiceImpl{
		db:    db,
		log:   zap.NewNop(),
		genID: node,
		clock: clock.Fixed(time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)),
	}
}

func TestUpsertAppendsAtEnd(t *testing.T) {
	svc := newCarouselService(t)

	first, err := svc.Upsert(context.Background(), carouseldomain.UpsertRequest{ProductID: "1", Title: "Ofertas LED"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := svc.Upsert(context.Background(), carouseldomain.UpsertRequest{ProductID: "2", Title: "Nuevos"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.Position != 1 || second.Position != 2 {
		t.Fatalf("expected positions 1,2 got %d,%d", first.Position, second.Position)
	}
}

func TestUpsertUpdatesExisting(t *testing.T) {
	svc := newCarouselService(t)

	slot, err := svc.Upsert(context.Background(), carouseldomain.UpsertRequest{ProductID: "1", Title: "Ofertas"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	updated, err := svc.Upsert(context.Background(), carouseldomain.UpsertRequest{
		ID:        slot.ID.String(),
		ProductID: "1",
		Title:     "Ofertas de Agosto",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Ofertas de Agosto" || updated.Position != slot.Position {
		t.Fatalf("unexpected update: %+v", updated)
	}
}

func TestReorderAndList(t *testing.T) {
	svc := newCarouselService(t)

	a, _ := svc.Upsert(context.Background(), carouseldomain.UpsertRequest{ProductID: "1", Title: "A"})
	b, _ := svc.Upsert(context.Background(), carouseldomain.UpsertRequest{ProductID: "2", Title: "B"})
	c, _ := svc.Upsert(context.Background(), carouseldomain.UpsertRequest{ProductID: "3", Title: "C"})

	if err := svc.Reorder(context.Background(), []string{c.ID.String(), a.ID.String(), b.ID.String()}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	slots, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(slots) != 3 || slots[0].Title != "C" || slots[1].Title != "A" || slots[2].Title != "B" {
		t.Fatalf("unexpected order: %+v", slots)
	}
}

func TestReorderRejectsUnknownAndDuplicateIDs(t *testing.T) {
	svc := newCarouselService(t)

	a, _ := svc.Upsert(context.Background(), carouseldomain.UpsertRequest{ProductID: "1", Title: "A"})

	if err := svc.Reorder(context.Background(), []string{a.ID.String(), "999"}); !errors.Is(err, carouseldomain.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for unknown id, got %v", err)
	}
	if err := svc.Reorder(context.Background(), []string{a.ID.String(), a.ID.String()}); !errors.Is(err, carouseldomain.ErrInvalidOrder) {
		t.Fatalf("expected ErrInvalidOrder for duplicate id, got %v", err)
	}
}

func TestDeactivateHidesSlot(t *testing.T) {
	svc := newCarouselService(t)

	slot, err := svc.Upsert(context.Background(), carouseldomain.UpsertRequest{ProductID: "1", Title: "A"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := svc.Deactivate(context.Background(), slot.ID.String()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	slots, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no active slots, got %d", len(slots))
	}

	if err := svc.Deactivate(context.Background(), "999"); !errors.Is(err, carouseldomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
