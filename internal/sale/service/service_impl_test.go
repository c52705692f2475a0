package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/neoledsrlbolivia/neopos/internal/auditcontext"
	catalogdomain "github.com/neoledsrlbolivia/neopos/internal/catalog/domain"
	cashdomain "github.com/neoledsrlbolivia/neopos/internal/cashdrawer/domain"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"github.com/neoledsrlbolivia/neopos/internal/events"
	saledomain "github.com/neoledsrlbolivia/neopos/internal/sale/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSaleTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&catalogdomain.Product{},
		&catalogdomain.Variant{},
		&cashdomain.Session{},
		&cashdomain.Movement{},
		&saledomain.Sale{},
		&saledomain.SaleItem{},
	); err != nil {
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

func newSaleService(t *testing.T, db *gorm.DB) *ServiceImpl {
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
		clock:  clock.Fixed(time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)),
	}
}

func seedVariant(t *testing.T, db *gorm.DB, svc *ServiceImpl, stock int) catalogdomain.Variant {
	t.Helper()
	variant := catalogdomain.Variant{
		ID:        svc.genID.Generate(),
		ProductID: svc.genID.Generate(),
		Name:      "Foco LED 9W",
		SalePrice: decimal.NewFromInt(10),
		Stock:     stock,
		Status:    catalogdomain.ProductActive,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("seed variant: %v", err)
	}
	return variant
}

func TestCreateSaleDecrementsStock(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := newSaleService(t, db)
	variant := seedVariant(t, db, svc, 10)

	sale, items, err := svc.Create(context.Background(), saledomain.CreateRequest{
		PaymentMethod: saledomain.PaymentQR,
		Items:         []saledomain.CreateItem{{VariantID: variant.ID.String(), Quantity: 3}},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if !sale.Total.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected total 30, got %s", sale.Total)
	}
	if len(items) != 1 || items[0].Quantity != 3 {
		t.Fatalf("unexpected items: %+v", items)
	}

	var after catalogdomain.Variant
	if err := db.First(&after, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if after.Stock != 7 {
		t.Fatalf("expected stock 7 after sale, got %d", after.Stock)
	}
}

func TestCreateSaleInsufficientStockRollsBack(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := newSaleService(t, db)
	variant := seedVariant(t, db, svc, 2)

	_, _, err := svc.Create(context.Background(), saledomain.CreateRequest{
		PaymentMethod: saledomain.PaymentQR,
		Items:         []saledomain.CreateItem{{VariantID: variant.ID.String(), Quantity: 5}},
	})
	if !errors.Is(err, saledomain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	var after catalogdomain.Variant
	if err := db.First(&after, "id = ?", variant.ID).Error; err != nil {
		t.Fatalf("reload variant: %v", err)
	}
	if after.Stock != 2 {
		t.Fatalf("stock must be untouched on failure, got %d", after.Stock)
	}

	var count int64
	if err := db.Model(&saledomain.Sale{}).Count(&count).Error; err != nil {
		t.Fatalf("count sales: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no sale rows, got %d", count)
	}
}

func TestCashSaleRecordsDrawerMovement(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := newSaleService(t, db)
	variant := seedVariant(t, db, svc, 10)

	session := cashdomain.Session{
		ID:            svc.genID.Generate(),
		OpeningAmount: decimal.NewFromInt(100),
		ClosingAmount: decimal.Zero,
		Status:        cashdomain.SessionOpen,
		OpenedAt:      time.Now().UTC(),
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}

	ctx := auditcontext.WithActor(context.Background(), "user", "42")
	sale, _, err := svc.Create(ctx, saledomain.CreateRequest{
		PaymentMethod: saledomain.PaymentCash,
		Items:         []saledomain.CreateItem{{VariantID: variant.ID.String(), Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.DrawerSessionID == nil || *sale.DrawerSessionID != session.ID {
		t.Fatalf("expected sale linked to open session, got %+v", sale.DrawerSessionID)
	}

	var movements []cashdomain.Movement
	if err := db.Where("session_id = ?", session.ID).Find(&movements).Error; err != nil {
		t.Fatalf("load movements: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 drawer movement, got %d", len(movements))
	}
	if movements[0].Type != cashdomain.MovementIn || !movements[0].Amount.Equal(sale.Total) {
		t.Fatalf("unexpected movement: %+v", movements[0])
	}
	if movements[0].SaleID == nil || *movements[0].SaleID != sale.ID {
		t.Fatalf("expected movement linked to sale")
	}
}

func TestCreateSaleValidation(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := newSaleService(t, db)

	_, _, err := svc.Create(context.Background(), saledomain.CreateRequest{
		PaymentMethod: "cheque",
		Items:         []saledomain.CreateItem{{VariantID: "1", Quantity: 1}},
	})
	if !errors.Is(err, saledomain.ErrInvalidPayment) {
		t.Fatalf("expected ErrInvalidPayment, got %v", err)
	}

	_, _, err = svc.Create(context.Background(), saledomain.CreateRequest{
		PaymentMethod: saledomain.PaymentQR,
	})
	if !errors.Is(err, saledomain.ErrInvalidItems) {
		t.Fatalf("expected ErrInvalidItems, got %v", err)
	}
}

func TestListByDateRange(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := newSaleService(t, db)
	variant := seedVariant(t, db, svc, 100)

	if _, _, err := svc.Create(context.Background(), saledomain.CreateRequest{
		PaymentMethod: saledomain.PaymentQR,
		Items:         []saledomain.CreateItem{{VariantID: variant.ID.String(), Quantity: 1}},
	}); err != nil {
		t.Fatalf("create sale: %v", err)
	}

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	inRange, err := svc.List(context.Background(), saledomain.ListRequest{From: day, To: day.Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(inRange) != 1 {
		t.Fatalf("expected 1 sale in range, got %d", len(inRange))
	}

	outOfRange, err := svc.List(context.Background(), saledomain.ListRequest{From: day.Add(24 * time.Hour)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(outOfRange) != 0 {
		t.Fatalf("expected no sales after the range, got %d", len(outOfRange))
	}
}

func TestExportExcel(t *testing.T) {
	db := setupSaleTestDB(t)
	svc := newSaleService(t, db)
	variant := seedVariant(t, db, svc, 100)

	if _, _, err := svc.Create(context.Background(), saledomain.CreateRequest{
		PaymentMethod: saledomain.PaymentQR,
		Items:         []saledomain.CreateItem{{VariantID: variant.ID.String(), Quantity: 2}},
	}); err != nil {
		t.Fatalf("create sale: %v", err)
	}

	export, err := svc.ExportExcel(context.Background(), saledomain.ListRequest{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.FileName != "ventas_2026-08-30.xlsx" {
		t.Fatalf("unexpected file name %q", export.FileName)
	}
	if len(export.Content) == 0 {
		t.Fatalf("expected workbook bytes")
	}
	// xlsx files are zip archives.
	if export.Content[0] != 'P' || export.Content[1] != 'K' {
		t.Fatalf("expected zip magic, got %v", export.Content[:2])
	}
}
