package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/neoledsrlbolivia/neopos/internal/catalog/domain"
	"github.com/neoledsrlbolivia/neopos/internal/cache"
	"github.com/neoledsrlbolivia/neopos/internal/clock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&catalogdomain.Product{},
		&catalogdomain.Variant{},
		&catalogdomain.Attribute{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newCatalogService(t *testing.T, db *gorm.DB) *ServiceImpl {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return &ServiceImpl{
		db:         db,
		log:        zap.NewNop(),
		genID:      node,
		clock:      clock.Fixed(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)),
		attrLookup: cache.NewTTLCache[catalogdomain.AttributeKind, []string](8),
	}
}

func productRequest() catalogdomain.CreateProductRequest {
	return catalogdomain.CreateProductRequest{
		Name:     "Foco LED",
		Location: "Estante A3",
		Category: "Iluminación",
		Type:     "Foco",
		Variants: []catalogdomain.VariantInput{
			{Name: "9W Luz Fría", SalePrice: decimal.NewFromInt(10), Stock: 20},
			{Name: "12W Luz Cálida", SalePrice: decimal.NewFromInt(14), Stock: 5},
		},
	}
}

func TestCreateAndGetProduct(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)

	product, variants, err := svc.CreateProduct(context.Background(), productRequest())
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}

	got, gotVariants, err := svc.GetProduct(context.Background(), product.ID.String())
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if got.Name != "Foco LED" || got.Status != catalogdomain.ProductActive {
		t.Fatalf("unexpected product: %+v", got)
	}
	if len(gotVariants) != 2 {
		t.Fatalf("expected 2 variants on get, got %d", len(gotVariants))
	}
}

func TestCreateProductValidation(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)

	req := productRequest()
	req.Name = "  "
	if _, _, err := svc.CreateProduct(context.Background(), req); !errors.Is(err, catalogdomain.ErrInvalidProduct) {
		t.Fatalf("expected ErrInvalidProduct, got %v", err)
	}

	req = productRequest()
	req.Variants = nil
	if _, _, err := svc.CreateProduct(context.Background(), req); !errors.Is(err, catalogdomain.ErrInvalidVariant) {
		t.Fatalf("expected ErrInvalidVariant, got %v", err)
	}
}

func TestListProductsFiltersArchived(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)

	first, _, err := svc.CreateProduct(context.Background(), productRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second := productRequest()
	second.Name = "Cinta LED"
	if _, _, err := svc.CreateProduct(context.Background(), second); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.ArchiveProduct(context.Background(), first.ID.String()); err != nil {
		t.Fatalf("archive: %v", err)
	}

	active, err := svc.ListProducts(context.Background(), catalogdomain.ListProductsRequest{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 1 || active[0].Name != "Cinta LED" {
		t.Fatalf("expected only the active product, got %+v", active)
	}

	all, err := svc.ListProducts(context.Background(), catalogdomain.ListProductsRequest{IncludeArchived: true})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 products including archived, got %d", len(all))
	}
}

func TestListProductsNameFilter(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)

	if _, _, err := svc.CreateProduct(context.Background(), productRequest()); err != nil {
		t.Fatalf("create: %v", err)
	}
	other := productRequest()
	other.Name = "Reflector Exterior"
	if _, _, err := svc.CreateProduct(context.Background(), other); err != nil {
		t.Fatalf("create: %v", err)
	}

	matches, err := svc.ListProducts(context.Background(), catalogdomain.ListProductsRequest{Name: "foco"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(matches) != 1 || matches[0].Name != "Foco LED" {
		t.Fatalf("expected case-insensitive name match, got %+v", matches)
	}
}

func TestAdjustStock(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)

	_, variants, err := svc.CreateProduct(context.Background(), productRequest())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	variant := variants[0]

	updated, err := svc.AdjustStock(context.Background(), variant.ID.String(), -5)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if updated.Stock != 15 {
		t.Fatalf("expected stock 15, got %d", updated.Stock)
	}

	if _, err := svc.AdjustStock(context.Background(), variant.ID.String(), -100); !errors.Is(err, catalogdomain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	after, err := svc.GetVariant(context.Background(), variant.ID.String())
	if err != nil {
		t.Fatalf("get variant: %v", err)
	}
	if after.Stock != 15 {
		t.Fatalf("failed adjustment must not change stock, got %d", after.Stock)
	}
}

func TestAttributeLookupMemoized(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc := newCatalogService(t, db)

	if _, err := svc.AddAttribute(context.Background(), catalogdomain.AttributeColor, "Blanco"); err != nil {
		t.Fatalf("add attribute: %v", err)
	}

	names, err := svc.AttributeNames(context.Background(), catalogdomain.AttributeColor)
	if err != nil {
		t.Fatalf("attribute names: %v", err)
	}
	if len(names) != 1 || names[0] != "Blanco" {
		t.Fatalf("unexpected names: %v", names)
	}

	// Bypass the service so a stale read proves the cache is hit.
	if err := db.Exec("DELETE FROM catalog_attributes").Error; err != nil {
		t.Fatalf("delete: %v", err)
	}
	cached, err := svc.AttributeNames(context.Background(), catalogdomain.AttributeColor)
	if err != nil {
		t.Fatalf("attribute names: %v", err)
	}
	if len(cached) != 1 {
		t.Fatalf("expected memoized result, got %v", cached)
	}

	// AddAttribute invalidates the kind.
	if _, err := svc.AddAttribute(context.Background(), catalogdomain.AttributeColor, "Negro"); err != nil {
		t.Fatalf("add attribute: %v", err)
	}
	fresh, err := svc.AttributeNames(context.Background(), catalogdomain.AttributeColor)
	if err != nil {
		t.Fatalf("attribute names: %v", err)
	}
	if len(fresh) != 1 || fresh[0] != "Negro" {
		t.Fatalf("expected invalidated lookup, got %v", fresh)
	}
}
