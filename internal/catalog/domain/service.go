package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type VariantInput struct {
	Name          string
	SalePrice     decimal.Decimal
	PurchasePrice decimal.Decimal
	DesignColor   string
	LightColor    string
	Wattage       string
	Size          string
	Stock         int
	MinimumStock  int
	ImageURLs     []string
}

type CreateProductRequest struct {
	Name        string
	Description string
	Location    string
	Category    string
	Type        string
	Variants    []VariantInput
}

type UpdateProductRequest struct {
	Name        *string
	Description *string
	Location    *string
	Category    *string
	Type        *string
}

type ListProductsRequest struct {
	Name            string
	IncludeArchived bool
}

type Service interface {
	CreateProduct(ctx context.Context, req CreateProductRequest) (Product, []Variant, error)
	UpdateProduct(ctx context.Context, id string, req UpdateProductRequest) (Product, error)
	ArchiveProduct(ctx context.Context, id string) error
	ListProducts(ctx context.Context, req ListProductsRequest) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, []Variant, error)
	GetVariant(ctx context.Context, id string) (Variant, error)
	// AdjustStock applies a signed delta to a variant's stock and fails
	// when the result would go negative.
	AdjustStock(ctx context.Context, variantID string, delta int) (Variant, error)
	// AttributeNames lists the master values for a lookup kind. Results
	// are memoized with a short TTL.
	AttributeNames(ctx context.Context, kind AttributeKind) ([]string, error)
	AddAttribute(ctx context.Context, kind AttributeKind, name string) (Attribute, error)
}

var (
	ErrInvalidID         = errors.New("invalid_catalog_id")
	ErrProductNotFound   = errors.New("product_not_found")
	ErrVariantNotFound   = errors.New("variant_not_found")
	ErrInvalidProduct    = errors.New("invalid_product")
	ErrInvalidVariant    = errors.New("invalid_variant")
	ErrInvalidAttribute  = errors.New("invalid_attribute")
	ErrInsufficientStock = errors.New("insufficient_stock")
)
