package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type CreateItem struct {
	VariantID string
	Quantity  int
}

type CreateRequest struct {
	PaymentMethod PaymentMethod
	Discount      decimal.Decimal
	Items         []CreateItem
}

type ListRequest struct {
	From time.Time
	To   time.Time
}

// Export is a generated spreadsheet ready for download.
type Export struct {
	FileName string
	Content  []byte
}

type Service interface {
	// Create records a sale, decrementing variant stock in the same
	// transaction. Cash sales also record a drawer movement when a
	// session is open.
	Create(ctx context.Context, req CreateRequest) (Sale, []SaleItem, error)
	List(ctx context.Context, req ListRequest) ([]Sale, error)
	Get(ctx context.Context, id string) (Sale, []SaleItem, error)
	// ExportExcel writes the sales of a date range to an xlsx workbook.
	ExportExcel(ctx context.Context, req ListRequest) (Export, error)
}

var (
	ErrInvalidID         = errors.New("invalid_sale_id")
	ErrNotFound          = errors.New("sale_not_found")
	ErrInvalidPayment    = errors.New("invalid_payment_method")
	ErrInvalidItems      = errors.New("invalid_sale_items")
	ErrInsufficientStock = errors.New("insufficient_stock")
)
