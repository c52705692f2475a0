package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type CreateItem struct {
	VariantID   string
	Description string
	Color       string
	Category    string
	Type        string
	Stock       *int
	Quantity    int
	UnitPrice   decimal.Decimal
}

type CreateRequest struct {
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	PaymentTerm     string
	ValidityDays    int
	Discount        decimal.Decimal
	Items           []CreateItem
}

type ListRequest struct {
	Status string
}

// Document is a rendered quotation PDF ready for download.
type Document struct {
	FileName string
	PDF      []byte
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Quotation, error)
	List(ctx context.Context, req ListRequest) ([]Quotation, error)
	Get(ctx context.Context, id string) (Quotation, []QuotationItem, error)
	MarkSold(ctx context.Context, id string) (Quotation, error)
	Void(ctx context.Context, id string) (Quotation, error)
	DownloadPDF(ctx context.Context, id string) (Document, error)
	// ExpireDue flips pending quotations past their expiry; it is driven
	// by the scheduler and returns the number of rows updated.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

var (
	ErrInvalidID          = errors.New("invalid_quotation_id")
	ErrNotFound           = errors.New("quotation_not_found")
	ErrInvalidCustomer    = errors.New("invalid_customer")
	ErrInvalidPaymentTerm = errors.New("invalid_payment_term")
	ErrInvalidItems       = errors.New("invalid_items")
	ErrInvalidDiscount    = errors.New("invalid_discount")
	ErrNotPending         = errors.New("quotation_not_pending")
)
