package render

import (
	"errors"
	"math"
)

// PaymentTerm enumerates the payment arrangements a quotation can carry.
type PaymentTerm string

const (
	PaymentCashOnDelivery PaymentTerm = "contra-entrega"
	PaymentFullAdvance    PaymentTerm = "pago-adelantado"
	PaymentHalfAdvance    PaymentTerm = "mitad-adelanto"
)

// BalancePolicy selects how the Abono/Saldo summary rows are computed.
type BalancePolicy string

const (
	// BalanceByPaymentTerm derives advance and balance from the payment
	// term; for contra-entrega the rows are suppressed entirely.
	BalanceByPaymentTerm BalancePolicy = "by-payment-type"
	// BalanceAlwaysUnpaid renders advance 0 and balance equal to the
	// total regardless of payment term.
	BalanceAlwaysUnpaid BalancePolicy = "always-unpaid"
)

// CustomerView carries the customer block of a quotation document.
type CustomerView struct {
	Name         string
	Phone        string
	Address      string
	PaymentTerm  PaymentTerm
	ValidityDays int
}

// LineItemView is one quoted product row. Stock is a pointer so an
// unknown stock level drops the segment instead of rendering zero.
type LineItemView struct {
	Name      string
	Color     string
	Category  string
	Type      string
	Stock     *int
	Quantity  int
	UnitPrice float64
}

// RenderInput is the deterministic input used for quotation rendering.
// Totals are trusted as given; the renderer never recomputes them from
// the line items.
type RenderInput struct {
	Customer      CustomerView
	Items         []LineItemView
	Subtotal      float64
	DiscountTotal float64
	FinalTotal    float64
	Date          string // display-ready, never parsed
	LogoURL       string
	Policy        BalancePolicy
}

type Renderer interface {
	RenderHTML(input RenderInput) (string, error)
}

var (
	ErrMissingCustomerName  = errors.New("missing_customer_name")
	ErrMissingCustomerPhone = errors.New("missing_customer_phone")
)

const nearZero = 0.005

// normalizeAmount squashes float noise below half a cent so subtraction
// artifacts never render as "-0.00".
func normalizeAmount(v float64) float64 {
	if math.Abs(v) < nearZero {
		return 0
	}
	return v
}

// CheckTotals is an optional consistency helper for callers that want to
// validate a quotation before rendering. The renderer itself never calls
// it: totals are accepted as given.
func CheckTotals(input RenderInput) error {
	var sum float64
	for _, item := range input.Items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	if math.Abs(sum-input.Subtotal) >= nearZero {
		return errors.New("subtotal_mismatch")
	}
	if math.Abs(input.Subtotal-input.DiscountTotal-input.FinalTotal) >= nearZero {
		return errors.New("total_mismatch")
	}
	return nil
}
