package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Status tracks the lifecycle of a quotation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSold    Status = "sold"
	StatusVoid    Status = "void"
	StatusExpired Status = "expired"
)

// Quotation is a customer-facing price proposal. Totals are stored as
// exact decimals; the renderer converts at its boundary.
type Quotation struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerName    string          `gorm:"type:text;not null" json:"customer_name"`
	CustomerPhone   string          `gorm:"type:text;not null" json:"customer_phone"`
	CustomerAddress string          `gorm:"type:text" json:"customer_address"`
	PaymentTerm     string          `gorm:"type:text;not null" json:"payment_term"`
	ValidityDays    int             `gorm:"not null;default:0" json:"validity_days"`
	ExpiresAt       time.Time       `gorm:"not null;index" json:"expires_at"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Discount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Advance         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"advance"`
	Balance         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"balance"`
	Status          Status          `gorm:"type:text;not null;index" json:"status"`
	CreatedBy       snowflake.ID    `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Quotation) TableName() string { return "quotations" }

// QuotationItem snapshots a quoted variant so later catalog edits do not
// rewrite history.
type QuotationItem struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	QuotationID  snowflake.ID    `gorm:"not null;index" json:"quotation_id"`
	VariantID    snowflake.ID    `gorm:"not null" json:"variant_id"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Color        string          `gorm:"type:text" json:"color"`
	Category     string          `gorm:"type:text" json:"category"`
	Type         string          `gorm:"type:text" json:"type"`
	Stock        *int            `json:"stock,omitempty"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineSubtotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_subtotal"`
}

// TableName sets the database table name.
func (QuotationItem) TableName() string { return "quotation_items" }
