package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PaymentMethod names how a sale was paid.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "efectivo"
	PaymentQR   PaymentMethod = "qr"
	PaymentCard PaymentMethod = "tarjeta"
)

type Sale struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	SellerID        snowflake.ID    `gorm:"not null;index" json:"seller_id"`
	DrawerSessionID *snowflake.ID   `gorm:"index" json:"drawer_session_id,omitempty"`
	PaymentMethod   PaymentMethod   `gorm:"type:text;not null" json:"payment_method"`
	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Discount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"discount"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	CreatedAt       time.Time       `gorm:"not null;index" json:"created_at"`
}

// TableName sets the database table name.
func (Sale) TableName() string { return "sales" }

// SaleItem snapshots the sold variant at sale time.
type SaleItem struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	SaleID       snowflake.ID    `gorm:"not null;index" json:"sale_id"`
	VariantID    snowflake.ID    `gorm:"not null" json:"variant_id"`
	Description  string          `gorm:"type:text;not null" json:"description"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	LineSubtotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"line_subtotal"`
}

// TableName sets the database table name.
func (SaleItem) TableName() string { return "sale_items" }
