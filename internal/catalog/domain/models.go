package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ProductStatus tracks whether a product is sellable or archived.
type ProductStatus string

const (
	ProductActive   ProductStatus = "active"
	ProductArchived ProductStatus = "archived"
)

// AttributeKind names a master lookup table partition.
type AttributeKind string

const (
	AttributeColor    AttributeKind = "color"
	AttributeWattage  AttributeKind = "wattage"
	AttributeSize     AttributeKind = "size"
	AttributeCategory AttributeKind = "category"
	AttributeType     AttributeKind = "type"
	AttributeLocation AttributeKind = "location"
)

type Product struct {
	ID          snowflake.ID  `gorm:"primaryKey" json:"id"`
	Name        string        `gorm:"type:text;not null;index" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Location    string        `gorm:"type:text" json:"location"`
	Category    string        `gorm:"type:text" json:"category"`
	Type        string        `gorm:"type:text" json:"type"`
	Status      ProductStatus `gorm:"type:text;not null;index" json:"status"`
	CreatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// Variant is the sellable unit under a product. Stock lives here so a
// sale can decrement a single row.
type Variant struct {
	ID            snowflake.ID                `gorm:"primaryKey" json:"id"`
	ProductID     snowflake.ID                `gorm:"not null;index" json:"product_id"`
	Name          string                      `gorm:"type:text;not null" json:"name"`
	SalePrice     decimal.Decimal             `gorm:"type:numeric(12,2);not null" json:"sale_price"`
	PurchasePrice decimal.Decimal             `gorm:"type:numeric(12,2);not null" json:"purchase_price"`
	DesignColor   string                      `gorm:"type:text" json:"design_color"`
	LightColor    string                      `gorm:"type:text" json:"light_color"`
	Wattage       string                      `gorm:"type:text" json:"wattage"`
	Size          string                      `gorm:"type:text" json:"size"`
	Stock         int                         `gorm:"not null;default:0" json:"stock"`
	MinimumStock  int                         `gorm:"not null;default:0" json:"minimum_stock"`
	Status        ProductStatus               `gorm:"type:text;not null" json:"status"`
	ImageURLs     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"image_urls"`
	CreatedAt     time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time                   `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Variant) TableName() string { return "product_variants" }

// Attribute is a row in the shared master lookup table, partitioned by
// kind (colors, wattages, sizes, categories, types, locations).
type Attribute struct {
	ID        snowflake.ID  `gorm:"primaryKey" json:"id"`
	Kind      AttributeKind `gorm:"type:text;not null;uniqueIndex:idx_attribute_kind_name" json:"kind"`
	Name      string        `gorm:"type:text;not null;uniqueIndex:idx_attribute_kind_name" json:"name"`
	CreatedAt time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Attribute) TableName() string { return "catalog_attributes" }
