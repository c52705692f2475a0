package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Slot is one ordered entry of the storefront carousel.
type Slot struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ProductID snowflake.ID `gorm:"not null;index" json:"product_id"`
	Position  int          `gorm:"not null;index" json:"position"`
	Title     string       `gorm:"type:text;not null" json:"title"`
	ImageURL  string       `gorm:"type:text" json:"image_url"`
	Active    bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Slot) TableName() string { return "carousel_slots" }
