package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// SessionStatus tracks whether a drawer session is accepting movements.
type SessionStatus string

const (
	SessionOpen   SessionStatus = "open"
	SessionClosed SessionStatus = "closed"
)

// MovementType classifies a drawer movement.
type MovementType string

const (
	MovementIn  MovementType = "ingreso"
	MovementOut MovementType = "egreso"
)

// Session is one cash drawer shift. ClosingAmount is recomputed
// server-side on close from the opening amount plus recorded movements.
type Session struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	OpenedBy      snowflake.ID    `gorm:"not null" json:"opened_by"`
	OpeningAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"opening_amount"`
	ClosingAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"closing_amount"`
	Status        SessionStatus   `gorm:"type:text;not null;index" json:"status"`
	OpenedAt      time.Time       `gorm:"not null" json:"opened_at"`
	ClosedAt      *time.Time      `json:"closed_at,omitempty"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "drawer_sessions" }

// Movement is a single cash inflow or outflow within a session.
type Movement struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	SessionID   snowflake.ID    `gorm:"not null;index" json:"session_id"`
	Type        MovementType    `gorm:"type:text;not null" json:"type"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	UserID      snowflake.ID    `gorm:"not null;index" json:"user_id"`
	SaleID      *snowflake.ID   `json:"sale_id,omitempty"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Movement) TableName() string { return "drawer_movements" }
