package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is the coarse permission level of a user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleAssistant Role = "asistente"
)

type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"type:text;not null;uniqueIndex" json:"username"`
	DisplayName  string       `gorm:"type:text;not null" json:"display_name"`
	PasswordHash string       `gorm:"type:text;not null" json:"-"`
	Role         Role         `gorm:"type:text;not null" json:"role"`
	Active       bool         `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session is an opaque bearer token for a logged-in user.
type Session struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Token     string       `gorm:"type:text;not null;uniqueIndex" json:"token"`
	UserID    snowflake.ID `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time    `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }
