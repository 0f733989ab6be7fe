package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// User is an operator account for the invoicing API. Passwords are stored
// as argon2id hashes, never in clear.
type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash string       `gorm:"type:text;not null" json:"-"`
	Name         string       `gorm:"type:text" json:"name"`
	Role         string       `gorm:"type:text;not null;default:'staff'" json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
