package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer is one billable party. Invoices reference it by id.
type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Address   string       `gorm:"type:text" json:"address,omitempty"`
	Postcode  string       `gorm:"type:text" json:"postcode,omitempty"`
	Email     string       `gorm:"type:text" json:"email,omitempty"`
	Phone     string       `gorm:"type:text" json:"phone,omitempty"`
	Notes     string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
