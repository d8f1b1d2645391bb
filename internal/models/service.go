package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinServiceDuration = 15
	MaxServiceDuration = 480
)

var MaxServicePrice = decimal.RequireFromString("9999.99")

type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string          `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description string          `gorm:"size:1000" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Duration    int             `gorm:"not null" json:"duration"`
	Category    string          `gorm:"size:50" json:"category"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
