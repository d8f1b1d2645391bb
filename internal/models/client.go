package models

import "time"

type Client struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:255;not null" json:"name"`
	Email       string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone       string `gorm:"size:20;not null" json:"phone"`
	Address     string `gorm:"size:500" json:"address"`
	BirthDate   *Date  `gorm:"type:date" json:"birth_date"`
	Gender      string `gorm:"size:20" json:"gender"`
	Preferences string `gorm:"size:1000" json:"preferences"`
	Notes       string `gorm:"type:text" json:"notes"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
