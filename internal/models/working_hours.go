package models

import "time"

// WorkingHours overrides the salon default schedule for one stylist and weekday.
type WorkingHours struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"uniqueIndex:ux_working_hours_user_weekday;not null" json:"user_id"`

	Weekday int `gorm:"uniqueIndex:ux_working_hours_user_weekday" json:"weekday"`

	StartTime   string `gorm:"size:5" json:"start_time"`
	EndTime     string `gorm:"size:5" json:"end_time"`
	SlotMinutes int    `json:"slot_minutes"`
	Active      bool   `json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
