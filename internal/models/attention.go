package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Attention struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint         `gorm:"index;not null" json:"appointment_id"`
	Appointment   *Appointment `gorm:"constraint:OnDelete:CASCADE;" json:"appointment,omitempty"`
	ClientID      uint         `gorm:"index;not null" json:"client_id"`
	Client        *Client      `json:"client,omitempty"`
	UserID        uint         `gorm:"index;not null" json:"user_id"`
	Stylist       *User        `gorm:"foreignKey:UserID" json:"stylist,omitempty"`
	ServiceID     uint         `gorm:"index;not null" json:"service_id"`
	Service       *Service     `json:"service,omitempty"`

	AttentionDate Date   `gorm:"type:date;index;not null" json:"attention_date"`
	StartTime     string `gorm:"size:5;not null" json:"start_time"`
	EndTime       string `gorm:"size:5;not null" json:"end_time"`
	Status        string `gorm:"size:20;not null;index" json:"status"`

	ServicePrice       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"service_price"`
	TipAmount          decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"tip_amount"`
	ClientSatisfaction *string         `gorm:"size:20" json:"client_satisfaction"`

	Observations string `gorm:"type:text" json:"observations"`
	ProductsUsed string `gorm:"type:text" json:"products_used"`
	Notes        string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
