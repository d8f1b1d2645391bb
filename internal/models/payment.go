package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint         `gorm:"index;not null" json:"appointment_id"`
	Appointment   *Appointment `json:"appointment,omitempty"`

	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	PaymentMethod string          `gorm:"size:20;not null" json:"payment_method"`
	Status        string          `gorm:"size:20;not null;index" json:"status"`
	TransactionID string          `gorm:"size:255" json:"transaction_id"`
	Notes         string          `gorm:"type:text" json:"notes"`
	PaymentDate   *time.Time      `json:"payment_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
