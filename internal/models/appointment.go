package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"client,omitempty"`

	UserID  uint  `gorm:"index;not null" json:"user_id"`
	Stylist *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"stylist,omitempty"`

	AppointmentDate Date   `gorm:"type:date;index;not null" json:"appointment_date"`
	StartTime       string `gorm:"size:5;not null" json:"start_time"`
	EndTime         string `gorm:"size:5;not null" json:"end_time"`

	Status        string          `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentStatus string          `gorm:"size:20;default:'pending'" json:"payment_status"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"total_amount"`
	Notes         string          `gorm:"type:text" json:"notes"`

	Details  []AppointmentDetail `gorm:"constraint:OnDelete:CASCADE;" json:"appointment_details,omitempty"`
	Payments []Payment           `gorm:"constraint:OnDelete:CASCADE;" json:"payments,omitempty"`

	CancelledAt *time.Time `json:"cancelled_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AppointmentDetail struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint     `gorm:"index;not null" json:"appointment_id"`
	ServiceID     uint     `gorm:"index;not null" json:"service_id"`
	Service       *Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service,omitempty"`

	Quantity  int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"subtotal"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ComputeSubtotal sets Subtotal = Quantity * UnitPrice.
func (d *AppointmentDetail) ComputeSubtotal() {
	if d.Quantity <= 0 {
		d.Quantity = 1
	}
	d.Subtotal = d.UnitPrice.Mul(decimal.NewFromInt(int64(d.Quantity)))
}

// BeforeSave never trusts a subtotal coming from the caller.
func (d *AppointmentDetail) BeforeSave(_ *gorm.DB) error {
	d.ComputeSubtotal()
	return nil
}
