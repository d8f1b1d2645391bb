package payment

import (
	"context"

	"github.com/peluqueria-anita/salon-api/internal/models"
)

type ListFilter struct {
	Status        string
	PaymentMethod string
	DateFrom      models.Date
	DateTo        models.Date
	Search        string
	AppointmentID uint

	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// Repository is the payment ledger store. Lookups of missing rows return
// gorm.ErrRecordNotFound.
type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// LockAppointment loads the appointment FOR UPDATE.
	LockAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	SetPaymentStatus(ctx context.Context, appointmentID uint, status string) error

	ListLedger(ctx context.Context, appointmentID uint) ([]models.Payment, error)
	GetPayment(ctx context.Context, id uint) (*models.Payment, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	UpdatePayment(ctx context.Context, p *models.Payment) error
	DeletePayment(ctx context.Context, id uint) error

	ListPayments(ctx context.Context, f ListFilter) ([]models.Payment, int64, error)
}
