package appointment

import (
	"context"

	"github.com/peluqueria-anita/salon-api/internal/models"
)

// ListFilter narrows the appointment index. Zero values mean "any".
type ListFilter struct {
	Date      models.Date
	DateFrom  models.Date
	DateTo    models.Date
	StylistID uint
	ClientID  uint
	Status    string
	Search    string

	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// Repository is everything the scheduling rules read or write. Lookups of
// missing rows return gorm.ErrRecordNotFound.
type Repository interface {
	Transaction(ctx context.Context, fn func(tx Repository) error) error

	// -------- References --------
	GetClient(ctx context.Context, id uint) (*models.Client, error)
	GetStylist(ctx context.Context, id uint) (*models.User, error)
	GetService(ctx context.Context, id uint) (*models.Service, error)
	GetWorkingHours(ctx context.Context, stylistID uint, weekday int) (*models.WorkingHours, error)

	// -------- Availability --------
	HasActiveAt(ctx context.Context, in CheckInput) (bool, error)
	ActiveStartTimes(ctx context.Context, stylistID uint, date models.Date) ([]string, error)

	// -------- Appointment --------
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	// LockAppointment loads the appointment FOR UPDATE. Writers that save
	// the whole row must read it this way inside Transaction.
	LockAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, ap *models.Appointment) error
	ReplaceDetails(ctx context.Context, appointmentID uint, details []models.AppointmentDetail) error
	DeleteAppointment(ctx context.Context, id uint) error

	// -------- Listings --------
	ListAppointments(ctx context.Context, f ListFilter) ([]models.Appointment, int64, error)
	ListForStylistDay(ctx context.Context, stylistID uint, date models.Date) ([]models.Appointment, error)
	ListOverdue(ctx context.Context, before models.Date, statuses []string) ([]models.Appointment, error)
}
