package stats

import (
	"context"

	"github.com/peluqueria-anita/salon-api/internal/models"
)

type AppointmentQuery struct {
	Range     *DateRange
	StylistID uint
	ClientID  uint
	Statuses  []string

	// Newest sorts by date and start time descending instead of ascending.
	Newest bool
	Limit  int
}

type AttentionQuery struct {
	Range          *DateRange
	Statuses       []string
	AppointmentIDs []uint
}

// Repository reads the rows the rollups fold over. Appointments come with
// Client, Stylist and Details.Service loaded; attentions with Client,
// Stylist and Service.
type Repository interface {
	Appointments(ctx context.Context, q AppointmentQuery) ([]models.Appointment, error)
	Attentions(ctx context.Context, q AttentionQuery) ([]models.Attention, error)

	// CompletedPayments returns completed ledger rows created within r,
	// dates taken in the salon timezone.
	CompletedPayments(ctx context.Context, r DateRange) ([]models.Payment, error)

	Clients(ctx context.Context) ([]models.Client, error)
	GetClient(ctx context.Context, id uint) (*models.Client, error)
	CountActiveServices(ctx context.Context) (int64, error)
	ActiveServices(ctx context.Context) ([]models.Service, error)
	Stylists(ctx context.Context) ([]models.User, error)
}

// Cache stores computed rollups. Get reports false on a miss.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}
