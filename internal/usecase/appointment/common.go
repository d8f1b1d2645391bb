package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

// ServiceLine is one requested service on an appointment.
type ServiceLine struct {
	ServiceID uint
	Price     decimal.Decimal
	Quantity  int
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func appointmentNotFound() error {
	return apperr.NotFound("appointment_not_found", "appointment not found")
}

// loadAppointment maps a missing row to NotFound.
func loadAppointment(ctx context.Context, repo domain.Repository, id uint) (*models.Appointment, error) {
	ap, err := repo.GetAppointment(ctx, id)
	if isNotFound(err) {
		return nil, appointmentNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("load appointment %d: %w", id, err)
	}
	return ap, nil
}

// lockAppointment is loadAppointment for writers; tx must be a transaction.
func lockAppointment(ctx context.Context, tx domain.Repository, id uint) (*models.Appointment, error) {
	ap, err := tx.LockAppointment(ctx, id)
	if isNotFound(err) {
		return nil, appointmentNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("lock appointment %d: %w", id, err)
	}
	return ap, nil
}

// validateDate checks a booking date is present and not before today.
func validateDate(fields map[string]string, key string, d models.Date, now time.Time) {
	if d.IsZero() {
		fields[key] = "is required"
		return
	}
	if d.Before(models.NewDate(now)) {
		fields[key] = "must be today or later"
	}
}

func validateClock(fields map[string]string, key, hm string) {
	if hm == "" {
		fields[key] = "is required"
		return
	}
	if _, err := domain.ParseClock(hm); err != nil {
		fields[key] = "must be HH:MM"
	}
}

// checkClient records a field error when the client does not exist.
func checkClient(ctx context.Context, repo domain.Repository, fields map[string]string, id uint) error {
	if id == 0 {
		fields["client_id"] = "is required"
		return nil
	}
	_, err := repo.GetClient(ctx, id)
	if isNotFound(err) {
		fields["client_id"] = "does not exist"
		return nil
	}
	return err
}

// checkStylist records a field error when the stylist is missing or inactive.
func checkStylist(ctx context.Context, repo domain.Repository, fields map[string]string, id uint) error {
	if id == 0 {
		fields["user_id"] = "is required"
		return nil
	}
	u, err := repo.GetStylist(ctx, id)
	if isNotFound(err) {
		fields["user_id"] = "does not exist"
		return nil
	}
	if err != nil {
		return err
	}
	if !u.IsActive {
		fields["user_id"] = "stylist is not active"
	}
	return nil
}

// buildDetails resolves every line, returning the detail rows, their
// durations and the appointment total.
func buildDetails(
	ctx context.Context,
	repo domain.Repository,
	fields map[string]string,
	lines []ServiceLine,
) ([]models.AppointmentDetail, []int, decimal.Decimal, error) {

	if len(lines) == 0 {
		fields["services"] = "at least one service is required"
		return nil, nil, decimal.Zero, nil
	}

	details := make([]models.AppointmentDetail, 0, len(lines))
	durations := make([]int, 0, len(lines))
	total := decimal.Zero

	for i, line := range lines {
		key := fmt.Sprintf("services.%d", i)

		if line.Price.IsNegative() {
			fields[key+".price"] = "must be zero or greater"
		}
		if line.Quantity < 0 {
			fields[key+".quantity"] = "must be at least 1"
		}
		if line.ServiceID == 0 {
			fields[key+".service_id"] = "is required"
			continue
		}

		svc, err := repo.GetService(ctx, line.ServiceID)
		if isNotFound(err) {
			fields[key+".service_id"] = "does not exist"
			continue
		}
		if err != nil {
			return nil, nil, decimal.Zero, err
		}

		d := models.AppointmentDetail{
			ServiceID: svc.ID,
			Service:   svc,
			Quantity:  line.Quantity,
			UnitPrice: line.Price,
		}
		d.ComputeSubtotal()

		details = append(details, d)
		durations = append(durations, svc.Duration)
		total = total.Add(d.Subtotal)
	}

	return details, durations, total, nil
}

// detailDurations reads the durations of already persisted lines.
func detailDurations(details []models.AppointmentDetail) []int {
	out := make([]int, 0, len(details))
	for _, d := range details {
		if d.Service != nil {
			out = append(out, d.Service.Duration)
		}
	}
	return out
}

// stripRelations drops loaded children so a save only touches the row.
func stripRelations(ap *models.Appointment) *models.Appointment {
	cp := *ap
	cp.Client = nil
	cp.Stylist = nil
	cp.Details = nil
	cp.Payments = nil
	return &cp
}
