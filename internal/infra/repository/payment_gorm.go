package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type PaymentGormRepository struct {
	db *gorm.DB

	// tz is the salon timezone name used to date created_at.
	tz string
}

func NewPaymentGormRepository(db *gorm.DB, tz string) *PaymentGormRepository {
	return &PaymentGormRepository{db: db, tz: tz}
}

func (r *PaymentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PaymentGormRepository{db: tx, tz: r.tz})
	})
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *PaymentGormRepository) LockAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *PaymentGormRepository) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := r.db.WithContext(ctx).Preload("Client").First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *PaymentGormRepository) SetPaymentStatus(ctx context.Context, appointmentID uint, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", appointmentID).
		Update("payment_status", status).Error
}

// --------------------------------------------------
// Ledger
// --------------------------------------------------

func (r *PaymentGormRepository) ListLedger(ctx context.Context, appointmentID uint) ([]models.Payment, error) {
	var ps []models.Payment
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("created_at ASC, id ASC").
		Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

func (r *PaymentGormRepository) GetPayment(ctx context.Context, id uint) (*models.Payment, error) {
	var p models.Payment
	if err := r.db.WithContext(ctx).
		Preload("Appointment.Client").
		First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentGormRepository) CreatePayment(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *PaymentGormRepository) UpdatePayment(ctx context.Context, p *models.Payment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (r *PaymentGormRepository) DeletePayment(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Payment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// --------------------------------------------------
// Listing
// --------------------------------------------------

func (r *PaymentGormRepository) ListPayments(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Payment, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Payment{})

	if f.Status != "" {
		q = q.Where("payments.status = ?", f.Status)
	}
	if f.PaymentMethod != "" {
		q = q.Where("payments.payment_method = ?", f.PaymentMethod)
	}
	if f.AppointmentID != 0 {
		q = q.Where("payments.appointment_id = ?", f.AppointmentID)
	}
	if !f.DateFrom.IsZero() {
		q = q.Where("(payments.created_at AT TIME ZONE ?)::date >= ?", r.tz, f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		q = q.Where("(payments.created_at AT TIME ZONE ?)::date <= ?", r.tz, f.DateTo)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		q = q.
			Joins("JOIN appointments ON appointments.id = payments.appointment_id").
			Joins("JOIN clients ON clients.id = appointments.client_id").
			Where("LOWER(clients.name) LIKE ?", "%"+term+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ps []models.Payment
	if err := q.
		Select("payments.*").
		Preload("Appointment.Client").
		Order(fmt.Sprintf("payments.%s %s", f.SortBy, f.SortOrder)).
		Limit(f.PerPage).
		Offset(offset(f.Page, f.PerPage)).
		Find(&ps).Error; err != nil {
		return nil, 0, err
	}
	return ps, total, nil
}

var _ domain.Repository = (*PaymentGormRepository)(nil)
