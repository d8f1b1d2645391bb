package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/models"
	"github.com/peluqueria-anita/salon-api/internal/usecase/stats"
)

// StatsGormRepository loads the rows the statistics fold over.
type StatsGormRepository struct {
	db *gorm.DB
	tz string
}

func NewStatsGormRepository(db *gorm.DB, tz string) *StatsGormRepository {
	return &StatsGormRepository{db: db, tz: tz}
}

func (r *StatsGormRepository) Appointments(ctx context.Context, q stats.AppointmentQuery) ([]models.Appointment, error) {
	db := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Stylist").
		Preload("Details.Service")

	if q.Range != nil {
		db = db.Where("appointment_date BETWEEN ? AND ?", q.Range.From, q.Range.To)
	}
	if q.StylistID != 0 {
		db = db.Where("user_id = ?", q.StylistID)
	}
	if q.ClientID != 0 {
		db = db.Where("client_id = ?", q.ClientID)
	}
	if len(q.Statuses) > 0 {
		db = db.Where("status IN ?", q.Statuses)
	}
	if q.Newest {
		db = db.Order("appointment_date DESC, start_time DESC")
	} else {
		db = db.Order("appointment_date ASC, start_time ASC")
	}
	if q.Limit > 0 {
		db = db.Limit(q.Limit)
	}

	var apps []models.Appointment
	if err := db.Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *StatsGormRepository) Attentions(ctx context.Context, q stats.AttentionQuery) ([]models.Attention, error) {
	db := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Stylist").
		Preload("Service")

	if q.Range != nil {
		db = db.Where("attention_date BETWEEN ? AND ?", q.Range.From, q.Range.To)
	}
	if len(q.Statuses) > 0 {
		db = db.Where("status IN ?", q.Statuses)
	}
	if q.AppointmentIDs != nil {
		if len(q.AppointmentIDs) == 0 {
			return nil, nil
		}
		db = db.Where("appointment_id IN ?", q.AppointmentIDs)
	}

	var rows []models.Attention
	if err := db.Order("attention_date ASC, start_time ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *StatsGormRepository) CompletedPayments(ctx context.Context, rng stats.DateRange) ([]models.Payment, error) {
	var ps []models.Payment
	if err := r.db.WithContext(ctx).
		Where("status = ?", "completed").
		Where("(created_at AT TIME ZONE ?)::date BETWEEN ? AND ?", r.tz, rng.From, rng.To).
		Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

func (r *StatsGormRepository) Clients(ctx context.Context) ([]models.Client, error) {
	var cs []models.Client
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *StatsGormRepository) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *StatsGormRepository) CountActiveServices(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Service{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *StatsGormRepository) ActiveServices(ctx context.Context) ([]models.Service, error) {
	var ss []models.Service
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name ASC").Find(&ss).Error; err != nil {
		return nil, err
	}
	return ss, nil
}

func (r *StatsGormRepository) Stylists(ctx context.Context) ([]models.User, error) {
	var us []models.User
	if err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", models.RoleStylist, true).
		Order("name ASC").
		Find(&us).Error; err != nil {
		return nil, err
	}
	return us, nil
}

var _ stats.Repository = (*StatsGormRepository)(nil)
