package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type AppointmentGormRepository struct {
	db *gorm.DB
}

func NewAppointmentGormRepository(db *gorm.DB) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db}
}

func (r *AppointmentGormRepository) Transaction(
	ctx context.Context,
	fn func(tx domain.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&AppointmentGormRepository{db: tx})
	})
}

// --------------------------------------------------
// References
// --------------------------------------------------

func (r *AppointmentGormRepository) GetClient(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *AppointmentGormRepository) GetStylist(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND role IN ?", id, []string{models.RoleStylist, models.RoleAdmin}).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *AppointmentGormRepository) GetService(ctx context.Context, id uint) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AppointmentGormRepository) GetWorkingHours(
	ctx context.Context,
	stylistID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND weekday = ?", stylistID, weekday).
		First(&wh).Error; err != nil {
		return nil, err
	}
	return &wh, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) HasActiveAt(ctx context.Context, in domain.CheckInput) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"user_id = ? AND appointment_date = ? AND start_time = ? AND status IN ?",
			in.StylistID, in.Date, in.StartTime, domain.ActiveStatusStrings(),
		)
	if in.ExcludeID != 0 {
		q = q.Where("id <> ?", in.ExcludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *AppointmentGormRepository) ActiveStartTimes(
	ctx context.Context,
	stylistID uint,
	date models.Date,
) ([]string, error) {

	var starts []string
	if err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"user_id = ? AND appointment_date = ? AND status IN ?",
			stylistID, date, domain.ActiveStatusStrings(),
		).
		Order("start_time ASC").
		Pluck("start_time", &starts).Error; err != nil {
		return nil, err
	}
	return starts, nil
}

// --------------------------------------------------
// Appointment
// --------------------------------------------------

func (r *AppointmentGormRepository) CreateAppointment(ctx context.Context, ap *models.Appointment) error {
	return mapWriteError(r.db.WithContext(ctx).Create(ap).Error)
}

func (r *AppointmentGormRepository) GetAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := withRelations(r.db.WithContext(ctx)).First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) LockAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	var ap models.Appointment
	if err := withRelations(r.db.WithContext(ctx)).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) UpdateAppointment(ctx context.Context, ap *models.Appointment) error {
	return mapWriteError(r.db.WithContext(ctx).Omit(clause.Associations).Save(ap).Error)
}

func (r *AppointmentGormRepository) ReplaceDetails(
	ctx context.Context,
	appointmentID uint,
	details []models.AppointmentDetail,
) error {

	db := r.db.WithContext(ctx)
	if err := db.Where("appointment_id = ?", appointmentID).
		Delete(&models.AppointmentDetail{}).Error; err != nil {
		return fmt.Errorf("delete details: %w", err)
	}
	if len(details) == 0 {
		return nil
	}
	for i := range details {
		details[i].ID = 0
		details[i].AppointmentID = appointmentID
	}
	return db.Omit(clause.Associations).Create(&details).Error
}

func (r *AppointmentGormRepository) DeleteAppointment(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("appointment_id = ?", id).Delete(&models.Payment{}).Error; err != nil {
		return fmt.Errorf("delete payments: %w", err)
	}
	if err := db.Where("appointment_id = ?", id).Delete(&models.AppointmentDetail{}).Error; err != nil {
		return fmt.Errorf("delete details: %w", err)
	}
	res := db.Delete(&models.Appointment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// --------------------------------------------------
// Listings
// --------------------------------------------------

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Client").
		Preload("Stylist").
		Preload("Details.Service").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
}

func (r *AppointmentGormRepository) ListAppointments(
	ctx context.Context,
	f domain.ListFilter,
) ([]models.Appointment, int64, error) {

	q := r.db.WithContext(ctx).Model(&models.Appointment{})

	if !f.Date.IsZero() {
		q = q.Where("appointments.appointment_date = ?", f.Date)
	}
	if !f.DateFrom.IsZero() {
		q = q.Where("appointments.appointment_date >= ?", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		q = q.Where("appointments.appointment_date <= ?", f.DateTo)
	}
	if f.StylistID != 0 {
		q = q.Where("appointments.user_id = ?", f.StylistID)
	}
	if f.ClientID != 0 {
		q = q.Where("appointments.client_id = ?", f.ClientID)
	}
	if f.Status != "" {
		q = q.Where("appointments.status = ?", f.Status)
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		like := "%" + term + "%"
		q = q.Joins("JOIN clients ON clients.id = appointments.client_id").
			Where(
				"LOWER(clients.name) LIKE ? OR LOWER(clients.email) LIKE ? OR clients.phone LIKE ?",
				like, like, like,
			)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := fmt.Sprintf("appointments.%s %s", f.SortBy, f.SortOrder)
	if f.SortBy == "" {
		order = "appointments.appointment_date ASC"
	}

	var apps []models.Appointment
	if err := withRelations(q).
		Select("appointments.*").
		Order(order).
		Order("appointments.start_time ASC").
		Limit(f.PerPage).
		Offset(offset(f.Page, f.PerPage)).
		Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *AppointmentGormRepository) ListForStylistDay(
	ctx context.Context,
	stylistID uint,
	date models.Date,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).Where("appointment_date = ?", date)
	if stylistID != 0 {
		q = q.Where("user_id = ?", stylistID)
	}

	var apps []models.Appointment
	if err := withRelations(q).Order("start_time ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *AppointmentGormRepository) ListOverdue(
	ctx context.Context,
	before models.Date,
	statuses []string,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	if err := r.db.WithContext(ctx).
		Where("appointment_date < ? AND status IN ?", before, statuses).
		Order("appointment_date ASC").
		Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

var _ domain.Repository = (*AppointmentGormRepository)(nil)
