package appointment

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	domain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

type mockApptRepo struct {
	clients  map[uint]*models.Client
	stylists map[uint]*models.User
	services map[uint]*models.Service
	hours    map[[2]uint]*models.WorkingHours
	appts    map[uint]*models.Appointment
	nextID   uint

	failCreate error

	// staleReads, when set, is served by GetAppointment instead of the
	// stored row, as an unlocked read racing a concurrent writer would be.
	staleReads map[uint]*models.Appointment
}

func newMockApptRepo() *mockApptRepo {
	return &mockApptRepo{
		clients:  map[uint]*models.Client{},
		stylists: map[uint]*models.User{},
		services: map[uint]*models.Service{},
		hours:    map[[2]uint]*models.WorkingHours{},
		appts:    map[uint]*models.Appointment{},
		nextID:   1,
	}
}

func cloneAppt(ap *models.Appointment) *models.Appointment {
	cp := *ap
	cp.Details = append([]models.AppointmentDetail(nil), ap.Details...)
	cp.Payments = append([]models.Payment(nil), ap.Payments...)
	return &cp
}

func (m *mockApptRepo) Transaction(_ context.Context, fn func(domain.Repository) error) error {
	snapshot := make(map[uint]*models.Appointment, len(m.appts))
	for id, ap := range m.appts {
		snapshot[id] = cloneAppt(ap)
	}
	next := m.nextID

	if err := fn(m); err != nil {
		m.appts = snapshot
		m.nextID = next
		return err
	}
	return nil
}

func (m *mockApptRepo) GetClient(_ context.Context, id uint) (*models.Client, error) {
	if c, ok := m.clients[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApptRepo) GetStylist(_ context.Context, id uint) (*models.User, error) {
	if u, ok := m.stylists[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApptRepo) GetService(_ context.Context, id uint) (*models.Service, error) {
	if s, ok := m.services[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApptRepo) GetWorkingHours(_ context.Context, stylistID uint, weekday int) (*models.WorkingHours, error) {
	if wh, ok := m.hours[[2]uint{stylistID, uint(weekday)}]; ok {
		return wh, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApptRepo) HasActiveAt(_ context.Context, in domain.CheckInput) (bool, error) {
	for _, ap := range m.appts {
		if ap.ID == in.ExcludeID {
			continue
		}
		if ap.UserID == in.StylistID && ap.AppointmentDate == in.Date &&
			ap.StartTime == in.StartTime && domain.Status(ap.Status).IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockApptRepo) ActiveStartTimes(_ context.Context, stylistID uint, date models.Date) ([]string, error) {
	var out []string
	for _, ap := range m.appts {
		if ap.UserID == stylistID && ap.AppointmentDate == date && domain.Status(ap.Status).IsActive() {
			out = append(out, ap.StartTime)
		}
	}
	return out, nil
}

func (m *mockApptRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	ap.ID = m.nextID
	m.nextID++
	for i := range ap.Details {
		ap.Details[i].AppointmentID = ap.ID
		ap.Details[i].ComputeSubtotal()
	}
	m.appts[ap.ID] = cloneAppt(ap)
	return nil
}

func (m *mockApptRepo) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	if ap, ok := m.staleReads[id]; ok {
		return cloneAppt(ap), nil
	}
	if ap, ok := m.appts[id]; ok {
		return cloneAppt(ap), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApptRepo) LockAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	if ap, ok := m.appts[id]; ok {
		return cloneAppt(ap), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApptRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	stored, ok := m.appts[ap.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *ap
	cp.Details = stored.Details
	cp.Payments = stored.Payments
	m.appts[ap.ID] = &cp
	return nil
}

func (m *mockApptRepo) ReplaceDetails(_ context.Context, id uint, details []models.AppointmentDetail) error {
	stored, ok := m.appts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Details = append([]models.AppointmentDetail(nil), details...)
	return nil
}

func (m *mockApptRepo) DeleteAppointment(_ context.Context, id uint) error {
	delete(m.appts, id)
	return nil
}

func (m *mockApptRepo) sorted() []models.Appointment {
	out := make([]models.Appointment, 0, len(m.appts))
	for _, ap := range m.appts {
		out = append(out, *cloneAppt(ap))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *mockApptRepo) ListAppointments(_ context.Context, f domain.ListFilter) ([]models.Appointment, int64, error) {
	var out []models.Appointment
	for _, ap := range m.sorted() {
		if f.Status != "" && ap.Status != f.Status {
			continue
		}
		if f.StylistID != 0 && ap.UserID != f.StylistID {
			continue
		}
		if f.Search != "" {
			c := m.clients[ap.ClientID]
			if c == nil || !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
				continue
			}
		}
		out = append(out, ap)
	}
	return out, int64(len(out)), nil
}

func (m *mockApptRepo) ListForStylistDay(_ context.Context, stylistID uint, date models.Date) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range m.sorted() {
		if ap.UserID == stylistID && ap.AppointmentDate == date {
			out = append(out, ap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (m *mockApptRepo) ListOverdue(_ context.Context, before models.Date, statuses []string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range m.sorted() {
		if !ap.AppointmentDate.Before(before) {
			continue
		}
		for _, s := range statuses {
			if ap.Status == s {
				out = append(out, ap)
				break
			}
		}
	}
	return out, nil
}

// fixedNow is 2024-05-31 09:00 in the salon timezone.
func fixedNow() time.Time {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		loc = time.UTC
	}
	return time.Date(2024, 5, 31, 9, 0, 0, 0, loc)
}

func seededRepo() *mockApptRepo {
	repo := newMockApptRepo()
	repo.clients[1] = &models.Client{ID: 1, Name: "Ana Pérez", Email: "ana@example.com"}
	repo.clients[2] = &models.Client{ID: 2, Name: "Bruno Díaz", Email: "bruno@example.com"}
	repo.stylists[10] = &models.User{ID: 10, Name: "Anita", Role: models.RoleStylist, IsActive: true}
	repo.stylists[11] = &models.User{ID: 11, Name: "Retired", Role: models.RoleStylist, IsActive: false}
	repo.stylists[12] = &models.User{ID: 12, Name: "Carla", Role: models.RoleStylist, IsActive: true}
	repo.services[100] = &models.Service{ID: 100, Name: "Corte", Duration: 60, IsActive: true}
	repo.services[101] = &models.Service{ID: 101, Name: "Lavado", Duration: 30, IsActive: true}
	return repo
}
