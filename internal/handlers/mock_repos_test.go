package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/audit"
	apptDomain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	payDomain "github.com/peluqueria-anita/salon-api/internal/domain/payment"
	"github.com/peluqueria-anita/salon-api/internal/middleware"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

// memStore backs both repository interfaces with the same appointments so a
// booking made through one handler is visible to the other.
type memStore struct {
	clients  map[uint]*models.Client
	stylists map[uint]*models.User
	services map[uint]*models.Service
	appts    map[uint]*models.Appointment
	payments map[uint]*models.Payment
	nextID   uint
}

func newMemStore() *memStore {
	s := &memStore{
		clients:  map[uint]*models.Client{},
		stylists: map[uint]*models.User{},
		services: map[uint]*models.Service{},
		appts:    map[uint]*models.Appointment{},
		payments: map[uint]*models.Payment{},
		nextID:   1,
	}
	s.clients[1] = &models.Client{ID: 1, Name: "Ana Pérez", Email: "ana@example.com", Phone: "0991"}
	s.stylists[10] = &models.User{ID: 10, Name: "Anita", Role: models.RoleStylist, IsActive: true}
	s.services[100] = &models.Service{ID: 100, Name: "Corte", Duration: 60, IsActive: true}
	s.services[101] = &models.Service{ID: 101, Name: "Lavado", Duration: 30, IsActive: true}
	return s
}

func (s *memStore) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memStore) withRefs(ap *models.Appointment) *models.Appointment {
	cp := *ap
	cp.Details = append([]models.AppointmentDetail(nil), ap.Details...)
	if c, ok := s.clients[ap.ClientID]; ok {
		cp.Client = c
	}
	if u, ok := s.stylists[ap.UserID]; ok {
		cp.Stylist = u
	}
	return &cp
}

// ------------------------------------------------------
// appointment repository
// ------------------------------------------------------

type apptRepo struct{ *memStore }

func (r apptRepo) Transaction(_ context.Context, fn func(apptDomain.Repository) error) error {
	return fn(r)
}

func (r apptRepo) GetClient(_ context.Context, id uint) (*models.Client, error) {
	if c, ok := r.clients[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r apptRepo) GetStylist(_ context.Context, id uint) (*models.User, error) {
	if u, ok := r.stylists[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r apptRepo) GetService(_ context.Context, id uint) (*models.Service, error) {
	if sv, ok := r.services[id]; ok {
		return sv, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r apptRepo) GetWorkingHours(context.Context, uint, int) (*models.WorkingHours, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r apptRepo) HasActiveAt(_ context.Context, in apptDomain.CheckInput) (bool, error) {
	for _, ap := range r.appts {
		if ap.ID == in.ExcludeID {
			continue
		}
		if ap.UserID == in.StylistID && ap.AppointmentDate == in.Date &&
			ap.StartTime == in.StartTime && apptDomain.Status(ap.Status).IsActive() {
			return true, nil
		}
	}
	return false, nil
}

func (r apptRepo) ActiveStartTimes(_ context.Context, stylistID uint, date models.Date) ([]string, error) {
	var out []string
	for _, ap := range r.appts {
		if ap.UserID == stylistID && ap.AppointmentDate == date && apptDomain.Status(ap.Status).IsActive() {
			out = append(out, ap.StartTime)
		}
	}
	return out, nil
}

func (r apptRepo) CreateAppointment(_ context.Context, ap *models.Appointment) error {
	ap.ID = r.id()
	for i := range ap.Details {
		ap.Details[i].AppointmentID = ap.ID
		ap.Details[i].ComputeSubtotal()
	}
	cp := *ap
	r.appts[ap.ID] = &cp
	return nil
}

func (r apptRepo) LockAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	return r.GetAppointment(ctx, id)
}

func (r apptRepo) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	if ap, ok := r.appts[id]; ok {
		return r.withRefs(ap), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r apptRepo) UpdateAppointment(_ context.Context, ap *models.Appointment) error {
	stored, ok := r.appts[ap.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *ap
	cp.Details = stored.Details
	cp.Client, cp.Stylist = nil, nil
	r.appts[ap.ID] = &cp
	return nil
}

func (r apptRepo) ReplaceDetails(_ context.Context, id uint, details []models.AppointmentDetail) error {
	stored, ok := r.appts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Details = append([]models.AppointmentDetail(nil), details...)
	return nil
}

func (r apptRepo) DeleteAppointment(_ context.Context, id uint) error {
	delete(r.appts, id)
	return nil
}

func (r apptRepo) sorted() []models.Appointment {
	out := make([]models.Appointment, 0, len(r.appts))
	for _, ap := range r.appts {
		out = append(out, *r.withRefs(ap))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r apptRepo) ListAppointments(_ context.Context, f apptDomain.ListFilter) ([]models.Appointment, int64, error) {
	var out []models.Appointment
	for _, ap := range r.sorted() {
		if f.Status != "" && ap.Status != f.Status {
			continue
		}
		if f.Search != "" && (ap.Client == nil ||
			!strings.Contains(strings.ToLower(ap.Client.Name), strings.ToLower(f.Search))) {
			continue
		}
		out = append(out, ap)
	}
	return out, int64(len(out)), nil
}

func (r apptRepo) ListForStylistDay(_ context.Context, stylistID uint, date models.Date) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, ap := range r.sorted() {
		if ap.UserID == stylistID && ap.AppointmentDate == date {
			out = append(out, ap)
		}
	}
	return out, nil
}

func (r apptRepo) ListOverdue(context.Context, models.Date, []string) ([]models.Appointment, error) {
	return nil, nil
}

// ------------------------------------------------------
// payment repository
// ------------------------------------------------------

type ledgerRepo struct{ *memStore }

func (r ledgerRepo) Transaction(_ context.Context, fn func(payDomain.Repository) error) error {
	return fn(r)
}

func (r ledgerRepo) LockAppointment(ctx context.Context, id uint) (*models.Appointment, error) {
	return r.GetAppointment(ctx, id)
}

func (r ledgerRepo) GetAppointment(_ context.Context, id uint) (*models.Appointment, error) {
	if ap, ok := r.appts[id]; ok {
		cp := *ap
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r ledgerRepo) SetPaymentStatus(_ context.Context, id uint, status string) error {
	r.appts[id].PaymentStatus = status
	return nil
}

func (r ledgerRepo) ListLedger(_ context.Context, appointmentID uint) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range r.payments {
		if p.AppointmentID == appointmentID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r ledgerRepo) GetPayment(_ context.Context, id uint) (*models.Payment, error) {
	if p, ok := r.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r ledgerRepo) CreatePayment(_ context.Context, p *models.Payment) error {
	p.ID = r.id()
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r ledgerRepo) UpdatePayment(_ context.Context, p *models.Payment) error {
	if _, ok := r.payments[p.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r ledgerRepo) DeletePayment(_ context.Context, id uint) error {
	delete(r.payments, id)
	return nil
}

func (r ledgerRepo) ListPayments(_ context.Context, f payDomain.ListFilter) ([]models.Payment, int64, error) {
	var out []models.Payment
	for _, p := range r.payments {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// ------------------------------------------------------
// helpers
// ------------------------------------------------------

// testNow is Friday 2024-05-31 09:00 in the salon timezone.
func testNow() time.Time {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		loc = time.UTC
	}
	return time.Date(2024, 5, 31, 9, 0, 0, 0, loc)
}

// newTestRouter returns an engine whose requests run as stylist 10.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, uint(10))
		c.Set(middleware.ContextUserRole, models.RoleStylist)
		c.Next()
	})
	return r
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var noAudit *audit.Dispatcher
