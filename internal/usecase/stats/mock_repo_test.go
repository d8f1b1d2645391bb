package stats

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/models"
)

var salonLoc = time.FixedZone("CLT", -4*3600)

// 2024-05-15 is a Wednesday.
var fixedNow = time.Date(2024, 5, 15, 12, 0, 0, 0, salonLoc)

func clockAt(t time.Time) func() time.Time { return func() time.Time { return t } }

type mockStatsRepo struct {
	appts    []models.Appointment
	atts     []models.Attention
	payments []models.Payment
	clients  []models.Client
	services []models.Service
	stylists []models.User

	apptCalls int
}

func (m *mockStatsRepo) Appointments(_ context.Context, q AppointmentQuery) ([]models.Appointment, error) {
	m.apptCalls++
	var out []models.Appointment
	for _, ap := range m.appts {
		if q.Range != nil && !q.Range.Contains(ap.AppointmentDate) {
			continue
		}
		if q.StylistID != 0 && ap.UserID != q.StylistID {
			continue
		}
		if q.ClientID != 0 && ap.ClientID != q.ClientID {
			continue
		}
		if len(q.Statuses) > 0 && !contains(q.Statuses, ap.Status) {
			continue
		}
		out = append(out, ap)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a := string(out[i].AppointmentDate) + out[i].StartTime
		b := string(out[j].AppointmentDate) + out[j].StartTime
		if q.Newest {
			return a > b
		}
		return a < b
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *mockStatsRepo) Attentions(_ context.Context, q AttentionQuery) ([]models.Attention, error) {
	var out []models.Attention
	for _, a := range m.atts {
		if q.Range != nil && !q.Range.Contains(a.AttentionDate) {
			continue
		}
		if len(q.Statuses) > 0 && !contains(q.Statuses, a.Status) {
			continue
		}
		if q.AppointmentIDs != nil && !containsID(q.AppointmentIDs, a.AppointmentID) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *mockStatsRepo) CompletedPayments(_ context.Context, r DateRange) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range m.payments {
		if p.Status == "completed" && r.Contains(models.NewDate(p.CreatedAt.In(salonLoc))) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockStatsRepo) Clients(context.Context) ([]models.Client, error) {
	return m.clients, nil
}

func (m *mockStatsRepo) GetClient(_ context.Context, id uint) (*models.Client, error) {
	for i := range m.clients {
		if m.clients[i].ID == id {
			return &m.clients[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStatsRepo) CountActiveServices(ctx context.Context) (int64, error) {
	s, _ := m.ActiveServices(ctx)
	return int64(len(s)), nil
}

func (m *mockStatsRepo) ActiveServices(context.Context) ([]models.Service, error) {
	var out []models.Service
	for _, s := range m.services {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockStatsRepo) Stylists(context.Context) ([]models.User, error) {
	return m.stylists, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsID(list []uint, id uint) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

type memCache struct {
	data map[string]any
	sets int
}

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	v, ok := c.data[key]
	if !ok {
		return false, nil
	}
	switch d := dst.(type) {
	case *Dashboard:
		*d = *(v.(*Dashboard))
	case *Consolidated:
		*d = *(v.(*Consolidated))
	}
	return true, nil
}

func (c *memCache) Set(_ context.Context, key string, value any) error {
	if c.data == nil {
		c.data = map[string]any{}
	}
	c.data[key] = value
	c.sets++
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var (
	svcCut   = models.Service{ID: 1, Name: "Corte", IsActive: true, Duration: 30, Price: dec("25")}
	svcColor = models.Service{ID: 2, Name: "Color", IsActive: true, Duration: 90, Price: dec("60")}
	svcOld   = models.Service{ID: 3, Name: "Permanente", IsActive: false, Duration: 120, Price: dec("85")}

	ana   = models.Client{ID: 1, Name: "Ana", Email: "ana@example.com", IsActive: true, Gender: "female"}
	berta = models.Client{ID: 2, Name: "Berta", Email: "berta@example.com", IsActive: true, Gender: "female"}
	caro  = models.Client{ID: 3, Name: "Caro", Email: "caro@example.com", IsActive: false, Gender: "other"}
)

func appt(id, client, stylist uint, date, start, status, total string, lines ...models.Service) models.Appointment {
	c := map[uint]models.Client{1: ana, 2: berta, 3: caro}[client]
	ap := models.Appointment{
		ID:              id,
		ClientID:        client,
		Client:          &c,
		UserID:          stylist,
		AppointmentDate: models.Date(date),
		StartTime:       start,
		Status:          status,
		TotalAmount:     dec(total),
	}
	for _, s := range lines {
		s := s
		ap.Details = append(ap.Details, models.AppointmentDetail{
			AppointmentID: id,
			ServiceID:     s.ID,
			Service:       &s,
			Quantity:      1,
			UnitPrice:     s.Price,
			Subtotal:      s.Price,
		})
	}
	return ap
}

// seededStats holds May 2024 data around fixedNow.
func seededStats() *mockStatsRepo {
	created := func(y int, m time.Month, d int) models.Client {
		return models.Client{CreatedAt: time.Date(y, m, d, 10, 0, 0, 0, salonLoc)}
	}
	a, b, c := ana, berta, caro
	a.CreatedAt = created(2024, 5, 2).CreatedAt
	b.CreatedAt = created(2024, 3, 10).CreatedAt
	c.CreatedAt = created(2023, 12, 1).CreatedAt

	return &mockStatsRepo{
		clients:  []models.Client{a, b, c},
		services: []models.Service{svcCut, svcColor, svcOld},
		stylists: []models.User{{ID: 10, Name: "Marta"}, {ID: 11, Name: "Lucía"}},
		appts: []models.Appointment{
			appt(1, 1, 10, "2024-05-02", "10:00", "completed", "85", svcCut, svcColor),
			appt(2, 1, 10, "2024-05-10", "11:00", "completed", "25", svcCut),
			appt(3, 2, 11, "2024-05-10", "12:00", "cancelled", "25", svcCut),
			appt(4, 2, 11, "2024-05-15", "09:00", "confirmed", "60", svcColor),
			appt(5, 3, 10, "2024-05-16", "15:00", "pending", "25", svcCut),
			appt(6, 2, 10, "2024-04-20", "10:00", "completed", "60", svcColor),
		},
		payments: []models.Payment{
			{ID: 1, AppointmentID: 1, Amount: dec("85"), Status: "completed", CreatedAt: time.Date(2024, 5, 2, 11, 0, 0, 0, salonLoc)},
			{ID: 2, AppointmentID: 2, Amount: dec("25"), Status: "completed", CreatedAt: time.Date(2024, 5, 10, 12, 0, 0, 0, salonLoc)},
			{ID: 3, AppointmentID: 6, Amount: dec("60"), Status: "completed", CreatedAt: time.Date(2024, 4, 20, 12, 0, 0, 0, salonLoc)},
			{ID: 4, AppointmentID: 4, Amount: dec("5"), Status: "failed", CreatedAt: time.Date(2024, 5, 15, 9, 0, 0, 0, salonLoc)},
		},
		atts: []models.Attention{
			{ID: 1, AppointmentID: 1, ClientID: 1, UserID: 10, ServiceID: 1, Service: &svcCut, AttentionDate: "2024-05-02", Status: "completed", ServicePrice: dec("25")},
			{ID: 2, AppointmentID: 1, ClientID: 1, UserID: 10, ServiceID: 2, Service: &svcColor, AttentionDate: "2024-05-02", Status: "completed", ServicePrice: dec("60")},
			{ID: 3, AppointmentID: 6, ClientID: 2, UserID: 10, ServiceID: 2, Service: &svcColor, AttentionDate: "2024-04-20", Status: "completed", ServicePrice: dec("60")},
		},
	}
}
