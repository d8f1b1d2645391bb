package handlers

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/peluqueria-anita/salon-api/internal/models"
	"github.com/peluqueria-anita/salon-api/internal/usecase/stats"
)

// fixedStats answers every query with the same rows.
type fixedStats struct {
	clients      []models.Client
	appointments []models.Appointment
}

func (f fixedStats) Appointments(context.Context, stats.AppointmentQuery) ([]models.Appointment, error) {
	return f.appointments, nil
}

func (f fixedStats) Attentions(context.Context, stats.AttentionQuery) ([]models.Attention, error) {
	return nil, nil
}

func (f fixedStats) CompletedPayments(context.Context, stats.DateRange) ([]models.Payment, error) {
	return nil, nil
}

func (f fixedStats) Clients(context.Context) ([]models.Client, error) { return f.clients, nil }

func (f fixedStats) GetClient(_ context.Context, id uint) (*models.Client, error) {
	for i := range f.clients {
		if f.clients[i].ID == id {
			return &f.clients[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fixedStats) CountActiveServices(context.Context) (int64, error)      { return 0, nil }
func (f fixedStats) ActiveServices(context.Context) ([]models.Service, error) { return nil, nil }
func (f fixedStats) Stylists(context.Context) ([]models.User, error)          { return nil, nil }

type memObjects struct {
	keys map[string][]byte
}

func (m *memObjects) Put(_ context.Context, key, _ string, body []byte) (string, error) {
	m.keys[key] = body
	return "https://files.example/" + key, nil
}

func reportRouter(store ObjectStore) http.Handler {
	ana := models.Client{ID: 1, Name: "Ana Pérez", Email: "ana@example.com", Phone: "0991"}
	repo := fixedStats{
		clients: []models.Client{ana, {ID: 2, Name: "Bruno Díaz", Email: "bruno@example.com"}},
		appointments: []models.Appointment{{
			ID:              5,
			ClientID:        1,
			Client:          &ana,
			UserID:          10,
			AppointmentDate: "2024-05-20",
			StartTime:       "10:00",
			EndTime:         "11:00",
			Status:          "completed",
			TotalAmount:     decimal.RequireFromString("25.00"),
		}},
	}

	h := NewReportHandler(repo, nil, store, noAudit, testNow)

	r := newTestRouter()
	r.GET("/reports/clients-by-appointment", h.ClientsByAppointment)
	r.GET("/reports/export", h.Export)
	r.POST("/reports/export/upload", h.Upload)
	return r
}

func TestClientsByAppointmentKeepsClientsWithoutBookings(t *testing.T) {
	w := doJSON(reportRouter(nil), http.MethodGet, "/reports/clients-by-appointment", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %s", w.Code, w.Body)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"total_clients":2`) || !strings.Contains(body, "Bruno Díaz") {
		t.Errorf("body = %s", body)
	}
}

func TestReportRejectsMalformedRange(t *testing.T) {
	w := doJSON(reportRouter(nil), http.MethodGet, "/reports/clients-by-appointment?start_date=yesterday", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestExportWritesCSVAttachment(t *testing.T) {
	w := doJSON(reportRouter(nil), http.MethodGet, "/reports/export?type=a", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content-type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") {
		t.Errorf("content-disposition = %q", cd)
	}
	if !strings.Contains(w.Body.String(), "Ana Pérez") {
		t.Errorf("csv = %s", w.Body)
	}
}

func TestExportRejectsUnknownType(t *testing.T) {
	w := doJSON(reportRouter(nil), http.MethodGet, "/reports/export?type=Z", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}
}

func TestUploadWithoutStorage(t *testing.T) {
	w := doJSON(reportRouter(nil), http.MethodPost, "/reports/export/upload", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestUploadStoresCSV(t *testing.T) {
	objects := &memObjects{keys: map[string][]byte{}}
	w := doJSON(reportRouter(objects), http.MethodPost, "/reports/export/upload?type=A", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d %s", w.Code, w.Body)
	}
	if len(objects.keys) != 1 {
		t.Fatalf("stored %d objects", len(objects.keys))
	}
	for key := range objects.keys {
		if !strings.HasPrefix(key, "reports/2024-05-31/") {
			t.Errorf("key = %q", key)
		}
	}
}
