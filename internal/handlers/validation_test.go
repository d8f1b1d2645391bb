package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/apperr"
	apptDomain "github.com/peluqueria-anita/salon-api/internal/domain/appointment"
	"github.com/peluqueria-anita/salon-api/internal/middleware"
	"github.com/peluqueria-anita/salon-api/internal/models"
)

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	ae, ok := apperr.As(err)
	if !ok {
		t.Fatalf("expected apperr, got %v", err)
	}
	return ae.Fields
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func uintPtr(v uint) *uint    { return &v }

func TestValidateServiceValues(t *testing.T) {
	if err := validateServiceValues(decPtr("9999.99"), intPtr(15)); err != nil {
		t.Fatalf("boundaries should pass: %v", err)
	}
	if err := validateServiceValues(nil, nil); err != nil {
		t.Fatalf("absent values should pass: %v", err)
	}

	fields := fieldsOf(t, validateServiceValues(decPtr("10000.00"), intPtr(481)))
	if fields["price"] == "" || fields["duration"] == "" {
		t.Errorf("fields = %v", fields)
	}

	fields = fieldsOf(t, validateServiceValues(decPtr("-1"), intPtr(14)))
	if len(fields) != 2 {
		t.Errorf("fields = %v", fields)
	}
}

func TestAttentionApplyRequiresFieldsOnCreate(t *testing.T) {
	var a models.Attention
	fields := AttentionRequest{}.apply(&a, true)

	for _, key := range []string{"appointment_id", "client_id", "user_id", "service_id", "attention_date", "start_time", "end_time", "status", "service_price"} {
		if fields[key] != "is required" {
			t.Errorf("%s = %q, want is required", key, fields[key])
		}
	}

	if fields := (AttentionRequest{}).apply(&a, false); len(fields) != 0 {
		t.Errorf("empty update should pass, got %v", fields)
	}
}

func TestAttentionApplyCopiesAndValidates(t *testing.T) {
	date := models.Date("2024-05-31")
	price := decimal.RequireFromString("20.00")
	req := AttentionRequest{
		AppointmentID:      uintPtr(1),
		ClientID:           uintPtr(1),
		UserID:             uintPtr(10),
		ServiceID:          uintPtr(100),
		AttentionDate:      &date,
		StartTime:          strPtr("10:00"),
		EndTime:            strPtr("10:45"),
		Status:             strPtr("completed"),
		ServicePrice:       &price,
		ClientSatisfaction: strPtr("very_satisfied"),
	}

	var a models.Attention
	if fields := req.apply(&a, true); len(fields) != 0 {
		t.Fatalf("fields = %v", fields)
	}
	if a.UserID != 10 || a.EndTime != "10:45" || *a.ClientSatisfaction != "very_satisfied" {
		t.Errorf("attention = %+v", a)
	}

	reset := AttentionRequest{ClientSatisfaction: strPtr("")}
	reset.apply(&a, false)
	if a.ClientSatisfaction != nil {
		t.Error("empty satisfaction should clear the value")
	}
}

func TestValidateAttention(t *testing.T) {
	a := models.Attention{
		StartTime:          "11:00",
		EndTime:            "10:30",
		Status:             "paused",
		ServicePrice:       decimal.RequireFromString("-1"),
		TipAmount:          decimal.RequireFromString("-0.5"),
		ClientSatisfaction: strPtr("ecstatic"),
	}

	fields := validateAttention(&a)
	for _, key := range []string{"end_time", "status", "service_price", "tip_amount", "client_satisfaction"} {
		if fields[key] == "" {
			t.Errorf("missing error for %s: %v", key, fields)
		}
	}

	a = models.Attention{StartTime: "9:00", EndTime: "10:00"}
	if fields := validateAttention(&a); fields["start_time"] == "" {
		t.Errorf("fields = %v", fields)
	}
}

func TestValidateWeek(t *testing.T) {
	defaults := apptDomain.DefaultWorkingHours

	ok := []WorkingDayConfig{
		{Weekday: intPtr(1), Active: true},
		{Weekday: intPtr(2), Active: true, StartTime: "10:00", EndTime: "14:00", SlotMinutes: 45},
		{Weekday: intPtr(0), Active: false, StartTime: "bogus"},
	}
	if err := validateWeek(ok, defaults); err != nil {
		t.Fatalf("valid week rejected: %v", err)
	}

	bad := []WorkingDayConfig{
		{Weekday: intPtr(3), Active: true, StartTime: "15:00", EndTime: "12:00"},
		{Weekday: intPtr(3), Active: true},
	}
	fields := fieldsOf(t, validateWeek(bad, defaults))
	if fields["days.0.end"] == "" {
		t.Errorf("fields = %v, want days.0.end", fields)
	}
	if fields["days.1.weekday"] != "is repeated" {
		t.Errorf("fields = %v, want days.1.weekday", fields)
	}
}

func paramsContext(target string, role string, userID uint) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	if userID != 0 {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, role)
	}
	return c, w
}

func TestQueryHelpers(t *testing.T) {
	c, _ := paramsContext("/x?page=3&bad=x&user_id=7&active=false", "", 0)

	if got := queryInt(c, "page", 1); got != 3 {
		t.Errorf("page = %d", got)
	}
	if got := queryInt(c, "bad", 1); got != 1 {
		t.Errorf("bad = %d, want default", got)
	}
	if got := queryUint(c, "user_id"); got != 7 {
		t.Errorf("user_id = %d", got)
	}
	if b := queryBool(c, "active"); b == nil || *b {
		t.Errorf("active = %v", b)
	}
	if b := queryBool(c, "missing"); b != nil {
		t.Errorf("missing = %v", *b)
	}
	if actorID(c) != nil {
		t.Error("anonymous request should have no actor")
	}
}

func TestQueryDatesRejectsMalformed(t *testing.T) {
	c, w := paramsContext("/x?from=2024-05-01&to=2024-13-01", "", 0)

	if _, ok := queryDates(c, "from", "to"); ok {
		t.Fatal("expected failure")
	}
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Code)
	}

	c, _ = paramsContext("/x?from=2024-05-01", "", 0)
	dates, ok := queryDates(c, "from", "to")
	if !ok || dates[0] != "2024-05-01" || !dates[1].IsZero() {
		t.Errorf("dates = %v ok = %v", dates, ok)
	}
}

func TestPathID(t *testing.T) {
	for _, raw := range []string{"0", "-1", "abc"} {
		c, w := paramsContext("/x", "", 0)
		c.Params = gin.Params{{Key: "id", Value: raw}}
		if _, ok := pathID(c, "id"); ok {
			t.Errorf("%q accepted", raw)
		}
		if w.Code != http.StatusNotFound {
			t.Errorf("%q: status = %d", raw, w.Code)
		}
	}
}

func TestStylistIDHonoursAdminOverride(t *testing.T) {
	c, _ := paramsContext("/x?user_id=12", models.RoleAdmin, 1)
	if got := stylistID(c); got != 12 {
		t.Errorf("admin = %d, want 12", got)
	}

	c, _ = paramsContext("/x?user_id=12", models.RoleStylist, 10)
	if got := stylistID(c); got != 10 {
		t.Errorf("stylist = %d, want 10", got)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := normalizeEmail("  Ana@Example.COM "); got != "ana@example.com" {
		t.Errorf("got %q", got)
	}
}
