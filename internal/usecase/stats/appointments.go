package stats

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/models"
)

type AppointmentStatsInput struct {
	From      models.Date
	To        models.Date
	StylistID uint
}

type AppointmentStats struct {
	DateRange DateRange `json:"date_range"`

	TotalAppointments     int             `json:"total_appointments"`
	CompletedAppointments int             `json:"completed_appointments"`
	CancelledAppointments int             `json:"cancelled_appointments"`
	PendingAppointments   int             `json:"pending_appointments"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	CompletionRate        float64         `json:"completion_rate"`

	AppointmentsByDay    []DayCount    `json:"appointments_by_day"`
	AppointmentsByStatus []StatusCount `json:"appointments_by_status"`
	TopServices          []ServiceRank `json:"top_services"`
}

type GetAppointmentStats struct {
	repo Repository
	now  func() time.Time
}

func NewGetAppointmentStats(repo Repository, now func() time.Time) *GetAppointmentStats {
	return &GetAppointmentStats{repo: repo, now: now}
}

// Execute defaults to the current month up to today.
func (uc *GetAppointmentStats) Execute(ctx context.Context, in AppointmentStatsInput) (*AppointmentStats, error) {
	now := uc.now()
	if in.From.IsZero() {
		in.From = MonthRange(now.Year(), now.Month(), now.Location()).From
	}
	if in.To.IsZero() {
		in.To = models.NewDate(now)
	}

	r, err := NewRange(in.From, in.To)
	if err != nil {
		return nil, err
	}

	apps, err := uc.repo.Appointments(ctx, AppointmentQuery{Range: &r, StylistID: in.StylistID})
	if err != nil {
		return nil, err
	}

	out := SummarizeAppointments(apps)
	out.DateRange = r
	return out, nil
}

// SummarizeAppointments folds appointments already restricted to a range.
func SummarizeAppointments(apps []models.Appointment) *AppointmentStats {
	byStatus := countByStatus(apps)
	total := len(apps)

	return &AppointmentStats{
		TotalAppointments:     total,
		CompletedAppointments: byStatus["completed"],
		CancelledAppointments: byStatus["cancelled"],
		PendingAppointments:   byStatus["pending"],
		TotalRevenue:          completedRevenue(apps),
		CompletionRate:        Rate(byStatus["completed"], total),
		AppointmentsByDay:     perDay(apps),
		AppointmentsByStatus:  statusList(byStatus),
		TopServices:           topServicesByDetails(apps, 5),
	}
}
