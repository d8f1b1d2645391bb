package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/peluqueria-anita/salon-api/internal/models"
)

type DashboardInput struct {
	Period string
	Date   models.Date
	TopN   int
}

type GeneralStats struct {
	TotalClients          int             `json:"total_clients"`
	TotalServices         int64           `json:"total_services"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	TotalAppointments     int             `json:"total_appointments"`
	CompletedAppointments int             `json:"completed_appointments"`
	PendingAppointments   int             `json:"pending_appointments"`
	ConfirmedAppointments int             `json:"confirmed_appointments"`
	CompletionRate        float64         `json:"completion_rate"`
}

type DailyRevenue struct {
	Date    models.Date     `json:"date"`
	Revenue decimal.Decimal `json:"revenue"`
	DayName string          `json:"day_name"`
}

type Dashboard struct {
	Period    string    `json:"period"`
	DateRange DateRange `json:"date_range"`

	GeneralStats GeneralStats         `json:"general_stats"`
	Today        []models.Appointment `json:"today_appointments"`
	Upcoming     []models.Appointment `json:"upcoming_appointments"`

	PopularServices []ServiceRank  `json:"popular_services"`
	TopClients      []ClientRank   `json:"top_clients"`
	DailyRevenue    []DailyRevenue `json:"daily_revenue"`
	StylistStats    []StylistRank  `json:"stylist_stats"`
}

type GetDashboard struct {
	repo  Repository
	cache Cache
	now   func() time.Time
}

// NewGetDashboard builds the dashboard rollup. cache may be nil.
func NewGetDashboard(repo Repository, cache Cache, now func() time.Time) *GetDashboard {
	return &GetDashboard{repo: repo, cache: cache, now: now}
}

func (uc *GetDashboard) Execute(ctx context.Context, in DashboardInput) (*Dashboard, error) {
	now := uc.now()
	loc := now.Location()

	anchor := now
	if !in.Date.IsZero() {
		t, err := in.Date.In(loc)
		if err != nil {
			return nil, err
		}
		anchor = t
	}
	if in.TopN <= 0 {
		in.TopN = 5
	}

	r, period := PeriodRange(in.Period, anchor)
	key := fmt.Sprintf("stats:dashboard:%s:%s:%s:%d:%s", period, r.From, r.To, in.TopN, models.NewDate(now))

	out := &Dashboard{}
	if hit := cacheGet(ctx, uc.cache, key, out); hit {
		return out, nil
	}

	out, err := uc.build(ctx, r, period, now, in.TopN)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, uc.cache, key, out)
	return out, nil
}

func (uc *GetDashboard) build(
	ctx context.Context,
	r DateRange,
	period string,
	now time.Time,
	topN int,
) (*Dashboard, error) {

	clients, err := uc.repo.Clients(ctx)
	if err != nil {
		return nil, err
	}
	activeServices, err := uc.repo.CountActiveServices(ctx)
	if err != nil {
		return nil, err
	}
	payments, err := uc.repo.CompletedPayments(ctx, r)
	if err != nil {
		return nil, err
	}
	apps, err := uc.repo.Appointments(ctx, AppointmentQuery{Range: &r})
	if err != nil {
		return nil, err
	}

	today := models.NewDate(now)
	todays, err := uc.repo.Appointments(ctx, AppointmentQuery{Range: &DateRange{From: today, To: today}})
	if err != nil {
		return nil, err
	}
	upcoming, err := uc.repo.Appointments(ctx, AppointmentQuery{
		Range:    &DateRange{From: today.AddDays(1), To: today.AddDays(7)},
		Statuses: []string{"pending", "confirmed"},
		Limit:    10,
	})
	if err != nil {
		return nil, err
	}
	stylists, err := uc.repo.Stylists(ctx)
	if err != nil {
		return nil, err
	}

	byStatus := countByStatus(apps)

	return &Dashboard{
		Period:    period,
		DateRange: r,
		GeneralStats: GeneralStats{
			TotalClients:          len(clients),
			TotalServices:         activeServices,
			TotalRevenue:          sumPayments(payments),
			TotalAppointments:     len(apps),
			CompletedAppointments: byStatus["completed"],
			PendingAppointments:   byStatus["pending"],
			ConfirmedAppointments: byStatus["confirmed"],
			CompletionRate:        Rate(byStatus["completed"], len(apps)),
		},
		Today:           todays,
		Upcoming:        upcoming,
		PopularServices: topServicesByDetails(apps, 5),
		TopClients:      topClientsBySpend(apps, topN),
		DailyRevenue:    dailyRevenue(r, payments, now.Location()),
		StylistStats:    stylistPerformance(stylists, apps),
	}, nil
}

// dailyRevenue buckets payments by their creation date in loc, one entry
// per day of r.
func dailyRevenue(r DateRange, payments []models.Payment, loc *time.Location) []DailyRevenue {
	byDay := map[models.Date]decimal.Decimal{}
	for _, p := range payments {
		d := models.NewDate(p.CreatedAt.In(loc))
		byDay[d] = byDay[d].Add(p.Amount)
	}

	days := r.Days()
	out := make([]DailyRevenue, 0, len(days))
	for _, d := range days {
		t, _ := d.In(time.UTC)
		out = append(out, DailyRevenue{Date: d, Revenue: byDay[d], DayName: t.Weekday().String()})
	}
	return out
}

type QuickWindow struct {
	Appointments int             `json:"appointments"`
	Completed    *int            `json:"completed,omitempty"`
	Revenue      decimal.Decimal `json:"revenue"`
	NewClients   *int            `json:"new_clients,omitempty"`
}

type QuickStats struct {
	Today     QuickWindow `json:"today"`
	ThisWeek  QuickWindow `json:"this_week"`
	ThisMonth QuickWindow `json:"this_month"`
}

type GetQuickStats struct {
	repo Repository
	now  func() time.Time
}

func NewGetQuickStats(repo Repository, now func() time.Time) *GetQuickStats {
	return &GetQuickStats{repo: repo, now: now}
}

func (uc *GetQuickStats) Execute(ctx context.Context) (*QuickStats, error) {
	now := uc.now()

	clients, err := uc.repo.Clients(ctx)
	if err != nil {
		return nil, err
	}

	window := func(period string) (QuickWindow, []models.Appointment, error) {
		r, _ := PeriodRange(period, now)
		apps, err := uc.repo.Appointments(ctx, AppointmentQuery{Range: &r})
		if err != nil {
			return QuickWindow{}, nil, err
		}
		payments, err := uc.repo.CompletedPayments(ctx, r)
		if err != nil {
			return QuickWindow{}, nil, err
		}
		newClients := countCreated(clients, r, now.Location())
		return QuickWindow{
			Appointments: len(apps),
			Revenue:      sumPayments(payments),
			NewClients:   &newClients,
		}, apps, nil
	}

	day, todays, err := window("day")
	if err != nil {
		return nil, err
	}
	completed := countByStatus(todays)["completed"]
	day.Completed = &completed
	day.NewClients = nil

	week, _, err := window("week")
	if err != nil {
		return nil, err
	}
	month, _, err := window("month")
	if err != nil {
		return nil, err
	}

	return &QuickStats{Today: day, ThisWeek: week, ThisMonth: month}, nil
}

func countCreated(clients []models.Client, r DateRange, loc *time.Location) int {
	n := 0
	for _, c := range clients {
		if r.Contains(models.NewDate(c.CreatedAt.In(loc))) {
			n++
		}
	}
	return n
}

type DayOverview struct {
	Date         models.Date    `json:"date"`
	Day          int            `json:"day"`
	DayName      string         `json:"day_name"`
	Appointments map[string]int `json:"appointments"`
	Total        int            `json:"total"`
}

type MonthlyStats struct {
	TotalAppointments        int             `json:"total_appointments"`
	TotalRevenue             decimal.Decimal `json:"total_revenue"`
	NewClients               int             `json:"new_clients"`
	AverageDailyAppointments float64         `json:"average_daily_appointments"`
}

type MonthlyOverview struct {
	Year              int           `json:"year"`
	Month             int           `json:"month"`
	MonthName         string        `json:"month_name"`
	MonthlyStats      MonthlyStats  `json:"monthly_stats"`
	DailyAppointments []DayOverview `json:"daily_appointments"`
}

type GetMonthlyOverview struct {
	repo Repository
	now  func() time.Time
}

func NewGetMonthlyOverview(repo Repository, now func() time.Time) *GetMonthlyOverview {
	return &GetMonthlyOverview{repo: repo, now: now}
}

// Execute reports per-day status counts for a month; zero year or month
// default to the current one.
func (uc *GetMonthlyOverview) Execute(ctx context.Context, year, month int) (*MonthlyOverview, error) {
	now := uc.now()
	if year == 0 {
		year = now.Year()
	}
	if month < 1 || month > 12 {
		month = int(now.Month())
	}

	r := MonthRange(year, time.Month(month), now.Location())

	apps, err := uc.repo.Appointments(ctx, AppointmentQuery{Range: &r})
	if err != nil {
		return nil, err
	}
	payments, err := uc.repo.CompletedPayments(ctx, r)
	if err != nil {
		return nil, err
	}
	clients, err := uc.repo.Clients(ctx)
	if err != nil {
		return nil, err
	}

	byDay := map[models.Date]map[string]int{}
	for _, ap := range apps {
		if byDay[ap.AppointmentDate] == nil {
			byDay[ap.AppointmentDate] = map[string]int{}
		}
		byDay[ap.AppointmentDate][ap.Status]++
	}

	days := r.Days()
	daily := make([]DayOverview, 0, len(days))
	for _, d := range days {
		t, _ := d.In(time.UTC)
		counts := byDay[d]
		if counts == nil {
			counts = map[string]int{}
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		daily = append(daily, DayOverview{
			Date:         d,
			Day:          t.Day(),
			DayName:      t.Weekday().String()[:3],
			Appointments: counts,
			Total:        total,
		})
	}

	avg := 0.0
	if len(days) > 0 {
		avg = Round(float64(len(apps))/float64(len(days)), 1)
	}

	return &MonthlyOverview{
		Year:      year,
		Month:     month,
		MonthName: time.Month(month).String(),
		MonthlyStats: MonthlyStats{
			TotalAppointments:        len(apps),
			TotalRevenue:             sumPayments(payments),
			NewClients:               countCreated(clients, r, now.Location()),
			AverageDailyAppointments: avg,
		},
		DailyAppointments: daily,
	}, nil
}

func cacheGet(ctx context.Context, c Cache, key string, dst any) bool {
	if c == nil {
		return false
	}
	hit, err := c.Get(ctx, key, dst)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("stats cache read failed")
		return false
	}
	return hit
}

func cacheSet(ctx context.Context, c Cache, key string, v any) {
	if c == nil {
		return
	}
	if err := c.Set(ctx, key, v); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("stats cache write failed")
	}
}
